package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	UpdateTypeInvoicePaid = "invoice_paid"

	GatewayStatusPaid = "paid"
)

// FlexibleID accepts gateway identifiers sent either as JSON numbers or as
// strings.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

func (id FlexibleID) String() string {
	return string(id)
}

// CryptoPayUpdate holds the envelope fields the relay acts on. The rest of
// the delivery is kept only in the raw audit payload.
type CryptoPayUpdate struct {
	UpdateID   string
	UpdateType string
	InvoiceID  string
	Status     string
}

// ParseCryptoPayUpdate reads update_id, update_type, payload.invoice_id and
// payload.status from a webhook body. A field that is missing or of an
// unexpected JSON type reads as empty, so any verified body can be audited.
func ParseCryptoPayUpdate(body []byte) *CryptoPayUpdate {
	update := &CryptoPayUpdate{}

	var envelope struct {
		UpdateID   json.RawMessage `json:"update_id"`
		UpdateType json.RawMessage `json:"update_type"`
		Payload    json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return update
	}
	update.UpdateID = looseID(envelope.UpdateID)
	update.UpdateType = looseString(envelope.UpdateType)

	var payload struct {
		InvoiceID json.RawMessage `json:"invoice_id"`
		Status    json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return update
	}
	update.InvoiceID = looseID(payload.InvoiceID)
	update.Status = looseString(payload.Status)

	return update
}

// IsInvoicePaid reports whether the update settles an invoice.
func (u *CryptoPayUpdate) IsInvoicePaid() bool {
	return u.UpdateType == UpdateTypeInvoicePaid && u.Status == GatewayStatusPaid
}

func looseID(raw json.RawMessage) string {
	var id FlexibleID
	if len(raw) == 0 || json.Unmarshal(raw, &id) != nil {
		return ""
	}
	return id.String()
}

func looseString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

package client

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"
)

// SignatureHeader carries the hex HMAC of a webhook body.
const SignatureHeader = "Crypto-Pay-Api-Signature"

// SignWebhook returns the hex HMAC-SHA256 of body keyed with SHA-256(token).
func SignWebhook(token string, body []byte) string {
	secret := sha256.Sum256([]byte(token))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook reports whether signature authenticates body for token. The
// sender signs the compact serialization of the event, so the canonical form
// of body is checked first and the raw bytes second.
func VerifyWebhook(token string, body []byte, signature string) bool {
	signature = strings.TrimSpace(signature)
	if token == "" || signature == "" {
		return false
	}

	canonical, err := CanonicalJSON(body)
	if err != nil {
		return false
	}
	if hmac.Equal([]byte(SignWebhook(token, canonical)), []byte(signature)) {
		return true
	}
	if bytes.Equal(canonical, body) {
		return false
	}
	return hmac.Equal([]byte(SignWebhook(token, body)), []byte(signature))
}

// CanonicalJSON re-encodes a JSON document with ',' and ':' separators and no
// whitespace. Object keys keep their received order, number literals are
// copied as received, and every character outside printable ASCII is written
// as a \uXXXX escape.
func CanonicalJSON(body []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var buf bytes.Buffer
	buf.Grow(len(body))
	if err := writeCanonicalValue(dec, &buf); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return buf.Bytes(), nil
}

func writeCanonicalValue(dec *json.Decoder, buf *bytes.Buffer) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			buf.WriteByte('{')
			for first := true; dec.More(); first = false {
				if !first {
					buf.WriteByte(',')
				}
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				key, ok := keyTok.(string)
				if !ok {
					return fmt.Errorf("object key must be a string, got %v", keyTok)
				}
				writeCanonicalString(buf, key)
				buf.WriteByte(':')
				if err := writeCanonicalValue(dec, buf); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
			buf.WriteByte('}')
		case '[':
			buf.WriteByte('[')
			for first := true; dec.More(); first = false {
				if !first {
					buf.WriteByte(',')
				}
				if err := writeCanonicalValue(dec, buf); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
			buf.WriteByte(']')
		default:
			return fmt.Errorf("unexpected delimiter %q", v)
		}
	case string:
		writeCanonicalString(buf, v)
	case json.Number:
		buf.WriteString(v.String())
	case bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case nil:
		buf.WriteString("null")
	default:
		return fmt.Errorf("unexpected token %T", tok)
	}
	return nil
}

const hexDigits = "0123456789abcdef"

func writeCanonicalString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r <= 0x7e:
				buf.WriteByte(byte(r))
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				writeUnicodeEscape(buf, hi)
				writeUnicodeEscape(buf, lo)
			default:
				writeUnicodeEscape(buf, r)
			}
		}
	}
	buf.WriteByte('"')
}

func writeUnicodeEscape(buf *bytes.Buffer, r rune) {
	buf.WriteString(`\u`)
	buf.WriteByte(hexDigits[(r>>12)&0xf])
	buf.WriteByte(hexDigits[(r>>8)&0xf])
	buf.WriteByte(hexDigits[(r>>4)&0xf])
	buf.WriteByte(hexDigits[r&0xf])
}

package repository

import (
	"context"
	"fmt"
	"time"

	"cryptobot-webhook-relay/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WebhookEventRepository is append-only: rows are never updated or deleted.
type WebhookEventRepository interface {
	Create(ctx context.Context, event *model.WebhookEvent) error
	List(ctx context.Context, limit, offset int) ([]*model.WebhookEvent, error)
}

type webhookEventRepositoryIml struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepositoryIml{db: db}
}

func (r *webhookEventRepositoryIml) Create(ctx context.Context, event *model.WebhookEvent) error {
	if event.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate event id: %w", err)
		}
		event.ID = id.String()
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now().UTC()
	}

	return r.db.WithContext(ctx).Create(event).Error
}

// List returns events newest first.
func (r *webhookEventRepositoryIml) List(ctx context.Context, limit, offset int) ([]*model.WebhookEvent, error) {
	events := make([]*model.WebhookEvent, 0)
	if limit == 0 {
		return events, nil
	}

	err := r.db.WithContext(ctx).
		Order("received_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error

	if err != nil {
		return nil, err
	}

	return events, nil
}

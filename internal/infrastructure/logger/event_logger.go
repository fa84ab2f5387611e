package logger

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

// PGOfferEventLogger appends offer status changes to offer_status_event_models.
type PGOfferEventLogger struct {
	db *gorm.DB
}

func NewPGOfferEventLogger(db *gorm.DB) *PGOfferEventLogger {
	return &PGOfferEventLogger{db: db}
}

func (l *PGOfferEventLogger) AppendOfferEvent(ctx context.Context, event *domain.OfferStatusEvent) error {
	return l.db.WithContext(ctx).Create(mappers.ToGORMOfferStatusEvent(event)).Error
}

func (l *PGOfferEventLogger) ListOfferEvents(ctx context.Context, offerID string) ([]*domain.OfferStatusEvent, error) {
	var eventModels []models.OfferStatusEventModel
	if err := l.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		Order("occurred_at ASC").Order("id ASC").
		Find(&eventModels).Error; err != nil {
		return nil, fmt.Errorf("list offer events: %w", err)
	}
	events := make([]*domain.OfferStatusEvent, len(eventModels))
	for i := range eventModels {
		events[i] = mappers.ToDomainOfferStatusEvent(&eventModels[i])
	}
	return events, nil
}

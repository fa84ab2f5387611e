package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultOfferRepository struct {
	db *gorm.DB
}

func NewDefaultOfferRepository(db *gorm.DB) *DefaultOfferRepository {
	return &DefaultOfferRepository{db: db}
}

// CreateOffer relies on uniq_offer_pending_per_seller: the insert either lands or fails,
// there is no read before it.
func (r *DefaultOfferRepository) CreateOffer(ctx context.Context, offer *domain.Offer) error {
	model := mappers.ToGORMOffer(offer)
	err := r.db.WithContext(ctx).Create(model).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return fmt.Errorf("create offer: %w", err)
	}

	var existing models.OfferModel
	lookup := r.db.WithContext(ctx).
		Where("request_id = ? AND seller_id = ? AND status = ?", offer.RequestID, offer.SellerID, string(domain.OfferPending)).
		First(&existing).Error
	if lookup != nil {
		// The pending offer was finalized right after our insert lost.
		return &domain.ConflictError{}
	}
	return &domain.ConflictError{Existing: mappers.ToDomainOffer(&existing)}
}

func (r *DefaultOfferRepository) GetOfferByID(ctx context.Context, offerID string) (*domain.Offer, error) {
	var model models.OfferModel
	if err := r.db.WithContext(ctx).Where("id = ?", offerID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewError(domain.CodeNotFound, "offer %s not found", offerID)
		}
		return nil, fmt.Errorf("get offer: %w", err)
	}
	return mappers.ToDomainOffer(&model), nil
}

func (r *DefaultOfferRepository) ListOffersByRequest(ctx context.Context, requestID string) ([]*domain.Offer, error) {
	return r.list(r.db.WithContext(ctx).Where("request_id = ?", requestID))
}

func (r *DefaultOfferRepository) ListOffersByCustomer(ctx context.Context, customerID string) ([]*domain.Offer, error) {
	return r.list(r.db.WithContext(ctx).Where("customer_id = ?", customerID))
}

func (r *DefaultOfferRepository) ListOffersBySeller(ctx context.Context, sellerID string) ([]*domain.Offer, error) {
	return r.list(r.db.WithContext(ctx).Where("seller_id = ?", sellerID))
}

func (r *DefaultOfferRepository) FindLatestOffer(ctx context.Context, sellerID, requestID string) (*domain.Offer, error) {
	var model models.OfferModel
	err := r.db.WithContext(ctx).
		Where("seller_id = ? AND request_id = ?", sellerID, requestID).
		Order("CASE WHEN status = 'pending' THEN 0 ELSE 1 END").
		Order("submitted_at DESC").Order("id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find latest offer: %w", err)
	}
	return mappers.ToDomainOffer(&model), nil
}

// TransitionOfferStatus is a single conditional UPDATE; zero affected rows means another
// writer moved the offer first.
func (r *DefaultOfferRepository) TransitionOfferStatus(ctx context.Context, change domain.StatusChange) (*domain.Offer, error) {
	updates := map[string]any{
		"status":     string(change.To),
		"updated_at": change.At.UTC(),
	}
	if change.To.Terminal() {
		updates["decided_at"] = change.At.UTC()
	}

	result := r.db.WithContext(ctx).
		Model(&models.OfferModel{}).
		Where("id = ? AND status = ?", change.OfferID, string(change.From)).
		Updates(updates)
	if result.Error != nil {
		if change.To == domain.OfferApproved && isUniqueViolation(result.Error) {
			return nil, domain.WrapError(domain.CodeInvalidState, "request already has an approved offer", result.Error)
		}
		return nil, fmt.Errorf("transition offer status: %w", result.Error)
	}

	current, err := r.GetOfferByID(ctx, change.OfferID)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, domain.NewError(domain.CodeStaleState, "offer %s is %s, expected %s", current.ID, current.Status, change.From)
	}
	return current, nil
}

func (r *DefaultOfferRepository) FindExpiredOffers(ctx context.Context, now time.Time, limit int) ([]*domain.Offer, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", string(domain.OfferPending)).
		Where("expires_at <= ?", now.UTC()).
		Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var offerModels []models.OfferModel
	if err := query.Find(&offerModels).Error; err != nil {
		return nil, fmt.Errorf("find expired offers: %w", err)
	}
	offers := make([]*domain.Offer, len(offerModels))
	for i := range offerModels {
		offers[i] = mappers.ToDomainOffer(&offerModels[i])
	}
	return offers, nil
}

func (r *DefaultOfferRepository) list(query *gorm.DB) ([]*domain.Offer, error) {
	var offerModels []models.OfferModel
	if err := query.Order("submitted_at DESC").Order("id DESC").Find(&offerModels).Error; err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	offers := make([]*domain.Offer, len(offerModels))
	for i := range offerModels {
		offers[i] = mappers.ToDomainOffer(&offerModels[i])
	}
	return offers, nil
}

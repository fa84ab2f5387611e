package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DefaultDishRequestRepository struct {
	db *gorm.DB
}

func NewDefaultDishRequestRepository(db *gorm.DB) *DefaultDishRequestRepository {
	return &DefaultDishRequestRepository{db: db}
}

func (r *DefaultDishRequestRepository) CreateRequest(ctx context.Context, request *domain.DishRequest) error {
	model := mappers.ToGORMDishRequest(request)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.CodeConflict, "dish request already exists", err)
		}
		return err
	}
	return nil
}

func (r *DefaultDishRequestRepository) GetRequestByID(ctx context.Context, requestID string) (*domain.DishRequest, error) {
	if err := checkRequestID(requestID); err != nil {
		return nil, err
	}
	var model models.DishRequestModel
	if err := r.db.WithContext(ctx).Where("id = ?", requestID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewError(domain.CodeNotFound, "dish request %s not found", requestID)
		}
		return nil, fmt.Errorf("get dish request: %w", err)
	}
	return mappers.ToDomainDishRequest(&model), nil
}

func (r *DefaultDishRequestRepository) UpdateRequestStatus(ctx context.Context, requestID string, status domain.RequestStatus, at time.Time) (*domain.DishRequest, error) {
	if err := checkRequestID(requestID); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).
		Model(&models.DishRequestModel{}).
		Where("id = ?", requestID).
		Updates(map[string]any{"status": string(status), "updated_at": at.UTC()})
	if result.Error != nil {
		return nil, fmt.Errorf("update dish request status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domain.NewError(domain.CodeNotFound, "dish request %s not found", requestID)
	}
	return r.GetRequestByID(ctx, requestID)
}

func (r *DefaultDishRequestRepository) DeleteRequest(ctx context.Context, requestID string) error {
	if err := checkRequestID(requestID); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("id = ?", requestID).Delete(&models.DishRequestModel{})
	if result.Error != nil {
		return fmt.Errorf("delete dish request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewError(domain.CodeNotFound, "dish request %s not found", requestID)
	}
	return nil
}

func (r *DefaultDishRequestRepository) ListRequestsByStatus(ctx context.Context, status domain.RequestStatus) ([]*domain.DishRequest, error) {
	return r.list(r.db.WithContext(ctx).Where("status = ?", string(status)))
}

func (r *DefaultDishRequestRepository) ListRequestsByCustomer(ctx context.Context, customerID string) ([]*domain.DishRequest, error) {
	return r.list(r.db.WithContext(ctx).Where("customer_id = ?", customerID))
}

func (r *DefaultDishRequestRepository) list(query *gorm.DB) ([]*domain.DishRequest, error) {
	var requestModels []models.DishRequestModel
	if err := query.Order("created_at DESC").Order("id DESC").Find(&requestModels).Error; err != nil {
		return nil, fmt.Errorf("list dish requests: %w", err)
	}
	requests := make([]*domain.DishRequest, len(requestModels))
	for i := range requestModels {
		requests[i] = mappers.ToDomainDishRequest(&requestModels[i])
	}
	return requests, nil
}

// checkRequestID rejects ids the uuid column cannot hold; postgres would fail the
// query with 22P02 instead of finding nothing.
func checkRequestID(requestID string) error {
	if _, err := uuid.Parse(requestID); err != nil {
		return domain.NewError(domain.CodeNotFound, "dish request %s not found", requestID)
	}
	return nil
}

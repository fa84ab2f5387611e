package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
)

type DishRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]domain.DishRequest
}

func NewDishRequestRepository() *DishRequestRepository {
	return &DishRequestRepository{requests: make(map[string]domain.DishRequest)}
}

func (r *DishRequestRepository) CreateRequest(ctx context.Context, request *domain.DishRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.requests[request.ID]; exists {
		return domain.NewError(domain.CodeConflict, "dish request %s already exists", request.ID)
	}
	r.requests[request.ID] = *request
	return nil
}

func (r *DishRequestRepository) GetRequestByID(ctx context.Context, requestID string) (*domain.DishRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	request, ok := r.requests[requestID]
	if !ok {
		return nil, domain.NewError(domain.CodeNotFound, "dish request %s not found", requestID)
	}
	return &request, nil
}

func (r *DishRequestRepository) UpdateRequestStatus(ctx context.Context, requestID string, status domain.RequestStatus, at time.Time) (*domain.DishRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[requestID]
	if !ok {
		return nil, domain.NewError(domain.CodeNotFound, "dish request %s not found", requestID)
	}
	request.Status = status
	request.UpdatedAt = at
	r.requests[requestID] = request
	return &request, nil
}

func (r *DishRequestRepository) DeleteRequest(ctx context.Context, requestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[requestID]; !ok {
		return domain.NewError(domain.CodeNotFound, "dish request %s not found", requestID)
	}
	delete(r.requests, requestID)
	return nil
}

func (r *DishRequestRepository) ListRequestsByStatus(ctx context.Context, status domain.RequestStatus) ([]*domain.DishRequest, error) {
	return r.list(func(request *domain.DishRequest) bool { return request.Status == status }), nil
}

func (r *DishRequestRepository) ListRequestsByCustomer(ctx context.Context, customerID string) ([]*domain.DishRequest, error) {
	return r.list(func(request *domain.DishRequest) bool { return request.CustomerID == customerID }), nil
}

// list returns matching requests newest first.
func (r *DishRequestRepository) list(match func(*domain.DishRequest) bool) []*domain.DishRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.DishRequest, 0)
	for _, request := range r.requests {
		request := request
		if match(&request) {
			result = append(result, &request)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/postgres"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dish.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := postgres.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newRequest(id, customerID string, createdAt time.Time) *domain.DishRequest {
	return &domain.DishRequest{
		ID:             id,
		Code:           "DR-" + id,
		CustomerID:     customerID,
		DishName:       "Ofada stew",
		SuggestedPrice: 20,
		Servings:       2,
		RequestedTime:  "18:00",
		RequestedDate:  "2026-03-11",
		Fulfillment:    domain.DeliveryTo("3 Broad St"),
		Status:         domain.RequestActive,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
}

func newOffer(id, requestID, sellerID string, submittedAt time.Time) *domain.Offer {
	return &domain.Offer{
		ID:          id,
		RequestID:   requestID,
		SellerID:    sellerID,
		CustomerID:  "customer-1",
		Price:       25,
		Fulfillment: domain.Pickup(),
		Status:      domain.OfferPending,
		SubmittedAt: submittedAt,
		ExpiresAt:   submittedAt.Add(30 * time.Minute),
		UpdatedAt:   submittedAt,
	}
}

func TestDishRequestRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDefaultDishRequestRepository(openTestDB(t))

	first := newRequest("11111111-1111-1111-1111-111111111111", "customer-1", testNow)
	second := newRequest("22222222-2222-2222-2222-222222222222", "customer-1", testNow.Add(time.Minute))
	other := newRequest("33333333-3333-3333-3333-333333333333", "customer-2", testNow.Add(2*time.Minute))
	for _, r := range []*domain.DishRequest{first, second, other} {
		if err := repo.CreateRequest(ctx, r); err != nil {
			t.Fatalf("create %s: %v", r.ID, err)
		}
	}

	got, err := repo.GetRequestByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Fulfillment != first.Fulfillment || got.DishName != first.DishName || !got.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("got = %+v, want %+v", got, first)
	}

	mine, err := repo.ListRequestsByCustomer(ctx, "customer-1")
	if err != nil {
		t.Fatalf("list by customer: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != second.ID {
		t.Fatalf("expected newest first, got %d requests", len(mine))
	}

	if _, err := repo.UpdateRequestStatus(ctx, other.ID, domain.RequestInactive, testNow.Add(time.Hour)); err != nil {
		t.Fatalf("update status: %v", err)
	}
	active, err := repo.ListRequestsByStatus(ctx, domain.RequestActive)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active = %d, want 2", len(active))
	}

	if err := repo.DeleteRequest(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetRequestByID(ctx, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteRequest(ctx, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := repo.UpdateRequestStatus(ctx, first.ID, domain.RequestActive, testNow); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestDishRequestRepository_MalformedIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewDefaultDishRequestRepository(openTestDB(t))

	for _, id := range []string{"abc", "1", "11111111-1111-1111-1111-11111111111z"} {
		t.Run(id, func(t *testing.T) {
			if _, err := repo.GetRequestByID(ctx, id); domain.CodeOf(err) != domain.CodeNotFound {
				t.Fatalf("get: got %v, want NOT_FOUND", err)
			}
			if _, err := repo.UpdateRequestStatus(ctx, id, domain.RequestInactive, testNow); domain.CodeOf(err) != domain.CodeNotFound {
				t.Fatalf("update: got %v, want NOT_FOUND", err)
			}
			if err := repo.DeleteRequest(ctx, id); domain.CodeOf(err) != domain.CodeNotFound {
				t.Fatalf("delete: got %v, want NOT_FOUND", err)
			}
		})
	}
}

func TestOfferRepository_PendingUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewDefaultOfferRepository(openTestDB(t))

	first := newOffer("offer-1", "req-1", "seller-a", testNow)
	if err := repo.CreateOffer(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := repo.CreateOffer(ctx, newOffer("offer-2", "req-1", "seller-a", testNow.Add(time.Second)))
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if conflict.Existing == nil || conflict.Existing.ID != first.ID {
		t.Fatalf("conflict should carry %s, got %+v", first.ID, conflict.Existing)
	}

	if err := repo.CreateOffer(ctx, newOffer("offer-3", "req-1", "seller-b", testNow)); err != nil {
		t.Fatalf("other seller: %v", err)
	}

	if _, err := repo.TransitionOfferStatus(ctx, domain.StatusChange{
		OfferID: first.ID, From: domain.OfferPending, To: domain.OfferRejected, At: testNow.Add(time.Minute),
	}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := repo.CreateOffer(ctx, newOffer("offer-4", "req-1", "seller-a", testNow.Add(2*time.Minute))); err != nil {
		t.Fatalf("resubmit after reject: %v", err)
	}

	latest, err := repo.FindLatestOffer(ctx, "seller-a", "req-1")
	if err != nil || latest == nil || latest.ID != "offer-4" {
		t.Fatalf("latest = %+v, %v; want offer-4", latest, err)
	}

	// Same submitted_at: the pending offer wins over a finalized one with a larger id.
	tied := newOffer("offer-z", "req-2", "seller-a", testNow)
	if err := repo.CreateOffer(ctx, tied); err != nil {
		t.Fatalf("create tied: %v", err)
	}
	if _, err := repo.TransitionOfferStatus(ctx, domain.StatusChange{
		OfferID: tied.ID, From: domain.OfferPending, To: domain.OfferRejected, At: testNow,
	}); err != nil {
		t.Fatalf("reject tied: %v", err)
	}
	if err := repo.CreateOffer(ctx, newOffer("offer-0", "req-2", "seller-a", testNow)); err != nil {
		t.Fatalf("create pending tied: %v", err)
	}
	latest, err = repo.FindLatestOffer(ctx, "seller-a", "req-2")
	if err != nil || latest == nil || latest.ID != "offer-0" || !latest.IsPending() {
		t.Fatalf("latest = %+v, %v; want pending offer-0", latest, err)
	}

	none, err := repo.FindLatestOffer(ctx, "seller-z", "req-1")
	if err != nil || none != nil {
		t.Fatalf("latest for unknown seller = %+v, %v; want nil", none, err)
	}
}

func TestOfferRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewDefaultOfferRepository(openTestDB(t))

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.CreateOffer(ctx, newOffer("offer-"+string(rune('a'+i)), "req-1", "seller-a", testNow))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if created != 1 || conflicts != attempts-1 {
		t.Fatalf("created = %d, conflicts = %d", created, conflicts)
	}
}

func TestOfferRepository_TransitionOfferStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewDefaultOfferRepository(openTestDB(t))

	a := newOffer("offer-a", "req-1", "seller-a", testNow)
	b := newOffer("offer-b", "req-1", "seller-b", testNow)
	for _, o := range []*domain.Offer{a, b} {
		if err := repo.CreateOffer(ctx, o); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	decidedAt := testNow.Add(5 * time.Minute)
	approved, err := repo.TransitionOfferStatus(ctx, domain.StatusChange{OfferID: a.ID, From: domain.OfferPending, To: domain.OfferApproved, At: decidedAt})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != domain.OfferApproved || approved.DecidedAt == nil || !approved.DecidedAt.Equal(decidedAt) {
		t.Fatalf("approved = %+v", approved)
	}

	_, err = repo.TransitionOfferStatus(ctx, domain.StatusChange{OfferID: a.ID, From: domain.OfferPending, To: domain.OfferExpired, At: decidedAt})
	if !errors.Is(err, domain.ErrStaleState) {
		t.Fatalf("expected ErrStaleState, got %v", err)
	}

	_, err = repo.TransitionOfferStatus(ctx, domain.StatusChange{OfferID: b.ID, From: domain.OfferPending, To: domain.OfferApproved, At: decidedAt})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("second approval: expected ErrInvalidState, got %v", err)
	}
	stillPending, _ := repo.GetOfferByID(ctx, b.ID)
	if stillPending.Status != domain.OfferPending {
		t.Fatalf("status = %s, want pending", stillPending.Status)
	}

	_, err = repo.TransitionOfferStatus(ctx, domain.StatusChange{OfferID: "missing", From: domain.OfferPending, To: domain.OfferExpired, At: decidedAt})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOfferRepository_FindExpiredOffers(t *testing.T) {
	ctx := context.Background()
	repo := NewDefaultOfferRepository(openTestDB(t))

	early := newOffer("offer-early", "req-1", "seller-a", testNow)
	late := newOffer("offer-late", "req-1", "seller-b", testNow.Add(20*time.Minute))
	decided := newOffer("offer-decided", "req-2", "seller-a", testNow)
	for _, o := range []*domain.Offer{early, late, decided} {
		if err := repo.CreateOffer(ctx, o); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := repo.TransitionOfferStatus(ctx, domain.StatusChange{OfferID: decided.ID, From: domain.OfferPending, To: domain.OfferRejected, At: testNow}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	expired, err := repo.FindExpiredOffers(ctx, early.ExpiresAt, 10)
	if err != nil {
		t.Fatalf("find expired: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != early.ID {
		t.Fatalf("expired = %d offers, want only %s", len(expired), early.ID)
	}

	expired, err = repo.FindExpiredOffers(ctx, late.ExpiresAt.Add(time.Hour), 1)
	if err != nil {
		t.Fatalf("find expired: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != early.ID {
		t.Fatalf("limit should return the earliest deadline first")
	}
}

package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-dish-request-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/arbitration"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/offer"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/request"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/wizard"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	offerMetrics := metrics.NewOfferMetrics(reg)

	requestRepo := memory.NewDishRequestRepository()
	ledger := offer.NewDefaultLedger(
		memory.NewOfferRepository(),
		requestRepo,
		memory.NewOfferHistoryRepository(),
		nil,
		offerMetrics,
		logger,
		0,
	).WithClock(clock)
	store := request.NewDefaultStore(requestRepo, ledger, offerMetrics, logger).WithClock(clock)
	wz := wizard.NewWizard(store, ledger, offerMetrics, logger)
	arbiter := arbitration.NewService(ledger, requestRepo, arbitration.RejectSiblings, offerMetrics, logger).WithClock(clock)

	return New(Config{
		JWTSecret:      testSecret,
		AllowedOrigins: []string{"*"},
		Gatherer:       reg,
		Logger:         logger,
	}, Handlers{
		Requests:    handlers.NewRequestHandler(store, logger),
		Negotiation: handlers.NewNegotiationHandler(wz, wizard.NewRegistry(time.Hour), logger),
		Offers:      handlers.NewOfferHandler(ledger, store, arbiter, logger),
	})
}

func token(t *testing.T, actor string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": actor}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func do(t *testing.T, srv http.Handler, method, path, actor, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, actor))
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

const pickupRequest = `{"dish_name":"Jollof rice","suggested_price":20,"servings":2,"time":"19:00","date":"2026-04-02","fulfillment":"pickup"}`

func TestPublicEndpointsAndAuth(t *testing.T) {
	srv := newTestServer(t)

	expectStatus(t, do(t, srv, http.MethodGet, "/healthz", "", ""), http.StatusOK)
	expectStatus(t, do(t, srv, http.MethodGet, "/metrics", "", ""), http.StatusOK)
	expectStatus(t, do(t, srv, http.MethodGet, "/v1/requests", "", ""), http.StatusUnauthorized)

	req := httptest.NewRequest(http.MethodGet, "/v1/requests", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusUnauthorized)

	wrongKey, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("other"))
	req = httptest.NewRequest(http.MethodGet, "/v1/requests", nil)
	req.Header.Set("Authorization", "Bearer "+wrongKey)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/requests", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin = %q, want *", got)
	}
}

func TestRequestLifecycle(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/v1/requests", "customer-1", pickupRequest)
	expectStatus(t, w, http.StatusCreated)
	created := decode[response.DishRequestResponse](t, w)
	if created.CustomerID != "customer-1" || created.Status != "active" {
		t.Fatalf("unexpected request %+v", created)
	}

	w = do(t, srv, http.MethodPost, "/v1/requests", "customer-1", `{"dish_name":"Soup","suggested_price":0,"servings":1,"time":"19:00","date":"2026-04-02","fulfillment":"pickup"}`)
	expectStatus(t, w, http.StatusBadRequest)
	if body := decode[response.ErrorResponse](t, w); body.Code != "VALIDATION_ERROR" {
		t.Fatalf("code = %s, want VALIDATION_ERROR", body.Code)
	}

	active := decode[[]response.DishRequestResponse](t, do(t, srv, http.MethodGet, "/v1/requests", "seller-1", ""))
	if len(active) != 1 || active[0].ID != created.ID {
		t.Fatalf("unexpected active list %+v", active)
	}

	expectStatus(t, do(t, srv, http.MethodPatch, "/v1/requests/"+created.ID+"/status", "seller-1", `{"active":false}`), http.StatusForbidden)
	expectStatus(t, do(t, srv, http.MethodPatch, "/v1/requests/"+created.ID+"/status", "customer-1", `{}`), http.StatusBadRequest)

	w = do(t, srv, http.MethodPatch, "/v1/requests/"+created.ID+"/status", "customer-1", `{"active":false}`)
	expectStatus(t, w, http.StatusOK)
	if got := decode[response.DishRequestResponse](t, w); got.Status != "inactive" {
		t.Fatalf("status = %s, want inactive", got.Status)
	}
	active = decode[[]response.DishRequestResponse](t, do(t, srv, http.MethodGet, "/v1/requests", "seller-1", ""))
	if len(active) != 0 {
		t.Fatalf("expected no active requests, got %d", len(active))
	}
	mine := decode[[]response.DishRequestResponse](t, do(t, srv, http.MethodGet, "/v1/requests/mine", "customer-1", ""))
	if len(mine) != 1 {
		t.Fatalf("expected 1 own request, got %d", len(mine))
	}

	expectStatus(t, do(t, srv, http.MethodDelete, "/v1/requests/"+created.ID, "seller-1", ""), http.StatusForbidden)
	expectStatus(t, do(t, srv, http.MethodDelete, "/v1/requests/"+created.ID, "customer-1", ""), http.StatusNoContent)
	expectStatus(t, do(t, srv, http.MethodGet, "/v1/requests/"+created.ID, "customer-1", ""), http.StatusNotFound)
}

func TestSetStatusRequiresActiveFlag(t *testing.T) {
	srv := newTestServer(t)
	created := decode[response.DishRequestResponse](t, do(t, srv, http.MethodPost, "/v1/requests", "customer-1", pickupRequest))

	for _, body := range []string{`{}`, `{"active":null}`, `{"active":"yes"}`, `not json`} {
		t.Run(body, func(t *testing.T) {
			w := do(t, srv, http.MethodPatch, "/v1/requests/"+created.ID+"/status", "customer-1", body)
			expectStatus(t, w, http.StatusBadRequest)
			if got := decode[response.ErrorResponse](t, w); got.Code != "VALIDATION_ERROR" {
				t.Fatalf("code = %s, want VALIDATION_ERROR", got.Code)
			}
		})
	}

	got := decode[response.DishRequestResponse](t, do(t, srv, http.MethodGet, "/v1/requests/"+created.ID, "customer-1", ""))
	if got.Status != "active" {
		t.Fatalf("status = %s, want active", got.Status)
	}
}

func TestMalformedRequestIDIsNotFound(t *testing.T) {
	srv := newTestServer(t)

	expectStatus(t, do(t, srv, http.MethodGet, "/v1/requests/abc", "customer-1", ""), http.StatusNotFound)
	expectStatus(t, do(t, srv, http.MethodPatch, "/v1/requests/abc/status", "customer-1", `{"active":false}`), http.StatusNotFound)
	expectStatus(t, do(t, srv, http.MethodDelete, "/v1/requests/abc", "customer-1", ""), http.StatusNotFound)
	expectStatus(t, do(t, srv, http.MethodPost, "/v1/requests/abc/negotiation", "seller-1", `{}`), http.StatusNotFound)
}

func TestNegotiationAndDecision(t *testing.T) {
	srv := newTestServer(t)
	created := decode[response.DishRequestResponse](t, do(t, srv, http.MethodPost, "/v1/requests", "customer-1", pickupRequest))
	base := "/v1/requests/" + created.ID + "/negotiation"

	// seller-1 accepts the suggested price
	w := do(t, srv, http.MethodPost, base, "seller-1", `{"pickup_location":"Market stall 4"}`)
	expectStatus(t, w, http.StatusCreated)
	if view := decode[response.NegotiationResponse](t, w); view.Step != "time_check" || view.Question == "" {
		t.Fatalf("unexpected start view %+v", view)
	}
	w = do(t, srv, http.MethodPost, base+"/answer", "seller-1", `{"answer":true}`)
	if view := decode[response.NegotiationResponse](t, w); view.Step != "price_approval" {
		t.Fatalf("step = %s, want price_approval", view.Step)
	}
	w = do(t, srv, http.MethodPost, base+"/answer", "seller-1", `{"answer":true}`)
	expectStatus(t, w, http.StatusOK)
	first := decode[response.NegotiationResponse](t, w)
	if first.Outcome != "submitted" || first.Offer == nil || first.Offer.Price != 20 || first.Offer.PickupLocation != "Market stall 4" {
		t.Fatalf("unexpected submit view %+v", first)
	}

	// finished sessions are dropped, and a pending offer blocks a new one
	expectStatus(t, do(t, srv, http.MethodPost, base+"/answer", "seller-1", `{"answer":true}`), http.StatusNotFound)
	w = do(t, srv, http.MethodPost, base, "seller-1", "")
	expectStatus(t, w, http.StatusConflict)
	if body := decode[response.ErrorResponse](t, w); body.Offer == nil || body.Offer.ID != first.Offer.ID {
		t.Fatalf("expected conflict with existing offer, got %+v", body)
	}

	// seller-2 counters
	expectStatus(t, do(t, srv, http.MethodPost, base, "seller-2", ""), http.StatusCreated)
	do(t, srv, http.MethodPost, base+"/answer", "seller-2", `{"answer":true}`)
	w = do(t, srv, http.MethodPost, base+"/answer", "seller-2", `{"answer":false}`)
	if view := decode[response.NegotiationResponse](t, w); view.Step != "counter_price_entry" {
		t.Fatalf("step = %s, want counter_price_entry", view.Step)
	}
	expectStatus(t, do(t, srv, http.MethodPost, base+"/price", "seller-2", `{"price":"abc"}`), http.StatusBadRequest)
	w = do(t, srv, http.MethodPost, base+"/price", "seller-2", `{"price":"18"}`)
	expectStatus(t, w, http.StatusOK)
	second := decode[response.NegotiationResponse](t, w)
	if second.Offer == nil || second.Offer.Price != 18 {
		t.Fatalf("unexpected counter offer %+v", second)
	}

	// listings
	received := decode[[]*response.OfferResponse](t, do(t, srv, http.MethodGet, "/v1/offers/received", "customer-1", ""))
	if len(received) != 2 {
		t.Fatalf("expected 2 received offers, got %d", len(received))
	}
	expectStatus(t, do(t, srv, http.MethodGet, "/v1/requests/"+created.ID+"/offers", "seller-1", ""), http.StatusForbidden)
	mine := decode[[]*response.OfferResponse](t, do(t, srv, http.MethodGet, "/v1/offers/mine", "seller-2", ""))
	if len(mine) != 1 || mine[0].ID != second.Offer.ID {
		t.Fatalf("unexpected seller listing %+v", mine)
	}

	// decisions
	decision := "/v1/offers/" + first.Offer.ID + "/decision"
	expectStatus(t, do(t, srv, http.MethodPost, decision, "seller-1", `{"decision":"approve"}`), http.StatusForbidden)
	expectStatus(t, do(t, srv, http.MethodPost, decision, "customer-1", `{"decision":"maybe"}`), http.StatusBadRequest)
	w = do(t, srv, http.MethodPost, decision, "customer-1", `{"decision":"approve"}`)
	expectStatus(t, w, http.StatusOK)
	if got := decode[response.OfferResponse](t, w); got.Status != "approved" {
		t.Fatalf("status = %s, want approved", got.Status)
	}
	expectStatus(t, do(t, srv, http.MethodPost, decision, "customer-1", `{"decision":"reject"}`), http.StatusConflict)

	sibling := decode[response.OfferResponse](t, do(t, srv, http.MethodGet, "/v1/offers/"+second.Offer.ID, "seller-2", ""))
	if sibling.Status != "rejected" {
		t.Fatalf("sibling status = %s, want rejected", sibling.Status)
	}
	expectStatus(t, do(t, srv, http.MethodGet, "/v1/offers/"+second.Offer.ID, "stranger", ""), http.StatusForbidden)

	history := decode[[]response.OfferEventResponse](t, do(t, srv, http.MethodGet, "/v1/offers/"+first.Offer.ID+"/history", "customer-1", ""))
	if len(history) != 2 || history[0].ToStatus != "pending" || history[1].ToStatus != "approved" {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestNegotiationDeclineAndAbandon(t *testing.T) {
	srv := newTestServer(t)
	created := decode[response.DishRequestResponse](t, do(t, srv, http.MethodPost, "/v1/requests", "customer-1", pickupRequest))
	base := "/v1/requests/" + created.ID + "/negotiation"

	expectStatus(t, do(t, srv, http.MethodPost, base, "customer-1", ""), http.StatusForbidden)

	do(t, srv, http.MethodPost, base, "seller-1", "")
	w := do(t, srv, http.MethodPost, base+"/answer", "seller-1", `{"answer":false}`)
	expectStatus(t, w, http.StatusOK)
	if view := decode[response.NegotiationResponse](t, w); view.Outcome != "declined" || view.Offer != nil {
		t.Fatalf("unexpected decline view %+v", view)
	}

	do(t, srv, http.MethodPost, base, "seller-1", "")
	expectStatus(t, do(t, srv, http.MethodDelete, base, "seller-1", ""), http.StatusNoContent)
	expectStatus(t, do(t, srv, http.MethodDelete, base, "seller-1", ""), http.StatusNotFound)

	offers := decode[[]*response.OfferResponse](t, do(t, srv, http.MethodGet, "/v1/requests/"+created.ID+"/offers", "customer-1", ""))
	if len(offers) != 0 {
		t.Fatalf("expected no offers, got %d", len(offers))
	}
}

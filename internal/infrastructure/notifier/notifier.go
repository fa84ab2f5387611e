package notifier

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
)

const SignatureHeader = "X-Signature"

// WebhookNotifier posts offer status changes to a callback URL. Delivery is fire-and-forget;
// the consumer is expected to re-query on missed callbacks.
type WebhookNotifier struct {
	callbackURL string
	secret      []byte
	client      *http.Client
	logger      *slog.Logger
}

func NewWebhookNotifier(callbackURL, secret string, timeout time.Duration, logger *slog.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookNotifier{
		callbackURL: callbackURL,
		secret:      []byte(secret),
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

func (n *WebhookNotifier) PublishOfferEvent(ctx context.Context, event domain.OfferStatusEvent, offer *domain.Offer) error {
	payload := NewCallbackPayload(event, offer)
	go func() {
		if err := n.Send(context.WithoutCancel(ctx), payload); err != nil {
			n.logger.Error("offer callback failed",
				"offer_id", payload.OfferID, "status", payload.Status, "error", err)
		}
	}()
	return nil
}

func NewCallbackPayload(event domain.OfferStatusEvent, offer *domain.Offer) CallbackPayload {
	eventType := "offer." + string(event.ToStatus)
	if event.FromStatus == "" {
		eventType = "offer.submitted"
	}
	return CallbackPayload{
		EventType:  eventType,
		OfferID:    offer.ID,
		RequestID:  offer.RequestID,
		SellerID:   offer.SellerID,
		CustomerID: offer.CustomerID,
		Status:     string(event.ToStatus),
		Reason:     string(event.Reason),
		Price:      offer.Price,
		ExpiresAt:  offer.ExpiresAt.UTC(),
		OccurredAt: event.OccurredAt.UTC(),
	}
}

// Send delivers one payload synchronously. The body is signed with HMAC-SHA256 when a
// secret is configured.
func (n *WebhookNotifier) Send(ctx context.Context, payload CallbackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal callback: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.callbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if len(n.secret) > 0 {
		req.Header.Set(SignatureHeader, Sign(n.secret, body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send callback: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
	n.logger.Debug("offer callback sent", "offer_id", payload.OfferID, "status", payload.Status)
	return nil
}

func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

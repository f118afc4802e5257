package dispatch

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/Thegreatsura/merchant/internal/domain/event"
	"github.com/Thegreatsura/merchant/internal/pkg/config"
	"github.com/Thegreatsura/merchant/internal/pkg/errs"
	"github.com/Thegreatsura/merchant/internal/usecase/shared"

	"golang.org/x/time/rate"
)

const (
	HeaderEvent     = "X-Merchant-Event"
	HeaderSignature = "X-Merchant-Signature"
	HeaderDelivery  = "X-Merchant-Delivery"
)

// HTTPDispatcher posts outbox rows to subscriber endpoints. The limiter is shared by all subscribers.
type HTTPDispatcher struct {
	client  *http.Client
	limiter *rate.Limiter
	timeout time.Duration
}

func NewHTTPDispatcher(cfg config.DispatchConfig) *HTTPDispatcher {
	limit := rate.Limit(cfg.RatePerSec)
	if cfg.RatePerSec <= 0 {
		limit = rate.Inf
	}
	burst := max(int(cfg.RatePerSec), 1)
	return &HTTPDispatcher{
		client:  &http.Client{},
		limiter: rate.NewLimiter(limit, burst),
		timeout: cfg.Timeout,
	}
}

var _ shared.Dispatcher = (*HTTPDispatcher)(nil)

func (d *HTTPDispatcher) Deliver(ctx context.Context, t event.Target) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return errs.Wrap(err, "dispatch rate limit")
	}
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(t.Delivery.Payload))
	if err != nil {
		return errs.Wrap(err, "build delivery request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, t.Delivery.EventType)
	req.Header.Set(HeaderDelivery, t.Delivery.ID.String())
	req.Header.Set(HeaderSignature, "sha256="+Sign(t.Secret, t.Delivery.Payload))

	resp, err := d.client.Do(req)
	if err != nil {
		return errs.Wrap(err, "post delivery")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errs.Newf("subscriber responded %d", resp.StatusCode)
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

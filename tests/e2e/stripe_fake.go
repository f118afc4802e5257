//go:build e2e

package e2e

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
)

// FakeStripe answers the few Stripe endpoints the gateway calls and records the forms it receives.
type FakeStripe struct {
	srv *httptest.Server

	mu       sync.Mutex
	seq      int
	requests map[string][]url.Values
}

func NewFakeStripe() *FakeStripe {
	f := &FakeStripe{requests: map[string][]url.Values{}}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

func (f *FakeStripe) URL() string { return f.srv.URL }

func (f *FakeStripe) Close() { f.srv.Close() }

func (f *FakeStripe) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq = 0
	f.requests = map[string][]url.Values{}
}

// Requests returns the forms posted to path, oldest first.
func (f *FakeStripe) Requests(path string) []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.requests[path]...)
}

func (f *FakeStripe) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(body))

	f.mu.Lock()
	f.seq++
	n := f.seq
	f.requests[r.URL.Path] = append(f.requests[r.URL.Path], form)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch path := r.URL.Path; {
	case strings.HasPrefix(path, "/v1/checkout/sessions/") && strings.HasSuffix(path, "/expire"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/v1/checkout/sessions/"), "/expire")
		fmt.Fprintf(w, `{"id":%q,"object":"checkout.session","status":"expired"}`, id)
	case path == "/v1/checkout/sessions":
		fmt.Fprintf(w, `{"id":"cs_e2e_%d","object":"checkout.session","url":"https://checkout.stripe.test/cs_e2e_%d"}`, n, n)
	case path == "/v1/coupons":
		fmt.Fprintf(w, `{"id":"coupon_e2e_%d","object":"coupon"}`, n)
	case path == "/v1/refunds":
		fmt.Fprintf(w, `{"id":"re_e2e_%d","object":"refund"}`, n)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"invalid_request_error","message":"unknown path"}}`)
	}
}

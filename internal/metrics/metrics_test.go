package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	r.ObserveGateway("list", "ok", time.Millisecond)
	r.Mutation("cart", "add_item")
	r.PersistFailed("cart")
	r.Recovered("session")
	r.SetCartItems(3)
	r.EventPublished(true)
}

func TestRegistryCountsAndExposes(t *testing.T) {
	r := NewRegistry()
	r.ObserveGateway("get", "rejected", 20*time.Millisecond)
	r.Mutation("cart", "add_item")
	r.Mutation("cart", "add_item")
	r.SetCartItems(2)

	if got := testutil.ToFloat64(r.StoreMutations.WithLabelValues("cart", "add_item")); got != 2 {
		t.Fatalf("mutations=%v want 2", got)
	}
	if got := testutil.ToFloat64(r.CartItems); got != 2 {
		t.Fatalf("cart items=%v want 2", got)
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `hakey_catalog_requests_total{op="get",outcome="rejected"} 1`) {
		t.Fatalf("missing gateway counter in output:\n%s", rec.Body.String())
	}
}

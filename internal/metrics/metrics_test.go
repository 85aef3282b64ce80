package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New("pharmacy")

	m.OrderPlaced()
	m.OrderPlaced()
	m.OrderStatusChanged("Shipped")
	m.CartOp("add")
	m.Login(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersPlaced))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusChanges.WithLabelValues("Shipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartOps.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("failure")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OrderPlaced()
		m.OrderStatusChanged("Pending")
		m.CartOp("clear")
		m.Login(true)
		m.ObserveHTTP("GET", "/x", 200, time.Millisecond)
	})
}

func TestHandlerExposesSeries(t *testing.T) {
	m := New("pharmacy")
	m.ObserveHTTP("GET", "/api/v1/shop/products", 200, 20*time.Millisecond)
	m.OrderPlaced()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pharmacy_orders_placed_total 1")
	assert.Contains(t, string(body), "pharmacy_http_request_duration_seconds_count")
}

package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"empregozap-engine/internal/domain"
	"empregozap-engine/internal/metrics"
)

func strp(s string) *string { return &s }

func testForwarder(url string) (*Forwarder, *metrics.Set) {
	met := metrics.New(prometheus.NewRegistry())
	f := NewForwarder(url, 5*time.Second,
		func() (string, error) { return "secret-key", nil },
		met, zap.NewNop().Sugar())
	f.now = func() time.Time { return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) }
	return f, met
}

func TestForward_PostsContract(t *testing.T) {
	var got payload
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("X-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f, met := testForwarder(srv.URL)
	err := f.Forward(context.Background(), domain.Search{ID: 7, UserID: "u1"}, []domain.Listing{
		{Role: "Engenheiro", URL: "https://example.com/1", Source: "gupy", Company: strp("Acme")},
	})
	require.NoError(t, err)

	assert.Equal(t, "secret-key", apiKey)
	assert.EqualValues(t, 7, got.SearchID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "2025-06-02T12:00:00Z", got.Timestamp)
	require.Len(t, got.Jobs, 1)
	assert.Equal(t, "Engenheiro", got.Jobs[0].Role)

	assert.Equal(t, 1.0, testutil.ToFloat64(met.WebhookCalls.WithLabelValues("success")))
}

func TestForward_DropsInvalidListings(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	f, _ := testForwarder(srv.URL)
	err := f.Forward(context.Background(), domain.Search{ID: 1, UserID: "u1"}, []domain.Listing{
		{Role: "Sem URL", Source: "gupy"},
		{Role: "Válida", URL: "https://example.com/ok", Source: "gupy"},
	})
	require.NoError(t, err)
	require.Len(t, got.Jobs, 1)
	assert.Equal(t, "Válida", got.Jobs[0].Role)
}

func TestForward_AllInvalidSkipsCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	f, _ := testForwarder(srv.URL)
	err := f.Forward(context.Background(), domain.Search{ID: 1}, []domain.Listing{
		{Role: "Sem URL", Source: "gupy"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, calls.Load())
}

func TestForward_NoURLConfigured(t *testing.T) {
	f, _ := testForwarder("")
	err := f.Forward(context.Background(), domain.Search{ID: 1}, []domain.Listing{
		{Role: "Qualquer", URL: "https://example.com/1", Source: "gupy"},
	})
	require.NoError(t, err)
}

func TestForward_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f, met := testForwarder(srv.URL)
	err := f.Forward(context.Background(), domain.Search{ID: 1, UserID: "u1"}, []domain.Listing{
		{Role: "Engenheiro", URL: "https://example.com/1", Source: "gupy"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(met.WebhookCalls.WithLabelValues("success")))
}

func TestForward_ClientErrorDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	f, met := testForwarder(srv.URL)
	err := f.Forward(context.Background(), domain.Search{ID: 1, UserID: "u1"}, []domain.Listing{
		{Role: "Engenheiro", URL: "https://example.com/1", Source: "gupy"},
	})
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(met.WebhookCalls.WithLabelValues("error")))
}

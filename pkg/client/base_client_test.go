package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockRoundTripper serves requests from an in-process handler.
type mockRoundTripper struct {
	handler http.Handler
	calls   int
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.calls++
	rec := httptest.NewRecorder()
	m.handler.ServeHTTP(rec, req)
	return rec.Result(), nil
}

type failingTransport struct {
	calls int
}

func (f *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

func TestBaseClient_Get(t *testing.T) {
	rt := &mockRoundTripper{handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "agent/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"ok":true}`))
	})}

	c := NewBaseClient("test", ClientConfig{
		UserAgent:  "agent/1.0",
		HTTPClient: &http.Client{Transport: rt},
	}, zap.NewNop())

	body, err := c.Get(context.Background(), "http://upstream.test/ping")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, 1, rt.calls)
	assert.Equal(t, "closed", c.State())
}

func TestBaseClient_Get_DoesNotRetry(t *testing.T) {
	transport := &failingTransport{}
	c := NewBaseClient("test", ClientConfig{HTTPClient: &http.Client{Transport: transport}}, zap.NewNop())

	_, err := c.Get(context.Background(), "http://upstream.test/ping")
	require.Error(t, err)
	assert.Equal(t, 1, transport.calls)
}

func TestBaseClient_BreakerOpensAfterThreshold(t *testing.T) {
	transport := &failingTransport{}
	c := NewBaseClient("test", ClientConfig{
		Threshold:      2,
		BreakerTimeout: time.Minute,
		HTTPClient:     &http.Client{Transport: transport},
	}, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := c.Get(context.Background(), "http://upstream.test/ping")
		require.Error(t, err)
	}
	assert.Equal(t, "open", c.State())

	_, err := c.Get(context.Background(), "http://upstream.test/ping")
	assert.Error(t, err)
	assert.Equal(t, 2, transport.calls, "open breaker must not reach the transport")
}

func TestBaseClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	rt := &mockRoundTripper{handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})}
	c := NewBaseClient("test", ClientConfig{
		Threshold:  1,
		HTTPClient: &http.Client{Transport: rt},
	}, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), "http://upstream.test/missing")
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	}
	assert.Equal(t, "closed", c.State())
}

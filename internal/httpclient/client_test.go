package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() ClientConfig {
	return ClientConfig{
		Timeout:      time.Second,
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 2 * time.Millisecond,
	}
}

func TestDefaultClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "u1", r.Header.Get("X-User-ID"))
		_, _ = w.Write([]byte(`{"tier":"premium"}`))
	}))
	defer srv.Close()

	resp, err := NewDefaultClient(testConfig()).Send(context.Background(), &Request{
		Method:  http.MethodGet,
		URL:     srv.URL,
		Headers: map[string]string{"X-User-ID": "u1"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"tier":"premium"}`, string(resp.Body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestDefaultClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))
	defer srv.Close()

	_, err := NewDefaultClient(testConfig()).Send(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	assert.True(t, ierr.IsHTTPClient(err))

	httpErr, ok := IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "missing", string(httpErr.Response))
	assert.Equal(t, int32(1), calls.Load())
}

func TestDefaultClient_GivesUpAfterRetryMax(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewDefaultClient(testConfig()).Send(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	httpErr, ok := IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

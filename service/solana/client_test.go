package solana

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brojonat/getblock-proxy/service/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, timeout time.Duration) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(url, timeout, metrics.NewMetrics(prometheus.NewRegistry()), logger)
}

func TestFetchBlock_ForwardsBodyVerbatim(t *testing.T) {
	request := []byte(`{"jsonrpc":"2.0","id":42,"method":"getBlock","params":[430, {"encoding":"json"}]}`)

	var gotBody []byte
	var gotMethod, gotContentType string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"jsonrpc":"2.0","id":42,"result":{"transactions":[]}}`)
	}))
	defer upstream.Close()

	env, err := newTestClient(upstream.URL, time.Second).FetchBlock(context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, string(request), string(gotBody))
	assert.JSONEq(t, `42`, string(env.ID))
	assert.JSONEq(t, `{"transactions":[]}`, string(env.Result))
}

func TestFetchBlock_RPCErrorIsNotAnUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32004,"message":"Block not available for slot 1"}}`)
	}))
	defer upstream.Close()

	env, err := newTestClient(upstream.URL, time.Second).FetchBlock(context.Background(), []byte(`{}`))
	require.NoError(t, err)

	// The filter stage turns the missing result into ErrMissingResult.
	_, _, err = FilterBlock(env)
	assert.ErrorIs(t, err, ErrMissingResult)
}

func TestFetchBlock_Errors(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		wantStatus  int
		wantTimeout bool
	}{
		{
			name: "non-JSON body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "upstream connect error")
			},
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				io.WriteString(w, `{"jsonrpc":"2.0","error":{"code":429,"message":"Too many requests"}}`)
			},
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "slow upstream",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			wantTimeout: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(tt.handler)
			defer upstream.Close()

			env, err := newTestClient(upstream.URL, 50*time.Millisecond).FetchBlock(context.Background(), []byte(`{}`))
			require.Error(t, err)
			assert.Nil(t, env)

			var upErr *UpstreamError
			require.True(t, errors.As(err, &upErr), "got %v", err)
			assert.Equal(t, tt.wantStatus, upErr.StatusCode)
			assert.Equal(t, tt.wantTimeout, upErr.Timeout)

			if tt.wantTimeout {
				assert.Equal(t, KindUpstreamTimeout, Classify(err))
			} else {
				assert.Equal(t, KindUpstream, Classify(err))
			}
		})
	}
}

func TestFetchBlock_Unreachable(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	_, err := newTestClient(url, time.Second).FetchBlock(context.Background(), []byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, KindUpstream, Classify(err))
}

func TestFetchBlock_CallerCancellation(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer upstream.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(upstream.URL, time.Second).FetchBlock(ctx, []byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("https://api.mainnet-beta.solana.com", 0, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, DefaultTimeout, c.timeout)
	assert.Equal(t, "api.mainnet-beta.solana.com", c.endpoint)
}

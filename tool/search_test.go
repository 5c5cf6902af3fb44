package tool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisard/deepresearch/retry"
)

func noSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestSearchTool_Success(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "quantum computing", payload["query"])
		assert.Equal(t, float64(3), payload["max_results"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"answer": "short answer",
			"results": []map[string]interface{}{
				{"title": "Paper", "url": "https://example.com", "content": "snippet", "score": 0.91},
			},
		})
	}))
	defer srv.Close()

	st := NewSearchTool("tvly-key", func(o *SearchOptions) { o.BaseURL = srv.URL })
	out, err := st.Call(context.Background(), map[string]interface{}{
		"query":       "quantum computing",
		"max_results": float64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tvly-key", gotAuth)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "quantum computing", resp.Query)
	assert.Equal(t, "short answer", resp.Answer)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Paper", resp.Results[0].Title)
}

func TestSearchTool_RetriesRateLimit(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": []map[string]interface{}{}})
	}))
	defer srv.Close()

	var delays []time.Duration
	st := NewSearchTool("k", func(o *SearchOptions) {
		o.BaseURL = srv.URL
		o.Retry = retry.Policy{Sleep: noSleep(&delays)}
	})

	_, err := st.Call(context.Background(), map[string]interface{}{"query": "x"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	// Retry-After of 2s exceeds the 1s base delay and wins.
	require.Len(t, delays, 1)
	assert.Equal(t, 2*time.Second, delays[0])
}

func TestSearchTool_FatalStatusNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	var delays []time.Duration
	st := NewSearchTool("k", func(o *SearchOptions) {
		o.BaseURL = srv.URL
		o.Retry = retry.Policy{Sleep: noSleep(&delays)}
	})

	_, err := st.Call(context.Background(), map[string]interface{}{"query": "x"})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestSearchTool_ExhaustsAttempts(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var delays []time.Duration
	st := NewSearchTool("k", func(o *SearchOptions) {
		o.BaseURL = srv.URL
		o.Retry = retry.Policy{Sleep: noSleep(&delays)}
	})

	_, err := st.Call(context.Background(), map[string]interface{}{"query": "x"})
	require.Error(t, err)
	assert.Equal(t, retry.DefaultMaxAttempts, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestSearchTool_MissingQuery(t *testing.T) {
	st := NewSearchTool("k")
	_, err := st.Call(context.Background(), map[string]interface{}{})
	var terr *ToolError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "invalid_arguments", terr.Code)
}

package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *EmbeddingService) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewEmbeddingService(Config{
		APIKey:            "test-key",
		BaseURL:           srv.URL,
		RequestsPerMinute: 100000, // no throttling in tests
	})
	require.NoError(t, err)
	return srv, svc
}

func TestEmbedBatchPreservesInputOrder(t *testing.T) {
	_, svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		// Return results in reverse order; the client must reorder by
		// index.
		resp := map[string]any{"data": []map[string]any{
			{"index": 1, "embedding": []float64{2, 2}},
			{"index": 0, "embedding": []float64{1, 1}},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	out, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []float32{1, 1}, out[0])
	assert.Equal(t, []float32{2, 2}, out[1])
}

func TestEmbedBatchSplitsLargeInput(t *testing.T) {
	var requests int
	_, svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.LessOrEqual(t, len(req.Input), maxBatchSize)

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"index": i, "embedding": []float64{0.5}}
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": data}))
	})

	texts := make([]string, maxBatchSize+10)
	for i := range texts {
		texts[i] = "text"
	}

	out, err := svc.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, out, len(texts))
	assert.Equal(t, 2, requests)
}

func TestEmbedBatchAPIError(t *testing.T) {
	_, svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		resp := map[string]any{"error": map[string]any{"message": "invalid api key", "type": "auth"}}
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	_, svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty input")
	})

	out, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestNewEmbeddingServiceRequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)
}

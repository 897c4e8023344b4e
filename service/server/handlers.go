package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/brojonat/getblock-proxy/service/metrics"
	"github.com/brojonat/getblock-proxy/service/solana"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB - a getBlock request is a few hundred bytes
)

// handleGetBlock returns a handler that forwards a getBlock request upstream
// and replies with the block reduced to balance-moving transactions.
// POST /
//
// Every failure past request decoding is answered with a bare 500; the error
// kind goes to the log and metrics only.
func handleGetBlock(fetcher solana.Fetcher, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Limit request body size to prevent memory exhaustion
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		body, err := io.ReadAll(r.Body)
		if err != nil {
			logger.WarnContext(ctx, "failed to read request body", "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		if !json.Valid(body) {
			logger.DebugContext(ctx, "rejected non-JSON request body", "bytes", len(body))
			writeError(w, "invalid request body: must be valid JSON", http.StatusBadRequest)
			return
		}

		start := time.Now()
		env, err := fetcher.FetchBlock(ctx, body)
		fetchDuration := time.Since(start)
		if err != nil {
			fail(w, r, m, logger, "fetch", err)
			return
		}
		logger.InfoContext(ctx, "get_block", "duration", fetchDuration)

		start = time.Now()
		filtered, stats, err := solana.FilterBlock(env)
		filterDuration := time.Since(start)
		if err != nil {
			if m != nil {
				m.RecordFilterError()
			}
			fail(w, r, m, logger, "filter", err)
			return
		}

		logger.InfoContext(ctx, "filter",
			"duration", filterDuration,
			"total", stats.Total,
			"retained", stats.Retained,
		)
		if m != nil {
			m.RecordFilter(stats.Total, stats.Retained, filterDuration.Seconds())
		}

		writeJSON(w, filtered, http.StatusOK)
	})
}

// handleHealth reports that the process is serving.
// GET /health
func handleHealth() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})
}

// fail logs err with its kind and answers with a generic server error.
func fail(w http.ResponseWriter, r *http.Request, m *metrics.Metrics, logger *slog.Logger, stage string, err error) {
	kind := solana.Classify(err)
	logger.ErrorContext(r.Context(), "getBlock request failed",
		"stage", stage,
		"kind", kind,
		"error", err,
	)
	if m != nil {
		m.RecordError(string(kind))
	}
	writeError(w, "internal server error", http.StatusInternalServerError)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

package api

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/ticket-tracker/metrics"
)

// Route label for requests that matched no registered pattern.
const unmatchedRoute = "unmatched"

// instrument logs every request and records its status code and duration.
func instrument(logger polylog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		// The mux sets the matched pattern on the request it was handed.
		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}

		metrics.RecordHTTPRequest(route, m.Code, m.Duration.Seconds())

		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", route).
			Int("status", m.Code).
			Int64("bytes", m.Written).
			Dur("duration", m.Duration).
			Msg("served request")
	})
}

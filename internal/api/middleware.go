package api

import (
	"delivery-delay-service/internal/platform/metrics"
	"delivery-delay-service/internal/platform/obs"
	"log"
	"net/http"
	"time"
)

const requestIDHeader = "X-Request-ID"

// statusWriter captures the final HTTP status code and number of bytes written.
// This helps distinguish "handler returned 200" from "client received a response".
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Record implicit 200 responses when handlers write without calling WriteHeader.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// requestIDMiddleware propagates the caller's X-Request-ID or assigns one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := obs.WithRequestID(r.Context(), r.Header.Get(requestIDHeader))
		w.Header().Set(requestIDHeader, obs.RequestID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs end-to-end request duration and response size and
// records them as metrics. Unregistered paths share one metrics label.
func loggingMiddleware(next http.Handler, m *metrics.Metrics, routes map[string]bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{
			ResponseWriter: w,
			status:         0,
		}

		next.ServeHTTP(sw, r)

		dur := time.Since(start)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}

		path := r.URL.Path
		if !routes[path] {
			path = "other"
		}
		m.ObserveRequest(r.Method, path, sw.status, dur)

		log.Printf(
			"req_id=%s method=%s path=%s status=%d bytes=%d dur=%dms",
			obs.RequestID(r.Context()), r.Method, r.URL.RequestURI(), sw.status, sw.bytes, dur.Milliseconds(),
		)
	})
}

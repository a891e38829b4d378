package webhook

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"device-relay-bot/internal/health"
	"device-relay-bot/pkg/logger"
)

// Routes assembles the HTTP handler tree with correlation-id and request
// logging middleware. checker may be nil; the health endpoint then reports
// a bare OK.
func (h *Handler) Routes(checker *health.Checker) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /notify", h.Notify)
	mux.HandleFunc("GET /", h.healthHandler(checker))
	mux.Handle("GET /metrics", promhttp.Handler())

	return logger.Middleware(requestLogging(h.log)(mux))
}

func (h *Handler) healthHandler(checker *health.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		// Component statuses go to the log; the endpoint itself stays a
		// static 200 for platform liveness probes.
		if checker != nil {
			checker.Check(r.Context())
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK. Bot is running."))
	}
}

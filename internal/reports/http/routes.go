package reporthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/laundryconnect/laundryconnect/internal/platform/httpx"
)

// MountRoutes registers report endpoints onto the router. Document downloads share a per-client limit.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(h.rateLimit, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "document generation limit reached, try again shortly")
		}),
	)

	r.Get("/reports/types", h.handleTypes)
	r.Post("/reports/preview", h.handlePreview)
	r.Get("/notifications", h.handleNotifications)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Post("/reports/generate", h.handleGenerate)
		gr.Get("/invoices/{orderID}", h.handleInvoice)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

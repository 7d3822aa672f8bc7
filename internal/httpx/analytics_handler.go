package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mialabs/commerce-core/internal/commerce"
)

type AnalyticsStore interface {
	Aggregate(ctx context.Context, merchantID string, since time.Time) (*commerce.AnalyticsReport, error)
}

type AnalyticsHandler struct {
	Store AnalyticsStore
}

func (h *AnalyticsHandler) Register(r chi.Router) {
	r.Get("/analytics", h.get)
}

func (h *AnalyticsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	since := time.Now().UTC().Add(-RangeDuration(r.URL.Query().Get("range")))
	report, err := h.Store.Aggregate(ctx, MerchantID(ctx), since)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// RangeDuration resolves a range token to a lookback window. Unknown tokens
// fall back to 30 days, same as the dashboard default.
func RangeDuration(token string) time.Duration {
	switch token {
	case "7d":
		return 7 * 24 * time.Hour
	case "90d":
		return 90 * 24 * time.Hour
	case "1y":
		return 365 * 24 * time.Hour
	default: // "30d" and anything else
		return 30 * 24 * time.Hour
	}
}

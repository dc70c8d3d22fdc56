package httpapi

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks the search provider with a live query.
type Pinger interface {
	Ping(ctx context.Context) (string, error)
}

type HealthHandler struct {
	Store  Counter // optional
	Search Pinger  // optional; used by ?deep=1
}

// Health reports store counts. With ?deep=1 it also pings the search
// provider, which spends one query of quota.
func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	}
	if h.Store != nil {
		counts, err := h.Store.Counts(r.Context())
		if err != nil {
			WriteErr(w, r, http.StatusServiceUnavailable, "store_unavailable", err)
			return
		}
		out["counts"] = counts
	}

	if r.URL.Query().Get("deep") == "1" {
		if h.Search == nil {
			out["search"] = map[string]any{"configured": false}
		} else {
			ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
			defer cancel()
			id, err := h.Search.Ping(ctx)
			if err != nil {
				WriteErr(w, r, http.StatusBadGateway, "search_unavailable", err)
				return
			}
			out["search"] = map[string]any{"configured": true, "search_id": id}
		}
	}
	WriteJSON(w, http.StatusOK, out)
}

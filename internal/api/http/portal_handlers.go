package http

import (
	"net/http"
	"strings"

	"github.com/classbridge/portal/internal/auth"
	"github.com/classbridge/portal/internal/portal"
	"github.com/classbridge/portal/internal/result"
)

// GET /me/dashboard
func DashboardHandler(store *portal.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		d, err := store.DashboardSummary(r.Context(), id.SchoolID, id.ClassID, id.UserID)
		if err != nil {
			http.Error(w, "dashboard unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

// GET /me/results
func ResultsHandler(store *portal.Store) http.HandlerFunc {
	type row struct {
		portal.ResultRow
		Sheet result.Sheet `json:"sheet"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		list, err := store.ListResults(r.Context(), id.UserID)
		if err != nil {
			http.Error(w, "results unavailable", http.StatusServiceUnavailable)
			return
		}
		out := make([]row, 0, len(list))
		for _, res := range list {
			out = append(out, row{res, result.Render(res.Score, res.Total)})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /me/attendance?term=...
func AttendanceHandler(store *portal.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		term := strings.TrimSpace(r.URL.Query().Get("term"))
		list, err := store.ListAttendance(r.Context(), id.UserID, term)
		if err != nil {
			http.Error(w, "attendance unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /me/fees
func FeeReceiptsHandler(store *portal.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		list, err := store.ListFeeReceipts(r.Context(), id.UserID)
		if err != nil {
			http.Error(w, "fee receipts unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /news?limit=20
func NewsHandler(store *portal.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		limit := parseIntDefault(r.URL.Query().Get("limit"), 20)
		list, err := store.ListNews(r.Context(), id.SchoolID, limit)
		if err != nil {
			http.Error(w, "news unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /me/classmates
func DirectoryHandler(store *portal.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		list, err := store.ListClassmates(r.Context(), id.ClassID)
		if err != nil {
			http.Error(w, "directory unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

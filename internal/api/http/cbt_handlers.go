package http

import (
	"encoding/json"
	"net/http"

	"github.com/classbridge/portal/internal/auth"
	"github.com/classbridge/portal/internal/cbt"
	"github.com/classbridge/portal/internal/result"

	"github.com/go-chi/chi/v5"
)

// POST /tests/{testID}/attempt
// Opens or resumes the caller's attempt and returns the live session:
// remaining seconds, ordered questions (no answer keys) and any previously
// saved selections.
func BeginAttemptHandler(eng *cbt.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		testID := chi.URLParam(r, "testID")
		sess, err := eng.BeginOrResume(r.Context(), testID, id.UserID, id.ClassID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// POST /tests/{testID}/attempt/{attemptID}/submit
// Body: { "answers": { "<questionID>": "A".."D" } }
// Selections outside A-D are treated as unanswered, never rejected.
func SubmitAttemptHandler(eng *cbt.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFromContext(r.Context())
		testID := chi.URLParam(r, "testID")
		attemptID := chi.URLParam(r, "attemptID")

		var req struct {
			Answers map[string]string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		res, err := eng.Submit(r.Context(), testID, attemptID, id.UserID, req.Answers)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			cbt.Result
			Sheet result.Sheet `json:"sheet"`
		}{*res, result.Render(res.Score, res.TotalQuestions)})
	}
}

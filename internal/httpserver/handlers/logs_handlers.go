package handlers

import (
	"net/http"
	"strconv"

	"airdemo/internal/models"
	"airdemo/internal/store"

	"go.uber.org/zap"
)

const maxAITasks = 200

// ListAITasks returns the most recent AI audit rows, newest first.
// ?limit= caps the count at 200.
func ListAITasks(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := maxAITasks
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				respondError(w, lg, invalid("limit must be a positive integer"))
				return
			}
			if n < limit {
				limit = n
			}
		}
		tasks, err := st.RecentAITasks(r.Context(), limit)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if tasks == nil {
			tasks = []models.AITask{}
		}
		respondData(w, tasks)
	}
}

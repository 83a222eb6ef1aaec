package handlers

import (
	"net/http"

	"airdemo/internal/flow"
	"airdemo/internal/models"
	"airdemo/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func GetFlow(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := st.GetDemo(r.Context(), id); err != nil {
			respondError(w, lg, err)
			return
		}
		fd, err := st.LoadFlow(r.Context(), id)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondData(w, nonNilFlow(fd))
	}
}

// SaveFlow stores the nodes, edges and panel present in the body. Edges that
// point at missing nodes are kept and echoed back.
func SaveFlow(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var snap flow.Snapshot
		if err := decodeJSON(r, &snap); err != nil {
			respondError(w, lg, err)
			return
		}
		dangling, err := st.SaveFlow(r.Context(), id, snap)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if len(dangling) > 0 {
			lg.Warnw("flow saved with dangling edges", "demo_id", id, "count", len(dangling))
		} else {
			dangling = []flow.Edge{}
		}
		respondJSON(w, http.StatusOK, envelope{
			Code:    0,
			Message: "saved",
			Data:    map[string]interface{}{"danglingEdges": dangling},
		})
	}
}

func nonNilFlow(fd store.FlowData) store.FlowData {
	if fd.Nodes == nil {
		fd.Nodes = []models.DemoFlowNode{}
	}
	if fd.Edges == nil {
		fd.Edges = []models.DemoFlowEdge{}
	}
	return fd
}

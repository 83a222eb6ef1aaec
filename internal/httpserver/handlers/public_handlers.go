package handlers

import (
	"net/http"

	"airdemo/internal/demo"
	"airdemo/internal/models"
	"airdemo/internal/store"
	"airdemo/internal/util"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// publicDemo is what the viewer renders: the demo, its config and its flow.
type publicDemo struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Slug        string                  `json:"slug"`
	Description string                  `json:"description"`
	ValueProp   string                  `json:"valueProp"`
	CoverImage  string                  `json:"coverImage"`
	Category    string                  `json:"category"`
	Status      string                  `json:"status"`
	Sort        int                     `json:"sort"`
	Config      *demo.Config            `json:"config"`
	FlowNodes   []models.DemoFlowNode   `json:"flowNodes"`
	FlowEdges   []models.DemoFlowEdge   `json:"flowEdges"`
	PanelConfig *models.DemoPanelConfig `json:"panelConfig"`
}

func toPublic(d models.Demo, fd store.FlowData) publicDemo {
	fd = nonNilFlow(fd)
	if p := fd.PanelConfig; p != nil && p.KeyNodes == nil {
		p.KeyNodes = models.StringList{}
	}
	return publicDemo{
		ID: d.ID, Title: d.Title, Slug: d.Slug, Description: d.Description,
		ValueProp: d.ValueProp, CoverImage: d.CoverImage, Category: d.Category,
		Status: d.Status, Sort: d.Sort,
		Config:      demo.ParseConfig(d.Config),
		FlowNodes:   fd.Nodes,
		FlowEdges:   fd.Edges,
		PanelConfig: fd.PanelConfig,
	}
}

// PublicDemos lists demos in one status, published by default, with their flows.
func PublicDemos(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if status == "" {
			status = models.DemoStatusPublished
		}
		rows, err := st.DemosByStatus(r.Context(), status)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		ids := make([]string, len(rows))
		for i, d := range rows {
			ids[i] = d.ID
		}
		flows, err := st.LoadFlows(r.Context(), ids)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		out := make([]publicDemo, 0, len(rows))
		for _, d := range rows {
			out = append(out, toPublic(d, flows[d.ID]))
		}
		respondData(w, out)
	}
}

func PublicDemo(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := st.GetDemoBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			if statusFor(err) == http.StatusNotFound {
				respondErr(w, http.StatusNotFound, "Demo not found")
				return
			}
			respondError(w, lg, err)
			return
		}
		fd, err := st.LoadFlow(r.Context(), d.ID)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondData(w, toPublic(*d, fd))
	}
}

// PublicTools lists tools with root-relative avatars made absolute.
func PublicTools(st *store.Store, appURL string, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if status == "" {
			status = models.DemoStatusPublished
		}
		rows, err := st.ListTools(r.Context(), status)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		base := baseURL(appURL, r)
		for i := range rows {
			rows[i].AvatarURL = util.Absolutize(base, rows[i].AvatarURL)
		}
		if rows == nil {
			rows = []models.EfficiencyTool{}
		}
		respondData(w, rows)
	}
}

func PublicTool(st *store.Store, appURL string, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := st.GetTool(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if statusFor(err) == http.StatusNotFound {
				respondErr(w, http.StatusNotFound, "Tool not found")
				return
			}
			respondError(w, lg, err)
			return
		}
		t.AvatarURL = util.Absolutize(baseURL(appURL, r), t.AvatarURL)
		respondData(w, t)
	}
}

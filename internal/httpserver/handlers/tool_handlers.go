package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"airdemo/internal/demo"
	"airdemo/internal/models"
	"airdemo/internal/store"
	"airdemo/internal/util"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type toolBody struct {
	ID          *string         `json:"id"`
	Name        *string         `json:"name"`
	Title       *string         `json:"title"`
	URL         *string         `json:"url"`
	AvatarURL   *string         `json:"avatarUrl"`
	Description *string         `json:"description"`
	Highlight   *string         `json:"highlight"`
	Skills      json.RawMessage `json:"skills"`
	Status      *string         `json:"status"`
	Sort        flexInt         `json:"sort"`
}

// parseSkills accepts an array or a comma separated string. Blank entries are
// dropped and an empty result is nil.
func parseSkills(raw json.RawMessage) (models.StringList, error) {
	var list []string
	switch jsonKind(raw) {
	case 0, 'n':
		return nil, nil
	case '[':
		var items []string
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, invalid("skills: " + err.Error())
		}
		for _, s := range items {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, invalid("skills: " + err.Error())
		}
		list = util.SplitList(s)
	default:
		return nil, invalid("skills must be an array or a string")
	}
	if len(list) == 0 {
		return nil, nil
	}
	return models.StringList(list), nil
}

func ListTools(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if status == "all" {
			status = ""
		}
		rows, err := st.ListTools(r.Context(), status)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if rows == nil {
			rows = []models.EfficiencyTool{}
		}
		respondData(w, rows)
	}
}

func GetTool(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := st.GetTool(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondData(w, t)
	}
}

func CreateTool(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body toolBody
		if err := decodeJSON(r, &body); err != nil {
			respondError(w, lg, err)
			return
		}
		name := str(body.Name)
		if name == "" {
			respondError(w, lg, invalid("name is required"))
			return
		}
		skills, err := parseSkills(body.Skills)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		status := str(body.Status)
		if status == "" {
			status = models.DemoStatusDraft
		}
		if !demo.ValidStatus(status) {
			respondError(w, lg, invalid("status must be draft, published or archived"))
			return
		}
		id := str(body.ID)
		if id == "" {
			id = name
		}
		t := models.EfficiencyTool{
			ID: id, Name: name, Title: str(body.Title), URL: str(body.URL),
			AvatarURL: str(body.AvatarURL), Description: str(body.Description),
			Highlight: str(body.Highlight), Skills: skills, Status: status, Sort: body.Sort.v,
		}
		if err := st.CreateTool(r.Context(), &t); err != nil {
			respondError(w, lg, err)
			return
		}
		lg.Infow("tool created", "id", t.ID)
		respondJSON(w, http.StatusOK, envelope{Code: 0, Message: "created", Data: t})
	}
}

func UpdateTool(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var body toolBody
		if err := decodeJSON(r, &body); err != nil {
			respondError(w, lg, err)
			return
		}
		fields := map[string]interface{}{}
		for col, v := range map[string]*string{
			"name":        body.Name,
			"title":       body.Title,
			"url":         body.URL,
			"avatar_url":  body.AvatarURL,
			"description": body.Description,
			"highlight":   body.Highlight,
			"status":      body.Status,
		} {
			if v != nil {
				fields[col] = str(v)
			}
		}
		if s, ok := fields["status"].(string); ok && !demo.ValidStatus(s) {
			respondError(w, lg, invalid("status must be draft, published or archived"))
			return
		}
		if s, ok := fields["name"]; ok && s == "" {
			respondError(w, lg, invalid("name cannot be empty"))
			return
		}
		if body.Sort.set {
			fields["sort"] = body.Sort.v
		}
		if len(body.Skills) > 0 {
			skills, err := parseSkills(body.Skills)
			if err != nil {
				respondError(w, lg, err)
				return
			}
			fields["skills"] = skills
		}
		if err := st.UpdateTool(r.Context(), id, fields); err != nil {
			respondError(w, lg, err)
			return
		}
		lg.Infow("tool updated", "id", id, "fields", len(fields))
		respondOK(w, "updated")
	}
}

func DeleteTool(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := st.DeleteTool(r.Context(), id); err != nil {
			respondError(w, lg, err)
			return
		}
		lg.Infow("tool deleted", "id", id)
		respondOK(w, "deleted")
	}
}

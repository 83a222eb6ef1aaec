package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"airdemo/internal/auth"
	"airdemo/internal/demo"
	"airdemo/internal/models"
	"airdemo/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// demoBody is the admin JSON payload. Absent fields are left unchanged on update.
type demoBody struct {
	ID          *string         `json:"id"`
	Title       *string         `json:"title"`
	Slug        *string         `json:"slug"`
	Description *string         `json:"description"`
	ValueProp   *string         `json:"valueProp"`
	CoverImage  *string         `json:"coverImage"`
	Category    *string         `json:"category"`
	Status      *string         `json:"status"`
	Sort        flexInt         `json:"sort"`
	Config      json.RawMessage `json:"config"`
	Steps       json.RawMessage `json:"steps"`
	Tables      json.RawMessage `json:"tables"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// config returns the encoded column and whether config was submitted at all.
func (b demoBody) config() (string, bool, error) {
	switch jsonKind(b.Config) {
	case 0:
		return "", false, nil
	case 'n':
		return "", true, nil
	case '{':
		var c demo.Config
		if err := json.Unmarshal(b.Config, &c); err != nil {
			return "", false, invalid("config: " + err.Error())
		}
		return c.Encode(), true, nil
	}
	return "", false, invalid("config must be an object")
}

// steps are replaced only when an array was submitted.
func (b demoBody) steps() ([]demo.StepInput, bool, error) {
	if jsonKind(b.Steps) != '[' {
		return nil, false, nil
	}
	var steps []demo.StepInput
	if err := json.Unmarshal(b.Steps, &steps); err != nil {
		return nil, false, invalid("steps: " + err.Error())
	}
	return steps, true, nil
}

// tables are replaced only when an object was submitted.
func (b demoBody) tables() (map[string]json.RawMessage, bool, error) {
	if jsonKind(b.Tables) != '{' {
		return nil, false, nil
	}
	var tables map[string]json.RawMessage
	if err := json.Unmarshal(b.Tables, &tables); err != nil {
		return nil, false, invalid("tables: " + err.Error())
	}
	return tables, true, nil
}

func (b demoBody) validateStatus() error {
	if b.Status != nil && !demo.ValidStatus(str(b.Status)) {
		return invalid("status must be draft, published or archived")
	}
	return nil
}

type demoDetail struct {
	models.Demo
	Config *demo.Config                `json:"config"`
	Steps  []models.DemoStep           `json:"steps"`
	Tables map[string]json.RawMessage `json:"tables"`
}

func ListDemos(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		rows, err := st.ListDemos(r.Context(), store.DemoFilter{
			Title:   q.Get("title"),
			Status:  q.Get("status"),
			AdminID: q.Get("adminId"),
			Sort:    q.Get("sort"),
		})
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if rows == nil {
			rows = []store.DemoRow{}
		}
		respondData(w, rows)
	}
}

func GetDemo(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		d, err := st.GetDemo(ctx, chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		steps, err := st.DemoSteps(ctx, d.ID)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		tables, err := st.DemoTables(ctx, d.ID)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if steps == nil {
			steps = []models.DemoStep{}
		}
		respondData(w, demoDetail{
			Demo:   *d,
			Config: demo.ParseConfig(d.Config),
			Steps:  steps,
			Tables: demo.DecodeTables(tables),
		})
	}
}

func CreateDemo(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body demoBody
		if err := decodeJSON(r, &body); err != nil {
			respondError(w, lg, err)
			return
		}
		in := demo.Input{
			ID:          str(body.ID),
			Title:       str(body.Title),
			Slug:        str(body.Slug),
			Description: str(body.Description),
			ValueProp:   str(body.ValueProp),
			CoverImage:  str(body.CoverImage),
			Category:    str(body.Category),
			Status:      str(body.Status),
			Sort:        body.Sort.v,
		}
		if in.Title == "" || in.Slug == "" {
			respondError(w, lg, invalid("title and slug are required"))
			return
		}
		if in.Status == "" {
			in.Status = models.DemoStatusDraft
		}
		if err := body.validateStatus(); err != nil {
			respondError(w, lg, err)
			return
		}
		cfg, _, err := body.config()
		if err != nil {
			respondError(w, lg, err)
			return
		}
		steps, _, err := body.steps()
		if err != nil {
			respondError(w, lg, err)
			return
		}
		tables, _, err := body.tables()
		if err != nil {
			respondError(w, lg, err)
			return
		}

		row := in.Model()
		row.Config = cfg
		if uid := auth.Subject(r.Context()); uid != "" {
			row.AdminUserID = &uid
		}
		if err := st.CreateDemo(r.Context(), &row, demo.BuildSteps(row.ID, steps), demo.BuildTables(row.ID, tables)); err != nil {
			respondError(w, lg, err)
			return
		}
		lg.Infow("demo created", "id", row.ID, "slug", row.Slug, "by", auth.Subject(r.Context()))
		respondJSON(w, http.StatusOK, envelope{Code: 0, Message: "created", Data: map[string]string{"id": row.ID}})
	}
}

func UpdateDemo(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var body demoBody
		if err := decodeJSON(r, &body); err != nil {
			respondError(w, lg, err)
			return
		}
		if err := body.validateStatus(); err != nil {
			respondError(w, lg, err)
			return
		}
		ch, err := body.changes(id)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if err := st.UpdateDemo(r.Context(), id, ch); err != nil {
			respondError(w, lg, err)
			return
		}
		lg.Infow("demo updated", "id", id, "fields", len(ch.Fields), "steps", ch.SetSteps, "tables", ch.SetTables)
		respondOK(w, "updated")
	}
}

// changes maps the submitted fields onto column names.
func (b demoBody) changes(id string) (store.DemoChanges, error) {
	ch := store.DemoChanges{Fields: map[string]interface{}{}}
	for col, v := range map[string]*string{
		"title":       b.Title,
		"slug":        b.Slug,
		"description": b.Description,
		"value_prop":  b.ValueProp,
		"cover_image": b.CoverImage,
		"category":    b.Category,
		"status":      b.Status,
	} {
		if v != nil {
			ch.Fields[col] = str(v)
		}
	}
	if s, ok := ch.Fields["title"]; ok && s == "" {
		return ch, invalid("title cannot be empty")
	}
	if s, ok := ch.Fields["slug"]; ok && s == "" {
		return ch, invalid("slug cannot be empty")
	}
	if b.Sort.set {
		ch.Fields["sort"] = b.Sort.v
	}
	cfg, ok, err := b.config()
	if err != nil {
		return ch, err
	}
	if ok {
		ch.Fields["config"] = cfg
	}

	steps, ok, err := b.steps()
	if err != nil {
		return ch, err
	}
	if ok {
		ch.SetSteps = true
		ch.Steps = demo.BuildSteps(id, steps)
	}
	tables, ok, err := b.tables()
	if err != nil {
		return ch, err
	}
	if ok {
		ch.SetTables = true
		ch.Tables = demo.BuildTables(id, tables)
	}
	return ch, nil
}

func DeleteDemo(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := st.DeleteDemo(r.Context(), id); err != nil {
			respondError(w, lg, err)
			return
		}
		lg.Infow("demo deleted", "id", id, "by", auth.Subject(r.Context()))
		respondOK(w, "deleted")
	}
}

// SubmitDemoForm handles the admin HTML form for both create and edit. The
// form always carries the full demo, so steps and tables are replaced.
func SubmitDemoForm(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		in := demo.FromForm(r.PostForm)
		id := chi.URLParam(r, "id")
		if in.Title == "" || in.Slug == "" {
			http.Error(w, "title and slug are required", http.StatusBadRequest)
			return
		}
		if !demo.ValidStatus(in.Status) {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}

		var err error
		if id == "" {
			row := in.Model()
			if uid := auth.Subject(r.Context()); uid != "" {
				row.AdminUserID = &uid
			}
			err = st.CreateDemo(r.Context(), &row, demo.BuildSteps(row.ID, in.Steps), demo.BuildTables(row.ID, in.Tables))
			id = row.ID
		} else {
			row := in.Model()
			err = st.UpdateDemo(r.Context(), id, store.DemoChanges{
				Fields: map[string]interface{}{
					"title": row.Title, "slug": row.Slug, "description": row.Description,
					"value_prop": row.ValueProp, "cover_image": row.CoverImage, "category": row.Category,
					"status": row.Status, "sort": row.Sort, "config": row.Config,
				},
				SetSteps:  true,
				Steps:     demo.BuildSteps(id, in.Steps),
				SetTables: true,
				Tables:    demo.BuildTables(id, in.Tables),
			})
		}
		if err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				lg.Errorw("demo form save failed", "id", id, "err", err)
			}
			http.Error(w, err.Error(), status)
			return
		}
		lg.Infow("demo form saved", "id", id)
		http.Redirect(w, r, "/admin/demos", http.StatusSeeOther)
	}
}

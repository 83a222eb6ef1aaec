// Package demo coerces admin input into demo rows: the nested config object,
// ordered steps and named table blobs.
package demo

import (
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"airdemo/internal/models"
	"airdemo/internal/util"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Insights struct {
	Conclusion string   `json:"conclusion"`
	Risks      []string `json:"risks"`
	Actions    []string `json:"actions"`
	Next       string   `json:"next"`
}

// Config is the serialized config column of a demo.
type Config struct {
	Points     []string `json:"points"`
	Audience   string   `json:"audience"`
	AIInsights Insights `json:"aiInsights"`
}

// ParseConfig returns nil for an empty column and an empty config for unreadable text.
func ParseConfig(raw string) *Config {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var c Config
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return &Config{}
	}
	return &c
}

func (c *Config) Encode() string {
	if c == nil {
		return ""
	}
	b, _ := json.Marshal(c)
	return string(b)
}

// StepInput is a step as submitted; StepOrder defaults to its position.
type StepInput struct {
	ID        string `json:"id"`
	StepOrder *int   `json:"stepOrder"`
	Title     string `json:"title"`
	Component string `json:"component"`
	Script    string `json:"script"`
	Value     string `json:"value"`
	Fallback  string `json:"fallback"`
}

// Input is the full set of demo fields accepted by create and update.
type Input struct {
	ID          string
	Title       string
	Slug        string
	Description string
	ValueProp   string
	CoverImage  string
	Category    string
	Status      string
	Sort        int
	Config      *Config
	Steps       []StepInput
	Tables      map[string]json.RawMessage
}

func ValidStatus(s string) bool {
	switch s {
	case models.DemoStatusDraft, models.DemoStatusPublished, models.DemoStatusArchived:
		return true
	}
	return false
}

// ParseSteps decodes a JSON array of steps. Anything else yields no steps.
func ParseSteps(raw string) []StepInput {
	var steps []StepInput
	if err := json.Unmarshal([]byte(raw), &steps); err != nil || steps == nil {
		return []StepInput{}
	}
	return steps
}

// ParseTables decodes a JSON object of table blobs. Anything else yields no tables.
func ParseTables(raw string) map[string]json.RawMessage {
	var tables map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &tables); err != nil || tables == nil {
		return map[string]json.RawMessage{}
	}
	return tables
}

// FromForm reads the admin demo form.
func FromForm(f url.Values) Input {
	get := func(k string) string { return strings.TrimSpace(f.Get(k)) }
	status := get("status")
	if status == "" {
		status = models.DemoStatusDraft
	}
	sortVal, _ := strconv.Atoi(get("sort"))
	return Input{
		ID:          get("id"),
		Title:       get("title"),
		Slug:        get("slug"),
		Description: get("description"),
		ValueProp:   get("valueProp"),
		CoverImage:  get("coverImage"),
		Category:    get("category"),
		Status:      status,
		Sort:        sortVal,
		Config: &Config{
			Points:   util.SplitLines(f.Get("points")),
			Audience: get("audience"),
			AIInsights: Insights{
				Conclusion: get("conclusion"),
				Risks:      util.SplitLines(f.Get("risks")),
				Actions:    util.SplitLines(f.Get("actions")),
				Next:       get("next"),
			},
		},
		Steps:  ParseSteps(f.Get("steps")),
		Tables: ParseTables(f.Get("tables")),
	}
}

// Model builds the demo row. A missing id is generated here so children can
// be keyed by it before insert.
func (in Input) Model() models.Demo {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	return models.Demo{
		ID:          id,
		Title:       in.Title,
		Slug:        in.Slug,
		Description: in.Description,
		ValueProp:   in.ValueProp,
		CoverImage:  in.CoverImage,
		Category:    in.Category,
		Status:      in.Status,
		Sort:        in.Sort,
		Config:      in.Config.Encode(),
	}
}

func BuildSteps(demoID string, in []StepInput) []models.DemoStep {
	out := make([]models.DemoStep, 0, len(in))
	for i, s := range in {
		order := i + 1
		if s.StepOrder != nil {
			order = *s.StepOrder
		}
		out = append(out, models.DemoStep{
			ID:        s.ID,
			DemoID:    demoID,
			StepOrder: order,
			Title:     s.Title,
			Component: s.Component,
			Script:    s.Script,
			Value:     s.Value,
			Fallback:  s.Fallback,
		})
	}
	return out
}

// BuildTables keys each row as "<demoID>-<tableType>" so resubmitting a table updates it in place.
func BuildTables(demoID string, in map[string]json.RawMessage) []models.DemoTableData {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]models.DemoTableData, 0, len(keys))
	for _, k := range keys {
		data := in[k]
		if len(data) == 0 {
			data = json.RawMessage("null")
		}
		out = append(out, models.DemoTableData{
			ID:        demoID + "-" + k,
			DemoID:    demoID,
			TableType: k,
			Data:      datatypes.JSON(data),
		})
	}
	return out
}

// DecodeTables turns stored rows back into the object shape clients submit.
func DecodeTables(rows []models.DemoTableData) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(rows))
	for _, t := range rows {
		if len(t.Data) == 0 || !json.Valid(t.Data) {
			out[t.TableType] = json.RawMessage("[]")
			continue
		}
		out[t.TableType] = json.RawMessage(t.Data)
	}
	return out
}

// Package seed loads the bundled demos and tools into an empty database and
// bootstraps the first admin account.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"airdemo/internal/demo"
	"airdemo/internal/flow"
	"airdemo/internal/models"
	"airdemo/internal/store"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed data/seed.yaml
var bundled []byte

type File struct {
	Demos []Demo `yaml:"demos"`
	Tools []Tool `yaml:"tools"`
}

type Demo struct {
	ID          string                 `yaml:"id"`
	Title       string                 `yaml:"title"`
	Slug        string                 `yaml:"slug"`
	Description string                 `yaml:"description"`
	ValueProp   string                 `yaml:"valueProp"`
	CoverImage  string                 `yaml:"coverImage"`
	Category    string                 `yaml:"category"`
	Status      string                 `yaml:"status"`
	Sort        int                    `yaml:"sort"`
	Config      *Config                `yaml:"config"`
	Steps       []Step                 `yaml:"steps"`
	Tables      map[string]interface{} `yaml:"tables"`
	Flow        *Flow                  `yaml:"flow"`
}

type Config struct {
	Points     []string `yaml:"points"`
	Audience   string   `yaml:"audience"`
	AIInsights struct {
		Conclusion string   `yaml:"conclusion"`
		Risks      []string `yaml:"risks"`
		Actions    []string `yaml:"actions"`
		Next       string   `yaml:"next"`
	} `yaml:"aiInsights"`
}

type Step struct {
	Title     string `yaml:"title"`
	Component string `yaml:"component"`
	Script    string `yaml:"script"`
	Value     string `yaml:"value"`
	Fallback  string `yaml:"fallback"`
}

type Node struct {
	NodeKey     string  `yaml:"nodeKey"`
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Icon        string  `yaml:"icon"`
	Color       string  `yaml:"color"`
	PosX        float64 `yaml:"posX"`
	PosY        float64 `yaml:"posY"`
}

type Flow struct {
	Nodes []Node      `yaml:"nodes"`
	Edges [][2]string `yaml:"edges"`
	Panel struct {
		VideoURL    string   `yaml:"videoUrl"`
		DocURL      string   `yaml:"docUrl"`
		Description string   `yaml:"description"`
		KeyNodes    []string `yaml:"keyNodes"`
	} `yaml:"panel"`
}

type Tool struct {
	Name        string   `yaml:"name"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	AvatarURL   string   `yaml:"avatarUrl"`
	URL         string   `yaml:"url"`
	Skills      []string `yaml:"skills"`
	Highlight   string   `yaml:"highlight"`
	Status      string   `yaml:"status"`
	Sort        int      `yaml:"sort"`
}

// Parse reads seed YAML.
func Parse(b []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &f, nil
}

// Bundled returns the seed data compiled into the binary.
func Bundled() (*File, error) { return Parse(bundled) }

type Report struct {
	DemosCreated int
	DemosSkipped int
	ToolsCreated int
	ToolsSkipped int
}

// Apply inserts every demo and tool whose id is not stored yet. Existing rows
// are left untouched, so Apply can run on every start.
func Apply(ctx context.Context, st *store.Store, f *File, lg *zap.SugaredLogger) (Report, error) {
	var rep Report
	for _, d := range f.Demos {
		_, err := st.GetDemo(ctx, d.ID)
		if err == nil {
			rep.DemosSkipped++
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return rep, err
		}
		if err := createDemo(ctx, st, d); err != nil {
			return rep, fmt.Errorf("demo %s: %w", d.ID, err)
		}
		lg.Infow("seeded demo", "id", d.ID)
		rep.DemosCreated++
	}
	for _, t := range f.Tools {
		_, err := st.GetTool(ctx, t.Name)
		if err == nil {
			rep.ToolsSkipped++
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return rep, err
		}
		status := t.Status
		if status == "" {
			status = models.DemoStatusDraft
		}
		row := models.EfficiencyTool{
			ID: t.Name, Name: t.Name, Title: t.Title, Description: t.Description,
			AvatarURL: t.AvatarURL, URL: t.URL, Skills: models.StringList(t.Skills),
			Highlight: t.Highlight, Status: status, Sort: t.Sort,
		}
		if err := st.CreateTool(ctx, &row); err != nil {
			return rep, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		lg.Infow("seeded tool", "id", t.Name)
		rep.ToolsCreated++
	}
	return rep, nil
}

func createDemo(ctx context.Context, st *store.Store, d Demo) error {
	in := demo.Input{
		ID: d.ID, Title: d.Title, Slug: d.Slug, Description: d.Description,
		ValueProp: d.ValueProp, CoverImage: d.CoverImage, Category: d.Category,
		Status: d.Status, Sort: d.Sort,
	}
	if in.Status == "" {
		in.Status = models.DemoStatusDraft
	}
	if c := d.Config; c != nil {
		in.Config = &demo.Config{
			Points:   c.Points,
			Audience: c.Audience,
			AIInsights: demo.Insights{
				Conclusion: c.AIInsights.Conclusion,
				Risks:      c.AIInsights.Risks,
				Actions:    c.AIInsights.Actions,
				Next:       c.AIInsights.Next,
			},
		}
	}
	for _, s := range d.Steps {
		in.Steps = append(in.Steps, demo.StepInput{
			Title: s.Title, Component: s.Component, Script: s.Script, Value: s.Value, Fallback: s.Fallback,
		})
	}
	in.Tables = make(map[string]json.RawMessage, len(d.Tables))
	for k, v := range d.Tables {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("table %s: %w", k, err)
		}
		in.Tables[k] = b
	}

	row := in.Model()
	if err := st.CreateDemo(ctx, &row, demo.BuildSteps(row.ID, in.Steps), demo.BuildTables(row.ID, in.Tables)); err != nil {
		return err
	}
	if d.Flow == nil {
		return nil
	}
	snap, err := d.Flow.snapshot()
	if err != nil {
		return err
	}
	_, err = st.SaveFlow(ctx, row.ID, snap)
	return err
}

func (f *Flow) snapshot() (flow.Snapshot, error) {
	e := flow.NewEditor(flow.Snapshot{})
	for _, n := range f.Nodes {
		if _, err := e.AddNode(flow.Node{
			NodeKey: n.NodeKey, Title: n.Title, Description: n.Description,
			Icon: n.Icon, Color: n.Color, PosX: n.PosX, PosY: n.PosY,
		}); err != nil {
			return flow.Snapshot{}, err
		}
	}
	for _, pair := range f.Edges {
		if _, err := e.AddEdge(pair[0], pair[1]); err != nil {
			return flow.Snapshot{}, fmt.Errorf("edge %s->%s: %w", pair[0], pair[1], err)
		}
	}
	for _, k := range f.Panel.KeyNodes {
		e.AddKeyNode(k)
	}
	e.SetPanel(func(p *flow.Panel) {
		p.VideoURL = f.Panel.VideoURL
		p.DocURL = f.Panel.DocURL
		p.Description = f.Panel.Description
	})
	return e.Snapshot(), nil
}

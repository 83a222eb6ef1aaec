package demo

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFormBuildsNestedConfig(t *testing.T) {
	f := url.Values{}
	f.Set("title", "  Inspection ")
	f.Set("slug", "inspection")
	f.Set("sort", "7")
	f.Set("points", "task dispatch\n\n  photo audit \r\n")
	f.Set("audience", "EHS leads")
	f.Set("conclusion", "all good")
	f.Set("risks", "backlog\nlow frequency")
	f.Set("actions", "")
	f.Set("next", "weekly review")
	f.Set("steps", `[{"title":"capture"},{"title":"verify","stepOrder":5}]`)
	f.Set("tables", `{"main":[{"a":1}]}`)

	in := FromForm(f)

	assert.Equal(t, "Inspection", in.Title)
	assert.Equal(t, "draft", in.Status)
	assert.Equal(t, 7, in.Sort)
	require.NotNil(t, in.Config)
	assert.Equal(t, []string{"task dispatch", "photo audit"}, in.Config.Points)
	assert.Equal(t, []string{"backlog", "low frequency"}, in.Config.AIInsights.Risks)
	assert.Empty(t, in.Config.AIInsights.Actions)
	assert.Equal(t, "weekly review", in.Config.AIInsights.Next)

	steps := BuildSteps("d1", in.Steps)
	require.Len(t, steps, 2)
	assert.Equal(t, 1, steps[0].StepOrder)
	assert.Equal(t, 5, steps[1].StepOrder)
	assert.Equal(t, "d1", steps[1].DemoID)

	tables := BuildTables("d1", in.Tables)
	require.Len(t, tables, 1)
	assert.Equal(t, "d1-main", tables[0].ID)
	assert.JSONEq(t, `[{"a":1}]`, string(tables[0].Data))
}

func TestInvalidJSONFallsBackSilently(t *testing.T) {
	assert.Empty(t, ParseSteps("not json"))
	assert.Empty(t, ParseSteps(`{"title":"object not array"}`))
	assert.Empty(t, ParseTables("[1,2]"))
	assert.Empty(t, ParseTables(""))

	f := url.Values{"steps": {"{"}, "tables": {"nope"}, "sort": {"abc"}}
	in := FromForm(f)
	assert.Empty(t, in.Steps)
	assert.Empty(t, in.Tables)
	assert.Equal(t, 0, in.Sort)
}

func TestParseConfig(t *testing.T) {
	assert.Nil(t, ParseConfig(""))
	assert.Equal(t, &Config{}, ParseConfig("{broken"))

	c := &Config{Points: []string{"p"}, Audience: "ops"}
	got := ParseConfig(c.Encode())
	assert.Equal(t, c.Points, got.Points)
	assert.Equal(t, "ops", got.Audience)
	assert.Equal(t, "", (*Config)(nil).Encode())
}

func TestDecodeTables(t *testing.T) {
	rows := BuildTables("d", map[string]json.RawMessage{"main": json.RawMessage(`[1]`)})
	rows[0].Data = append(rows[0].Data[:0], []byte("garbage")...)
	out := DecodeTables(rows)
	assert.JSONEq(t, `[]`, string(out["main"]))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus("published"))
	assert.False(t, ValidStatus("deleted"))
}

func TestModelGeneratesMissingID(t *testing.T) {
	row := Input{Title: "t", Slug: "s"}.Model()
	require.NotEmpty(t, row.ID)

	tables := BuildTables(row.ID, map[string]json.RawMessage{"main": json.RawMessage(`[]`)})
	assert.Equal(t, row.ID+"-main", tables[0].ID)

	assert.Equal(t, "fixed", Input{ID: "fixed"}.Model().ID)
}

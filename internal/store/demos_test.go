package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"airdemo/internal/demo"
	"airdemo/internal/models"
	"airdemo/internal/store"
	"airdemo/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createDemo(t *testing.T, st *store.Store, id, slug, status string, sort int, steps []demo.StepInput) {
	t.Helper()
	d := models.Demo{ID: id, Title: "Demo " + id, Slug: slug, Status: status, Sort: sort}
	require.NoError(t, st.CreateDemo(context.Background(), &d, demo.BuildSteps(id, steps), nil))
}

func stepTitles(steps []models.DemoStep) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Title)
	}
	return out
}

func TestUpdateDemoReplacesStepsExactly(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	createDemo(t, st, "d1", "d1", models.DemoStatusDraft, 0, []demo.StepInput{
		{ID: "s1", Title: "one"}, {ID: "s2", Title: "two"}, {ID: "s3", Title: "three"},
	})

	submitted := demo.BuildSteps("d1", []demo.StepInput{
		{ID: "s2", Title: "two (edited)"},
		{Title: "fresh"},
	})
	require.NoError(t, st.UpdateDemo(ctx, "d1", store.DemoChanges{SetSteps: true, Steps: submitted}))

	got, err := st.DemoSteps(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, []string{"two (edited)", "fresh"}, stepTitles(got))
	assert.Equal(t, "s2", got[0].ID)
	assert.NotEmpty(t, got[1].ID)

	// An empty submission clears the steps.
	require.NoError(t, st.UpdateDemo(ctx, "d1", store.DemoChanges{SetSteps: true, Steps: []models.DemoStep{}}))
	got, err = st.DemoSteps(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateDemoRejectsDuplicateStepIDs(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	createDemo(t, st, "d1", "d1", models.DemoStatusDraft, 0, []demo.StepInput{{ID: "s1", Title: "one"}})

	submitted := demo.BuildSteps("d1", []demo.StepInput{
		{ID: "s1", Title: "A"},
		{ID: "s1", Title: "B"},
	})
	err := st.UpdateDemo(ctx, "d1", store.DemoChanges{SetSteps: true, Steps: submitted})
	assert.ErrorIs(t, err, store.ErrDuplicateID)

	got, err := st.DemoSteps(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, stepTitles(got))
}

func TestUpdateDemoLeavesChildrenWhenNotSubmitted(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	createDemo(t, st, "d1", "d1", models.DemoStatusDraft, 0, []demo.StepInput{{Title: "keep"}})

	err := st.UpdateDemo(ctx, "d1", store.DemoChanges{Fields: map[string]interface{}{"title": "Renamed"}})
	require.NoError(t, err)

	d, err := st.GetDemo(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", d.Title)
	steps, _ := st.DemoSteps(ctx, "d1")
	assert.Equal(t, []string{"keep"}, stepTitles(steps))
}

func TestUpdateDemoReplacesTables(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	d := models.Demo{ID: "d1", Title: "t", Slug: "d1"}
	tables := demo.BuildTables("d1", map[string]json.RawMessage{
		"main":      json.RawMessage(`[{"a":1}]`),
		"equipment": json.RawMessage(`[]`),
	})
	require.NoError(t, st.CreateDemo(ctx, &d, nil, tables))

	next := demo.BuildTables("d1", map[string]json.RawMessage{"main": json.RawMessage(`[{"a":2}]`)})
	require.NoError(t, st.UpdateDemo(ctx, "d1", store.DemoChanges{SetTables: true, Tables: next}))

	got, err := st.DemoTables(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "main", got[0].TableType)
	assert.JSONEq(t, `[{"a":2}]`, string(got[0].Data))
}

func TestSlugMustBeUnique(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	createDemo(t, st, "d1", "inspection", models.DemoStatusDraft, 0, nil)
	createDemo(t, st, "d2", "gtm", models.DemoStatusDraft, 0, nil)

	dup := models.Demo{ID: "d3", Title: "x", Slug: "inspection"}
	err := st.CreateDemo(ctx, &dup, nil, nil)
	assert.ErrorIs(t, err, store.ErrSlugTaken)
	assert.ErrorIs(t, err, store.ErrConflict)

	err = st.UpdateDemo(ctx, "d2", store.DemoChanges{Fields: map[string]interface{}{"slug": "inspection"}})
	assert.ErrorIs(t, err, store.ErrSlugTaken)

	// Re-saving a demo's own slug is fine.
	err = st.UpdateDemo(ctx, "d1", store.DemoChanges{Fields: map[string]interface{}{"slug": "inspection"}})
	assert.NoError(t, err)
}

func TestUpdateMissingDemo(t *testing.T) {
	st := storetest.New(t)
	err := st.UpdateDemo(context.Background(), "nope", store.DemoChanges{})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestListDemosFiltersAndSorts(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()

	admin := models.User{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, st.CreateUser(ctx, &admin))

	createDemo(t, st, "a", "alpha", models.DemoStatusPublished, 1, nil)
	time.Sleep(2 * time.Millisecond)
	createDemo(t, st, "b", "beta", models.DemoStatusDraft, 5, nil)
	time.Sleep(2 * time.Millisecond)
	createDemo(t, st, "c", "gamma", models.DemoStatusPublished, 3, nil)
	require.NoError(t, st.UpdateDemo(ctx, "b", store.DemoChanges{Fields: map[string]interface{}{"admin_user_id": admin.ID}}))

	ids := func(rows []store.DemoRow) []string {
		out := []string{}
		for _, r := range rows {
			out = append(out, r.ID)
		}
		return out
	}

	rows, err := st.ListDemos(ctx, store.DemoFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, ids(rows))

	rows, _ = st.ListDemos(ctx, store.DemoFilter{Sort: store.SortByCreatedAsc})
	assert.Equal(t, []string{"a", "b", "c"}, ids(rows))

	rows, _ = st.ListDemos(ctx, store.DemoFilter{Sort: store.SortByCreatedDesc})
	assert.Equal(t, []string{"c", "b", "a"}, ids(rows))

	rows, _ = st.ListDemos(ctx, store.DemoFilter{Status: models.DemoStatusPublished})
	assert.Equal(t, []string{"c", "a"}, ids(rows))

	rows, _ = st.ListDemos(ctx, store.DemoFilter{Title: "Demo b"})
	assert.Equal(t, []string{"b"}, ids(rows))

	rows, _ = st.ListDemos(ctx, store.DemoFilter{AdminID: store.AdminFilterUnassigned})
	assert.Equal(t, []string{"c", "a"}, ids(rows))

	rows, _ = st.ListDemos(ctx, store.DemoFilter{AdminID: admin.ID})
	require.Equal(t, []string{"b"}, ids(rows))
	require.NotNil(t, rows[0].AdminEmail)
	assert.Equal(t, "ada@example.com", *rows[0].AdminEmail)
	assert.Equal(t, "Ada", *rows[0].AdminName)
}

func TestDraftHiddenUntilPublished(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	createDemo(t, st, "gtm", "gtm", models.DemoStatusPublished, 1, nil)
	createDemo(t, st, "top", "top", models.DemoStatusPublished, 9, nil)
	createDemo(t, st, "insp", "inspection", models.DemoStatusDraft, 5, nil)

	rows, err := st.DemosByStatus(ctx, models.DemoStatusPublished)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.NotEqual(t, "inspection", r.Slug)
	}

	require.NoError(t, st.UpdateDemo(ctx, "insp", store.DemoChanges{
		Fields: map[string]interface{}{"status": models.DemoStatusPublished},
	}))
	rows, err = st.DemosByStatus(ctx, models.DemoStatusPublished)
	require.NoError(t, err)
	slugs := []string{}
	for _, r := range rows {
		slugs = append(slugs, r.Slug)
	}
	assert.Equal(t, []string{"top", "inspection", "gtm"}, slugs)
}

func TestDeleteDemoCascades(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	createDemo(t, st, "d1", "d1", models.DemoStatusDraft, 0, []demo.StepInput{{Title: "x"}})
	_, err := st.SaveFlow(ctx, "d1", flowSnapshot())
	require.NoError(t, err)

	require.NoError(t, st.DeleteDemo(ctx, "d1"))

	_, err = st.GetDemo(ctx, "d1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	steps, _ := st.DemoSteps(ctx, "d1")
	assert.Empty(t, steps)
	fd, err := st.LoadFlow(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, fd.Nodes)
	assert.Empty(t, fd.Edges)
	assert.Nil(t, fd.PanelConfig)

	assert.ErrorIs(t, st.DeleteDemo(ctx, "d1"), store.ErrNotFound)
}

package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "demo.db"))
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_PASSWORD", "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestSeedAndList(t *testing.T) {
	useTempDB(t)
	mustRun(t, "migrate")

	out := mustRun(t, "seed")
	assert.Contains(t, out, "demos: 2 created, 0 skipped")
	out = mustRun(t, "seed")
	assert.Contains(t, out, "tools: 0 created, 5 skipped")

	out = mustRun(t, "demos", "list")
	assert.Contains(t, out, "inspection")
	assert.Contains(t, out, "gtm")

	out = mustRun(t, "tools", "list", "--status", "published")
	assert.Contains(t, out, "tantan")
}

func TestCreateAdmin(t *testing.T) {
	useTempDB(t)
	mustRun(t, "migrate")

	_, err := run(t, "create-admin", "--email", "ops@example.com")
	assert.Error(t, err)

	out := mustRun(t, "create-admin", "--email", "ops@example.com", "--password", "ops-password")
	assert.Contains(t, out, "created admin ops@example.com")
	out = mustRun(t, "create-admin", "--email", "ops@example.com")
	assert.Contains(t, out, "granted admin to ops@example.com")
}

func TestFlowEditing(t *testing.T) {
	useTempDB(t)
	mustRun(t, "migrate")
	mustRun(t, "seed")

	out := mustRun(t, "flow", "show", "inspection")
	assert.Contains(t, out, "capture -> verify")
	assert.Contains(t, out, "key node 1: dispatch")

	out = mustRun(t, "flow", "add-node", "inspection", "--key", "report", "--title", "Report", "--x", "960")
	assert.Contains(t, out, "added node report")
	mustRun(t, "flow", "connect", "inspection", "review", "report")
	mustRun(t, "flow", "key-node", "add", "inspection", "report")

	out = mustRun(t, "flow", "show", "inspection")
	assert.Contains(t, out, "review -> report")
	assert.Contains(t, out, "key node 2: report")

	_, err := run(t, "flow", "connect", "inspection", "review", "ghost")
	assert.Error(t, err)

	mustRun(t, "flow", "remove-node", "inspection", "report")
	mustRun(t, "flow", "key-node", "remove", "inspection", "2")
	out = mustRun(t, "flow", "show", "inspection")
	assert.NotContains(t, out, "report")

	_, err = run(t, "flow", "show", "missing")
	assert.Error(t, err)
}

package flow

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func threeNodes(t *testing.T) *Editor {
	t.Helper()
	e := NewEditor(Snapshot{})
	for _, k := range []string{"a", "b", "c"} {
		_, err := e.AddNode(Node{NodeKey: k, Title: strings.ToUpper(k)})
		require.NoError(t, err)
	}
	return e
}

func TestAddNodeDefaults(t *testing.T) {
	e := NewEditor(Snapshot{})
	n1, err := e.AddNode(Node{})
	require.NoError(t, err)
	n2, err := e.AddNode(Node{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(n1.NodeKey, "node-"))
	assert.NotEqual(t, n1.NodeKey, n2.NodeKey)
	assert.Equal(t, DefaultIcon, n1.Icon)
	assert.Equal(t, DefaultColor, n1.Color)
	assert.Equal(t, 1, n1.Sort)
	assert.Equal(t, 2, n2.Sort)

	_, err = e.AddNode(Node{NodeKey: n1.NodeKey})
	assert.True(t, errors.Is(err, ErrDuplicateNodeKey))
}

func TestAddEdgeNeedsTwoNodes(t *testing.T) {
	e := NewEditor(Snapshot{})
	_, err := e.AddEdge("", "")
	assert.ErrorIs(t, err, ErrNeedTwoNodes)

	e = threeNodes(t)
	ed, err := e.AddEdge("", "")
	require.NoError(t, err)
	assert.Equal(t, Edge{SourceNodeKey: "a", TargetNodeKey: "b"}, ed)

	_, err = e.AddEdge("a", "zzz")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestRemoveNodePrunesEdges(t *testing.T) {
	e := threeNodes(t)
	_, _ = e.AddEdge("a", "b")
	_, _ = e.AddEdge("b", "c")
	_, _ = e.AddEdge("a", "c")

	require.NoError(t, e.RemoveNode("b"))

	want := []Edge{{SourceNodeKey: "a", TargetNodeKey: "c"}}
	if diff := cmp.Diff(want, e.Edges()); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	assert.ErrorIs(t, e.RemoveNode("b"), ErrNodeNotFound)
}

func TestUpdateNodeRenamesReferences(t *testing.T) {
	e := threeNodes(t)
	_, _ = e.AddEdge("a", "b")
	e.AddKeyNode("b")

	err := e.UpdateNode("b", func(n *Node) { n.NodeKey = "review"; n.PosX = 120 })
	require.NoError(t, err)

	s := e.Snapshot()
	assert.Equal(t, "review", s.Edges[0].TargetNodeKey)
	assert.Equal(t, []string{"review"}, s.PanelConfig.KeyNodes)
	assert.Equal(t, 120.0, s.Nodes[1].PosX)

	err = e.UpdateNode("review", func(n *Node) { n.NodeKey = "a" })
	assert.ErrorIs(t, err, ErrDuplicateNodeKey)
	err = e.UpdateNode("review", func(n *Node) { n.NodeKey = "" })
	assert.ErrorIs(t, err, ErrEmptyNodeKey)
}

func TestEdgeAndKeyNodeEditing(t *testing.T) {
	e := threeNodes(t)
	_, _ = e.AddEdge("a", "b")
	require.NoError(t, e.UpdateEdge(0, "", "c"))
	assert.Equal(t, "c", e.Edges()[0].TargetNodeKey)
	assert.ErrorIs(t, e.UpdateEdge(3, "a", "b"), ErrIndexOutOfRange)
	require.NoError(t, e.RemoveEdge(0))
	assert.Empty(t, e.Edges())

	e.AddKeyNode("capture")
	e.AddKeyNode("verify")
	require.NoError(t, e.UpdateKeyNode(1, "AI verify"))
	require.NoError(t, e.RemoveKeyNode(0))
	e.SetPanel(func(p *Panel) { p.VideoURL = "https://v" })

	s := e.Snapshot()
	assert.Equal(t, []string{"AI verify"}, s.PanelConfig.KeyNodes)
	assert.Equal(t, "https://v", s.PanelConfig.VideoURL)
	assert.ErrorIs(t, e.RemoveKeyNode(4), ErrIndexOutOfRange)
}

func TestSnapshotIsACopy(t *testing.T) {
	e := threeNodes(t)
	s := e.Snapshot()
	s.Nodes[0].Title = "changed"
	assert.Equal(t, "A", e.Nodes()[0].Title)
}

func TestValidateNodesAndDanglingEdges(t *testing.T) {
	nodes := []Node{{NodeKey: "a"}, {NodeKey: "b"}}
	assert.NoError(t, ValidateNodes(nodes))
	assert.ErrorIs(t, ValidateNodes(append(nodes, Node{NodeKey: "a"})), ErrDuplicateNodeKey)
	assert.ErrorIs(t, ValidateNodes([]Node{{NodeKey: "  "}}), ErrEmptyNodeKey)

	edges := []Edge{
		{SourceNodeKey: "a", TargetNodeKey: "b"},
		{SourceNodeKey: "b", TargetNodeKey: "gone"},
	}
	got := DanglingEdges(nodes, edges)
	if diff := cmp.Diff([]Edge{edges[1]}, got); diff != "" {
		t.Errorf("dangling mismatch (-want +got):\n%s", diff)
	}
}

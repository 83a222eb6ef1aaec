// Package flow holds the node/edge graph shown next to a demo and the side
// panel that highlights some of its nodes.
package flow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

var (
	ErrEmptyNodeKey     = errors.New("node key is required")
	ErrDuplicateNodeKey = errors.New("duplicate node key")
	ErrNodeNotFound     = errors.New("node not found")
	ErrNeedTwoNodes     = errors.New("an edge needs at least two nodes")
	ErrIndexOutOfRange  = errors.New("index out of range")
)

const (
	DefaultIcon  = "Brain"
	DefaultColor = "bg-blue-500"
)

type Node struct {
	ID          string  `json:"id,omitempty"`
	NodeKey     string  `json:"nodeKey"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Color       string  `json:"color"`
	PosX        float64 `json:"posX"`
	PosY        float64 `json:"posY"`
	Sort        int     `json:"sort"`
}

type Edge struct {
	ID            string `json:"id,omitempty"`
	SourceNodeKey string `json:"sourceNodeKey"`
	TargetNodeKey string `json:"targetNodeKey"`
}

type Panel struct {
	VideoURL    string   `json:"videoUrl"`
	DocURL      string   `json:"docUrl"`
	Description string   `json:"description"`
	KeyNodes    []string `json:"keyNodes"`
}

// Snapshot is what gets saved. A nil Nodes or Edges slice leaves the stored
// collection alone; a nil PanelConfig leaves the panel alone.
type Snapshot struct {
	Nodes       []Node `json:"nodes"`
	Edges       []Edge `json:"edges"`
	PanelConfig *Panel `json:"panelConfig"`
}

// ValidateNodes requires every node key to be present and unique.
func ValidateNodes(nodes []Node) error {
	seen := make(map[string]struct{}, len(nodes))
	for i, n := range nodes {
		key := strings.TrimSpace(n.NodeKey)
		if key == "" {
			return fmt.Errorf("node %d: %w", i, ErrEmptyNodeKey)
		}
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateNodeKey, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// DanglingEdges returns the edges whose source or target is not among nodes.
func DanglingEdges(nodes []Node, edges []Edge) []Edge {
	keys := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		keys[n.NodeKey] = struct{}{}
	}
	out := []Edge{}
	for _, e := range edges {
		_, src := keys[e.SourceNodeKey]
		_, dst := keys[e.TargetNodeKey]
		if !src || !dst {
			out = append(out, e)
		}
	}
	return out
}

// NewNodeKey returns a time-ordered key unique across editors.
func NewNodeKey() string {
	return "node-" + strings.ToLower(ulid.Make().String())
}

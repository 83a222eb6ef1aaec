package flow

import "fmt"

// Editor is the in-memory working copy of a demo flow. Nothing is persisted
// until its Snapshot is saved.
type Editor struct {
	nodes []Node
	edges []Edge
	panel Panel
}

func NewEditor(s Snapshot) *Editor {
	e := &Editor{
		nodes: append([]Node(nil), s.Nodes...),
		edges: append([]Edge(nil), s.Edges...),
	}
	if s.PanelConfig != nil {
		e.panel = *s.PanelConfig
		e.panel.KeyNodes = append([]string(nil), s.PanelConfig.KeyNodes...)
	}
	return e
}

func (e *Editor) Nodes() []Node { return append([]Node(nil), e.nodes...) }
func (e *Editor) Edges() []Edge { return append([]Edge(nil), e.edges...) }

// AddNode appends n, filling in a fresh key and the display defaults.
func (e *Editor) AddNode(n Node) (Node, error) {
	if n.NodeKey == "" {
		n.NodeKey = NewNodeKey()
	}
	if e.indexOf(n.NodeKey) >= 0 {
		return Node{}, fmt.Errorf("%w: %q", ErrDuplicateNodeKey, n.NodeKey)
	}
	if n.Title == "" {
		n.Title = "New node"
	}
	if n.Icon == "" {
		n.Icon = DefaultIcon
	}
	if n.Color == "" {
		n.Color = DefaultColor
	}
	if n.Sort == 0 {
		n.Sort = len(e.nodes) + 1
	}
	e.nodes = append(e.nodes, n)
	return n, nil
}

// RemoveNode drops the node and every edge touching it.
func (e *Editor) RemoveNode(key string) error {
	i := e.indexOf(key)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, key)
	}
	e.nodes = append(e.nodes[:i], e.nodes[i+1:]...)
	kept := e.edges[:0]
	for _, ed := range e.edges {
		if ed.SourceNodeKey != key && ed.TargetNodeKey != key {
			kept = append(kept, ed)
		}
	}
	e.edges = kept
	return nil
}

// UpdateNode applies fn to the node in place. A key change is carried over to
// the edges and key-node labels that referenced the old key.
func (e *Editor) UpdateNode(key string, fn func(*Node)) error {
	i := e.indexOf(key)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, key)
	}
	n := e.nodes[i]
	fn(&n)
	if n.NodeKey == "" {
		return ErrEmptyNodeKey
	}
	if n.NodeKey != key {
		if e.indexOf(n.NodeKey) >= 0 {
			return fmt.Errorf("%w: %q", ErrDuplicateNodeKey, n.NodeKey)
		}
		for j := range e.edges {
			if e.edges[j].SourceNodeKey == key {
				e.edges[j].SourceNodeKey = n.NodeKey
			}
			if e.edges[j].TargetNodeKey == key {
				e.edges[j].TargetNodeKey = n.NodeKey
			}
		}
		for j, k := range e.panel.KeyNodes {
			if k == key {
				e.panel.KeyNodes[j] = n.NodeKey
			}
		}
	}
	e.nodes[i] = n
	return nil
}

// AddEdge connects source to target. Empty endpoints default to the first two nodes.
func (e *Editor) AddEdge(source, target string) (Edge, error) {
	if len(e.nodes) < 2 {
		return Edge{}, ErrNeedTwoNodes
	}
	if source == "" {
		source = e.nodes[0].NodeKey
	}
	if target == "" {
		target = e.nodes[1].NodeKey
	}
	for _, k := range []string{source, target} {
		if e.indexOf(k) < 0 {
			return Edge{}, fmt.Errorf("%w: %q", ErrNodeNotFound, k)
		}
	}
	ed := Edge{SourceNodeKey: source, TargetNodeKey: target}
	e.edges = append(e.edges, ed)
	return ed, nil
}

func (e *Editor) RemoveEdge(i int) error {
	if i < 0 || i >= len(e.edges) {
		return ErrIndexOutOfRange
	}
	e.edges = append(e.edges[:i], e.edges[i+1:]...)
	return nil
}

func (e *Editor) UpdateEdge(i int, source, target string) error {
	if i < 0 || i >= len(e.edges) {
		return ErrIndexOutOfRange
	}
	if source != "" {
		e.edges[i].SourceNodeKey = source
	}
	if target != "" {
		e.edges[i].TargetNodeKey = target
	}
	return nil
}

func (e *Editor) SetPanel(fn func(*Panel)) { fn(&e.panel) }

func (e *Editor) AddKeyNode(label string) {
	e.panel.KeyNodes = append(e.panel.KeyNodes, label)
}

func (e *Editor) UpdateKeyNode(i int, label string) error {
	if i < 0 || i >= len(e.panel.KeyNodes) {
		return ErrIndexOutOfRange
	}
	e.panel.KeyNodes[i] = label
	return nil
}

func (e *Editor) RemoveKeyNode(i int) error {
	if i < 0 || i >= len(e.panel.KeyNodes) {
		return ErrIndexOutOfRange
	}
	e.panel.KeyNodes = append(e.panel.KeyNodes[:i], e.panel.KeyNodes[i+1:]...)
	return nil
}

// Snapshot returns a copy of the whole editor state, ready to save.
func (e *Editor) Snapshot() Snapshot {
	p := e.panel
	p.KeyNodes = append([]string{}, e.panel.KeyNodes...)
	return Snapshot{
		Nodes:       append([]Node{}, e.nodes...),
		Edges:       append([]Edge{}, e.edges...),
		PanelConfig: &p,
	}
}

func (e *Editor) indexOf(key string) int {
	for i, n := range e.nodes {
		if n.NodeKey == key {
			return i
		}
	}
	return -1
}

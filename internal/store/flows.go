package store

import (
	"context"
	"fmt"

	"airdemo/internal/flow"
	"airdemo/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// FlowData is the stored flow of one demo.
type FlowData struct {
	Nodes       []models.DemoFlowNode   `json:"nodes"`
	Edges       []models.DemoFlowEdge   `json:"edges"`
	PanelConfig *models.DemoPanelConfig `json:"panelConfig"`
}

// Snapshot converts stored rows into editor state.
func (f FlowData) Snapshot() flow.Snapshot {
	s := flow.Snapshot{Nodes: []flow.Node{}, Edges: []flow.Edge{}}
	for _, n := range f.Nodes {
		s.Nodes = append(s.Nodes, flow.Node{
			ID: n.ID, NodeKey: n.NodeKey, Title: n.Title, Description: n.Description,
			Icon: n.Icon, Color: n.Color, PosX: n.PosX, PosY: n.PosY, Sort: n.Sort,
		})
	}
	for _, e := range f.Edges {
		s.Edges = append(s.Edges, flow.Edge{ID: e.ID, SourceNodeKey: e.SourceNodeKey, TargetNodeKey: e.TargetNodeKey})
	}
	if p := f.PanelConfig; p != nil {
		s.PanelConfig = &flow.Panel{
			VideoURL: p.VideoURL, DocURL: p.DocURL, Description: p.Description,
			KeyNodes: append([]string{}, p.KeyNodes...),
		}
	}
	return s
}

func (s *Store) LoadFlow(ctx context.Context, demoID string) (FlowData, error) {
	return loadFlow(s.with(ctx), demoID)
}

func loadFlow(db *gorm.DB, demoID string) (FlowData, error) {
	var fd FlowData
	if err := db.Where("demo_id = ?", demoID).Order("sort asc").Find(&fd.Nodes).Error; err != nil {
		return fd, err
	}
	if err := db.Where("demo_id = ?", demoID).Find(&fd.Edges).Error; err != nil {
		return fd, err
	}
	var panels []models.DemoPanelConfig
	if err := db.Where("demo_id = ?", demoID).Limit(1).Find(&panels).Error; err != nil {
		return fd, err
	}
	if len(panels) > 0 {
		fd.PanelConfig = &panels[0]
	}
	return fd, nil
}

// LoadFlows loads the flows of several demos concurrently.
func (s *Store) LoadFlows(ctx context.Context, demoIDs []string) (map[string]FlowData, error) {
	out := make([]FlowData, len(demoIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, id := range demoIDs {
		i, id := i, id
		g.Go(func() error {
			fd, err := s.LoadFlow(gctx, id)
			if err != nil {
				return fmt.Errorf("flow %s: %w", id, err)
			}
			out[i] = fd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	m := make(map[string]FlowData, len(demoIDs))
	for i, id := range demoIDs {
		m[id] = out[i]
	}
	return m, nil
}

// SaveFlow stores the parts of snap that are present. Edges whose endpoints
// are not among the demo's nodes are stored as submitted and returned.
func (s *Store) SaveFlow(ctx context.Context, demoID string, snap flow.Snapshot) ([]flow.Edge, error) {
	if snap.Nodes != nil {
		if err := flow.ValidateNodes(snap.Nodes); err != nil {
			return nil, err
		}
	}
	var dangling []flow.Edge
	err := s.with(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Demo{}).Where("id = ?", demoID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		current, err := loadFlow(tx, demoID)
		if err != nil {
			return err
		}

		if snap.Nodes != nil {
			if err := syncChildren(tx, demoID, nodeRows(demoID, snap.Nodes, current.Nodes),
				func(r *models.DemoFlowNode) *string { return &r.ID }); err != nil {
				return fmt.Errorf("nodes: %w", err)
			}
		}
		if snap.Edges != nil {
			if err := syncChildren(tx, demoID, edgeRows(demoID, snap.Edges, current.Edges),
				func(r *models.DemoFlowEdge) *string { return &r.ID }); err != nil {
				return fmt.Errorf("edges: %w", err)
			}
		}
		if snap.PanelConfig != nil {
			if err := upsertPanel(tx, demoID, *snap.PanelConfig, current.PanelConfig); err != nil {
				return fmt.Errorf("panel: %w", err)
			}
		}

		nodes, edges := snap.Nodes, snap.Edges
		if nodes == nil || edges == nil {
			saved := current.Snapshot()
			if nodes == nil {
				nodes = saved.Nodes
			}
			if edges == nil {
				edges = saved.Edges
			}
		}
		dangling = flow.DanglingEdges(nodes, edges)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dangling, nil
}

// nodeRows keeps the row id of a node whose key was already stored, unless
// another submitted node claims that id explicitly.
func nodeRows(demoID string, nodes []flow.Node, stored []models.DemoFlowNode) []models.DemoFlowNode {
	byKey := make(map[string]string, len(stored))
	for _, n := range stored {
		byKey[n.NodeKey] = n.ID
	}
	claimed := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.ID != "" {
			claimed[n.ID] = true
		}
	}
	rows := make([]models.DemoFlowNode, 0, len(nodes))
	for _, n := range nodes {
		id := n.ID
		if prev := byKey[n.NodeKey]; id == "" && prev != "" && !claimed[prev] {
			id = prev
			claimed[prev] = true
		}
		icon, color := n.Icon, n.Color
		if icon == "" {
			icon = flow.DefaultIcon
		}
		if color == "" {
			color = flow.DefaultColor
		}
		rows = append(rows, models.DemoFlowNode{
			ID: id, DemoID: demoID, NodeKey: n.NodeKey, Title: n.Title, Description: n.Description,
			Icon: icon, Color: color, PosX: n.PosX, PosY: n.PosY, Sort: n.Sort,
		})
	}
	return rows
}

func edgeRows(demoID string, edges []flow.Edge, stored []models.DemoFlowEdge) []models.DemoFlowEdge {
	byPair := make(map[[2]string]string, len(stored))
	for _, e := range stored {
		byPair[[2]string{e.SourceNodeKey, e.TargetNodeKey}] = e.ID
	}
	claimed := make(map[string]bool, len(edges))
	for _, e := range edges {
		if e.ID != "" {
			claimed[e.ID] = true
		}
	}
	rows := make([]models.DemoFlowEdge, 0, len(edges))
	for _, e := range edges {
		id := e.ID
		if prev := byPair[[2]string{e.SourceNodeKey, e.TargetNodeKey}]; id == "" && prev != "" && !claimed[prev] {
			id = prev
			claimed[prev] = true
		}
		rows = append(rows, models.DemoFlowEdge{
			ID: id, DemoID: demoID, SourceNodeKey: e.SourceNodeKey, TargetNodeKey: e.TargetNodeKey,
		})
	}
	return rows
}

func upsertPanel(tx *gorm.DB, demoID string, p flow.Panel, existing *models.DemoPanelConfig) error {
	keyNodes := models.StringList(p.KeyNodes)
	if keyNodes == nil {
		keyNodes = models.StringList{}
	}
	if existing != nil {
		return tx.Model(existing).Updates(map[string]interface{}{
			"video_url":   p.VideoURL,
			"doc_url":     p.DocURL,
			"description": p.Description,
			"key_nodes":   keyNodes,
		}).Error
	}
	return tx.Create(&models.DemoPanelConfig{
		ID:          demoID + "-panel",
		DemoID:      demoID,
		VideoURL:    p.VideoURL,
		DocURL:      p.DocURL,
		Description: p.Description,
		KeyNodes:    keyNodes,
	}).Error
}

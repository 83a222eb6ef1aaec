package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DemoStatusDraft     = "draft"
	DemoStatusPublished = "published"
	DemoStatusArchived  = "archived"
)

type Demo struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;size:191;not null" json:"slug"`
	Description string    `json:"description"`
	ValueProp   string    `json:"valueProp"`
	CoverImage  string    `json:"coverImage"`
	Category    string    `gorm:"index;size:64" json:"category"`
	Status      string    `gorm:"index;size:16;not null;default:draft" json:"status"`
	Sort        int       `gorm:"not null;default:0" json:"sort"`
	Config      string    `gorm:"type:text" json:"-"`
	AdminUserID *string   `gorm:"index;size:64" json:"adminUserId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Demo) TableName() string { return "demos" }

type DemoStep struct {
	ID        string `gorm:"primaryKey;size:64" json:"id"`
	DemoID    string `gorm:"index;size:64;not null" json:"demoId"`
	StepOrder int    `gorm:"not null;default:0" json:"stepOrder"`
	Title     string `json:"title"`
	Component string `json:"component"`
	Script    string `gorm:"type:text" json:"script"`
	Value     string `json:"value"`
	Fallback  string `json:"fallback"`
}

func (DemoStep) TableName() string { return "demo_steps" }

// DemoTableData holds one named table blob; TableType is a free-form key such as "main".
type DemoTableData struct {
	ID        string         `gorm:"primaryKey;size:191" json:"id"`
	DemoID    string         `gorm:"uniqueIndex:idx_demo_table_type;size:64;not null" json:"demoId"`
	TableType string         `gorm:"uniqueIndex:idx_demo_table_type;size:64;not null" json:"tableType"`
	Data      datatypes.JSON `json:"data"`
}

func (DemoTableData) TableName() string { return "demo_table_data" }

type DemoFlowNode struct {
	ID          string  `gorm:"primaryKey;size:64" json:"id"`
	DemoID      string  `gorm:"uniqueIndex:idx_demo_node_key;size:64;not null" json:"demoId"`
	NodeKey     string  `gorm:"uniqueIndex:idx_demo_node_key;size:64;not null" json:"nodeKey"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Color       string  `json:"color"`
	PosX        float64 `gorm:"not null;default:0" json:"posX"`
	PosY        float64 `gorm:"not null;default:0" json:"posY"`
	Sort        int     `gorm:"not null;default:0" json:"sort"`
}

func (DemoFlowNode) TableName() string { return "demo_flow_nodes" }

// DemoFlowEdge joins nodes by key. Keys are not foreign keys.
type DemoFlowEdge struct {
	ID            string `gorm:"primaryKey;size:64" json:"id"`
	DemoID        string `gorm:"index;size:64;not null" json:"demoId"`
	SourceNodeKey string `gorm:"size:64;not null" json:"sourceNodeKey"`
	TargetNodeKey string `gorm:"size:64;not null" json:"targetNodeKey"`
}

func (DemoFlowEdge) TableName() string { return "demo_flow_edges" }

type DemoPanelConfig struct {
	ID          string     `gorm:"primaryKey;size:191" json:"id"`
	DemoID      string     `gorm:"uniqueIndex;size:64;not null" json:"demoId"`
	VideoURL    string     `json:"videoUrl"`
	DocURL      string     `json:"docUrl"`
	Description string     `gorm:"type:text" json:"description"`
	KeyNodes    StringList `json:"keyNodes"`
}

func (DemoPanelConfig) TableName() string { return "demo_panel_configs" }

func (d *Demo) BeforeCreate(*gorm.DB) error            { fillID(&d.ID); return nil }
func (s *DemoStep) BeforeCreate(*gorm.DB) error        { fillID(&s.ID); return nil }
func (n *DemoFlowNode) BeforeCreate(*gorm.DB) error    { fillID(&n.ID); return nil }
func (e *DemoFlowEdge) BeforeCreate(*gorm.DB) error    { fillID(&e.ID); return nil }
func (p *DemoPanelConfig) BeforeCreate(*gorm.DB) error { fillID(&p.ID); return nil }

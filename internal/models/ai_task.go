package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const AITaskStatusSuccess = "success"

type AITask struct {
	ID          string         `gorm:"primaryKey;size:64" json:"id"`
	DemoID      *string        `gorm:"index;size:64" json:"demoId"`
	MediaType   string         `gorm:"size:32" json:"mediaType"`
	Provider    string         `gorm:"size:64" json:"provider"`
	Model       string         `gorm:"size:128" json:"model"`
	Prompt      string         `gorm:"type:text" json:"prompt"`
	Options     datatypes.JSON `json:"options"`
	Status      string         `gorm:"size:16" json:"status"`
	TaskResult  datatypes.JSON `json:"taskResult"`
	Scene       string         `gorm:"size:64" json:"scene"`
	CostCredits int            `gorm:"not null;default:0" json:"costCredits"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (AITask) TableName() string { return "ai_tasks" }

func (t *AITask) BeforeCreate(*gorm.DB) error { fillID(&t.ID); return nil }

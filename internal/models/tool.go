package models

import "time"

type EfficiencyTool struct {
	ID          string     `gorm:"primaryKey;size:191" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	AvatarURL   string     `json:"avatarUrl"`
	Description string     `gorm:"type:text" json:"description"`
	Highlight   string     `gorm:"type:text" json:"highlight"`
	Skills      StringList `json:"skills"`
	Status      string     `gorm:"index;size:16;not null;default:draft" json:"status"`
	Sort        int        `gorm:"not null;default:0" json:"sort"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (EfficiencyTool) TableName() string { return "efficiency_tools" }

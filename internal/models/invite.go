package models

import "time"

const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
)

type AdminInvite struct {
	ID        string    `gorm:"primaryKey;size:191" json:"id"`
	Email     string    `gorm:"index;size:191;not null" json:"email"`
	Token     string    `gorm:"uniqueIndex;size:64;not null" json:"token"`
	Status    string    `gorm:"size:16;not null;default:pending" json:"status"`
	InvitedBy *string   `gorm:"size:64" json:"invitedBy"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (AdminInvite) TableName() string { return "admin_invites" }

func (i *AdminInvite) Expired(now time.Time) bool { return now.After(i.ExpiresAt) }

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin             = "admin"
	PermissionAdminAccess = "admin.access"
)

type Role struct {
	ID          string       `gorm:"primaryKey;size:64" json:"id"`
	Name        string       `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      string       `gorm:"not null;default:active" json:"status"`
	Sort        int          `gorm:"not null;default:0" json:"sort"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
}

type Permission struct {
	ID          string `gorm:"primaryKey;size:64" json:"id"`
	Code        string `gorm:"uniqueIndex;size:128;not null" json:"code"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type User struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	Name          string    `json:"name"`
	Email         string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	EmailVerified bool      `gorm:"not null;default:false" json:"emailVerified"`
	PasswordHash  string    `json:"-"`
	IsActive      bool      `gorm:"not null;default:true" json:"isActive"`
	Roles         []Role    `gorm:"many2many:user_roles" json:"roles,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

type Session struct {
	JTI       string     `gorm:"primaryKey;size:64" json:"jti"`
	UserID    string     `gorm:"index;size:64;not null" json:"userId"`
	ExpiresAt time.Time  `gorm:"not null" json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (r *Role) BeforeCreate(*gorm.DB) error       { fillID(&r.ID); return nil }
func (p *Permission) BeforeCreate(*gorm.DB) error { fillID(&p.ID); return nil }
func (u *User) BeforeCreate(*gorm.DB) error       { fillID(&u.ID); return nil }

func fillID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

package store

import (
	"context"
	"strings"
	"time"

	"airdemo/internal/models"

	"gorm.io/gorm"
)

// Well-known ids used when the admin role and permission are bootstrapped.
const (
	AdminRoleID       = "admin-role"
	AdminPermissionID = "admin-access-permission"
)

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.with(ctx).Preload("Roles").First(&u, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.with(ctx).Preload("Roles").First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return conflict(s.with(ctx).Create(u).Error)
}

// Admins lists users holding the admin role, for the demo owner filter.
func (s *Store) Admins(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.with(ctx).
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", models.RoleAdmin).
		Order("users.email asc").
		Find(&users).Error
	return users, err
}

// EnsureAdminRole returns the admin role, creating it and its admin.access
// permission when missing. Safe to call repeatedly.
func (s *Store) EnsureAdminRole(ctx context.Context) (*models.Role, error) {
	var role models.Role
	err := s.with(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where(models.Role{Name: models.RoleAdmin}).
			Attrs(models.Role{
				ID:          AdminRoleID,
				Title:       "Super administrator",
				Description: "Full access to the admin panel",
				Status:      "active",
			}).
			FirstOrCreate(&role).Error
		if err != nil {
			return err
		}
		var perm models.Permission
		err = tx.Where(models.Permission{Code: models.PermissionAdminAccess}).
			Attrs(models.Permission{
				ID:          AdminPermissionID,
				Resource:    "admin",
				Action:      "access",
				Title:       "Admin access",
				Description: "Allows access to the admin panel",
			}).
			FirstOrCreate(&perm).Error
		if err != nil {
			return err
		}
		return tx.Model(&role).Association("Permissions").Append(&perm)
	})
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GrantRole attaches role to the user. Granting a held role is a no-op.
func (s *Store) GrantRole(ctx context.Context, userID string, role *models.Role) error {
	var u models.User
	if err := s.with(ctx).First(&u, "id = ?", userID).Error; err != nil {
		return notFound(err)
	}
	return s.with(ctx).Model(&u).Association("Roles").Append(role)
}

// HasPermission reports whether any of the user's roles carries code.
func (s *Store) HasPermission(ctx context.Context, userID, code string) (bool, error) {
	var n int64
	err := s.with(ctx).Table("user_roles").
		Joins("JOIN role_permissions ON role_permissions.role_id = user_roles.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("user_roles.user_id = ? AND permissions.code = ?", userID, code).
		Count(&n).Error
	return n > 0, err
}

func (s *Store) CreateSession(ctx context.Context, sess *models.Session) error {
	return s.with(ctx).Create(sess).Error
}

func (s *Store) SessionByJTI(ctx context.Context, jti string) (*models.Session, error) {
	var sess models.Session
	if err := s.with(ctx).First(&sess, "jti = ?", jti).Error; err != nil {
		return nil, notFound(err)
	}
	return &sess, nil
}

func (s *Store) RevokeSession(ctx context.Context, jti string) error {
	t := time.Now()
	return s.with(ctx).Model(&models.Session{}).Where("jti = ?", jti).Update("revoked_at", &t).Error
}

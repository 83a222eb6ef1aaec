package store

import (
	"context"

	"airdemo/internal/models"

	"gorm.io/gorm"
)

// ReplaceInvite drops any earlier invite for the same email and stores inv.
func (s *Store) ReplaceInvite(ctx context.Context, inv *models.AdminInvite) error {
	return s.with(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", inv.Email).Delete(&models.AdminInvite{}).Error; err != nil {
			return err
		}
		return conflict(tx.Create(inv).Error)
	})
}

func (s *Store) InviteByToken(ctx context.Context, token string) (*models.AdminInvite, error) {
	var inv models.AdminInvite
	if err := s.with(ctx).First(&inv, "token = ?", token).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

func (s *Store) InvitesByEmail(ctx context.Context, email string) ([]models.AdminInvite, error) {
	var rows []models.AdminInvite
	err := s.with(ctx).Where("email = ?", email).Find(&rows).Error
	return rows, err
}

// MarkInviteAccepted flips a pending invite to accepted. It returns ErrStale
// when the invite is no longer pending.
func (s *Store) MarkInviteAccepted(ctx context.Context, id string) error {
	res := s.with(ctx).Model(&models.AdminInvite{}).
		Where("id = ? AND status = ?", id, models.InviteStatusPending).
		Updates(map[string]interface{}{"status": models.InviteStatusAccepted, "updated_at": now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

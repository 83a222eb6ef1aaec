package store

import (
	"context"

	"airdemo/internal/models"
)

// ListTools returns tools ordered by sort descending. An empty status lists all.
func (s *Store) ListTools(ctx context.Context, status string) ([]models.EfficiencyTool, error) {
	q := s.with(ctx).Model(&models.EfficiencyTool{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []models.EfficiencyTool
	err := q.Order("sort desc").Order("created_at desc").Find(&rows).Error
	return rows, err
}

func (s *Store) GetTool(ctx context.Context, id string) (*models.EfficiencyTool, error) {
	var t models.EfficiencyTool
	if err := s.with(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *Store) CreateTool(ctx context.Context, t *models.EfficiencyTool) error {
	return conflict(s.with(ctx).Create(t).Error)
}

// UpdateTool sets the given columns. Only the columns present change.
func (s *Store) UpdateTool(ctx context.Context, id string, fields map[string]interface{}) error {
	t, err := s.GetTool(ctx, id)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	return conflict(s.with(ctx).Model(t).Updates(fields).Error)
}

func (s *Store) DeleteTool(ctx context.Context, id string) error {
	res := s.with(ctx).Where("id = ?", id).Delete(&models.EfficiencyTool{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

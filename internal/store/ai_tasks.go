package store

import (
	"context"

	"airdemo/internal/models"
)

func (s *Store) CreateAITask(ctx context.Context, t *models.AITask) error {
	return s.with(ctx).Create(t).Error
}

func (s *Store) RecentAITasks(ctx context.Context, limit int) ([]models.AITask, error) {
	var rows []models.AITask
	err := s.with(ctx).Order("created_at desc").Limit(limit).Find(&rows).Error
	return rows, err
}

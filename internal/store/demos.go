package store

import (
	"context"
	"fmt"
	"strings"

	"airdemo/internal/models"

	"gorm.io/gorm"
)

const (
	SortBySort        = "sort"
	SortByCreatedAsc  = "created_asc"
	SortByCreatedDesc = "created_desc"

	AdminFilterAll        = "all"
	AdminFilterUnassigned = "unassigned"
)

// DemoFilter drives the admin demo list. Empty fields and "all" do not filter.
type DemoFilter struct {
	Title   string
	Status  string
	AdminID string
	Sort    string
}

// DemoRow is a demo joined with its owning admin.
type DemoRow struct {
	models.Demo
	AdminName  *string `json:"adminName"`
	AdminEmail *string `json:"adminEmail"`
}

// DemoChanges describes an update. Fields holds column values to set; the
// child collections are only touched when their Set flag is true.
type DemoChanges struct {
	Fields    map[string]interface{}
	SetSteps  bool
	Steps     []models.DemoStep
	SetTables bool
	Tables    []models.DemoTableData
}

func (s *Store) ListDemos(ctx context.Context, f DemoFilter) ([]DemoRow, error) {
	q := s.with(ctx).Table("demos").
		Select("demos.*, users.name AS admin_name, users.email AS admin_email").
		Joins("LEFT JOIN users ON users.id = demos.admin_user_id")
	if t := strings.TrimSpace(f.Title); t != "" {
		q = q.Where("demos.title LIKE ?", "%"+t+"%")
	}
	if f.Status != "" && f.Status != "all" {
		q = q.Where("demos.status = ?", f.Status)
	}
	switch f.AdminID {
	case "", AdminFilterAll:
	case AdminFilterUnassigned:
		q = q.Where("demos.admin_user_id IS NULL")
	default:
		q = q.Where("demos.admin_user_id = ?", f.AdminID)
	}
	switch f.Sort {
	case SortByCreatedAsc:
		q = q.Order("demos.created_at asc")
	case SortByCreatedDesc:
		q = q.Order("demos.created_at desc")
	default:
		q = q.Order("demos.sort desc").Order("demos.created_at desc")
	}
	var rows []DemoRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DemosByStatus lists demos in one status ordered by sort descending.
func (s *Store) DemosByStatus(ctx context.Context, status string) ([]models.Demo, error) {
	var rows []models.Demo
	err := s.with(ctx).Where("status = ?", status).Order("sort desc").Order("created_at desc").Find(&rows).Error
	return rows, err
}

func (s *Store) GetDemo(ctx context.Context, id string) (*models.Demo, error) {
	var d models.Demo
	if err := s.with(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (s *Store) GetDemoBySlug(ctx context.Context, slug string) (*models.Demo, error) {
	var d models.Demo
	if err := s.with(ctx).First(&d, "slug = ?", slug).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (s *Store) DemoSteps(ctx context.Context, demoID string) ([]models.DemoStep, error) {
	var steps []models.DemoStep
	err := s.with(ctx).Where("demo_id = ?", demoID).Order("step_order asc").Find(&steps).Error
	return steps, err
}

func (s *Store) DemoTables(ctx context.Context, demoID string) ([]models.DemoTableData, error) {
	var tables []models.DemoTableData
	err := s.with(ctx).Where("demo_id = ?", demoID).Order("table_type asc").Find(&tables).Error
	return tables, err
}

// CreateDemo inserts the demo and its children in one transaction.
func (s *Store) CreateDemo(ctx context.Context, d *models.Demo, steps []models.DemoStep, tables []models.DemoTableData) error {
	return s.with(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSlugFree(tx, d.Slug, ""); err != nil {
			return err
		}
		if err := tx.Create(d).Error; err != nil {
			return conflict(err)
		}
		for i := range steps {
			steps[i].DemoID = d.ID
		}
		for i := range tables {
			tables[i].DemoID = d.ID
		}
		if err := syncChildren(tx, d.ID, steps, func(r *models.DemoStep) *string { return &r.ID }); err != nil {
			return fmt.Errorf("steps: %w", err)
		}
		if err := syncChildren(tx, d.ID, tables, func(r *models.DemoTableData) *string { return &r.ID }); err != nil {
			return fmt.Errorf("tables: %w", err)
		}
		return nil
	})
}

// UpdateDemo applies ch atomically. The stored children afterwards equal the
// submitted ones.
func (s *Store) UpdateDemo(ctx context.Context, id string, ch DemoChanges) error {
	return s.with(ctx).Transaction(func(tx *gorm.DB) error {
		var d models.Demo
		if err := tx.First(&d, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if slug, ok := ch.Fields["slug"].(string); ok && slug != d.Slug {
			if err := ensureSlugFree(tx, slug, id); err != nil {
				return err
			}
		}
		if len(ch.Fields) > 0 {
			if err := tx.Model(&d).Updates(ch.Fields).Error; err != nil {
				return conflict(err)
			}
		}
		if ch.SetSteps {
			for i := range ch.Steps {
				ch.Steps[i].DemoID = id
			}
			if err := syncChildren(tx, id, ch.Steps, func(r *models.DemoStep) *string { return &r.ID }); err != nil {
				return fmt.Errorf("steps: %w", err)
			}
		}
		if ch.SetTables {
			for i := range ch.Tables {
				ch.Tables[i].DemoID = id
			}
			if err := syncChildren(tx, id, ch.Tables, func(r *models.DemoTableData) *string { return &r.ID }); err != nil {
				return fmt.Errorf("tables: %w", err)
			}
		}
		return nil
	})
}

// DeleteDemo removes the demo together with everything keyed by its id.
func (s *Store) DeleteDemo(ctx context.Context, id string) error {
	return s.with(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&models.DemoStep{}, &models.DemoTableData{}, &models.DemoFlowNode{},
			&models.DemoFlowEdge{}, &models.DemoPanelConfig{},
		} {
			if err := tx.Where("demo_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&models.Demo{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func ensureSlugFree(tx *gorm.DB, slug, exceptID string) error {
	var n int64
	q := tx.Model(&models.Demo{}).Where("slug = ?", slug)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrSlugTaken
	}
	return nil
}

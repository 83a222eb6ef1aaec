package store

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// syncChildren makes the rows stored under demoID equal rows exactly. The
// stored rows are removed and rows inserted with their ids, so keys may move
// between rows without tripping unique indexes. Blank ids are assigned; a
// repeated id is rejected. Callers run it inside a transaction.
func syncChildren[T any](tx *gorm.DB, demoID string, rows []T, idOf func(*T) *string) error {
	seen := make(map[string]bool, len(rows))
	for i := range rows {
		id := idOf(&rows[i])
		if *id == "" {
			continue
		}
		if seen[*id] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, *id)
		}
		seen[*id] = true
	}
	for i := range rows {
		if id := idOf(&rows[i]); *id == "" {
			*id = uuid.NewString()
		}
	}

	if err := tx.Where("demo_id = ?", demoID).Delete(new(T)).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return conflict(tx.Create(&rows).Error)
}

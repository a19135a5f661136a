package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/keurcoiff/keurcoiff/internal/models"
)

// seedFile is the on-disk shape of a catalog seed.
type seedFile struct {
	Salons []*models.Salon `json:"salons"`
}

// Seed replaces the catalog contents with the salons from the JSON
// file at path. Records and services without IDs get generated ones.
// Creation timestamps are staggered so catalog order follows seed file
// order. Returns the number of salons loaded.
func (c *SQLiteCatalog) Seed(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM salons`); err != nil {
		return 0, fmt.Errorf("failed to clear catalog: %w", err)
	}

	now := time.Now()
	for i, salon := range seed.Salons {
		if salon.ID == "" {
			salon.ID = uuid.NewString()
		}
		for j := range salon.Services {
			if salon.Services[j].ID == "" {
				salon.Services[j].ID = uuid.NewString()
			}
		}
		if salon.CreatedAt.IsZero() {
			salon.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		}
		salon.UpdatedAt = salon.CreatedAt

		row, err := toRow(salon)
		if err != nil {
			return 0, err
		}
		if _, err := tx.NamedExecContext(ctx, insertSalon, row); err != nil {
			return 0, fmt.Errorf("failed to seed salon %q: %w", salon.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(seed.Salons), nil
}

// Package storage defines the persistence interface for the salon catalog.
package storage

import (
	"context"
	"errors"

	"github.com/keurcoiff/keurcoiff/internal/models"
)

// ErrNotFound is returned when a salon does not exist.
var ErrNotFound = errors.New("salon not found")

// Catalog defines salon persistence operations. List results are
// snapshots in insertion order; they never stream partial updates.
type Catalog interface {
	CreateSalon(ctx context.Context, salon *models.Salon) error
	GetSalon(ctx context.Context, id string) (*models.Salon, error)
	UpdateSalon(ctx context.Context, salon *models.Salon) error
	// DeactivateSalon soft-deletes: the record stays but is excluded
	// from every search operation.
	DeactivateSalon(ctx context.Context, id string) error

	// ListSalons returns the full catalog, including inactive and
	// unverified records.
	ListSalons(ctx context.Context) ([]*models.Salon, error)
	// ListPublished returns active, verified salons sorted by rating
	// average descending.
	ListPublished(ctx context.Context, offset, limit int) ([]*models.Salon, error)

	CountSalons(ctx context.Context) (int64, error)

	Close() error
}

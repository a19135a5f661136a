// Package storage provides the SQLite implementation of the Catalog interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/keurcoiff/keurcoiff/internal/models"
)

// SQLiteCatalog implements Catalog using SQLite via sqlx.
type SQLiteCatalog struct {
	db *sqlx.DB
}

// NewSQLiteCatalog opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteCatalog(dbPath string) (*SQLiteCatalog, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteCatalog{db: db}, nil
}

func initSchema(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS salons (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		address TEXT,
		quarter TEXT NOT NULL,
		city TEXT NOT NULL,
		lat REAL,
		lng REAL,
		contact TEXT,
		services TEXT,
		features TEXT,
		photos TEXT,
		rating_average REAL NOT NULL DEFAULT 0,
		rating_count INTEGER NOT NULL DEFAULT 0,
		is_verified INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_salons_city_quarter ON salons(city, quarter);
	CREATE INDEX IF NOT EXISTS idx_salons_published ON salons(is_active, is_verified);
	CREATE INDEX IF NOT EXISTS idx_salons_created_at ON salons(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// salonRow is the flat database projection of a salon. Nested parts
// (contact, services, features, photos) are stored as JSON.
type salonRow struct {
	ID            string          `db:"id"`
	Name          string          `db:"name"`
	Description   sql.NullString  `db:"description"`
	Address       sql.NullString  `db:"address"`
	Quarter       string          `db:"quarter"`
	City          string          `db:"city"`
	Lat           sql.NullFloat64 `db:"lat"`
	Lng           sql.NullFloat64 `db:"lng"`
	Contact       sql.NullString  `db:"contact"`
	Services      sql.NullString  `db:"services"`
	Features      sql.NullString  `db:"features"`
	Photos        sql.NullString  `db:"photos"`
	RatingAverage float64         `db:"rating_average"`
	RatingCount   int             `db:"rating_count"`
	IsVerified    bool            `db:"is_verified"`
	IsActive      bool            `db:"is_active"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func toRow(s *models.Salon) (*salonRow, error) {
	contact, err := json.Marshal(s.Contact)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contact: %w", err)
	}
	services, err := json.Marshal(s.Services)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal services: %w", err)
	}
	features, err := json.Marshal(s.Features)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal features: %w", err)
	}
	photos, err := json.Marshal(s.Photos)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal photos: %w", err)
	}
	row := &salonRow{
		ID:            s.ID,
		Name:          s.Name,
		Description:   sql.NullString{String: s.Description, Valid: s.Description != ""},
		Address:       sql.NullString{String: s.Location.Address, Valid: s.Location.Address != ""},
		Quarter:       s.Location.Quarter,
		City:          s.Location.City,
		Contact:       sql.NullString{String: string(contact), Valid: true},
		Services:      sql.NullString{String: string(services), Valid: true},
		Features:      sql.NullString{String: string(features), Valid: true},
		Photos:        sql.NullString{String: string(photos), Valid: true},
		RatingAverage: s.Rating.Average,
		RatingCount:   s.Rating.Count,
		IsVerified:    s.IsVerified,
		IsActive:      s.IsActive,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.Location.Coordinates != nil {
		row.Lat = sql.NullFloat64{Float64: s.Location.Coordinates.Lat, Valid: true}
		row.Lng = sql.NullFloat64{Float64: s.Location.Coordinates.Lng, Valid: true}
	}
	return row, nil
}

func fromRow(row *salonRow) (*models.Salon, error) {
	s := &models.Salon{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description.String,
		Location: models.Location{
			Address: row.Address.String,
			Quarter: row.Quarter,
			City:    row.City,
		},
		Rating:     models.Rating{Average: row.RatingAverage, Count: row.RatingCount},
		IsVerified: row.IsVerified,
		IsActive:   row.IsActive,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if row.Lat.Valid && row.Lng.Valid {
		s.Location.Coordinates = &models.Coordinate{Lat: row.Lat.Float64, Lng: row.Lng.Float64}
	}
	if row.Contact.Valid && row.Contact.String != "" {
		if err := json.Unmarshal([]byte(row.Contact.String), &s.Contact); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contact: %w", err)
		}
	}
	if row.Services.Valid && row.Services.String != "" {
		if err := json.Unmarshal([]byte(row.Services.String), &s.Services); err != nil {
			return nil, fmt.Errorf("failed to unmarshal services: %w", err)
		}
	}
	if row.Features.Valid && row.Features.String != "" {
		if err := json.Unmarshal([]byte(row.Features.String), &s.Features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal features: %w", err)
		}
	}
	if row.Photos.Valid && row.Photos.String != "" {
		if err := json.Unmarshal([]byte(row.Photos.String), &s.Photos); err != nil {
			return nil, fmt.Errorf("failed to unmarshal photos: %w", err)
		}
	}
	return s, nil
}

const insertSalon = `
	INSERT INTO salons (
		id, name, description, address, quarter, city, lat, lng,
		contact, services, features, photos,
		rating_average, rating_count, is_verified, is_active,
		created_at, updated_at
	) VALUES (
		:id, :name, :description, :address, :quarter, :city, :lat, :lng,
		:contact, :services, :features, :photos,
		:rating_average, :rating_count, :is_verified, :is_active,
		:created_at, :updated_at
	)`

// CreateSalon inserts a salon, stamping creation and update times.
func (c *SQLiteCatalog) CreateSalon(ctx context.Context, salon *models.Salon) error {
	now := time.Now()
	salon.CreatedAt = now
	salon.UpdatedAt = now

	row, err := toRow(salon)
	if err != nil {
		return err
	}
	if _, err := c.db.NamedExecContext(ctx, insertSalon, row); err != nil {
		return fmt.Errorf("failed to insert salon: %w", err)
	}
	return nil
}

// GetSalon returns a salon by ID, or ErrNotFound.
func (c *SQLiteCatalog) GetSalon(ctx context.Context, id string) (*models.Salon, error) {
	var row salonRow
	err := c.db.GetContext(ctx, &row, `SELECT * FROM salons WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return fromRow(&row)
}

// UpdateSalon replaces a salon's fields and bumps the update time.
func (c *SQLiteCatalog) UpdateSalon(ctx context.Context, salon *models.Salon) error {
	salon.UpdatedAt = time.Now()
	row, err := toRow(salon)
	if err != nil {
		return err
	}
	res, err := c.db.NamedExecContext(ctx, `
		UPDATE salons SET
			name = :name, description = :description, address = :address,
			quarter = :quarter, city = :city, lat = :lat, lng = :lng,
			contact = :contact, services = :services, features = :features,
			photos = :photos, rating_average = :rating_average,
			rating_count = :rating_count, is_verified = :is_verified,
			is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return fmt.Errorf("failed to update salon: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, salon.ID)
	}
	return nil
}

// DeactivateSalon marks a salon inactive. The record is kept.
func (c *SQLiteCatalog) DeactivateSalon(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx,
		`UPDATE salons SET is_active = 0, updated_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate salon: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ListSalons returns the full catalog in insertion order.
func (c *SQLiteCatalog) ListSalons(ctx context.Context) ([]*models.Salon, error) {
	var rows []salonRow
	if err := c.db.SelectContext(ctx, &rows,
		`SELECT * FROM salons ORDER BY created_at, id`); err != nil {
		return nil, err
	}
	return fromRows(rows)
}

// ListPublished returns active, verified salons sorted by rating
// average descending.
func (c *SQLiteCatalog) ListPublished(ctx context.Context, offset, limit int) ([]*models.Salon, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	var rows []salonRow
	if err := c.db.SelectContext(ctx, &rows, `
		SELECT * FROM salons
		WHERE is_active = 1 AND is_verified = 1
		ORDER BY rating_average DESC, created_at, id
		LIMIT ? OFFSET ?`, limit, offset); err != nil {
		return nil, err
	}
	return fromRows(rows)
}

// CountSalons returns the total number of records, published or not.
func (c *SQLiteCatalog) CountSalons(ctx context.Context) (int64, error) {
	var count int64
	if err := c.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM salons`); err != nil {
		return 0, err
	}
	return count, nil
}

// Close closes the database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

func fromRows(rows []salonRow) ([]*models.Salon, error) {
	salons := make([]*models.Salon, 0, len(rows))
	for i := range rows {
		s, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		salons = append(salons, s)
	}
	return salons, nil
}

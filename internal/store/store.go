// Package store provides the Postgres-backed data sources for the monitoring
// engine. Observations are written by the ingestion pipeline; this package
// only reads.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/digiclimate/supplyrisk/internal/models"
	"github.com/digiclimate/supplyrisk/internal/sources"
)

var ErrNotFound = errors.New("not found")

// PGStore reads materials, observations, stock levels, and affected product
// counts from Postgres. It implements sources.ObservationSource,
// sources.StockSource, and sources.AffectedProductsSource.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row rowScanner) (models.ObservationSnapshot, error) {
	var (
		snap     models.ObservationSnapshot
		original sql.NullFloat64
		expected sql.NullFloat64
	)
	if err := row.Scan(
		&snap.MaterialID,
		&snap.MaterialName,
		&snap.Timestamp,
		&snap.Condition,
		&snap.Category,
		&original,
		&expected,
		&snap.DelayPercent,
		&snap.DaysFromNow,
	); err != nil {
		return models.ObservationSnapshot{}, err
	}
	if original.Valid && expected.Valid {
		snap.OriginalProduction = original.Float64
		snap.ExpectedProduction = expected.Float64
		snap.HasProduction = true
	}
	return snap, nil
}

func (s *PGStore) Materials(ctx context.Context) ([]models.Material, error) {
	const query = `SELECT id, name FROM materials ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var materials []models.Material
	for rows.Next() {
		var m models.Material
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materials, nil
}

// CurrentStatus returns the most recent day-zero observation for the material.
func (s *PGStore) CurrentStatus(ctx context.Context, materialID int) (*models.ObservationSnapshot, error) {
	const query = `
		SELECT o.material_id, m.name, o.observed_at, o.condition, o.category,
		       o.original_production, o.expected_production, o.delay_percent, o.days_from_now
		FROM observations o
		JOIN materials m ON m.id = o.material_id
		WHERE o.material_id = $1 AND o.days_from_now = 0
		ORDER BY o.observed_at DESC
		LIMIT 1
	`
	snap, err := scanSnapshot(s.db.QueryRowContext(ctx, query, materialID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sources.ErrNoData
		}
		return nil, fmt.Errorf("current status for material %d: %w", materialID, err)
	}
	return &snap, nil
}

// Forecast returns the forward-looking observations for the material, ordered
// by day offset, out to the given horizon.
func (s *PGStore) Forecast(ctx context.Context, materialID, days int) ([]models.ObservationSnapshot, error) {
	const query = `
		SELECT o.material_id, m.name, o.observed_at, o.condition, o.category,
		       o.original_production, o.expected_production, o.delay_percent, o.days_from_now
		FROM observations o
		JOIN materials m ON m.id = o.material_id
		WHERE o.material_id = $1 AND o.days_from_now BETWEEN 1 AND $2
		ORDER BY o.days_from_now ASC
	`
	rows, err := s.db.QueryContext(ctx, query, materialID, days)
	if err != nil {
		return nil, fmt.Errorf("forecast for material %d: %w", materialID, err)
	}
	defer rows.Close()

	var snaps []models.ObservationSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan forecast row: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("forecast for material %d: %w", materialID, err)
	}
	if len(snaps) == 0 {
		return nil, sources.ErrNoData
	}
	return snaps, nil
}

func (s *PGStore) StockState(ctx context.Context, materialID int) (*models.StockState, error) {
	const query = `
		SELECT s.material_id, m.name, s.current_stock, s.daily_consumption, s.safety_stock
		FROM stock_levels s
		JOIN materials m ON m.id = s.material_id
		WHERE s.material_id = $1
	`
	var st models.StockState
	err := s.db.QueryRowContext(ctx, query, materialID).Scan(
		&st.MaterialID,
		&st.MaterialName,
		&st.CurrentStock,
		&st.DailyConsumption,
		&st.SafetyStock,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sources.ErrNoData
		}
		return nil, fmt.Errorf("stock state for material %d: %w", materialID, err)
	}
	return &st, nil
}

func (s *PGStore) AffectedProductCount(ctx context.Context, materialID int) (int, error) {
	const query = `SELECT COUNT(*) FROM products WHERE material_id = $1`
	var count int
	if err := s.db.QueryRowContext(ctx, query, materialID).Scan(&count); err != nil {
		return 0, fmt.Errorf("affected products for material %d: %w", materialID, err)
	}
	return count, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/safeweb/models"
)

// Metric is a numeric reading column that can be aggregated.
type Metric string

const (
	Temperature Metric = "temperature"
	Humidity    Metric = "humidity"
)

// WindowStats aggregates m over the readings matching f. Null values are
// skipped. Everything but the median is computed in one query; the median
// reads back only the middle one or two values.
func (s *Store) WindowStats(ctx context.Context, f ReadingFilter, m Metric) (models.WindowStats, error) {
	if m != Temperature && m != Humidity {
		return models.WindowStats{}, fmt.Errorf("unknown metric %q", m)
	}
	col := "d." + string(m)

	where, args := f.where()
	if where == "" {
		where = "WHERE " + col + " IS NOT NULL"
	} else {
		where += " AND " + col + " IS NOT NULL"
	}

	var agg struct {
		Count int             `db:"n"`
		Min   sql.NullFloat64 `db:"min_v"`
		Max   sql.NullFloat64 `db:"max_v"`
		Mean  sql.NullFloat64 `db:"mean_v"`
	}
	q := `SELECT COUNT(*) AS n, MIN(` + col + `) AS min_v, MAX(` + col + `) AS max_v, AVG(` + col + `) AS mean_v
		FROM sensor_data d
		` + where
	if err := s.db.GetContext(ctx, &agg, s.db.Rebind(q), args...); err != nil {
		return models.WindowStats{}, fmt.Errorf("failed to aggregate %s: %w", m, err)
	}
	if agg.Count == 0 {
		return models.WindowStats{}, nil
	}

	middle := []float64{}
	q = `SELECT ` + col + ` FROM sensor_data d
		` + where + `
		ORDER BY ` + col + ` LIMIT ? OFFSET ?`
	medianArgs := append(append([]any{}, args...), 2-agg.Count%2, (agg.Count-1)/2)
	if err := s.db.SelectContext(ctx, &middle, s.db.Rebind(q), medianArgs...); err != nil {
		return models.WindowStats{}, fmt.Errorf("failed to read %s median: %w", m, err)
	}

	var median float64
	for _, v := range middle {
		median += v
	}
	if len(middle) > 0 {
		median /= float64(len(middle))
	}

	return models.WindowStats{
		Min:    agg.Min.Float64,
		Max:    agg.Max.Float64,
		Mean:   agg.Mean.Float64,
		Median: median,
		Count:  agg.Count,
	}, nil
}

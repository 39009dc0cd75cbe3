package store

import (
	"fmt"
	"time"

	"github.com/sadopc/logbook/internal/model"
)

func (s *Store) CreateTarget(t *model.Target) error {
	if t.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		t.ID = id
	}
	if t.PeriodType == "" {
		t.PeriodType = model.Daily
	}
	if !t.PeriodType.Valid() {
		return fmt.Errorf("unknown period type %q", t.PeriodType)
	}
	_, err := s.db.Exec(
		`INSERT INTO targets (id, name, category_id, schedule, config, period_type, period_days, week_start_day)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Category, t.Schedule, t.Config, string(t.PeriodType), t.PeriodDays, int(t.WeekStartDay),
	)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	return nil
}

const targetColumns = `id, name, category_id, schedule, config, period_type, period_days, week_start_day`

type scanner interface {
	Scan(dest ...any) error
}

func scanTarget(row scanner) (model.Target, error) {
	var t model.Target
	var periodType string
	var weekStart int
	err := row.Scan(&t.ID, &t.Name, &t.Category, &t.Schedule, &t.Config, &periodType, &t.PeriodDays, &weekStart)
	t.PeriodType = model.AggregationMode(periodType)
	t.WeekStartDay = time.Weekday(weekStart)
	return t, err
}

func (s *Store) GetTarget(id string) (*model.Target, error) {
	t, err := scanTarget(s.db.QueryRow(`SELECT `+targetColumns+` FROM targets WHERE id = ?`, id))
	if err != nil {
		return nil, notFound("target", id, err)
	}
	return &t, nil
}

func (s *Store) ListTargets() ([]model.Target, error) {
	rows, err := s.db.Query(`SELECT ` + targetColumns + ` FROM targets ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	defer rows.Close()

	var targets []model.Target
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func (s *Store) UpdateTarget(t *model.Target) error {
	res, err := s.db.Exec(
		`UPDATE targets SET name = ?, category_id = ?, schedule = ?, config = ?, period_type = ?,
		 period_days = ?, week_start_day = ? WHERE id = ?`,
		t.Name, t.Category, t.Schedule, t.Config, string(t.Period()), t.PeriodDays, int(t.WeekStartDay), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update target: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("target %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteTarget(id string) error {
	res, err := s.db.Exec(`DELETE FROM targets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete target: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("target %s: %w", id, ErrNotFound)
	}
	return nil
}

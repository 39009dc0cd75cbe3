package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/logbook/internal/model"
)

func (s *Store) CreateGraph(g *model.Graph) error {
	if g.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		g.ID = id
	}
	if g.Type == "" {
		g.Type = model.GraphBar
	}
	if g.Config.AggregationMode == "" {
		g.Config.AggregationMode = model.Daily
	}
	_, err := s.db.Exec(
		`INSERT INTO graphs (id, name, type, category_id, range_seconds, upper_limit, lower_limit,
		 aggregation_mode, week_start_day, aggregation_days, start_date, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, string(g.Type), g.Category, int64(g.Range/time.Second),
		g.Config.UpperLimit, g.Config.LowerLimit, string(g.Config.AggregationMode),
		int(g.Config.WeekStartDay), g.Config.AggregationDays, nullMillis(g.Config.StartDate), g.Order,
	)
	if err != nil {
		return fmt.Errorf("create graph: %w", err)
	}
	return nil
}

const graphColumns = `id, name, type, category_id, range_seconds, upper_limit, lower_limit,
	aggregation_mode, week_start_day, aggregation_days, start_date, sort_order`

func (s *Store) scanGraph(row scanner) (model.Graph, error) {
	var g model.Graph
	var typ, mode string
	var rangeSeconds int64
	var weekStart int
	var start sql.NullInt64
	err := row.Scan(&g.ID, &g.Name, &typ, &g.Category, &rangeSeconds, &g.Config.UpperLimit, &g.Config.LowerLimit,
		&mode, &weekStart, &g.Config.AggregationDays, &start, &g.Order)
	if err != nil {
		return g, err
	}
	g.Type = model.GraphType(typ)
	g.Range = time.Duration(rangeSeconds) * time.Second
	g.Config.AggregationMode = model.AggregationMode(mode)
	g.Config.WeekStartDay = time.Weekday(weekStart)
	if start.Valid {
		g.Config.StartDate = s.fromMillis(start.Int64)
	}
	return g, nil
}

func (s *Store) GetGraph(id string) (*model.Graph, error) {
	g, err := s.scanGraph(s.db.QueryRow(`SELECT `+graphColumns+` FROM graphs WHERE id = ?`, id))
	if err != nil {
		return nil, notFound("graph", id, err)
	}
	return &g, nil
}

// ListGraphs returns graphs in display order.
func (s *Store) ListGraphs() ([]model.Graph, error) {
	rows, err := s.db.Query(`SELECT ` + graphColumns + ` FROM graphs ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	defer rows.Close()

	var graphs []model.Graph
	for rows.Next() {
		g, err := s.scanGraph(rows)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, rows.Err()
}

func (s *Store) UpdateGraph(g *model.Graph) error {
	res, err := s.db.Exec(
		`UPDATE graphs SET name = ?, type = ?, category_id = ?, range_seconds = ?, upper_limit = ?,
		 lower_limit = ?, aggregation_mode = ?, week_start_day = ?, aggregation_days = ?, start_date = ?,
		 sort_order = ? WHERE id = ?`,
		g.Name, string(g.Type), g.Category, int64(g.Range/time.Second), g.Config.UpperLimit, g.Config.LowerLimit,
		string(g.Config.AggregationMode), int(g.Config.WeekStartDay), g.Config.AggregationDays,
		nullMillis(g.Config.StartDate), g.Order, g.ID,
	)
	if err != nil {
		return fmt.Errorf("update graph: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("graph %s: %w", g.ID, ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteGraph(id string) error {
	res, err := s.db.Exec(`DELETE FROM graphs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete graph: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("graph %s: %w", id, ErrNotFound)
	}
	return nil
}

func nullMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

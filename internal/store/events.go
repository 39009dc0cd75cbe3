package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/logbook/internal/measure"
	"github.com/sadopc/logbook/internal/model"
)

// LogEvent records an entry for cat at the given time. Measured input such as
// "2,5 l" is validated and stored as an integer in the category's base unit;
// todo entries carry no data.
func (s *Store) LogEvent(cat model.Category, input string, at time.Time) (*model.Event, error) {
	data := strings.TrimSpace(input)
	switch {
	case cat.Type == model.TypeTodo:
		data = ""
	case cat.Type.RequiresMeasure():
		kind, ok := cat.Measure()
		if !ok {
			return nil, fmt.Errorf("category %s has no measure", cat.ID)
		}
		normalized, err := measure.Normalize(data, kind)
		if err != nil {
			return nil, fmt.Errorf("log event: %w", err)
		}
		data = normalized
	}

	e := &model.Event{Category: cat.ID, Timestamp: at, Data: data}
	if err := s.CreateEvent(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Store) CreateEvent(e *model.Event) error {
	if e.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		e.ID = id
	}
	_, err := s.db.Exec(
		`INSERT INTO events (id, category_id, ts, data) VALUES (?, ?, ?, ?)`,
		e.ID, e.Category, e.Timestamp.UnixMilli(), e.Data,
	)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	e.Timestamp = s.fromMillis(e.Timestamp.UnixMilli())
	return nil
}

func (s *Store) GetEvent(id string) (*model.Event, error) {
	e := &model.Event{}
	var ts int64
	err := s.db.QueryRow(
		`SELECT id, category_id, ts, data FROM events WHERE id = ?`, id,
	).Scan(&e.ID, &e.Category, &ts, &e.Data)
	if err != nil {
		return nil, notFound("event", id, err)
	}
	e.Timestamp = s.fromMillis(ts)
	return e, nil
}

func (s *Store) UpdateEvent(e *model.Event) error {
	res, err := s.db.Exec(
		`UPDATE events SET category_id = ?, ts = ?, data = ? WHERE id = ?`,
		e.Category, e.Timestamp.UnixMilli(), e.Data, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("event %s: %w", e.ID, ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteEvent(id string) error {
	res, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return nil
}

// EventsInRange returns the events of the given categories in [from, to),
// oldest first.
func (s *Store) EventsInRange(categoryIDs []string, from, to time.Time) ([]model.Event, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(categoryIDs)+2)
	for _, id := range categoryIDs {
		args = append(args, id)
	}
	args = append(args, from.UnixMilli(), to.UnixMilli())

	rows, err := s.db.Query(
		`SELECT id, category_id, ts, data FROM events
		 WHERE category_id IN (`+placeholders(len(categoryIDs))+`) AND ts >= ? AND ts < ?
		 ORDER BY ts, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("events in range: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var ts int64
		if err := rows.Scan(&e.ID, &e.Category, &ts, &e.Data); err != nil {
			return nil, err
		}
		e.Timestamp = s.fromMillis(ts)
		events = append(events, e)
	}
	return events, rows.Err()
}

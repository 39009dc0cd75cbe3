package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/logbook/internal/aggregate"
)

type jsonSeries struct {
	ExportedAt string      `json:"exported_at"`
	Name       string      `json:"name,omitempty"`
	Unit       string      `json:"unit,omitempty"`
	Count      int         `json:"count"`
	Points     []jsonPoint `json:"points"`
}

type jsonPoint struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	From  string  `json:"from"`
	To    string  `json:"to"`
	Total float64 `json:"total"`
}

type jsonTable struct {
	ExportedAt string    `json:"exported_at"`
	Name       string    `json:"name,omitempty"`
	Kind       string    `json:"kind"`
	Rows       []jsonRow `json:"rows"`
}

type jsonRow struct {
	Label    string      `json:"label"`
	Key      string      `json:"key"`
	Value    string      `json:"value"`
	Sum      float64     `json:"sum"`
	Entries  []jsonEntry `json:"entries,omitempty"`
	Children []jsonChild `json:"children,omitempty"`
}

type jsonEntry struct {
	Time  string  `json:"time"`
	Value string  `json:"value"`
	Raw   float64 `json:"raw"`
}

type jsonChild struct {
	Name  string  `json:"name"`
	Value string  `json:"value"`
	Raw   float64 `json:"raw"`
}

func SeriesToJSON(name string, s aggregate.Series, path string) error {
	export := jsonSeries{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Name:       name,
		Unit:       s.Unit.Symbol,
		Count:      len(s.Points),
		Points:     []jsonPoint{},
	}
	for _, p := range s.Points {
		export.Points = append(export.Points, jsonPoint{
			Key:   p.Period.Key,
			Label: p.Period.Label,
			From:  p.Period.From.Format(time.RFC3339),
			To:    p.Period.To.Format(time.RFC3339),
			Total: p.Total,
		})
	}
	return writeJSON(export, path)
}

func TableToJSON(name string, t aggregate.Table, path string) error {
	export := jsonTable{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Name:       name,
		Kind:       string(t.Kind),
		Rows:       []jsonRow{},
	}
	for _, r := range t.Rows {
		row := jsonRow{Label: r.Label, Key: r.Key, Value: t.Display(r.Sum), Sum: r.Sum}
		for _, e := range r.Entries {
			row.Entries = append(row.Entries, jsonEntry{Time: e.Time, Value: e.Display, Raw: e.Raw})
		}
		for _, c := range r.Children {
			row.Children = append(row.Children, jsonChild{Name: c.Name, Value: t.Display(c.Value), Raw: c.Value})
		}
		export.Rows = append(export.Rows, row)
	}
	return writeJSON(export, path)
}

func writeJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/logbook/internal/aggregate"
)

// SeriesToCSV writes one line per period of s.
func SeriesToCSV(s aggregate.Series, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Period", "From", "To", "Total", "Unit"}); err != nil {
		return err
	}

	for _, p := range s.Points {
		row := []string{
			p.Period.Label,
			p.Period.From.Format(time.RFC3339),
			p.Period.To.Format(time.RFC3339),
			formatFloat(p.Total),
			s.Unit.Symbol,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// TableToCSV writes a shaped table. Tables with entries or children get one
// line per entry or child; children tables end each period with a sum line.
func TableToCSV(t aggregate.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for _, rec := range TableRecords(t) {
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// TableRecords flattens a table into a header line and value lines.
func TableRecords(t aggregate.Table) [][]string {
	var out [][]string
	switch t.Kind {
	case aggregate.SimpleValueMultiple:
		out = append(out, []string{"Period", "Time", "Value"})
		for _, r := range t.Rows {
			for _, e := range r.Entries {
				out = append(out, []string{r.Label, e.Time, e.Display})
			}
		}
	case aggregate.WithChildren:
		out = append(out, []string{"Period", "Category", "Value"})
		for _, r := range t.Rows {
			for _, c := range r.Children {
				out = append(out, []string{r.Label, c.Name, t.Display(c.Value)})
			}
			if len(r.Children) > 0 {
				out = append(out, []string{r.Label, "Sum", t.Display(r.Sum)})
			}
		}
	default:
		out = append(out, []string{"Period", "Value"})
		for _, r := range t.Rows {
			out = append(out, []string{r.Label, t.Display(r.Sum)})
		}
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package export

import (
	"fmt"
	"strings"

	"github.com/sadopc/logbook/internal/aggregate"
)

// Report writes a graph report as "csv" or "json". Table graphs export their
// table, the others their period series.
func Report(r *aggregate.Report, format, path string) error {
	switch strings.ToLower(format) {
	case "csv":
		if r.Table != nil {
			return TableToCSV(*r.Table, path)
		}
		return SeriesToCSV(r.Series, path)
	case "json":
		if r.Table != nil {
			return TableToJSON(r.Graph.Name, *r.Table, path)
		}
		return SeriesToJSON(r.Graph.Name, r.Series, path)
	}
	return fmt.Errorf("unknown export format %q (csv or json)", format)
}

// FileName is the default file name for a report export.
func FileName(r *aggregate.Report, format string) string {
	name := strings.ReplaceAll(strings.ToLower(r.Graph.Name), " ", "-")
	return fmt.Sprintf("logbook-%s-%s.%s", name, r.To.Format("2006-01-02"), strings.ToLower(format))
}

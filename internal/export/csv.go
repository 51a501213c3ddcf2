// Package export serializes the defect collection to CSV for download by
// managers. Quoting follows RFC 4180: fields containing a separator, quote
// or newline are wrapped in quotes with inner quotes doubled.
package export

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/constructhq/defect-tracker/internal/models"
)

// Header is the fixed column order of the export.
var Header = []string{
	"id", "projectId", "title", "description", "priority",
	"assigneeId", "reporterId", "status", "dueDate", "createdAt", "updatedAt",
}

// WriteCSV writes the full collection, one row per defect. Absent optional
// values serialize to empty strings.
func WriteCSV(w io.Writer, defects []models.Defect) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, d := range defects {
		record := []string{
			d.ID,
			d.ProjectID,
			d.Title,
			d.Description,
			string(d.Priority),
			stringOrEmpty(d.AssigneeID),
			d.ReporterID,
			string(d.Status),
			timeOrEmpty(d.DueDate),
			d.CreatedAt.Format(time.RFC3339),
			d.UpdatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/constructhq/defect-tracker/internal/models"
)

func TestWriteCSVHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, strings.Join(Header, ","), lines[0])
}

func TestWriteCSVQuoting(t *testing.T) {
	created := time.Date(2026, 5, 10, 8, 30, 0, 0, time.UTC)
	defect := models.Defect{
		ID:          "d1",
		ProjectID:   "p1",
		Title:       `Crack, "big"`,
		Description: "spans two\nlines",
		Priority:    models.DefectPriorityHigh,
		ReporterID:  "u1",
		Status:      models.DefectStatusNew,
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []models.Defect{defect}))

	assert.Contains(t, buf.String(), `"Crack, ""big"""`)
	assert.Contains(t, buf.String(), "\"spans two\nlines\"")
}

func TestWriteCSVRoundTrip(t *testing.T) {
	assignee := "u2"
	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 5, 10, 8, 30, 0, 0, time.UTC)

	defects := []models.Defect{
		{
			ID:          "d1",
			ProjectID:   "p1",
			Title:       "Water ingress, north wall",
			Description: "Observed after rain",
			Priority:    models.DefectPriorityCritical,
			AssigneeID:  &assignee,
			ReporterID:  "u1",
			Status:      models.DefectStatusInProgress,
			DueDate:     &due,
			CreatedAt:   created,
			UpdatedAt:   created.Add(48 * time.Hour),
		},
		{
			ID:         "d2",
			ProjectID:  "p1",
			Title:      "Unassigned defect",
			Priority:   models.DefectPriorityLow,
			ReporterID: "u1",
			Status:     models.DefectStatusNew,
			CreatedAt:  created,
			UpdatedAt:  created,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, defects))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Header, records[0])

	first := records[1]
	assert.Equal(t, "d1", first[0])
	assert.Equal(t, "Water ingress, north wall", first[2])
	assert.Equal(t, "u2", first[5])
	assert.Equal(t, "in_progress", first[7])
	assert.Equal(t, "2026-06-01T00:00:00Z", first[8])
	assert.Equal(t, "2026-05-10T08:30:00Z", first[9])

	second := records[2]
	assert.Equal(t, "", second[5], "nil assignee exports as empty")
	assert.Equal(t, "", second[8], "nil due date exports as empty")
}

// Package stats derives aggregate defect counts. Compute is a pure function
// of the current collection; nothing is cached between requests.
package stats

import (
	"sort"

	"github.com/constructhq/defect-tracker/internal/models"
)

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type Stats struct {
	ByStatus       map[models.DefectStatus]int   `json:"byStatus"`
	ByPriority     map[models.DefectPriority]int `json:"byPriority"`
	MonthlyCreated []MonthCount                  `json:"monthlyCreated"`
}

// Compute counts defects by status, by priority and by creation month.
// ByStatus and ByPriority are pre-seeded with every enum value so absent
// categories still report zero. MonthlyCreated is sorted ascending by month.
func Compute(defects []models.Defect) Stats {
	byStatus := make(map[models.DefectStatus]int, len(models.DefectStatuses))
	for _, status := range models.DefectStatuses {
		byStatus[status] = 0
	}
	byPriority := make(map[models.DefectPriority]int, len(models.DefectPriorities))
	for _, priority := range models.DefectPriorities {
		byPriority[priority] = 0
	}

	byMonth := map[string]int{}
	for _, defect := range defects {
		byStatus[defect.Status]++
		byPriority[defect.Priority]++
		byMonth[defect.CreatedAt.Format("2006-01")]++
	}

	monthly := make([]MonthCount, 0, len(byMonth))
	for month, count := range byMonth {
		monthly = append(monthly, MonthCount{Month: month, Count: count})
	}
	sort.Slice(monthly, func(i, j int) bool { return monthly[i].Month < monthly[j].Month })

	return Stats{ByStatus: byStatus, ByPriority: byPriority, MonthlyCreated: monthly}
}

package assignment

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
)

// Column is a searchable column of the student assignment table.
type Column string

const (
	ColumnTitle       Column = "title"
	ColumnDescription Column = "description"
	ColumnStatus      Column = "status"
	ColumnDueDate     Column = "dueDate"
	ColumnYourScore   Column = "yourScore"
	ColumnTotalScore  Column = "totalScore"
)

var (
	Columns = []Column{ColumnTitle, ColumnDescription, ColumnStatus, ColumnDueDate, ColumnYourScore, ColumnTotalScore}

	ErrUnknownColumn = errors.New("unknown column")
)

func ParseColumn(s string) (Column, error) {
	if s == "" {
		return ColumnTitle, nil
	}
	for _, col := range Columns {
		if strings.EqualFold(s, string(col)) {
			return col, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownColumn, "%q", s)
}

// Stats summarizes a student's assignments.
type Stats struct {
	Total             int `json:"total"`
	Completed         int `json:"completed"`
	AverageScore      int `json:"averageScore"`
	CompletionPercent int `json:"completionPercent"`
}

// ComputeStats derives a student's stats. An empty list scores 100 on both percentages;
// a non-empty list with nothing graded averages 0.
func ComputeStats(items []StudentAssignment) Stats {
	stats := Stats{Total: len(items)}
	if stats.Total == 0 {
		stats.AverageScore = 100
		stats.CompletionPercent = 100
		return stats
	}

	var sum float64
	var graded int
	for _, item := range items {
		if item.Status == StatusCompleted {
			stats.Completed++
		}
		if !item.Graded() || item.TotalScore == 0 {
			continue
		}
		sum += *item.YourScore * 100 / item.TotalScore
		graded++
	}
	if graded > 0 {
		stats.AverageScore = int(core.RoundHalfUp(sum / float64(graded)))
	}
	stats.CompletionPercent = int(core.RoundHalfUp(float64(stats.Completed) / float64(stats.Total) * 100))
	return stats
}

func FilterByStatus(items []StudentAssignment, status Status) []StudentAssignment {
	res := make([]StudentAssignment, 0, len(items))
	for _, item := range items {
		if item.Status == status {
			res = append(res, item)
		}
	}
	return res
}

// Search keeps the items whose `col` contains `term`, ignoring case.
func Search(items []StudentAssignment, col Column, term string) []StudentAssignment {
	if term == "" {
		return items
	}
	res := make([]StudentAssignment, 0, len(items))
	for _, item := range items {
		if core.ContainsFold(item.value(col), term) {
			res = append(res, item)
		}
	}
	return res
}

func (a StudentAssignment) value(col Column) string {
	switch col {
	case ColumnTitle:
		return a.Title
	case ColumnDescription:
		return a.Description
	case ColumnStatus:
		return string(a.Status)
	case ColumnDueDate:
		return a.DueDate.ISO()
	case ColumnYourScore:
		if a.YourScore == nil {
			return ""
		}
		return core.FormatScore(*a.YourScore)
	case ColumnTotalScore:
		return core.FormatScore(a.TotalScore)
	default:
		return ""
	}
}

// Prepend returns a new list with `a` first.
func Prepend(list []Assignment, a Assignment) []Assignment {
	res := make([]Assignment, 0, len(list)+1)
	res = append(res, a)
	return append(res, list...)
}

// Replace returns a copy of `list` where the assignment with a.ID is swapped for `a`.
func Replace(list []Assignment, a Assignment) ([]Assignment, bool) {
	res := make([]Assignment, len(list))
	var found bool
	for i, item := range list {
		if item.ID == a.ID {
			item = a
			found = true
		}
		res[i] = item
	}
	return res, found
}

package leaderboard

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/submission"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DateLayout      = "2006-01-02"
)

// Column is a filterable and sortable leaderboard column.
type Column string

const (
	ColumnRank  Column = "rank"
	ColumnName  Column = "name"
	ColumnEmail Column = "email"
	ColumnScore Column = "score"
)

var (
	Columns = []Column{ColumnRank, ColumnName, ColumnEmail, ColumnScore}

	ErrUnknownColumn = errors.New("unknown leaderboard column")
)

func ParseColumn(s string, def Column) (Column, error) {
	s = core.CleanString(s, true /* lower */)
	if s == "" {
		return def, nil
	}
	for _, col := range Columns {
		if s == string(col) {
			return col, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownColumn, "%q", s)
}

// Row is a leaderboard line, whatever its source.
type Row struct {
	ID    string  `json:"id"`
	Rank  int     `json:"rank"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Score float64 `json:"score"`
}

func (r Row) value(col Column) string {
	switch col {
	case ColumnRank:
		return strconv.Itoa(r.Rank)
	case ColumnName:
		return r.Name
	case ColumnEmail:
		return r.Email
	case ColumnScore:
		return core.FormatScore(r.Score)
	default:
		return ""
	}
}

// AllTimeEntry is a student's standing across every assignment.
type AllTimeEntry struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	TotalScore  float64 `json:"totalScore"`
	Rank        int     `json:"rank"`
	Submissions int     `json:"submissions"`
}

func (e *AllTimeEntry) UnmarshalJSON(data []byte) error {
	type alias AllTimeEntry
	var raw struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = AllTimeEntry(raw.alias)
	if e.ID == "" {
		e.ID = raw.MongoID
	}
	return nil
}

// FromSubmissions builds the rows of a date-specific leaderboard.
func FromSubmissions(subs []submission.Submission) []Row {
	rows := make([]Row, 0, len(subs))
	for _, sub := range subs {
		row := Row{ID: sub.ID, Rank: sub.Rank, Name: sub.StudentName(), Email: sub.StudentEmail()}
		if sub.Score != nil {
			row.Score = *sub.Score
		}
		rows = append(rows, row)
	}
	return rows
}

func FromAllTime(entries []AllTimeEntry) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{ID: e.ID, Rank: e.Rank, Name: e.Name, Email: e.Email, Score: e.TotalScore})
	}
	return rows
}

// FormatDate formats `t` as the calendar date it falls on in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Query selects a page of leaderboard rows.
type Query struct {
	FilterBy Column `query:"filterBy"`
	Term     string `query:"q"`
	SortBy   Column `query:"sortBy"`
	Desc     bool   `query:"desc"`
	Page     int    `query:"page"`
	PageSize int    `query:"pageSize"`
}

type Page struct {
	Rows      []Row `json:"rows"`
	Page      int   `json:"page"`
	PageCount int   `json:"pageCount"`
	Total     int   `json:"total"`
}

// Apply filters, sorts then paginates `rows`. It does not modify `rows`.
// Pages are 1-based; an out of range page yields no rows. Page sizes are capped at MaxPageSize.
func Apply(rows []Row, q Query) Page {
	if q.FilterBy == "" {
		q.FilterBy = ColumnEmail
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	filtered := make([]Row, 0, len(rows))
	for _, row := range rows {
		if q.Term == "" || core.ContainsFold(row.value(q.FilterBy), q.Term) {
			filtered = append(filtered, row)
		}
	}

	if q.SortBy != "" {
		sort.SliceStable(filtered, func(i, j int) bool {
			if q.Desc {
				return less(filtered[j], filtered[i], q.SortBy)
			}
			return less(filtered[i], filtered[j], q.SortBy)
		})
	}

	page := Page{Page: q.Page, Total: len(filtered), Rows: []Row{}}
	page.PageCount = (page.Total + q.PageSize - 1) / q.PageSize
	if q.Page <= page.PageCount {
		start := (q.Page - 1) * q.PageSize
		end := start + q.PageSize
		if end > page.Total {
			end = page.Total
		}
		page.Rows = filtered[start:end]
	}
	return page
}

func less(a, b Row, col Column) bool {
	switch col {
	case ColumnRank:
		return a.Rank < b.Rank
	case ColumnScore:
		return a.Score < b.Score
	case ColumnName:
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	case ColumnEmail:
		return strings.ToLower(a.Email) < strings.ToLower(b.Email)
	default:
		return false
	}
}

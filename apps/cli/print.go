package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/dashboard"
	"github.com/trezcool/classroom/core/leaderboard"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/core/teacher"
)

const dateFmt = "2006-01-02 15:04"

func newTable(out io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

func date(ts core.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format(dateFmt)
}

func printView(out io.Writer, view interface{}) error {
	switch v := view.(type) {
	case dashboard.StudentView:
		return printStudent(out, v)
	case dashboard.TeacherView:
		return printTeacher(out, v)
	case dashboard.AdminView:
		return printAdmin(out, v)
	case dashboard.MessageView:
		return printMessage(out, v)
	default:
		return errors.Errorf("unexpected view %T", view)
	}
}

func printStudent(out io.Writer, v dashboard.StudentView) error {
	fmt.Fprintf(out, "Welcome back, %s\n", v.User.FirstName())
	fmt.Fprintf(out, "Completed %d/%d (%d%%) - average score %d%%\n\n",
		v.Stats.Completed, v.Stats.Total, v.Stats.CompletionPercent, v.Stats.AverageScore)

	tw := newTable(out, "ID", "TITLE", "STATUS", "DUE", "SCORE")
	for _, a := range v.Assignments {
		score := "-"
		if a.YourScore != nil {
			score = core.FormatScore(*a.YourScore)
		}
		row(tw, a.ID, a.Title, string(a.Status), date(a.DueDate), score+"/"+core.FormatScore(a.TotalScore))
	}
	return tw.Flush()
}

func printTeacher(out io.Writer, v dashboard.TeacherView) error {
	fmt.Fprintf(out, "Welcome back, %s\n\nAssignments\n", v.User.FirstName())
	tw := newTable(out, "ID", "TITLE", "DUE", "TOTAL")
	for _, a := range v.Assignments {
		row(tw, a.ID, a.Title, date(a.DueDate), core.FormatScore(a.TotalScore))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nStudents")
	tw = newTable(out, "ID", "NAME", "EMAIL", "ATTEMPTED", "MISSED", "AVERAGE")
	for _, rep := range v.Students {
		row(tw, rep.Student.ID, rep.Student.Name, rep.Student.Email,
			fmt.Sprint(rep.Attempted), fmt.Sprint(len(rep.Missed)), fmt.Sprintf("%d%%", rep.AverageScore))
	}
	return tw.Flush()
}

func printReport(out io.Writer, rep submission.Report) error {
	fmt.Fprintf(out, "%s <%s>\n", rep.Student.Name, rep.Student.Email)
	fmt.Fprintf(out, "Attempted %d, missed %d, total %s, average %d%%\n\n",
		rep.Attempted, len(rep.Missed), core.FormatScore(rep.CurrentTotal), rep.AverageScore)

	tw := newTable(out, "ASSIGNMENT", "SUBMITTED", "SCORE", "LINK")
	for _, line := range rep.Submissions {
		score := "-"
		if line.Submission.Score != nil {
			score = core.FormatScore(*line.Submission.Score)
		}
		row(tw, line.AssignmentTitle, date(line.Submission.SubmissionDate), score, line.Submission.GitHubLink)
	}
	for _, a := range rep.Missed {
		row(tw, a.Title, "missed", "0", "-")
	}
	return tw.Flush()
}

func printAdmin(out io.Writer, v dashboard.AdminView) error {
	counts := make([]string, 0, len(teacher.AllStatuses))
	for _, st := range teacher.AllStatuses {
		counts = append(counts, fmt.Sprintf("%s: %d", st, v.Counts[st]))
	}
	fmt.Fprintf(out, "Teacher applications (%s)\n\n", strings.Join(counts, ", "))

	tw := newTable(out, "ID", "NAME", "EMAIL", "STATUS", "APPLIED")
	for _, app := range v.Teachers {
		row(tw, app.ID, app.Name, app.Email, string(app.Status), date(app.DateApplied))
	}
	return tw.Flush()
}

func printMessage(out io.Writer, v dashboard.MessageView) error {
	fmt.Fprintf(out, "%s\n\n%s\n", v.Title, v.Message)
	if v.Warning != "" {
		fmt.Fprintf(out, "\nWarning: %s\n", v.Warning)
	}
	for _, action := range v.Actions {
		fmt.Fprintf(out, "  classroom %s\n", action)
	}
	return nil
}

func printLeaderboard(out io.Writer, page leaderboard.Page) error {
	tw := newTable(out, "RANK", "NAME", "EMAIL", "SCORE")
	for _, r := range page.Rows {
		row(tw, fmt.Sprint(r.Rank), r.Name, r.Email, core.FormatScore(r.Score))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "page %d of %d (%d rows)\n", page.Page, page.PageCount, page.Total)
	return nil
}

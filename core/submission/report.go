package submission

import (
	"time"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/assignment"
)

// ReportLine is one of a student's submissions, with the title of the assignment it answers.
type ReportLine struct {
	Submission      Submission `json:"submission"`
	AssignmentTitle string     `json:"assignmentTitle"`
}

// Report summarizes how a student is doing across every assignment.
type Report struct {
	Student      Student                 `json:"student"`
	Attempted    int                     `json:"attempted"`
	Missed       []assignment.Assignment `json:"missed"`
	CurrentTotal float64                 `json:"currentTotal"`
	AverageScore int                     `json:"averageScore"`
	Submissions  []ReportLine            `json:"submissions"`
}

// BuildReport computes the report of `stdt`.
// An assignment is missed when it was never attempted and was due before `now`.
// The average is the share of marks earned over the marks of attempted and missed
// assignments; it is 100 when there are none.
func BuildReport(stdt Student, assignments []assignment.Assignment, subs []Submission, now time.Time) Report {
	rep := Report{Student: stdt, Missed: []assignment.Assignment{}, Submissions: []ReportLine{}}

	titles := make(map[string]string, len(assignments))
	for _, a := range assignments {
		titles[a.ID] = a.Title
	}

	attempted := make(map[string]bool)
	for _, sub := range subs {
		if sub.StudentID != stdt.ID {
			continue
		}
		rep.Attempted++
		attempted[sub.AssignmentID] = true
		if sub.Score != nil {
			rep.CurrentTotal += *sub.Score
		}
		rep.Submissions = append(rep.Submissions, ReportLine{Submission: sub, AssignmentTitle: titles[sub.AssignmentID]})
	}

	var attemptedMarks, missedMarks float64
	for _, a := range assignments {
		switch {
		case attempted[a.ID]:
			attemptedMarks += a.TotalScore
		case a.PastDue(now):
			missedMarks += a.TotalScore
			rep.Missed = append(rep.Missed, a)
		}
	}

	rep.AverageScore = 100
	if denom := attemptedMarks + missedMarks; denom > 0 {
		rep.AverageScore = int(core.RoundHalfUp(rep.CurrentTotal / denom * 100))
	}
	return rep
}

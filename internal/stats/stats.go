package stats

import (
	"errors"

	"github.com/nao1215/empreport/internal/model"
)

// ErrNoRecords is returned by Overall when there are no records to
// analyze, such as a CSV file that contains only a header row.
// Callers should treat this as "nothing to report" rather than a
// malformed input.
var ErrNoRecords = errors.New("no records to analyze")

// Overall computes the overall summary across all records: the average
// score, and the highest and lowest scores together with the employees
// who earned them.
//
// Design decision: Ties on the highest or lowest score keep the first
// record in input order. The comparison uses strict inequality, so a
// later record with an equal score never displaces an earlier one. This
// keeps the report stable for the same input file.
func Overall(records []model.EmployeeRecord) (*model.OverallSummary, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	summary := &model.OverallSummary{
		TotalEmployees:  len(records),
		HighestScore:    records[0].Score,
		HighestEmployee: records[0].Name,
		LowestScore:     records[0].Score,
		LowestEmployee:  records[0].Name,
	}

	var sum float64
	for _, r := range records {
		sum += r.Score

		if r.Score > summary.HighestScore {
			summary.HighestScore = r.Score
			summary.HighestEmployee = r.Name
		}
		if r.Score < summary.LowestScore {
			summary.LowestScore = r.Score
			summary.LowestEmployee = r.Name
		}
	}
	summary.Average = sum / float64(len(records))

	return summary, nil
}

// ByDepartment computes the average score and employee count for each
// department. Departments appear in the order they first occur in the
// input. Department names are compared exactly as loaded; "Sales" and
// "sales" are different departments.
//
// An empty input yields an empty slice, not an error: a report with no
// department section is still a valid report, and Overall already guards
// the no-data case.
func ByDepartment(records []model.EmployeeRecord) []model.DepartmentSummary {
	index := make(map[string]int)
	summaries := make([]model.DepartmentSummary, 0)
	totals := make([]float64, 0)

	for _, r := range records {
		i, ok := index[r.Department]
		if !ok {
			i = len(summaries)
			index[r.Department] = i
			summaries = append(summaries, model.DepartmentSummary{Department: r.Department})
			totals = append(totals, 0)
		}

		totals[i] += r.Score
		summaries[i].Count++
	}

	for i := range summaries {
		summaries[i].Average = totals[i] / float64(summaries[i].Count)
	}

	return summaries
}

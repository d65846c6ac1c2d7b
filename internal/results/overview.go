package results

import "github.com/garnizeh/interviewdesk/internal/models"

type CriterionAverage struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Average float64 `json:"average"`
}

type Overview struct {
	TotalCandidates  int                     `json:"total_candidates"`
	AverageOverall   float64                 `json:"average_overall"`
	TopPerformer     *models.CandidateResult `json:"top_performer,omitempty"`
	CriteriaAverages []CriterionAverage      `json:"criteria_averages"`
	Strongest        *CriterionAverage       `json:"strongest,omitempty"`
	Weakest          *CriterionAverage       `json:"weakest,omitempty"`
}

// Summarize computes the overview. A missing overall score counts as 0. A
// criterion's average counts non-numeric or missing scores as 0. Ties pick
// the first candidate or criterion in list order.
func Summarize(data models.PerformanceData) Overview {
	ov := Overview{
		TotalCandidates:  len(data.Candidates),
		CriteriaAverages: make([]CriterionAverage, 0, len(data.CriteriaColumns)),
	}
	if len(data.Candidates) == 0 {
		for _, col := range data.CriteriaColumns {
			ov.CriteriaAverages = append(ov.CriteriaAverages, CriterionAverage{ID: col.ID, Name: col.Name})
		}
		return ov
	}

	var sum float64
	top := 0
	for i, c := range data.Candidates {
		sum += c.OverallOrZero()
		if c.OverallOrZero() > data.Candidates[top].OverallOrZero() {
			top = i
		}
	}
	ov.AverageOverall = sum / float64(len(data.Candidates))
	best := data.Candidates[top].Clone()
	ov.TopPerformer = &best

	for _, col := range data.CriteriaColumns {
		var total float64
		for _, c := range data.Candidates {
			if s, ok := c.ScoreFor(col.ID); ok {
				total += s.Value.NumberOrZero()
			}
		}
		ov.CriteriaAverages = append(ov.CriteriaAverages, CriterionAverage{
			ID:      col.ID,
			Name:    col.Name,
			Average: total / float64(len(data.Candidates)),
		})
	}

	if len(ov.CriteriaAverages) > 0 {
		hi, lo := 0, 0
		for i, a := range ov.CriteriaAverages {
			if a.Average > ov.CriteriaAverages[hi].Average {
				hi = i
			}
			if a.Average < ov.CriteriaAverages[lo].Average {
				lo = i
			}
		}
		strongest, weakest := ov.CriteriaAverages[hi], ov.CriteriaAverages[lo]
		ov.Strongest, ov.Weakest = &strongest, &weakest
	}
	return ov
}

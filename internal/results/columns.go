// Package results computes the results screen of a published interview:
// summary statistics, a searchable sortable table, per-candidate edits and export.
package results

import "github.com/garnizeh/interviewdesk/internal/models"

// Columns lists the general criteria followed by each task's criteria in task order.
func Columns(iv *models.Interview) []models.CriteriaColumn {
	if iv == nil {
		return []models.CriteriaColumn{}
	}
	out := make([]models.CriteriaColumn, 0, len(iv.GeneralCriteria))
	for _, c := range iv.GeneralCriteria {
		out = append(out, models.CriteriaColumn{ID: c.ID, Name: c.Name, Type: c.Type, Scope: models.ScopeGeneral})
	}
	for _, t := range iv.Tasks {
		for _, c := range t.Criteria {
			out = append(out, models.CriteriaColumn{ID: c.ID, Name: c.Name, Type: c.Type, Scope: models.ScopeTask, TaskName: t.Title})
		}
	}
	return out
}

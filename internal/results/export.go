package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/garnizeh/interviewdesk/internal/models"
)

// WriteCSV writes rows as CSV, one column per criterion after the fixed columns.
func WriteCSV(w io.Writer, rows []models.CandidateResult, cols []models.CriteriaColumn) error {
	cw := csv.NewWriter(w)

	header := []string{"Name", "Email", "Completed At", "Overall Score"}
	for _, c := range cols {
		header = append(header, columnHeader(c))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range rows {
		rec := []string{r.Name, r.Email, formatMillis(r.CompletedAt), ""}
		if r.OverallScore != nil {
			rec[3] = strconv.FormatFloat(*r.OverallScore, 'f', 2, 64)
		}
		for _, c := range cols {
			s, _ := r.ScoreFor(c.ID)
			rec = append(rec, s.Value.String())
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func columnHeader(c models.CriteriaColumn) string {
	if c.TaskName != "" {
		return c.TaskName + ": " + c.Name
	}
	return c.Name
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

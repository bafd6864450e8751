package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"tadapt/internal/domain"
)

// resultsMeta contains the aggregate counts of a run.
type resultsMeta struct {
	RunID           string  `json:"run_id,omitempty"`
	TotalTests      int     `json:"total_tests"`
	PassedTests     int     `json:"passed_tests"`
	FailedTests     int     `json:"failed_tests"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp,omitempty"`
	Partial         bool    `json:"partial,omitempty"`
}

type resultsDetail struct {
	Name            string  `json:"name"`
	Suite           string  `json:"suite"`
	Test            string  `json:"test"`
	File            string  `json:"file,omitempty"`
	Line            int     `json:"line,omitempty"`
	Status          string  `json:"status"`
	Passed          bool    `json:"passed"`
	Detail          string  `json:"detail,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// resultsOutput is the complete JSON report
type resultsOutput struct {
	Meta    resultsMeta     `json:"meta"`
	Details []resultsDetail `json:"details"`
}

// JSONEncoder writes the report as indented JSON.
type JSONEncoder struct{}

// Encode writes report to w.
func (JSONEncoder) Encode(w io.Writer, report *domain.RunReport) error {
	output := resultsOutput{
		Meta: resultsMeta{
			RunID:           report.ID,
			TotalTests:      report.Total,
			PassedTests:     report.Passed,
			FailedTests:     report.Failed,
			Duration:        report.Duration.String(),
			DurationSeconds: report.Duration.Seconds(),
			Partial:         report.Partial,
		},
		Details: make([]resultsDetail, 0, len(report.Outcomes)),
	}
	if !report.Started.IsZero() {
		output.Meta.Timestamp = report.Started.UTC().Format(time.RFC3339)
	}
	for _, o := range report.Outcomes {
		output.Details = append(output.Details, resultsDetail{
			Name:            o.Name,
			Suite:           o.Suite,
			Test:            o.Test,
			File:            o.File,
			Line:            o.Line,
			Status:          string(o.Status),
			Passed:          o.Passed(),
			Detail:          o.Detail,
			DurationSeconds: o.Duration.Seconds(),
		})
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func decodeJSON(data []byte) (*domain.RunReport, error) {
	var output resultsOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	report := &domain.RunReport{
		ID:       output.Meta.RunID,
		Duration: fromSeconds(output.Meta.DurationSeconds),
		Partial:  output.Meta.Partial,
	}
	if output.Meta.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, output.Meta.Timestamp); err == nil {
			report.Started = t
		}
	}
	for _, d := range output.Details {
		status := domain.Status(d.Status)
		if status == "" {
			status = domain.StatusFailed
			if d.Passed {
				status = domain.StatusPassed
			}
		}
		report.Outcomes = append(report.Outcomes, domain.Outcome{
			Name:     d.Name,
			Suite:    d.Suite,
			Test:     d.Test,
			File:     d.File,
			Line:     d.Line,
			Status:   status,
			Detail:   d.Detail,
			Duration: fromSeconds(d.DurationSeconds),
		})
	}
	report.Finalize()
	return report, nil
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

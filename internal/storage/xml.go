package storage

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"tadapt/internal/domain"
)

// xmlResults mirrors the UnitTest++ XmlTestReporter document, with a few
// optional attributes of our own.
type xmlResults struct {
	XMLName     xml.Name  `xml:"unittest-results"`
	ID          string    `xml:"id,attr,omitempty"`
	Started     string    `xml:"started,attr,omitempty"`
	Tests       int       `xml:"tests,attr"`
	FailedTests int       `xml:"failedtests,attr"`
	Failures    int       `xml:"failures,attr"`
	Time        string    `xml:"time,attr"`
	Partial     bool      `xml:"partial,attr,omitempty"`
	TestCases   []xmlTest `xml:"test"`
}

type xmlTest struct {
	Suite   string      `xml:"suite,attr"`
	Name    string      `xml:"name,attr"`
	Time    string      `xml:"time,attr"`
	Status  string      `xml:"status,attr,omitempty"`
	File    string      `xml:"file,attr,omitempty"`
	Line    int         `xml:"line,attr,omitempty"`
	Failure *xmlFailure `xml:"failure,omitempty"`
}

type xmlFailure struct {
	Message string `xml:"message,attr"`
}

// XMLEncoder writes UnitTest++ compatible XML.
type XMLEncoder struct{}

// Encode writes report as an indented XML document.
func (XMLEncoder) Encode(w io.Writer, report *domain.RunReport) error {
	doc := xmlResults{
		ID:          report.ID,
		Tests:       report.Total,
		FailedTests: report.Failed,
		Failures:    report.Failed,
		Time:        seconds(report.Duration),
		Partial:     report.Partial,
	}
	if !report.Started.IsZero() {
		doc.Started = report.Started.UTC().Format(time.RFC3339)
	}
	for _, o := range report.Outcomes {
		tc := xmlTest{
			Suite:  o.Suite,
			Name:   o.Test,
			Time:   seconds(o.Duration),
			Status: string(o.Status),
			File:   o.File,
			Line:   o.Line,
		}
		if !o.Passed() {
			tc.Failure = &xmlFailure{Message: o.Detail}
		}
		doc.TestCases = append(doc.TestCases, tc)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func decodeXML(data []byte) (*domain.RunReport, error) {
	var doc xmlResults
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	report := &domain.RunReport{
		ID:       doc.ID,
		Duration: parseSeconds(doc.Time),
		Partial:  doc.Partial,
	}
	if doc.Started != "" {
		if t, err := time.Parse(time.RFC3339, doc.Started); err == nil {
			report.Started = t
		}
	}
	for _, tc := range doc.TestCases {
		o := domain.Outcome{
			Name:     tc.Suite + domain.Separator + tc.Name,
			Suite:    tc.Suite,
			Test:     tc.Name,
			File:     tc.File,
			Line:     tc.Line,
			Status:   domain.Status(tc.Status),
			Duration: parseSeconds(tc.Time),
		}
		if tc.Failure != nil {
			o.Detail = tc.Failure.Message
		}
		// Plain UnitTest++ reports carry no status attribute.
		if o.Status == "" {
			o.Status = domain.StatusPassed
			if tc.Failure != nil {
				o.Status = domain.StatusFailed
			}
		}
		report.Outcomes = append(report.Outcomes, o)
	}
	report.Finalize()
	return report, nil
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func parseSeconds(s string) time.Duration {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return time.Duration(math.Round(f * float64(time.Second)))
}

package discovery

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tadapt/internal/domain"
)

// WriteListing writes one "suite::test,file,line" line per record, in order.
// The shape is consumed by drivers and must not change.
func WriteListing(w io.Writer, records []domain.TestRecord) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := fmt.Fprintf(bw, "%s,%s,%d\n", rec.QualifiedName(), rec.File, rec.Line); err != nil {
			return fmt.Errorf("write listing: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	return nil
}

// ParseListing reads the discovery output of an adapter binary.
// Lines without a comma are treated as noise and skipped.
func ParseListing(r io.Reader) ([]domain.TestRecord, error) {
	var records []domain.TestRecord
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		rec, ok, err := ParseListingLine(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("listing line %d: %w", lineNo, err)
		}
		if ok {
			records = append(records, rec)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read listing: %w", err)
	}
	return records, nil
}

// ParseListingLine decodes a single discovery line. ok is false for lines
// that are not discovery records.
func ParseListingLine(line string) (rec domain.TestRecord, ok bool, err error) {
	line = strings.TrimRight(line, "\r")
	first := strings.Index(line, ",")
	if first < 0 {
		return domain.TestRecord{}, false, nil
	}
	last := strings.LastIndex(line, ",")

	rec.Suite, rec.Name = SplitQualifiedName(line[:first])
	if first == last {
		// name,file without a line number
		rec.File = strings.TrimSpace(line[first+1:])
		return rec, true, nil
	}

	// File names may contain commas; the line number is always the last field.
	rec.File = strings.TrimSpace(line[first+1 : last])
	lineField := strings.TrimSpace(line[last+1:])
	if lineField != "" {
		n, convErr := strconv.Atoi(lineField)
		if convErr != nil {
			return domain.TestRecord{}, false, fmt.Errorf("invalid line number %q", lineField)
		}
		rec.Line = n
	}
	return rec, true, nil
}

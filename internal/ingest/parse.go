package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/vhi-dashboard/internal/domain"
)

// ErrMalformedFile marks a source file whose structure cannot be read as the
// seven-column VHI schema. It aborts the whole ingestion call.
var ErrMalformedFile = errors.New("malformed source file")

// Schema is the fixed column layout applied to every source file regardless
// of its header text.
var Schema = []string{"year", "week", "SMN", "SMT", "VCI", "TCI", "VHI"}

const (
	colYear = iota
	colWeek
	colSMN
	colSMT
	colVCI
	colTCI
	colVHI
)

// preambleLines counts the metadata and header lines skipped before data.
const preambleLines = 2

// ParseResult is the normalized content of one source file.
type ParseResult struct {
	Rows     []domain.Observation
	RowsRead int
}

// Parse reads one source file body, tags every surviving row with region and
// its catalog code, and drops rows whose year or VHI is not numeric.
func Parse(r io.Reader, region string, catalog *domain.RegionCatalog) (ParseResult, error) {
	br := bufio.NewReader(r)
	if err := skipPreamble(br); err != nil {
		return ParseResult{}, err
	}

	var regionID *int
	if code, ok := catalog.Code(region); ok {
		regionID = &code
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	var res ParseResult
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ParseResult{}, fmt.Errorf("%w: %w", ErrMalformedFile, err)
		}
		line, _ := reader.FieldPos(0)
		line += preambleLines

		fields, err := fitSchema(record)
		if err != nil {
			return ParseResult{}, fmt.Errorf("%w: line %d: %w", ErrMalformedFile, line, err)
		}
		res.RowsRead++

		obs, keep, err := normalize(fields, region, regionID)
		if err != nil {
			return ParseResult{}, fmt.Errorf("%w: line %d: %w", ErrMalformedFile, line, err)
		}
		if keep {
			res.Rows = append(res.Rows, obs)
		}
	}
	return res, nil
}

// skipPreamble discards the metadata line and the header line. A file that
// ends before the header is complete is malformed; a header without data
// rows is a valid empty file.
func skipPreamble(br *bufio.Reader) error {
	for i := 0; i < preambleLines; i++ {
		line, err := br.ReadString('\n')
		if errors.Is(err, io.EOF) {
			switch {
			case i == preambleLines-1 && line != "":
				return nil
			case i == 0 && line == "":
				return fmt.Errorf("%w: empty file", ErrMalformedFile)
			default:
				return fmt.Errorf("%w: missing header line", ErrMalformedFile)
			}
		}
		if err != nil {
			return fmt.Errorf("read preamble: %w", err)
		}
	}
	return nil
}

// fitSchema maps a record onto the seven schema columns. Short rows are
// padded with empty cells; surplus cells are tolerated only when empty, which
// covers NOAA's trailing comma.
func fitSchema(record []string) ([]string, error) {
	fields := make([]string, len(Schema))
	copy(fields, record)
	for i := len(Schema); i < len(record); i++ {
		if strings.TrimSpace(record[i]) != "" {
			return nil, fmt.Errorf("expected %d fields, saw %d", len(Schema), len(record))
		}
	}
	return fields, nil
}

// normalize applies the drop rule (VHI, then year must be numeric) and casts
// year and week to integers. A kept row whose week is not a number cannot be
// represented and is reported as an error.
func normalize(fields []string, region string, regionID *int) (domain.Observation, bool, error) {
	vhi := domain.ParseValue(fields[colVHI])
	if !vhi.Numeric {
		return domain.Observation{}, false, nil
	}
	year := domain.ParseValue(fields[colYear])
	if !year.Numeric {
		return domain.Observation{}, false, nil
	}
	week := domain.ParseValue(fields[colWeek])
	if !week.Numeric {
		return domain.Observation{}, false, fmt.Errorf("week %q is not an integer", week.Text)
	}

	obs := domain.Observation{
		Year:   int(year.Number),
		Week:   int(week.Number),
		SMN:    domain.ParseValue(fields[colSMN]),
		SMT:    domain.ParseValue(fields[colSMT]),
		VCI:    domain.ParseValue(fields[colVCI]),
		TCI:    domain.ParseValue(fields[colTCI]),
		VHI:    vhi,
		Region: region,
	}
	if regionID != nil {
		id := *regionID
		obs.RegionID = &id
	}
	return obs, true, nil
}

// Package csvimport reads jump history exported from spreadsheets and other
// logbook apps.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/andy/jumplog/internal/domain"
)

// Column names and the header spellings accepted for them
const (
	colNumber    = "number"
	colDate      = "date"
	colDropZone  = "dropzone"
	colAircraft  = "aircraft"
	colJumpType  = "jumptype"
	colExit      = "exit"
	colDeploy    = "deploy"
	colFreefall  = "freefall"
	colCutaway   = "cutaway"
	colNotes     = "notes"
	colWork      = "work"
	colCustomer  = "customer"
	colServices  = "services"
	colGear      = "gear"
	colSignature = "signature"
)

var aliases = map[string]string{
	"number":              colNumber,
	"jump":                colNumber,
	"jump #":              colNumber,
	"jump number":         colNumber,
	"jump_number":         colNumber,
	"date":                colDate,
	"dropzone":            colDropZone,
	"drop zone":           colDropZone,
	"drop_zone":           colDropZone,
	"dz":                  colDropZone,
	"aircraft":            colAircraft,
	"plane":               colAircraft,
	"jump type":           colJumpType,
	"jump_type":           colJumpType,
	"type":                colJumpType,
	"exit altitude":       colExit,
	"exit_altitude":       colExit,
	"exit":                colExit,
	"deployment altitude": colDeploy,
	"deployment_altitude": colDeploy,
	"deploy":              colDeploy,
	"freefall":            colFreefall,
	"freefall time":       colFreefall,
	"freefall_seconds":    colFreefall,
	"cutaway":             colCutaway,
	"notes":               colNotes,
	"work":                colWork,
	"work jump":           colWork,
	"work_jump":           colWork,
	"customer":            colCustomer,
	"customer name":       colCustomer,
	"customer_name":       colCustomer,
	"services":            colServices,
	"invoice items":       colServices,
	"gear":                colGear,
	"signature":           colSignature,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
}

// ErrMissingColumn is returned when a required column is absent
var ErrMissingColumn = errors.New("missing required column")

// RowError reports a problem on one CSV line
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Read parses jumps from r. The first non-empty record is the header;
// date and dropzone columns are required. Lists (services, gear) are
// separated by ';' or '|'. Billing state is left for the importer.
func Read(r io.Reader) ([]domain.Jump, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, _, err := nextRecord(reader)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Jump{}, nil
		}
		return nil, err
	}

	index := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if col, ok := aliases[key]; ok {
			if _, dup := index[col]; !dup {
				index[col] = i
			}
		}
	}
	for _, col := range []string{colDate, colDropZone} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	jumps := make([]domain.Jump, 0)
	for {
		record, line, err := nextRecord(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		j, err := parseRow(record, index)
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		jumps = append(jumps, j)
	}
	return jumps, nil
}

func parseRow(record []string, index map[string]int) (domain.Jump, error) {
	field := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var j domain.Jump
	var err error

	if j.Date, err = parseDate(field(colDate)); err != nil {
		return j, err
	}
	if j.DropZone = field(colDropZone); j.DropZone == "" {
		return j, fmt.Errorf("%s is empty", colDropZone)
	}
	j.Aircraft = field(colAircraft)
	j.JumpType = field(colJumpType)
	j.Notes = field(colNotes)
	j.CustomerName = field(colCustomer)
	j.Signature = field(colSignature)
	j.Gear = splitList(field(colGear))
	j.InvoiceItems = splitList(field(colServices))

	ints := []struct {
		col string
		dst *int
	}{
		{colNumber, &j.JumpNumber},
		{colExit, &j.ExitAltitude},
		{colDeploy, &j.DeploymentAltitude},
		{colFreefall, &j.FreefallSeconds},
	}
	for _, f := range ints {
		v := strings.ReplaceAll(field(f.col), ",", "")
		if v == "" {
			continue
		}
		if *f.dst, err = strconv.Atoi(v); err != nil {
			return j, fmt.Errorf("invalid %s %q", f.col, v)
		}
	}

	if j.Cutaway, err = parseBool(field(colCutaway)); err != nil {
		return j, fmt.Errorf("invalid %s: %w", colCutaway, err)
	}
	if j.WorkJump, err = parseBool(field(colWork)); err != nil {
		return j, fmt.Errorf("invalid %s: %w", colWork, err)
	}
	// a row with services is a work jump even without the flag
	if len(j.InvoiceItems) > 0 {
		j.WorkJump = true
	}
	return j, nil
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("%s is empty", colDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid %s %q", colDate, v)
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "", "0", "n", "no", "false":
		return false, nil
	case "1", "y", "yes", "true", "x":
		return true, nil
	}
	return false, fmt.Errorf("unrecognised value %q", v)
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == ';' || r == '|' })
	return domain.NormalizeServices(parts)
}

// nextRecord skips blank lines and '#' comment lines. It also returns the
// line the record started on.
func nextRecord(r *csv.Reader) ([]string, int, error) {
	for {
		record, err := r.Read()
		if err != nil {
			return nil, 0, err
		}
		line, _ := r.FieldPos(0)

		skip := true
		for _, field := range record {
			trimmed := strings.TrimSpace(field)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "#") {
				break
			}
			skip = false
			break
		}
		if skip {
			continue
		}
		return record, line, nil
	}
}

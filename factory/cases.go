package factory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/warp/retirement-engine/eligibility"
	"github.com/warp/retirement-engine/generic"
)

// =============================================================================
// CASE FILES - Historical verification data
// =============================================================================

// CaseLayout says which columns of a case file hold what. Column indexes
// are zero-based; LabelColumn < 0 means the file has no label column.
type CaseLayout struct {
	ServiceStartColumn int
	BirthDateColumn    int
	ExpectedColumn     int
	LabelColumn        int
	LabelPrefix        string // prepended to the label cell, e.g. "tc"
	HasHeader          bool
	Basis              generic.TimePoint
}

// Case is one verification row: an input plus the recorded expectation.
type Case struct {
	Input    eligibility.Input
	Expected string
	Label    string
}

// ExpectedFlag reads Expected as a 0/1 eligibility flag.
func (c Case) ExpectedFlag() (bool, error) {
	switch strings.TrimSpace(c.Expected) {
	case "1", "true", "True":
		return true, nil
	case "0", "false", "False":
		return false, nil
	}
	return false, fmt.Errorf("case %s: expected flag %q is not 0/1", c.Label, c.Expected)
}

// LoadCases reads every row of a case file. A row whose service-start cell
// is empty ends the file; rows after it are ignored.
func LoadCases(r io.Reader, layout CaseLayout) ([]Case, error) {
	if layout.Basis.IsZero() {
		return nil, &generic.InvalidInputError{Field: "basis_date", Reason: "required"}
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	need := max(layout.ServiceStartColumn, layout.BirthDateColumn, layout.ExpectedColumn, layout.LabelColumn)

	var cases []Case
	for line := 1; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if line == 1 && layout.HasHeader {
			continue
		}
		if len(rec) <= layout.ServiceStartColumn || strings.TrimSpace(rec[layout.ServiceStartColumn]) == "" {
			break
		}
		if len(rec) <= need {
			return nil, fmt.Errorf("line %d: %d columns, want at least %d", line, len(rec), need+1)
		}

		scd, err := generic.ParseDate(rec[layout.ServiceStartColumn])
		if err != nil {
			return nil, fmt.Errorf("line %d: service start: %w", line, err)
		}
		dob, err := generic.ParseDate(rec[layout.BirthDateColumn])
		if err != nil {
			return nil, fmt.Errorf("line %d: birth date: %w", line, err)
		}

		c := Case{
			Input: eligibility.Input{
				DateOfBirth:      dob,
				ServiceStartDate: scd,
				BasisDate:        layout.Basis,
			},
			Expected: strings.TrimSpace(rec[layout.ExpectedColumn]),
			Label:    fmt.Sprintf("line%d", line),
		}
		if layout.LabelColumn >= 0 {
			c.Label = layout.LabelPrefix + strings.TrimSpace(rec[layout.LabelColumn])
		}
		cases = append(cases, c)
	}
	return cases, nil
}

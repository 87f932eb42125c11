/*
main.go - One-shot eligibility CLI

PURPOSE:
  Evaluates a single person, or a whole verification case file, without
  running the server. Output is JSON (default) or YAML on stdout.

USAGE:
  # One person as of today
  eligibility --dob 1966-08-07 --service-start 1991-09-01

  # As of a fixed date, YAML output
  eligibility --dob 19660807 --service-start 19910901 --as-of 2022-12-20 --format yaml

  # Check a historical case file against the immediate-retirement rule
  eligibility --cases fixtures.csv --as-of 2016-06-01 --benefit immediate

CASE FILES:
  CSV with a header row. Columns default to service start, birth date,
  expected 0/1 flag and label; override with --scd-col, --dob-col,
  --expected-col and --label-col (-1 for none). The exit status is 1 when
  any case disagrees with its recorded expectation and 2 when any case
  cannot be evaluated (the report is still printed).

SEE ALSO:
  - factory/cases.go: Case file layout
  - eligibility/regime.go: Evaluate
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	flag "github.com/spf13/pflag"
	"github.com/warp/retirement-engine/eligibility"
	"github.com/warp/retirement-engine/factory"
	"github.com/warp/retirement-engine/generic"
	"gopkg.in/yaml.v3"
)

type options struct {
	dob          string
	serviceStart string
	asOf         string
	classes      []string
	format       string

	cases       string
	benefit     string
	scdCol      int
	dobCol      int
	expectedCol int
	labelCol    int
}

// Output of a single evaluation.
type personOutput struct {
	Person        eligibility.Projection    `json:"person" yaml:"person"`
	Determination eligibility.Determination `json:"determination" yaml:"determination"`
}

// Output of a case file check.
type caseOutput struct {
	Label    string `json:"label" yaml:"label"`
	Expected bool   `json:"expected" yaml:"expected"`
	Actual   bool   `json:"actual" yaml:"actual"`
	Match    bool   `json:"match" yaml:"match"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

type casesOutput struct {
	Basis      string       `json:"basis_date" yaml:"basis_date"`
	Benefit    string       `json:"benefit" yaml:"benefit"`
	Total      int          `json:"total" yaml:"total"`
	Mismatched int          `json:"mismatched" yaml:"mismatched"`
	Errored    int          `json:"errored" yaml:"errored"`
	Cases      []caseOutput `json:"cases" yaml:"cases"`
}

func main() {
	var opts options
	flag.StringVar(&opts.dob, "dob", "", "Date of birth")
	flag.StringVar(&opts.serviceStart, "service-start", "", "Service computation date")
	flag.StringVar(&opts.asOf, "as-of", "", "Basis date (default today)")
	flag.StringSliceVar(&opts.classes, "service-class", nil, "Service class tag (repeatable)")
	flag.StringVar(&opts.format, "format", "json", "Output format: json or yaml")
	flag.StringVar(&opts.cases, "cases", "", "Verification case file (CSV)")
	flag.StringVar(&opts.benefit, "benefit", string(eligibility.BenefitImmediate), "Benefit checked against the case file's expected column")
	flag.IntVar(&opts.scdCol, "scd-col", 0, "Case file service start column")
	flag.IntVar(&opts.dobCol, "dob-col", 1, "Case file birth date column")
	flag.IntVar(&opts.expectedCol, "expected-col", 2, "Case file expected flag column")
	flag.IntVar(&opts.labelCol, "label-col", 3, "Case file label column, -1 for none")
	flag.Parse()

	ok, err := run(opts, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "eligibility: %v\n", err)
		os.Exit(2)
	}
	if !ok {
		os.Exit(1)
	}
}

func run(opts options, out io.Writer) (bool, error) {
	if opts.format != "json" && opts.format != "yaml" {
		return false, fmt.Errorf("unknown format %q", opts.format)
	}

	basis := generic.Today()
	if opts.asOf != "" {
		var err error
		if basis, err = generic.ParseDate(opts.asOf); err != nil {
			return false, fmt.Errorf("--as-of: %w", err)
		}
	}

	if opts.cases != "" {
		return runCases(opts, basis, out)
	}
	return true, runPerson(opts, basis, out)
}

func runPerson(opts options, basis generic.TimePoint, out io.Writer) error {
	f := factory.NewEmployeeFactory()
	in, err := f.ToInput(factory.EmployeeJSON{
		DateOfBirth:      opts.dob,
		ServiceStartDate: opts.serviceStart,
		ServiceClasses:   opts.classes,
	}, basis)
	if err != nil {
		return err
	}

	p, err := eligibility.NewPerson(in)
	if err != nil {
		return err
	}
	return write(out, opts.format, personOutput{
		Person:        p.Projection(),
		Determination: eligibility.Evaluate(p),
	})
}

func runCases(opts options, basis generic.TimePoint, out io.Writer) (bool, error) {
	benefit := eligibility.Benefit(opts.benefit)

	file, err := os.Open(opts.cases)
	if err != nil {
		return false, err
	}
	defer file.Close()

	cases, err := factory.LoadCases(file, factory.CaseLayout{
		ServiceStartColumn: opts.scdCol,
		BirthDateColumn:    opts.dobCol,
		ExpectedColumn:     opts.expectedCol,
		LabelColumn:        opts.labelCol,
		HasHeader:          true,
		Basis:              basis,
	})
	if err != nil {
		return false, err
	}

	inputs := make([]eligibility.Input, len(cases))
	for i, c := range cases {
		inputs[i] = c.Input
	}
	results, err := eligibility.EvaluateBatch(context.Background(), inputs, eligibility.DefaultBatchWorkers)
	if err != nil {
		return false, err
	}

	report := casesOutput{Basis: basis.String(), Benefit: string(benefit), Total: len(cases)}
	for _, res := range results {
		c := cases[res.Index]
		row := caseOutput{Label: c.Label}

		expected, err := c.ExpectedFlag()
		switch {
		case err != nil:
			row.Error = err.Error()
		case res.Err != nil:
			row.Expected = expected
			row.Error = res.Err.Error()
		default:
			row.Expected = expected
			row.Actual = res.Determination.Eligible(benefit)
			row.Match = row.Expected == row.Actual
		}
		switch {
		case row.Error != "":
			report.Errored++
		case !row.Match:
			report.Mismatched++
		}
		report.Cases = append(report.Cases, row)
	}

	if err := write(out, opts.format, report); err != nil {
		return false, err
	}
	if report.Errored > 0 {
		return false, fmt.Errorf("%d of %d cases could not be evaluated", report.Errored, report.Total)
	}
	return report.Mismatched == 0, nil
}

func write(out io.Writer, format string, v any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

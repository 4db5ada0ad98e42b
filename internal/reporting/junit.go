// Package reporting converts benchmark comparisons into CI report formats.
package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one comparison.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one benchmark case.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a significant slowdown.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a case that could not be compared.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// CaseComparison is one benchmark case compared between a reference run
// and a candidate run.
type CaseComparison struct {
	Name      string
	Reference *float64
	Candidate *float64
	// Ratio is candidate/reference, nil when either side is missing.
	Ratio       *float64
	Significant bool
}

// Regressed reports whether the candidate is significantly slower.
func (c CaseComparison) Regressed() bool {
	return c.Significant && c.Ratio != nil && *c.Ratio > 1
}

// ConvertComparison maps each case to a JUnit test case: significant
// slowdowns fail, cases missing from either run are skipped.
func ConvertComparison(reference, candidate string, cases []CaseComparison, now time.Time) *JUnitTestSuites {
	suite := JUnitTestSuite{
		Name:      fmt.Sprintf("%s vs %s", candidate, reference),
		Timestamp: now.UTC().Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "reference", Value: reference},
			{Name: "candidate", Value: candidate},
		},
	}

	for _, c := range cases {
		tc := JUnitTestCase{Name: c.Name, Classname: candidate}
		if c.Candidate != nil {
			tc.Time = *c.Candidate
		}
		switch {
		case c.Ratio == nil:
			tc.Skipped = &JUnitSkipped{Message: "case missing from one of the runs"}
			suite.Skipped++
		case c.Regressed():
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%s: %.2fx slower than %s", c.Name, *c.Ratio, reference),
				Type:    "Regression",
				Body:    fmt.Sprintf("reference mean %.6fs, candidate mean %.6fs", deref(c.Reference), deref(c.Candidate)),
			}
			suite.Failures++
		}
		suite.Tests++
		suite.Time += tc.Time
		suite.TestCases = append(suite.TestCases, tc)
	}

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Time:       suite.Time,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(suites *JUnitTestSuites, path string) error {
	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644) //nolint:gosec
}

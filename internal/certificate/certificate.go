// Package certificate holds the certificate record model shared by the
// table backends, the record store and the HTML views.
package certificate

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and form layout of a date_issued value.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String returns the date in DateLayout, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Display formats the date the way the certificate cards show it.
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("Jan 2, 2006")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	// Hosted tables may hand back timestamps for date columns.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Date) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Fields are the mutable columns of a certificate row.
type Fields struct {
	Title          string `json:"title" yaml:"title"`
	Issuer         string `json:"issuer" yaml:"issuer"`
	DateIssued     Date   `json:"date_issued" yaml:"date_issued"`
	Category       string `json:"category" yaml:"category"`
	CertificateURL string `json:"certificate_url,omitempty" yaml:"certificate_url,omitempty"`
}

// Record is one row of the certificates table. ID is assigned by the table
// on insert and never changes afterwards.
type Record struct {
	ID string `json:"id"`
	Fields
}

// Class returns the display class of the record's category.
func (r Record) Class() Class {
	return ClassOf(r.Category)
}

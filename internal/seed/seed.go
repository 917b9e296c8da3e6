// Package seed loads certificates from a YAML file into the table.
//
// The file format is:
//
//	certificates:
//	  - title: Certified Kubernetes Administrator
//	    issuer: CNCF
//	    date_issued: 2024-05-20
//	    category: Cloud
//	    certificate_url: https://example.com/cka
package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Zachkp/portfolio/internal/certificate"
	"github.com/Zachkp/portfolio/internal/table"
)

type file struct {
	Certificates []certificate.Fields `yaml:"certificates"`
}

// Read decodes and checks a seed document.
func Read(r io.Reader) ([]certificate.Fields, error) {
	var doc file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	for i, f := range doc.Certificates {
		if err := check(f); err != nil {
			return nil, fmt.Errorf("certificate %d: %w", i+1, err)
		}
	}
	return doc.Certificates, nil
}

// ReadFile is Read on the file at path.
func ReadFile(path string) ([]certificate.Fields, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Insert adds every entry to tbl in file order and returns how many were
// inserted before the first failure.
func Insert(ctx context.Context, tbl table.Table, entries []certificate.Fields) (int, error) {
	for i, f := range entries {
		if _, err := tbl.Insert(ctx, f); err != nil {
			return i, fmt.Errorf("failed to insert %q: %w", f.Title, err)
		}
	}
	return len(entries), nil
}

func check(f certificate.Fields) error {
	switch {
	case f.Title == "":
		return fmt.Errorf("title is required")
	case f.Issuer == "":
		return fmt.Errorf("issuer is required")
	case f.DateIssued.IsZero():
		return fmt.Errorf("date_issued is required")
	case f.Category == "":
		return fmt.Errorf("category is required")
	}
	return nil
}

// Package table defines the hosted certificates table the record store
// mirrors. Backends live in the sqltable and resttable subpackages.
package table

import (
	"context"
	"errors"

	"github.com/Zachkp/portfolio/internal/certificate"
)

// Name is the table every backend reads and writes.
const Name = "certificates"

// ErrNotFound is returned by Update and Delete when no row has the id.
var ErrNotFound = errors.New("certificate not found")

// Table is row-level CRUD over the certificates table. Select always
// returns the whole table ordered by date_issued, newest first.
type Table interface {
	Select(ctx context.Context) ([]certificate.Record, error)
	Insert(ctx context.Context, fields certificate.Fields) (certificate.Record, error)
	Update(ctx context.Context, id string, fields certificate.Fields) error
	Delete(ctx context.Context, id string) error
}

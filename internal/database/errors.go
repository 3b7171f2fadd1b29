package database

import (
	"context"
	"errors"

	"modernc.org/sqlite"
)

// Store operation errors.
var (
	// ErrEmptyTaxonomy is returned by SaveTaxonomy when there are no
	// categories to persist. An empty taxonomy means the whole crawl has
	// nothing to resolve against, so silently committing nothing would
	// hide a broken discovery pass.
	ErrEmptyTaxonomy = errors.New("nothing to commit: taxonomy has no categories")

	// ErrOrphanSubCategory is returned by SaveTaxonomy when a subcategory
	// references a parent id that is not part of the same batch.
	ErrOrphanSubCategory = errors.New("subcategory references unknown parent category")
)

// Fault describes the class of a failed store operation, used by callers to
// decide between retrying and giving up.
type Fault int

const (
	// FaultNone: the error is nil.
	FaultNone Fault = iota

	// FaultTransient: the database was busy or locked; the operation is
	// retry-eligible.
	FaultTransient

	// FaultSchema: a constraint was violated (duplicate id, broken
	// reference); retrying cannot succeed.
	FaultSchema

	// FaultOther: any other failure, including cancellation.
	FaultOther
)

// SQLite primary result codes relevant for fault classification.
// Extended codes carry the primary code in their low byte.
const (
	sqliteBusy       = 5
	sqliteLocked     = 6
	sqliteConstraint = 19
)

// ClassifyError maps a store error onto a Fault.
//
// Design decision: callers get a classification function rather than
// wrapped sentinel errors because the underlying driver already produces
// rich typed errors; re-wrapping each would lose the original codes.
func ClassifyError(err error) Fault {
	if err == nil {
		return FaultNone
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FaultOther
	}

	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() & 0xff {
		case sqliteBusy, sqliteLocked:
			return FaultTransient
		case sqliteConstraint:
			return FaultSchema
		}
	}

	return FaultOther
}

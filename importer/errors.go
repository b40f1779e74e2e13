package importer

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnpairedTransfer is returned when a transfer stub has no counterpart
	// and carries no converted amount to stand in for one.
	ErrUnpairedTransfer = errors.New("unpaired transfer")

	// ErrMissingField is returned when a required field is absent from the
	// headers or empty in a row.
	ErrMissingField = errors.New("missing required field")

	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidType   = errors.New("invalid entry type")

	// ErrUnknownProfile is returned by Lookup for an unregistered id.
	ErrUnknownProfile = errors.New("unknown import profile")
)

// ReconcileError names both sides of a transfer stub that could not be paired.
type ReconcileError struct {
	Direction    Direction `json:"direction"`
	Account      string    `json:"account"`
	OtherAccount string    `json:"other_account"`
	Date         int64     `json:"date"`
	Line         int       `json:"line"`
}

func (e *ReconcileError) Error() string {
	day := time.UnixMilli(e.Date).UTC().Format("2006-01-02")
	if e.Direction == DirectionIn {
		return fmt.Sprintf("line %d: %v: transfer into %q from %q on %s has no outgoing leg",
			e.Line, ErrUnpairedTransfer, e.Account, e.OtherAccount, day)
	}
	return fmt.Sprintf("line %d: %v: transfer from %q to %q on %s has no incoming leg",
		e.Line, ErrUnpairedTransfer, e.Account, e.OtherAccount, day)
}

func (e *ReconcileError) Unwrap() error {
	return ErrUnpairedTransfer
}

// RowError attributes a failure to one CSV line.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func newRowError(line int, err error) *RowError {
	return &RowError{Line: line, Message: err.Error(), Err: err}
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// fieldError reports a bad or missing cell value.
func fieldError(err error, field Field, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", err, field)
	}
	return fmt.Errorf("%w: %s=%q", err, field, value)
}

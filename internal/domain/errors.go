package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateShortKey = errors.New("kpi short key already exists")
)

// EmptyImportError is returned when an import yields zero valid rows.
// Nothing is committed for such an import.
type EmptyImportError struct {
	Schema   string
	Rejected int
}

func (e *EmptyImportError) Error() string {
	return fmt.Sprintf("no valid %s records found in the file (%d rows rejected)", e.Schema, e.Rejected)
}

// SchemaMismatchError is returned when a required column family is missing entirely.
type SchemaMismatchError struct {
	Schema  string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s file is missing required columns: %s", e.Schema, strings.Join(e.Missing, ", "))
}

// InvalidCohortDefinitionError rejects a KPI definition at catalog write time.
type InvalidCohortDefinitionError struct {
	ShortKey string
	Reason   string
}

func (e *InvalidCohortDefinitionError) Error() string {
	if e.ShortKey == "" {
		return "invalid kpi definition: " + e.Reason
	}
	return fmt.Sprintf("invalid kpi definition %q: %s", e.ShortKey, e.Reason)
}

// InvalidAgreementError rejects an agreement write.
type InvalidAgreementError struct {
	Reason string
}

func (e *InvalidAgreementError) Error() string {
	return "invalid agreement: " + e.Reason
}

// InvalidRequestError rejects a malformed request parameter.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidWindowError rejects a reporting window whose end is not after its start.
type InvalidWindowError struct {
	Window Window
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid window %s: end must be after start", e.Window)
}

// IsValidationError reports whether err is caused by bad caller input.
func IsValidationError(err error) bool {
	var (
		empty    *EmptyImportError
		mismatch *SchemaMismatchError
		invalid  *InvalidCohortDefinitionError
		contract *InvalidAgreementError
		window   *InvalidWindowError
		request  *InvalidRequestError
	)
	return errors.As(err, &empty) || errors.As(err, &mismatch) || errors.As(err, &invalid) ||
		errors.As(err, &contract) || errors.As(err, &window) || errors.As(err, &request)
}

// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - Unexported errors (err*): Use for internal package errors
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Dictionary and category errors.
var (
	// ErrEmptyDictionary indicates that no category dictionary could be loaded.
	ErrEmptyDictionary = errors.New("keyword dictionary is empty")

	// ErrUnknownCategory indicates a category label, name or index that is not in the catalogue.
	ErrUnknownCategory = errors.New("unknown category")
)

// Collection errors.
var (
	// ErrNoRecords indicates that no source produced any record for a refresh.
	ErrNoRecords = errors.New("nothing to publish")

	// ErrMissingCredentials indicates a source is not configured with the keys it needs.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrHTTPStatusNotOK indicates an HTTP response with a non-200 status code.
	ErrHTTPStatusNotOK = errors.New("HTTP status not OK")

	// ErrUpstreamAPI indicates an API answered with an error payload.
	ErrUpstreamAPI = errors.New("upstream API error")

	// ErrTooManyRedirects indicates too many HTTP redirects.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// Snapshot errors.
var (
	// ErrSnapshotCorrupt indicates the persisted dataset could not be parsed.
	ErrSnapshotCorrupt = errors.New("snapshot is corrupt")

	// ErrSnapshotWrite indicates the dataset could not be written to disk.
	ErrSnapshotWrite = errors.New("snapshot write failed")
)

// Validation errors.
var (
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/flashgest/internal/aggregate"
	"github.com/dgallion1/flashgest/internal/chunker"
	"github.com/dgallion1/flashgest/internal/parser"
)

// errorStatus maps pipeline errors to the HTTP status reported to clients.
func errorStatus(err error) int {
	var (
		unsupported *parser.UnsupportedFormatError
		extraction  *parser.ExtractionError
		noContent   *chunker.NoContentError
		tooLarge    *aggregate.DocumentTooLargeError
		maxBytes    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &extraction), errors.As(err, &noContent):
		return http.StatusUnprocessableEntity
	case errors.As(err, &tooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

package integration

import (
	"errors"
	"fmt"
)

// ErrDataUnavailable matches every DataUnavailableError via errors.Is
var ErrDataUnavailable = errors.New("data unavailable")

// DataUnavailableError reports that a category could not be fetched at all:
// the request never got a response, or a 200 response did not carry the documented payload.
// A non-200 response is not an error; it is answered with fallback data.
type DataUnavailableError struct {
	Category string
	URL      string
	Err      error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s data unavailable from %s: %v", e.Category, e.URL, e.Err)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

func (e *DataUnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}

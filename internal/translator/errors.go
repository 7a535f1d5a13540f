package translator

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch is returned by TranslateBatch when there is nothing to translate.
var ErrEmptyBatch = errors.New("enter the list of texts you want to translate")

// MissingCredentialError is returned at construction when no API key was passed
// and the configuration store has none under Key.
type MissingCredentialError struct {
	Key string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("no API key provided: pass one explicitly or set %s", e.Key)
}

// IsMissingCredentialError checks if an error is or wraps a MissingCredentialError.
func IsMissingCredentialError(err error) bool {
	var missing *MissingCredentialError
	return errors.As(err, &missing)
}

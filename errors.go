package tabulon

import (
	"errors"
	"fmt"

	"github.com/tabulon-io/tabulon/lib/encoding"
)

// Sentinel errors for binding and delivery operations.
var (
	ErrNotTable        = errors.New("tabulon: value is not a table")
	ErrOutputNotFound  = errors.New("tabulon: output not bound")
	ErrOutputBound     = errors.New("tabulon: output already bound")
	ErrSessionNotFound = errors.New("tabulon: session not found")
	ErrInvalidToken    = errors.New("tabulon: invalid session token")
)

// ProducerError wraps a failure raised by a bound producer during one
// evaluation cycle. The failure belongs to that cycle only; the next
// invalidation of the output gets a fresh attempt.
type ProducerError struct {
	Output string
	Err    error
}

func (e *ProducerError) Error() string {
	return fmt.Sprintf("tabulon: output %q: producer failed: %v", e.Output, e.Err)
}

func (e *ProducerError) Unwrap() error {
	return e.Err
}

// IsNotTable checks if err is a transform type-mismatch error.
func IsNotTable(err error) bool {
	return errors.Is(err, ErrNotTable)
}

// IsProducerError checks if err originated in a bound producer.
func IsProducerError(err error) bool {
	var pe *ProducerError
	return errors.As(err, &pe)
}

// IsTokenError checks if err is a session-token decoding or verification
// failure.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

// wrapTokenError maps encoding package errors to the package sentinel so
// callers only deal with ErrInvalidToken.
func wrapTokenError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, encoding.ErrInvalidFormat) ||
		errors.Is(err, encoding.ErrSignatureInvalid) ||
		errors.Is(err, encoding.ErrDecryptFailed) {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return err
}

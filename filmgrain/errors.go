package filmgrain

import (
	"errors"
	"fmt"
)

type ErrConfiguration struct {
	Err error
}

func (e ErrConfiguration) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e ErrConfiguration) Unwrap() error {
	return e.Err
}

// ErrInsufficientData means a component has no usable grain estimate; the
// component is reported as absent from the model.
type ErrInsufficientData struct {
	Reason string
}

func (e ErrInsufficientData) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.Reason)
}

var ErrNotConverged = errors.New("the quantizer has not converged")

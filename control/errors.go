package control

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/lixenwraith/mpc-car/core"
)

// ErrInvalidConfiguration is returned by constructors for unusable parameters
var ErrInvalidConfiguration = core.ErrInvalidConfiguration

// ErrControlFailure marks a tick whose optimization was infeasible or did not converge
var ErrControlFailure = errors.New("control failure")

// ControlFailure carries the details of a failed solve
type ControlFailure struct {
	Tick   uint64
	Status Status
	Cause  error
}

func (f *ControlFailure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("control failure at tick %d (%s): %v", f.Tick, f.Status, f.Cause)
	}
	return fmt.Sprintf("control failure at tick %d (%s)", f.Tick, f.Status)
}

// Is lets errors.Is match ErrControlFailure
func (f *ControlFailure) Is(target error) bool {
	return target == ErrControlFailure
}

func (f *ControlFailure) Unwrap() error {
	return f.Cause
}

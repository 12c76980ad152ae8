package jobs

import (
	"errors"
	"fmt"
	"time"

	"ytpulse/internal/jobgate"
)

// ErrBusy matches a *BusyError.
var ErrBusy = errors.New("job capacity exhausted")

// BusyError reports a capacity rejection with the gate state at that moment.
type BusyError struct {
	Active     jobgate.Status
	RetryAfter time.Duration
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("%s: %d of %d slots in use, retry after %s",
		ErrBusy, e.Active.ActiveCount, e.Active.MaxConcurrent, e.RetryAfter)
}

func (e *BusyError) Is(target error) bool { return target == ErrBusy }

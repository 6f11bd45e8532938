package phases

import "fmt"

// InconsistencyError reports cumulative clocks that are not monotonically
// increasing. It signals a measurement defect in the transfer layer, not a
// usage error, so there is no sensible duration to substitute.
type InconsistencyError struct {
	Earlier string // milestone that should have completed first
	Later   string // milestone that reported an earlier clock
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("timing inconsistency: %s completed before %s", e.Later, e.Earlier)
}

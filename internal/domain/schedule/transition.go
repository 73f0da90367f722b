package schedule

import "fmt"

// Transition checks a status change against the installment lifecycle:
// pending -> overdue -> missed as time passes, any unpaid status -> paid when a
// payment is recorded, and nothing out of paid.
func Transition(from, to Status) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("%w: unknown status %q -> %q", ErrIllegalTransition, from, to)
	}
	if from == to {
		return nil
	}
	if from == StatusPaid {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	if to == StatusPaid {
		return nil
	}
	if rank(to) > rank(from) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}

func rank(s Status) int {
	switch s {
	case StatusPending:
		return 0
	case StatusOverdue:
		return 1
	case StatusMissed:
		return 2
	default:
		return 3
	}
}

package clock

import "time"

// Clock abstracts wall time so the session lifecycle can be driven in tests.
type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

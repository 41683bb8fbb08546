package state

// Status is the lifecycle of one async slice. Every operation moves its
// slice idle -> loading -> (success | error); loading is never skipped and
// each invocation makes exactly one terminal transition.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Terminal reports whether the status is a resting state a new operation
// may start from
func (s Status) Terminal() bool {
	return s == StatusIdle || s == StatusSuccess || s == StatusError
}

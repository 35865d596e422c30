package pipeline

// Status is the lifecycle state of a provider task. Backends only ever hand
// the dispatcher tasks in a terminal state (Succeeded or Failed).
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Output is one generated asset. Backends return a URL, raw bytes, or both.
type Output struct {
	URL  string
	Data []byte
	MIME string
}

// Task represents a vendor generation job as seen by the pipeline. It is
// created by a backend and read-only afterwards.
type Task struct {
	ID            string
	Status        Status
	Outputs       []Output
	FailureDetail string
}

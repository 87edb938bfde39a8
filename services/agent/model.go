package agent

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

const (
	DefaultNiche          = "AI Content"
	defaultStartedMessage = "Agent started successfully!"
)

// Result is the outcome of one start attempt. Failures are never returned as Go errors.
type Result struct {
	Status  Status
	Message string
}

func (r Result) Failed() bool {
	return r.Status == StatusFailed
}

type startRequest struct {
	Niche string `json:"niche"`
}

type startResponse struct {
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

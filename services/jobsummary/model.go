package jobsummary

import "time"

type Status string

const (
	StatusCompleted Status = "completed"
	StatusRunning   Status = "running"
	StatusFailed    Status = "failed"
)

// Entry is a placeholder derived from aggregate counts: the backend exposes no per-job identity,
// so ids and timestamps are synthesized at retrieval time.
type Entry struct {
	ID         string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UserID     string
	UserLogged bool
}

type Counts struct {
	Completed int
	Running   int
	Failed    int
	Total     int
}

func CountEntries(entries []Entry) Counts {
	counts := Counts{Total: len(entries)}
	for _, e := range entries {
		switch e.Status {
		case StatusCompleted:
			counts.Completed++
		case StatusRunning:
			counts.Running++
		case StatusFailed:
			counts.Failed++
		}
	}
	return counts
}

type summaryResponse struct {
	TotalCompleted int `json:"total_completed"`
	TotalFailed    int `json:"total_failed"`
}

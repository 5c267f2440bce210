package daemon

import (
	"time"

	"git.home.luguber.info/inful/blogpub/internal/publish"
)

// StatusResponse summarizes the daemon's runtime state.
type StatusResponse struct {
	State         string          `json:"state"` // "idle" or "publishing"
	QueueDepth    int             `json:"queue_depth"`
	QueueCapacity int             `json:"queue_capacity"`
	StartedAt     time.Time       `json:"started_at"`
	Uptime        string          `json:"uptime"`
	Current       *Job            `json:"current,omitempty"`
	LastPublish   *PublishSummary `json:"last_publish,omitempty"`
}

// PublishSummary is the status view of a finished publish attempt.
type PublishSummary struct {
	ID         string    `json:"id"`
	Trigger    string    `json:"trigger"`
	Outcome    string    `json:"outcome"`
	Branch     string    `json:"branch"`
	CommitHash string    `json:"commit_hash,omitempty"`
	Message    string    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Status builds the current status snapshot.
func (d *Daemon) Status() *StatusResponse {
	current := d.queue.Current()
	state := "idle"
	if current != nil {
		state = "publishing"
	}

	resp := &StatusResponse{
		State:         state,
		QueueDepth:    d.queue.Length(),
		QueueCapacity: d.queue.Capacity(),
		StartedAt:     d.startTime,
		Uptime:        time.Since(d.startTime).Round(time.Second).String(),
		Current:       current,
	}

	if last := d.queue.LastReport(); last != nil {
		resp.LastPublish = summarizeReport(last)
	}
	return resp
}

func summarizeReport(r *publish.Report) *PublishSummary {
	return &PublishSummary{
		ID:         r.ID,
		Trigger:    string(r.Trigger),
		Outcome:    string(r.Outcome),
		Branch:     r.Branch,
		CommitHash: r.CommitHash,
		Message:    r.Message,
		Error:      r.ErrorText(),
		FinishedAt: r.End,
		DurationMS: r.Duration().Milliseconds(),
	}
}

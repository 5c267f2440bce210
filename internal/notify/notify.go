// Package notify publishes publish-outcome events to NATS JetStream so other
// home-lab services (feed pingers, chat bots) can react to deployments. The
// notifier is optional: when NATS is unreachable the daemon runs without it
// and outcomes are only logged.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/blogpub/internal/config"
	"git.home.luguber.info/inful/blogpub/internal/logfields"
	"git.home.luguber.info/inful/blogpub/internal/publish"
)

// Event is the wire form of one publish attempt.
type Event struct {
	ID         string    `json:"id"`
	Trigger    string    `json:"trigger"`
	Outcome    string    `json:"outcome"`
	Branch     string    `json:"branch"`
	CommitHash string    `json:"commit_hash,omitempty"`
	Message    string    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewEvent flattens a publish report into its notification payload.
func NewEvent(report *publish.Report) Event {
	return Event{
		ID:         report.ID,
		Trigger:    string(report.Trigger),
		Outcome:    string(report.Outcome),
		Branch:     report.Branch,
		CommitHash: report.CommitHash,
		Message:    report.Message,
		Error:      report.ErrorText(),
		StartedAt:  report.Start,
		DurationMS: report.Duration().Milliseconds(),
		Timestamp:  time.Now(),
	}
}

// Client manages the NATS connection and outcome publishing.
type Client struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewClient connects to NATS and ensures the outcome stream exists.
func NewClient(cfg *config.NotifyConfig) (*Client, error) {
	if cfg == nil || cfg.NATSURL == "" {
		return nil, fmt.Errorf("notifications are not configured")
	}

	conn, err := nats.Connect(cfg.NATSURL, nats.Name("blogpub"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{cfg.Subject},
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.Stream, err)
	}

	slog.Info("NATS notifier initialized",
		logfields.Subject(cfg.Subject),
		slog.String("stream", cfg.Stream))
	return &Client{conn: conn, js: js, subject: cfg.Subject}, nil
}

// PublishOutcome delivers one publish report. Implements publish.Notifier.
func (c *Client) PublishOutcome(ctx context.Context, report *publish.Report) error {
	data, err := json.Marshal(NewEvent(report))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := c.js.Publish(pubCtx, c.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("Published outcome event",
		logfields.PublishID(report.ID),
		logfields.Outcome(string(report.Outcome)),
		logfields.Subject(c.subject))
	return nil
}

// Close drains the connection.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

package daemon

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stdErrors "errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/blogpub/internal/logfields"
	"git.home.luguber.info/inful/blogpub/internal/metrics"
	"git.home.luguber.info/inful/blogpub/internal/publish"
)

// SignatureHeader carries the webhook HMAC signature when a secret is
// configured.
const SignatureHeader = "X-Blogpub-Signature"

// maxPushEventBytes bounds the webhook request body.
const maxPushEventBytes = 1 << 20

// Webhook dispositions used as the metric status label.
const (
	webhookQueued       = "queued"
	webhookIgnored      = "ignored"
	webhookRejected     = "rejected"
	webhookUnauthorized = "unauthorized"
	webhookInvalid      = "invalid"
	webhookError        = "error"
)

// PushEvent is the minimal push notification the webhook accepts. Ref may
// be a full ref name or a bare branch name.
type PushEvent struct {
	Ref     string `json:"ref"`
	Message string `json:"message,omitempty"`
}

// Service is the runtime surface the HTTP handlers need. Daemon implements
// it; tests substitute a fake.
type Service interface {
	WebhookSecret() string
	AuthoringBranch() (string, error)
	EnqueuePublish(trigger publish.Trigger, message string) (*Job, error)
	Health() *HealthResponse
	Status() *StatusResponse
}

// Handlers contains the daemon's HTTP handlers.
type Handlers struct {
	svc      Service
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(svc Service, recorder metrics.Recorder, logger *slog.Logger) *Handlers {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{svc: svc, recorder: recorder, logger: logger}
}

// HandlePush accepts a push event and enqueues a publish when the pushed
// ref is the authoring branch.
func (h *Handlers) HandlePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.recorder.IncWebhookRequest(webhookInvalid)
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPushEventBytes))
	if err != nil {
		h.recorder.IncWebhookRequest(webhookInvalid)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable or oversized request body"})
		return
	}

	if secret := h.svc.WebhookSecret(); secret != "" {
		if !verifySignature(payload, r.Header.Get(SignatureHeader), secret) {
			h.recorder.IncWebhookRequest(webhookUnauthorized)
			h.logger.Warn("Webhook signature verification failed",
				logfields.RemoteAddr(r.RemoteAddr))
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid webhook signature"})
			return
		}
	}

	var event PushEvent
	if err := json.Unmarshal(payload, &event); err != nil || event.Ref == "" {
		h.recorder.IncWebhookRequest(webhookInvalid)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid push event payload"})
		return
	}

	branch, err := h.svc.AuthoringBranch()
	if err != nil {
		h.recorder.IncWebhookRequest(webhookError)
		h.logger.Error("Failed to resolve authoring branch", logfields.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cannot resolve authoring branch"})
		return
	}

	if strings.TrimPrefix(event.Ref, "refs/heads/") != branch {
		h.recorder.IncWebhookRequest(webhookIgnored)
		h.logger.Debug("Ignoring push for foreign ref",
			slog.String("ref", event.Ref),
			logfields.Branch(branch))
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ignored",
			"reason": "ref does not match authoring branch",
		})
		return
	}

	job, err := h.svc.EnqueuePublish(publish.TriggerWebhook, event.Message)
	if err != nil {
		if stdErrors.Is(err, ErrQueueFull) {
			h.recorder.IncWebhookRequest(webhookRejected)
			writeJSON(w, http.StatusConflict, map[string]string{"error": "publish queue is full"})
			return
		}
		h.recorder.IncWebhookRequest(webhookError)
		h.logger.Error("Failed to enqueue webhook publish", logfields.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to enqueue publish"})
		return
	}

	h.recorder.IncWebhookRequest(webhookQueued)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "queued",
		"job_id": job.ID,
	})
}

// HandleHealthz reports liveness. Degraded states still answer 200; only an
// unhealthy daemon returns 503.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	health := h.svc.Health()
	status := http.StatusOK
	if health.Status == HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// HandleStatus reports queue and last-publish state.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	writeJSON(w, http.StatusOK, h.svc.Status())
}

// verifySignature checks an HMAC-SHA256 signature in the sha256=<hex>
// format over the raw payload.
func verifySignature(payload []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	if !strings.HasPrefix(signature, "sha256=") {
		return false
	}

	expected := signature[len("sha256="):]
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	calc := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(calc))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write JSON response", logfields.Error(err))
	}
}

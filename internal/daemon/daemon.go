// Package daemon runs blogpub as a long-lived service: a webhook listener
// and optional interval scheduler feed a bounded single-worker queue, so at
// most one publish is in flight at any time.
package daemon

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogpub/internal/config"
	"git.home.luguber.info/inful/blogpub/internal/git"
	"git.home.luguber.info/inful/blogpub/internal/history"
	"git.home.luguber.info/inful/blogpub/internal/logfields"
	"git.home.luguber.info/inful/blogpub/internal/metrics"
	"git.home.luguber.info/inful/blogpub/internal/notify"
	"git.home.luguber.info/inful/blogpub/internal/publish"
)

const (
	// periodicPublishJob names the scheduler registration for interval
	// publishes.
	periodicPublishJob = "periodic-publish"

	// shutdownTimeout bounds the HTTP server drain.
	shutdownTimeout = 10 * time.Second

	// drainGrace is how long shutdown waits for an in-flight publish
	// before canceling it at the next step boundary.
	drainGrace = 30 * time.Second
)

// Daemon supervises the queue, scheduler, config watcher, and HTTP server.
type Daemon struct {
	mu         sync.RWMutex
	cfg        *config.Config
	repoDir    string
	configPath string
	interval   time.Duration

	publisher    *publish.Publisher
	queue        *Queue
	scheduler    *Scheduler
	watcher      *ConfigWatcher
	server       *Server
	historyStore *history.Store
	notifier     *notify.Client
	recorder     metrics.Recorder
	git          *git.Client
	logger       *slog.Logger

	jobCancel context.CancelFunc
	startTime time.Time
}

// New assembles a daemon from a loaded configuration. configPath enables
// the config watcher; pass "" to run without one.
func New(cfg *config.Config, repoDir, configPath string, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, stdErrors.New("configuration is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Daemon == nil {
		cfg.Daemon = &config.DaemonConfig{}
		if err := (&config.DaemonDefaultApplier{}).ApplyDefaults(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply daemon defaults: %w", err)
		}
	}

	var interval time.Duration
	if s := cfg.Daemon.PublishInterval; s != "" {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid publish interval %q: %w", s, err)
		}
		interval = parsed
	}

	d := &Daemon{
		cfg:        cfg,
		repoDir:    repoDir,
		configPath: configPath,
		interval:   interval,
		recorder:   metrics.NoopRecorder{},
		git:        git.NewClient(repoDir),
		logger:     logger,
		startTime:  time.Now(),
	}

	var metricsH http.Handler
	if cfg.Daemon.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		d.recorder = metrics.NewPrometheusRecorder(reg)
		metricsH = metrics.HTTPHandler(reg)
	}

	if !cfg.History.Disabled {
		store, err := history.NewStore(cfg.History.ResolvePath(repoDir))
		if err != nil {
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		d.historyStore = store
	}

	if cfg.Notify != nil && cfg.Notify.NATSURL != "" {
		client, err := notify.NewClient(cfg.Notify)
		if err != nil {
			logger.Warn("Notifications disabled", logfields.Error(err))
		} else {
			d.notifier = client
		}
	}

	d.publisher = d.buildPublisher(cfg)

	d.queue = NewQueue(cfg.Daemon.QueueSize, publisherRunner{d})
	d.queue.SetRecorder(d.recorder)
	d.queue.SetLogger(logger)

	scheduler, err := NewScheduler()
	if err != nil {
		return nil, err
	}
	d.scheduler = scheduler

	if configPath != "" {
		watcher, werr := NewConfigWatcher(configPath, d.applyConfig)
		if werr != nil {
			logger.Warn("Config watcher disabled", logfields.Error(werr))
		} else {
			d.watcher = watcher
		}
	}

	d.server = NewServer(*cfg.Daemon, d, d.recorder, metricsH, logger)

	return d, nil
}

// buildPublisher wires a publisher against the daemon's sinks. Called again
// on config reload.
func (d *Daemon) buildPublisher(cfg *config.Config) *publish.Publisher {
	p := publish.New(cfg, d.repoDir).
		WithMetrics(d.recorder).
		WithLogger(d.logger)
	if d.historyStore != nil {
		p = p.WithHistory(d.historyStore)
	}
	if d.notifier != nil {
		p = p.WithNotifier(d.notifier)
	}
	return p
}

// publisherRunner lets the queue run publishes through whichever publisher
// the daemon currently holds, so a config reload takes effect for the next
// job without restarting the queue.
type publisherRunner struct{ d *Daemon }

func (r publisherRunner) Run(ctx context.Context, opts publish.Options) (*publish.Report, error) {
	r.d.mu.RLock()
	p := r.d.publisher
	r.d.mu.RUnlock()
	return p.Run(ctx, opts)
}

// Run starts all components and blocks until ctx is canceled, then shuts
// down gracefully: intake stops first, an in-flight publish gets drainGrace
// to finish, stores and connections close last.
func (d *Daemon) Run(ctx context.Context) error {
	d.startTime = time.Now()
	jobCtx, jobCancel := context.WithCancel(context.Background())
	d.jobCancel = jobCancel
	defer jobCancel()

	interval := d.interval
	metricsEnabled := d.cfg.Daemon.Metrics.Enabled

	// Jobs run on their own context: the first shutdown signal must not
	// abort a publish mid-flight.
	d.queue.Start(jobCtx)

	if interval > 0 {
		if _, err := d.scheduler.ScheduleEvery(periodicPublishJob, interval, d.scheduledPublish); err != nil {
			return fmt.Errorf("failed to schedule periodic publish: %w", err)
		}
	}
	d.scheduler.Start()

	if d.watcher != nil {
		if err := d.watcher.Start(ctx); err != nil {
			d.logger.Warn("Config watcher failed to start", logfields.Error(err))
			d.watcher = nil
		}
	}

	if err := d.server.Start(ctx); err != nil {
		d.stopIntake()
		d.queue.Stop()
		d.closeStores()
		return err
	}

	d.logger.Info("Daemon started",
		slog.String("listen", d.server.Addr()),
		logfields.Dir(d.repoDir),
		slog.Bool("scheduler", interval > 0),
		slog.Bool("metrics", metricsEnabled))

	<-ctx.Done()
	d.logger.Info("Shutdown signal received")
	return d.shutdown()
}

func (d *Daemon) shutdown() error {
	var errs []error

	errs = append(errs, d.stopIntake()...)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.server.Stop(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	done := make(chan struct{})
	go func() {
		d.queue.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(drainGrace):
		d.logger.Warn("Publish still running after grace period, canceling")
		d.jobCancel()
		<-done
	}

	errs = append(errs, d.closeStores()...)

	d.logger.Info("Daemon stopped")
	return stdErrors.Join(errs...)
}

// stopIntake stops everything that can enqueue new jobs.
func (d *Daemon) stopIntake() []error {
	var errs []error
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.scheduler.Stop(); err != nil {
		errs = append(errs, err)
	}
	return errs
}

func (d *Daemon) closeStores() []error {
	var errs []error
	if d.historyStore != nil {
		if err := d.historyStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history store: %w", err))
		}
	}
	if d.notifier != nil {
		d.notifier.Close()
	}
	return errs
}

// scheduledPublish is the gocron task for interval publishes.
func (d *Daemon) scheduledPublish() {
	if _, err := d.EnqueuePublish(publish.TriggerScheduled, ""); err != nil {
		if stdErrors.Is(err, ErrQueueFull) {
			d.logger.Warn("Skipping scheduled publish, queue is full")
			return
		}
		d.logger.Error("Failed to enqueue scheduled publish", logfields.Error(err))
	}
}

// EnqueuePublish creates a job and adds it to the queue.
func (d *Daemon) EnqueuePublish(trigger publish.Trigger, message string) (*Job, error) {
	job := &Job{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := d.queue.Enqueue(job); err != nil {
		return nil, err
	}
	d.logger.Debug("Enqueued publish job",
		slog.String("job_id", job.ID),
		logfields.Trigger(string(trigger)))
	return job, nil
}

// WebhookSecret returns the currently configured webhook secret.
func (d *Daemon) WebhookSecret() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.cfg.Daemon == nil {
		return ""
	}
	return d.cfg.Daemon.WebhookSecret
}

// AuthoringBranch resolves the branch checked out in the authoring
// repository. Webhook refs are matched against it.
func (d *Daemon) AuthoringBranch() (string, error) {
	branch, err := d.git.CurrentBranch()
	if err != nil {
		return "", err
	}
	if branch == "" {
		return "", stdErrors.New("repository has no checked-out branch")
	}
	return branch, nil
}

// applyConfig swaps in a reloaded configuration. Changes that cannot take
// effect without a restart are reverted with a warning; the publisher and
// scheduler pick up everything else for subsequent jobs.
func (d *Daemon) applyConfig(_ context.Context, newCfg *config.Config) error {
	d.mu.Lock()
	oldCfg := d.cfg

	if newCfg.Daemon == nil {
		newCfg.Daemon = oldCfg.Daemon
	}

	if newCfg.Snapshot() == oldCfg.Snapshot() &&
		newCfg.Daemon.WebhookSecret == oldCfg.Daemon.WebhookSecret {
		d.mu.Unlock()
		d.logger.Debug("Configuration unchanged, skipping reload")
		return nil
	}

	if newCfg.Daemon.Listen != oldCfg.Daemon.Listen {
		d.logger.Warn("Listen address change requires restart",
			slog.String("current", oldCfg.Daemon.Listen),
			slog.String("requested", newCfg.Daemon.Listen))
		newCfg.Daemon.Listen = oldCfg.Daemon.Listen
	}
	if newCfg.Daemon.QueueSize != oldCfg.Daemon.QueueSize {
		d.logger.Warn("Queue size change requires restart")
		newCfg.Daemon.QueueSize = oldCfg.Daemon.QueueSize
	}
	if newCfg.Daemon.Metrics != oldCfg.Daemon.Metrics {
		d.logger.Warn("Metrics endpoint change requires restart")
		newCfg.Daemon.Metrics = oldCfg.Daemon.Metrics
	}
	if newCfg.History != oldCfg.History {
		d.logger.Warn("History store change requires restart")
		newCfg.History = oldCfg.History
	}
	if notifyChanged(oldCfg.Notify, newCfg.Notify) {
		d.logger.Warn("Notification settings change requires restart")
		newCfg.Notify = oldCfg.Notify
	}

	var interval time.Duration
	if s := newCfg.Daemon.PublishInterval; s != "" {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			d.mu.Unlock()
			return fmt.Errorf("invalid publish interval %q: %w", s, err)
		}
		interval = parsed
	}

	d.cfg = newCfg
	d.interval = interval
	d.publisher = d.buildPublisher(newCfg)
	d.mu.Unlock()

	if interval > 0 {
		if _, err := d.scheduler.ScheduleEvery(periodicPublishJob, interval, d.scheduledPublish); err != nil {
			return fmt.Errorf("failed to reschedule periodic publish: %w", err)
		}
	} else if err := d.scheduler.Remove(periodicPublishJob); err != nil {
		return err
	}

	d.logger.Info("Configuration applied",
		logfields.Branch(newCfg.Git.TargetBranch),
		slog.Duration("publish_interval", interval))
	return nil
}

func notifyChanged(old, updated *config.NotifyConfig) bool {
	if old == nil && updated == nil {
		return false
	}
	if old == nil || updated == nil {
		return true
	}
	return *old != *updated
}

// ServerAddr exposes the bound HTTP address, mainly for tests and logs.
func (d *Daemon) ServerAddr() string {
	return d.server.Addr()
}

var _ Service = (*Daemon)(nil)

// Package publish implements the sequential publish procedure: verify the
// authoring tree is clean, bind the output directory to the target branch as
// a linked worktree, regenerate the site, commit the result and force-push it
// to the remote. Every run performs the full procedure from scratch, so a
// failed publish is repaired by running it again.
package publish

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/config"
	apperrors "git.home.luguber.info/inful/blogpub/internal/errors"
	"git.home.luguber.info/inful/blogpub/internal/generator"
	"git.home.luguber.info/inful/blogpub/internal/git"
	"git.home.luguber.info/inful/blogpub/internal/logfields"
	"git.home.luguber.info/inful/blogpub/internal/metrics"
)

// HistorySink records completed publish attempts. Recording failures are
// logged and never fail the publish itself.
type HistorySink interface {
	Record(ctx context.Context, report *Report) error
}

// Notifier announces completed publish attempts to external systems.
type Notifier interface {
	PublishOutcome(ctx context.Context, report *Report) error
}

// Publisher orchestrates publish runs for one blog repository.
type Publisher struct {
	cfg      *config.Config
	repoDir  string
	git      *git.Client
	runner   generator.Runner
	history  HistorySink
	notifier Notifier
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// New creates a Publisher for the repository at repoDir using the loaded
// configuration. History, notification and metrics sinks are optional and
// attached with the With* methods.
func New(cfg *config.Config, repoDir string) *Publisher {
	client := git.NewClient(repoDir).WithIgnoredPaths(cfg.Generator.OutputDir, config.StateDir)
	return &Publisher{
		cfg:     cfg,
		repoDir: repoDir,
		git:     client,
		runner:  generator.NewRunner(cfg.Generator.Command, cfg.Generator.Args),
		metrics: metrics.NoopRecorder{},
		logger:  slog.Default(),
	}
}

// WithHistory attaches a publish history sink.
func (p *Publisher) WithHistory(h HistorySink) *Publisher { p.history = h; return p }

// WithNotifier attaches an outcome notifier.
func (p *Publisher) WithNotifier(n Notifier) *Publisher { p.notifier = n; return p }

// WithMetrics attaches a metrics recorder.
func (p *Publisher) WithMetrics(m metrics.Recorder) *Publisher {
	if m != nil {
		p.metrics = m
	}
	return p
}

// WithLogger attaches a logger.
func (p *Publisher) WithLogger(l *slog.Logger) *Publisher {
	if l != nil {
		p.logger = l
	}
	return p
}

// WithRunner overrides the generator runner (used by tests).
func (p *Publisher) WithRunner(r generator.Runner) *Publisher {
	if r != nil {
		p.runner = r
	}
	return p
}

// Options controls a single publish run.
type Options struct {
	// Message overrides the default timestamped commit message.
	Message string
	// Trigger records what initiated the run; defaults to manual.
	Trigger Trigger
}

// Run executes one publish attempt and returns its report. The returned
// error, when non-nil, equals report.Err and carries the category used for
// exit-code mapping.
func (p *Publisher) Run(ctx context.Context, opts Options) (*Report, error) {
	trigger := opts.Trigger
	if trigger == "" {
		trigger = TriggerManual
	}
	report := newReport(trigger, p.cfg.Git.TargetBranch)

	message := opts.Message
	if message == "" {
		message = "Publish at " + report.Start.Format(time.RFC3339)
	}
	report.Message = message

	log := p.logger.With(
		logfields.PublishID(report.ID),
		logfields.Trigger(string(trigger)),
		logfields.Branch(p.cfg.Git.TargetBranch))
	log.Info("Publish started", logfields.Dir(p.repoDir))

	id := p.cfg.Git.Identity()
	st := &State{
		Branch:    p.cfg.Git.TargetBranch,
		Message:   message,
		Identity:  git.Identity{Name: id.Name, Email: id.Email},
		Target:    git.PushTarget{RemoteName: p.cfg.Git.Remote, RemoteURL: p.cfg.Git.RemoteURL, Token: p.cfg.Git.Token},
		OutputDir: p.cfg.Generator.OutputDir,
	}

	var err error
	if err = p.git.EnsureRepository(); err != nil {
		err = apperrors.VersionControlFailed("open repository", err)
	} else {
		steps := []StepDef{
			{Name: StepVerifyClean, Fn: p.verifyClean},
			{Name: StepPrepareWorktree, Fn: p.prepareWorktree},
			{Name: StepClearOutput, Fn: p.clearOutput},
			{Name: StepGenerate, Fn: p.generate},
			{Name: StepCommit, Fn: p.commit},
			{Name: StepPush, Fn: p.push},
		}
		err = p.runSteps(ctx, report, st, steps)
	}

	report.End = time.Now()
	report.Committed = st.Committed
	report.CommitHash = st.CommitHash
	switch {
	case err != nil:
		report.Outcome = OutcomeFailed
		report.Err = err
	case st.Committed:
		report.Outcome = OutcomePublished
	default:
		report.Outcome = OutcomeNoChanges
	}

	p.metrics.ObservePublishDuration(report.Duration())
	p.metrics.IncPublishOutcome(string(report.Outcome), string(report.Trigger))

	p.record(ctx, report, log)
	p.announce(ctx, report, log)

	if err != nil {
		log.Error("Publish failed",
			logfields.Outcome(string(report.Outcome)),
			logfields.DurationMS(float64(report.Duration().Milliseconds())),
			logfields.Error(err))
		return report, err
	}
	log.Info("Publish complete",
		logfields.Outcome(string(report.Outcome)),
		logfields.Commit(report.CommitHash),
		logfields.DurationMS(float64(report.Duration().Milliseconds())))
	return report, nil
}

// record appends the attempt to the history sink.
func (p *Publisher) record(ctx context.Context, report *Report, log *slog.Logger) {
	if p.history == nil {
		return
	}
	if err := p.history.Record(ctx, report); err != nil {
		log.Warn("Failed to record publish history", logfields.Error(err))
	}
}

// announce delivers the outcome notification.
func (p *Publisher) announce(ctx context.Context, report *Report, log *slog.Logger) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.PublishOutcome(ctx, report); err != nil {
		log.Warn("Failed to deliver publish notification", logfields.Error(err))
	}
}

// verifyClean aborts the publish when the target branch is checked out in the
// authoring tree or when the tree has uncommitted changes. The output
// directory and the state directory are excluded from the cleanliness check,
// so a previous publish cannot dirty the precondition for the next one.
func (p *Publisher) verifyClean(_ context.Context, st *State) error {
	// Publishing onto the checked-out branch would turn the authoring tree
	// into the build artifact.
	current, err := p.git.CurrentBranch()
	if err != nil {
		return apperrors.VersionControlFailed("resolve current branch", err)
	}
	if current != "" && current == st.Branch {
		return apperrors.TargetBranchCheckedOut(st.Branch)
	}

	clean, summary, err := p.git.StatusSummary()
	if err != nil {
		return apperrors.VersionControlFailed("status", err)
	}
	if !clean {
		return apperrors.DirtyWorkingTree(summary)
	}
	return nil
}

// prepareWorktree rebuilds the output directory as a linked worktree bound to
// the target branch, creating the branch on first publish.
func (p *Publisher) prepareWorktree(_ context.Context, st *State) error {
	if err := p.git.ResetWorktreeDir(st.OutputDir); err != nil {
		return apperrors.VersionControlFailed("reset output directory", err)
	}
	exists, err := p.git.BranchExists(st.Branch)
	if err != nil {
		return apperrors.VersionControlFailed("branch lookup", err)
	}
	if err := p.git.AddWorktree(st.OutputDir, st.Branch, !exists); err != nil {
		return apperrors.VersionControlFailed("attach worktree", err)
	}
	return nil
}

// clearOutput empties the worktree so nothing from the previous deployment
// survives unless the generator recreates it.
func (p *Publisher) clearOutput(_ context.Context, st *State) error {
	if err := p.git.ClearWorktreeDir(st.OutputDir); err != nil {
		return apperrors.VersionControlFailed("clear output directory", err)
	}
	return nil
}

// generate runs the external site generator against the repository root.
func (p *Publisher) generate(ctx context.Context, _ *State) error {
	if err := p.runner.Run(ctx, p.repoDir); err != nil {
		return apperrors.GenerationFailed(err)
	}
	return nil
}

// commit stages and commits the regenerated output with the scoped identity.
// No staged changes means the content already matches the branch head; the
// publish continues so the push can repair a remote that is behind.
func (p *Publisher) commit(_ context.Context, st *State) error {
	committed, err := p.git.CommitAll(st.OutputDir, st.Identity, st.Message)
	if err != nil {
		return apperrors.VersionControlFailed("commit", err)
	}
	st.Committed = committed
	hash, err := p.git.WorktreeHead(st.OutputDir)
	if err != nil {
		return apperrors.VersionControlFailed("resolve worktree head", err)
	}
	st.CommitHash = hash
	return nil
}

// push force-updates the target branch on the remote.
func (p *Publisher) push(ctx context.Context, st *State) error {
	if err := p.git.ForcePush(ctx, st.Branch, st.Target); err != nil {
		var authErr *git.AuthError
		if errors.As(err, &authErr) {
			return apperrors.GitAuthError(st.Target.Destination(), err)
		}
		return apperrors.VersionControlFailed("push", err)
	}
	return nil
}

package reviewer

import (
	"context"

	"github.com/gavelbot/gavel/internal/cache"
	"github.com/gavelbot/gavel/internal/diff"
	"github.com/gavelbot/gavel/internal/model"
	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	"github.com/panjf2000/ants/v2"
)

// ProviderFactory builds a provider bound to a request-scoped token.
type ProviderFactory func(token string) (model.CodeProvider, error)

// Deps are the collaborators a Reviewer drives. Provider and Agent are
// required; ProviderFactory is optional and only consulted for tasks that
// carry their own token; Cache memoizes identical-diff reviews.
type Deps struct {
	Provider        model.CodeProvider
	ProviderFactory ProviderFactory
	Agent           model.ReviewAgent
	Cache           *cache.Cache[*model.ReviewOutcome]
}

// Reviewer runs the review workflow: fetch, segment, classify, anchor,
// generate, post. One workflow per pull request, one comment at most per
// eligible file.
type Reviewer struct {
	deps       Deps
	classifier *diff.Classifier
	pool       *ants.Pool

	cfg Config
	log logze.Logger
}

// New creates a new reviewer
func New(cfg Config, deps Deps) (*Reviewer, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "failed to prepare and validate config")
	}
	if deps.Provider == nil {
		return nil, erro.New("provider is required")
	}
	if deps.Agent == nil {
		return nil, erro.New("agent is required")
	}
	if deps.Cache == nil {
		deps.Cache = cache.New[*model.ReviewOutcome](cache.Config{Disabled: true})
	}

	pool, err := ants.NewPool(cfg.PoolSize)
	if err != nil {
		return nil, erro.Wrap(err, "failed to create ants pool")
	}

	return &Reviewer{
		deps:       deps,
		classifier: diff.NewClassifier(cfg.FileFilter),
		pool:       pool,
		cfg:        cfg,
		log:        logze.With("component", "reviewer"),
	}, nil
}

// Enqueue schedules a detached review workflow on the worker pool. The
// workflow gets its own background context: cancelling the request that
// accepted the task must not cancel the review.
func (s *Reviewer) Enqueue(task model.ReviewTask) error {
	return s.pool.Submit(func() {
		if _, err := s.ReviewPullRequest(context.Background(), task); err != nil {
			s.log.Err(err, "review workflow failed", "task", task.String())
		}
	})
}

// Close releases the worker pool. In-flight workflows finish on their own.
func (s *Reviewer) Close() {
	s.pool.Release()
}

// ReviewPullRequest runs one full review workflow synchronously. Upstream
// fetch failures are fatal; everything after degrades per file.
func (s *Reviewer) ReviewPullRequest(ctx context.Context, task model.ReviewTask) (*model.ReviewResult, error) {
	log := s.log.WithFields("project_id", task.ProjectID, "number", task.Number)
	timer := abstract.StartTimer()

	result := &model.ReviewResult{}
	defer func() {
		s.logProcessingResults(result, timer, log)
	}()

	provider, err := s.providerForTask(task)
	if err != nil {
		return result, errm.Wrap(err, "failed to build provider for task")
	}

	pr, err := s.getPullRequest(ctx, provider, task)
	if err != nil {
		return result, errm.Wrap(err, "failed to get pull request")
	}

	log = log.WithFields("commit_sha", lang.TruncateString(pr.SHA, 8))
	log.Infof("starting pull request review: %s", pr.Title)

	rawDiff, err := s.getPullRequestDiff(ctx, provider, task)
	if err != nil {
		return result, errm.Wrap(err, "failed to get pull request diff")
	}

	// Malformed diff text is not an error: both degrade to empty sets and
	// the workflow finishes with nothing to review.
	sections := diff.Segment(rawDiff)
	added, modified := s.classifier.Classify(rawDiff)

	files := make([]*diff.PatchedFile, 0, len(added)+len(modified))
	files = append(files, added...)
	files = append(files, modified...)

	if len(files) == 0 {
		log.InfoIf(s.cfg.Verbose, "no files to review after filtering")
		result.IsSuccess = true
		return result, nil
	}
	if len(files) > s.cfg.MaxFiles {
		log.Warn("reached maximum files limit", "limit", s.cfg.MaxFiles, "files", len(files))
		files = files[:s.cfg.MaxFiles]
	}

	for _, pf := range files {
		result.ProcessedFiles++

		section, ok := sections[pf.Path]
		if !ok {
			log.Warn("no diff section for classified file", "file", pf.Path)
			result.SkippedFiles++
			continue
		}

		anchor, err := diff.AnchorFor(pf)
		if err != nil {
			log.Err(err, "failed to compute anchor", "file", pf.Path)
			result.SkippedFiles++
			continue
		}

		outcome, err := s.reviewFile(ctx, task, pf.Path, section)
		if err != nil {
			// Timeout or unparseable output: local to this file.
			log.Err(err, "failed to generate review", "file", pf.Path)
			result.SkippedFiles++
			continue
		}

		if !outcome.HasFindings() {
			log.DebugIf(s.cfg.Verbose, "no issues found", "file", pf.Path)
			continue
		}

		comment := &model.ReviewComment{
			Path:      pf.Path,
			CommitSHA: pr.SHA,
			Anchor:    anchor,
			Body:      FormatComment(outcome),
		}
		if err := s.postComment(ctx, provider, task, pr, comment); err != nil {
			msg := "failed to create review comment"
			log.Error(msg, "error", err, "file", pf.Path, "line", anchor.EndLine)
			result.Errors = append(result.Errors, errm.Wrap(err, msg))
			continue
		}

		result.CommentsCreated++
		log.InfoIf(s.cfg.Verbose, "created comment", "file", pf.Path,
			"start_line", anchor.StartLine, "end_line", anchor.EndLine)
	}

	result.IsSuccess = len(result.Errors) == 0
	return result, nil
}

// reviewFile asks the agent for one file's review under the per-file
// timeout, memoized on the diff content so an unchanged file costs one call.
func (s *Reviewer) reviewFile(ctx context.Context, task model.ReviewTask, path, section string) (*model.ReviewOutcome, error) {
	key := cache.Key(path, task.Model, section)

	return s.deps.Cache.GetOrCompute(key, func() (*model.ReviewOutcome, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.FileTimeout)
		defer cancel()

		return s.deps.Agent.ReviewFileDiff(callCtx, model.FileReviewRequest{
			Path:  path,
			Diff:  section,
			Model: task.Model,
		})
	})
}

// Every provider call carries its own deadline: detached workflows run on a
// background context, so without one a hung upstream would stall the worker
// forever.

func (s *Reviewer) getPullRequest(ctx context.Context, provider model.CodeProvider, task model.ReviewTask) (*model.PullRequest, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()
	return provider.GetPullRequest(callCtx, task.ProjectID, task.Number)
}

func (s *Reviewer) getPullRequestDiff(ctx context.Context, provider model.CodeProvider, task model.ReviewTask) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()
	return provider.GetPullRequestDiff(callCtx, task.ProjectID, task.Number)
}

func (s *Reviewer) postComment(ctx context.Context, provider model.CodeProvider, task model.ReviewTask, pr *model.PullRequest, comment *model.ReviewComment) error {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()
	return provider.CreateReviewComment(callCtx, task.ProjectID, task.Number, pr, comment)
}

func (s *Reviewer) providerForTask(task model.ReviewTask) (model.CodeProvider, error) {
	if task.Token == "" || s.deps.ProviderFactory == nil {
		return s.deps.Provider, nil
	}
	return s.deps.ProviderFactory(task.Token)
}

func (s *Reviewer) logProcessingResults(result *model.ReviewResult, timer abstract.Timer, log logze.Logger) {
	log = log.WithFields(
		"processed_files", result.ProcessedFiles,
		"comments_created", result.CommentsCreated,
		"skipped_files", result.SkippedFiles,
		"elapsed_time", timer.ElapsedTime().String(),
	)
	if result.IsSuccess {
		log.Info("successfully reviewed")
		return
	}

	log.Error("review completed with errors", "error_count", len(result.Errors))
	for _, err := range result.Errors {
		log.Err(err, "processing error")
	}
}

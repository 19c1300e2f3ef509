package git

import (
	stderrors "errors"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"testament/internal/common"
	"testament/internal/observability"
	"testament/pkg/errors"
	"testament/pkg/models"
)

// Resolver inspects a working tree and produces its testament.
// It never writes to the repository and is safe for concurrent use.
type Resolver struct {
	includeUntracked bool
	fallbackTime     func() time.Time
	logger           *observability.Logger
	metrics          *resolveMetrics
}

// Option configures a Resolver
type Option func(*Resolver)

// WithIncludeUntracked counts untracked paths as modifications
func WithIncludeUntracked(include bool) Option {
	return func(r *Resolver) {
		r.includeUntracked = include
	}
}

// WithFallbackTime sets the clock consulted when no commit is available
func WithFallbackTime(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.fallbackTime = now
		}
	}
}

// WithLogger sets the logger used for diagnostics
func WithLogger(logger *observability.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records resolution counters and timings in reg
func WithMetrics(reg *observability.MetricsRegistry) Option {
	return func(r *Resolver) {
		if reg != nil {
			r.metrics = newResolveMetrics(reg)
		}
	}
}

// NewResolver creates a Resolver. By default untracked files are ignored, the
// fallback time is the wall clock and diagnostics go to the default logger.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		fallbackTime: time.Now,
		logger:       observability.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = newResolveMetrics(observability.NewMetricsRegistry(""))
	}
	return r
}

// Resolve describes the working tree containing path.
//
// When no repository exists at or above path, or the repository has no
// commit yet, the result is a *models.NoRepository carrying the fallback
// time. Every other failure is returned as an error.
func (r *Resolver) Resolve(path string) (_ models.Testament, err error) {
	defer errors.RecoverPanic(&err)
	start := time.Now()
	defer func() {
		r.metrics.duration.Observe(time.Since(start).Seconds())
	}()

	dir, err := common.ResolvePath(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InvalidInput("path", path, "does not exist")
		}
		return nil, errors.MetadataCorrupt("Failed to resolve path", err).WithContext("path", path)
	}
	logger := r.logger.WithField("path", dir)

	repo, root, err := openRepository(dir)
	if errors.IsCode(err, errors.ErrCodeRepositoryUnavailable) {
		logger.Debugf("no repository found at or above %s, using fallback time", dir)
		return r.fallback(), nil
	}
	if err != nil {
		return nil, err
	}
	logger = logger.WithField("root", root)

	head, err := repo.Head()
	if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
		logger.Debugf("HEAD in %s has no commit, using fallback time", root)
		return r.fallback(), nil
	}
	if err != nil {
		return nil, errors.MetadataCorrupt("Failed to resolve HEAD", err).WithContext("path", root)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, errors.MetadataCorrupt("Failed to read HEAD commit", err).
			WithContext("commit", head.Hash().String())
	}
	logger.DebugWithFields("resolved HEAD", map[string]interface{}{"commit": commit.Hash.String()})

	branch, err := branchName(repo)
	if err != nil {
		return nil, err
	}

	tag, err := nearestTag(repo, commit.Hash, logger, r.metrics)
	if err != nil {
		return nil, err
	}

	mods, err := modifications(repo, commit, r.includeUntracked, logger)
	if err != nil {
		return nil, err
	}
	r.metrics.resolves.Inc()
	r.metrics.modifications.Add(float64(len(mods)))
	logger.Infof("resolved %s with %d modification(s)", commit.Hash.String()[:models.ShortHashLength], len(mods))

	return &models.Repository{
		Commit:        models.NewCommitInfo(commit.Hash.String(), commit.Committer.When),
		Tag:           tag,
		Branch:        branch,
		Modifications: mods,
	}, nil
}

func (r *Resolver) fallback() *models.NoRepository {
	r.metrics.fallbacks.Inc()
	return &models.NoRepository{FallbackTime: r.fallbackTime()}
}

// branchName returns the branch HEAD points at, or "" for a detached HEAD
func branchName(repo *git.Repository) (string, error) {
	ref, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", errors.MetadataCorrupt("Failed to read HEAD", err)
	}
	if ref.Type() != plumbing.SymbolicReference || !ref.Target().IsBranch() {
		return "", nil
	}
	return ref.Target().Short(), nil
}

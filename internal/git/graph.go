package git

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"testament/internal/observability"
	"testament/pkg/errors"
)

// commitGraph exposes the parent edges of the history. Parents are returned
// first parent first; a commit at a shallow boundary has none.
type commitGraph interface {
	Parents(h plumbing.Hash) ([]plumbing.Hash, error)
}

// repoGraph reads parent edges from a repository's object store
type repoGraph struct {
	repo    *git.Repository
	shallow map[plumbing.Hash]struct{}
	loads   *observability.Counter
}

func newRepoGraph(repo *git.Repository, loads *observability.Counter) (*repoGraph, error) {
	hashes, err := repo.Storer.Shallow()
	if err != nil {
		return nil, errors.MetadataCorrupt("Failed to read shallow boundary", err)
	}

	shallow := make(map[plumbing.Hash]struct{}, len(hashes))
	for _, h := range hashes {
		shallow[h] = struct{}{}
	}
	return &repoGraph{repo: repo, shallow: shallow, loads: loads}, nil
}

// Parents implements commitGraph
func (g *repoGraph) Parents(h plumbing.Hash) ([]plumbing.Hash, error) {
	if _, ok := g.shallow[h]; ok {
		return nil, nil
	}

	commit, err := g.repo.CommitObject(h)
	if err != nil {
		return nil, errors.MetadataCorrupt("Failed to read commit", err).
			WithContext("commit", h.String())
	}
	g.loads.Inc()
	return commit.ParentHashes, nil
}

// nearestTargets walks the ancestry of head and returns the smallest distance
// at which any commit in targets is found, together with every target at that
// distance. It returns -1 when no target is reachable.
//
// Commits on the first-parent chain of head take their position on that chain
// as their distance, whatever other route reaches them. Every other ancestor
// takes its shortest edge count from the nearest already-labelled commit.
// Levels are expanded in increasing distance, so the walk stops as soon as one
// level holds a target.
func nearestTargets(g commitGraph, head plumbing.Hash, targets map[plumbing.Hash]struct{}) (int, []plumbing.Hash, error) {
	if len(targets) == 0 {
		return -1, nil, nil
	}

	dist := map[plumbing.Hash]int{head: 0}
	parents := make(map[plumbing.Hash][]plumbing.Hash)
	levels := map[int][]plumbing.Hash{0: {head}}
	deepest := 0

	loadParents := func(h plumbing.Hash) ([]plumbing.Hash, error) {
		if ps, ok := parents[h]; ok {
			return ps, nil
		}
		ps, err := g.Parents(h)
		if err != nil {
			return nil, err
		}
		parents[h] = ps
		return ps, nil
	}

	// extendChain labels the first-parent chain past its current end. With
	// stopAtTarget it pauses on the first tagged commit; nothing beyond it can
	// win while the history stays linear.
	chainEnd, chainDone := head, false
	extendChain := func(stopAtTarget bool) error {
		for !chainDone {
			if _, ok := targets[chainEnd]; ok && stopAtTarget {
				return nil
			}
			ps, err := loadParents(chainEnd)
			if err != nil {
				return err
			}
			if len(ps) == 0 {
				chainDone = true
				return nil
			}
			next := ps[0]
			if _, seen := dist[next]; seen {
				chainDone = true
				return nil
			}
			i := dist[chainEnd] + 1
			dist[next] = i
			levels[i] = append(levels[i], next)
			if i > deepest {
				deepest = i
			}
			chainEnd = next
		}
		return nil
	}

	if err := extendChain(true); err != nil {
		return -1, nil, err
	}

	for d := 0; d <= deepest; d++ {
		var found []plumbing.Hash
		for _, h := range levels[d] {
			if _, ok := targets[h]; ok {
				found = append(found, h)
			}
		}
		if len(found) > 0 {
			return d, found, nil
		}

		for _, h := range levels[d] {
			ps, err := loadParents(h)
			if err != nil {
				return -1, nil, err
			}
			for _, p := range ps {
				if _, seen := dist[p]; seen {
					continue
				}
				// A commit off the labelled chain may still sit further down
				// it, so the chain is finished before any side label is given.
				if !chainDone {
					if err := extendChain(false); err != nil {
						return -1, nil, err
					}
					if _, seen := dist[p]; seen {
						continue
					}
				}
				dist[p] = d + 1
				levels[d+1] = append(levels[d+1], p)
				if d+1 > deepest {
					deepest = d + 1
				}
			}
		}
	}

	return -1, nil, nil
}

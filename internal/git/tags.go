package git

import (
	stderrors "errors"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"testament/internal/observability"
	"testament/pkg/errors"
	"testament/pkg/models"
)

// maxTagChain bounds how many tag objects are peeled before giving up
const maxTagChain = 16

// tagRef is one tag peeled to the commit it names
type tagRef struct {
	Name      string
	Annotated bool
	Commit    plumbing.Hash
}

// tagIndex maps commits to the tags pointing at them
type tagIndex map[plumbing.Hash][]tagRef

// targets returns the set of tagged commits
func (idx tagIndex) targets() map[plumbing.Hash]struct{} {
	set := make(map[plumbing.Hash]struct{}, len(idx))
	for h := range idx {
		set[h] = struct{}{}
	}
	return set
}

// indexTags reads every refs/tags/* reference and peels it to a commit.
// Tags naming trees or blobs are skipped.
func indexTags(repo *git.Repository, logger *observability.Logger) (tagIndex, error) {
	refs, err := repo.Tags()
	if err != nil {
		return nil, errors.MetadataCorrupt("Failed to list tags", err)
	}
	defer refs.Close()

	idx := make(tagIndex)
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		tag, ok, err := peelTag(repo, ref)
		if err != nil {
			return err
		}
		if !ok {
			logger.WarnWithFields("skipping tag that does not name a commit", map[string]interface{}{
				"tag": ref.Name().Short(),
			})
			return nil
		}
		idx[tag.Commit] = append(idx[tag.Commit], tag)
		return nil
	})
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, err
		}
		return nil, errors.MetadataCorrupt("Failed to read tags", err)
	}

	return idx, nil
}

// peelTag follows a tag reference through any chain of tag objects.
// ok is false when the chain ends at something other than a commit.
func peelTag(repo *git.Repository, ref *plumbing.Reference) (tagRef, bool, error) {
	tag := tagRef{Name: ref.Name().Short()}

	obj, err := object.GetObject(repo.Storer, ref.Hash())
	for i := 0; err == nil && i < maxTagChain; i++ {
		switch o := obj.(type) {
		case *object.Commit:
			tag.Commit = o.Hash
			return tag, true, nil
		case *object.Tag:
			tag.Annotated = true
			obj, err = o.Object()
		default:
			return tag, false, nil
		}
	}
	if err != nil {
		return tag, false, errors.MetadataCorrupt("Failed to read tag target", err).
			WithContext("tag", tag.Name)
	}
	return tag, false, errors.MetadataCorrupt("Tag chain too deep", stderrors.New("tag object cycle")).
		WithContext("tag", tag.Name)
}

// tagLess orders tag candidates at equal distance: annotated tags first,
// then by name.
func tagLess(a, b tagRef) bool {
	if a.Annotated != b.Annotated {
		return a.Annotated
	}
	return a.Name < b.Name
}

// selectTag picks the winning tag among candidates found at distance.
func selectTag(candidates []tagRef, distance int) (*models.TagInfo, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	sorted := append([]tagRef(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool { return tagLess(sorted[i], sorted[j]) })

	if len(sorted) > 1 && !tagLess(sorted[0], sorted[1]) {
		return nil, errors.AmbiguousTag(sorted[0].Name, sorted[1].Name, distance)
	}

	return &models.TagInfo{
		Name:         sorted[0].Name,
		Annotated:    sorted[0].Annotated,
		CommitsSince: distance,
	}, nil
}

// nearestTag finds the tag closest to head along its ancestry
func nearestTag(repo *git.Repository, head plumbing.Hash, logger *observability.Logger, m *resolveMetrics) (*models.TagInfo, error) {
	idx, err := indexTags(repo, logger)
	if err != nil {
		return nil, err
	}
	for _, refs := range idx {
		m.tagsIndexed.Add(float64(len(refs)))
	}
	if len(idx) == 0 {
		logger.Debug("repository has no tags")
		return nil, nil
	}

	graph, err := newRepoGraph(repo, m.commitsLoaded)
	if err != nil {
		return nil, err
	}

	distance, commits, err := nearestTargets(graph, head, idx.targets())
	if err != nil {
		return nil, err
	}
	if distance < 0 {
		if len(graph.shallow) > 0 {
			logger.Warnf("no tag is reachable from HEAD within the shallow history; %d tag(s) may lie past the boundary", len(idx))
		} else {
			logger.Debug("no tag is reachable from HEAD")
		}
		return nil, nil
	}

	var candidates []tagRef
	for _, c := range commits {
		candidates = append(candidates, idx[c]...)
	}
	return selectTag(candidates, distance)
}

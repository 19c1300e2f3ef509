package git

import (
	stderrors "errors"
	"os"
	pathpkg "path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"

	"testament/internal/observability"
	"testament/pkg/errors"
	"testament/pkg/models"
)

// modeClass groups file modes the way git decides a type change:
// switching between classes is a type change, an executable bit is not.
type modeClass int

const (
	classMissing modeClass = iota
	classFile
	classSymlink
	classSubmodule
	classDir
)

func classOf(m filemode.FileMode) modeClass {
	switch m {
	case filemode.Regular, filemode.Executable, filemode.Deprecated:
		return classFile
	case filemode.Symlink:
		return classSymlink
	case filemode.Submodule:
		return classSubmodule
	case filemode.Dir:
		return classDir
	default:
		return classMissing
	}
}

// kindOf maps a go-git status code to a modification kind.
// ok is false for unmodified entries.
func kindOf(code git.StatusCode) (kind models.ModificationKind, ok bool) {
	switch code {
	case git.Deleted:
		return models.KindDeleted, true
	case git.Renamed:
		return models.KindRenamed, true
	case git.Modified, git.UpdatedButUnmerged:
		return models.KindModified, true
	case git.Added, git.Copied:
		return models.KindAdded, true
	case git.Untracked:
		return models.KindUntracked, true
	default:
		return 0, false
	}
}

// statusInputs bundles the three trees a path is compared across
type statusInputs struct {
	root  string
	head  *object.Tree
	index *index.Index
}

func (in *statusInputs) headEntry(path string) (plumbing.Hash, filemode.FileMode, bool) {
	entry, err := in.head.FindEntry(path)
	if err != nil {
		return plumbing.ZeroHash, filemode.Empty, false
	}
	return entry.Hash, entry.Mode, true
}

func (in *statusInputs) indexEntry(path string) (plumbing.Hash, filemode.FileMode, bool) {
	entry, err := in.index.Entry(path)
	if err != nil {
		return plumbing.ZeroHash, filemode.Empty, false
	}
	return entry.Hash, entry.Mode, true
}

// currentMode is the mode of path on disk, falling back to the index
func (in *statusInputs) currentMode(path string) filemode.FileMode {
	info, err := os.Lstat(filepath.Join(in.root, filepath.FromSlash(path)))
	if err == nil {
		if m, err := filemode.NewFromOSFileMode(info.Mode()); err == nil {
			return m
		}
	}
	if _, m, ok := in.indexEntry(path); ok {
		return m
	}
	return filemode.Empty
}

func (in *statusInputs) isSubmodule(path string) bool {
	if _, m, ok := in.headEntry(path); ok && m == filemode.Submodule {
		return true
	}
	if _, m, ok := in.indexEntry(path); ok && m == filemode.Submodule {
		return true
	}
	return false
}

// typeChanged reports whether path switched between file, symlink and
// submodule relative to HEAD
func (in *statusInputs) typeChanged(path string) bool {
	_, headMode, ok := in.headEntry(path)
	if !ok {
		return false
	}
	now := classOf(in.currentMode(path))
	return now != classMissing && now != classOf(headMode)
}

// classify folds the staging and worktree codes of one path into a single
// kind, keeping the dominant one.
func (in *statusInputs) classify(path string, fs *git.FileStatus) (models.ModificationKind, bool) {
	var (
		best  models.ModificationKind
		found bool
	)
	for _, code := range []git.StatusCode{fs.Staging, fs.Worktree} {
		kind, ok := kindOf(code)
		if !ok {
			continue
		}
		switch kind {
		case models.KindModified:
			if in.typeChanged(path) {
				kind = models.KindTypeChanged
			}
		case models.KindDeleted:
			// A staged addition later removed from disk never existed in
			// HEAD, so against HEAD it is still an addition.
			if _, _, tracked := in.headEntry(path); !tracked {
				kind = models.KindAdded
			}
		case models.KindUntracked:
			// go-git reports a path removed from the index but still on
			// disk as untracked; against HEAD it is a deletion.
			if _, _, tracked := in.headEntry(path); tracked {
				kind = models.KindDeleted
			}
		}
		if !found || kind.Dominates(best) {
			best, found = kind, true
		}
	}
	return best, found
}

// detectRenames pairs staged deletions with staged additions of identical
// content. The added path becomes a rename and the deleted path is dropped.
func (in *statusInputs) detectRenames(status git.Status, kinds map[string]models.ModificationKind) {
	deletedByHash := make(map[plumbing.Hash][]string)
	for path, fs := range status {
		if fs.Staging != git.Deleted {
			continue
		}
		if h, _, ok := in.headEntry(path); ok {
			deletedByHash[h] = append(deletedByHash[h], path)
		}
	}
	if len(deletedByHash) == 0 {
		return
	}
	for _, paths := range deletedByHash {
		sort.Strings(paths)
	}

	var added []string
	for path, fs := range status {
		if fs.Staging == git.Added {
			added = append(added, path)
		}
	}
	sort.Strings(added)

	for _, path := range added {
		h, _, ok := in.indexEntry(path)
		if !ok {
			continue
		}
		sources := deletedByHash[h]
		if len(sources) == 0 {
			continue
		}
		from := sources[0]
		deletedByHash[h] = sources[1:]

		if kinds[from] == models.KindDeleted {
			delete(kinds, from)
		}
		if models.KindRenamed.Dominates(kinds[path]) {
			kinds[path] = models.KindRenamed
		}
	}
}

// collapseUntracked folds untracked files into the outermost directory that
// holds no tracked file, listed with a trailing slash as git status does.
func (in *statusInputs) collapseUntracked(kinds map[string]models.ModificationKind) map[string]models.ModificationKind {
	tracked := make(map[string]struct{})
	for _, e := range in.index.Entries {
		for dir := pathpkg.Dir(e.Name); dir != "."; dir = pathpkg.Dir(dir) {
			if _, ok := tracked[dir]; ok {
				break
			}
			tracked[dir] = struct{}{}
		}
	}

	out := make(map[string]models.ModificationKind, len(kinds))
	for p, kind := range kinds {
		if kind == models.KindUntracked {
			parts := strings.Split(p, "/")
			for i := 1; i < len(parts); i++ {
				dir := strings.Join(parts[:i], "/")
				if _, ok := tracked[dir]; !ok {
					p = dir + "/"
					break
				}
			}
			if _, ok := out[p]; ok {
				continue
			}
		}
		out[p] = kind
	}
	return out
}

// modifications lists every path of the working tree that differs from head.
// Untracked paths are included only when includeUntracked is set.
func modifications(repo *git.Repository, head *object.Commit, includeUntracked bool, logger *observability.Logger) ([]models.Modification, error) {
	wt, err := repo.Worktree()
	if stderrors.Is(err, git.ErrIsBareRepository) {
		logger.Debug("bare repository has no working tree")
		return []models.Modification{}, nil
	}
	if err != nil {
		return nil, errors.MetadataCorrupt("Failed to open working tree", err)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, errors.MetadataCorrupt("Failed to compute working tree status", err)
	}

	tree, err := head.Tree()
	if err != nil {
		return nil, errors.MetadataCorrupt("Failed to read HEAD tree", err).
			WithContext("commit", head.Hash.String())
	}

	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, errors.MetadataCorrupt("Failed to read index", err)
	}

	in := &statusInputs{root: wt.Filesystem.Root(), head: tree, index: idx}

	kinds := make(map[string]models.ModificationKind, len(status))
	for path, fs := range status {
		if in.isSubmodule(path) {
			continue
		}
		if kind, ok := in.classify(path, fs); ok {
			kinds[path] = kind
		}
	}
	in.detectRenames(status, kinds)
	if includeUntracked {
		kinds = in.collapseUntracked(kinds)
	}

	mods := make([]models.Modification, 0, len(kinds))
	for path, kind := range kinds {
		if kind == models.KindUntracked && !includeUntracked {
			continue
		}
		mods = append(mods, models.Modification{Path: path, Kind: kind})
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].Path < mods[j].Path })

	return mods, nil
}

package git

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"testament/internal/common"
	"testament/pkg/errors"
)

// findWorkTree returns the nearest directory at or above dir that holds a
// .git entry. found is false when no ancestor has one.
func findWorkTree(dir string) (root string, found bool, err error) {
	for _, candidate := range common.Ancestors(dir) {
		_, err := os.Lstat(filepath.Join(candidate, git.GitDirName))
		if err == nil {
			return candidate, true, nil
		}
		if !os.IsNotExist(err) {
			return "", false, errors.MetadataCorrupt("Failed to inspect repository metadata", err).
				WithContext("path", candidate)
		}
	}
	return "", false, nil
}

// openRepository opens the repository whose working tree contains dir.
// Only the absence of any .git entry is reported as RepositoryUnavailable;
// a .git entry that go-git cannot open is corrupt metadata.
func openRepository(dir string) (*git.Repository, string, error) {
	root, found, err := findWorkTree(dir)
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", errors.RepositoryUnavailable(dir, git.ErrRepositoryNotExists)
	}

	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{
		DetectDotGit:          false,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, "", errors.MetadataCorrupt("Failed to open repository", err).
			WithContext("path", root)
	}

	return repo, root, nil
}

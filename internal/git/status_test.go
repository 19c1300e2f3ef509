package git

import (
	"os"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testament/internal/observability"
	"testament/internal/testutil"
	"testament/pkg/models"
)

func headModifications(t *testing.T, b *testutil.RepoBuilder, includeUntracked bool) []models.Modification {
	t.Helper()
	commit, err := b.Repo.CommitObject(b.Head())
	require.NoError(t, err)

	mods, err := modifications(b.Repo, commit, includeUntracked, observability.NewNopLogger())
	require.NoError(t, err)
	return mods
}

func TestModificationsCleanTree(t *testing.T) {
	b := testutil.NewRepo(t)
	b.Commits(2)

	mods := headModifications(t, b, true)
	assert.NotNil(t, mods)
	assert.Empty(t, mods)
}

func TestModificationsKinds(t *testing.T) {
	b := testutil.NewRepo(t)
	b.CommitFile("edited.txt", "v1", "add edited")
	b.CommitFile("removed.txt", "gone soon", "add removed")
	b.CommitFile("staged-removed.txt", "gone soon", "add staged-removed")

	b.WriteFile("edited.txt", "v2")
	b.Remove("removed.txt")
	b.StageRemove("staged-removed.txt")
	b.WriteFile("new.txt", "fresh")
	b.Stage("new.txt")
	b.WriteFile("stray.txt", "untracked")

	mods := headModifications(t, b, false)
	assert.Equal(t, []models.Modification{
		{Path: "edited.txt", Kind: models.KindModified},
		{Path: "new.txt", Kind: models.KindAdded},
		{Path: "removed.txt", Kind: models.KindDeleted},
		{Path: "staged-removed.txt", Kind: models.KindDeleted},
	}, mods)
}

func TestModificationsUntrackedOptIn(t *testing.T) {
	b := testutil.NewRepo(t)
	b.Commit("base")
	b.WriteFile("stray.txt", "untracked")
	b.WriteFile("nested/also.txt", "untracked")

	assert.Empty(t, headModifications(t, b, false))

	mods := headModifications(t, b, true)
	assert.Equal(t, []models.Modification{
		{Path: "nested/", Kind: models.KindUntracked},
		{Path: "stray.txt", Kind: models.KindUntracked},
	}, mods)
}

func TestModificationsUntrackedDirectoryCountsOnce(t *testing.T) {
	b := testutil.NewRepo(t)
	b.CommitFile("src/main.go", "package main", "add main")
	b.WriteFile("src/extra.go", "package main")
	b.WriteFile("src/gen/a.go", "package gen")
	b.WriteFile("vendor/x/a.go", "package x")
	b.WriteFile("vendor/x/b.go", "package x")
	b.WriteFile("vendor/y.txt", "y")

	mods := headModifications(t, b, true)
	assert.Equal(t, []models.Modification{
		{Path: "src/extra.go", Kind: models.KindUntracked},
		{Path: "src/gen/", Kind: models.KindUntracked},
		{Path: "vendor/", Kind: models.KindUntracked},
	}, mods)
}

func TestModificationsHonourGitignore(t *testing.T) {
	b := testutil.NewRepo(t)
	b.CommitFile(".gitignore", "*.log\n", "ignore logs")
	b.WriteFile("build.log", "noise")

	assert.Empty(t, headModifications(t, b, true))
}

func TestModificationsDeletionDominates(t *testing.T) {
	b := testutil.NewRepo(t)
	b.CommitFile("doc.txt", "v1", "add doc")

	// Staged edit, then the file is removed from disk.
	b.WriteFile("doc.txt", "v2")
	b.Stage("doc.txt")
	b.Remove("doc.txt")

	mods := headModifications(t, b, false)
	assert.Equal(t, []models.Modification{{Path: "doc.txt", Kind: models.KindDeleted}}, mods)
}

func TestModificationsStagedAdditionRemovedFromDisk(t *testing.T) {
	b := testutil.NewRepo(t)
	b.Commit("base")

	b.WriteFile("new.txt", "draft")
	b.Stage("new.txt")
	b.Remove("new.txt")

	mods := headModifications(t, b, false)
	assert.Equal(t, []models.Modification{{Path: "new.txt", Kind: models.KindAdded}}, mods)
}

func TestModificationsStagedAndWorktreeEditCountOnce(t *testing.T) {
	b := testutil.NewRepo(t)
	b.CommitFile("doc.txt", "v1", "add doc")

	b.WriteFile("doc.txt", "v2")
	b.Stage("doc.txt")
	b.WriteFile("doc.txt", "v3")

	mods := headModifications(t, b, false)
	assert.Equal(t, []models.Modification{{Path: "doc.txt", Kind: models.KindModified}}, mods)
}

func TestModificationsRename(t *testing.T) {
	b := testutil.NewRepo(t)
	b.CommitFile("old-name.txt", "same content", "add file")

	b.Move("old-name.txt", "new-name.txt")

	mods := headModifications(t, b, false)
	assert.Equal(t, []models.Modification{{Path: "new-name.txt", Kind: models.KindRenamed}}, mods)
}

func TestModificationsTypeChange(t *testing.T) {
	b := testutil.NewRepo(t)
	b.CommitFile("target.txt", "target", "add target")
	b.CommitFile("link", "was a file", "add link")

	b.Remove("link")
	require.NoError(t, os.Symlink("target.txt", b.Path("link")))

	mods := headModifications(t, b, false)
	assert.Equal(t, []models.Modification{{Path: "link", Kind: models.KindTypeChanged}}, mods)
}

func TestModificationsExecutableBitIsNotTypeChange(t *testing.T) {
	b := testutil.NewRepo(t)
	b.CommitFile("run.sh", "#!/bin/sh\n", "add script")

	require.NoError(t, os.Chmod(b.Path("run.sh"), 0755))

	mods := headModifications(t, b, false)
	for _, m := range mods {
		assert.NotEqual(t, models.KindTypeChanged, m.Kind)
	}
}

func TestModificationCountMonotonic(t *testing.T) {
	b := testutil.NewRepo(t)
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		b.CommitFile(name, "v1", "add "+name)
	}

	for i, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		b.WriteFile(name, "v2")
		assert.Len(t, headModifications(t, b, false), i+1)
	}

	// Touching an already modified path again does not add an entry.
	b.WriteFile("a.txt", "v3")
	assert.Len(t, headModifications(t, b, false), 4)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		code     git.StatusCode
		expected models.ModificationKind
		ok       bool
	}{
		{git.Unmodified, 0, false},
		{git.Deleted, models.KindDeleted, true},
		{git.Renamed, models.KindRenamed, true},
		{git.Modified, models.KindModified, true},
		{git.UpdatedButUnmerged, models.KindModified, true},
		{git.Added, models.KindAdded, true},
		{git.Copied, models.KindAdded, true},
		{git.Untracked, models.KindUntracked, true},
	}

	for _, tt := range tests {
		kind, ok := kindOf(tt.code)
		assert.Equal(t, tt.ok, ok, "code %q", tt.code)
		if tt.ok {
			assert.Equal(t, tt.expected, kind, "code %q", tt.code)
		}
	}
}

func TestClassOf(t *testing.T) {
	assert.Equal(t, classFile, classOf(filemode.Regular))
	assert.Equal(t, classFile, classOf(filemode.Executable))
	assert.Equal(t, classSymlink, classOf(filemode.Symlink))
	assert.Equal(t, classSubmodule, classOf(filemode.Submodule))
	assert.Equal(t, classMissing, classOf(filemode.Empty))
}

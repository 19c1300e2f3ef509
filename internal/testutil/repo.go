package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"testament/internal/common"
)

// BaseTime is the committer time of the first commit a RepoBuilder makes
var BaseTime = time.Date(2019, 4, 2, 10, 0, 0, 0, time.UTC)

// RepoBuilder creates throwaway git repositories for tests
type RepoBuilder struct {
	t     *testing.T
	Dir   string
	Repo  *git.Repository
	wt    *git.Worktree
	clock time.Time
	seq   int
}

// NewRepo initializes an empty repository in a temporary directory
func NewRepo(t *testing.T) *RepoBuilder {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	return &RepoBuilder{t: t, Dir: dir, Repo: repo, wt: wt, clock: BaseTime}
}

func (b *RepoBuilder) signature() *object.Signature {
	return &object.Signature{Name: "Test User", Email: "test@example.com", When: b.clock}
}

// Path returns the absolute path of a repository-relative name
func (b *RepoBuilder) Path(name string) string {
	return filepath.Join(b.Dir, filepath.FromSlash(name))
}

// WriteFile writes content to name without staging it
func (b *RepoBuilder) WriteFile(name, content string) {
	b.t.Helper()
	path := b.Path(name)
	require.NoError(b.t, os.MkdirAll(filepath.Dir(path), common.DirPermissionNormal))
	require.NoError(b.t, os.WriteFile(path, []byte(content), common.FilePermissionNormal))
}

// Remove deletes name from the working tree without staging it
func (b *RepoBuilder) Remove(name string) {
	b.t.Helper()
	require.NoError(b.t, os.Remove(b.Path(name)))
}

// Stage adds name to the index
func (b *RepoBuilder) Stage(name string) {
	b.t.Helper()
	_, err := b.wt.Add(name)
	require.NoError(b.t, err)
}

// StageRemove removes name from the index and the working tree
func (b *RepoBuilder) StageRemove(name string) {
	b.t.Helper()
	_, err := b.wt.Remove(name)
	require.NoError(b.t, err)
}

// Move renames a tracked file and stages both sides
func (b *RepoBuilder) Move(from, to string) {
	b.t.Helper()
	_, err := b.wt.Move(from, to)
	require.NoError(b.t, err)
}

// CommitFile writes, stages and commits one file
func (b *RepoBuilder) CommitFile(name, content, message string) plumbing.Hash {
	b.t.Helper()
	b.WriteFile(name, content)
	b.Stage(name)
	return b.commit(message, nil)
}

// Commit records a new commit touching a generated file
func (b *RepoBuilder) Commit(message string) plumbing.Hash {
	b.t.Helper()
	b.seq++
	return b.CommitFile(fmt.Sprintf("file-%03d.txt", b.seq), message, message)
}

// Commits records n commits and returns the last hash
func (b *RepoBuilder) Commits(n int) plumbing.Hash {
	b.t.Helper()
	var last plumbing.Hash
	for i := 0; i < n; i++ {
		last = b.Commit(fmt.Sprintf("commit %d", i))
	}
	return last
}

// Merge records a merge commit of HEAD and other, HEAD as first parent
func (b *RepoBuilder) Merge(other plumbing.Hash, message string) plumbing.Hash {
	b.t.Helper()
	head := b.Head()
	b.seq++
	name := fmt.Sprintf("merge-%03d.txt", b.seq)
	b.WriteFile(name, message)
	b.Stage(name)
	return b.commit(message, []plumbing.Hash{head, other})
}

func (b *RepoBuilder) commit(message string, parents []plumbing.Hash) plumbing.Hash {
	b.t.Helper()
	h, err := b.wt.Commit(message, &git.CommitOptions{
		Author:            b.signature(),
		Parents:           parents,
		AllowEmptyCommits: true,
	})
	require.NoError(b.t, err)
	b.clock = b.clock.Add(time.Minute)
	return h
}

// Head returns the commit HEAD resolves to
func (b *RepoBuilder) Head() plumbing.Hash {
	b.t.Helper()
	ref, err := b.Repo.Head()
	require.NoError(b.t, err)
	return ref.Hash()
}

// LightweightTag points a bare tag reference at commit
func (b *RepoBuilder) LightweightTag(name string, commit plumbing.Hash) {
	b.t.Helper()
	_, err := b.Repo.CreateTag(name, commit, nil)
	require.NoError(b.t, err)
}

// AnnotatedTag creates a tag object for commit
func (b *RepoBuilder) AnnotatedTag(name string, commit plumbing.Hash) {
	b.t.Helper()
	_, err := b.Repo.CreateTag(name, commit, &git.CreateTagOptions{
		Tagger:  b.signature(),
		Message: "release " + name,
	})
	require.NoError(b.t, err)
}

// Branch creates a branch at commit and checks it out
func (b *RepoBuilder) Branch(name string, commit plumbing.Hash) {
	b.t.Helper()
	require.NoError(b.t, b.wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Hash:   commit,
		Create: true,
	}))
}

// Switch checks out an existing branch
func (b *RepoBuilder) Switch(name string) {
	b.t.Helper()
	require.NoError(b.t, b.wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
	}))
}

// Detach checks out commit with a detached HEAD
func (b *RepoBuilder) Detach(commit plumbing.Hash) {
	b.t.Helper()
	require.NoError(b.t, b.wt.Checkout(&git.CheckoutOptions{Hash: commit}))
}

// MarkShallow records commits as shallow boundaries
func (b *RepoBuilder) MarkShallow(commits ...plumbing.Hash) {
	b.t.Helper()
	require.NoError(b.t, b.Repo.Storer.SetShallow(commits))
}

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommitInfo(t *testing.T) {
	when := time.Date(2019, 4, 2, 10, 0, 0, 0, time.UTC)

	info := NewCommitInfo("763aa159dd2e4f1b8c6a7d01f1b7f0c3a1e2d4f5", when)
	assert.Equal(t, "763aa159d", info.ShortHash)
	assert.Equal(t, when, info.CommitTime)

	short := NewCommitInfo("abc", when)
	assert.Equal(t, "abc", short.ShortHash)
}

func TestModificationKindOrdering(t *testing.T) {
	order := []ModificationKind{KindUntracked, KindAdded, KindModified, KindTypeChanged, KindRenamed, KindDeleted}
	for i := 1; i < len(order); i++ {
		assert.True(t, order[i].Dominates(order[i-1]), "%s should dominate %s", order[i], order[i-1])
		assert.False(t, order[i-1].Dominates(order[i]))
	}
	assert.Equal(t, "unknown", ModificationKind(42).String())
}

func TestModificationJSON(t *testing.T) {
	data, err := json.Marshal(Modification{Path: "go.mod", Kind: KindTypeChanged})
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"go.mod","kind":"type-changed"}`, string(data))
}

func TestTestamentDate(t *testing.T) {
	commit := time.Date(2019, 4, 2, 10, 0, 0, 0, time.UTC)
	fallback := time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC)

	var repo Testament = &Repository{Commit: NewCommitInfo("abc", commit)}
	var none Testament = &NoRepository{FallbackTime: fallback}

	assert.Equal(t, commit, repo.Date())
	assert.Equal(t, fallback, none.Date())
	assert.False(t, repo.(*Repository).Dirty())
}

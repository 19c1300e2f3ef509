package git

import (
	"fmt"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"pgregory.net/rapid"
)

// On a linear history the distance to the nearest target is the position of
// the first tagged commit counting from HEAD.
func TestPropertyLinearHistoryDistance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		length := rapid.IntRange(1, 60).Draw(t, "length")
		tagged := rapid.SliceOfN(rapid.Bool(), length, length).Draw(t, "tagged")

		edges := make(map[string][]string)
		for i := 0; i+1 < length; i++ {
			edges[fmt.Sprintf("c%d", i)] = []string{fmt.Sprintf("c%d", i+1)}
		}
		g := newFakeGraph(edges)

		targets := make(map[plumbing.Hash]struct{})
		want := -1
		for i, isTagged := range tagged {
			if !isTagged {
				continue
			}
			targets[node(fmt.Sprintf("c%d", i))] = struct{}{}
			if want < 0 {
				want = i
			}
		}

		got, found, err := nearestTargets(g, node("c0"), targets)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("distance = %d, want %d", got, want)
		}
		if want >= 0 && (len(found) != 1 || found[0] != node(fmt.Sprintf("c%d", want))) {
			t.Fatalf("found = %v", found)
		}
	})
}

// The winning tag does not depend on the order tags were listed in.
func TestPropertySelectTagOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		candidates := make([]tagRef, n)
		for i := range candidates {
			candidates[i] = tagRef{
				Name:      fmt.Sprintf("tag-%02d", i),
				Annotated: rapid.Bool().Draw(t, fmt.Sprintf("annotated-%d", i)),
			}
		}
		shuffled := rapid.Permutation(candidates).Draw(t, "shuffled")

		a, err := selectTag(candidates, 1)
		if err != nil {
			t.Fatal(err)
		}
		b, err := selectTag(shuffled, 1)
		if err != nil {
			t.Fatal(err)
		}
		if *a != *b {
			t.Fatalf("selectTag depends on order: %+v vs %+v", a, b)
		}
	})
}

// On any merge history a commit on HEAD's first-parent chain is found at its
// chain position, however short a route through merged branches would be.
func TestPropertyChainCommitsKeepChainDistance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		length := rapid.IntRange(2, 30).Draw(t, "length")

		// Mainline c0 (HEAD) .. c<length-1> (root); merges bring in short side
		// branches forked from any older mainline commit.
		edges := make(map[string][]string)
		for i := 0; i+1 < length; i++ {
			cur := fmt.Sprintf("c%d", i)
			edges[cur] = []string{fmt.Sprintf("c%d", i+1)}

			if !rapid.Bool().Draw(t, fmt.Sprintf("merge-%d", i)) {
				continue
			}
			fork := rapid.IntRange(i+1, length-1).Draw(t, fmt.Sprintf("fork-%d", i))
			size := rapid.IntRange(1, 3).Draw(t, fmt.Sprintf("size-%d", i))
			prev := fmt.Sprintf("c%d", fork)
			for j := size; j > 0; j-- {
				side := fmt.Sprintf("s%d-%d", i, j)
				edges[side] = []string{prev}
				prev = side
			}
			edges[cur] = append(edges[cur], prev)
		}
		g := newFakeGraph(edges)

		target := rapid.IntRange(0, length-1).Draw(t, "target")
		targets := targetSet(fmt.Sprintf("c%d", target))
		if rapid.Bool().Draw(t, "older tag") && target+1 < length {
			older := rapid.IntRange(target+1, length-1).Draw(t, "older")
			targets[node(fmt.Sprintf("c%d", older))] = struct{}{}
		}

		got, found, err := nearestTargets(g, node("c0"), targets)
		if err != nil {
			t.Fatal(err)
		}
		if got != target {
			t.Fatalf("distance = %d, want %d", got, target)
		}
		if len(found) != 1 || found[0] != node(fmt.Sprintf("c%d", target)) {
			t.Fatalf("found = %v", found)
		}
	})
}

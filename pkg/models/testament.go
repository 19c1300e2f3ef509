package models

import "time"

// ShortHashLength is the number of hex characters kept in CommitInfo.ShortHash
const ShortHashLength = 9

// CommitInfo identifies the resolved HEAD commit
type CommitInfo struct {
	Hash       string    `json:"hash" yaml:"hash"`
	ShortHash  string    `json:"short_hash" yaml:"short_hash"`
	CommitTime time.Time `json:"commit_time" yaml:"commit_time"`
}

// NewCommitInfo builds a CommitInfo, deriving the short hash from hash.
func NewCommitInfo(hash string, when time.Time) CommitInfo {
	short := hash
	if len(short) > ShortHashLength {
		short = short[:ShortHashLength]
	}
	return CommitInfo{Hash: hash, ShortHash: short, CommitTime: when}
}

// TagInfo is the nearest tag reachable from HEAD.
// CommitsSince is zero exactly when HEAD is the tag's target commit.
type TagInfo struct {
	Name         string `json:"name" yaml:"name"`
	Annotated    bool   `json:"annotated" yaml:"annotated"`
	CommitsSince int    `json:"commits_since" yaml:"commits_since"`
}

// ModificationKind classifies how a path diverges from HEAD
type ModificationKind int

const (
	KindUntracked ModificationKind = iota
	KindAdded
	KindModified
	KindTypeChanged
	KindRenamed
	KindDeleted
)

var kindNames = map[ModificationKind]string{
	KindUntracked:   "untracked",
	KindAdded:       "added",
	KindModified:    "modified",
	KindTypeChanged: "type-changed",
	KindRenamed:     "renamed",
	KindDeleted:     "deleted",
}

// String returns the lower-case name of the kind
func (k ModificationKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the kind by name in JSON and YAML output
func (k ModificationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Dominates reports whether k wins over other when one path shows both.
// Deletion is strongest, untracked weakest.
func (k ModificationKind) Dominates(other ModificationKind) bool {
	return k > other
}

// Modification is one path that differs from HEAD
type Modification struct {
	Path string           `json:"path" yaml:"path"`
	Kind ModificationKind `json:"kind" yaml:"kind"`
}

// Testament is the resolved description of a build's source state.
// It is either a *Repository or a *NoRepository; no other implementations exist.
type Testament interface {
	// Date is the commit time for a repository, the fallback time otherwise.
	Date() time.Time
	isTestament()
}

// Repository is the testament of a working tree with at least one commit
type Repository struct {
	Commit        CommitInfo     `json:"commit" yaml:"commit"`
	Tag           *TagInfo       `json:"tag,omitempty" yaml:"tag,omitempty"`
	Branch        string         `json:"branch,omitempty" yaml:"branch,omitempty"`
	Modifications []Modification `json:"modifications" yaml:"modifications"`
}

// Date returns the commit time of HEAD
func (r *Repository) Date() time.Time { return r.Commit.CommitTime }

// Dirty reports whether any modification was recorded
func (r *Repository) Dirty() bool { return len(r.Modifications) > 0 }

func (*Repository) isTestament() {}

// NoRepository is the testament of a source tree without usable git history
type NoRepository struct {
	FallbackTime time.Time `json:"fallback_time" yaml:"fallback_time"`
}

// Date returns the fallback time
func (n *NoRepository) Date() time.Time { return n.FallbackTime }

func (*NoRepository) isTestament() {}

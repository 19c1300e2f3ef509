// Package render turns a resolved testament into its human readable forms.
package render

import (
	"fmt"
	"strings"
	"time"

	"testament/pkg/models"
)

// DateLayout is the calendar date format used in every rendering
const DateLayout = "2006-01-02"

// Fields is the flattened, serialisable view of a testament
type Fields struct {
	HasRepository bool      `json:"has_repository" yaml:"has_repository"`
	Tag           string    `json:"tag,omitempty" yaml:"tag,omitempty"`
	Annotated     bool      `json:"annotated" yaml:"annotated"`
	CommitsSince  int       `json:"commits_since" yaml:"commits_since"`
	Hash          string    `json:"hash,omitempty" yaml:"hash,omitempty"`
	ShortHash     string    `json:"short_hash,omitempty" yaml:"short_hash,omitempty"`
	Branch        string    `json:"branch,omitempty" yaml:"branch,omitempty"`
	Date          string    `json:"date" yaml:"date"`
	Time          time.Time `json:"time" yaml:"time"`
	Modifications int       `json:"modifications" yaml:"modifications"`
	Dirty         bool      `json:"dirty" yaml:"dirty"`
	Rendered      string    `json:"rendered" yaml:"rendered"`
}

// FormatDate renders t as a UTC calendar date
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Render produces the canonical one-line description of t.
//
//	1.0.0 (763aa159d 2019-04-02)
//	1.0.0+14 (651af89ed 2019-04-02) dirty 4 modifications
//	main-651af89ed (2019-04-02)
//	2021-06-15
func Render(t models.Testament) string {
	switch v := t.(type) {
	case *models.Repository:
		if v == nil {
			return ""
		}
		return renderRepository(v)
	case *models.NoRepository:
		if v == nil {
			return ""
		}
		return FormatDate(v.FallbackTime)
	default:
		return ""
	}
}

// absent reports whether t holds no testament, including a typed nil pointer
func absent(t models.Testament) bool {
	switch v := t.(type) {
	case *models.Repository:
		return v == nil
	case *models.NoRepository:
		return v == nil
	default:
		return t == nil
	}
}

func renderRepository(r *models.Repository) string {
	var b strings.Builder
	date := FormatDate(r.Commit.CommitTime)

	switch {
	case r.Tag != nil:
		b.WriteString(tagLabel(r.Tag))
		fmt.Fprintf(&b, " (%s %s)", r.Commit.ShortHash, date)
	case r.Branch != "":
		fmt.Fprintf(&b, "%s-%s (%s)", r.Branch, r.Commit.ShortHash, date)
	default:
		fmt.Fprintf(&b, "%s (%s)", r.Commit.ShortHash, date)
	}

	b.WriteString(DirtySuffix(len(r.Modifications)))
	return b.String()
}

func tagLabel(tag *models.TagInfo) string {
	if tag.CommitsSince == 0 {
		return tag.Name
	}
	return fmt.Sprintf("%s+%d", tag.Name, tag.CommitsSince)
}

// DirtySuffix is the text appended for n modifications, empty when n is zero
func DirtySuffix(n int) string {
	switch {
	case n <= 0:
		return ""
	case n == 1:
		return " dirty 1 modification"
	default:
		return fmt.Sprintf(" dirty %d modifications", n)
	}
}

// RenderWithVersion renders t in the context of a package version.
//
// A clean build of a tagged commit on trustedBranch is identified by the
// package version alone. A tag naming the package version renders as usual.
// Any other tagged build is prefixed with the package version so a mismatch
// between the two stays visible.
func RenderWithVersion(t models.Testament, pkgVersion, trustedBranch string) string {
	if pkgVersion == "" || absent(t) {
		return Render(t)
	}

	switch v := t.(type) {
	case *models.NoRepository:
		return fmt.Sprintf("%s (%s)", pkgVersion, FormatDate(v.FallbackTime))
	case *models.Repository:
		if v.Tag == nil {
			return Render(t)
		}
		if trustedBranch != "" && v.Branch == trustedBranch && !v.Dirty() {
			return fmt.Sprintf("%s (%s %s)", pkgVersion, v.Commit.ShortHash, FormatDate(v.Commit.CommitTime))
		}
		if strings.Contains(v.Tag.Name, pkgVersion) {
			return Render(t)
		}
		return fmt.Sprintf("%s :: %s", pkgVersion, Render(t))
	default:
		return Render(t)
	}
}

// Describe flattens t into Fields
func Describe(t models.Testament) Fields {
	f := Fields{Rendered: Render(t)}
	if absent(t) {
		return f
	}
	f.Time = t.Date().UTC()
	f.Date = FormatDate(f.Time)

	r, ok := t.(*models.Repository)
	if !ok {
		return f
	}
	f.HasRepository = true
	f.Hash = r.Commit.Hash
	f.ShortHash = r.Commit.ShortHash
	f.Branch = r.Branch
	f.Modifications = len(r.Modifications)
	f.Dirty = r.Dirty()
	if r.Tag != nil {
		f.Tag = r.Tag.Name
		f.Annotated = r.Tag.Annotated
		f.CommitsSince = r.Tag.CommitsSince
	}
	return f
}

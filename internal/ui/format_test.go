package ui

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	apperrors "testament/pkg/errors"
	"testament/pkg/models"
	"testament/pkg/render"
)

func withColor(t *testing.T, enabled bool) {
	t.Helper()
	originalSupportsColor := supportsColor
	originalNoColor := color.NoColor
	t.Cleanup(func() {
		supportsColor = originalSupportsColor
		color.NoColor = originalNoColor
	})
	supportsColor = enabled
	color.NoColor = !enabled
}

func TestColorFunc(t *testing.T) {
	tests := []struct {
		name          string
		supportsColor bool
		expectColored bool
	}{
		{name: "with color support", supportsColor: true, expectColored: true},
		{name: "without color support", supportsColor: false, expectColored: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withColor(t, tt.supportsColor)

			funcs := []func(string) string{
				ColorSuccess,
				ColorError,
				ColorWarning,
				ColorInfo,
				ColorBold,
				ColorDim,
			}

			for _, colorFunc := range funcs {
				result := colorFunc("test text")

				if tt.expectColored && result == "test text" {
					t.Error("Expected colored output, got plain text")
				}
				if !tt.expectColored && result != "test text" {
					t.Errorf("Expected plain text, got %q", result)
				}
				if !strings.Contains(result, "test text") {
					t.Errorf("Result should contain original text, got %q", result)
				}
			}
		})
	}
}

func TestSetColorMode(t *testing.T) {
	withColor(t, false)

	SetColorMode(models.ColorAlways, &bytes.Buffer{})
	if !ColorEnabled() || color.NoColor {
		t.Error("always should enable color")
	}

	SetColorMode(models.ColorNever, &bytes.Buffer{})
	if ColorEnabled() || !color.NoColor {
		t.Error("never should disable color")
	}

	SetColorMode(models.ColorAuto, &bytes.Buffer{})
	if ColorEnabled() {
		t.Error("auto should disable color for a non-terminal writer")
	}
}

func TestFormatTestament(t *testing.T) {
	withColor(t, false)

	clean := render.Fields{Rendered: "1.0.0 (763aa159d 2019-04-02)"}
	if got := FormatTestament(clean); got != clean.Rendered {
		t.Errorf("FormatTestament() = %q, want %q", got, clean.Rendered)
	}

	dirty := render.Fields{
		Rendered:      "1.0.0+14 (651af89ed 2019-04-02) dirty 4 modifications",
		Dirty:         true,
		Modifications: 4,
	}
	if got := FormatTestament(dirty); got != dirty.Rendered {
		t.Errorf("FormatTestament() = %q, want %q", got, dirty.Rendered)
	}
}

func TestFormatTestamentHighlightsDirtySuffix(t *testing.T) {
	withColor(t, true)

	dirty := render.Fields{
		Rendered:      "abc (2019-04-02) dirty 1 modification",
		Dirty:         true,
		Modifications: 1,
	}
	got := FormatTestament(dirty)
	want := ColorSuccess("abc (2019-04-02)") + ColorWarning(" dirty 1 modification")
	if got != want {
		t.Errorf("FormatTestament() = %q, want %q", got, want)
	}
}

func TestShowError(t *testing.T) {
	withColor(t, false)

	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "plain error",
			err:      fmt.Errorf("boom"),
			contains: []string{"ERROR: boom"},
		},
		{
			name: "application error",
			err:  apperrors.MetadataCorrupt("Failed to read HEAD", fmt.Errorf("object not found")),
			contains: []string{
				"ERROR: [TSMT1002] Failed to read HEAD",
				"caused by: object not found",
				"TIP:",
			},
		},
		{
			name:     "wrapped application error",
			err:      fmt.Errorf("resolve: %w", apperrors.InvalidInput("path", "/nope", "does not exist")),
			contains: []string{"[TSMT2001]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ShowError(&buf, tt.err)
			for _, want := range tt.contains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output %q missing %q", buf.String(), want)
				}
			}
		})
	}
}

func TestShowErrorHighlightsMessage(t *testing.T) {
	withColor(t, true)

	var buf bytes.Buffer
	ShowError(&buf, apperrors.InvalidInput("path", "/nope", "does not exist"))
	if !strings.Contains(buf.String(), ColorBold("Invalid path: does not exist")) {
		t.Errorf("message not highlighted: %q", buf.String())
	}
}

func TestShowWarning(t *testing.T) {
	withColor(t, false)

	var buf bytes.Buffer
	ShowWarning(&buf, "SOURCE_DATE_EPOCH is not a number")
	if got, want := buf.String(), "WARNING: SOURCE_DATE_EPOCH is not a number\n"; got != want {
		t.Errorf("ShowWarning() = %q, want %q", got, want)
	}
}

func TestWriteTestamentTable(t *testing.T) {
	withColor(t, false)

	repo := &models.Repository{
		Commit: models.NewCommitInfo("651af89ed1c3b2a4f5e6d7c8b9a0f1e2d3c4b5a6", time.Date(2019, 4, 2, 0, 0, 0, 0, time.UTC)),
		Tag:    &models.TagInfo{Name: "1.0.0", Annotated: true, CommitsSince: 14},
		Branch: "main",
		Modifications: []models.Modification{
			{Path: "go.mod", Kind: models.KindModified},
			{Path: "old.go", Kind: models.KindDeleted},
		},
	}

	var buf bytes.Buffer
	WriteTestamentTable(&buf, render.Describe(repo), repo.Modifications)
	out := buf.String()

	for _, want := range []string{
		"1.0.0+14 (651af89ed 2019-04-02) dirty 2 modifications",
		"651af89ed1c3b2a4f5e6d7c8b9a0f1e2d3c4b5a6",
		"1.0.0 (annotated)",
		"main",
		"~modified",
		"-deleted",
		"old.go",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTestamentTableNoRepository(t *testing.T) {
	withColor(t, false)

	fallback := &models.NoRepository{FallbackTime: time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC)}

	var buf bytes.Buffer
	WriteTestamentTable(&buf, render.Describe(fallback), nil)
	out := buf.String()

	if !strings.Contains(out, "(no repository)") {
		t.Errorf("table should flag the missing repository:\n%s", out)
	}
	if strings.Contains(out, "commit") {
		t.Errorf("table should not list a commit:\n%s", out)
	}
}

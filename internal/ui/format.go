package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"

	apperrors "testament/pkg/errors"
	"testament/pkg/models"
	"testament/pkg/render"
)

var (
	// Check if output supports colors
	supportsColor = isTerminal(os.Stdout)

	// Color functions
	ColorSuccess = colorFunc(ansi.Green)
	ColorError   = colorFunc(ansi.Red)
	ColorWarning = colorFunc(ansi.Yellow)
	ColorInfo    = colorFunc(ansi.Cyan)
	ColorBold    = colorFunc("default+b")
	ColorDim     = colorFunc("default+h")
)

// colorFunc returns a function that colors text if supported
func colorFunc(style string) func(string) string {
	return func(text string) string {
		if supportsColor {
			return ansi.Color(text, style)
		}
		return text
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColorMode decides whether output to out is colored.
// mode is one of models.ColorAuto, models.ColorAlways or models.ColorNever.
func SetColorMode(mode string, out io.Writer) {
	switch mode {
	case models.ColorAlways:
		supportsColor = true
	case models.ColorNever:
		supportsColor = false
	default:
		supportsColor = isTerminal(out) && os.Getenv("NO_COLOR") == ""
	}
	color.NoColor = !supportsColor
}

// ColorEnabled reports the current color decision
func ColorEnabled() bool {
	return supportsColor
}

// FormatTestament colors a rendered testament line: the dirty suffix is
// highlighted as a warning, everything else is shown as success.
func FormatTestament(f render.Fields) string {
	if !f.Dirty {
		return ColorSuccess(f.Rendered)
	}
	suffix := render.DirtySuffix(f.Modifications)
	head := strings.TrimSuffix(f.Rendered, suffix)
	return ColorSuccess(head) + ColorWarning(suffix)
}

// ShowError writes a formatted error message. Application errors are shown
// by code and message, with their cause dimmed and suggestions as tips.
func ShowError(w io.Writer, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		fmt.Fprintf(w, "%s %s\n", ColorError("ERROR:"), err.Error())
		return
	}

	fmt.Fprintf(w, "%s [%s] %s\n", ColorError("ERROR:"), appErr.Code, ColorBold(appErr.Message))
	if appErr.Cause != nil {
		fmt.Fprintf(w, "  %s\n", ColorDim("caused by: "+appErr.Cause.Error()))
	}
	for _, suggestion := range appErr.Suggestions {
		fmt.Fprintf(w, "  %s %s\n", ColorInfo("TIP:"), suggestion)
	}
}

// ShowWarning writes a warning message
func ShowWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", ColorWarning("WARNING:"), message)
}

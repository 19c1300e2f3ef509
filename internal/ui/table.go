package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"testament/pkg/models"
	"testament/pkg/render"
)

// WriteTestamentTable writes a two-column summary of f followed by one row
// per modification.
func WriteTestamentTable(w io.Writer, f render.Fields, mods []models.Modification) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.Append([]string{"testament", FormatTestament(f)})
	if f.HasRepository {
		table.Append([]string{"commit", f.Hash})
		if f.Branch != "" {
			table.Append([]string{"branch", f.Branch})
		}
		if f.Tag != "" {
			table.Append([]string{"tag", tagDescription(f)})
			table.Append([]string{"commits since tag", strconv.Itoa(f.CommitsSince)})
		}
		table.Append([]string{"date", f.Date})
		table.Append([]string{"modifications", strconv.Itoa(f.Modifications)})
	} else {
		table.Append([]string{"date", f.Date + " " + ColorDim("(no repository)")})
	}
	table.Render()

	if len(mods) == 0 {
		return
	}

	fmt.Fprintln(w)
	changes := tablewriter.NewWriter(w)
	changes.SetHeader([]string{"Kind", "Path"})
	changes.SetBorder(false)
	changes.SetAutoWrapText(false)
	changes.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, m := range mods {
		changes.Append([]string{kindLabel(m.Kind), m.Path})
	}
	changes.Render()
}

func tagDescription(f render.Fields) string {
	if f.Annotated {
		return f.Tag + " (annotated)"
	}
	return f.Tag
}

func kindLabel(kind models.ModificationKind) string {
	switch kind {
	case models.KindAdded:
		return color.GreenString("+" + kind.String())
	case models.KindDeleted:
		return color.RedString("-" + kind.String())
	case models.KindUntracked:
		return color.HiBlackString("?" + kind.String())
	default:
		return color.YellowString("~" + kind.String())
	}
}

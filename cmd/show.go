package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"testament/internal/config"
	"testament/internal/ui"
	"testament/pkg/errors"
	"testament/pkg/models"
	"testament/pkg/render"
)

// showDocument is the structured output of the show command
type showDocument struct {
	render.Fields `yaml:",inline"`
	Changes       []models.Modification `json:"changes" yaml:"changes"`
}

func newShowCmd(a *app) *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show [path]",
		Short: "Print every testament field",
		Long: `Print every testament field in the requested format.

The env format emits TESTAMENT_* assignments suitable for sourcing from a
shell, e.g. to feed linker flags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.resolver().Resolve(a.settings.Path)
			if err != nil {
				return err
			}

			doc := showDocument{Fields: render.Describe(t), Changes: []models.Modification{}}
			doc.Rendered = render.RenderWithVersion(t, a.settings.PackageVersion, a.settings.TrustedBranch)
			if repo, ok := t.(*models.Repository); ok {
				doc.Changes = repo.Modifications
			}

			return writeShow(cmd.OutOrStdout(), a.settings.Format, doc)
		},
	}

	showCmd.Flags().StringP("format", "f", models.FormatTable, "output format: table, json, yaml or env")
	bindFlags(a.v, showCmd.Flags(), map[string]string{"format": "format"})

	return showCmd
}

func writeShow(w io.Writer, format string, doc showDocument) error {
	switch format {
	case models.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case models.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case models.FormatEnv:
		writeEnv(w, doc.Fields)
		return nil
	case models.FormatTable:
		ui.WriteTestamentTable(w, doc.Fields, doc.Changes)
		return nil
	default:
		return errors.ConfigError("Unknown output format "+strconv.Quote(format), "format")
	}
}

func writeEnv(w io.Writer, f render.Fields) {
	prefix := config.EnvPrefix + "_"
	pairs := []struct{ key, value string }{
		{"RENDERED", f.Rendered},
		{"HAS_REPOSITORY", strconv.FormatBool(f.HasRepository)},
		{"TAG", f.Tag},
		{"ANNOTATED", strconv.FormatBool(f.Annotated)},
		{"COMMITS_SINCE", strconv.Itoa(f.CommitsSince)},
		{"HASH", f.Hash},
		{"SHORT_HASH", f.ShortHash},
		{"BRANCH", f.Branch},
		{"DATE", f.Date},
		{"MODIFICATIONS", strconv.Itoa(f.Modifications)},
		{"DIRTY", strconv.FormatBool(f.Dirty)},
	}
	for _, p := range pairs {
		fmt.Fprintf(w, "%s%s=%s\n", prefix, p.key, shellQuote(p.value))
	}
}

// shellQuote wraps s in single quotes for POSIX shells
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/procon-dev/procon/internal/config"
	"github.com/procon-dev/procon/internal/template"
)

func newTemplatesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List available templates",
		Long: `List the bundled templates and the templates in the user templates
directory. A user template with the same name as a bundled one replaces it.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTemplates(cmd, opts)
		},
	}
}

func runTemplates(cmd *cobra.Command, opts *globalOptions) error {
	store := config.NewStore(config.DefaultPaths())
	cfg, err := loadConfig(store)
	if err != nil {
		return err
	}

	resolver := newResolver(store.Paths())
	entries, err := resolver.List()
	if err != nil {
		return err
	}

	out := opts.writer(cmd.OutOrStdout())
	for _, e := range entries {
		marker := "  "
		if e.Name == cfg.DefaultTemplate() {
			marker = "* "
		}
		note := string(e.Origin)
		if e.Origin == template.OriginUser {
			note += ", " + e.Location
		}
		if e.Shadows {
			note += ", shadows bundled"
		}
		out.Line(fmt.Sprintf("%s%s %s", marker, out.Accent(e.Name), out.Dim("("+note+")")))
	}
	out.Line(out.Dim("user templates: " + resolver.UserDir()))
	return nil
}

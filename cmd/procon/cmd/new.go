package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/procon-dev/procon/internal/config"
	"github.com/procon-dev/procon/internal/project"
)

func newNewCmd(opts *globalOptions) *cobra.Command {
	var (
		templateName string
		parent       string
	)

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new project directory from a template",
		Long: `Create <path>/<name> and fill it from a template.

The template defaults to the default_template setting and the parent
directory to the default_path setting. The project directory must not exist
or must be empty.`,
		Example: `  # Create ./abc300_a from the default template
  procon new abc300_a

  # Use another template and parent directory
  procon new abc300_b -t advanced -p ~/contests/abc300`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd, opts, args[0], templateName, parent)
		},
	}

	cmd.Flags().StringVarP(&templateName, "template", "t", "", "Template to use (default: default_template setting)")
	cmd.Flags().StringVarP(&parent, "path", "p", "", "Directory to create the project in (default: default_path setting)")

	return cmd
}

func runNew(cmd *cobra.Command, opts *globalOptions, name, templateName, parent string) error {
	if err := project.ValidateName(name); err != nil {
		return err
	}

	store := config.NewStore(config.DefaultPaths())
	cfg, err := loadConfig(store, config.FlagLayer(map[string]string{
		config.KeyDefaultTemplate: templateName,
		config.KeyDefaultPath:     parent,
	}))
	if err != nil {
		return err
	}

	dir := filepath.Join(config.ExpandPath(cfg.DefaultPath()), name)
	target, err := project.NewTarget(dir, name)
	if err != nil {
		return err
	}

	_, err = scaffold(cmd, opts, store.Paths(), cfg, target, project.Options{})
	return err
}

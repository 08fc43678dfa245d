package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/procon-dev/procon/internal/config"
	perrors "github.com/procon-dev/procon/internal/errors"
	"github.com/procon-dev/procon/internal/project"
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	var (
		templateName string
		name         string
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the current directory from a template",
		Long: `Fill the current directory from a template.

Files that are not part of the template are left alone. Template files that
already exist are reported as conflicts unless --force is given.`,
		Example: `  # Use the directory name as the project name
  procon init

  # Overwrite main.cpp and CMakeLists.txt if present
  procon init --force --name abc300_a`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, opts, templateName, name, force)
		},
	}

	cmd.Flags().StringVarP(&templateName, "template", "t", "", "Template to use (default: default_template setting)")
	cmd.Flags().StringVar(&name, "name", "", "Project name (default: directory name)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing template files")

	return cmd
}

func runInit(cmd *cobra.Command, opts *globalOptions, templateName, name string, force bool) error {
	cwd, err := os.Getwd()
	if err != nil {
		return perrors.InternalError("failed to get working directory", err)
	}

	store := config.NewStore(config.DefaultPaths())
	cfg, err := loadConfig(store, config.FlagLayer(map[string]string{
		config.KeyDefaultTemplate: templateName,
	}))
	if err != nil {
		return err
	}

	target, err := project.NewTarget(cwd, name)
	if err != nil {
		return err
	}

	_, err = scaffold(cmd, opts, store.Paths(), cfg, target, project.Options{
		AllowNonEmpty: true,
		Overwrite:     force,
	})
	return err
}

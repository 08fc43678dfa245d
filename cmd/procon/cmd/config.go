package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/procon-dev/procon/internal/config"
	perrors "github.com/procon-dev/procon/internal/errors"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	var (
		list     bool
		showPath bool
	)

	cmd := &cobra.Command{
		Use:   "config <key> [value]",
		Short: "Get or set a configuration value",
		Long: `Get or set a value in the user configuration file.

With only a key, prints the effective value. With a value, stores it and
prints the value the file held before (nothing if the key was unset).

Keys:
  default_template       template used by new and init (default: default)
  default_path           parent directory for new projects (default: .)
  cpp_standard           substituted for {{CPP_STANDARD}} (default: 17)
  cmake_minimum_version  substituted for {{CMAKE_VERSION}} (default: 3.16)

Configuration precedence (lowest to highest):
  1. Built-in defaults
  2. User config file (see --path)
  3. Environment variables (PROCON_DEFAULT_TEMPLATE, ...)
  4. Command flags (-t, -p)`,
		Example: `  # Show the default template
  procon config default_template

  # Change it
  procon config default_template advanced

  # Show every effective value and where it comes from
  procon config --list`,
		Args: usageArgs(func(cmd *cobra.Command, args []string) error {
			if list && showPath {
				return fmt.Errorf("--list and --path cannot be combined")
			}
			if list || showPath {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.RangeArgs(1, 2)(cmd, args)
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := config.NewStore(config.DefaultPaths())
			switch {
			case showPath:
				_, err := fmt.Fprintln(cmd.OutOrStdout(), store.Paths().ConfigFile)
				return err
			case list:
				return runConfigList(cmd, opts, store)
			case len(args) == 1:
				return runConfigGet(cmd, store, args[0])
			default:
				return runConfigSet(cmd, store, args[0], args[1])
			}
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "Show all effective values with their source")
	cmd.Flags().BoolVar(&showPath, "path", false, "Print the config file path")

	return cmd
}

func runConfigGet(cmd *cobra.Command, store *config.Store, key string) error {
	if !config.IsKnownKey(key) {
		return perrors.UnknownKey(key, config.Keys())
	}
	cfg, err := loadConfig(store)
	if err != nil {
		return err
	}
	value, err := cfg.Get(key)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
	return err
}

func runConfigSet(cmd *cobra.Command, store *config.Store, key, value string) error {
	previous, had, err := store.Set(key, value)
	if err != nil {
		return err
	}
	if had {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), previous)
	}
	return err
}

func runConfigList(cmd *cobra.Command, opts *globalOptions, store *config.Store) error {
	cfg, err := loadConfig(store)
	if err != nil {
		return err
	}
	out := opts.writer(cmd.OutOrStdout())
	for _, key := range config.Keys() {
		value, _ := cfg.Get(key)
		out.Line(fmt.Sprintf("%s=%s %s", key, value, out.Dim("("+cfg.Source(key)+")")))
	}
	return nil
}

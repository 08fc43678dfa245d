package cmd

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/procon-dev/procon/internal/config"
	perrors "github.com/procon-dev/procon/internal/errors"
	"github.com/procon-dev/procon/internal/pathutil"
	"github.com/procon-dev/procon/internal/project"
	"github.com/procon-dev/procon/internal/template"
	"github.com/procon-dev/procon/templates"
)

// loadConfig loads the merged configuration. A corrupt config file is not
// fatal: it is logged and the defaults are used.
func loadConfig(store *config.Store, overrides ...config.Layer) (*config.Config, error) {
	cfg, err := store.Load(overrides...)
	if err != nil {
		if perrors.GetCode(err) != perrors.ErrCodeConfigCorrupt {
			return nil, err
		}
		slog.Warn("Config file is corrupt, using defaults", perrors.FormatForLog(err)...)
	}
	return cfg, nil
}

// newResolver returns the resolver for the user templates directory plus the
// bundled templates.
func newResolver(paths config.Paths) *template.Resolver {
	return template.NewResolver(paths.TemplatesDir, templates.FS())
}

// scaffold resolves the configured template and materializes it into target.
func scaffold(cmd *cobra.Command, opts *globalOptions, paths config.Paths, cfg *config.Config,
	target project.Target, mopts project.Options) (*project.Result, error) {
	tmpl, err := newResolver(paths).Resolve(cfg.DefaultTemplate())
	if err != nil {
		return nil, err
	}

	slog.Debug("Materializing project",
		slog.String("template", tmpl.Name),
		slog.String("origin", string(tmpl.Origin)),
		slog.String("dir", target.Dir),
		slog.String("name", target.Name))

	mopts.Vars = project.Vars{
		ProjectName:  target.Name,
		CppStandard:  cfg.CppStandard(),
		CMakeVersion: cfg.CMakeMinimumVersion(),
	}

	res, err := project.NewMaterializer(nil).Materialize(tmpl, target, mopts)
	if err != nil {
		return res, err
	}

	printSummary(cmd, opts, tmpl, res)
	return res, nil
}

func printSummary(cmd *cobra.Command, opts *globalOptions, tmpl *template.Template, res *project.Result) {
	out := opts.writer(cmd.OutOrStdout())

	verb := "Initialized"
	if res.CreatedDir {
		verb = "Created"
	}
	out.Successf("%s %s in %s %s", verb, out.Accent(res.Name), displayPath(res.Dir),
		out.Dim("(template "+tmpl.Name+", "+string(tmpl.Origin)+")"))

	overwritten := make(map[string]bool, len(res.Overwritten))
	for _, p := range res.Overwritten {
		overwritten[p] = true
	}
	for _, p := range res.Written {
		line := "  " + p
		if overwritten[p] {
			line += " " + out.Dim("(overwritten)")
		}
		out.Line(line)
	}
}

// displayPath shows dir relative to the working directory when it is below it.
func displayPath(dir string) string {
	wd, err := os.Getwd()
	if err != nil || !pathutil.Within(wd, dir) {
		return dir
	}
	rel, err := filepath.Rel(wd, dir)
	if err != nil {
		return dir
	}
	if rel == "." {
		return rel
	}
	return "." + string(filepath.Separator) + rel
}

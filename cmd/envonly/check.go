package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/HugoDaniel/envonly/internal/config"
	"github.com/HugoDaniel/envonly/internal/deny"
)

type checkFlags struct {
	importer string
	resolved string
	root     string
	env      string
	ssr      bool
}

func newCheckCmd(a *app) *cobra.Command {
	var f checkFlags

	cmd := &cobra.Command{
		Use:   "check <specifier>",
		Short: "Check an import against the deny rules",
		Long: `Check an import against the deny rules and validators of the config file.
The specifier rules and import validators apply to <specifier> as written.
The file rules and file validators apply to --resolved, relative to --root.
Exits with an error when the import is denied.

Entry points, which have no importer, are never denied by specifier rules.`,
		Example: "envonly check node:fs --importer app/root.tsx --env client\n" +
			"envonly check ./db --importer app/root.tsx --resolved app/db.server.ts",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, a, f, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.importer, "importer", "", "The importing `file`")
	flags.StringVar(&f.resolved, "resolved", "", "The `file` the specifier resolves to")
	flags.StringVar(&f.root, "root", "", "Project root `dir` (default current directory)")
	flags.StringVar(&f.env, "env", "", "Target `environment`: server or client")
	flags.BoolVar(&f.ssr, "ssr", false, "Target the server environment")
	return cmd
}

func runCheck(cmd *cobra.Command, a *app, f checkFlags, specifier string) error {
	root := f.root
	if root == "" {
		root, _ = os.Getwd()
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return errors.Wrap(err, "resolving root")
	}

	cfg, err := a.loadConfig(cmd, root)
	if err != nil {
		return err
	}

	var m config.MergeOptions
	if cmd.Flags().Changed("env") {
		m.Env = &f.env
	}
	if cmd.Flags().Changed("ssr") {
		m.SSR = &f.ssr
	}
	opts, err := cfg.Merge(m)
	if err != nil {
		return err
	}
	rules, err := cfg.DenyOptions()
	if err != nil {
		return err
	}
	validators, err := cfg.ValidatorOptions()
	if err != nil {
		return err
	}
	checker := deny.NewChecker(cfg.PackageName(), root, rules)

	importer, err := absolute(root, f.importer)
	if err != nil {
		return err
	}
	if err := checker.CheckSpecifier(specifier, importer, opts.Env); err != nil {
		return err
	}
	if err := deny.ValidateImport(specifier, importer, root, validators.Imports, opts.Env); err != nil {
		return err
	}
	if f.resolved != "" {
		resolved, err := absolute(root, f.resolved)
		if err != nil {
			return err
		}
		if err := checker.CheckFile(specifier, importer, resolved, opts.Env); err != nil {
			return err
		}
		if err := deny.ValidateFile(resolved, importer, root, validators.Files, opts.Env); err != nil {
			return err
		}
	}

	a.log.Debug("import allowed", "specifier", specifier, "env", opts.Env)
	fmt.Fprintf(cmd.OutOrStdout(), "%q is allowed in the %s environment\n", specifier, opts.Env)
	return nil
}

// absolute resolves path against root. An empty path stays empty.
func absolute(root, path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}
	abs, err := filepath.Abs(filepath.Join(root, path))
	return abs, errors.Wrapf(err, "resolving %s", path)
}

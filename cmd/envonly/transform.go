package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/HugoDaniel/envonly/internal/config"
	"github.com/HugoDaniel/envonly/internal/env"
	"github.com/HugoDaniel/envonly/internal/plugin"
	"github.com/HugoDaniel/envonly/internal/transform"
)

// stdinID names the module read from stdin.
const stdinID = "stdin.js"

type transformFlags struct {
	env                  string
	ssr                  bool
	output               string
	outdir               string
	sourcemap            bool
	sourcemapInline      bool
	pkg                  string
	preserveUnreferenced bool
	watch                bool
	concurrency          int
}

// transformRun is one configured transform invocation.
type transformRun struct {
	*app
	flags  transformFlags
	opts   transform.Options
	plugin *plugin.Plugin
	stdout io.Writer
}

func newTransformCmd(a *app) *cobra.Command {
	var f transformFlags

	cmd := &cobra.Command{
		Use:   "transform [files...]",
		Short: "Rewrite macros for one environment",
		Long: `Rewrite env-only macro calls for the server or the client and remove the
code that becomes unreachable. Reads stdin when no files are given.`,
		Example: "envonly transform --env server app/routes/index.js\n" +
			"envonly transform --ssr --outdir build/server app/*.js\n" +
			"cat route.js | envonly transform > route.client.js",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, a, f, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.env, "env", "", "Target `environment`: server or client")
	flags.BoolVar(&f.ssr, "ssr", false, "Target the server environment")
	flags.StringVarP(&f.output, "output", "o", "", "Write output to `file`")
	flags.StringVar(&f.outdir, "outdir", "", "Write outputs to `dir`")
	flags.BoolVar(&f.sourcemap, "sourcemap", false, "Write a source map next to each output")
	flags.BoolVar(&f.sourcemapInline, "sourcemap-inline", false, "Append the source map to each output")
	flags.StringVar(&f.pkg, "package", "", "Macro package `name` (default \"vite-env-only\")")
	flags.BoolVar(&f.preserveUnreferenced, "preserve-unreferenced", false, "Only remove code that lost its last reference to a macro")
	flags.BoolVar(&f.watch, "watch", false, "Transform again when an input changes")
	flags.IntVar(&f.concurrency, "concurrency", 0, "Number of parallel transforms (default GOMAXPROCS)")
	return cmd
}

func runTransform(cmd *cobra.Command, a *app, f transformFlags, args []string) error {
	switch {
	case f.output != "" && f.outdir != "":
		return errors.New("--output and --outdir cannot be used together")
	case f.output != "" && len(args) > 1:
		return errors.New("--output requires a single input, use --outdir")
	case f.outdir == "" && len(args) > 1:
		return errors.New("multiple inputs require --outdir")
	case f.watch && len(args) == 0:
		return errors.New("--watch requires input files")
	}

	var startDir string
	if len(args) > 0 {
		startDir = filepath.Dir(args[0])
	}
	cfg, err := a.loadConfig(cmd, startDir)
	if err != nil {
		return err
	}

	opts, err := cfg.Merge(mergeOptions(cmd.Flags(), f))
	if err != nil {
		return err
	}
	p, err := plugin.New(plugin.Options{
		Transform:   opts,
		CacheSize:   cfg.CacheSizeValue(),
		Concurrency: cfg.ConcurrencyValue(),
		Logger:      a.log,
	})
	if err != nil {
		return err
	}

	r := &transformRun{app: a, flags: f, opts: opts, plugin: p, stdout: cmd.OutOrStdout()}
	ctx := cmd.Context()

	if len(args) == 0 {
		return r.stdin(ctx, cmd.InOrStdin())
	}
	if err := r.files(ctx, args); err != nil {
		return err
	}
	if f.watch {
		return r.watch(ctx, args)
	}
	return nil
}

// mergeOptions keeps only the flags given on the command line.
func mergeOptions(flags *pflag.FlagSet, f transformFlags) config.MergeOptions {
	var m config.MergeOptions
	if flags.Changed("env") {
		m.Env = &f.env
	}
	if flags.Changed("ssr") {
		m.SSR = &f.ssr
	}
	if flags.Changed("package") {
		m.Package = &f.pkg
	}
	if flags.Changed("sourcemap") {
		m.SourceMap = &f.sourcemap
	}
	if flags.Changed("sourcemap-inline") {
		m.SourceMapInline = &f.sourcemapInline
	}
	if flags.Changed("preserve-unreferenced") {
		m.PreserveUnreferenced = &f.preserveUnreferenced
	}
	if flags.Changed("concurrency") {
		m.Concurrency = &f.concurrency
	}
	return m
}

func (r *transformRun) ssr() bool {
	return r.opts.Env == env.Server
}

func (r *transformRun) stdin(ctx context.Context, in io.Reader) error {
	if file, ok := in.(*os.File); ok {
		if stat, err := file.Stat(); err == nil && stat.Mode()&os.ModeCharDevice != 0 {
			return errors.New("no input files specified")
		}
	}
	source, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "reading stdin")
	}

	result, err := r.plugin.Transform(ctx, string(source), stdinID, r.ssr())
	if err != nil {
		return err
	}
	return r.emit(plugin.Module{ID: stdinID, Code: string(source)}, result, r.flags.output)
}

func (r *transformRun) files(ctx context.Context, files []string) error {
	modules := make([]plugin.Module, len(files))
	for i, file := range files {
		source, err := os.ReadFile(file)
		if err != nil {
			return errors.Wrap(err, "reading input")
		}
		modules[i] = plugin.Module{ID: file, Code: string(source), SSR: r.ssr()}
	}

	results, err := r.plugin.TransformAll(ctx, modules)
	if err != nil {
		return err
	}
	for i, m := range modules {
		if err := r.emit(m, results[i], r.outputPath(m.ID)); err != nil {
			return err
		}
	}
	return nil
}

// outputPath returns where the output for file goes, or "" for stdout.
func (r *transformRun) outputPath(file string) string {
	if r.flags.output != "" {
		return r.flags.output
	}
	if r.flags.outdir == "" {
		return ""
	}
	rel := filepath.Clean(file)
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(rel)
	}
	return filepath.Join(r.flags.outdir, rel)
}

// emit writes one output. A nil result means the module needed no
// rewrite and is copied as is.
func (r *transformRun) emit(m plugin.Module, result *transform.Result, out string) error {
	if result == nil {
		return r.write(out, m.Code)
	}
	r.log.Info("transformed", "file", m.ID, "env", r.opts.Env,
		"macros", result.Stats.Macros, "removed", result.Stats.Removed)

	code := result.Code
	if result.SourceMap != nil && !r.opts.SourceMapInline {
		if out == "" {
			r.log.Warn("source maps written to stdout must be inline", "file", m.ID)
		} else {
			sm := *result.SourceMap
			sm.File = filepath.Base(out)
			if err := r.write(out+".map", sm.ToJSON()); err != nil {
				return errors.Wrap(err, "writing source map")
			}
			code += "\n" + sm.ToComment(false)
		}
	}
	return r.write(out, code+"\n")
}

// write replaces out atomically, or writes to stdout when out is "".
func (r *transformRun) write(out, content string) error {
	if out == "" {
		_, err := io.WriteString(r.stdout, content)
		return errors.Wrap(err, "writing output")
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	return errors.Wrapf(writeFileAtomic(out, []byte(content), 0644), "writing %s", out)
}

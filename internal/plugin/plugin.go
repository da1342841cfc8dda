// Package plugin adapts the transform and the deny rules to the hooks a
// module bundler calls while building a module graph.
//
// A host drives one Plugin per build: ConfigResolved once, then Load,
// Transform, and ResolveID for every module it visits. Every hook is safe
// for concurrent use.
package plugin

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	charm "github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/HugoDaniel/envonly/internal/deny"
	"github.com/HugoDaniel/envonly/internal/env"
	"github.com/HugoDaniel/envonly/internal/logger"
	"github.com/HugoDaniel/envonly/internal/macro"
	"github.com/HugoDaniel/envonly/internal/pattern"
	"github.com/HugoDaniel/envonly/internal/transform"
)

// ErrEnvModule marks an attempt to bundle the env entry point module.
var ErrEnvModule = errors.New("env module is not allowed within the bundle")

// Command is the host command a build runs under.
type Command string

const (
	CommandServe Command = "serve"
	CommandBuild Command = "build"
)

// Options configures a Plugin.
type Options struct {
	// Transform is the base transform configuration. Env is chosen per call.
	Transform transform.Options

	// Deny holds the specifier and file rules per environment.
	Deny deny.Options

	// Validators lists the imports and files that belong to a single
	// environment. Plain text matches exactly.
	Validators deny.ValidatorOptions

	// CacheSize bounds the number of cached results. Zero disables caching.
	CacheSize int

	// Concurrency bounds TransformAll. Values below one mean one.
	Concurrency int

	// Logger receives debug output. Defaults to logger.Default().
	Logger *charm.Logger
}

// Resolver resolves an import the way the host would. It returns "" when
// id cannot be resolved.
type Resolver interface {
	Resolve(ctx context.Context, id, importer string, ssr bool) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, id, importer string, ssr bool) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, id, importer string, ssr bool) (string, error) {
	return f(ctx, id, importer, ssr)
}

// Module is one input of TransformAll.
type Module struct {
	ID   string
	Code string
	SSR  bool
}

// Plugin holds the state shared by all hooks of one build.
type Plugin struct {
	opts  Options
	pkg   string
	log   *charm.Logger
	cache *lru.Cache[uint64, *transform.Result]

	mu      sync.RWMutex
	command Command
	checker *deny.Checker
}

type resolvingKey struct{}

// New creates a plugin. Until ConfigResolved is called, paths in denial
// messages are relative to the working directory.
func New(opts Options) (*Plugin, error) {
	p := &Plugin{
		opts:    opts,
		pkg:     opts.Transform.Package,
		log:     opts.Logger,
		command: CommandServe,
	}
	if p.pkg == "" {
		p.pkg = env.DefaultPackage
	}
	if p.log == nil {
		p.log = logger.Default()
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[uint64, *transform.Result](opts.CacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "creating transform cache")
		}
		p.cache = cache
	}
	p.checker = deny.NewChecker(p.pkg, "", opts.Deny)
	return p, nil
}

// ConfigResolved records the project root and host command.
func (p *Plugin) ConfigResolved(root string, command Command) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.command = command
	p.checker = deny.NewChecker(p.pkg, root, p.opts.Deny)
}

func (p *Plugin) state() (Command, *deny.Checker) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.command, p.checker
}

// Load serves the runtime stub for a macro module id. It reports false
// for every other id.
func (p *Plugin) Load(id string) (string, bool) {
	for _, source := range macro.Sources(macro.DefaultSpecs(p.pkg)) {
		if id == source {
			return macro.StubModule(p.pkg, source), true
		}
	}
	return "", false
}

// Transform rewrites code for the server when ssr is set and for the
// client otherwise. It returns nil without error when code never mentions
// the package. Results may be shared between calls and must not be
// modified.
func (p *Plugin) Transform(ctx context.Context, code, id string, ssr bool) (*transform.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !strings.Contains(code, p.pkg) {
		p.log.Debug("skipping module", "id", id)
		return nil, nil
	}
	if id == p.pkg+"/env" {
		err := errors.Newf("%s: '%s/env' is not allowed within Vite", p.pkg, p.pkg)
		err = errors.WithDetailf(err, "'%s/env' is designed for use in script entry points, not within app code", p.pkg)
		return nil, errors.Mark(err, ErrEnvModule)
	}

	e := env.FromSSR(ssr)
	key := cacheKey(e, id, code)
	if p.cache != nil {
		if result, ok := p.cache.Get(key); ok {
			p.log.Debug("cache hit", "id", id, "env", e)
			return result, nil
		}
	}

	opts := p.opts.Transform
	opts.Env = e
	opts.Package = p.pkg
	if opts.Logger == nil {
		opts.Logger = p.log
	}
	result, err := transform.Transform(code, id, opts)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		p.cache.Add(key, result)
	}
	return result, nil
}

func cacheKey(e env.Env, id, code string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(string(e))
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(id)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(code)
	return d.Sum64()
}

// ResolveID applies the deny rules and validators to an import of id by
// importer. The specifier rules and import validators see the raw id.
// The file rules and file validators see the absolute path resolver
// returns; relative or failed resolutions pass. Outside builds,
// imports from HTML entry points skip the file rules.
func (p *Plugin) ResolveID(ctx context.Context, id, importer string, ssr bool, resolver Resolver) error {
	command, checker := p.state()
	e := env.FromSSR(ssr)

	if err := checker.CheckSpecifier(id, importer, e); err != nil {
		p.log.Debug("import denied", "id", id, "importer", importer, "env", e)
		return err
	}
	if err := deny.ValidateImport(id, importer, checker.Root(), p.opts.Validators.Imports, e); err != nil {
		p.log.Debug("import rejected", "id", id, "importer", importer, "env", e)
		return err
	}

	if (!checker.HasFileRules() && !hasPatterns(p.opts.Validators.Files)) || resolver == nil {
		return nil
	}
	if command != CommandBuild && strings.HasSuffix(importer, ".html") {
		return nil
	}
	// The resolver may call back into ResolveID for the same import.
	if ctx.Value(resolvingKey{}) != nil {
		return nil
	}

	resolved, err := resolver.Resolve(context.WithValue(ctx, resolvingKey{}, true), id, importer, ssr)
	if err != nil {
		return errors.Wrapf(err, "resolving %q", id)
	}
	if resolved == "" || !filepath.IsAbs(resolved) {
		return nil
	}
	if err := checker.CheckFile(id, importer, resolved, e); err != nil {
		p.log.Debug("import denied", "id", id, "resolved", resolved, "env", e)
		return err
	}
	if err := deny.ValidateFile(resolved, importer, checker.Root(), p.opts.Validators.Files, e); err != nil {
		p.log.Debug("import rejected", "id", id, "resolved", resolved, "env", e)
		return err
	}
	return nil
}

func hasPatterns(v deny.Validators) bool {
	return lo.SomeBy(lo.Values(v), func(list []pattern.Pattern) bool { return len(list) > 0 })
}

// TransformAll transforms modules in parallel. Results are in input
// order; a module that failed or was skipped has a nil result. All
// failures are returned together.
func (p *Plugin) TransformAll(ctx context.Context, modules []Module) ([]*transform.Result, error) {
	results := make([]*transform.Result, len(modules))

	var (
		mu     sync.Mutex
		result *multierror.Error
	)

	var g errgroup.Group
	g.SetLimit(max(p.opts.Concurrency, 1))
	for i, m := range modules {
		i, m := i, m
		g.Go(func() error {
			r, err := p.Transform(ctx, m.Code, m.ID, m.SSR)
			if err != nil {
				mu.Lock()
				result = multierror.Append(result, errors.Wrapf(err, "transforming %s", m.ID))
				mu.Unlock()
				return nil
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	return results, result.ErrorOrNil()
}

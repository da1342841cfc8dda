// Package deny blocks imports that must not reach an environment's
// module graph.
//
// Rules are checked twice per import: the raw specifier before resolution
// and the resolved file, relative to the project root, after it.
package deny

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/HugoDaniel/envonly/internal/env"
	"github.com/HugoDaniel/envonly/internal/pattern"
)

// ErrDenied marks every denial error.
var ErrDenied = errors.New("import denied")

// Rules holds the deny patterns of one environment.
type Rules struct {
	Specifiers []pattern.Pattern
	Files      []pattern.Pattern
}

// Options maps environments to their rules. A missing environment denies
// nothing.
type Options map[env.Env]Rules

// Kind is what a denial matched against.
type Kind uint8

const (
	KindSpecifier Kind = iota
	KindFile
)

func (k Kind) String() string {
	if k == KindFile {
		return "file"
	}
	return "specifier"
}

// Error describes a denied import.
type Error struct {
	Package  string
	Kind     Kind
	Pattern  pattern.Pattern
	Importer string // Root-relative; may be empty for file denials
	Import   string
	Resolved string // Root-relative; file denials only
	Env      env.Env
}

func (e *Error) Error() string {
	lines := []string{
		fmt.Sprintf("[%s] Import denied", e.Package),
		fmt.Sprintf(" - Denied by %s pattern: %s", e.Kind, e.Pattern),
	}
	if e.Importer != "" {
		lines = append(lines, " - Importer: "+e.Importer)
	}
	lines = append(lines, fmt.Sprintf(" - Import: \"%s\"", e.Import))
	if e.Kind == KindFile {
		lines = append(lines, " - Resolved: "+e.Resolved)
	}
	lines = append(lines, " - Environment: "+string(e.Env))
	return strings.Join(lines, "\n")
}

// Checker applies Options for one project root.
type Checker struct {
	pkg  string
	root string
	opts Options
}

// NewChecker creates a checker. pkg names the package in error messages.
func NewChecker(pkg, root string, opts Options) *Checker {
	if pkg == "" {
		pkg = env.DefaultPackage
	}
	return &Checker{pkg: pkg, root: root, opts: opts}
}

// Root returns the project root paths are made relative to.
func (c *Checker) Root() string {
	return c.root
}

// HasFileRules reports whether any environment denies files.
func (c *Checker) HasFileRules() bool {
	return lo.SomeBy(lo.Values(c.opts), func(r Rules) bool { return len(r.Files) > 0 })
}

// CheckSpecifier denies the raw specifier id imported by importer in e.
// Entry points, which have no importer, are never denied.
func (c *Checker) CheckSpecifier(id, importer string, e env.Env) error {
	if importer == "" {
		return nil
	}
	p, ok := pattern.FindMatch(id, c.opts[e].Specifiers)
	if !ok {
		return nil
	}
	return errors.Mark(&Error{
		Package:  c.pkg,
		Kind:     KindSpecifier,
		Pattern:  p,
		Importer: pattern.RelativePath(c.root, importer),
		Import:   id,
		Env:      e,
	}, ErrDenied)
}

// CheckFile denies the file that id resolved to.
func (c *Checker) CheckFile(id, importer, resolved string, e env.Env) error {
	rel := pattern.RelativePath(c.root, resolved)
	p, ok := pattern.FindMatch(rel, c.opts[e].Files)
	if !ok {
		return nil
	}
	denial := &Error{
		Package:  c.pkg,
		Kind:     KindFile,
		Pattern:  p,
		Import:   id,
		Resolved: rel,
		Env:      e,
	}
	if importer != "" {
		denial.Importer = pattern.RelativePath(c.root, importer)
	}
	return errors.Mark(denial, ErrDenied)
}

// ----------------------------------------------------------------------------
// Validators
// ----------------------------------------------------------------------------

// Validators maps an environment to the imports or files that belong
// only to it. Anything listed for another environment is rejected in the
// active one.
type Validators map[env.Env][]pattern.Pattern

// ValidatorOptions holds the validators for import specifiers and for
// resolved files.
type ValidatorOptions struct {
	Imports Validators
	Files   Validators
}

// ValidateImport rejects id in active if another environment lists it.
func ValidateImport(id, importer, root string, validators Validators, active env.Env) error {
	for _, other := range lo.Without(env.All, active) {
		if _, ok := pattern.FindMatch(id, validators[other]); !ok {
			continue
		}
		msg := fmt.Sprintf("Import from \"%s\"", id)
		if importer != "" {
			msg += fmt.Sprintf(" in \"%s\"", pattern.RelativePath(root, importer))
		}
		return errors.Mark(errors.Newf("%s is not allowed in the %s module graph", msg, active), ErrDenied)
	}
	return nil
}

// ValidateFile rejects the file at absPath in active if another
// environment lists its root-relative path.
func ValidateFile(absPath, importer, root string, validators Validators, active env.Env) error {
	rel := pattern.RelativePath(root, absPath)
	for _, other := range lo.Without(env.All, active) {
		if _, ok := pattern.FindMatch(rel, validators[other]); !ok {
			continue
		}
		msg := fmt.Sprintf("File \"%s\"", rel)
		if importer != "" {
			msg += fmt.Sprintf(" imported by \"%s\"", pattern.RelativePath(root, importer))
		}
		return errors.Mark(errors.Newf("%s is not allowed in the %s module graph", msg, active), ErrDenied)
	}
	return nil
}

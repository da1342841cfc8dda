// Package env defines the environment tags and the process-wide,
// write-once environment cell used by the runtime macro surface.
package env

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// DefaultPackage is the package name macros are imported from unless
// configured otherwise.
const DefaultPackage = "vite-env-only"

// Env is an environment tag.
type Env string

const (
	Server Env = "server"
	Client Env = "client"
)

// All lists the valid tags in display order.
var All = []Env{Server, Client}

var (
	// ErrInvalid marks strings that are not a valid tag.
	ErrInvalid = errors.New("invalid environment")
	// ErrConflict marks an attempt to change an already set environment.
	ErrConflict = errors.New("environment conflict")
)

// Valid returns true if e is one of All.
func (e Env) Valid() bool {
	return e == Server || e == Client
}

// Other returns the complementary tag.
func (e Env) Other() Env {
	if e == Server {
		return Client
	}
	return Server
}

func (e Env) String() string {
	return string(e)
}

// FromSSR maps the build tool's ssr flag to a tag.
func FromSSR(ssr bool) Env {
	if ssr {
		return Server
	}
	return Client
}

// ValidList formats All as "'server', 'client'".
func ValidList() string {
	quoted := make([]string, len(All))
	for i, e := range All {
		quoted[i] = "'" + string(e) + "'"
	}
	return strings.Join(quoted, ", ")
}

// Parse converts s to a tag.
func Parse(s string) (Env, error) {
	e := Env(strings.TrimSpace(s))
	if !e.Valid() {
		return "", errors.Mark(errors.Newf("environment must be one of: %s", ValidList()), ErrInvalid)
	}
	return e, nil
}

// Cell holds an environment that can be set once. Setting the same value
// again is a no-op; setting a different value fails.
type Cell struct {
	mu    sync.Mutex
	pkg   string
	value Env
}

// NewCell creates an unset cell. pkg names the package in error messages.
func NewCell(pkg string) *Cell {
	return &Cell{pkg: pkg}
}

// Default is the process-wide cell.
var Default = NewCell(DefaultPackage)

// Get returns the current value and whether it was set.
func (c *Cell) Get() (Env, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.value != ""
}

// Set fixes the environment.
func (c *Cell) Set(e Env) error {
	if !e.Valid() {
		return errors.Mark(errors.Newf("environment must be one of: %s", ValidList()), ErrInvalid)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value == "" || c.value == e {
		c.value = e
		return nil
	}
	err := errors.Newf("%s: cannot change environment from '%s' to '%s'", c.pkg, c.value, e)
	err = errors.WithDetail(err, fmt.Sprintf("Environment was already set to '%s'", c.value))
	return errors.Mark(err, ErrConflict)
}

// Reset clears the cell. Only tests should need this.
func (c *Cell) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = ""
}

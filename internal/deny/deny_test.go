package deny

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HugoDaniel/envonly/internal/env"
	"github.com/HugoDaniel/envonly/internal/pattern"
)

const root = "/project"

func mustRegex(source, flags string) pattern.Pattern {
	p, err := pattern.Regex(source, flags)
	if err != nil {
		panic(err)
	}
	return p
}

func denial(t *testing.T, err error) *Error {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDenied))
	var d *Error
	require.True(t, errors.As(err, &d))
	return d
}

// ----------------------------------------------------------------------------
// Specifiers
// ----------------------------------------------------------------------------

func TestSpecifierDenied(t *testing.T) {
	for _, e := range env.All {
		t.Run(string(e), func(t *testing.T) {
			for _, p := range []pattern.Pattern{pattern.Glob("./deny-me"), mustRegex(`^\.\/deny-me$`, "")} {
				c := NewChecker("", root, Options{e: {Specifiers: []pattern.Pattern{p}}})
				d := denial(t, c.CheckSpecifier("./deny-me", "/project/lib/index.ts", e))
				assert.Equal(t, &Error{
					Package:  env.DefaultPackage,
					Kind:     KindSpecifier,
					Pattern:  p,
					Importer: "lib/index.ts",
					Import:   "./deny-me",
					Env:      e,
				}, d)
			}
		})
	}
}

func TestSpecifierIgnoresOtherEnv(t *testing.T) {
	for _, e := range env.All {
		c := NewChecker("", root, Options{e.Other(): {Specifiers: []pattern.Pattern{pattern.Glob("./deny-me")}}})
		assert.NoError(t, c.CheckSpecifier("./deny-me", "/project/lib/index.ts", e))
	}
}

func TestSpecifierPasses(t *testing.T) {
	patterns := []pattern.Pattern{pattern.Glob("other"), pattern.Glob("**/other/*"), mustRegex("other", "")}
	c := NewChecker("", root, Options{env.Server: {Specifiers: patterns}})
	assert.NoError(t, c.CheckSpecifier("./deny-me", "/project/lib/index.ts", env.Server))
}

func TestSpecifierWithoutImporter(t *testing.T) {
	c := NewChecker("", root, Options{env.Server: {Specifiers: []pattern.Pattern{pattern.Glob("**")}}})
	assert.NoError(t, c.CheckSpecifier("./entry", "", env.Server))
}

// ----------------------------------------------------------------------------
// Files
// ----------------------------------------------------------------------------

func TestFileDenied(t *testing.T) {
	patterns := []pattern.Pattern{
		pattern.Glob("lib/deny-me.ts"),
		pattern.Glob("**/deny-me.*"),
		mustRegex(`^lib\/deny-me\.ts$`, ""),
	}
	for _, e := range env.All {
		for _, p := range patterns {
			t.Run(string(e)+"/"+p.String(), func(t *testing.T) {
				c := NewChecker("", root, Options{e: {Files: []pattern.Pattern{p}}})
				d := denial(t, c.CheckFile("./deny-me", "/project/lib/index.ts", "/project/lib/deny-me.ts", e))
				assert.Equal(t, "lib/deny-me.ts", d.Resolved)
				assert.Equal(t, "lib/index.ts", d.Importer)
				assert.Equal(t, KindFile, d.Kind)
			})
		}
	}
}

func TestFilePasses(t *testing.T) {
	patterns := []pattern.Pattern{pattern.Glob("other"), pattern.Glob("**/other/*"), mustRegex("other", "")}
	c := NewChecker("", root, Options{env.Client: {Files: patterns}})
	assert.NoError(t, c.CheckFile("./deny-me", "/project/lib/index.ts", "/project/lib/deny-me.ts", env.Client))
}

func TestRuleQueries(t *testing.T) {
	c := NewChecker("", root, Options{env.Client: {Files: []pattern.Pattern{pattern.Glob("a")}}})
	assert.True(t, c.HasFileRules())
	assert.Equal(t, root, c.Root())
	assert.False(t, NewChecker("", root, nil).HasFileRules())
}

// ----------------------------------------------------------------------------
// Messages
// ----------------------------------------------------------------------------

func TestSpecifierMessage(t *testing.T) {
	err := &Error{
		Package:  "vite-env-only",
		Kind:     KindSpecifier,
		Pattern:  pattern.Glob("./test"),
		Importer: "src/main.js",
		Import:   "./test",
		Env:      env.Server,
	}
	assert.Equal(t, `[vite-env-only] Import denied
 - Denied by specifier pattern: ./test
 - Importer: src/main.js
 - Import: "./test"
 - Environment: server`, err.Error())

	err.Pattern = mustRegex(`^\.\/test$`, "")
	err.Env = env.Client
	assert.Contains(t, err.Error(), ` - Denied by specifier pattern: /^\.\/test$/`)
}

func TestFileMessage(t *testing.T) {
	err := &Error{
		Package:  "vite-env-only",
		Kind:     KindFile,
		Pattern:  pattern.Glob("lib/test.js"),
		Importer: "src/main.js",
		Import:   "./test",
		Resolved: "lib/test.js",
		Env:      env.Server,
	}
	assert.Equal(t, `[vite-env-only] Import denied
 - Denied by file pattern: lib/test.js
 - Importer: src/main.js
 - Import: "./test"
 - Resolved: lib/test.js
 - Environment: server`, err.Error())

	err.Importer = ""
	err.Env = env.Client
	assert.Equal(t, `[vite-env-only] Import denied
 - Denied by file pattern: lib/test.js
 - Import: "./test"
 - Resolved: lib/test.js
 - Environment: client`, err.Error())
}

func TestFileWithoutImporter(t *testing.T) {
	c := NewChecker("my-pkg", root, Options{env.Client: {Files: []pattern.Pattern{pattern.Glob("lib/*")}}})
	d := denial(t, c.CheckFile("/project/lib/a.ts", "", "/project/lib/a.ts", env.Client))
	assert.Empty(t, d.Importer)
	assert.Contains(t, d.Error(), "[my-pkg] Import denied")
}

// ----------------------------------------------------------------------------
// Validators
// ----------------------------------------------------------------------------

func TestValidateImport(t *testing.T) {
	validators := Validators{
		env.Server: {pattern.Literal("node:fs"), mustRegex("^server/", "")},
		env.Client: {pattern.Literal("react-dom/client")},
	}

	assert.NoError(t, ValidateImport("node:fs", "/project/a.ts", root, validators, env.Server))
	assert.NoError(t, ValidateImport("lodash", "/project/a.ts", root, validators, env.Client))

	err := ValidateImport("node:fs", "/project/src/a.ts", root, validators, env.Client)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDenied))
	assert.Equal(t, `Import from "node:fs" in "src/a.ts" is not allowed in the client module graph`, err.Error())

	err = ValidateImport("server/db", "", root, validators, env.Client)
	require.Error(t, err)
	assert.Equal(t, `Import from "server/db" is not allowed in the client module graph`, err.Error())

	err = ValidateImport("react-dom/client", "", root, validators, env.Server)
	require.Error(t, err)
	assert.Equal(t, `Import from "react-dom/client" is not allowed in the server module graph`, err.Error())
}

func TestValidateFile(t *testing.T) {
	validators := Validators{
		env.Client: {pattern.Literal("lib/client-only.ts")},
		env.Server: {mustRegex(`\.client\.ts$`, "")},
	}

	// A file listed for the client is rejected on the server
	err := ValidateFile("/project/lib/client-only.ts", "/project/path/to/importer.ts", root, validators, env.Server)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDenied))
	assert.Equal(t, `File "lib/client-only.ts" imported by "path/to/importer.ts" is not allowed in the server module graph`, err.Error())

	err = ValidateFile("/project/ui/button.client.ts", "", root, validators, env.Client)
	require.Error(t, err)
	assert.Equal(t, `File "ui/button.client.ts" is not allowed in the client module graph`, err.Error())

	assert.NoError(t, ValidateFile("/project/lib/client-only.ts", "", root, validators, env.Client))
	assert.NoError(t, ValidateFile("/project/lib/shared.ts", "", root, nil, env.Client))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "specifier", KindSpecifier.String())
	assert.Equal(t, "file", KindFile.String())
}

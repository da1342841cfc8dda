package api

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HugoDaniel/envonly/internal/env"
	"github.com/HugoDaniel/envonly/internal/sourcemap"
)

const source = `import { serverOnly$ } from "vite-env-only"
import { db } from "./db.server"
export const loader = serverOnly$(() => db.query())`

func resetEnv(t *testing.T) {
	t.Helper()
	env.Default.Reset()
	t.Cleanup(env.Default.Reset)
}

// ----------------------------------------------------------------------------
// Transform
// ----------------------------------------------------------------------------

func TestTransform(t *testing.T) {
	result := Transform(source, "route.js", TransformOptions{SSR: true})
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	expected := "import { db } from \"./db.server\";\nexport const loader = () => db.query();"
	if result.Code != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, result.Code)
	}
	if result.Macros != 1 {
		t.Errorf("expected 1 macro, got %d", result.Macros)
	}

	result = Transform(source, "route.js", TransformOptions{})
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Code != "export const loader = undefined;" {
		t.Errorf("unexpected client output: %s", result.Code)
	}
	if result.Removed != 2 {
		t.Errorf("expected 2 removals, got %d", result.Removed)
	}
}

func TestTransformEnvOverridesSSR(t *testing.T) {
	result := Transform(source, "route.js", TransformOptions{Env: "client", SSR: true})
	require.Empty(t, result.Errors)
	assert.Equal(t, "export const loader = undefined;", result.Code)
}

func TestTransformInvalidEnv(t *testing.T) {
	result := Transform(source, "route.js", TransformOptions{Env: "edge"})
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "environment must be one of: 'server', 'client'")
	assert.Empty(t, result.Code)
}

func TestTransformSyntaxError(t *testing.T) {
	result := Transform("const = 1", "bad.js", TransformOptions{})
	require.Len(t, result.Errors, 1)
	// The message is followed by its code frame
	assert.True(t, strings.HasPrefix(result.Errors[0], "bad.js:1:"), result.Errors[0])
	assert.Contains(t, result.Errors[0], "> 1 | const = 1")
}

func TestTransformSourceMap(t *testing.T) {
	result := Transform(source, "src/route.js", TransformOptions{SSR: true, SourceMap: true, IncludeSource: true})
	require.Empty(t, result.Errors)
	require.NotEmpty(t, result.SourceMap)
	assert.True(t, strings.HasPrefix(result.SourceMapDataURI, "data:application/json;"))

	sm, err := sourcemap.Parse([]byte(result.SourceMap))
	require.NoError(t, err)
	assert.Equal(t, 3, sm.Version)
	assert.Equal(t, []string{"src/route.js"}, sm.Sources)
	assert.Equal(t, []string{source}, sm.SourcesContent)
}

func TestTransformNoSourceMap(t *testing.T) {
	result := Transform(source, "route.js", TransformOptions{})
	assert.Empty(t, result.SourceMap)
	assert.Empty(t, result.SourceMapDataURI)
}

// ----------------------------------------------------------------------------
// Runtime macros
// ----------------------------------------------------------------------------

func TestOnly(t *testing.T) {
	resetEnv(t)

	// Unset environment
	_, err := Only(EnvServer, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreplacedMacro))

	require.NoError(t, SetEnv(EnvServer))
	v, err := Only(EnvServer, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	s, err := Only(EnvClient, "client")
	require.Error(t, err)
	assert.Equal(t, "", s)
	assert.Equal(t, strings.Join([]string{
		"vite-env-only: unreplaced macro",
		"",
		"Did you forget to add the 'vite-env-only' plugin to your Vite config?",
	}, "\n"), err.Error())
}

func TestSetEnv(t *testing.T) {
	resetEnv(t)

	_, ok := GetEnv()
	assert.False(t, ok)

	require.NoError(t, SetEnv(EnvClient))
	require.NoError(t, SetEnv(EnvClient))

	err := SetEnv(EnvServer)
	require.Error(t, err)
	assert.True(t, errors.Is(err, env.ErrConflict))
	assert.Equal(t, "vite-env-only: cannot change environment from 'client' to 'server'", err.Error())
	assert.Contains(t, ErrorMessage(err), "Environment was already set to 'client'")

	e, ok := GetEnv()
	assert.True(t, ok)
	assert.Equal(t, EnvClient, e)
}

func TestServerOnlyClientOnly(t *testing.T) {
	resetEnv(t)
	require.NoError(t, SetEnv(EnvServer))

	_, err := ServerOnly(1)
	assert.True(t, errors.Is(err, ErrUnreplacedMacro))
	_, err = ClientOnly("a")
	assert.True(t, errors.Is(err, ErrUnreplacedMacro))
}

func TestLegacyMacros(t *testing.T) {
	assert.Equal(t, 1, Server(1))
	assert.Equal(t, "a", Client("a"))
}

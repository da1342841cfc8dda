package sourcemap

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ----------------------------------------------------------------------------
// Generator Tests
// ----------------------------------------------------------------------------

func TestGeneratorSingleMapping(t *testing.T) {
	g := NewGenerator("const x = 1;")
	g.SetSourceName("input.js")
	g.AddMapping(0, 6, 6, "x")
	sm := g.Generate()

	assert.Equal(t, 3, sm.Version)
	assert.Equal(t, []string{"input.js"}, sm.Sources)
	assert.Equal(t, []string{"x"}, sm.Names)
	assert.Equal(t, "MAAMA", sm.Mappings)

	decoded, err := DecodeMappings(sm.Mappings)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, Mapping{GenLine: 0, GenCol: 6, SrcLine: 0, SrcCol: 6, NameIndex: 0}, decoded[0])
}

func TestGeneratorNamesDeduplicated(t *testing.T) {
	g := NewGenerator("a a a")
	g.AddMapping(0, 0, 0, "a")
	g.AddMapping(0, 2, 2, "a")
	g.AddMapping(0, 4, 4, "a")
	sm := g.Generate()
	assert.Equal(t, []string{"a"}, sm.Names)
}

func TestGeneratorDropsRedundantMapping(t *testing.T) {
	g := NewGenerator("abc")
	g.AddMapping(0, 0, 1, "")
	g.AddMapping(0, 3, 1, "")
	g.AddMapping(1, 0, 1, "")
	decoded, err := DecodeMappings(g.Generate().Mappings)
	require.NoError(t, err)
	assert.Len(t, decoded, 2)
}

func TestGeneratorMultipleLines(t *testing.T) {
	src := "let a;\nlet b;\n"
	g := NewGenerator(src)
	g.AddMapping(0, 0, 0, "")
	g.AddMapping(2, 4, 11, "b")
	sm := g.Generate()
	assert.Equal(t, 2, strings.Count(sm.Mappings, ";"))

	decoded, err := DecodeMappings(sm.Mappings)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, 2, decoded[1].GenLine)
	assert.Equal(t, 1, decoded[1].SrcLine)
	assert.Equal(t, 4, decoded[1].SrcCol)
	assert.True(t, decoded[1].HasName())
	assert.False(t, decoded[0].HasName())
}

func TestGeneratorSourcesContent(t *testing.T) {
	g := NewGenerator("x")
	sm := g.Generate()
	assert.Nil(t, sm.SourcesContent)

	g.IncludeSourceContent(true)
	sm = g.Generate()
	assert.Equal(t, []string{"x"}, sm.SourcesContent)
}

// ----------------------------------------------------------------------------
// Encoding Tests
// ----------------------------------------------------------------------------

func TestEncodeMappingsDeltas(t *testing.T) {
	mappings := []Mapping{
		{GenLine: 0, GenCol: 0, SrcLine: 0, SrcCol: 0, NameIndex: -1},
		{GenLine: 0, GenCol: 4, SrcLine: 0, SrcCol: 6, NameIndex: 0},
		{GenLine: 1, GenCol: 2, SrcLine: 3, SrcCol: 1, NameIndex: 1},
	}
	encoded := EncodeMappings(mappings)
	assert.Equal(t, "AAAA,IAAMA;EAGLC", encoded)

	decoded, err := DecodeMappings(encoded)
	require.NoError(t, err)
	assert.Equal(t, mappings, decoded)
}

func TestDecodeMappingsEmpty(t *testing.T) {
	decoded, err := DecodeMappings("")
	require.NoError(t, err)
	assert.Empty(t, decoded)

	decoded, err = DecodeMappings(";;")
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestDecodeMappingsInvalid(t *testing.T) {
	_, err := DecodeMappings("AAAA,!!")
	assert.ErrorIs(t, err, ErrInvalidVLQ)
}

func TestOriginalPositionFor(t *testing.T) {
	mappings := []Mapping{
		{GenLine: 0, GenCol: 0, SrcCol: 0, NameIndex: -1},
		{GenLine: 0, GenCol: 10, SrcCol: 20, NameIndex: -1},
		{GenLine: 2, GenCol: 5, SrcLine: 4, NameIndex: -1},
	}
	m, ok := OriginalPositionFor(mappings, 0, 12)
	require.True(t, ok)
	assert.Equal(t, 20, m.SrcCol)

	_, ok = OriginalPositionFor(mappings, 1, 0)
	assert.False(t, ok)

	_, ok = OriginalPositionFor(mappings, 2, 4)
	assert.False(t, ok)

	m, ok = OriginalPositionFor(mappings, 2, 5)
	require.True(t, ok)
	assert.Equal(t, 4, m.SrcLine)
}

// ----------------------------------------------------------------------------
// Output Format Tests
// ----------------------------------------------------------------------------

func TestSourceMapJSON(t *testing.T) {
	g := NewGenerator("x")
	g.SetFile("out.js")
	g.SetSourceName("in.js")
	g.AddMapping(0, 0, 0, "")
	sm := g.Generate()

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(sm.ToJSON()), &decoded))
	assert.Equal(t, float64(3), decoded["version"])
	assert.Equal(t, "out.js", decoded["file"])
	assert.Equal(t, "AAAA", decoded["mappings"])

	parsed, err := Parse([]byte(sm.ToJSON()))
	require.NoError(t, err)
	assert.Equal(t, sm, parsed)
}

func TestParseRejectsVersion(t *testing.T) {
	_, err := Parse([]byte(`{"version":2,"sources":[],"names":[],"mappings":""}`))
	assert.Error(t, err)
	_, err = Parse([]byte(`{`))
	assert.Error(t, err)
}

func TestSourceMapComment(t *testing.T) {
	sm := &SourceMap{Version: 3, File: "app.js", Sources: []string{"app.js"}, Names: []string{}}
	assert.Equal(t, "//# sourceMappingURL=app.js.map", sm.ToComment(false))

	inline := sm.ToComment(true)
	prefix := "//# sourceMappingURL=data:application/json;charset=utf-8;base64,"
	require.True(t, strings.HasPrefix(inline, prefix))
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(inline, prefix))
	require.NoError(t, err)
	assert.JSONEq(t, sm.ToJSON(), string(data))
}

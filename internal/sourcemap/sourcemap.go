package sourcemap

import (
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// SourceMap represents a Source Map v3 document.
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// Mapping is one decoded segment. Lines and columns are 0-indexed; source
// columns are in UTF-16 code units.
type Mapping struct {
	GenLine   int
	GenCol    int
	SrcIndex  int
	SrcLine   int
	SrcCol    int
	NameIndex int // -1 when the segment has no name
}

// HasName reports whether the mapping carries a name.
func (m Mapping) HasName() bool {
	return m.NameIndex >= 0
}

// Generator collects mappings while code is printed and encodes them once
// printing is done. A Generator describes a single original source.
type Generator struct {
	source        string
	lineIndex     *LineIndex
	mappings      []Mapping
	names         map[string]int
	namesList     []string
	file          string
	sourceName    string
	includeSource bool
}

// NewGenerator creates a generator for the given original source.
func NewGenerator(source string) *Generator {
	return &Generator{
		source:    source,
		lineIndex: NewLineIndex(source),
		names:     make(map[string]int),
		namesList: []string{},
	}
}

// SetFile sets the generated file name.
func (g *Generator) SetFile(file string) {
	g.file = file
}

// SetSourceName sets the original file name recorded in "sources".
func (g *Generator) SetSourceName(name string) {
	g.sourceName = name
}

// IncludeSourceContent controls whether "sourcesContent" is emitted.
func (g *Generator) IncludeSourceContent(include bool) {
	g.includeSource = include
}

// AddMapping maps the generated position (genLine, genCol) to the byte
// offset srcOffset of the original source. A non-empty name records the
// original identifier. A mapping identical in source position to the
// previous one on the same generated line is dropped.
func (g *Generator) AddMapping(genLine, genCol, srcOffset int, name string) {
	srcLine, srcCol := g.lineIndex.ByteOffsetToLineColumnUTF16(srcOffset)
	m := Mapping{GenLine: genLine, GenCol: genCol, SrcLine: srcLine, SrcCol: srcCol, NameIndex: -1}
	if name != "" {
		idx, ok := g.names[name]
		if !ok {
			idx = len(g.namesList)
			g.names[name] = idx
			g.namesList = append(g.namesList, name)
		}
		m.NameIndex = idx
	}

	if n := len(g.mappings); n > 0 {
		last := g.mappings[n-1]
		if last.GenLine == genLine && last.SrcLine == srcLine && last.SrcCol == srcCol && last.NameIndex == m.NameIndex {
			return
		}
	}
	g.mappings = append(g.mappings, m)
}

// Generate produces the final SourceMap.
func (g *Generator) Generate() *SourceMap {
	sm := &SourceMap{
		Version:  3,
		File:     g.file,
		Sources:  []string{g.sourceName},
		Names:    g.namesList,
		Mappings: EncodeMappings(g.mappings),
	}
	if g.includeSource {
		sm.SourcesContent = []string{g.source}
	}
	return sm
}

// EncodeMappings encodes mappings, which must be sorted by generated
// position, into a "mappings" string.
func EncodeMappings(mappings []Mapping) string {
	var buf []byte
	var prev Mapping
	prevName := 0
	line := 0
	for i, m := range mappings {
		if m.GenLine > line {
			for ; line < m.GenLine; line++ {
				buf = append(buf, ';')
			}
			prev.GenCol = 0
		} else if i > 0 {
			buf = append(buf, ',')
		}

		buf = AppendVLQ(buf, m.GenCol-prev.GenCol)
		buf = AppendVLQ(buf, m.SrcIndex-prev.SrcIndex)
		buf = AppendVLQ(buf, m.SrcLine-prev.SrcLine)
		buf = AppendVLQ(buf, m.SrcCol-prev.SrcCol)
		if m.HasName() {
			buf = AppendVLQ(buf, m.NameIndex-prevName)
			prevName = m.NameIndex
		}
		prev = m
	}
	return string(buf)
}

// DecodeMappings decodes a "mappings" string. Segments with a single field
// (generated column only) are skipped.
func DecodeMappings(mappings string) ([]Mapping, error) {
	var result []Mapping
	var srcIndex, srcLine, srcCol, name int

	for genLine, line := range strings.Split(mappings, ";") {
		genCol := 0
		for _, segment := range strings.Split(line, ",") {
			if segment == "" {
				continue
			}
			values, err := decodeSegment(segment)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", genLine)
			}
			genCol += values[0]
			if len(values) == 1 {
				continue
			}
			srcIndex += values[1]
			srcLine += values[2]
			srcCol += values[3]
			m := Mapping{GenLine: genLine, GenCol: genCol, SrcIndex: srcIndex, SrcLine: srcLine, SrcCol: srcCol, NameIndex: -1}
			if len(values) == 5 {
				name += values[4]
				m.NameIndex = name
			}
			result = append(result, m)
		}
	}
	return result, nil
}

// OriginalPositionFor returns the mapping covering the generated position:
// the last mapping on genLine whose column is not after genCol.
func OriginalPositionFor(mappings []Mapping, genLine, genCol int) (Mapping, bool) {
	i := sort.Search(len(mappings), func(i int) bool {
		m := mappings[i]
		return m.GenLine > genLine || (m.GenLine == genLine && m.GenCol > genCol)
	})
	if i == 0 || mappings[i-1].GenLine != genLine {
		return Mapping{}, false
	}
	return mappings[i-1], true
}

// Parse decodes a JSON source map.
func Parse(data []byte) (*SourceMap, error) {
	var sm SourceMap
	if err := json.Unmarshal(data, &sm); err != nil {
		return nil, errors.Wrap(err, "parse source map")
	}
	if sm.Version != 3 {
		return nil, errors.Newf("unsupported source map version %d", sm.Version)
	}
	return &sm, nil
}

// ToJSON returns the source map as a JSON string.
func (sm *SourceMap) ToJSON() string {
	data, _ := json.Marshal(sm)
	return string(data)
}

// ToDataURI returns the source map as a base64 data URI.
func (sm *SourceMap) ToDataURI() string {
	return "data:application/json;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(sm.ToJSON()))
}

// ToComment returns the trailing "//# sourceMappingURL=" comment, either
// inlining the map or pointing at "<file>.map".
func (sm *SourceMap) ToComment(inline bool) string {
	if inline {
		return "//# sourceMappingURL=" + sm.ToDataURI()
	}
	return "//# sourceMappingURL=" + sm.File + ".map"
}

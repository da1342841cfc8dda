package macro

import (
	"strings"

	"github.com/HugoDaniel/envonly/internal/printer"
)

// UnreplacedMessage is thrown by a macro that reached runtime.
func UnreplacedMessage(pkg string) string {
	return strings.Join([]string{
		pkg + ": unreplaced macro",
		"",
		"Did you forget to add the '" + pkg + "' plugin to your Vite config?",
	}, "\n")
}

// StubModule returns the runtime source of the macro module source. Every
// macro it exports throws UnreplacedMessage, except the legacy server$
// and client$, which return their argument unchanged. An unknown source
// yields an empty module.
func StubModule(pkg, source string) string {
	var names []string
	for _, s := range DefaultSpecs(pkg) {
		if s.Source == source {
			names = append(names, s.Name)
		}
	}

	var sb strings.Builder
	sb.WriteString("const unreplaced = () => {\n")
	sb.WriteString("  throw Error(")
	sb.WriteString(printer.QuoteString(UnreplacedMessage(pkg)))
	sb.WriteString(");\n};")
	for _, name := range names {
		sb.WriteString("\nexport const ")
		sb.WriteString(name)
		if name == "server$" || name == "client$" {
			sb.WriteString(" = value => value;")
		} else {
			sb.WriteString(" = unreplaced;")
		}
	}
	if len(names) == 0 {
		return "export {};"
	}
	return sb.String()
}

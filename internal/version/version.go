package version

import (
	"strings"

	"github.com/fatih/color"
)

// Build metadata for the nihil CLI. Number, GitCommit, GitMessage and
// BuildDate are plain strings so release builds can override them with
// -ldflags "-X nihil/internal/version.Number=...".

var (
	// Number is the semantic version of the CLI, without decoration.
	Number = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""

	// Version is Number with each dotted component colored for terminal
	// banners. Derived during package init, so it tracks an overridden
	// Number.
	Version = colorize(Number)
)

var componentColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// colorize paints the dotted components of a semantic version, leaving
// the separators and any pre-release suffix unstyled.
func colorize(number string) string {
	rest := ""
	if i := strings.IndexByte(number, '-'); i >= 0 {
		number, rest = number[:i], number[i:]
	}
	parts := strings.Split(number, ".")
	for i, p := range parts {
		parts[i] = componentColors[i%len(componentColors)].Sprint(p)
	}
	return strings.Join(parts, ".") + rest
}

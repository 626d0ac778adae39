package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"        _       _   _ _            ", "#818cf8"},
	{"  _ __ | | ___ | |_| (_)_ __   ___ ", "#a78bfa"},
	{" | '_ \\| |/ _ \\| __| | | '_ \\ / _ \\", "#c084fc"},
	{" | |_) | | (_) | |_| | | | | |  __/", "#e879f9"},
	{" | .__/|_|\\___/ \\__|_|_|_| |_|\\___|", "#f472b6"},
	{" |_|                               ", "#fb7185"},
}

// PrintBanner writes the ASCII banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  "+version).Faint())
	}
	fmt.Fprintln(w)
}

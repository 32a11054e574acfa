package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"       _               _          _",
	"  _ __(_)_ __  ___  __| |___ __ _| |__",
	" | '_ \\ | '_ \\/ -_)/ _` / -_) _| / /",
	" | .__/_| .__/\\___|\\__,_\\___\\__|_\\_\\",
	" |_|    |_|",
}

var bannerColors = []string{"#38bdf8", "#22d3ee", "#2dd4bf", "#34d399", "#4ade80"}

// PrintBanner writes the pipedeck banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(out)
	for i, line := range bannerLines {
		fmt.Fprintln(out, out.String(line).Foreground(out.Color(bannerColors[i%len(bannerColors)])))
	}
	fmt.Fprintln(out, out.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(out)
}

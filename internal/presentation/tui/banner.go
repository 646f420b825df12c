package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the arbor banner and version to w.
func PrintBanner(w io.Writer, p termenv.Profile, version string) {
	lines := []struct {
		text  string
		color string
	}{
		{`   __ _ _ __| |__   ___  _ __ `, "#818cf8"},
		{`  / _' | '__| '_ \ / _ \| '__|`, "#a78bfa"},
		{` | (_| | |  | |_) | (_) | |   `, "#c084fc"},
		{`  \__,_|_|  |_.__/ \___/|_|   `, "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, p.String("  v"+version).Faint())
	fmt.Fprintln(w)
}

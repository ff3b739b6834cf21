// Package diffview turns a diff.Result into text for people to read.
//
// Three layouts are available: inline marked lines, a column-aligned
// side-by-side table and a one-line summary. Colour is a separate
// decoration step (see Colorizer) so layout never depends on a terminal.
package diffview

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/illarion/envlock/internal/diff"
	"github.com/illarion/envlock/internal/format"
	"github.com/illarion/envlock/internal/secrets"
)

// Format names a diff layout
type Format string

const (
	Inline     Format = "inline"
	SideBySide Format = "side-by-side"
	Summary    Format = "summary"
)

// Formats lists every supported layout
var Formats = []Format{Inline, SideBySide, Summary}

// ErrUnknownFormat is matched by every *UnknownFormatError
var ErrUnknownFormat = errors.New("unknown diff format")

// UnknownFormatError reports a diff layout outside the supported set
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown diff format %q (supported: inline, side-by-side, summary)", e.Format)
}

func (e *UnknownFormatError) Is(target error) bool {
	return target == ErrUnknownFormat
}

// ParseFormat converts user input into a Format
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", &UnknownFormatError{Format: s}
}

// Options control Render
type Options struct {
	Format   Format
	Colorize bool
	// Colorizer overrides the ANSI colorizer used when Colorize is set
	Colorizer Colorizer
}

func (o Options) colorizer() Colorizer {
	if !o.Colorize {
		return Plain
	}
	if o.Colorizer != nil {
		return o.Colorizer
	}
	return ANSI
}

// Render formats r according to opts
func Render(r *diff.Result, opts Options) (string, error) {
	color := opts.colorizer()
	switch opts.Format {
	case Inline:
		return renderInline(r, color), nil
	case SideBySide:
		return renderTable(r, color), nil
	case Summary:
		return renderSummary(r), nil
	default:
		return "", &UnknownFormatError{Format: string(opts.Format)}
	}
}

func renderInline(r *diff.Result, color Colorizer) string {
	var lines []string
	entries := func(m *secrets.Map, marker string, role Role) {
		m.Each(func(k, v string) {
			lines = append(lines, color(marker+" "+k+"="+format.QuoteEnv(v), role))
		})
	}

	entries(r.Added, "+", RoleAdded)
	for _, c := range r.Modified {
		lines = append(lines,
			color("~ "+c.Key, RoleModified),
			"  "+color("- "+format.QuoteEnv(c.Old), RoleRemoved),
			"  "+color("+ "+format.QuoteEnv(c.New), RoleAdded),
		)
	}
	entries(r.Removed, "-", RoleRemoved)
	entries(r.LocalOnly, "!", RoleLocal)

	return strings.Join(lines, "\n")
}

func renderSummary(r *diff.Result) string {
	c := r.Counts()
	parts := make([]string, 0, 4)
	for _, p := range []struct {
		label string
		n     int
	}{
		{"Added", c.Added},
		{"Modified", c.Modified},
		{"Removed", c.Removed},
		{"Local-only", c.LocalOnly},
	} {
		if p.n > 0 {
			parts = append(parts, p.label+": "+strconv.Itoa(p.n))
		}
	}
	return strings.Join(parts, ", ")
}

// Column headers of the side-by-side table
const (
	HeaderKey    = "KEY"
	HeaderLocal  = "LOCAL"
	HeaderVault  = "VAULT"
	HeaderStatus = "STATUS"
)

type row struct {
	cells [4]string
	role  Role
}

// cell makes text safe to place between column delimiters
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	return strings.ReplaceAll(s, "|", `\|`)
}

func value(v string) string {
	return cell(format.QuoteEnv(v))
}

func tableRows(r *diff.Result) []row {
	var rows []row
	r.Added.Each(func(k, v string) {
		rows = append(rows, row{[4]string{cell(k), "", value(v), "added"}, RoleAdded})
	})
	for _, c := range r.Modified {
		rows = append(rows, row{[4]string{cell(c.Key), value(c.Old), value(c.New), "modified"}, RoleModified})
	}
	r.Removed.Each(func(k, v string) {
		rows = append(rows, row{[4]string{cell(k), value(v), "", "removed"}, RoleRemoved})
	})
	r.LocalOnly.Each(func(k, v string) {
		rows = append(rows, row{[4]string{cell(k), value(v), "", "local"}, RoleLocal})
	})
	return rows
}

// renderTable lays out every line from one set of column widths, so pipe
// positions are identical across header, separator and rows.
func renderTable(r *diff.Result, color Colorizer) string {
	header := [4]string{HeaderKey, HeaderLocal, HeaderVault, HeaderStatus}
	rows := tableRows(r)

	var widths [4]int
	measure := func(cells [4]string) {
		for i, c := range cells {
			if w := ansi.StringWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(header)
	for _, rw := range rows {
		measure(rw.cells)
	}

	line := func(cells [4]string) string {
		return "| " + strings.Join(cells[:], " | ") + " |"
	}
	pad := func(cells [4]string) [4]string {
		for i, c := range cells {
			cells[i] = c + strings.Repeat(" ", widths[i]-ansi.StringWidth(c))
		}
		return cells
	}

	var sep [4]string
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, line(pad(header)), line(sep))
	for _, rw := range rows {
		cells := pad(rw.cells)
		cells[3] = color(cells[3], rw.role)
		lines = append(lines, line(cells))
	}
	return strings.Join(lines, "\n")
}

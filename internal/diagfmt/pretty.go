package diagfmt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"vigil/internal/diag"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan, color.Bold)
	locColor  = color.New(color.Bold)
	noteColor = color.New(color.FgBlue)
)

// Pretty renders each diagnostic as
//
//	path:line:col: SEVERITY CODE: message
//
// optionally followed by the source line with a caret underline and by
// note lines. The bag is expected to be sorted.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	for _, d := range bag.Items() {
		prettyOne(w, d, opts)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, opts PrettyOpts) {
	sev := severityLabel(d.Severity, opts.Color)
	loc := d.Primary.String() + ":"
	if opts.Color {
		loc = locColor.Sprint(loc)
	}
	fmt.Fprintf(w, "%s %s %s: %s\n", loc, sev, d.Code, d.Message)

	if opts.ShowPreview {
		preview(w, d, opts.Color)
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			line := fmt.Sprintf("  note: %s: %s", n.Span, n.Msg)
			if opts.Color {
				line = noteColor.Sprint(line)
			}
			fmt.Fprintln(w, line)
		}
	}
}

func severityLabel(s diag.Severity, colored bool) string {
	label := strings.ToLower(s.String())
	if !colored {
		return label
	}
	switch s {
	case diag.SevError:
		return errColor.Sprint(label)
	case diag.SevWarning:
		return warnColor.Sprint(label)
	default:
		return infoColor.Sprint(label)
	}
}

// preview prints the source line and a caret run under the span. Caret
// alignment accounts for tabs and wide runes in the prefix.
func preview(w io.Writer, d diag.Diagnostic, colored bool) {
	sp := d.Primary
	if sp.Empty() || sp.Col == 0 {
		return
	}
	text, ok := readLine(sp.Path, int(sp.Line))
	if !ok {
		return
	}
	expanded := strings.ReplaceAll(text, "\t", "    ")
	fmt.Fprintf(w, "  %s\n", expanded)

	prefix := text[:min(int(sp.Col)-1, len(text))]
	pad := runewidth.StringWidth(strings.ReplaceAll(prefix, "\t", "    "))
	n := int(sp.Len())
	if n < 1 {
		n = 1
	}
	caret := "^" + strings.Repeat("~", n-1)
	if colored {
		caret = errColor.Sprint(caret)
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", pad), caret)
}

func readLine(path string, line int) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for i := 1; sc.Scan(); i++ {
		if i == line {
			return sc.Text(), true
		}
	}
	return "", false
}

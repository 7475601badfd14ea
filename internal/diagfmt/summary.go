package diagfmt

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"vigil/internal/diag"
)

var (
	summaryOkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)
	summaryBadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("1")).
			Padding(0, 1)
	summaryWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")).
			Bold(true)
)

// Summary prints a closing line after a run: counts of errors and
// warnings, styled when colored output is on.
func Summary(w io.Writer, bag *diag.Bag, colored bool) {
	errs, warns := 0, 0
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}

	var text string
	style := summaryOkStyle
	switch {
	case errs > 0:
		text = fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
		style = summaryBadStyle
	case warns > 0:
		text = fmt.Sprintf("%d warning(s)", warns)
		style = summaryWarnStyle
	default:
		text = "no diagnostics"
	}

	if colored {
		fmt.Fprintln(w, style.Render(text))
		return
	}
	fmt.Fprintln(w, text)
}

package diagfmt

import (
	"fmt"
	"io"

	"vigil/internal/diag"
)

// Short writes the stable one-line-per-diagnostic form used by golden
// files and scripting.
func Short(w io.Writer, bag *diag.Bag, includeNotes bool) {
	s := diag.FormatShort(bag.Items(), includeNotes)
	if s == "" {
		return
	}
	fmt.Fprintln(w, s)
}

// Package diagfmt renders diagnostic bags for the CLI: a colored
// human-readable form with source previews, a one-line short form, and
// a machine-readable JSON form.
package diagfmt

// PrettyOpts configures the human-readable renderer.
type PrettyOpts struct {
	// Color enables ANSI styling.
	Color bool
	// ShowNotes includes secondary note lines.
	ShowNotes bool
	// ShowPreview includes the offending source line with a caret
	// underline. The file is read from disk; a missing file silently
	// drops the preview.
	ShowPreview bool
}

// JSONOpts configures the JSON renderer.
type JSONOpts struct {
	IncludeNotes bool
	// Max truncates the output, not the bag. 0 means no limit.
	Max int
}

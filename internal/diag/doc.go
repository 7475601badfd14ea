// Package diag defines the diagnostic model for the analysis pipeline:
// stable codes, severities, the Bag accumulator and the Reporter contract
// phases emit through. Code strings (A001, B004, C010, W001) are an
// external contract and must not change between releases.
package diag

// Package identity parses and renders the filename conventions shared by
// every pipeline stage.
//
// Two conventions exist: artwork files named by the authoring tool
// (underscore delimited, card id first) and rendered images named by the
// external renderer (fixed-width layout with the stable card id at a constant
// byte offset). The codec is pure: no I/O, and rendering the same identity
// under the same scheme always yields the same filename.
package identity

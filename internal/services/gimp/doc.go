// Package gimp wraps console-mode GIMP invocations. Rendering runs as named
// batch operations over an input and output folder; the renderer script is
// expected to be installed in GIMP's script path.
package gimp

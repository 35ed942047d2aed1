// Package packaging assembles rendered card pools into deliverable outputs:
// print vendor archives, tabletop client packs, and database thumbnail trees.
// Archive assembly is format-agnostic; the same layout logic feeds a zip or a
// tar+zstd container through one writer interface.
package packaging

// Command cardpress turns a card data spreadsheet and a pool of artwork into
// print and tabletop deliverables: thumbnail trees, OCTGN set packs, proof
// sheet PDFs, and print vendor archives. Runs are incremental; unchanged sets
// and cards are detected by snapshot fingerprints and skipped.
package main

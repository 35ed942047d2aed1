// Package workflow drives the pipeline: it expands the configured sets and
// languages into ledger items and moves each one through fingerprinting,
// rendering, and packaging in order. Pairs are processed sequentially; a
// failing pair is recorded and the run continues with the next one.
package workflow

// Package runlog persists the processing ledger: one item per (set, language)
// pair, moved through the pipeline statuses as stages run. The ledger survives
// restarts so an interrupted run can be inspected and resumed, and failed
// pairs stay visible until cleared or retried.
package runlog

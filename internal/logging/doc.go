// Package logging builds the slog loggers used across the pipeline.
//
// Two handler formats are supported: a pretty console handler for interactive
// use and a JSON handler for machine-readable logs. Helpers re-export slog
// attribute constructors so call sites stay terse, and standardized field
// names keep set/language/stage context consistent across packages.
package logging

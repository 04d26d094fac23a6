// Package types defines the record kinds, the Record and Backend interfaces,
// collection schemas, and the standard errors for the Pantry storage system.
//
// Five collections share one shape: an ordered list of flat records with an
// identifier, persisted as a whole on every change. See Schema for the
// per-collection field metadata that drives generic filtering and sorting.
package types

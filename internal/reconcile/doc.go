// Package reconcile merges a fresh nutrition snapshot into the previous food
// database.
//
// The snapshot decides which foods exist and in what order. For every name
// it carries, the previous record is reused when nothing changed, updated
// when the calories moved or the English name is missing, and created (with
// a translation) when the name is new. Names missing from the snapshot are
// dropped. Reconcile never writes anything; persisting the result is up to
// the caller.
package reconcile

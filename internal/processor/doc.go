// Package processor runs one food database sync end to end: read the
// snapshot, load the previous database, reconcile, then save with a backup
// and feed the optional SQLite export and object storage publish.
package processor

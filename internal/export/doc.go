// Package export mirrors the food database into a SQLite file, for tools
// that would rather query a table than parse JSON.
package export

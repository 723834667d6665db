// Package source reads the nutrition snapshot the food database is synced
// from. The snapshot is a spreadsheet export in CSV form, read either from
// disk or over HTTP, optionally prefixed by a UTF-8 byte order mark and by
// title rows that precede the header. Columns are picked by header name and
// every data row becomes a fixed Row value.
package source

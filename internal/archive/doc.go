// Package archive keeps the single-generation backup of the food database.
package archive

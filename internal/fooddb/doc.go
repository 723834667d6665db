// Package fooddb holds the food record type and the JSON file that persists
// the record set between runs. Saving keeps exactly one backup of the
// previous file and never leaves a half-written database behind.
package fooddb

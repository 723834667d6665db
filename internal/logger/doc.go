// Package logger builds the zap logger used across foodsync. It supports a
// human readable console encoding for interactive runs and JSON for CI logs.
package logger

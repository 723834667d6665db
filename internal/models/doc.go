// Package models lists the OpenAI chat models usable for translating food
// names with the current API key.
package models

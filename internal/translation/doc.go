// Package translation turns Chinese food names into English.
//
// A Translator is any service taking (text, source locale, target locale).
// Two providers exist, OpenAI chat completions and Gemini. Callers normally
// build one with NewFromConfig, which creates the provider on first use and
// wraps it in a Throttle that pauses before each call and a Breaker that backs
// off from a failing service.
// Resolve is the entry point the reconciler uses: it skips text that is
// already ASCII and turns provider errors into a Failed result that carries
// the original text.
package translation

package testutil

import (
	"context"
	"fmt"
	"sync"
)

// MockTranslator mocks translation service
type MockTranslator struct {
	Translations map[string]string
	Errors       map[string]error
	// FailFirst makes the first N calls return FailErr.
	FailFirst int
	FailErr   error

	mu    sync.Mutex
	calls []string
}

// Translate mocks translating text
func (m *MockTranslator) Translate(ctx context.Context, text, fromLang, toLang string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, fmt.Sprintf("Translate: %s (%s->%s)", text, fromLang, toLang))
	n := len(m.calls)
	m.mu.Unlock()

	if n <= m.FailFirst {
		if m.FailErr != nil {
			return "", m.FailErr
		}
		return "", fmt.Errorf("mock failure %d", n)
	}

	if err, ok := m.Errors[text]; ok {
		return "", err
	}

	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}

	// Default mock translation
	return fmt.Sprintf("mock translation of %s", text), nil
}

// Calls returns the recorded calls
func (m *MockTranslator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Translate was invoked
func (m *MockTranslator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears the recorded calls
func (m *MockTranslator) Reset() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

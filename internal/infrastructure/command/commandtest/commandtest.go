// Package commandtest provides a mock command.Runner for tests.
package commandtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
)

// MockRunner is a mock implementation of command.Runner. Expectations match
// on the program name and the argument slice.
type MockRunner struct {
	mock.Mock
}

// Output mocks the Output method. Return values are ([]byte, error).
func (m *MockRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	ret := m.Called(name, args)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}

// Stream mocks the Stream method. Return values are ([]string, error); each
// string is passed to line before the error is returned.
func (m *MockRunner) Stream(_ context.Context, name string, args []string, line func(string)) error {
	ret := m.Called(name, args)
	if lines, ok := ret.Get(0).([]string); ok {
		for _, l := range lines {
			line(l)
		}
	}
	return ret.Error(1)
}

// NewMockRunner creates a mock runner whose expectations are asserted when
// the test ends.
func NewMockRunner(t *testing.T) *MockRunner {
	t.Helper()
	m := new(MockRunner)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

package git

import (
	"context"
	"os/exec"
)

// CommandRunner is an interface for executing system commands
// This abstraction allows us to mock command execution in tests
type CommandRunner interface {
	// RunInDir executes a command in dir and returns the combined output
	RunInDir(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// RealCommandRunner is the production implementation using os/exec
type RealCommandRunner struct{}

// RunInDir executes a command in a specific directory
func (r *RealCommandRunner) RunInDir(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// MockCommandRunner is a test implementation that returns predefined responses
type MockCommandRunner struct {
	// RunInDirFunc is called when RunInDir is invoked
	RunInDirFunc func(dir, name string, args ...string) ([]byte, error)

	// Calls tracks all command invocations
	Calls []MockCall
}

// MockCall represents a single command invocation
type MockCall struct {
	Name string
	Args []string
	Dir  string
}

// RunInDir records the call and executes the mock function
func (m *MockCommandRunner) RunInDir(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, MockCall{Name: name, Args: args, Dir: dir})

	if m.RunInDirFunc != nil {
		return m.RunInDirFunc(dir, name, args...)
	}
	return []byte(""), nil
}

// NewMockCommandRunner creates a new mock with default behavior
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{Calls: make([]MockCall, 0)}
}

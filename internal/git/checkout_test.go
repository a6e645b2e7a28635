package git

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestCLI_FetchAndCheckout(t *testing.T) {
	runner := NewMockCommandRunner()
	c := NewCLI("/work", nil)
	c.Runner = runner

	if err := c.FetchAndCheckout(context.Background(), "feature/x", 20); err != nil {
		t.Fatalf("FetchAndCheckout() error = %v", err)
	}

	want := []MockCall{
		{Name: "git", Args: []string{"fetch", "origin", "--depth=20", "feature/x"}, Dir: "/work"},
		{Name: "git", Args: []string{"checkout", "feature/x"}, Dir: "/work"},
	}
	if !reflect.DeepEqual(runner.Calls, want) {
		t.Fatalf("calls = %+v, want %+v", runner.Calls, want)
	}
}

func TestCLI_FetchFailureStopsBeforeCheckout(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.RunInDirFunc = func(dir, name string, args ...string) ([]byte, error) {
		if args[0] == "fetch" {
			return []byte("fatal: couldn't find remote ref"), errors.New("exit status 128")
		}
		return nil, nil
	}
	c := NewCLI(".", nil)
	c.Runner = runner

	err := c.FetchAndCheckout(context.Background(), "gone", 1)
	if err == nil || !strings.Contains(err.Error(), "couldn't find remote ref") {
		t.Fatalf("err = %v, want fetch output in error", err)
	}
	if len(runner.Calls) != 1 {
		t.Fatalf("checkout ran after failed fetch: %+v", runner.Calls)
	}
}

func TestCLI_FetchDepth(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		want  string
	}{
		{name: "open pull request", depth: 20, want: "--depth=20"},
		{name: "new branch", depth: 1, want: "--depth=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewMockCommandRunner()
			c := NewCLI("/work", nil)
			c.Runner = runner

			if err := c.FetchAndCheckout(context.Background(), "claude/issue-1", tt.depth); err != nil {
				t.Fatalf("FetchAndCheckout() error = %v", err)
			}
			if got := runner.Calls[0].Args[2]; got != tt.want {
				t.Fatalf("depth arg = %q, want %q", got, tt.want)
			}
		})
	}
}

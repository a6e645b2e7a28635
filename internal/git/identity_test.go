package git

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestConfigureIdentity(t *testing.T) {
	tests := []struct {
		name  string
		user  string
		email string
		want  []MockCall
	}{
		{name: "nothing configured", want: []MockCall{}},
		{
			name: "both",
			user: "claude[bot]", email: "bot@example.com",
			want: []MockCall{
				{Name: "git", Args: []string{"config", "user.name", "claude[bot]"}, Dir: "/work"},
				{Name: "git", Args: []string{"config", "user.email", "bot@example.com"}, Dir: "/work"},
			},
		},
		{
			name:  "email only",
			email: "bot@example.com",
			want:  []MockCall{{Name: "git", Args: []string{"config", "user.email", "bot@example.com"}, Dir: "/work"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewMockCommandRunner()
			if err := ConfigureIdentity(context.Background(), runner, "/work", tt.user, tt.email); err != nil {
				t.Fatalf("ConfigureIdentity() error = %v", err)
			}
			if !reflect.DeepEqual(runner.Calls, tt.want) {
				t.Errorf("calls = %+v, want %+v", runner.Calls, tt.want)
			}
		})
	}
}

func TestConfigureIdentity_Failure(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.RunInDirFunc = func(string, string, ...string) ([]byte, error) {
		return []byte("error: could not lock config file\n"), errors.New("exit status 255")
	}

	err := ConfigureIdentity(context.Background(), runner, ".", "bot", "bot@example.com")
	if err == nil || !strings.Contains(err.Error(), "could not lock config file") {
		t.Fatalf("error = %v", err)
	}
	if len(runner.Calls) != 1 {
		t.Errorf("expected to stop after the first failure, got %d calls", len(runner.Calls))
	}
}

package branch

import (
	"testing"
	"time"
)

func TestGenerateBranchName(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		prefix     string
		entityType string
		number     int
		now        time.Time
		want       string
	}{
		{"claude/", "issue", 42, at, "claude/issue-42-20240101_000000"},
		{"", "pr", 7, at, "claude/pr-7-20240101_000000"},
		{"bot/", "issue", 1, time.Date(2025, 12, 31, 23, 59, 58, 999, time.UTC), "bot/issue-1-20251231_235958"},
		// Non-UTC input is converted before formatting
		{"claude/", "issue", 3, time.Date(2024, 1, 1, 8, 0, 0, 0, time.FixedZone("CST", 8*3600)), "claude/issue-3-20240101_000000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := GenerateBranchName(tt.prefix, tt.entityType, tt.number, tt.now)
			if got != tt.want {
				t.Errorf("GenerateBranchName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateBranchName_DistinctWithinSecond(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)
	seen := map[string]int{}
	for n := 1; n <= 50; n++ {
		for _, kind := range []string{"issue", "pr"} {
			name := GenerateBranchName(DefaultPrefix, kind, n, at)
			if !ValidateBranchName(name) {
				t.Fatalf("generated invalid ref %q", name)
			}
			seen[name]++
		}
	}
	for name, count := range seen {
		if count != 1 {
			t.Errorf("%q generated %d times", name, count)
		}
	}
}

func TestValidateBranchName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"claude/issue-42-20240101_000000", true},
		{"feature/x", true},
		{"", false},
		{"has space", false},
		{"time:12", false},
		{"a..b", false},
		{"a//b", false},
		{"/lead", false},
		{"trail/", false},
		{"end.", false},
		{"x.lock", false},
		{"a/.hidden", false},
		{"at@{1}", false},
		{"star*", false},
		{"tab\tx", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateBranchName(tt.name); got != tt.valid {
				t.Errorf("ValidateBranchName(%q) = %v, want %v", tt.name, got, tt.valid)
			}
		})
	}
}

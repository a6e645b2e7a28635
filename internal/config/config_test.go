package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cexll/swe-action/internal/platform"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.PlatformName() != platform.GitHub {
		t.Errorf("PlatformName = %s, want github", cfg.PlatformName())
	}
	if cfg.Trigger.Phrase != "@claude" {
		t.Errorf("Trigger.Phrase = %q, want @claude", cfg.Trigger.Phrase)
	}
	if cfg.Branch.Prefix != "claude/" {
		t.Errorf("Branch.Prefix = %q, want claude/", cfg.Branch.Prefix)
	}
	if cfg.Branch.GitBackend != "cli" {
		t.Errorf("Branch.GitBackend = %q, want cli", cfg.Branch.GitBackend)
	}
	if cfg.Branch.PRFetchDepth != 20 || cfg.Branch.NewBranchFetchDepth != 1 {
		t.Errorf("fetch depths = %d/%d, want 20/1", cfg.Branch.PRFetchDepth, cfg.Branch.NewBranchFetchDepth)
	}
	if cfg.GitHub.ServerURL != "https://github.com" || cfg.GitHub.APIURL != "https://api.github.com" {
		t.Errorf("GitHub URLs = %q %q", cfg.GitHub.ServerURL, cfg.GitHub.APIURL)
	}
	if cfg.Tools.CommentServerBin != "swe-comment-server" {
		t.Errorf("CommentServerBin = %q", cfg.Tools.CommentServerBin)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.FinalizeBase() != "" {
		t.Errorf("FinalizeBase = %q, want empty", cfg.FinalizeBase())
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"TRIGGER_PHRASE":    "/code",
		"BASE_BRANCH":       "develop",
		"GIT_BACKEND":       "go-git",
		"PR_FETCH_DEPTH":    "50",
		"GITHUB_EVENT_NAME": "issue_comment",
		"GITHUB_RUN_ID":     "77",
		"GITHUB_REPOSITORY": "o/r",
		"GITHUB_TOKEN":      "ghs_x",
		"GITHUB_SERVER_URL": "https://ghe.example.com/",
		"USE_GITEA":         "true",
	})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Trigger.Phrase != "/code" {
		t.Errorf("Trigger.Phrase = %q", cfg.Trigger.Phrase)
	}
	if cfg.FinalizeBase() != "develop" {
		t.Errorf("FinalizeBase = %q, want develop", cfg.FinalizeBase())
	}
	if cfg.Branch.PRFetchDepth != 50 {
		t.Errorf("PRFetchDepth = %d", cfg.Branch.PRFetchDepth)
	}
	if !cfg.Tools.UseGitea {
		t.Error("UseGitea should be true")
	}

	run := cfg.Run()
	if run.ServerURL != "https://ghe.example.com" {
		t.Errorf("ServerURL = %q, trailing slash should be trimmed", run.ServerURL)
	}
	if run.RunID != "77" || run.Repository != "o/r" || run.Token != "ghs_x" {
		t.Errorf("unexpected run identity: %+v", run)
	}
}

func TestRun_GiteaFallsBackToGitHubVariables(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PLATFORM":          "Gitea",
		"GITEA_SERVER_URL":  "https://gitea.example.com/",
		"GITEA_TOKEN":       "tok",
		"GITHUB_EVENT_NAME": "issue_comment",
		"GITHUB_EVENT_PATH": "/tmp/event.json",
		"GITHUB_RUN_ID":     "9",
		"GITEA_REPOSITORY":  "team/app",
	})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	run := cfg.Run()
	if run.Platform != platform.Gitea {
		t.Fatalf("Platform = %s", run.Platform)
	}
	if run.APIURL != "https://gitea.example.com/api/v1" {
		t.Errorf("APIURL = %q", run.APIURL)
	}
	if run.EventName != "issue_comment" || run.RunID != "9" || run.Repository != "team/app" {
		t.Errorf("unexpected run identity: %+v", run)
	}
	if err := run.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if cfg.GiteaMCPHost() != "https://gitea.example.com/" || cfg.GiteaMCPToken() != "tok" {
		t.Errorf("gitea tool settings = %q %q", cfg.GiteaMCPHost(), cfg.GiteaMCPToken())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad platform", env: map[string]string{"PLATFORM": "gitlab"}, wantErr: "invalid platform"},
		{name: "bad backend", env: map[string]string{"GIT_BACKEND": "svn"}, wantErr: "GIT_BACKEND"},
		{name: "zero depth", env: map[string]string{"PR_FETCH_DEPTH": "0"}, wantErr: "PR_FETCH_DEPTH"},
		{name: "gitea without server", env: map[string]string{"PLATFORM": "gitea"}, wantErr: "GITEA_SERVER_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.env)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRunIdentity_ValidateListsMissing(t *testing.T) {
	err := RunIdentity{Platform: platform.GitHub, EventName: "issues"}.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"event path", "run id", "repository"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestFinalizeConfig(t *testing.T) {
	if _, err := (FinalizeConfig{}).ParseCommentID(); !errors.Is(err, ErrMissingCommentID) {
		t.Errorf("empty id error = %v", err)
	}
	if _, err := (FinalizeConfig{CommentID: "abc"}).ParseCommentID(); err == nil {
		t.Error("non-numeric id should fail")
	}
	id, err := (FinalizeConfig{CommentID: " 12345 "}).ParseCommentID()
	if err != nil || id != 12345 {
		t.Errorf("ParseCommentID = %d, %v", id, err)
	}

	tests := []struct {
		value  string
		failed bool
	}{
		{"false", true},
		{"true", false},
		{"", false},
		{"FALSE", false},
	}
	for _, tt := range tests {
		f := FinalizeConfig{PrepareSuccess: tt.value, ClaudeSuccess: tt.value}
		if f.PrepareFailed() != tt.failed || f.ClaudeFailed() != tt.failed {
			t.Errorf("value %q: failed = %v/%v, want %v", tt.value, f.PrepareFailed(), f.ClaudeFailed(), tt.failed)
		}
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TRIGGER_PHRASE=/swe\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	orig := loadDotEnv
	loadDotEnv = func(...string) error { return orig(path) }
	t.Cleanup(func() {
		loadDotEnv = orig
		os.Unsetenv("TRIGGER_PHRASE")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Trigger.Phrase != "/swe" {
		t.Errorf("Trigger.Phrase = %q, want /swe", cfg.Trigger.Phrase)
	}
}

func TestNormalizePrivateKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{`"line1\nline2"`, "line1\nline2"},
		{"'abc'", "abc"},
		{"a\r\nb", "a\nb"},
	}
	for _, tt := range tests {
		if got := normalizePrivateKey(tt.in); got != tt.want {
			t.Errorf("normalizePrivateKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

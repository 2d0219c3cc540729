package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/freema/diffwhisperer/internal/apperror"
)

type capturedRequest struct {
	Path string
	Body struct {
		GenerationConfig struct {
			MaxOutputTokens int `json:"maxOutputTokens"`
		} `json:"generationConfig"`
	}
}

// newMockGemini runs a fake generateContent endpoint returning text,
// capturing the last request.
func newMockGemini(t *testing.T, text string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&captured.Body); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		quoted, _ := json.Marshal(text)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":` + string(quoted) + `}]}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func initGitRepo(t *testing.T, staged bool) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-q")
	run("config", "user.name", "diffwhisperer-test")
	run("config", "user.email", "test@diffwhisperer.local")
	run("config", "commit.gpgsign", "false")

	if staged {
		if err := os.WriteFile(filepath.Join(dir, "feature.go"), []byte("package main\n"), 0o644); err != nil {
			t.Fatalf("writing file: %v", err)
		}
		run("add", "feature.go")
	}
	return dir
}

// runCLI executes the command tree with a mock endpoint and returns stdout.
func runCLI(t *testing.T, endpoint string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DIFFWHISPERER_GEMINI__ENDPOINT", endpoint)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("DIFFWHISPERER_HISTORY__ENABLED", "false")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGenerateCommand(t *testing.T) {
	srv, captured := newMockGemini(t, "feat(x): add y")
	repoDir := initGitRepo(t, true)

	out, err := runCLI(t, srv.URL,
		"generate",
		"--repo-path", repoDir,
		"--model", "gemini-2.0-flash",
		"--max-tokens", "300",
	)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if out != "feat(x): add y\n" {
		t.Errorf("stdout = %q, want %q", out, "feat(x): add y\n")
	}
	if !strings.Contains(captured.Path, "gemini-2.0-flash") {
		t.Errorf("model not in request path: %q", captured.Path)
	}
}

func TestGenerateFlagsReachRequest(t *testing.T) {
	srv, captured := newMockGemini(t, "fix: ok")
	repoDir := initGitRepo(t, true)

	_, err := runCLI(t, srv.URL,
		"generate",
		"--repo-path", repoDir,
		"--model", "gemini-2.5-pro",
		"--max-tokens", "64",
	)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !strings.Contains(captured.Path, "gemini-2.5-pro") {
		t.Errorf("request path = %q, want the flag model", captured.Path)
	}
	if captured.Body.GenerationConfig.MaxOutputTokens != 64 {
		t.Errorf("maxOutputTokens = %d, want 64", captured.Body.GenerationConfig.MaxOutputTokens)
	}
}

func TestGenerateNoStagedChanges(t *testing.T) {
	srv, _ := newMockGemini(t, "unused")
	repoDir := initGitRepo(t, false)

	_, err := runCLI(t, srv.URL,
		"generate",
		"--repo-path", repoDir,
		"--model", "gemini-2.0-flash",
		"--max-tokens", "300",
	)
	if !errors.Is(err, apperror.ErrNoChanges) {
		t.Fatalf("expected ErrNoChanges, got %v", err)
	}
	if code := apperror.ExitCode(err); code == 0 {
		t.Error("expected a non-zero exit code")
	}
}

func TestGenerateNotARepository(t *testing.T) {
	srv, _ := newMockGemini(t, "unused")

	_, err := runCLI(t, srv.URL,
		"generate",
		"--repo-path", t.TempDir(),
		"--model", "gemini-2.0-flash",
		"--max-tokens", "300",
	)
	if !errors.Is(err, apperror.ErrRepoNotFound) {
		t.Fatalf("expected ErrRepoNotFound, got %v", err)
	}
}

func TestCommitCommand(t *testing.T) {
	const generated = "fix(cli): correct flag parsing"
	srv, _ := newMockGemini(t, generated)
	repoDir := initGitRepo(t, true)

	out, err := runCLI(t, srv.URL,
		"commit",
		"--repo-path", repoDir,
		"--model", "gemini-2.0-flash",
		"--max-tokens", "300",
	)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !strings.Contains(out, generated) {
		t.Errorf("stdout should echo the committed message, got %q", out)
	}

	logCmd := exec.Command("git", "log", "-1", "--pretty=%B")
	logCmd.Dir = repoDir
	logOut, err := logCmd.Output()
	if err != nil {
		t.Fatalf("git log: %v", err)
	}
	if got := strings.TrimSpace(string(logOut)); got != generated {
		t.Errorf("commit message = %q, want %q", got, generated)
	}
}

func TestHistoryCommand(t *testing.T) {
	srv, _ := newMockGemini(t, "feat(core): add widget")
	repoDir := initGitRepo(t, true)
	histPath := filepath.Join(t.TempDir(), "history.db")

	t.Setenv("DIFFWHISPERER_GEMINI__ENDPOINT", srv.URL)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("DIFFWHISPERER_HISTORY__ENABLED", "true")
	t.Setenv("DIFFWHISPERER_HISTORY__PATH", histPath)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)

	rootCmd.SetArgs([]string{"generate", "--repo-path", repoDir, "--model", "gemini-2.0-flash", "--max-tokens", "300"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("generate: %v", err)
	}

	out.Reset()
	rootCmd.SetArgs([]string{"history", "-n", "5", "--repo-path", repoDir, "--model", "gemini-2.0-flash", "--max-tokens", "300"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("history: %v", err)
	}

	if !strings.Contains(out.String(), "feat(core): add widget") {
		t.Errorf("history output missing recorded message:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "proposed") {
		t.Errorf("history output missing status:\n%s", out.String())
	}
}

// CLI integration tests for pathdict.
package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const quotaMapYAML = `maps:
  - pattern: "shared/quota/$/limit"
    table: quota
    pattern_fields:
      - {column: user, type: string}
    value_field: limit_value
    value_types: [int64]
`

const privQuotaMapYAML = `maps:
  - pattern: "priv/quota/$/limit"
    table: priv_quota
    pattern_fields:
      - {column: org, type: string}
    value_field: limit_value
    value_types: [int64]
    username_field: owner
`

// TestMain builds the pathdict binary once before running tests.
func TestMain(m *testing.M) {
	projectRoot, err := FindProjectRoot()
	if err != nil {
		SetBuildErr(err)
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "pathdict-test-*")
	if err != nil {
		SetBuildErr(err)
		os.Exit(1)
	}
	binPath := filepath.Join(tmpDir, "pathdict")
	SetPathdictBin(binPath)

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/pathdict")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		SetBuildErr(&BuildError{Err: err, Output: string(output)})
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func TestCLI_SetThenGet(t *testing.T) {
	env := NewTestEnv(t, quotaMapYAML)

	env.MustRunPathdict("set", "shared/quota/alice/limit", "5")

	result := env.MustRunPathdict("get", "shared/quota/alice/limit")
	if strings.TrimSpace(result.Stdout) != "5" {
		t.Fatalf("expected value 5, got %q", result.Stdout)
	}
}

func TestCLI_GetMissingPathIsNotFoundNotError(t *testing.T) {
	env := NewTestEnv(t, quotaMapYAML)

	result := env.MustRunPathdict("get", "shared/quota/nobody/limit")
	if !strings.Contains(result.Stdout, "not found") {
		t.Fatalf("expected 'not found' message, got %q", result.Stdout)
	}
}

func TestCLI_SetOverwritesExistingValue(t *testing.T) {
	env := NewTestEnv(t, quotaMapYAML)

	env.MustRunPathdict("set", "shared/quota/alice/limit", "5")
	env.MustRunPathdict("set", "shared/quota/alice/limit", "9")

	result := env.MustRunPathdict("get", "shared/quota/alice/limit")
	if strings.TrimSpace(result.Stdout) != "9" {
		t.Fatalf("expected value 9 after overwrite, got %q", result.Stdout)
	}
}

func TestCLI_UnsetRemovesValue(t *testing.T) {
	env := NewTestEnv(t, quotaMapYAML)

	env.MustRunPathdict("set", "shared/quota/alice/limit", "5")
	env.MustRunPathdict("unset", "shared/quota/alice/limit")

	result := env.MustRunPathdict("get", "shared/quota/alice/limit")
	if !strings.Contains(result.Stdout, "not found") {
		t.Fatalf("expected not found after unset, got %q", result.Stdout)
	}
}

func TestCLI_IncAccumulatesAndReportsNotFound(t *testing.T) {
	env := NewTestEnv(t, quotaMapYAML)

	notFound := env.MustRunPathdict("inc", "shared/quota/bob/limit", "3")
	if strings.TrimSpace(notFound.Stdout) != "not_found" {
		t.Fatalf("expected not_found for inc against missing row, got %q", notFound.Stdout)
	}

	env.MustRunPathdict("set", "shared/quota/alice/limit", "5")
	env.MustRunPathdict("inc", "shared/quota/alice/limit", "3")

	result := env.MustRunPathdict("get", "shared/quota/alice/limit")
	if strings.TrimSpace(result.Stdout) != "8" {
		t.Fatalf("expected value 8 after increment, got %q", result.Stdout)
	}
}

func TestCLI_IterateRecurseListsAllKeys(t *testing.T) {
	env := NewTestEnv(t, quotaMapYAML)

	env.MustRunPathdict("set", "shared/quota/alice/limit", "5")
	env.MustRunPathdict("set", "shared/quota/bob/limit", "7")

	result := env.MustRunPathdict("iterate", "--recurse", "shared/quota")
	lines := strings.Split(strings.TrimSpace(result.Stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d: %q", len(lines), result.Stdout)
	}
	if !strings.Contains(result.Stdout, "shared/quota/alice/limit") ||
		!strings.Contains(result.Stdout, "shared/quota/bob/limit") {
		t.Fatalf("expected both keys present, got %q", result.Stdout)
	}
}

func TestCLI_PrivateScopeBindsUsername(t *testing.T) {
	env := NewTestEnv(t, privQuotaMapYAML)

	env.MustRunPathdict("--username", "alice", "set", "priv/quota/acme/limit", "5")

	asAlice := env.MustRunPathdict("--username", "alice", "get", "priv/quota/acme/limit")
	if strings.TrimSpace(asAlice.Stdout) != "5" {
		t.Fatalf("expected value 5 for owning user, got %q", asAlice.Stdout)
	}

	asBob := env.MustRunPathdict("--username", "bob", "get", "priv/quota/acme/limit")
	if !strings.Contains(asBob.Stdout, "not found") {
		t.Fatalf("expected not found for non-owning user, got %q", asBob.Stdout)
	}
}

func TestCLI_ExpireScanReportsWhetherAnyMapHasExpiry(t *testing.T) {
	env := NewTestEnv(t, quotaMapYAML)

	result := env.MustRunPathdict("expire-scan")
	if !strings.Contains(result.Stdout, "no maps declare an expire column") {
		t.Fatalf("expected no-expire-column message, got %q", result.Stdout)
	}
}

func TestCLI_InitWritesDefaultConfig(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, "config")

	cmd := exec.Command(pathdictBin, "--config-dir", configDir, "init")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("init failed: %v\n%s", err, out)
	}

	if _, err := os.Stat(filepath.Join(configDir, "config.yaml")); err != nil {
		t.Fatalf("expected config.yaml to be created: %v", err)
	}
}

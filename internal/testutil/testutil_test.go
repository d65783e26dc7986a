// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestMustSetenv_Restores(t *testing.T) {
	const key = "WEEX_TESTUTIL_PROBE"
	t.Cleanup(MustUnsetenv(t, key))

	cleanup := MustSetenv(t, key, "one")
	if got := os.Getenv(key); got != "one" {
		t.Fatalf("Getenv = %q, want %q", got, "one")
	}
	cleanup()

	if _, ok := os.LookupEnv(key); ok {
		t.Errorf("%s should be unset after cleanup", key)
	}
}

func TestWriteCorePackage(t *testing.T) {
	t.Parallel()

	corePath := filepath.Join(t.TempDir(), "node_modules", "@weex-cli", "core")
	WriteCorePackage(t, corePath, "@weex-cli/core", "1.2.0")

	data, err := os.ReadFile(filepath.Join(corePath, "package.json"))
	if err != nil {
		t.Fatalf("reading package.json: %v", err)
	}
	var pkg map[string]string
	if err := json.Unmarshal(data, &pkg); err != nil {
		t.Fatalf("decoding package.json: %v", err)
	}
	if pkg["name"] != "@weex-cli/core" || pkg["version"] != "1.2.0" {
		t.Errorf("package.json = %v", pkg)
	}
}

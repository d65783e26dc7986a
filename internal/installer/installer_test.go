// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/weex-cli/weex/internal/registry"
	"github.com/weex-cli/weex/internal/testutil"
)

const coreName = "@weex-cli/core"

type (
	fakeResolver struct {
		versions map[string]string
		err      error
		calls    int
	}

	// fakeNpm simulates npm by writing the requested package.json.
	fakeNpm struct {
		root      string
		writeName string
		writeVer  string
		err       error
		args      []string
	}
)

func (r *fakeResolver) Version(_ context.Context, name, spec string) (*registry.PackageVersion, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	v, ok := r.versions[spec]
	if !ok {
		return nil, registry.ErrVersionNotFound
	}
	return &registry.PackageVersion{
		Name:    name,
		Version: v,
		Dist:    registry.Dist{Tarball: "https://registry.example.test/core-" + v + ".tgz", Integrity: "sha512-abc"},
	}, nil
}

func (n *fakeNpm) Run(_ context.Context, dir string, args []string) error {
	n.args = args
	if dir != n.root {
		return errors.New("unexpected working directory " + dir)
	}
	if n.err != nil {
		return n.err
	}
	if n.writeName != "" {
		writePackage(PackageDir(n.root, n.writeName), n.writeName, n.writeVer)
	}
	return nil
}

// writePackage runs inside the fake Runner, which has no *testing.T.
func writePackage(dir, name, version string) {
	_ = os.MkdirAll(dir, 0o755)
	_ = os.WriteFile(filepath.Join(dir, "package.json"),
		[]byte(`{"name":"`+name+`","version":"`+version+`"}`), 0o644)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func newTestInstaller(res VersionResolver, npm Runner) *Installer {
	return New(
		WithResolver(res),
		WithRunner(npm),
		WithClock(fixedClock),
		WithLogger(quietLogger()),
		WithOutput(io.Discard, io.Discard),
	)
}

func TestInstall_FreshResolvesLatest(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	root := filepath.Join(base, "core")
	npm := &fakeNpm{root: root, writeName: coreName, writeVer: "2.1.0"}
	res := &fakeResolver{versions: map[string]string{"latest": "2.1.0"}}

	got, err := newTestInstaller(res, npm).Install(context.Background(), Request{
		Name:     coreName,
		Version:  "latest",
		Root:     root,
		Trash:    filepath.Join(base, "trash"),
		Registry: "https://registry.example.test",
	})
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if got.Version != "2.1.0" {
		t.Errorf("Version = %q, want 2.1.0", got.Version)
	}
	if got.Trashed != "" || got.Previous != "" {
		t.Errorf("fresh install reported Trashed=%q Previous=%q", got.Trashed, got.Previous)
	}

	wantArgs := []string{
		"install", coreName + "@2.1.0",
		"--prefix", root,
		"--no-save", "--no-package-lock", "--no-audit", "--no-fund",
		"--registry", "https://registry.example.test",
	}
	if !slices.Equal(npm.args, wantArgs) {
		t.Errorf("npm args = %v, want %v", npm.args, wantArgs)
	}

	receipt, err := ReadReceipt(root)
	if err != nil {
		t.Fatalf("ReadReceipt() error = %v", err)
	}
	if receipt == nil {
		t.Fatal("receipt not written")
	}
	if receipt.Name != coreName || receipt.Version != "2.1.0" {
		t.Errorf("receipt = %+v", receipt)
	}
	if receipt.Integrity != "sha512-abc" {
		t.Errorf("receipt.Integrity = %q", receipt.Integrity)
	}
	if !receipt.InstalledAt.Equal(fixedClock()) {
		t.Errorf("receipt.InstalledAt = %v, want %v", receipt.InstalledAt, fixedClock())
	}
}

func TestInstall_ForceFlag(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	root := filepath.Join(base, "core")
	npm := &fakeNpm{root: root, writeName: coreName, writeVer: "2.0.0"}

	_, err := newTestInstaller(&fakeResolver{}, npm).Install(context.Background(), Request{
		Name: coreName, Version: "2.0.0", Root: root, Trash: filepath.Join(base, "trash"), Force: true,
	})
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if !slices.Contains(npm.args, "--force") {
		t.Errorf("npm args = %v, want --force", npm.args)
	}
}

func TestInstall_ReplacesPreviousVersion(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	root := filepath.Join(base, "core")
	trash := filepath.Join(base, "trash")
	testutil.WriteCorePackage(t, PackageDir(root, coreName), coreName, "2.0.0")

	npm := &fakeNpm{root: root, writeName: coreName, writeVer: "2.1.0"}
	got, err := newTestInstaller(&fakeResolver{}, npm).Install(context.Background(), Request{
		Name: coreName, Version: "2.1.0", Root: root, Trash: trash,
	})
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if got.Previous != "2.0.0" {
		t.Errorf("Previous = %q, want 2.0.0", got.Previous)
	}

	wantTrash := filepath.Join(trash, "weex-cli+core@2.0.0-1714564800")
	if got.Trashed != wantTrash {
		t.Errorf("Trashed = %q, want %q", got.Trashed, wantTrash)
	}
	if v := installedVersion(wantTrash); v != "2.0.0" {
		t.Errorf("trashed copy version = %q, want 2.0.0", v)
	}
	if v := installedVersion(PackageDir(root, coreName)); v != "2.1.0" {
		t.Errorf("installed version = %q, want 2.1.0", v)
	}
}

func TestInstall_RollbackOnNpmFailure(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	root := filepath.Join(base, "core")
	testutil.WriteCorePackage(t, PackageDir(root, coreName), coreName, "2.0.0")

	npmErr := errors.New("exit status 1")
	npm := &fakeNpm{root: root, err: npmErr}

	_, err := newTestInstaller(&fakeResolver{}, npm).Install(context.Background(), Request{
		Name: coreName, Version: "2.1.0", Root: root, Trash: filepath.Join(base, "trash"),
	})
	if !errors.Is(err, npmErr) {
		t.Fatalf("Install() error = %v, want wrapping %v", err, npmErr)
	}

	var ie *InstallError
	if !errors.As(err, &ie) {
		t.Fatalf("Install() error type = %T, want *InstallError", err)
	}
	if !ie.RolledBack {
		t.Error("RolledBack = false, want true")
	}
	if v := installedVersion(PackageDir(root, coreName)); v != "2.0.0" {
		t.Errorf("installed version after rollback = %q, want 2.0.0", v)
	}
	if r, _ := ReadReceipt(root); r != nil {
		t.Errorf("receipt written on failure: %+v", r)
	}
}

func TestInstall_RollbackOnVerifyFailure(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	root := filepath.Join(base, "core")
	testutil.WriteCorePackage(t, PackageDir(root, coreName), coreName, "2.0.0")

	npm := &fakeNpm{root: root, writeName: coreName, writeVer: "1.0.0"}
	_, err := newTestInstaller(&fakeResolver{}, npm).Install(context.Background(), Request{
		Name: coreName, Version: "2.1.0", Root: root, Trash: filepath.Join(base, "trash"),
	})
	if !errors.Is(err, ErrVerifyFailed) {
		t.Fatalf("Install() error = %v, want ErrVerifyFailed", err)
	}
	if v := installedVersion(PackageDir(root, coreName)); v != "2.0.0" {
		t.Errorf("installed version after rollback = %q, want 2.0.0", v)
	}
}

func TestInstall_FreshFailureLeavesNothing(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	root := filepath.Join(base, "core")
	npm := &fakeNpm{root: root, writeName: coreName, writeVer: "0.0.1"}

	_, err := newTestInstaller(&fakeResolver{}, npm).Install(context.Background(), Request{
		Name: coreName, Version: "2.1.0", Root: root, Trash: filepath.Join(base, "trash"),
	})
	var ie *InstallError
	if !errors.As(err, &ie) {
		t.Fatalf("Install() error = %v, want *InstallError", err)
	}
	if ie.RolledBack {
		t.Error("RolledBack = true on fresh install")
	}
	if _, statErr := os.Stat(PackageDir(root, coreName)); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("partial install left behind: %v", statErr)
	}
}

func TestInstall_TagResolutionFailure(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	root := filepath.Join(base, "core")
	npm := &fakeNpm{root: root}

	_, err := newTestInstaller(&fakeResolver{err: context.DeadlineExceeded}, npm).Install(context.Background(), Request{
		Name: coreName, Version: "latest", Root: root, Trash: filepath.Join(base, "trash"),
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Install() error = %v, want DeadlineExceeded", err)
	}
	if npm.args != nil {
		t.Error("npm ran despite resolution failure")
	}
}

func TestInstall_NoResolverForTag(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	i := New(WithRunner(&fakeNpm{root: root}), WithLogger(quietLogger()))

	_, err := i.Install(context.Background(), Request{Name: coreName, Version: "next", Root: root})
	if !errors.Is(err, ErrNoResolver) {
		t.Fatalf("Install() error = %v, want ErrNoResolver", err)
	}
}

func TestInstall_InvalidRequest(t *testing.T) {
	t.Parallel()

	_, err := New(WithLogger(quietLogger())).Install(context.Background(), Request{Version: "1.0.0"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("Install() error = %v, want ErrInvalidRequest", err)
	}
}

func TestIsExactVersion(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"2.0.0":        true,
		"v2.0.0":       true,
		"2.0.0-beta.1": true,
		"latest":       false,
		"next":         false,
		"2.0":          false,
		"":             false,
	}
	for in, want := range tests {
		if got := isExactVersion(in); got != want {
			t.Errorf("isExactVersion(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	if got := sanitizeName("@weex-cli/core"); got != "weex-cli+core" {
		t.Errorf("sanitizeName() = %q", got)
	}
	if got := sanitizeName("plain"); got != "plain" {
		t.Errorf("sanitizeName() = %q", got)
	}
}

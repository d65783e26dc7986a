// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/weex-cli/weex/internal/registry"

	"golang.org/x/mod/semver"
)

// npmCommand is the package manager binary the default Runner invokes.
const npmCommand = "npm"

var (
	// ErrInvalidRequest indicates a Request without a package name or root.
	ErrInvalidRequest = errors.New("invalid install request")

	// ErrVerifyFailed indicates the installed package.json does not match the request.
	ErrVerifyFailed = errors.New("installed package does not match request")

	// ErrNoResolver is returned when a dist-tag must be resolved but no
	// VersionResolver is configured.
	ErrNoResolver = errors.New("no version resolver configured")
)

type (
	// Request describes one install.
	Request struct {
		Name string
		// Version is an exact version or a dist-tag such as "latest".
		Version  string
		Root     string
		Trash    string
		Registry string
		Force    bool
	}

	// Result describes a successful install.
	Result struct {
		Name     string
		Version  string
		Previous string
		Path     string
		// Trashed is where the previous copy was moved, empty on a fresh install.
		Trashed string
	}

	// InstallError reports a failed install and whether the previous copy was restored.
	InstallError struct {
		Name       string
		Version    string
		RolledBack bool
		Err        error
	}

	// VersionResolver turns a dist-tag into a concrete published version.
	VersionResolver interface {
		Version(ctx context.Context, name, spec string) (*registry.PackageVersion, error)
	}

	// Runner executes the package manager.
	Runner interface {
		Run(ctx context.Context, dir string, args []string) error
	}

	// RunnerFunc adapts a function to Runner.
	RunnerFunc func(ctx context.Context, dir string, args []string) error

	// Installer installs packages through npm.
	Installer struct {
		resolver VersionResolver
		runner   Runner
		stdout   io.Writer
		stderr   io.Writer
		now      func() time.Time
		logger   *slog.Logger
	}

	// Option configures an Installer during construction.
	Option func(*Installer)
)

// Error implements the error interface.
func (e *InstallError) Error() string {
	msg := fmt.Sprintf("installing %s@%s: %v", e.Name, e.Version, e.Err)
	if e.RolledBack {
		msg += " (previous version restored)"
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *InstallError) Unwrap() error { return e.Err }

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, dir string, args []string) error {
	return f(ctx, dir, args)
}

// WithResolver sets the dist-tag resolver, typically a *registry.Client.
func WithResolver(r VersionResolver) Option {
	return func(i *Installer) { i.resolver = r }
}

// WithRunner replaces the npm runner.
func WithRunner(r Runner) Option {
	return func(i *Installer) { i.runner = r }
}

// WithOutput sets where npm output is written.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(i *Installer) {
		i.stdout = stdout
		i.stderr = stderr
	}
}

// WithClock sets the time source used for trash names and receipts.
func WithClock(now func() time.Time) Option {
	return func(i *Installer) { i.now = now }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(i *Installer) { i.logger = l }
}

// New creates an Installer.
func New(opts ...Option) *Installer {
	i := &Installer{
		stdout: os.Stderr,
		stderr: os.Stderr,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.runner == nil {
		i.runner = &npmRunner{stdout: i.stdout, stderr: i.stderr}
	}
	if i.logger == nil {
		i.logger = slog.Default()
	}
	return i
}

// PackageDir returns where npm places name under root.
func PackageDir(root, name string) string {
	return filepath.Join(root, "node_modules", filepath.FromSlash(name))
}

// Install installs req.Name at req.Version under req.Root. On failure the
// previous copy, if any, is moved back into place before returning.
func (i *Installer) Install(ctx context.Context, req Request) (*Result, error) {
	if req.Name == "" || req.Root == "" {
		return nil, fmt.Errorf("%w: name and root are required", ErrInvalidRequest)
	}

	target, err := i.resolveVersion(ctx, req.Name, req.Version)
	if err != nil {
		return nil, &InstallError{Name: req.Name, Version: req.Version, Err: err}
	}

	pkgDir := PackageDir(req.Root, req.Name)
	res := &Result{Name: req.Name, Version: target.Version, Path: pkgDir}

	res.Previous = installedVersion(pkgDir)
	if res.Trashed, err = i.moveToTrash(pkgDir, req); err != nil {
		return nil, &InstallError{Name: req.Name, Version: target.Version, Err: err}
	}

	if err := i.installAndVerify(ctx, req, target.Version, pkgDir); err != nil {
		rolledBack := i.rollback(pkgDir, res.Trashed)
		return nil, &InstallError{Name: req.Name, Version: target.Version, RolledBack: rolledBack, Err: err}
	}

	receipt := &Receipt{
		Name:        req.Name,
		Version:     target.Version,
		Previous:    res.Previous,
		Registry:    req.Registry,
		Tarball:     target.Dist.Tarball,
		Integrity:   target.Dist.Integrity,
		InstalledAt: i.now().UTC().Truncate(time.Second),
	}
	if err := writeReceipt(req.Root, receipt); err != nil {
		i.logger.Warn("install receipt not written", "error", err)
	}

	i.logger.Debug("installed", "name", req.Name, "version", target.Version, "previous", res.Previous)
	return res, nil
}

// resolveVersion returns spec unchanged when it is an exact version and asks
// the registry otherwise.
func (i *Installer) resolveVersion(ctx context.Context, name, spec string) (*registry.PackageVersion, error) {
	if spec == "" {
		spec = registry.TagLatest
	}
	if isExactVersion(spec) {
		if i.resolver == nil {
			return &registry.PackageVersion{Name: name, Version: strings.TrimPrefix(spec, "v")}, nil
		}
		pv, err := i.resolver.Version(ctx, name, strings.TrimPrefix(spec, "v"))
		if err != nil {
			// Metadata lookup is optional for pinned versions; npm has the final word.
			i.logger.Debug("version metadata lookup failed", "name", name, "version", spec, "error", err)
			return &registry.PackageVersion{Name: name, Version: strings.TrimPrefix(spec, "v")}, nil
		}
		return pv, nil
	}

	if i.resolver == nil {
		return nil, fmt.Errorf("resolving %s@%s: %w", name, spec, ErrNoResolver)
	}
	pv, err := i.resolver.Version(ctx, name, spec)
	if err != nil {
		return nil, fmt.Errorf("resolving %s@%s: %w", name, spec, err)
	}
	return pv, nil
}

func (i *Installer) moveToTrash(pkgDir string, req Request) (string, error) {
	if _, err := os.Stat(pkgDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("inspecting %s: %w", pkgDir, err)
	}
	if req.Trash == "" {
		return "", fmt.Errorf("%w: trash directory is required to replace %s", ErrInvalidRequest, pkgDir)
	}

	if err := os.MkdirAll(req.Trash, 0o755); err != nil {
		return "", fmt.Errorf("creating trash directory: %w", err)
	}

	prev := installedVersion(pkgDir)
	if prev == "" {
		prev = "unknown"
	}
	dest := filepath.Join(req.Trash, sanitizeName(req.Name)+"@"+prev+"-"+strconv.FormatInt(i.now().Unix(), 10))
	if err := os.Rename(pkgDir, dest); err != nil {
		return "", fmt.Errorf("moving %s to trash: %w", pkgDir, err)
	}
	i.logger.Debug("previous package moved to trash", "from", pkgDir, "to", dest)
	return dest, nil
}

func (i *Installer) installAndVerify(ctx context.Context, req Request, version, pkgDir string) error {
	if err := os.MkdirAll(req.Root, 0o755); err != nil {
		return fmt.Errorf("creating install root: %w", err)
	}
	if err := i.runner.Run(ctx, req.Root, npmArgs(req, version)); err != nil {
		return fmt.Errorf("npm install: %w", err)
	}
	return verify(pkgDir, req.Name, version)
}

// rollback restores the trashed copy. It reports whether a copy was restored.
func (i *Installer) rollback(pkgDir, trashed string) bool {
	if err := os.RemoveAll(pkgDir); err != nil {
		i.logger.Warn("removing partial install failed", "path", pkgDir, "error", err)
	}
	if trashed == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(pkgDir), 0o755); err != nil {
		i.logger.Warn("rollback failed", "path", pkgDir, "error", err)
		return false
	}
	if err := os.Rename(trashed, pkgDir); err != nil {
		i.logger.Warn("rollback failed", "path", pkgDir, "trash", trashed, "error", err)
		return false
	}
	return true
}

func npmArgs(req Request, version string) []string {
	args := []string{
		"install", req.Name + "@" + version,
		"--prefix", req.Root,
		"--no-save", "--no-package-lock", "--no-audit", "--no-fund",
	}
	if req.Registry != "" {
		args = append(args, "--registry", req.Registry)
	}
	if req.Force {
		args = append(args, "--force")
	}
	return args
}

type packageJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func readPackageJSON(pkgDir string) (*packageJSON, error) {
	data, err := os.ReadFile(filepath.Join(pkgDir, "package.json"))
	if err != nil {
		return nil, err
	}
	var p packageJSON
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func installedVersion(pkgDir string) string {
	p, err := readPackageJSON(pkgDir)
	if err != nil {
		return ""
	}
	return p.Version
}

func verify(pkgDir, name, version string) error {
	p, err := readPackageJSON(pkgDir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerifyFailed, err)
	}
	if p.Name != name || p.Version != version {
		return fmt.Errorf("%w: found %s@%s", ErrVerifyFailed, p.Name, p.Version)
	}
	return nil
}

func isExactVersion(v string) bool {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.IsValid(v) && semver.Canonical(v) == v
}

// sanitizeName flattens a scoped package name into a single path element.
func sanitizeName(name string) string {
	return strings.NewReplacer("@", "", "/", "+", "\\", "+").Replace(name)
}

type npmRunner struct {
	stdout io.Writer
	stderr io.Writer
}

func (r *npmRunner) Run(ctx context.Context, dir string, args []string) error {
	cmd := exec.CommandContext(ctx, npmCommand, args...)
	cmd.Dir = dir
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	return cmd.Run()
}

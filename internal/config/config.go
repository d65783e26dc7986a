// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "weex"
	// CoreName is the npm package that carries the real command implementations.
	CoreName = "@weex-cli/core"
	// HomePrefix is the weex home directory name under the user's home.
	HomePrefix = ".wx"
	// DefaultRegistry is the npm registry used when nothing overrides it.
	DefaultRegistry = "https://registry.npm.taobao.org"
	// DefaultRegistryTimeout bounds the latest-version lookup.
	DefaultRegistryTimeout = 60 * time.Second
	// DefaultCoreVersion is the dist-tag installed when no version is requested.
	DefaultCoreVersion = "latest"
	// ModuleConfigFileName is the module registry file under the module root.
	ModuleConfigFileName = "stores.json"
	// GlobalConfigFileName is the global config file under the weex home.
	GlobalConfigFileName = "config.json"

	// EnvCorePath overrides the core package path.
	EnvCorePath = "WEEX_CORE_PATH"
	// EnvModulePath overrides the module root.
	EnvModulePath = "WEEX_MODULE_PATH"
	// EnvCoreVersion overrides the version installed when no core is present.
	EnvCoreVersion = "WEEX_CORE_VERSION"
	// EnvRegistry overrides the registry (lower precedence than --registry).
	EnvRegistry = "NPM_REGISTRY"
	// EnvAllowSudo skips the root privilege downgrade when set to any value.
	EnvAllowSudo = "WEEX_ALLOW_SUDO"
	// EnvDebug enables debug logging when it mentions "weex" (e.g. DEBUG=weex:cli).
	EnvDebug = "DEBUG"

	// FlagRegistry is the --registry flag name.
	FlagRegistry = "registry"
	// FlagCompiled is the --compiled flag name.
	FlagCompiled = "compiled"
	// FlagForce is the --force/-f flag name.
	FlagForce = "force"

	keyCorePath        = "core_path"
	keyModuleRoot      = "module_root"
	keyCoreVersion     = "core_version"
	keyRegistry        = "registry"
	keyRegistryTimeout = "registry_timeout"
	keyLogLevel        = "log_level"
	keyUpdateCheck     = "update_check"
	keyAllowSudo       = "allow_sudo"
	keyDebug           = "debug"
	keyCompiled        = "compiled"
	keyForce           = "force"
)

var (
	// ErrNoHomeDir is returned when no home directory can be determined. Every
	// bootstrap path derives from it, so callers treat it as fatal.
	ErrNoHomeDir = errors.New("can not find HOME directory")

	//nolint:gochecknoglobals // Test seam for os.UserHomeDir().
	userHomeDir = os.UserHomeDir
)

// ResolveOptions carries the explicit inputs to Resolve.
type ResolveOptions struct {
	// Flags holds the parsed bootstrap flags (see RegisterFlags). May be nil.
	Flags *pflag.FlagSet
	// Args is the raw argument vector handed on to the core.
	Args []string
	// HomeDir replaces the user home directory lookup when set.
	HomeDir string
}

// RegisterFlags adds the bootstrap flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagRegistry, "", "npm registry used to resolve and install the core")
	fs.Bool(FlagCompiled, false, "run the compiled core even when its source tree is present")
	fs.BoolP(FlagForce, "f", false, "force reinstallation of the core package")
}

// Resolve builds the Bootstrap for this invocation.
//
// Only ErrNoHomeDir is fatal and returns a nil Bootstrap. A broken global config
// file yields a usable Bootstrap built without it together with an error
// describing the problem, so callers can warn and carry on.
func Resolve(opts ResolveOptions) (*Bootstrap, error) {
	userHome := opts.HomeDir
	if userHome == "" {
		h, err := userHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoHomeDir, err)
		}
		if h == "" {
			return nil, ErrNoHomeDir
		}
		userHome = h
	}

	home := filepath.Join(userHome, HomePrefix)
	coreRoot := filepath.Join(home, "core")

	v := viper.New()
	v.SetDefault(keyCorePath, filepath.Join(coreRoot, "node_modules", CoreName))
	v.SetDefault(keyModuleRoot, filepath.Join(home, "weex_modules"))
	v.SetDefault(keyCoreVersion, DefaultCoreVersion)
	v.SetDefault(keyRegistry, DefaultRegistry)
	v.SetDefault(keyRegistryTimeout, DefaultRegistryTimeout.String())
	v.SetDefault(keyLogLevel, LogLevelWarn.String())
	v.SetDefault(keyUpdateCheck, true)

	if err := bindEnvironment(v); err != nil {
		return nil, err
	}
	if err := bindFlags(v, opts.Flags); err != nil {
		return nil, err
	}

	var errs []error
	if err := mergeGlobalConfig(v, filepath.Join(home, GlobalConfigFileName)); err != nil {
		errs = append(errs, err)
	}

	timeout, err := parseTimeout(v.GetString(keyRegistryTimeout))
	if err != nil {
		errs = append(errs, err)
	}

	level := LogLevel(strings.ToLower(v.GetString(keyLogLevel)))
	if ok, fieldErrs := level.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
		level = LogLevelWarn
	}
	if strings.Contains(v.GetString(keyDebug), AppName) {
		level = LogLevelDebug
	}

	registry := strings.TrimRight(v.GetString(keyRegistry), "/")
	if registry == "" {
		registry = DefaultRegistry
	}

	b := &Bootstrap{
		coreName:             CoreName,
		coreRoot:             coreRoot,
		corePath:             v.GetString(keyCorePath),
		moduleRoot:           v.GetString(keyModuleRoot),
		moduleConfigFileName: ModuleConfigFileName,
		globalConfigFileName: GlobalConfigFileName,
		home:                 home,
		trash:                filepath.Join(home, "trash"),
		registry:             registry,
		registryTimeout:      timeout,
		coreVersion:          v.GetString(keyCoreVersion),
		compiled:             v.GetBool(keyCompiled),
		force:                v.GetBool(keyForce),
		allowSudo:            v.GetString(keyAllowSudo) != "",
		updateCheck:          v.GetBool(keyUpdateCheck),
		logLevel:             level,
		args:                 append([]string(nil), opts.Args...),
	}

	return b, errors.Join(errs...)
}

// ModuleConfigPath is the full path of the module registry file.
func (b *Bootstrap) ModuleConfigPath() string {
	return filepath.Join(b.moduleRoot, b.moduleConfigFileName)
}

// GlobalConfigPath is the full path of the global config file.
func (b *Bootstrap) GlobalConfigPath() string {
	return filepath.Join(b.home, b.globalConfigFileName)
}

// CorePackageJSON is the path of the installed core's package descriptor.
func (b *Bootstrap) CorePackageJSON() string {
	return filepath.Join(b.corePath, "package.json")
}

// bindEnvironment maps viper keys onto the environment variables weex honors.
func bindEnvironment(v *viper.Viper) error {
	bindings := [][2]string{
		{keyCorePath, EnvCorePath},
		{keyModuleRoot, EnvModulePath},
		{keyCoreVersion, EnvCoreVersion},
		{keyRegistry, EnvRegistry},
		{keyAllowSudo, EnvAllowSudo},
		{keyDebug, EnvDebug},
	}
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("binding %s: %w", b[1], err)
		}
	}
	return nil
}

// bindFlags attaches the bootstrap flags that exist in fs. Viper only prefers
// a flag over env/config when the user actually set it.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	bindings := [][2]string{
		{keyRegistry, FlagRegistry},
		{keyCompiled, FlagCompiled},
		{keyForce, FlagForce},
	}
	for _, b := range bindings {
		flag := fs.Lookup(b[1])
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(b[0], flag); err != nil {
			return fmt.Errorf("binding --%s: %w", b[1], err)
		}
	}
	return nil
}

// parseTimeout parses the registry timeout, falling back to the default for
// unparseable or non-positive values.
func parseTimeout(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return DefaultRegistryTimeout, fmt.Errorf("registry_timeout %q: %w", raw, err)
	}
	if d <= 0 {
		return DefaultRegistryTimeout, fmt.Errorf("registry_timeout %q must be positive", raw)
	}
	return d, nil
}

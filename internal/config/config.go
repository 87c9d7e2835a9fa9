// Package config resolves the command line, environment and config file
// into one immutable run configuration.
package config

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Platform selects which packaging steps run after the asset mirror.
type Platform string

const (
	PlatformNative     Platform = "native"
	PlatformEmscripten Platform = "emscripten"
)

// EmscriptenSystemName is the CMAKE_SYSTEM_NAME value of Emscripten builds.
const EmscriptenSystemName = "Emscripten"

const (
	DefaultSourceDir   = "."
	DefaultBuildDir    = "./build"
	DefaultProjectName = "ProjectName"
)

// ParsePlatform accepts a platform name in any case.
func ParsePlatform(name string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(name))) {
	case PlatformNative:
		return PlatformNative, nil
	case PlatformEmscripten:
		return PlatformEmscripten, nil
	}
	return "", errors.Errorf("unknown platform %q (want %s or %s)", name, PlatformNative, PlatformEmscripten)
}

// PlatformFromSystemName maps a CMake system name to a platform.
func PlatformFromSystemName(systemName string) Platform {
	if systemName == EmscriptenSystemName {
		return PlatformEmscripten
	}
	return PlatformNative
}

// Config is the resolved configuration of one run.
type Config struct {
	SourceDir   string
	BuildDir    string
	AssetsDir   string
	ProjectName string
	Platform    Platform
	DryRun      bool
	Strict      bool
}

// AssetSource is the tree mirrored into the build directory.
func (c Config) AssetSource() string {
	if c.AssetsDir != "" {
		return c.AssetsDir
	}
	return filepath.Join(c.SourceDir, "assets")
}

func (c Config) AssetTarget() string {
	return filepath.Join(c.BuildDir, "assets")
}

func (c Config) TemplateSource() string {
	return filepath.Join(c.SourceDir, "web", "index.html")
}

func (c Config) TemplateTarget() string {
	return filepath.Join(c.BuildDir, c.ProjectName+".html")
}

// Load reads the viper keys source-dir, build-dir, assets-dir,
// project-name, platform, cmake-system-name, dry-run and strict.
// Positional args, in order source dir, build dir and project name,
// take precedence over those keys.
func Load(args []string) (Config, error) {
	if len(args) > 3 {
		return Config{}, errors.Errorf("accepts at most 3 args, received %d", len(args))
	}

	cfg := Config{
		SourceDir:   stringOr(viper.GetString("source-dir"), DefaultSourceDir),
		BuildDir:    stringOr(viper.GetString("build-dir"), DefaultBuildDir),
		AssetsDir:   viper.GetString("assets-dir"),
		ProjectName: stringOr(viper.GetString("project-name"), DefaultProjectName),
		DryRun:      viper.GetBool("dry-run"),
		Strict:      viper.GetBool("strict"),
	}
	if len(args) > 0 {
		cfg.SourceDir = args[0]
	}
	if len(args) > 1 {
		cfg.BuildDir = args[1]
	}
	if len(args) > 2 {
		cfg.ProjectName = args[2]
	}

	if explicit := viper.GetString("platform"); explicit != "" {
		platform, err := ParsePlatform(explicit)
		if err != nil {
			return Config{}, err
		}
		cfg.Platform = platform
	} else {
		cfg.Platform = PlatformFromSystemName(viper.GetString("cmake-system-name"))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations no run could succeed with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ProjectName) == "" {
		return errors.New("project name must not be empty")
	}
	if strings.ContainsAny(c.ProjectName, `/\`) {
		return errors.Errorf("project name %q must not contain path separators", c.ProjectName)
	}
	if c.SourceDir == "" || c.BuildDir == "" {
		return errors.New("source and build directories must not be empty")
	}
	if _, err := ParsePlatform(string(c.Platform)); err != nil {
		return err
	}
	return nil
}

func stringOr(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

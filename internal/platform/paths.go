package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the config and data directories.
const DefaultAppName = "dragboard"

// Paths holds the per-user locations the board resolves at startup.
type Paths struct {
	ConfigPath string
	DataDir    string
	LogDir     string
}

// Options defines optional settings for path resolution.
type Options struct {
	AppName string
	DevMode bool
}

// envKeys lists the variables PathsFor consults.
var envKeys = []string{"XDG_CONFIG_HOME", "XDG_STATE_HOME", "APPDATA", "LOCALAPPDATA"}

// DefaultPaths returns default paths.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: DefaultAppName})
}

// DefaultPathsWithOptions resolves paths for the running OS and user.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = DefaultAppName
	}
	if opts.DevMode {
		appName += "-dev"
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	stateDir := configDir
	switch runtime.GOOS {
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", err)
		}
		stateDir = filepath.Join(home, ".local", "state")
	case "windows":
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			stateDir = v
		}
	}

	env := make(map[string]string, len(envKeys))
	for _, key := range envKeys {
		env[key] = os.Getenv(key)
	}
	return PathsFor(runtime.GOOS, env, configDir, stateDir, appName)
}

// PathsFor resolves paths for goos. userStateDir is where run logs live when
// env carries no override.
func PathsFor(goos string, env map[string]string, userConfigDir, userStateDir, appName string) (Paths, error) {
	if userConfigDir == "" || userStateDir == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}

	configBase := userConfigDir
	stateBase := userStateDir
	switch goos {
	case "linux":
		configBase = firstNonEmpty(env["XDG_CONFIG_HOME"], configBase)
		stateBase = firstNonEmpty(env["XDG_STATE_HOME"], stateBase)
	case "windows":
		configBase = firstNonEmpty(env["APPDATA"], configBase)
		stateBase = firstNonEmpty(env["LOCALAPPDATA"], stateBase)
	}

	dataDir := filepath.Join(stateBase, appName)
	return Paths{
		ConfigPath: filepath.Join(configBase, appName, "config.toml"),
		DataDir:    dataDir,
		LogDir:     filepath.Join(dataDir, "log"),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

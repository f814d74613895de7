package platform

import (
	"path/filepath"
	"testing"
)

func TestPathsFor(t *testing.T) {
	tests := []struct {
		name       string
		goos       string
		env        map[string]string
		configDir  string
		stateDir   string
		wantConfig string
		wantLog    string
	}{
		{
			name:       "linux xdg",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_STATE_HOME": "/xdg/state"},
			configDir:  "/fallback/config",
			stateDir:   "/fallback/data",
			wantConfig: filepath.Join("/xdg/config", "dragboard", "config.toml"),
			wantLog:    filepath.Join("/xdg/state", "dragboard", "log"),
		},
		{
			name:       "linux without xdg",
			goos:       "linux",
			env:        map[string]string{},
			configDir:  "/home/me/.config",
			stateDir:   "/home/me/.local/state",
			wantConfig: filepath.Join("/home/me/.config", "dragboard", "config.toml"),
			wantLog:    filepath.Join("/home/me/.local/state", "dragboard", "log"),
		},
		{
			name:       "windows appdata",
			goos:       "windows",
			env:        map[string]string{"APPDATA": `C:\Users\me\AppData\Roaming`, "LOCALAPPDATA": `C:\Users\me\AppData\Local`},
			configDir:  `C:\fallback\config`,
			stateDir:   `C:\fallback\data`,
			wantConfig: filepath.Join(`C:\Users\me\AppData\Roaming`, "dragboard", "config.toml"),
			wantLog:    filepath.Join(`C:\Users\me\AppData\Local`, "dragboard", "log"),
		},
		{
			name:       "darwin ignores xdg",
			goos:       "darwin",
			env:        map[string]string{"XDG_CONFIG_HOME": "/ignored", "XDG_STATE_HOME": "/ignored"},
			configDir:  "/Users/me/Library/Application Support",
			stateDir:   "/Users/me/Library/Application Support",
			wantConfig: filepath.Join("/Users/me/Library/Application Support", "dragboard", "config.toml"),
			wantLog:    filepath.Join("/Users/me/Library/Application Support", "dragboard", "log"),
		},
		{
			name:       "unknown os",
			goos:       "freebsd",
			env:        map[string]string{},
			configDir:  "/cfg",
			stateDir:   "/data",
			wantConfig: filepath.Join("/cfg", "dragboard", "config.toml"),
			wantLog:    filepath.Join("/data", "dragboard", "log"),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := PathsFor(tc.goos, tc.env, tc.configDir, tc.stateDir, "dragboard")
			if err != nil {
				t.Fatalf("PathsFor() error = %v", err)
			}
			if p.ConfigPath != tc.wantConfig {
				t.Fatalf("unexpected config path %q", p.ConfigPath)
			}
			if p.LogDir != tc.wantLog {
				t.Fatalf("unexpected log dir %q", p.LogDir)
			}
			if filepath.Dir(p.LogDir) != p.DataDir {
				t.Fatalf("expected log dir under data dir, got %q and %q", p.LogDir, p.DataDir)
			}
		})
	}
}

func TestPathsForRejectsEmptyInput(t *testing.T) {
	if _, err := PathsFor("darwin", nil, "", "/tmp/data", "dragboard"); err == nil {
		t.Fatal("expected error for empty dirs")
	}
	if _, err := PathsFor("linux", nil, "/cfg", "/data", "  "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}

func TestDefaultPathsSmoke(t *testing.T) {
	p, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths() error = %v", err)
	}
	if p.ConfigPath == "" || p.LogDir == "" || p.DataDir == "" {
		t.Fatalf("expected non-empty paths, got %#v", p)
	}
}

func TestDefaultPathsWithOptionsDevMode(t *testing.T) {
	p, err := DefaultPathsWithOptions(Options{AppName: "dragboard", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != "dragboard-dev" {
		t.Fatalf("expected dev config dir suffix, got %q", p.ConfigPath)
	}
	if filepath.Base(p.DataDir) != "dragboard-dev" {
		t.Fatalf("expected dev data dir suffix, got %q", p.DataDir)
	}
}

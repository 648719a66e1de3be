package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestXDGDirs(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		fn       func() (string, error)
		fallback string
	}{
		{"cache", "XDG_CACHE_HOME", cacheDir, ".cache"},
		{"config", "XDG_CONFIG_HOME", configDir, ".config"},
		{"data", "XDG_DATA_HOME", dataDir, filepath.Join(".local", "share")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			custom := t.TempDir()
			t.Setenv(tt.env, custom)
			dir, err := tt.fn()
			if err != nil {
				t.Fatalf("%sDir() error: %v", tt.name, err)
			}
			if want := filepath.Join(custom, appName); dir != want {
				t.Errorf("with %s: %q, want %q", tt.env, dir, want)
			}

			t.Setenv(tt.env, "")
			dir, err = tt.fn()
			if err != nil {
				t.Fatalf("%sDir() error: %v", tt.name, err)
			}
			home, _ := os.UserHomeDir()
			if want := filepath.Join(home, tt.fallback, appName); dir != want {
				t.Errorf("default: %q, want %q", dir, want)
			}
		})
	}
}

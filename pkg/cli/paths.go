package cli

import (
	"os"
	"path/filepath"
)

const (
	// AppDirName is the directory under the user config dir.
	AppDirName = "bz2portable"

	// DefaultConfigFile is the config filename inside the app directory.
	DefaultConfigFile = "config.yaml"

	// ConfigEnv names the environment variable that overrides the config path.
	ConfigEnv = "BZ2P_CONFIG"
)

// Paths locates bz2p's files.
type Paths struct {
	// BaseDir is the user config dir, e.g. ~/.config on Linux.
	BaseDir string
}

// NewPaths resolves Paths from os.UserConfigDir.
func NewPaths() (*Paths, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &Paths{BaseDir: dir}, nil
}

// AppDir returns <base>/bz2portable.
func (p *Paths) AppDir() string {
	return filepath.Join(p.BaseDir, AppDirName)
}

// ConfigFile returns the config path, honoring $BZ2P_CONFIG.
func (p *Paths) ConfigFile() string {
	if env := os.Getenv(ConfigEnv); env != "" {
		return env
	}
	return filepath.Join(p.AppDir(), DefaultConfigFile)
}

// ManifestDir returns the default manifest database directory.
func (p *Paths) ManifestDir() string {
	return filepath.Join(p.AppDir(), "manifest")
}

package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

const appName = "jamofind"

// PathResolver locates the config and data directories of the binary.
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
	dataDir       string
}

// NewPathResolver creates a resolver rooted at the running executable and the user's home.
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}

	// Resolve any symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		homeDir:       homeDir,
		configDir:     configDirFor(homeDir),
		dataDir:       dataDirFor(homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s, dataDir=%s",
		pr.executableDir, pr.configDir, pr.dataDir)
	return pr, nil
}

func configDirFor(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, appName)
		}
		return filepath.Join(homeDir, ".config", appName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", appName)
	default:
		return filepath.Join(homeDir, ".config", appName)
	}
}

func dataDirFor(homeDir string) string {
	if runtime.GOOS == "linux" {
		if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
			return filepath.Join(dataHome, appName)
		}
		return filepath.Join(homeDir, ".local", "share", appName)
	}
	return filepath.Join(configDirFor(homeDir), "data")
}

// ResolveDataPath makes a relative store path absolute under the data directory.
// Absolute paths are returned unchanged.
func (pr *PathResolver) ResolveDataPath(p string) string {
	if p == "" {
		return pr.dataDir
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(pr.dataDir, p)
}

// ConfigPath returns a writable location for filename, falling back to the
// executable directory and then the temp directory.
func (pr *PathResolver) ConfigPath(filename string) string {
	for _, dir := range []string{pr.configDir, pr.executableDir, filepath.Join(os.TempDir(), appName)} {
		if CheckDirStatus(dir).Writable {
			return filepath.Join(dir, filename)
		}
		log.Debugf("Config directory %s is not writable", dir)
	}
	path := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", path)
	return path
}

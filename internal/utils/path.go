package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// AppName names the per-user config directory.
const AppName = "nextword"

// PathResolver locates config and dataset files for the nextword binary
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
	workDir       string
}

// NewPathResolver creates a resolver anchored at the running executable,
// the user's config directory and the current working directory.
func NewPathResolver() *PathResolver {
	execDir, err := GetExecutableDir()
	if err != nil {
		log.Debugf("Could not determine executable directory: %v", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	workDir, _ := os.Getwd()

	pr := &PathResolver{
		executableDir: execDir,
		homeDir:       homeDir,
		configDir:     configDirFor(homeDir),
		workDir:       workDir,
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s, workDir=%s",
		pr.executableDir, pr.configDir, pr.workDir)
	return pr
}

// configDirFor returns the platform config directory
func configDirFor(homeDir string) string {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppName)
		}
		return filepath.Join(homeDir, ".config", AppName)
	case "darwin":
		return filepath.Join(homeDir, ".config", AppName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppName)
	default:
		return filepath.Join(homeDir, "."+AppName)
	}
}

// ConfigDir returns the preferred config directory
func (pr *PathResolver) ConfigDir() string {
	return pr.configDir
}

// ConfigPath returns where filename should live. It prefers the config
// directory and falls back to ~/.nextword, the temp dir and finally the
// executable directory when those are not writable.
func (pr *PathResolver) ConfigPath(filename string) string {
	candidates := []string{
		pr.configDir,
		filepath.Join(pr.homeDir, "."+AppName),
		filepath.Join(os.TempDir(), AppName),
	}
	if pr.executableDir != "" {
		candidates = append(candidates, pr.executableDir)
	}

	for i, dir := range candidates {
		if CheckDirStatus(dir).Writable {
			path := filepath.Join(dir, filename)
			if i > 0 {
				log.Warnf("Using fallback config location: %s", path)
			}
			return path
		}
	}

	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", tempPath)
	return tempPath
}

// ResolveDataset finds a dataset file. Absolute paths are returned as is.
// Relative paths are tried against the working directory, the executable
// directory, its parent and the config directory, in that order. When none
// exists the working-directory candidate is returned so the caller reports
// a sensible path.
func (pr *PathResolver) ResolveDataset(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	candidates := pr.datasetCandidates(path)
	for _, candidate := range candidates {
		if FileExists(candidate) {
			log.Debugf("Found dataset: %s", candidate)
			return candidate
		}
		log.Debugf("Dataset candidate not found: %s", candidate)
	}
	return candidates[0]
}

func (pr *PathResolver) datasetCandidates(path string) []string {
	candidates := []string{filepath.Join(pr.workDir, path)}
	if pr.executableDir != "" {
		candidates = append(candidates,
			filepath.Join(pr.executableDir, path),
			filepath.Join(filepath.Dir(pr.executableDir), path),
		)
	}
	return append(candidates, filepath.Join(pr.configDir, path))
}

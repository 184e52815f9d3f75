package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "imagefetch"

// GetAppDir returns the per-user root for imagefetch's own files, following
// OS conventions. Downloaded images never live here.
func GetAppDir() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(appData, appDirName)
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", appDirName)
	default:
		stateHome := os.Getenv("XDG_STATE_HOME")
		if stateHome == "" {
			home, _ := os.UserHomeDir()
			stateHome = filepath.Join(home, ".local", "state")
		}
		return filepath.Join(stateHome, appDirName)
	}
}

// GetRuntimeDir returns the directory holding the fetch lock.
// Linux: $XDG_RUNTIME_DIR/imagefetch, falling back to GetAppDir()/run.
// macOS and Windows: a subdirectory of the temp dir.
func GetRuntimeDir() string {
	switch runtime.GOOS {
	case "windows", "darwin":
		return filepath.Join(os.TempDir(), appDirName+"-runtime")
	default:
		if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
			return filepath.Join(runtimeDir, appDirName)
		}
		return filepath.Join(GetAppDir(), "run")
	}
}

// GetLogsDir returns the directory for verbose debug logs.
func GetLogsDir() string {
	return filepath.Join(GetAppDir(), "logs")
}

// GetLockPath returns the advisory lock serializing filename resolution
// between concurrent imagefetch processes.
func GetLockPath() string {
	return filepath.Join(GetRuntimeDir(), "fetch.lock")
}

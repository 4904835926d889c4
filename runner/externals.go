package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// resolveExecutable finds the absolute path of the program to run. A
// name with a path separator is taken relative to workDir, a bare name
// is searched in pathDirs front to back.
func resolveExecutable(name string, workDir string, pathDirs []string) (string, error) {
	if strings.ContainsAny(name, "/\\") {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}
		if isExecutable(path) {
			return path, nil
		}
		return "", fmt.Errorf("%s is not an executable file", path)
	}
	for _, dir := range pathDirs {
		if len(dir) == 0 {
			continue
		}
		path := filepath.Join(dir, name)
		if isExecutable(path) {
			return path, nil
		}
		if runtime.GOOS == "windows" && isExecutable(path+".exe") {
			return path + ".exe", nil
		}
	}
	return "", fmt.Errorf("command %s not found in PATH", name)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0111 != 0
}

// isExternal reports whether the resolved executable lives outside the
// environment directory
func isExternal(path string, envDir string) bool {
	rel, err := filepath.Rel(envDir, path)
	if err != nil {
		return true
	}
	return strings.HasPrefix(rel, "..")
}

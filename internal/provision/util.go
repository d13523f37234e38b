package provision

import "os"

func ensureDir(path string, mode os.FileMode) error {
	return os.MkdirAll(path, mode)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

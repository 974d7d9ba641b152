package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultCacheDir 返回 pip 的用户缓存目录：优先 PIP_CACHE_DIR，
// 否则按平台约定推导。无法推导时返回空字符串。
func DefaultCacheDir() string {
	if dir := os.Getenv("PIP_CACHE_DIR"); dir != "" {
		return dir
	}
	return platformCacheDir(runtime.GOOS, os.Getenv, os.UserHomeDir)
}

func platformCacheDir(goos string, getenv func(string) string, home func() (string, error)) string {
	switch goos {
	case "windows":
		if local := getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "pip", "Cache")
		}
		return ""
	case "darwin":
		h, err := home()
		if err != nil || h == "" {
			return ""
		}
		return filepath.Join(h, "Library", "Caches", "pip")
	default:
		if xdg := getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "pip")
		}
		h, err := home()
		if err != nil || h == "" {
			return ""
		}
		return filepath.Join(h, ".cache", "pip")
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadFromFile(t *testing.T) {
	cfg, err := Load(LoadOptions{Path: testConfigPath(t, "valid.toml"), Required: true})
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.CacheDir != filepath.Clean("/var/cache/pip") {
		t.Fatalf("CacheDir 解析错误: %s", cfg.CacheDir)
	}
	if !filepath.IsAbs(cfg.DestDir) {
		t.Fatalf("DestDir 应转为绝对路径: %s", cfg.DestDir)
	}
	if diff := cmp.Diff([]string{"requests-*", "urllib3-*"}, cfg.Select); diff != "" {
		t.Fatalf("Select 不一致 (-want +got):\n%s", diff)
	}
	if cfg.Workers != 4 || cfg.Log.LogLevel != "debug" || cfg.Log.LogFormat != "json" {
		t.Fatalf("字段解析错误: %+v", cfg)
	}
	if cfg.Log.LogMaxSize != 100 || !cfg.Log.LogCompress {
		t.Fatalf("未配置字段应使用默认值: %+v", cfg.Log)
	}
	if !cfg.ExportEnabled() || cfg.SelectMode() != "filtered" {
		t.Fatalf("派生字段错误")
	}
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	flags := parsedFlags(t, "--cache-dir", "/tmp/other-cache", "--select", "a-*,b-*", "--select", "c-*", "--log-level", "warn")
	cfg, err := Load(LoadOptions{
		Path:        testConfigPath(t, "valid.toml"),
		Required:    true,
		Flags:       flags,
		ExtraSelect: []string{"d-*"},
	})
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.CacheDir != filepath.Clean("/tmp/other-cache") {
		t.Fatalf("flag 应覆盖文件中的 CacheDir，得到 %s", cfg.CacheDir)
	}
	if diff := cmp.Diff([]string{"a-*", "b-*", "c-*", "d-*"}, cfg.Select); diff != "" {
		t.Fatalf("Select 不一致 (-want +got):\n%s", diff)
	}
	if cfg.Log.LogLevel != "warn" {
		t.Fatalf("flag 应覆盖 LogLevel，得到 %s", cfg.Log.LogLevel)
	}
	if cfg.Workers != 4 {
		t.Fatalf("未修改的 flag 不应覆盖文件值，得到 %d", cfg.Workers)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("WHEELHOUSE_WORKERS", "auto")
	t.Setenv("WHEELHOUSE_SELECT", "x-*,y-*")
	cfg, err := Load(LoadOptions{Path: testConfigPath(t, "valid.toml"), Required: true})
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Workers != 0 {
		t.Fatalf("auto 应解析为 0，得到 %d", cfg.Workers)
	}
	if diff := cmp.Diff([]string{"x-*", "y-*"}, cfg.Select); diff != "" {
		t.Fatalf("Select 不一致 (-want +got):\n%s", diff)
	}
}

func TestLoadOptionalDefaultFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("PIP_CACHE_DIR", "/srv/pip-cache")

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("缺少默认配置文件不应报错: %v", err)
	}
	if cfg.CacheDir != filepath.Clean("/srv/pip-cache") {
		t.Fatalf("应使用 PIP_CACHE_DIR，得到 %s", cfg.CacheDir)
	}
	if cfg.ExportEnabled() || cfg.SelectMode() != "all" {
		t.Fatalf("默认不应导出或过滤")
	}
}

func TestLoadRequiredFileMissing(t *testing.T) {
	if _, err := Load(LoadOptions{Path: filepath.Join(t.TempDir(), "absent.toml"), Required: true}); err == nil {
		t.Fatalf("显式指定的配置文件不存在时应报错")
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	_, err := Load(LoadOptions{Path: testConfigPath(t, "invalid.toml"), Required: true})
	var fieldErr FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("期望 FieldError，得到 %v", err)
	}
	if fieldErr.Field != "LogFormat" {
		t.Fatalf("字段路径错误: %s", fieldErr.Field)
	}
}

func TestLoadRejectsBrokenToml(t *testing.T) {
	if _, err := Load(LoadOptions{Path: testConfigPath(t, "broken.toml"), Required: true}); err == nil {
		t.Fatalf("无法解析的 TOML 应返回错误")
	}
}

func TestLoadRejectsInvalidWorkers(t *testing.T) {
	path := writeTempConfig(t, `
CacheDir = "/var/cache/pip"
Workers = "many"
`)
	if _, err := Load(LoadOptions{Path: path, Required: true}); err == nil {
		t.Fatalf("无效 Workers 应失败")
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"ok", func(*Config) {}, ""},
		{"empty cache dir", func(c *Config) { c.CacheDir = " " }, "CacheDir"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "Workers"},
		{"bad level", func(c *Config) { c.Log.LogLevel = "loud" }, "LogLevel"},
		{"bad format", func(c *Config) { c.Log.LogFormat = "xml" }, "LogFormat"},
		{"blank pattern", func(c *Config) { c.Select = []string{"ok-*", " "} }, "Select[1]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var fieldErr FieldError
			if !errors.As(err, &fieldErr) || fieldErr.Field != tc.field {
				t.Fatalf("expected FieldError on %s, got %v", tc.field, err)
			}
		})
	}
}

func TestPlatformCacheDir(t *testing.T) {
	home := func() (string, error) { return "/home/u", nil }
	env := func(vals map[string]string) func(string) string {
		return func(k string) string { return vals[k] }
	}

	testCases := []struct {
		goos string
		env  map[string]string
		want string
	}{
		{"linux", nil, filepath.Join("/home/u", ".cache", "pip")},
		{"linux", map[string]string{"XDG_CACHE_HOME": "/xdg"}, filepath.Join("/xdg", "pip")},
		{"darwin", nil, filepath.Join("/home/u", "Library", "Caches", "pip")},
		{"windows", map[string]string{"LOCALAPPDATA": "/appdata"}, filepath.Join("/appdata", "pip", "Cache")},
		{"windows", nil, ""},
	}
	for _, tc := range testCases {
		if got := platformCacheDir(tc.goos, env(tc.env), home); got != tc.want {
			t.Fatalf("%s %v: got %q want %q", tc.goos, tc.env, got, tc.want)
		}
	}
}

func validConfig() *Config {
	return &Config{
		CacheDir: "/var/cache/pip",
		Log: LogConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
	}
}

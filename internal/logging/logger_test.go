package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/wheelhouse/internal/config"
)

func TestConfigureDefaultsToStderr(t *testing.T) {
	logger, err := InitLogger(config.LogConfig{LogLevel: "info"})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if logger.Out != os.Stderr {
		t.Fatalf("未指定文件时应输出到 stderr")
	}
	if _, ok := logger.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("默认应使用文本格式，得到 %T", logger.Formatter)
	}
}

func TestConfigureJSONFormat(t *testing.T) {
	logger, err := InitLogger(config.LogConfig{LogLevel: "debug", LogFormat: "json"})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if _, ok := logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("应使用 JSON 格式，得到 %T", logger.Formatter)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("日志级别未生效: %s", logger.GetLevel())
	}
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	if _, err := InitLogger(config.LogConfig{LogLevel: "loud"}); err == nil {
		t.Fatalf("非法日志级别应报错")
	}
}

func TestInitLoggerFallbackOnPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root 忽略目录权限")
	}
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.Mkdir(blocked, 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.Chmod(blocked, 0o000); err != nil {
		t.Fatalf("设置目录权限失败: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(blocked, 0o755) })

	cfg := config.LogConfig{
		LogLevel:    "info",
		LogFilePath: filepath.Join(blocked, "sub", "wheelhouse.log"),
	}
	logger, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("初始化不应失败: %v", err)
	}
	if logger.Out != DefaultOutput {
		t.Fatalf("fallback 时应退回默认输出")
	}
}

func TestConfigureCreatesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wheelhouse.log")
	cfg := config.LogConfig{LogLevel: "debug", LogFilePath: path}
	logger, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	logger.Info("test")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("预期创建日志文件: %v", err)
	}
}

func TestBaseFieldsCarriesRunID(t *testing.T) {
	id := NewRunID()
	fields := BaseFields("scan", "wheelhouse.toml", id)
	if fields["run_id"] != id || fields["action"] != "scan" {
		t.Fatalf("字段缺失: %v", fields)
	}
	if id == NewRunID() {
		t.Fatalf("run id 应唯一")
	}
	if _, ok := FileFields("/c/x", "", "")["project"]; ok {
		t.Fatalf("空 project 不应写入字段")
	}
}

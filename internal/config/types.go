package config

// LogConfig 描述日志输出行为。
type LogConfig struct {
	LogLevel      string `mapstructure:"LogLevel"`
	LogFormat     string `mapstructure:"LogFormat"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`
}

// Config 是 TOML 文件、环境变量与命令行标志合并后的整体结构。
type Config struct {
	// CacheDir 是 pip 缓存根目录（其下包含 http/ 与 http-v2/）。
	CacheDir string `mapstructure:"CacheDir"`
	// DestDir 为空时只列出 wheel 名称，不落盘。
	DestDir string `mapstructure:"DestDir"`
	// Select 为空表示选中全部。
	Select []string `mapstructure:"Select"`
	// Workers 为并发处理缓存文件的 worker 数，0 表示按 CPU 数自动决定。
	Workers int `mapstructure:"Workers"`

	Log LogConfig `mapstructure:",squash"`
}

// ExportEnabled 表示是否配置了目标目录。
func (c *Config) ExportEnabled() bool {
	return c.DestDir != ""
}

// SelectMode 输出 `all` 或 `filtered`，供日志字段使用。
func (c *Config) SelectMode() string {
	if len(c.Select) == 0 {
		return "all"
	}
	return "filtered"
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultConfigFile 是未显式指定配置文件时尝试读取的文件（可不存在）。
const DefaultConfigFile = "wheelhouse.toml"

// EnvPrefix 是环境变量前缀，例如 WHEELHOUSE_CACHEDIR。
const EnvPrefix = "WHEELHOUSE"

// flagKeys 将命令行标志映射到配置键。
var flagKeys = map[string]string{
	"cache-dir":  "CacheDir",
	"dest-dir":   "DestDir",
	"select":     "Select",
	"workers":    "Workers",
	"log-level":  "LogLevel",
	"log-format": "LogFormat",
	"log-file":   "LogFilePath",
}

// LoadOptions 控制配置来源。
type LoadOptions struct {
	// Path 为配置文件路径；为空时尝试 DefaultConfigFile。
	Path string
	// Required 为 true 时配置文件必须存在。
	Required bool
	// Flags 为已解析的标志集合，已修改的标志优先级最高。
	Flags *pflag.FlagSet
	// ExtraSelect 追加到 Select（命令行位置参数）。
	ExtraSelect []string
}

// RegisterFlags 在 fs 上声明与配置键对应的标志。
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("cache-dir", "", "pip 缓存根目录（默认使用 pip 的用户缓存目录）")
	fs.String("dest-dir", "", "将选中的 wheel 写入该目录")
	fs.StringSlice("select", nil, "只处理匹配通配符的 wheel，可重复或逗号分隔")
	fs.Int("workers", 0, "并发 worker 数（0 为按 CPU 数）")
	fs.String("log-level", "", "日志级别 (debug|info|warn|error)")
	fs.String("log-format", "", "日志格式 (text|json)")
	fs.String("log-file", "", "日志文件路径（按大小轮转）")
}

// Load 合并 默认值 → 配置文件 → 环境变量 → 命令行标志，并完成校验。
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := bindFlags(v, opts.Flags); err != nil {
		return nil, err
	}
	if err := readConfigFile(v, opts); err != nil {
		return nil, err
	}

	var cfg Config
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
		workersDecodeHook(),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.Select = append(cfg.Select, opts.ExtraSelect...)
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("CacheDir", DefaultCacheDir())
	v.SetDefault("DestDir", "")
	v.SetDefault("Select", []string{})
	v.SetDefault("Workers", 0)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFormat", "text")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("绑定标志 --%s 失败: %w", name, err)
		}
	}
	return nil
}

func readConfigFile(v *viper.Viper, opts LoadOptions) error {
	path := opts.Path
	if path == "" {
		path = DefaultConfigFile
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		if !opts.Required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("读取配置失败: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) error {
	cleaned := cfg.Select[:0]
	for _, p := range cfg.Select {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	cfg.Select = cleaned

	cfg.Log.LogLevel = strings.ToLower(strings.TrimSpace(cfg.Log.LogLevel))
	cfg.Log.LogFormat = strings.ToLower(strings.TrimSpace(cfg.Log.LogFormat))

	if cfg.CacheDir != "" {
		abs, err := filepath.Abs(expandHome(cfg.CacheDir))
		if err != nil {
			return fmt.Errorf("无法解析缓存目录: %w", err)
		}
		cfg.CacheDir = abs
	}
	if cfg.DestDir != "" {
		abs, err := filepath.Abs(expandHome(cfg.DestDir))
		if err != nil {
			return fmt.Errorf("无法解析目标目录: %w", err)
		}
		cfg.DestDir = abs
	}
	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// workersDecodeHook 允许 Workers 写作 "auto" 或数字字符串。
func workersDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(0)

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType || from.Kind() != reflect.String {
			return data, nil
		}
		raw := strings.TrimSpace(data.(string))
		switch strings.ToLower(raw) {
		case "", "auto":
			return 0, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("无法解析整数字段: %s", raw)
		}
		return n, nil
	}
}

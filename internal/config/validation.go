package config

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/wheelhouse/internal/selector"
)

var supportedLogFormats = map[string]struct{}{
	"text": {},
	"json": {},
}

// Validate 针对语义级别做进一步校验，防止非法配置启动扫描。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	if strings.TrimSpace(c.CacheDir) == "" {
		return newFieldError("CacheDir", "不能为空（未检测到 pip 缓存目录，请通过 --cache-dir 指定）")
	}
	if c.Workers < 0 {
		return newFieldError("Workers", "不能为负数")
	}

	for i, pattern := range c.Select {
		if strings.TrimSpace(pattern) == "" {
			return newFieldError(selectField(i), "不能为空")
		}
		if _, err := selector.New([]string{pattern}); err != nil {
			return newFieldError(selectField(i), "非法通配符: "+pattern)
		}
	}

	if _, err := logrus.ParseLevel(c.Log.LogLevel); err != nil {
		return newFieldError("LogLevel", "无法识别: "+c.Log.LogLevel)
	}
	if _, ok := supportedLogFormats[c.Log.LogFormat]; !ok {
		return newFieldError("LogFormat", "仅支持 text|json")
	}
	if c.Log.LogMaxSize < 0 {
		return newFieldError("LogMaxSize", "不能为负数")
	}
	if c.Log.LogMaxBackups < 0 {
		return newFieldError("LogMaxBackups", "不能为负数")
	}

	return nil
}

package logging

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NewRunID 为一次扫描生成唯一标识，串联同一次运行的所有日志。
func NewRunID() string {
	return uuid.NewString()
}

// BaseFields 构建 action + 配置路径 + run_id 等基础字段，便于不同入口复用。
func BaseFields(action, configPath, runID string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
		"run_id":     runID,
	}
}

// FileFields 提供单个缓存文件的字段，供扫描日志复用。
func FileFields(cachePath, project, version string) logrus.Fields {
	fields := logrus.Fields{
		"cache_path": cachePath,
	}
	if project != "" {
		fields["project"] = project
	}
	if version != "" {
		fields["version"] = version
	}
	return fields
}

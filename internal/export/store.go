package export

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/opencontainers/go-digest"
)

// Store 负责把 wheel 写入目标目录。磁盘布局：
//
//	<DestDir>/<canonical wheel filename>
//
// 同名文件会被覆盖。
type Store interface {
	// Put 将正文完整写入 name，实现需通过临时文件 + rename 保证原子性，
	// 并在失败时清理临时文件。
	Put(ctx context.Context, name string, body io.Reader) (*Entry, error)

	// Dir 返回目标目录的绝对路径。
	Dir() string
}

// Entry 描述一次成功写入。
type Entry struct {
	Name      string        `json:"name"`
	FilePath  string        `json:"file_path"`
	SizeBytes int64         `json:"size_bytes"`
	Digest    digest.Digest `json:"digest"`
	ModTime   time.Time     `json:"mod_time"`
}

var (
	// ErrInvalidName 表示文件名包含路径分隔符或是 "." / ".."，无法安全落盘。
	ErrInvalidName = errors.New("invalid export file name")
	// ErrStoreUnavailable 表示未配置目标目录。
	ErrStoreUnavailable = errors.New("export store unavailable")
)

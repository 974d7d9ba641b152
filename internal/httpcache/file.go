package httpcache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// BodySuffix 是 http-v2 缓存中正文旁路文件的后缀。
const BodySuffix = ".body"

// IsBodyFile 判断路径是否为正文旁路文件（不是独立的缓存条目）。
func IsBodyFile(path string) bool {
	return strings.HasSuffix(path, BodySuffix)
}

// LoadFile 读取并解码一个缓存文件。若信封中的正文为空且存在 <path>.body，
// 则正文取自旁路文件（pip http-v2 布局）。
func LoadFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	rec, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if len(rec.Body) > 0 {
		return rec, nil
	}

	body, err := os.ReadFile(path + BodySuffix)
	switch {
	case err == nil:
		rec.Body = body
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read cache body file: %w", err)
	}
	return rec, nil
}

package scan

import (
	"github.com/any-hub/wheelhouse/internal/httpcache"
	"github.com/any-hub/wheelhouse/internal/pypi"
	"github.com/any-hub/wheelhouse/internal/wheel"
)

// Wheel 是单个缓存文件成功走完流水线后的结果，仅在处理该文件期间存在。
type Wheel struct {
	CachePath string
	Origin    pypi.Origin
	Metadata  *wheel.Metadata
	Name      wheel.Name
	Body      []byte
}

// Process 对单个缓存文件执行 解码 → 分类 → 读取 WHEEL → 命名。
// 失败返回的错误可用 errors.Is/As 区分：*httpcache.DecodeError、
// *pypi.RejectError、wheel.ErrCorruptArchive、wheel.ErrNoTag 或读文件错误。
func Process(path string) (*Wheel, error) {
	rec, err := httpcache.LoadFile(path)
	if err != nil {
		return nil, err
	}

	origin, err := pypi.Classify(rec)
	if err != nil {
		return nil, err
	}

	meta, err := wheel.ReadMetadata(rec.Body)
	if err != nil {
		return nil, err
	}

	name, err := wheel.Filename(origin, meta)
	if err != nil {
		return nil, err
	}

	return &Wheel{
		CachePath: path,
		Origin:    origin,
		Metadata:  meta,
		Name:      name,
		Body:      rec.Body,
	}, nil
}

// Package pypi 根据 PyPI 响应头判断缓存记录是否为可导出的 wheel 分发包。
package pypi

import (
	"errors"
	"fmt"

	"github.com/any-hub/wheelhouse/internal/httpcache"
)

const (
	// IndexContentType 是 simple index JSON 列表响应的 Content-Type。
	IndexContentType = "application/vnd.pypi.simple.v1+json"
	// FileHeaderPrefix 是 PyPI 文件下载响应上携带源包元数据的响应头前缀。
	FileHeaderPrefix = "x-pypi-file-"
	// PackageTypeWheel 是二进制 wheel 分发包的 package-type 取值。
	PackageTypeWheel = "bdist_wheel"
)

// 拒绝原因，RejectError 通过 errors.Is 与之匹配。
var (
	ErrIndexListing    = errors.New("index listing response")
	ErrUnsupportedType = errors.New("unsupported package type")
	ErrMissingIdentity = errors.New("missing project or version header")
)

// RejectError 表示记录被分类器跳过；这不是故障，只是过滤结果。
type RejectError struct {
	Reason error
	Detail string
}

func (e *RejectError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("rejected: %v", e.Reason)
	}
	return fmt.Sprintf("rejected: %v (%s)", e.Reason, e.Detail)
}

func (e *RejectError) Unwrap() error {
	return e.Reason
}

// Origin 是去掉 x-pypi-file- 前缀后的响应头集合（键为小写）。
type Origin map[string]string

// Project 返回原始项目名。
func (o Origin) Project() string { return o["project"] }

// Version 返回版本号。
func (o Origin) Version() string { return o["version"] }

// PackageType 返回 package-type，例如 bdist_wheel / sdist。
func (o Origin) PackageType() string { return o["package-type"] }

// PythonVersion 返回 python-version，例如 py3 / cp311。
func (o Origin) PythonVersion() string { return o["python-version"] }

// Classify 检查响应头，接受时返回 Origin，否则返回 *RejectError。
// 该函数不读取正文。
func Classify(rec *httpcache.Record) (Origin, error) {
	if ctype, _ := rec.Header("Content-Type"); ctype == IndexContentType {
		return nil, &RejectError{Reason: ErrIndexListing}
	}

	origin := Origin(rec.HeadersWithPrefix(FileHeaderPrefix))
	if pt := origin.PackageType(); pt != PackageTypeWheel {
		return nil, &RejectError{Reason: ErrUnsupportedType, Detail: fmt.Sprintf("package-type=%q", pt)}
	}
	if origin.Project() == "" || origin.Version() == "" {
		return nil, &RejectError{Reason: ErrMissingIdentity}
	}
	return origin, nil
}

// ReasonName 将拒绝原因映射为稳定的日志/统计键。
func ReasonName(err error) string {
	switch {
	case errors.Is(err, ErrIndexListing):
		return "index_listing"
	case errors.Is(err, ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(err, ErrMissingIdentity):
		return "missing_identity"
	default:
		return "other"
	}
}

// Package wheel reads compatibility metadata out of wheel archives and turns
// it, together with the PyPI origin headers, into canonical wheel filenames.
package wheel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"
)

// MetadataSuffix 是 wheel 元数据成员路径的固定后缀（大小写敏感）。
const MetadataSuffix = ".dist-info/WHEEL"

// ErrCorruptArchive 表示正文不是合法 zip，或缺少可读的 WHEEL 成员。
var ErrCorruptArchive = errors.New("corrupt wheel archive")

// Metadata 是从 .dist-info/WHEEL 成员解析出的内容。
type Metadata struct {
	// Member 是实际读取的成员路径。
	Member string
	// ExtraMembers 列出同样匹配后缀但被忽略的成员，正常 wheel 中应为空。
	ExtraMembers []string
	Header       Header
}

// Tags 返回全部 Tag 值。
func (m *Metadata) Tags() []string {
	if m == nil {
		return nil
	}
	return m.Header.Values("tag")
}

// ReadMetadata 将正文作为 zip 容器打开，读取容器列表顺序中第一个
// *.dist-info/WHEEL 成员并解析。不读取其它成员，也不校验整个容器。
func ReadMetadata(body []byte) (*Metadata, error) {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	var (
		member *zip.File
		extra  []string
	)
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, MetadataSuffix) {
			continue
		}
		if member == nil {
			member = f
			continue
		}
		extra = append(extra, f.Name)
	}
	if member == nil {
		return nil, fmt.Errorf("%w: no %s member", ErrCorruptArchive, MetadataSuffix)
	}

	rc, err := member.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrCorruptArchive, member.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrCorruptArchive, member.Name, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not utf-8", ErrCorruptArchive, member.Name)
	}

	return &Metadata{
		Member:       member.Name,
		ExtraMembers: extra,
		Header:       ParseHeaderBlock(string(data)),
	}, nil
}

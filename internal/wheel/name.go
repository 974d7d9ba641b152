package wheel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/any-hub/wheelhouse/internal/pypi"
)

// FallbackTagSuffix 拼接在 python-version 之后，用于 WHEEL 中没有 Tag 时的兜底。
const FallbackTagSuffix = "-none-any"

// ErrNoTag 表示既没有 Tag 也没有 python-version，无法命名。
var ErrNoTag = errors.New("no compatibility tag and no python-version header")

// Name 是合成的文件名。
type Name struct {
	Filename string
	// Synthesized 为 true 时 tag 由 python-version 猜测得出，
	// 不保证反映包真实的 ABI/平台约束。
	Synthesized bool
}

// Filename 按 {project}-{version}-{tag}.whl 合成规范文件名。
// 结果不做任何文件系统字符转义。
func Filename(origin pypi.Origin, meta *Metadata) (Name, error) {
	project := strings.ReplaceAll(origin.Project(), "-", "_")
	version := origin.Version()

	// 多个 Tag 行时取第一个，原样使用。
	tag, _ := meta.Header.Get("tag")
	synthesized := false
	if tag == "" {
		pyver := origin.PythonVersion()
		if pyver == "" {
			return Name{}, fmt.Errorf("%w: %s==%s", ErrNoTag, origin.Project(), version)
		}
		tag = pyver + FallbackTagSuffix
		synthesized = true
	}

	return Name{
		Filename:    fmt.Sprintf("%s-%s-%s.whl", project, version, tag),
		Synthesized: synthesized,
	}, nil
}

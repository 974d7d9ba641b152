// Package testutil builds pip cache fixtures (framed MessagePack records and
// wheel archives) for tests across the module.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/tinylib/msgp/msgp"
)

// Member 描述测试 zip 中的一个成员，按切片顺序写入。
type Member struct {
	Name string
	Data string
}

// EncodeRecord 按 `cc=4,` + MessagePack 信封的格式编码一个缓存响应。
func EncodeRecord(tb testing.TB, headers map[string]string, body []byte) []byte {
	tb.Helper()

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := []byte("cc=4,")
	buf = msgp.AppendMapHeader(buf, 2)

	buf = msgp.AppendString(buf, "response")
	buf = msgp.AppendMapHeader(buf, 6)
	buf = msgp.AppendString(buf, "body")
	buf = msgp.AppendBytes(buf, body)
	buf = msgp.AppendString(buf, "headers")
	buf = msgp.AppendMapHeader(buf, uint32(len(keys)))
	for _, k := range keys {
		buf = msgp.AppendString(buf, k)
		buf = msgp.AppendString(buf, headers[k])
	}
	buf = msgp.AppendString(buf, "status")
	buf = msgp.AppendInt(buf, 200)
	buf = msgp.AppendString(buf, "version")
	buf = msgp.AppendInt(buf, 11)
	buf = msgp.AppendString(buf, "reason")
	buf = msgp.AppendString(buf, "OK")
	buf = msgp.AppendString(buf, "decode_content")
	buf = msgp.AppendBool(buf, false)

	buf = msgp.AppendString(buf, "vary")
	buf = msgp.AppendMapHeader(buf, 0)
	return buf
}

// WheelHeaders 返回 PyPI 文件下载响应携带的典型响应头。
func WheelHeaders(project, version, pythonVersion string) map[string]string {
	return map[string]string{
		"Content-Type":               "binary/octet-stream",
		"x-pypi-file-project":        project,
		"x-pypi-file-version":        version,
		"x-pypi-file-package-type":   "bdist_wheel",
		"x-pypi-file-python-version": pythonVersion,
	}
}

// IndexHeaders 返回 simple index JSON 响应的响应头。
func IndexHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/vnd.pypi.simple.v1+json",
	}
}

// WheelFile 生成 .dist-info/WHEEL 成员内容，每个 tag 一行。
func WheelFile(tags ...string) string {
	var sb strings.Builder
	sb.WriteString("Wheel-Version: 1.0\n")
	sb.WriteString("Generator: bdist_wheel (0.41.2)\n")
	sb.WriteString("Root-Is-Purelib: false\n")
	for _, tag := range tags {
		sb.WriteString("Tag: " + tag + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// BuildWheel 使用给定成员构造 zip 容器。
func BuildWheel(tb testing.TB, members ...Member) []byte {
	tb.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.Create(m.Name)
		if err != nil {
			tb.Fatalf("create zip member %s: %v", m.Name, err)
		}
		if _, err := w.Write([]byte(m.Data)); err != nil {
			tb.Fatalf("write zip member %s: %v", m.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// SimpleWheel 构造包含模块文件与 dist-info/WHEEL 的最小 wheel。
func SimpleWheel(tb testing.TB, project, version string, tags ...string) []byte {
	tb.Helper()
	distInfo := strings.ReplaceAll(project, "-", "_") + "-" + version + ".dist-info"
	return BuildWheel(tb,
		Member{Name: strings.ReplaceAll(project, "-", "_") + "/__init__.py", Data: "__version__ = \"" + version + "\"\n"},
		Member{Name: distInfo + "/METADATA", Data: "Metadata-Version: 2.1\nName: " + project + "\nVersion: " + version + "\n"},
		Member{Name: distInfo + "/WHEEL", Data: WheelFile(tags...)},
	)
}

// WriteFile 将数据写入 root 下的相对路径，必要时创建父目录，返回绝对路径。
func WriteFile(tb testing.TB, root, rel string, data []byte) string {
	tb.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}

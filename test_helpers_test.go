package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/any-hub/wheelhouse/internal/logging"
)

// useBufferWriters swaps stdOut/stdErr with in-memory buffers for the duration
// of a test, allowing assertions on CLI output without polluting test logs.
func useBufferWriters(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}

	prevOut := stdOut
	prevErr := stdErr
	prevLog := logging.DefaultOutput

	stdOut = outBuf
	stdErr = errBuf

	t.Cleanup(func() {
		stdOut = prevOut
		stdErr = prevErr
		logging.DefaultOutput = prevLog
	})
	return outBuf, errBuf
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wheelhouse.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return path
}

func mustParse(t *testing.T, args ...string) cliOptions {
	t.Helper()
	opts, err := parseCLIFlags(args)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	return opts
}

package export

import (
	"bytes"
	"context"
)

// Writer 包装可选的 Store：未配置目标目录时只做列表输出。
type Writer struct {
	store Store
}

// NewWriter 构造写入器，store 可以为 nil。
func NewWriter(store Store) Writer {
	return Writer{store: store}
}

// Enabled 返回当前是否具备落盘能力。
func (w Writer) Enabled() bool {
	return w.store != nil
}

// Dir 返回目标目录；未启用时为空。
func (w Writer) Dir() string {
	if w.store == nil {
		return ""
	}
	return w.store.Dir()
}

// WriteWheel 将内存中的 wheel 正文写入 name。
func (w Writer) WriteWheel(ctx context.Context, name string, body []byte) (*Entry, error) {
	if w.store == nil {
		return nil, ErrStoreUnavailable
	}
	return w.store.Put(ctx, name, bytes.NewReader(body))
}

package httpcache

import "strings"

// Record 是单个缓存文件解码后的 HTTP 响应，仅由 Decode 成功时产出。
type Record struct {
	// Headers 的键已统一转为小写。
	Headers map[string]string
	Body    []byte

	// 以下字段在存储信封中可选，缺失时为零值。
	Status        int
	Version       int
	Reason        string
	DecodeContent bool
}

// Header 以大小写不敏感的方式读取响应头。
func (r *Record) Header(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.Headers[strings.ToLower(name)]
	return v, ok
}

// HeadersWithPrefix 返回带指定前缀的响应头，键去掉前缀。
func (r *Record) HeadersWithPrefix(prefix string) map[string]string {
	prefix = strings.ToLower(prefix)
	out := make(map[string]string)
	if r == nil {
		return out
	}
	for k, v := range r.Headers {
		if strings.HasPrefix(k, prefix) {
			out[strings.TrimPrefix(k, prefix)] = v
		}
	}
	return out
}

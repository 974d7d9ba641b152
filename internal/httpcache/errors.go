package httpcache

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFraming 表示文件缺少 `cc=<N>,` 前缀。
	ErrMalformedFraming = errors.New("malformed cache framing")
	// ErrUnsupportedScheme 表示前缀可识别但方案编号不受支持。
	ErrUnsupportedScheme = errors.New("unsupported cache serialization scheme")
	// ErrMalformedPayload 表示负载无法按方案格式解码。
	ErrMalformedPayload = errors.New("malformed cache payload")
	// ErrMissingField 表示信封缺少 response/headers/body 等必需字段。
	ErrMissingField = errors.New("cache envelope missing required field")
)

// DecodeError 包装单个缓存文件的解码失败原因，调用方据此跳过该文件。
type DecodeError struct {
	Scheme string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Scheme == "" {
		return fmt.Sprintf("decode cache record: %v", e.Err)
	}
	return fmt.Sprintf("decode cache record (cc=%s): %v", e.Scheme, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErr(scheme string, err error) error {
	return &DecodeError{Scheme: scheme, Err: err}
}

func decodeErrf(scheme string, base error, format string, args ...interface{}) error {
	return &DecodeError{Scheme: scheme, Err: fmt.Errorf("%w: %s", base, fmt.Sprintf(format, args...))}
}

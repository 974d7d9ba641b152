package httpcache

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tinylib/msgp/msgp"
)

// Scheme 标识缓存文件的序列化方案（`cc=<N>` 中的 N）。
type Scheme string

const (
	// SchemeMsgpack 是 pip 当前唯一写入的方案：MessagePack 编码的响应信封。
	SchemeMsgpack Scheme = "4"
)

const framingPrefix = "cc="

// Decode 解析单个缓存文件的原始字节。它是纯函数：相同输入总是得到相同结果，
// 失败时返回 *DecodeError，绝不返回半填充的 Record。
func Decode(data []byte) (*Record, error) {
	scheme, payload, err := splitFraming(data)
	if err != nil {
		return nil, err
	}

	switch scheme {
	case SchemeMsgpack:
		return decodeMsgpack(payload)
	default:
		return nil, decodeErrf(string(scheme), ErrUnsupportedScheme, "scheme %q", string(scheme))
	}
}

// splitFraming 拆出 `cc=<N>,` 前缀与负载。
func splitFraming(data []byte) (Scheme, []byte, error) {
	if len(data) == 0 {
		return "", nil, decodeErrf("", ErrMalformedFraming, "empty file")
	}
	idx := bytes.IndexByte(data, ',')
	if idx < 0 {
		return "", nil, decodeErrf("", ErrMalformedFraming, "no framing separator")
	}
	prefix := string(data[:idx])
	if !strings.HasPrefix(prefix, framingPrefix) {
		return "", nil, decodeErrf("", ErrMalformedFraming, "unexpected prefix")
	}
	scheme := strings.TrimPrefix(prefix, framingPrefix)
	if scheme == "" {
		return "", nil, decodeErrf("", ErrMalformedFraming, "empty scheme")
	}
	return Scheme(scheme), data[idx+1:], nil
}

// decodeMsgpack 按线上顺序遍历信封，不经过 Go map，
// 因此大小写不同的同名响应头总是由后出现者覆盖。
func decodeMsgpack(payload []byte) (*Record, error) {
	const scheme = string(SchemeMsgpack)

	if t := msgp.NextType(payload); t != msgp.MapType {
		return nil, decodeErrf(scheme, ErrMalformedPayload, "envelope is %s", t)
	}
	n, rest, err := msgp.ReadMapHeaderBytes(payload)
	if err != nil {
		return nil, decodeErr(scheme, ErrMalformedPayload)
	}

	var (
		fields  map[string]interface{}
		headers map[string]string
	)
	for i := uint32(0); i < n; i++ {
		var key string
		key, rest, err = readKey(rest)
		if err != nil {
			return nil, decodeErr(scheme, ErrMalformedPayload)
		}
		if key != "response" || msgp.NextType(rest) != msgp.MapType {
			if rest, err = msgp.Skip(rest); err != nil {
				return nil, decodeErr(scheme, ErrMalformedPayload)
			}
			continue
		}
		fields, headers, rest, err = readResponse(rest)
		if err != nil {
			return nil, decodeErr(scheme, err)
		}
	}

	if fields == nil {
		return nil, decodeErrf(scheme, ErrMissingField, "response")
	}
	if headers == nil {
		return nil, decodeErrf(scheme, ErrMissingField, "response.headers")
	}
	body, ok := asBytes(fields["body"])
	if !ok {
		return nil, decodeErrf(scheme, ErrMissingField, "response.body")
	}

	rec := &Record{
		Headers: headers,
		Body:    body,
	}
	if n, ok := asInt(fields["status"]); ok {
		rec.Status = n
	}
	if n, ok := asInt(fields["version"]); ok {
		rec.Version = n
	}
	if s, ok := asString(fields["reason"]); ok {
		rec.Reason = s
	}
	if b, ok := fields["decode_content"].(bool); ok {
		rec.DecodeContent = b
	}
	return rec, nil
}

// readResponse 读取 response 子映射；headers 单独按顺序解析，其余字段保留原始值。
// headers 缺失或不是映射时返回 nil headers。
func readResponse(b []byte) (map[string]interface{}, map[string]string, []byte, error) {
	n, rest, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return nil, nil, b, ErrMalformedPayload
	}
	fields := make(map[string]interface{}, n)
	var headers map[string]string
	for i := uint32(0); i < n; i++ {
		var key string
		key, rest, err = readKey(rest)
		if err != nil {
			return nil, nil, b, ErrMalformedPayload
		}
		if key == "headers" && msgp.NextType(rest) == msgp.MapType {
			headers, rest, err = readHeaders(rest)
			if err != nil {
				return nil, nil, b, err
			}
			continue
		}
		var v interface{}
		v, rest, err = msgp.ReadIntfBytes(rest)
		if err != nil {
			return nil, nil, b, ErrMalformedPayload
		}
		fields[key] = v
	}
	return fields, headers, rest, nil
}

// readHeaders 把响应头名转为小写；重名时线上后出现的值覆盖先出现的值。
func readHeaders(b []byte) (map[string]string, []byte, error) {
	n, rest, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return nil, b, ErrMalformedPayload
	}
	headers := make(map[string]string, n)
	for i := uint32(0); i < n; i++ {
		var name, value string
		name, rest, err = readKey(rest)
		if err != nil {
			return nil, b, ErrMalformedPayload
		}
		value, rest, err = readKey(rest)
		if err != nil {
			return nil, b, fmt.Errorf("%w: header %q is not a string", ErrMalformedPayload, name)
		}
		headers[strings.ToLower(name)] = value
	}
	return headers, rest, nil
}

// readKey 读取 str 或 bin 编码的字符串。
func readKey(b []byte) (string, []byte, error) {
	if msgp.NextType(b) == msgp.BinType {
		v, rest, err := msgp.ReadBytesZC(b)
		return string(v), rest, err
	}
	return msgp.ReadStringBytes(b)
}

func asString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	default:
		return "", false
	}
}

func asBytes(v interface{}) ([]byte, bool) {
	switch t := v.(type) {
	case []byte:
		return t, true
	case string:
		return []byte(t), true
	default:
		return nil, false
	}
}

func asInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int64:
		return int(t), true
	case uint64:
		return int(t), true
	default:
		return 0, false
	}
}

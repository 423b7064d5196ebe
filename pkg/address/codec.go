package address

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/multiformats/go-varint"
)

// maxSegmentSize 单段值的最大长度
const maxSegmentSize = 4096

// Bytes 返回路径的二进制序列化
//
// 每段编码为 uvarint(协议码) || uvarint(长度) || 值。签名段同样按此编码，
// 因此 Unsigned().Bytes() 恰好是签名覆盖的内容。
func (p Path) Bytes() []byte {
	size := 0
	for _, seg := range p.segments {
		size += varint.UvarintSize(uint64(seg.proto)) + varint.UvarintSize(uint64(len(seg.value))) + len(seg.value)
	}

	out := make([]byte, 0, size)
	for _, seg := range p.segments {
		out = append(out, varint.ToUvarint(uint64(seg.proto))...)
		out = append(out, varint.ToUvarint(uint64(len(seg.value)))...)
		out = append(out, seg.value...)
	}
	return out
}

// PathFromBytes 从二进制形式解析路径
//
// 拒绝非最小 varint 编码、未知协议码、截断数据和格式错误的段值。
func PathFromBytes(data []byte) (Path, error) {
	var segments []Segment
	for len(data) > 0 {
		code, n, err := varint.FromUvarint(data)
		if err != nil {
			return Path{}, fmt.Errorf("%w: protocol code: %v", ErrInvalidAddress, err)
		}
		data = data[n:]

		size, n, err := varint.FromUvarint(data)
		if err != nil {
			return Path{}, fmt.Errorf("%w: segment length: %v", ErrInvalidAddress, err)
		}
		data = data[n:]

		if size > maxSegmentSize || size > uint64(len(data)) {
			return Path{}, fmt.Errorf("%w: segment length %d out of range", ErrInvalidAddress, size)
		}

		seg := Segment{proto: Protocol(code), value: string(data[:size])}
		if err := seg.validate(); err != nil {
			return Path{}, err
		}
		segments = append(segments, seg)
		data = data[size:]
	}
	return Path{segments: segments}, nil
}

// ParsePath 从文本形式解析路径
//
// 服务名中不能包含 '/'，需要这类名称时应使用二进制形式。
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	if !strings.HasPrefix(s, "/") {
		return Path{}, fmt.Errorf("%w: path must start with '/'", ErrInvalidAddress)
	}

	parts := strings.Split(s[1:], "/")
	if len(parts)%2 != 0 {
		return Path{}, fmt.Errorf("%w: dangling segment in %q", ErrInvalidAddress, s)
	}

	segments := make([]Segment, 0, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		proto, ok := protocolByName(parts[i])
		if !ok {
			return Path{}, fmt.Errorf("%w: %q", ErrUnknownProtocol, parts[i])
		}

		value := parts[i+1]
		if proto == ProtocolSignature {
			raw, err := base58.Decode(value)
			if err != nil {
				return Path{}, fmt.Errorf("%w: signature encoding: %v", ErrInvalidAddress, err)
			}
			value = string(raw)
		}

		seg := Segment{proto: proto, value: value}
		if err := seg.validate(); err != nil {
			return Path{}, err
		}
		segments = append(segments, seg)
	}
	return Path{segments: segments}, nil
}

// MarshalBinary 实现 encoding.BinaryMarshaler
func (p Path) MarshalBinary() ([]byte, error) {
	return p.Bytes(), nil
}

// UnmarshalBinary 实现 encoding.BinaryUnmarshaler
func (p *Path) UnmarshalBinary(data []byte) error {
	parsed, err := PathFromBytes(data)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalText 实现 encoding.TextMarshaler
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := ParsePath(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

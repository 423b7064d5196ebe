package address

import (
	"strings"

	"github.com/dep2p/go-janus/pkg/types"
)

// Path 地址路径
//
// Path 是值类型，内部切片从不被共享写入：所有"追加"操作都返回新路径，
// 交给其他组件后的路径不会被事后改写。
type Path struct {
	segments []Segment
}

// NewPath 由段创建路径
func NewPath(segments ...Segment) Path {
	if len(segments) == 0 {
		return Path{}
	}
	cp := make([]Segment, len(segments))
	copy(cp, segments)
	return Path{segments: cp}
}

// RelayPath 构建 [Peer(relay), Peer(client)]，即"经由 relay 投递给 client"
func RelayPath(relay, client types.PeerID) Path {
	return NewPath(Peer(relay), Peer(client))
}

// ServicePath 构建只含一个 Service 段的路径
func ServicePath(name string) Path {
	return NewPath(Service(name))
}

// Append 返回追加了 segments 的新路径
func (p Path) Append(segments ...Segment) Path {
	out := make([]Segment, 0, len(p.segments)+len(segments))
	out = append(out, p.segments...)
	out = append(out, segments...)
	return Path{segments: out}
}

// Segments 返回段的副本
func (p Path) Segments() []Segment {
	return NewPath(p.segments...).segments
}

// Len 返回段数
func (p Path) Len() int {
	return len(p.segments)
}

// IsEmpty 路径是否为空
func (p Path) IsEmpty() bool {
	return len(p.segments) == 0
}

// First 返回第一段
func (p Path) First() (Segment, bool) {
	if p.IsEmpty() {
		return Segment{}, false
	}
	return p.segments[0], true
}

// Last 返回最后一段
func (p Path) Last() (Segment, bool) {
	if p.IsEmpty() {
		return Segment{}, false
	}
	return p.segments[len(p.segments)-1], true
}

// Contains 路径中是否包含指定段
func (p Path) Contains(s Segment) bool {
	for _, seg := range p.segments {
		if seg.Equal(s) {
			return true
		}
	}
	return false
}

// Equal 比较两条路径
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if !p.segments[i].Equal(other.segments[i]) {
			return false
		}
	}
	return true
}

// IsSigned 最后一段是否为签名段
func (p Path) IsSigned() bool {
	last, ok := p.Last()
	return ok && last.Protocol() == ProtocolSignature
}

// Unsigned 返回去掉末尾签名段的路径
func (p Path) Unsigned() Path {
	if !p.IsSigned() {
		return p
	}
	return NewPath(p.segments[:len(p.segments)-1]...)
}

// String 返回路径的文本形式
func (p Path) String() string {
	var sb strings.Builder
	for _, seg := range p.segments {
		sb.WriteString(seg.String())
	}
	return sb.String()
}

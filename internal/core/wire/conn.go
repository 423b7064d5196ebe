package wire

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/multiformats/go-varint"
)

// Conn 在流上读写帧
//
// ReadFrame 与 WriteFrame 各自只能由一个 goroutine 调用。
type Conn struct {
	stream net.Conn
	r      *bufio.Reader
}

// NewConn 包装一条流
func NewConn(stream net.Conn) *Conn {
	return &Conn{stream: stream, r: bufio.NewReader(stream)}
}

// ReadFrame 读取下一帧
func (c *Conn) ReadFrame() (*Frame, error) {
	size, err := varint.ReadUvarint(c.r)
	if err != nil {
		return nil, err
	}
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, err
	}
	return Unmarshal(buf)
}

// WriteFrame 写入一帧
func (c *Conn) WriteFrame(f *Frame) error {
	body := f.Marshal()
	if len(body) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(body))
	}

	buf := append(varint.ToUvarint(uint64(len(body))), body...)
	_, err := c.stream.Write(buf)
	return err
}

// SetDeadline 设置读写截止时间
func (c *Conn) SetDeadline(t time.Time) error {
	return c.stream.SetDeadline(t)
}

// Close 关闭底层流
func (c *Conn) Close() error {
	return c.stream.Close()
}

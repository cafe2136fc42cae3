package tt_protobuf

import (
	"encoding/hex"
	"io"
)

// ProtobufEncoder protobuf wire格式编码器
type ProtobufEncoder struct {
	buf []byte
}

// NewProtobufEncoder 创建新的编码器
func NewProtobufEncoder() *ProtobufEncoder {
	return &ProtobufEncoder{buf: make([]byte, 0, 256)}
}

// Bytes 返回编码后的字节
func (e *ProtobufEncoder) Bytes() []byte {
	return e.buf
}

// Hex 返回编码后的16进制字符串
func (e *ProtobufEncoder) Hex() string {
	return hex.EncodeToString(e.buf)
}

// WriteVarint 写入varint
func (e *ProtobufEncoder) WriteVarint(v uint64) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|0x80)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
}

// WriteTag 写入字段标签
func (e *ProtobufEncoder) WriteTag(fieldNum uint32, wireType int) {
	e.WriteVarint(uint64(fieldNum)<<3 | uint64(wireType))
}

// WriteUint 写入varint字段。
// 注意：0也会写出——字段集合由调用方决定，空值不代表字段缺失。
func (e *ProtobufEncoder) WriteUint(fieldNum uint32, v uint64) {
	e.WriteTag(fieldNum, 0)
	e.WriteVarint(v)
}

// WriteString 写入string字段（空串写出长度0）
func (e *ProtobufEncoder) WriteString(fieldNum uint32, v string) {
	e.WriteTag(fieldNum, 2)
	e.WriteVarint(uint64(len(v)))
	e.buf = append(e.buf, v...)
}

// WriteBytes 写入bytes字段
func (e *ProtobufEncoder) WriteBytes(fieldNum uint32, v []byte) {
	e.WriteTag(fieldNum, 2)
	e.WriteVarint(uint64(len(v)))
	e.buf = append(e.buf, v...)
}

// WriteMessage 写入嵌套消息字段
func (e *ProtobufEncoder) WriteMessage(fieldNum uint32, v []byte) {
	e.WriteTag(fieldNum, 2)
	e.WriteVarint(uint64(len(v)))
	e.buf = append(e.buf, v...)
}

// ProtobufDecoder protobuf解码器（测试和调试用）
type ProtobufDecoder struct {
	buf []byte
	pos int
}

// NewProtobufDecoder 创建新的解码器
func NewProtobufDecoder(data []byte) *ProtobufDecoder {
	return &ProtobufDecoder{buf: data}
}

// ReadVarint 读取varint
func (d *ProtobufDecoder) ReadVarint() (uint64, error) {
	var v uint64
	var shift uint
	for {
		if d.pos >= len(d.buf) {
			return 0, io.ErrUnexpectedEOF
		}
		b := d.buf[d.pos]
		d.pos++
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			break
		}
		shift += 7
	}
	return v, nil
}

// ReadTag 读取字段标签
func (d *ProtobufDecoder) ReadTag() (uint32, int, error) {
	v, err := d.ReadVarint()
	if err != nil {
		return 0, 0, err
	}
	return uint32(v >> 3), int(v & 7), nil
}

// ReadBytes 读取length-delimited内容
func (d *ProtobufDecoder) ReadBytes() ([]byte, error) {
	length, err := d.ReadVarint()
	if err != nil {
		return nil, err
	}
	if d.pos+int(length) > len(d.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	b := d.buf[d.pos : d.pos+int(length)]
	d.pos += int(length)
	return b, nil
}

// HasMore 是否还有更多数据
func (d *ProtobufDecoder) HasMore() bool {
	return d.pos < len(d.buf)
}

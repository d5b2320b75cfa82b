package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// 火山引擎双向流式二进制帧：4 字节头 + 可选序号/事件 + 4 字节长度 + 负载。

// ProtocolVersion 二进制协议版本
const ProtocolVersion = 0b0001

// MessageType 帧类型
type MessageType uint8

const (
	FullClientRequest       MessageType = 0b0001
	FullServerResponse      MessageType = 0b1001
	AudioOnlyServerResponse MessageType = 0b1011
	ErrorMessage            MessageType = 0b1111
)

// MessageFlags 帧标志位，低两位描述序号，第三位表示携带事件
type MessageFlags uint8

const (
	NoSequenceNumber       MessageFlags = 0b0000
	PositiveSequenceNumber MessageFlags = 0b0001
	LastPacketNoSequence   MessageFlags = 0b0010
	NegativeSequenceNumber MessageFlags = 0b0011
	WithEvent              MessageFlags = 0b0100

	sequenceMask MessageFlags = 0b0011
)

// EventType 服务端事件
type EventType int32

const (
	EventTypeNone               EventType = 0
	EventTypeStartConnection    EventType = 1
	EventTypeFinishConnection   EventType = 2
	EventTypeConnectionStarted  EventType = 50
	EventTypeConnectionFailed   EventType = 51
	EventTypeConnectionFinished EventType = 52
	EventTypeSessionStarted     EventType = 150
	EventTypeSessionFinished    EventType = 152
	EventTypeSessionFailed      EventType = 153
)

// SerializationMethod 负载序列化方式
type SerializationMethod uint8

const (
	NoSerialization   SerializationMethod = 0b0000
	JSONSerialization SerializationMethod = 0b0001
)

// CompressionMethod 负载压缩方式
type CompressionMethod uint8

const (
	NoCompression   CompressionMethod = 0b0000
	GzipCompression CompressionMethod = 0b0001
)

// ErrUnsupportedVersion 表示帧头版本不是 ProtocolVersion。
var ErrUnsupportedVersion = errors.New("speech: unsupported protocol version")

// Header 帧头，每个字段占 4 bit（Reserved 占 8 bit）
type Header struct {
	ProtocolVersion     uint8
	HeaderSize          uint8 // 以 4 字节为单位
	MessageType         MessageType
	MessageFlags        MessageFlags
	SerializationMethod SerializationMethod
	CompressionMethod   CompressionMethod
	Reserved            uint8
}

// Message 一帧完整消息
type Message struct {
	Header      Header
	Sequence    int32
	EventType   EventType
	SessionID   string
	ConnectID   string
	ErrorCode   uint32
	PayloadSize uint32
	Payload     []byte
}

// NewHeader 创建 4 字节帧头
func NewHeader(msgType MessageType, flags MessageFlags, serialization SerializationMethod, compression CompressionMethod) Header {
	return Header{
		ProtocolVersion:     ProtocolVersion,
		HeaderSize:          1,
		MessageType:         msgType,
		MessageFlags:        flags,
		SerializationMethod: serialization,
		CompressionMethod:   compression,
	}
}

// Encode 按半字节拼装帧头
func (h Header) Encode() []byte {
	return []byte{
		h.ProtocolVersion<<4 | h.HeaderSize&0x0F,
		uint8(h.MessageType)<<4 | uint8(h.MessageFlags)&0x0F,
		uint8(h.SerializationMethod)<<4 | uint8(h.CompressionMethod)&0x0F,
		h.Reserved,
	}
}

// DecodeHeader 从前 4 字节解析帧头
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < 4 {
		return Header{}, fmt.Errorf("speech: header too short: %d bytes", len(data))
	}
	h := Header{
		ProtocolVersion:     data[0] >> 4,
		HeaderSize:          data[0] & 0x0F,
		MessageType:         MessageType(data[1] >> 4),
		MessageFlags:        MessageFlags(data[1] & 0x0F),
		SerializationMethod: SerializationMethod(data[2] >> 4),
		CompressionMethod:   CompressionMethod(data[2] & 0x0F),
		Reserved:            data[3],
	}
	if h.ProtocolVersion != ProtocolVersion {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.ProtocolVersion)
	}
	return h, nil
}

func (h Header) hasSequence() bool {
	switch h.MessageFlags & sequenceMask {
	case PositiveSequenceNumber, NegativeSequenceNumber:
		return true
	}
	return false
}

func (h Header) hasEvent() bool {
	return h.MessageFlags&WithEvent == WithEvent
}

// EncodeMessage 序列化整帧
func EncodeMessage(msg *Message) ([]byte, error) {
	if msg == nil {
		return nil, errors.New("speech: nil message")
	}
	var buf bytes.Buffer
	buf.Write(msg.Header.Encode())

	if msg.Header.hasSequence() {
		putUint32(&buf, uint32(msg.Sequence))
	}
	if msg.Header.hasEvent() {
		putUint32(&buf, uint32(msg.EventType))
		if !eventSkipsSessionID(msg.EventType) {
			putSized(&buf, []byte(msg.SessionID))
		}
		if eventHasConnectID(msg.EventType) {
			putSized(&buf, []byte(msg.ConnectID))
		}
	}
	if msg.Header.MessageType == ErrorMessage {
		putUint32(&buf, msg.ErrorCode)
	}
	putSized(&buf, msg.Payload)
	return buf.Bytes(), nil
}

// DecodeMessage 反序列化整帧
func DecodeMessage(r io.Reader) (*Message, error) {
	head := make([]byte, 4)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, fmt.Errorf("speech: read header: %w", err)
	}
	header, err := DecodeHeader(head)
	if err != nil {
		return nil, err
	}
	msg := &Message{Header: header}

	if extra := int(header.HeaderSize)*4 - 4; extra > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(extra)); err != nil {
			return nil, fmt.Errorf("speech: read extended header: %w", err)
		}
	}

	if header.hasSequence() {
		seq, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("speech: read sequence: %w", err)
		}
		msg.Sequence = int32(seq)
	}

	if header.hasEvent() {
		event, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("speech: read event: %w", err)
		}
		msg.EventType = EventType(int32(event))
		if !eventSkipsSessionID(msg.EventType) {
			session, err := readSized(r)
			if err != nil {
				return nil, fmt.Errorf("speech: read session id: %w", err)
			}
			msg.SessionID = string(session)
		}
		if eventHasConnectID(msg.EventType) {
			connect, err := readSized(r)
			if err != nil {
				return nil, fmt.Errorf("speech: read connect id: %w", err)
			}
			msg.ConnectID = string(connect)
		}
	}

	if header.MessageType == ErrorMessage {
		if msg.ErrorCode, err = readUint32(r); err != nil {
			return nil, fmt.Errorf("speech: read error code: %w", err)
		}
	}

	payload, err := readSized(r)
	if err != nil {
		return nil, fmt.Errorf("speech: read payload: %w", err)
	}
	msg.PayloadSize = uint32(len(payload))
	msg.Payload = payload
	return msg, nil
}

// CreateFullClientRequest 创建携带 JSON 参数的客户端请求帧
func CreateFullClientRequest(payload []byte, compression CompressionMethod) *Message {
	return &Message{
		Header:      NewHeader(FullClientRequest, NoSequenceNumber, JSONSerialization, compression),
		PayloadSize: uint32(len(payload)),
		Payload:     payload,
	}
}

// IsLastPacket 判断是否为最后一包
func (m *Message) IsLastPacket() bool {
	switch m.Header.MessageFlags & sequenceMask {
	case LastPacketNoSequence, NegativeSequenceNumber:
		return true
	}
	return false
}

// IsErrorMessage 判断是否为错误帧
func (m *Message) IsErrorMessage() bool {
	return m.Header.MessageType == ErrorMessage
}

func eventSkipsSessionID(event EventType) bool {
	switch event {
	case EventTypeStartConnection, EventTypeFinishConnection,
		EventTypeConnectionStarted, EventTypeConnectionFailed, EventTypeConnectionFinished:
		return true
	}
	return false
}

func eventHasConnectID(event EventType) bool {
	switch event {
	case EventTypeConnectionStarted, EventTypeConnectionFailed, EventTypeConnectionFinished:
		return true
	}
	return false
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putSized(buf *bytes.Buffer, data []byte) {
	putUint32(buf, uint32(len(data)))
	buf.Write(data)
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// maxFrameField 防止异常长度字段导致超大分配。
const maxFrameField = 64 << 20

func readSized(r io.Reader) ([]byte, error) {
	size, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	if size > maxFrameField {
		return nil, fmt.Errorf("field size %d exceeds limit", size)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("expected %d bytes: %w", size, err)
	}
	return data, nil
}

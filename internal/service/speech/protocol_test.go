package speech

import (
	"bytes"
	"errors"
	"testing"
)

func TestHeaderEncodeDecode(t *testing.T) {
	h := NewHeader(FullClientRequest, NoSequenceNumber, JSONSerialization, GzipCompression)
	raw := h.Encode()
	if !bytes.Equal(raw, []byte{0x11, 0x10, 0x11, 0x00}) {
		t.Fatalf("unexpected header bytes %x", raw)
	}
	decoded, err := DecodeHeader(raw)
	if err != nil {
		t.Fatalf("DecodeHeader returned error: %v", err)
	}
	if decoded != h {
		t.Fatalf("decoded header %+v, want %+v", decoded, h)
	}

	if _, err := DecodeHeader([]byte{0x21, 0x10, 0x11, 0x00}); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
	if _, err := DecodeHeader([]byte{0x11}); err == nil {
		t.Fatal("expected short header error")
	}
}

func TestEncodeDecodeMessageWithEvent(t *testing.T) {
	msg := &Message{
		Header:      NewHeader(FullServerResponse, WithEvent, JSONSerialization, NoCompression),
		EventType:   EventTypeSessionFinished,
		SessionID:   "abc",
		PayloadSize: 2,
		Payload:     []byte("{}"),
	}
	data, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage returned error: %v", err)
	}
	got, err := DecodeMessage(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeMessage returned error: %v", err)
	}
	if got.EventType != EventTypeSessionFinished || got.SessionID != "abc" || string(got.Payload) != "{}" {
		t.Fatalf("unexpected message %+v", got)
	}
}

func TestDecodeConnectionEventCarriesConnectID(t *testing.T) {
	msg := &Message{
		Header:    NewHeader(FullServerResponse, WithEvent, JSONSerialization, NoCompression),
		EventType: EventTypeConnectionFailed,
		ConnectID: "conn-1",
	}
	data, _ := EncodeMessage(msg)
	got, err := DecodeMessage(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeMessage returned error: %v", err)
	}
	if got.ConnectID != "conn-1" || got.SessionID != "" {
		t.Fatalf("unexpected ids session=%q connect=%q", got.SessionID, got.ConnectID)
	}
}

func TestDecodeSequenceAndLastPacket(t *testing.T) {
	msg := &Message{
		Header:   NewHeader(AudioOnlyServerResponse, NegativeSequenceNumber, NoSerialization, NoCompression),
		Sequence: -3,
		Payload:  []byte{1, 2, 3},
	}
	data, _ := EncodeMessage(msg)
	got, err := DecodeMessage(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeMessage returned error: %v", err)
	}
	if got.Sequence != -3 || !got.IsLastPacket() || got.PayloadSize != 3 {
		t.Fatalf("unexpected message %+v", got)
	}
}

func TestDecodeErrorMessage(t *testing.T) {
	msg := &Message{
		Header:    NewHeader(ErrorMessage, NoSequenceNumber, JSONSerialization, NoCompression),
		ErrorCode: 45000001,
		Payload:   []byte(`{"error":"bad"}`),
	}
	data, _ := EncodeMessage(msg)
	got, err := DecodeMessage(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeMessage returned error: %v", err)
	}
	if !got.IsErrorMessage() || got.ErrorCode != 45000001 || string(got.Payload) != `{"error":"bad"}` {
		t.Fatalf("unexpected error frame %+v", got)
	}
}

func TestDecodeTruncatedPayload(t *testing.T) {
	msg := CreateFullClientRequest([]byte("payload"), NoCompression)
	data, _ := EncodeMessage(msg)
	if _, err := DecodeMessage(bytes.NewReader(data[:len(data)-2])); err == nil {
		t.Fatal("expected truncated payload error")
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	input := []byte(`{"req_params":{"text":"hello"}}`)
	compressed, err := CompressPayload(input, GzipCompression)
	if err != nil {
		t.Fatalf("CompressPayload returned error: %v", err)
	}
	if bytes.Equal(compressed, input) {
		t.Fatal("expected gzip output to differ from input")
	}
	out, err := DecompressPayload(compressed, GzipCompression)
	if err != nil || !bytes.Equal(out, input) {
		t.Fatalf("round trip mismatch: %q, %v", out, err)
	}
	if _, err := CompressPayload(input, CompressionMethod(0b0111)); err == nil {
		t.Fatal("expected unsupported method error")
	}
}

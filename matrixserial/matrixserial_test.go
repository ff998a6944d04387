package matrixserial

import (
	"bytes"
	"testing"
)

func TestInitializeRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	want := InitializePacket{Rows: 4, Cols: 6}
	if err := WriteIncomingPacket(&buf, want); err != nil {
		t.Fatalf("failed to write initialize packet: %v", err)
	}

	p, err := ReadIncomingPacket(&buf, ReadContext{})
	if err != nil {
		t.Fatalf("failed to read initialize packet: %v", err)
	}

	got, ok := p.(InitializePacket)
	if !ok {
		t.Fatalf("expected InitializePacket, got %T", p)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestAckRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	want := AckPacket{IncomingPacketType: TypeSetPacket}
	if err := WriteOutgoingPacket(&buf, want); err != nil {
		t.Fatalf("failed to write ack packet: %v", err)
	}

	p, err := ReadOutgoingPacket(&buf, ReadContext{})
	if err != nil {
		t.Fatalf("failed to read ack packet: %v", err)
	}

	got, ok := p.(AckPacket)
	if !ok {
		t.Fatalf("expected AckPacket, got %T", p)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestKeyEventRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	want := KeyEventPacket{Row: 2, Col: 3, State: KeyStatePressed}
	if err := WriteOutgoingPacket(&buf, want); err != nil {
		t.Fatalf("failed to write key event: %v", err)
	}

	p, err := ReadOutgoingPacket(&buf, ReadContext{Rows: 4, Cols: 6})
	if err != nil {
		t.Fatalf("failed to read key event: %v", err)
	}

	got, ok := p.(KeyEventPacket)
	if !ok {
		t.Fatalf("expected KeyEventPacket, got %T", p)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSetPacketRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	ctx := ReadContext{Rows: 2, Cols: 2}
	pix := make([]uint8, 3*ctx.NumLEDs())
	for i := range pix {
		pix[i] = uint8(i * 7)
	}

	if err := WriteIncomingPacket(&buf, SetPacket{Pix: pix}); err != nil {
		t.Fatalf("failed to write set packet: %v", err)
	}

	p, err := ReadIncomingPacket(&buf, ctx)
	if err != nil {
		t.Fatalf("failed to read set packet: %v", err)
	}

	got, ok := p.(SetPacket)
	if !ok {
		t.Fatalf("expected SetPacket, got %T", p)
	}
	if !bytes.Equal(got.Pix, pix) {
		t.Errorf("pixel data mismatch: got %v, want %v", got.Pix, pix)
	}
}

func TestLogPacketMessage(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteOutgoingPacket(&buf, LogPacket{Message: "matrix ready"}); err != nil {
		t.Fatalf("failed to write log packet: %v", err)
	}

	p, err := ReadOutgoingPacket(&buf, ReadContext{})
	if err != nil {
		t.Fatalf("failed to read log packet: %v", err)
	}

	got, ok := p.(LogPacket)
	if !ok {
		t.Fatalf("expected LogPacket, got %T", p)
	}
	if got.Message != "matrix ready" {
		t.Errorf("got message %q", got.Message)
	}
}

func TestChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteOutgoingPacket(&buf, KeyEventPacket{Row: 1, Col: 1}); err != nil {
		t.Fatalf("failed to write packet: %v", err)
	}

	// Corrupt a payload byte; the packet type byte stays intact.
	raw := buf.Bytes()
	raw[1] ^= 0xff

	if _, err := ReadOutgoingPacket(bytes.NewReader(raw), ReadContext{}); err == nil {
		t.Error("expected a checksum error for a corrupted packet")
	}
}

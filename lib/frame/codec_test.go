// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func mustEncode(t *testing.T, payload []byte) []byte {
	t.Helper()
	data, err := Encode(payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}

func TestEncodeLayout(t *testing.T) {
	data := mustEncode(t, []byte("hello"))
	want := []byte{0, 0, 0, 5, 'h', 'e', 'l', 'l', 'o'}
	if !bytes.Equal(data, want) {
		t.Errorf("Encode = %x, want %x", data, want)
	}
}

func TestDecodeStreamRoundtrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x00},
		[]byte("quote.snapshot"),
		bytes.Repeat([]byte{0xAB}, 70000),
	}
	for _, payload := range payloads {
		frames, remainder, err := DecodeStream(mustEncode(t, payload))
		if err != nil {
			t.Fatalf("DecodeStream(%d bytes): %v", len(payload), err)
		}
		if len(frames) != 1 || !bytes.Equal(frames[0], payload) {
			t.Errorf("DecodeStream(%d bytes) frames = %d, want exactly the payload", len(payload), len(frames))
		}
		if len(remainder) != 0 {
			t.Errorf("remainder = %d bytes, want 0", len(remainder))
		}
	}
}

func TestDecodeStreamMultipleFrames(t *testing.T) {
	var buffer []byte
	buffer = append(buffer, mustEncode(t, []byte("first"))...)
	buffer = append(buffer, mustEncode(t, []byte("second"))...)
	buffer = append(buffer, mustEncode(t, []byte("third"))...)

	frames, remainder, err := DecodeStream(buffer)
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	for i, want := range []string{"first", "second", "third"} {
		if string(frames[i]) != want {
			t.Errorf("frame %d = %q, want %q", i, frames[i], want)
		}
	}
	if len(remainder) != 0 {
		t.Errorf("remainder = %x, want empty", remainder)
	}
}

func TestDecodeStreamPartialLengthPrefix(t *testing.T) {
	data := mustEncode(t, []byte("payload"))

	frames, remainder, err := DecodeStream(data[:3])
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	if len(frames) != 0 {
		t.Errorf("got %d frames from a split length prefix", len(frames))
	}
	if !bytes.Equal(remainder, data[:3]) {
		t.Errorf("remainder = %x, want %x", remainder, data[:3])
	}
}

func TestDecodeStreamPartialPayload(t *testing.T) {
	complete := mustEncode(t, []byte("done"))
	partial := mustEncode(t, []byte("pending"))
	buffer := append(append([]byte{}, complete...), partial[:7]...)

	frames, remainder, err := DecodeStream(buffer)
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	if len(frames) != 1 || string(frames[0]) != "done" {
		t.Fatalf("frames = %q, want [done]", frames)
	}
	if !bytes.Equal(remainder, partial[:7]) {
		t.Errorf("remainder = %x, want %x", remainder, partial[:7])
	}
}

func TestDecodeStreamFramesDoNotAliasBuffer(t *testing.T) {
	buffer := mustEncode(t, []byte("abc"))
	frames, _, _ := DecodeStream(buffer)
	buffer[HeaderLength] = 'z'
	if string(frames[0]) != "abc" {
		t.Errorf("frame changed to %q after mutating the buffer", frames[0])
	}
}

func TestDecodeStreamRejectsOversizedLength(t *testing.T) {
	buffer := mustEncode(t, []byte("ok"))
	buffer = binary.BigEndian.AppendUint32(buffer, MaxLength+1)

	frames, _, err := DecodeStream(buffer)
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("err = %v, want ErrFrameTooLarge", err)
	}
	if len(frames) != 1 {
		t.Errorf("frames before the violation = %d, want 1", len(frames))
	}
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	if _, err := Encode(make([]byte, MaxLength+1)); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("err = %v, want ErrFrameTooLarge", err)
	}
}

func TestWriteReadRoundtrip(t *testing.T) {
	var buffer bytes.Buffer
	for _, payload := range []string{"one", "", "three"} {
		if err := Write(&buffer, []byte(payload)); err != nil {
			t.Fatalf("Write(%q): %v", payload, err)
		}
	}

	for _, want := range []string{"one", "", "three"} {
		got, err := Read(&buffer)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if string(got) != want {
			t.Errorf("Read = %q, want %q", got, want)
		}
	}

	if _, err := Read(&buffer); err != io.EOF {
		t.Errorf("Read at end = %v, want io.EOF", err)
	}
}

func TestReadTruncatedPayload(t *testing.T) {
	data := mustEncode(t, []byte("truncated"))
	_, err := Read(bytes.NewReader(data[:6]))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v, want io.ErrUnexpectedEOF", err)
	}
}

func BenchmarkDecodeStream(b *testing.B) {
	var buffer []byte
	for range 64 {
		buffer, _ = Append(buffer, bytes.Repeat([]byte{0x42}, 256))
	}

	b.SetBytes(int64(len(buffer)))
	b.ReportAllocs()
	for b.Loop() {
		DecodeStream(buffer)
	}
}

// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderLength is the size of the length prefix.
const HeaderLength = 4

// MaxLength is the largest payload either side will encode or accept.
// A full order book snapshot is well under 1 MB; anything near this
// limit is a corrupted length prefix, not a real message.
const MaxLength = 16 * 1024 * 1024

// ErrFrameTooLarge is returned when a payload or a decoded length
// prefix exceeds MaxLength.
var ErrFrameTooLarge = errors.New("frame length exceeds maximum")

// Encode returns payload prefixed with its 4-byte big-endian length.
func Encode(payload []byte) ([]byte, error) {
	return Append(make([]byte, 0, HeaderLength+len(payload)), payload)
}

// Append appends the framed payload to dst and returns the extended
// slice.
func Append(dst, payload []byte) ([]byte, error) {
	if len(payload) > MaxLength {
		return dst, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(payload), MaxLength)
	}
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...), nil
}

// DecodeStream extracts every complete frame at the front of buffer.
// The remainder is the unconsumed tail (a partial length prefix or a
// partial payload) to be prepended to the next chunk. Returned frames
// are copies and never alias buffer.
//
// A length prefix above MaxLength stops decoding with ErrFrameTooLarge;
// the frames decoded before it are still returned.
func DecodeStream(buffer []byte) (frames [][]byte, remainder []byte, err error) {
	for len(buffer) >= HeaderLength {
		length := binary.BigEndian.Uint32(buffer[:HeaderLength])
		if length > MaxLength {
			return frames, buffer, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, length, MaxLength)
		}
		end := HeaderLength + int(length)
		if len(buffer) < end {
			break
		}
		payload := make([]byte, length)
		copy(payload, buffer[HeaderLength:end])
		frames = append(frames, payload)
		buffer = buffer[end:]
	}
	return frames, buffer, nil
}

// Write writes one framed payload to w in a single Write call so that
// concurrent writers on one connection cannot interleave a header with
// another frame's payload.
func Write(w io.Writer, payload []byte) error {
	data, err := Encode(payload)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Read reads one complete frame from r and returns its payload. A clean
// EOF before any header byte is returned as io.EOF; EOF inside a frame
// is io.ErrUnexpectedEOF.
func Read(r io.Reader) ([]byte, error) {
	var header [HeaderLength]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	length := binary.BigEndian.Uint32(header[:])
	if length > MaxLength {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, length, MaxLength)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read frame payload: %w", err)
	}
	return payload, nil
}

package sctp

import (
	"encoding/binary"
	"fmt"
)

// Common header layout, per spec.md §3: source port, destination port,
// verification tag, checksum - 12 bytes, all integers in this stack's
// fixed wire order (see DESIGN.md, Open Question 1: encoding/binary.
// LittleEndian throughout, including the checksum field).
const (
	commonHeaderSize = 12
	checksumOffset   = 8
)

// Packet is a single SCTP-shaped datagram payload: a common header plus
// zero or more chunks.
type Packet struct {
	SourcePort      uint16
	DestinationPort uint16
	VerificationTag uint32
	Chunks          []chunk
}

// Marshal serializes the packet, computing and patching in the CRC32C
// checksum over the full wire form with the checksum field treated as
// zero. Each chunk is padded to the next 4-byte boundary after its
// length-prefixed header and body are written, per spec.md §4.1.
func (p *Packet) Marshal() ([]byte, error) {
	raw := make([]byte, commonHeaderSize)
	binary.LittleEndian.PutUint16(raw[0:], p.SourcePort)
	binary.LittleEndian.PutUint16(raw[2:], p.DestinationPort)
	binary.LittleEndian.PutUint32(raw[4:], p.VerificationTag)
	// raw[8:12] (checksum) is patched once the full buffer is built.

	for _, c := range p.Chunks {
		chunkStart := len(raw)
		raw = append(raw, 0, 0, 0, 0) // reserve the 4-byte chunk header
		raw = append(raw, c.marshalValue()...)

		length := len(raw) - chunkStart
		raw[chunkStart] = byte(c.chunkType())
		raw[chunkStart+1] = c.flags()
		binary.LittleEndian.PutUint16(raw[chunkStart+2:], uint16(length))

		raw = append(raw, make([]byte, getPadding(length))...)
	}

	binary.LittleEndian.PutUint32(raw[checksumOffset:], checksum(raw))

	return raw, nil
}

// Unmarshal parses raw into a Packet. Any truncation - in the common
// header, a chunk header, or a chunk body - is a hard failure for the
// whole packet, per spec.md §4.1. The checksum is NOT verified here;
// callers verify separately (see Verify) so that codec round-tripping can
// be tested independently of integrity checking.
func Unmarshal(raw []byte) (*Packet, error) {
	if len(raw) < commonHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, %d required for common header", ErrTruncatedBuffer, len(raw), commonHeaderSize)
	}

	p := &Packet{
		SourcePort:      binary.LittleEndian.Uint16(raw[0:]),
		DestinationPort: binary.LittleEndian.Uint16(raw[2:]),
		VerificationTag: binary.LittleEndian.Uint32(raw[4:]),
	}

	offset := commonHeaderSize
	for offset < len(raw) {
		if offset+chunkHeaderSize > len(raw) {
			return nil, fmt.Errorf("%w: chunk header at offset %d needs %d more bytes", ErrTruncatedBuffer, offset, chunkHeaderSize)
		}

		typ := ChunkType(raw[offset])
		flags := raw[offset+1]
		length := int(binary.LittleEndian.Uint16(raw[offset+2:]))

		if length < chunkHeaderSize {
			return nil, fmt.Errorf("%w: chunk at offset %d has length %d shorter than header", ErrTruncatedBuffer, offset, length)
		}

		bodyStart := offset + chunkHeaderSize
		bodyEnd := offset + length
		if bodyEnd > len(raw) {
			return nil, fmt.Errorf("%w: chunk at offset %d claims length %d, only %d bytes remain", ErrTruncatedBuffer, offset, length, len(raw)-offset)
		}

		c := newChunkForType(typ)
		if c == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedChunkType, typ)
		}

		if err := c.unmarshalValue(flags, raw[bodyStart:bodyEnd]); err != nil {
			return nil, err
		}

		p.Chunks = append(p.Chunks, c)

		padding := getPadding(length)
		offset = bodyEnd + padding
		if offset > len(raw) {
			return nil, fmt.Errorf("%w: chunk at offset %d padding runs past end of buffer", ErrTruncatedBuffer, bodyEnd)
		}
	}

	return p, nil
}

// Verify reports whether raw's carried checksum matches the CRC32C
// recomputed over raw with the checksum field treated as zero.
func Verify(raw []byte) error {
	if len(raw) < commonHeaderSize {
		return fmt.Errorf("%w: %d bytes, %d required for common header", ErrTruncatedBuffer, len(raw), commonHeaderSize)
	}

	theirs := binary.LittleEndian.Uint32(raw[checksumOffset:])
	ours := checksum(raw)
	if theirs != ours {
		return fmt.Errorf("%w: wire=%#x computed=%#x", ErrChecksumMismatch, theirs, ours)
	}

	return nil
}

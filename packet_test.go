package sctp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMarshalUnmarshalRoundTrip checks spec.md §8 law 1 across every
// supported chunk type, including a multi-chunk packet.
func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	tt := []struct {
		name string
		pkt  *Packet
	}{
		{
			name: "init",
			pkt: &Packet{
				SourcePort: 1, DestinationPort: 2, VerificationTag: 0,
				Chunks: []chunk{&chunkInit{initCommon: initCommon{
					initiateTag: 111, advertisedReceiverWindowCredit: 65535,
					numOutboundStreams: 1, numInboundStreams: 1, initialTSN: 5000,
				}}},
			},
		},
		{
			name: "init_ack_with_optional_params",
			pkt: &Packet{
				SourcePort: 5000, DestinationPort: 9899, VerificationTag: 111,
				Chunks: []chunk{&chunkInitAck{initCommon: initCommon{
					initiateTag: 222, initialTSN: 6000,
					optionalParameters: []byte{0xde, 0xad, 0xbe}, // 3 bytes -> needs padding
				}}},
			},
		},
		{
			name: "cookie_echo",
			pkt: &Packet{
				SourcePort: 1, DestinationPort: 2, VerificationTag: 222,
				Chunks: []chunk{&chunkCookieEcho{cookie: []byte("opaque-cookie")}},
			},
		},
		{
			name: "cookie_ack_empty_body",
			pkt: &Packet{
				SourcePort: 1, DestinationPort: 2, VerificationTag: 222,
				Chunks: []chunk{&chunkCookieAck{}},
			},
		},
		{
			name: "data",
			pkt: &Packet{
				SourcePort: 1, DestinationPort: 2, VerificationTag: 222,
				Chunks: []chunk{&chunkData{
					tsn: 1001, streamIdentifier: 0, streamSeqNum: 0,
					payloadProtocolID: 0, userData: []byte("Hello from socket1!"),
				}},
			},
		},
		{
			name: "multiple_chunks_non_4_aligned",
			pkt: &Packet{
				SourcePort: 1, DestinationPort: 2, VerificationTag: 222,
				Chunks: []chunk{
					&chunkCookieEcho{cookie: []byte("abc")}, // 3-byte body, needs 1 pad byte
					&chunkData{tsn: 5, userData: []byte("xy")},
				},
			},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := tc.pkt.Marshal()
			require.NoError(t, err)

			// Every chunk must land on a 4-byte boundary (spec.md
			// invariant 5).
			assert.Zero(t, len(raw)%4)

			got, err := Unmarshal(raw)
			require.NoError(t, err)

			assert.Equal(t, tc.pkt.SourcePort, got.SourcePort)
			assert.Equal(t, tc.pkt.DestinationPort, got.DestinationPort)
			assert.Equal(t, tc.pkt.VerificationTag, got.VerificationTag)
			require.Len(t, got.Chunks, len(tc.pkt.Chunks))
			for i := range tc.pkt.Chunks {
				assert.Equal(t, tc.pkt.Chunks[i], got.Chunks[i])
			}
		})
	}
}

// TestUnmarshalIgnoresPaddingContent checks spec.md §8 law 7: padding
// bytes are decoded identically regardless of their content.
func TestUnmarshalIgnoresPaddingContent(t *testing.T) {
	pkt := &Packet{
		SourcePort: 1, DestinationPort: 2, VerificationTag: 0,
		Chunks: []chunk{&chunkCookieEcho{cookie: []byte("ab")}}, // 2-byte body -> 2 pad bytes
	}

	raw, err := pkt.Marshal()
	require.NoError(t, err)

	// Corrupt the padding bytes (non-zero). The checksum is left stale:
	// Unmarshal doesn't check checksums, so it still accepts the packet.
	last := len(raw) - 1
	raw[last] = 0xFF
	raw[last-1] = 0xAA

	got, err := Unmarshal(raw)
	require.NoError(t, err)
	require.Len(t, got.Chunks, 1)
	assert.Equal(t, []byte("ab"), got.Chunks[0].(*chunkCookieEcho).cookie)
}

func TestUnmarshalTruncatedCommonHeader(t *testing.T) {
	_, err := Unmarshal(make([]byte, commonHeaderSize-1))
	assert.ErrorIs(t, err, ErrTruncatedBuffer)
}

func TestUnmarshalTruncatedChunkHeader(t *testing.T) {
	raw := make([]byte, commonHeaderSize+2) // chunk header needs 4 bytes
	_, err := Unmarshal(raw)
	assert.ErrorIs(t, err, ErrTruncatedBuffer)
}

func TestUnmarshalTruncatedChunkBody(t *testing.T) {
	pkt := &Packet{Chunks: []chunk{&chunkData{tsn: 1, userData: []byte("payload")}}}
	raw, err := pkt.Marshal()
	require.NoError(t, err)

	_, err = Unmarshal(raw[:len(raw)-4])
	assert.ErrorIs(t, err, ErrTruncatedBuffer)
}

func TestUnmarshalUnsupportedChunkType(t *testing.T) {
	raw := make([]byte, commonHeaderSize+4)
	raw[commonHeaderSize] = byte(ctHeartbeat) // no registered body reader
	raw[commonHeaderSize+2] = chunkHeaderSize // length: header only, empty body

	_, err := Unmarshal(raw)
	assert.ErrorIs(t, err, ErrUnsupportedChunkType)
}

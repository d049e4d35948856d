package sctp

import (
	"sync"
	"testing"

	"github.com/pion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssociation() *Association {
	var mu sync.Mutex
	a := newAssociation(AssociationKey{Port: 9899}, &mu)
	a.State = Established
	a.LastPeerTSN = 999 // next expected is 1000

	return a
}

func testLogger() logging.LeveledLogger {
	return logging.NewDefaultLoggerFactory().NewLogger("sctp_test")
}

// TestHandleDataInOrder checks spec.md law 5: the expected next TSN is
// delivered immediately and advances LastPeerTSN.
func TestHandleDataInOrder(t *testing.T) {
	a := newTestAssociation()
	log := testLogger()

	handleData(a, &chunkData{tsn: 1000, userData: []byte("a")}, log)

	payload, ok := a.popULP()
	require.True(t, ok)
	assert.Equal(t, []byte("a"), payload)
	assert.Equal(t, uint32(1000), a.LastPeerTSN)
}

// TestHandleDataOutOfOrderReassembly checks spec.md law 6 / scenario S3:
// a chunk arriving ahead of schedule is buffered, not delivered, until the
// gap closes - at which point it and any further contiguous chunks behind
// it drain in TSN order.
func TestHandleDataOutOfOrderReassembly(t *testing.T) {
	a := newTestAssociation()
	log := testLogger()

	handleData(a, &chunkData{tsn: 1002, userData: []byte("c")}, log)
	_, ok := a.popULP()
	assert.False(t, ok, "tsn 1002 must not be delivered before 1000 and 1001")
	assert.Equal(t, uint32(999), a.LastPeerTSN)

	handleData(a, &chunkData{tsn: 1001, userData: []byte("b")}, log)
	_, ok = a.popULP()
	assert.False(t, ok, "tsn 1001 must not be delivered before 1000")

	handleData(a, &chunkData{tsn: 1000, userData: []byte("a")}, log)

	var delivered [][]byte
	for {
		payload, ok := a.popULP()
		if !ok {
			break
		}
		delivered = append(delivered, payload)
	}

	require.Len(t, delivered, 3)
	assert.Equal(t, []byte("a"), delivered[0])
	assert.Equal(t, []byte("b"), delivered[1])
	assert.Equal(t, []byte("c"), delivered[2])
	assert.Equal(t, uint32(1002), a.LastPeerTSN)
	assert.Empty(t, a.TSNOOOBuffer)
}

// TestHandleDataDuplicateDropped checks spec.md law 8 / scenario S4: a
// repeated TSN is dropped, not delivered twice.
func TestHandleDataDuplicateDropped(t *testing.T) {
	a := newTestAssociation()
	log := testLogger()

	handleData(a, &chunkData{tsn: 1000, userData: []byte("a")}, log)
	_, ok := a.popULP()
	require.True(t, ok)

	handleData(a, &chunkData{tsn: 1000, userData: []byte("a-again")}, log)
	_, ok = a.popULP()
	assert.False(t, ok, "a duplicate TSN must not be delivered")
	assert.Equal(t, uint32(1000), a.LastPeerTSN)
}

// TestBuildDataPacketAssignsIncreasingTSNs checks spec.md law that
// repeated sends from one association never reuse a TSN.
func TestBuildDataPacketAssignsIncreasingTSNs(t *testing.T) {
	a := newTestAssociation()
	a.NextTSN = 42

	p1 := buildDataPacket(a, 1, 2, []byte("x"))
	p2 := buildDataPacket(a, 1, 2, []byte("y"))

	tsn1 := p1.Chunks[0].(*chunkData).tsn
	tsn2 := p2.Chunks[0].(*chunkData).tsn

	assert.Equal(t, uint32(42), tsn1)
	assert.Equal(t, uint32(43), tsn2)
	assert.NotEqual(t, tsn1, tsn2)
}

package sctp

import "sync"

// deliverable pairs an outbound packet with the peer it's addressed to -
// the Deliverable{key, packet} shape from spec.md §4.6 /
// _examples/original_source/sctp_stack/sctp_socket.hpp.
type deliverable struct {
	key    AssociationKey
	packet *Packet
}

// sendQueue is the FIFO of outbound packets waiting for the event loop
// to drain them, one per loop turn (spec.md §4.6, §5: "Send-queue drain
// is FIFO across all destinations ... so a fast producer on one
// association does not starve another").
type sendQueue struct {
	mu    sync.Mutex
	items []deliverable
}

func newSendQueue() *sendQueue {
	return &sendQueue{}
}

func (q *sendQueue) push(key AssociationKey, packet *Packet) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, deliverable{key: key, packet: packet})
}

// pop removes and returns the head of the queue, if any.
func (q *sendQueue) pop() (deliverable, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return deliverable{}, false
	}

	d := q.items[0]
	q.items = q.items[1:]

	return d, true
}

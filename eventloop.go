package sctp

import (
	"errors"
	"net"
	"time"
)

// eventLoop is the single background task from spec.md §4.6: each turn
// it drains at most one outbound packet to the UDP socket, then attempts
// one non-blocking receive. It never sleeps between turns; non-blocking
// receive is realized with a short read deadline rather than an OS-level
// non-blocking socket flag, the standard Go idiom for this (see
// DESIGN.md).
func (s *Socket) eventLoop() {
	defer close(s.doneCh)

	buf := make([]byte, s.config.ReceiveBufferSize)

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		s.drainOneSend()
		s.receiveOne(buf)
	}
}

func (s *Socket) drainOneSend() {
	d, ok := s.sendQueue.pop()
	if !ok {
		return
	}

	raw, err := d.packet.Marshal()
	if err != nil {
		s.log.Errorf("failed to marshal outbound packet to %s: %s", d.key, err)
		return
	}

	if _, err := s.conn.WriteToUDP(raw, d.key.udpAddr()); err != nil {
		s.log.Warnf("failed to send to %s: %s", d.key, err)
		return
	}

	s.metrics.PacketsSent.Inc()
	s.metrics.BytesSent.Add(float64(payloadBytes(d.packet)))
}

func (s *Socket) receiveOne(buf []byte) {
	if err := s.conn.SetReadDeadline(time.Now().Add(s.config.PollInterval)); err != nil {
		s.log.Warnf("failed to set read deadline: %s", err)
		return
	}

	n, addr, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return
		}
		// A closed socket surfaces here too; the loop exits on the next
		// stopCh check.
		return
	}

	s.handleInbound(buf[:n], addr)
}

// handleInbound verifies, decodes, and dispatches one received datagram.
// Verification/decode failures are absorbed here per spec.md §7: the
// datagram is dropped and logged, the association (if any) is untouched.
func (s *Socket) handleInbound(raw []byte, addr *net.UDPAddr) {
	if err := Verify(raw); err != nil {
		s.metrics.ChecksumFailures.Inc()
		s.log.Debugf("dropping datagram from %s: %s", addr, err)
		return
	}

	pkt, err := Unmarshal(raw)
	if err != nil {
		if errors.Is(err, ErrUnsupportedChunkType) {
			s.metrics.UnsupportedChunks.Inc()
		}
		s.log.Debugf("dropping datagram from %s: %s", addr, err)
		return
	}

	s.metrics.PacketsReceived.Inc()

	key := NewAssociationKey(addr)
	for _, c := range pkt.Chunks {
		s.dispatchChunk(key, pkt, c)
	}
}

// dispatchChunk routes one chunk to its handler, holding the
// association table lock for the duration of the state transition
// (spec.md §5: "decide state transition under the association lock, drop
// it, then enqueue"), then enqueues any resulting outbound packet after
// releasing the lock.
func (s *Socket) dispatchChunk(key AssociationKey, pkt *Packet, c chunk) {
	var out *Packet

	s.table.mu.Lock()
	switch body := c.(type) {
	case *chunkInit:
		a, created := s.table.getOrCreateLocked(key)
		if created {
			s.metrics.AssociationsCreated.Inc()
		}
		out = handleInit(a, created, s.localPort(), pkt, body, s.log)

	case *chunkInitAck:
		if a, ok := s.table.associations[key]; ok {
			out = handleInitAck(a, pkt, body, s.log)
		}

	case *chunkCookieEcho:
		if a, ok := s.table.associations[key]; ok {
			wasEstablished := a.State == Established
			out = handleCookieEcho(a, pkt, s.log)
			if !wasEstablished && a.State == Established {
				s.metrics.AssociationsUp.Inc()
			}
		}

	case *chunkCookieAck:
		if a, ok := s.table.associations[key]; ok {
			wasEstablished := a.State == Established
			handleCookieAck(a, s.log)
			if !wasEstablished && a.State == Established {
				s.metrics.AssociationsUp.Inc()
			}
		}

	case *chunkData:
		if a, ok := s.table.associations[key]; ok {
			if a.State != Established {
				s.log.Debugf("[%s] unexpected DATA in state %s, dropping", key, a.State)
				break
			}
			handleData(a, body, s.log)
			s.metrics.BytesReceived.Add(float64(len(body.userData)))
		}
	}
	s.table.mu.Unlock()

	if out != nil {
		s.sendQueue.push(key, out)
	}
}

func payloadBytes(p *Packet) int {
	total := 0
	for _, c := range p.Chunks {
		if d, ok := c.(*chunkData); ok {
			total += len(d.userData)
		}
	}

	return total
}

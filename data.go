package sctp

import "github.com/pion/logging"

// buildDataPacket stamps the next TSN onto payload and constructs the
// outbound packet, per spec.md §4.5. Caller must hold the association
// table lock and must already have checked a.State == Established.
func buildDataPacket(a *Association, localPort, peerPort uint16, payload []byte) *Packet {
	tsn := a.NextTSN
	a.NextTSN++

	return &Packet{
		SourcePort:      localPort,
		DestinationPort: peerPort,
		VerificationTag: a.PeerVerTag,
		Chunks: []chunk{
			&chunkData{
				tsn:               tsn,
				streamIdentifier:  0,
				streamSeqNum:      0,
				payloadProtocolID: 0,
				userData:          payload,
			},
		},
	}
}

// handleData applies the inbound TSN triage from spec.md §4.5: deliver
// in-order chunks (draining any now-contiguous out-of-order chunks
// behind them), buffer chunks that arrive ahead of last_peer_tsn+1, and
// silently drop duplicates. TSN comparison is unsigned-wraparound-naive
// by design (not a goal at this budget).
//
// Caller must hold the association table lock.
func handleData(a *Association, d *chunkData, log logging.LeveledLogger) {
	n := a.LastPeerTSN

	switch {
	case d.tsn == n+1:
		a.pushULP(d.userData)
		a.LastPeerTSN = n + 1

		for {
			next := a.LastPeerTSN + 1
			payload, ok := a.TSNOOOBuffer[next]
			if !ok {
				break
			}

			a.pushULP(payload)
			delete(a.TSNOOOBuffer, next)
			a.LastPeerTSN = next
		}
	case d.tsn > n+1:
		a.TSNOOOBuffer[d.tsn] = d.userData
		log.Debugf("[%s] buffered out-of-order DATA tsn=%d (expected %d)", a.PrimaryPath, d.tsn, n+1)
	default:
		log.Debugf("[%s] dropped duplicate DATA tsn=%d (last_peer_tsn=%d)", a.PrimaryPath, d.tsn, n)
	}
}

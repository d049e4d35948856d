package sctp

import (
	"github.com/pion/logging"
	"github.com/pion/randutil"
)

// globalRandomGenerator produces the random 16-bit values spec.md §3
// calls for when seeding ThisVerTag and NextTSN - math-random, not
// crypto-random, matching the teacher's own choice (these values are not
// security-sensitive; cookie signing, where security would matter, is an
// explicit non-goal).
var globalRandomGenerator = randutil.NewMathRandomGenerator() //nolint:gochecknoglobals

func randomU16AsU32() uint32 {
	return globalRandomGenerator.Uint32() & 0xFFFF
}

// buildInit constructs the INIT packet sent when the local side calls
// Associate against a fresh association record, per spec.md §4.4's
// "(no record) / send associate(peer)" row.
func buildInit(a *Association, localPort, peerPort uint16) *Packet {
	return &Packet{
		SourcePort:      localPort,
		DestinationPort: peerPort,
		VerificationTag: 0,
		Chunks: []chunk{
			&chunkInit{initCommon: initCommon{
				initiateTag: a.ThisVerTag,
				initialTSN:  a.NextTSN,
			}},
		},
	}
}

// handleInit handles an inbound INIT chunk. If an association already
// exists for src, re-receipt of INIT is a no-op (spec.md invariant 1).
// Otherwise a fresh record is created in CookieWait and an INIT_ACK is
// returned for the event loop to enqueue.
//
// Caller must hold the association table's lock.
func handleInit(
	a *Association,
	created bool,
	localPort uint16,
	pkt *Packet,
	initChunk *chunkInit,
	log logging.LeveledLogger,
) *Packet {
	if !created {
		log.Debugf("[%s] duplicate INIT, already have an association", a.PrimaryPath)
		return nil
	}

	log.Debugf("[%s] INIT received, state=%s", a.PrimaryPath, a.State)

	a.PeerVerTag = initChunk.initiateTag
	a.LastPeerTSN = initChunk.initialTSN - 1

	return &Packet{
		SourcePort:      localPort,
		DestinationPort: pkt.SourcePort,
		VerificationTag: a.PeerVerTag,
		Chunks: []chunk{
			&chunkInitAck{initCommon: initCommon{
				initiateTag: a.ThisVerTag,
				initialTSN:  a.NextTSN,
			}},
		},
	}
}

// handleInitAck handles an inbound INIT_ACK chunk. Only valid from
// CookieWait; any other state silently discards it (spec.md §4.4,
// StateViolation in spec.md §7).
//
// Per spec.md §9's documented correctness gap (a), the outbound
// COOKIE_ECHO's verification tag is inherited from the received
// INIT_ACK packet's own header rather than freshly set to peer_ver_tag -
// kept as-is rather than "fixed", matching spec.md's instruction to
// preserve this pedagogical deviation.
func handleInitAck(a *Association, pkt *Packet, initAckChunk *chunkInitAck, log logging.LeveledLogger) *Packet {
	if a.State != CookieWait {
		log.Debugf("[%s] unexpected INIT_ACK in state %s, dropping", a.PrimaryPath, a.State)
		return nil
	}

	a.PeerVerTag = initAckChunk.initiateTag
	a.LastPeerTSN = initAckChunk.initialTSN - 1
	a.setState(CookieEchoed)

	log.Debugf("[%s] INIT_ACK received, sending COOKIE_ECHO", a.PrimaryPath)

	return &Packet{
		SourcePort:      pkt.DestinationPort,
		DestinationPort: pkt.SourcePort,
		VerificationTag: pkt.VerificationTag,
		Chunks:          []chunk{&chunkCookieEcho{}},
	}
}

// handleCookieEcho handles an inbound COOKIE_ECHO chunk. Only valid from
// CookieWait, per spec.md §4.4's transition table; anything else is a
// silent StateViolation drop, matching the original sctp_socket.cpp's
// handle_cookie_echo, which returns early unless the association's state
// is COOKIE_WAIT. Transitions to Established and replies with COOKIE_ACK.
func handleCookieEcho(a *Association, pkt *Packet, log logging.LeveledLogger) *Packet {
	if a.State != CookieWait {
		log.Debugf("[%s] unexpected COOKIE_ECHO in state %s, dropping", a.PrimaryPath, a.State)
		return nil
	}

	log.Debugf("[%s] COOKIE_ECHO received, state=%s", a.PrimaryPath, a.State)

	a.setState(Established)

	return &Packet{
		SourcePort:      pkt.DestinationPort,
		DestinationPort: pkt.SourcePort,
		VerificationTag: a.PeerVerTag,
		Chunks:          []chunk{&chunkCookieAck{}},
	}
}

// handleCookieAck handles an inbound COOKIE_ACK chunk. Only valid from
// CookieEchoed; anything else is a silent StateViolation drop.
func handleCookieAck(a *Association, log logging.LeveledLogger) {
	if a.State != CookieEchoed {
		log.Debugf("[%s] unexpected COOKIE_ACK in state %s, dropping", a.PrimaryPath, a.State)
		return
	}

	log.Debugf("[%s] COOKIE_ACK received, established", a.PrimaryPath)
	a.setState(Established)
}

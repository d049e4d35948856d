package sctp

import (
	"net"
	"sync"
)

// AssociationState mirrors the subset of the SCTP association state
// machine this core drives (spec.md §3). There is no CLOSED state here:
// an association record only exists once created by Associate or an
// inbound INIT, and is removed only on socket Close.
type AssociationState int

const (
	CookieWait AssociationState = iota
	CookieEchoed
	Established
	ShutdownPending
	ShutdownSent
	ShutdownReceived
	ShutdownAckSent
)

func (s AssociationState) String() string {
	switch s {
	case CookieWait:
		return "CookieWait"
	case CookieEchoed:
		return "CookieEchoed"
	case Established:
		return "Established"
	case ShutdownPending:
		return "ShutdownPending"
	case ShutdownSent:
		return "ShutdownSent"
	case ShutdownReceived:
		return "ShutdownReceived"
	case ShutdownAckSent:
		return "ShutdownAckSent"
	default:
		return "Unknown"
	}
}

// AssociationKey identifies a peer endpoint by IPv4 address and port -
// exactly spec.md §3's "(peer_ipv4, peer_port)", nothing else. It is a
// plain comparable struct so it works directly as a Go map key with no
// custom hash function needed (unlike the C++ original's
// Association_Hash, which has to hash the two fields by hand).
type AssociationKey struct {
	IP   [4]byte
	Port uint16
}

// NewAssociationKey builds a key from a *net.UDPAddr, truncating to the
// IPv4 4-byte form. Non-IPv4 addresses (e.g. IPv6) are not supported by
// this stack, matching spec.md's "peer_ipv4" field.
func NewAssociationKey(addr *net.UDPAddr) AssociationKey {
	var key AssociationKey
	if ip4 := addr.IP.To4(); ip4 != nil {
		copy(key.IP[:], ip4)
	}
	key.Port = uint16(addr.Port)

	return key
}

func (k AssociationKey) udpAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: net.IP(k.IP[:]), Port: int(k.Port)}
}

func (k AssociationKey) String() string {
	return k.udpAddr().String()
}

// Association is the per-peer record from spec.md §3. Fields marked
// "reserved" are carried for shape-compatibility with a fuller SCTP
// association record but are never read or written by this state machine
// - congestion control, multihoming and SACK are explicit non-goals.
// Association field access is guarded by the owning associationTable's
// single mutex (spec.md §4.3/§5), not a per-record lock - handlers in
// handshake.go and data.go are always called with that lock held.
type Association struct {
	PeerVerTag uint32
	ThisVerTag uint32
	State      AssociationState

	PrimaryPath AssociationKey

	NextTSN      uint32
	LastPeerTSN  uint32
	TSNOOOBuffer map[uint32][]byte

	ulpBuffer [][]byte

	// Reserved, unused by this core (see spec.md §3 and Non-goals).
	PeerAddressList []AssociationKey
	ErrorCount      uint16
	ErrorThreshold  uint16
	PeerRWND        uint32
	AckState        int
	InStreams       uint16
	OutStreams      uint16

	established *sync.Cond
}

// newAssociation creates a fresh record in CookieWait with a random
// ThisVerTag and NextTSN, per spec.md §3/§4.4 - both the local initiator
// (Associate) and the passive receiver of an out-of-the-blue INIT need
// these set before a handshake chunk referencing them can be built.
func newAssociation(key AssociationKey, tableLock *sync.Mutex) *Association {
	return &Association{
		PrimaryPath:  key,
		State:        CookieWait,
		ThisVerTag:   randomU16AsU32(),
		NextTSN:      randomU16AsU32(),
		TSNOOOBuffer: make(map[uint32][]byte),
		established:  sync.NewCond(tableLock),
	}
}

// setState transitions the association and wakes any goroutine blocked
// in awaitEstablished. Caller must hold the table lock (the sync.Cond is
// built against it, per DESIGN.md's condition-variable redesign of the
// spec'd 10ms poll).
func (a *Association) setState(s AssociationState) {
	a.State = s
	if s == Established {
		a.established.Broadcast()
	}
}

// pushULP appends a delivered payload to the tail of the ULP buffer.
func (a *Association) pushULP(payload []byte) {
	a.ulpBuffer = append(a.ulpBuffer, payload)
}

// popULP removes and returns the head of the ULP buffer, if any.
func (a *Association) popULP() ([]byte, bool) {
	if len(a.ulpBuffer) == 0 {
		return nil, false
	}

	payload := a.ulpBuffer[0]
	a.ulpBuffer = a.ulpBuffer[1:]

	return payload, true
}

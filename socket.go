package sctp

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pion/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
)

// defaultReceiveBufferSize is RWND from spec.md's glossary: the fixed
// receive-window byte budget, used here both as the value this stack
// would advertise and as the UDP read buffer size.
const defaultReceiveBufferSize = 65535

// defaultPollInterval bounds how long a single event-loop turn's
// ReadFromUDP call can block when nothing is pending, the Go idiom for
// the non-blocking socket spec.md §4.6 calls for.
const defaultPollInterval = 5 * time.Millisecond

// defaultAwaitPollSlice is unused directly (AwaitEstablishedAssociation
// uses a condition variable, not polling - see table.go), kept only as
// documentation of the external contract's origin: spec.md §4.7 described
// a 10ms poll, which DESIGN.md's "Polling await" redesign replaces.
const defaultAwaitPollSlice = 10 * time.Millisecond

// Config collects the construction-time arguments for a Socket, mirroring
// the teacher's sctp.Config passed to sctp.Client/sctp.Server, adapted
// from a per-stream config to a per-socket config since this core
// multiplexes many peer associations over one UDP endpoint.
type Config struct {
	// LoggerFactory builds the socket's leveled logger. Defaults to
	// logging.NewDefaultLoggerFactory() if nil.
	LoggerFactory logging.LoggerFactory

	// Registerer receives this socket's prometheus metrics. Left nil to
	// skip registration (metrics are still collected, just not exposed).
	Registerer prometheus.Registerer

	// ReceiveBufferSize bounds a single UDP read, defaulting to RWND
	// (65535) per spec.md's glossary.
	ReceiveBufferSize int

	// PollInterval bounds how long the event loop's non-blocking receive
	// can wait per turn before moving on. Defaults to 5ms.
	PollInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.LoggerFactory == nil {
		c.LoggerFactory = logging.NewDefaultLoggerFactory()
	}
	if c.ReceiveBufferSize == 0 {
		c.ReceiveBufferSize = defaultReceiveBufferSize
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultPollInterval
	}

	return c
}

// Socket is a bound UDP endpoint multiplexing many peer associations,
// exposing the API from spec.md §4.7. All public methods are safe to call
// concurrently with each other and with the running event loop.
type Socket struct {
	id     string
	config Config
	log    logging.LeveledLogger

	conn      *net.UDPConn
	localAddr *net.UDPAddr

	table     *associationTable
	sendQueue *sendQueue
	metrics   *Metrics

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSocket constructs an unbound Socket. Call Bind then Run before using
// the rest of the API.
func NewSocket(config Config) *Socket {
	config = config.withDefaults()
	id := xid.New().String()

	return &Socket{
		id:        id,
		config:    config,
		log:       config.LoggerFactory.NewLogger("sctp"),
		table:     newAssociationTable(),
		sendQueue: newSendQueue(),
		metrics:   NewMetrics(config.Registerer, prometheus.Labels{"socket_id": id}),
	}
}

// Bind binds the UDP socket to the given local endpoint.
func (s *Socket) Bind(ip string, port int) error {
	addr := &net.UDPAddr{IP: net.ParseIP(ip), Port: port}

	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return fmt.Errorf("%w: %s:%d: %s", ErrBind, ip, port, err)
	}

	s.conn = conn
	s.localAddr = conn.LocalAddr().(*net.UDPAddr) //nolint:forcetypeassert
	s.log.Debugf("[%s] bound to %s", s.id, s.localAddr)

	return nil
}

// Run puts the socket into its running state and starts the event loop.
// Calling Run on an already-running socket is a no-op.
func (s *Socket) Run() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.eventLoop()
	s.log.Debugf("[%s] event loop running", s.id)

	return nil
}

func (s *Socket) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

func (s *Socket) localPort() uint16 {
	if s.localAddr == nil {
		return 0
	}

	return uint16(s.localAddr.Port)
}

// Associate creates a fresh association record for (peerIP, peerPort) in
// CookieWait and enqueues the INIT chunk that starts the handshake, per
// spec.md §4.4's "(no record) / send associate(peer)" row. Fails with
// ErrNotRunning if Run has not been called yet.
func (s *Socket) Associate(peerIP string, peerPort int) (AssociationKey, error) {
	if !s.isRunning() {
		return AssociationKey{}, ErrNotRunning
	}

	key := AssociationKey{Port: uint16(peerPort)}
	if ip4 := net.ParseIP(peerIP).To4(); ip4 != nil {
		copy(key.IP[:], ip4)
	}

	a, created := s.table.getOrCreate(key)
	if !created {
		s.log.Debugf("[%s] Associate(%s) already has a record in state %s", s.id, key, a.State)
		return key, nil
	}

	s.metrics.AssociationsCreated.Inc()

	s.table.mu.Lock()
	pkt := buildInit(a, s.localPort(), key.Port)
	s.table.mu.Unlock()

	s.log.Debugf("[%s] associating with %s", s.id, key)
	s.sendQueue.push(key, pkt)

	return key, nil
}

// AwaitEstablishedAssociation blocks until the association at key
// reaches Established, or returns ErrTimeout once timeout elapses.
func (s *Socket) AwaitEstablishedAssociation(key AssociationKey, timeout time.Duration) error {
	return s.table.awaitEstablished(key, timeout)
}

// SendData enqueues payload as a single DATA chunk addressed to key. Per
// spec.md §4.5/§7, this silently does nothing if the association is
// missing or not yet Established - there is no error return, matching
// the "best-effort I/O contract" spec.md §7 calls for.
func (s *Socket) SendData(key AssociationKey, payload []byte) {
	s.table.mu.Lock()
	a, ok := s.table.associations[key]
	if !ok || a.State != Established {
		s.table.mu.Unlock()
		return
	}

	pkt := buildDataPacket(a, s.localPort(), key.Port, payload)
	s.table.mu.Unlock()

	s.sendQueue.push(key, pkt)
}

// RecvData scans established associations for the first one with a
// non-empty delivery buffer, pops its head payload into buf, and returns
// the number of bytes copied and the association it came from. Returns
// (0, zero-key, false) if no payload is available anywhere.
func (s *Socket) RecvData(buf []byte) (int, AssociationKey, bool) {
	s.table.mu.Lock()
	defer s.table.mu.Unlock()

	for key, a := range s.table.associations {
		if a.State != Established {
			continue
		}

		payload, ok := a.popULP()
		if !ok {
			continue
		}

		n := copy(buf, payload)

		return n, key, true
	}

	return 0, AssociationKey{}, false
}

// RecvDataFrom is RecvData restricted to a single named association.
// Returns 0 if the association is missing, not Established, or has an
// empty delivery buffer.
func (s *Socket) RecvDataFrom(key AssociationKey, buf []byte) int {
	s.table.mu.Lock()
	defer s.table.mu.Unlock()

	a, ok := s.table.associations[key]
	if !ok || a.State != Established {
		return 0
	}

	payload, ok := a.popULP()
	if !ok {
		return 0
	}

	return copy(buf, payload)
}

// ThisAssociationKey returns the local bound endpoint as an
// AssociationKey, for callers in the same process that want to address
// this socket from elsewhere (e.g. a peer dialing back).
func (s *Socket) ThisAssociationKey() AssociationKey {
	if s.localAddr == nil {
		return AssociationKey{}
	}

	return NewAssociationKey(s.localAddr)
}

// Close stops the event loop and closes the UDP socket. In-flight
// datagrams still in the send queue at teardown are discarded - there is
// no graceful shutdown handshake (spec.md §5).
func (s *Socket) Close() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	<-s.doneCh

	if s.conn != nil {
		return s.conn.Close()
	}

	return nil
}

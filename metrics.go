package sctp

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the operational surface of a Socket, in the same spirit as
// the TCP socket-statistics exporters in the retrieval pack
// (runZeroInc-sockstats, runZeroInc-conniver): counters an operator would
// scrape to see packet/association/error rates for this transport core,
// rather than anything the protocol itself reads back.
type Metrics struct {
	PacketsSent         prometheus.Counter
	PacketsReceived     prometheus.Counter
	BytesSent           prometheus.Counter
	BytesReceived       prometheus.Counter
	ChecksumFailures    prometheus.Counter
	UnsupportedChunks   prometheus.Counter
	AssociationsCreated prometheus.Counter
	AssociationsUp      prometheus.Counter
}

// NewMetrics builds a Metrics instance registered under reg with the
// given constant labels (typically {"socket_id": socket's xid}). reg may
// be nil, in which case the counters are created but never registered -
// useful for tests that don't want a global registry side effect.
func NewMetrics(reg prometheus.Registerer, constLabels prometheus.Labels) *Metrics {
	factory := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "sctp",
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
		if reg != nil {
			reg.MustRegister(c)
		}

		return c
	}

	return &Metrics{
		PacketsSent:         factory("packets_sent_total", "UDP datagrams sent by the event loop."),
		PacketsReceived:     factory("packets_received_total", "UDP datagrams received and accepted by the event loop."),
		BytesSent:           factory("bytes_sent_total", "Payload bytes sent across all DATA chunks."),
		BytesReceived:       factory("bytes_received_total", "Payload bytes received in DATA chunks on Established associations, duplicates included."),
		ChecksumFailures:    factory("checksum_failures_total", "Datagrams dropped for failing CRC32C verification."),
		UnsupportedChunks:   factory("unsupported_chunks_total", "Datagrams dropped for containing an undecodable chunk type."),
		AssociationsCreated: factory("associations_created_total", "Association records created, either by Associate or an inbound INIT."),
		AssociationsUp:      factory("associations_established_total", "Associations that completed the handshake and reached Established."),
	}
}

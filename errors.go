package sctp

import "errors"

// Setup and protocol errors surfaced to callers. Wire-level failures
// (truncated buffers, unsupported chunk types, checksum mismatches, state
// violations) are logged and absorbed by the event loop instead of being
// returned here - see eventloop.go and handshake.go.
var (
	// ErrBind is returned when the OS rejects binding the UDP socket.
	ErrBind = errors.New("sctp: bind failed")

	// ErrSocketCreate names the socket-creation failure category. Bind
	// creates and binds the UDP socket in one net.ListenUDP call and
	// reports any failure of it as ErrBind, so no function in this
	// package returns ErrSocketCreate.
	ErrSocketCreate = errors.New("sctp: socket create failed")

	// ErrNotRunning is returned by Associate when called before Run.
	ErrNotRunning = errors.New("sctp: socket is not running")

	// ErrTimeout is returned by AwaitEstablishedAssociation once the
	// timeout elapses without the association reaching Established.
	ErrTimeout = errors.New("sctp: timed out waiting for association")

	// ErrTruncatedBuffer is returned by Unmarshal when the input ends
	// before a header or body it promised is fully present.
	ErrTruncatedBuffer = errors.New("sctp: truncated buffer")

	// ErrUnsupportedChunkType is returned by Unmarshal when a chunk type
	// has no registered body reader.
	ErrUnsupportedChunkType = errors.New("sctp: unsupported chunk type")

	// ErrChecksumMismatch is returned by Verify when the recomputed
	// CRC32C does not match the checksum carried on the wire.
	ErrChecksumMismatch = errors.New("sctp: checksum mismatch")
)

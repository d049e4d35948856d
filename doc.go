// Package sctp implements a userspace, SCTP-shaped transport tunneled over
// UDP datagrams: packet/chunk codec, CRC32C integrity, a per-peer
// association state machine (a four-chunk handshake loosely modeled on
// INIT/INIT-ACK/COOKIE-ECHO/COOKIE-ACK), reliable in-order delivery with
// out-of-order reassembly, and the single-threaded event loop that drives
// all of it.
//
// This is not RFC 4960 SCTP and does not interoperate with it: there is no
// congestion control, no SACK, no heartbeating, no multihoming failover,
// and no cryptographically signed cookie. It is a deliberately small
// transport core meant to sit underneath a request/response layer of its
// own (not included in this package).
package sctp

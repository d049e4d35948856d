package sctp

import "hash/crc32"

// castagnoliTable is the CRC32C lookup table, built once lazily by
// hash/crc32 itself - the polynomial (0x1EDC6F41, reflected), initial
// value and final XOR spec.md §4.2 calls for are exactly what
// crc32.Castagnoli implements.
var castagnoliTable = crc32.MakeTable(crc32.Castagnoli) //nolint:gochecknoglobals

// fourZeroes stands in for the checksum field while folding the CRC, so
// the checksum is computed against the packet "as if" bytes [8:12) were
// zero without ever allocating a scratch copy of the buffer.
var fourZeroes [4]byte //nolint:gochecknoglobals

// checksum computes the CRC32C of raw as if the 4 bytes at checksumOffset
// were zero. raw must be at least checksumOffset+4 bytes.
func checksum(raw []byte) uint32 {
	sum := crc32.Update(0, castagnoliTable, raw[0:checksumOffset])
	sum = crc32.Update(sum, castagnoliTable, fourZeroes[:])
	sum = crc32.Update(sum, castagnoliTable, raw[checksumOffset+4:])

	return sum
}

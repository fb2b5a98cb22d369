// Package rle implements Parquet's RLE/bit-packed hybrid encoding
// (spec.md §4.4, §6) for repetition and definition level streams: a
// varint-prefixed sequence of runs, each either a run-length-encoded
// repeated value or a bit-packed group of distinct values.
//
// https://github.com/apache/parquet-format/blob/master/Encodings.md#run-length-encoding--bit-packing-hybrid-rle--3
package rle

import "encoding/binary"

// appendUvarint appends u to dst using the standard library's LEB128
// varint encoder — 7 data bits per byte, high bit set while more bytes
// follow.
func appendUvarint(dst []byte, u uint64) []byte {
	var b [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(b[:], u)
	return append(dst, b[:n]...)
}

// readUvarint reads a varint from the front of src, returning the value
// and the number of bytes consumed, or n == 0 if src held no complete
// varint.
func readUvarint(src []byte) (uint64, int) {
	return binary.Uvarint(src)
}

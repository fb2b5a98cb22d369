package rle

// byteWidth is the number of bytes needed to hold a bitWidth-bit value,
// matching the Parquet spec's ceil(bit_width / 8) rule for the RLE run's
// fixed-width payload.
func byteWidth(bitWidth uint) int {
	return int((bitWidth + 7) / 8)
}

// appendFixedWidth appends v to dst as a byteWidth-byte little-endian
// integer, low byte first (spec.md §4.4).
func appendFixedWidth(dst []byte, v uint64, width int) []byte {
	for i := 0; i < width; i++ {
		dst = append(dst, byte(v))
		v >>= 8
	}
	return dst
}

// readFixedWidth reads a width-byte little-endian integer from the front
// of src.
func readFixedWidth(src []byte, width int) uint64 {
	var v uint64
	for i := 0; i < width && i < len(src); i++ {
		v |= uint64(src[i]) << (8 * uint(i))
	}
	return v
}

package rle

import "encoding/binary"

// minRunLength is the run length, in values, at which the encoder prefers
// RLE over bit-packing: the smallest whole number of 8-value bit-packed
// groups G for which G's bit-packed cost (G*bitWidth bytes,
// bitPackedByteCount) exceeds the RLE cost of storing that same run as one
// fixed-width value (byteWidth(bitWidth) bytes, independent of run
// length) — spec.md §4.4's "smallest run for which an RLE encoding is
// shorter than bit-packing". A wide bitWidth (e.g. 32) makes even a
// single bit-packed group far pricier than one fixed-width value, so the
// threshold floors at 8 (one group); a narrow bitWidth (e.g. 1) needs
// several groups before RLE wins, so the threshold grows with it.
func minRunLength(bitWidth uint) int {
	if bitWidth == 0 {
		return 8
	}
	groups := uint(byteWidth(bitWidth))/bitWidth + 1
	return int(groups) * 8
}

// Encode writes values (a repetition- or definition-level stream) as a
// length-prefixed RLE/bit-packed hybrid run sequence (spec.md §4.4): a
// 4-byte little-endian byte count, followed by the runs themselves. Width
// 0 means every value is zero; Encode still emits header-only runs (an RLE
// run for 8 or more values, a bit-packed run for fewer) so Decode's shape
// stays uniform — callers that know bitWidth is 0 for a
// whole stream should skip calling Encode at all and omit the stream, per
// spec.md §6.
func Encode(values []int, bitWidth int) []byte {
	body := encodeRuns(values, uint(bitWidth))
	out := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint32(out, uint32(len(body)))
	return append(out, body...)
}

// Decode reads count values encoded by Encode at the given bitWidth from
// the front of src.
func Decode(src []byte, count int, bitWidth int) ([]int, error) {
	if len(src) < 4 {
		return nil, errShortInput("length prefix")
	}
	n := binary.LittleEndian.Uint32(src)
	src = src[4:]
	if uint32(len(src)) < n {
		return nil, errShortInput("run body")
	}
	return decodeRuns(src[:n], count, uint(bitWidth))
}

func encodeRuns(values []int, bitWidth uint) []byte {
	var dst []byte
	width := byteWidth(bitWidth)
	minRun := minRunLength(bitWidth)

	i := 0
	for i < len(values) {
		j := i + 1
		for j < len(values) && values[j] == values[i] {
			j++
		}
		if j-i >= minRun {
			dst = appendUvarint(dst, uint64(j-i)<<1)
			dst = appendFixedWidth(dst, uint64(values[i]), width)
			i = j
			continue
		}

		start := i
		k := i
		for k < len(values) {
			m := k + 1
			for m < len(values) && values[m] == values[k] {
				m++
			}
			if m-k >= minRun {
				break
			}
			k = m
		}

		chunk := values[start:k]
		groups := (len(chunk) + 7) / 8
		padded := make([]int, groups*8)
		copy(padded, chunk)

		dst = appendUvarint(dst, uint64(groups)<<1|1)
		dst = packBits(dst, padded, bitWidth)
		i = k
	}

	return dst
}

func decodeRuns(src []byte, count int, bitWidth uint) ([]int, error) {
	out := make([]int, 0, count)
	width := byteWidth(bitWidth)

	for len(out) < count {
		if len(src) == 0 {
			return nil, errShortInput("run header")
		}
		header, n := readUvarint(src)
		if n == 0 {
			return nil, errShortInput("run header")
		}
		src = src[n:]

		runLen, bitPacked := int(header>>1), header&1 != 0
		if !bitPacked {
			if len(src) < width {
				return nil, errShortInput("RLE run value")
			}
			value := int(readFixedWidth(src, width))
			src = src[width:]
			for i := 0; i < runLen && len(out) < count; i++ {
				out = append(out, value)
			}
		} else {
			nbytes := bitPackedByteCount(runLen, bitWidth)
			if len(src) < nbytes {
				return nil, errShortInput("bit-packed run")
			}
			values := unpackBits(src[:nbytes], runLen*8, bitWidth)
			src = src[nbytes:]
			for _, v := range values {
				if len(out) >= count {
					break
				}
				out = append(out, v)
			}
		}
	}

	return out, nil
}

type decodeError struct{ what string }

func (e *decodeError) Error() string { return "rle: truncated input: " + e.what }

func errShortInput(what string) error { return &decodeError{what: what} }

// BitWidth returns the number of bits needed to represent every value in
// [0, maxValue], the width the level streams are packed at (spec.md §6):
// ceil(log2(maxValue+1)), and 0 when maxValue is 0 (the stream can then be
// omitted entirely, since every value would be 0).
func BitWidth(maxValue int) int {
	width := 0
	for (1 << uint(width)) <= maxValue {
		width++
	}
	return width
}

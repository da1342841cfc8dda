// Package sourcemap provides Source Map v3 generation for transformed
// JavaScript modules.
//
// It implements the format specified at https://sourcemaps.info/spec.html:
// segments are base64 VLQ encoded, fields are deltas against the previous
// segment, and generated columns reset on every line.
package sourcemap

import (
	"github.com/cockroachdb/errors"
)

// ErrInvalidVLQ is returned when a mappings string cannot be decoded.
var ErrInvalidVLQ = errors.New("invalid VLQ data")

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// base64Values maps an ASCII byte to its 6-bit value, or -1.
var base64Values [128]int8

func init() {
	for i := range base64Values {
		base64Values[i] = -1
	}
	for i := 0; i < len(base64Alphabet); i++ {
		base64Values[base64Alphabet[i]] = int8(i)
	}
}

const (
	vlqShift        = 5
	vlqMask         = 1<<vlqShift - 1 // 0x1F
	vlqContinuation = 1 << vlqShift   // 0x20
)

// AppendVLQ appends the VLQ encoding of value to dst.
func AppendVLQ(dst []byte, value int) []byte {
	// The sign lives in the lowest bit
	var v uint64
	if value < 0 {
		v = uint64(-value)<<1 | 1
	} else {
		v = uint64(value) << 1
	}
	for {
		digit := v & vlqMask
		v >>= vlqShift
		if v != 0 {
			digit |= vlqContinuation
		}
		dst = append(dst, base64Alphabet[digit])
		if v == 0 {
			return dst
		}
	}
}

// EncodeVLQ encodes a signed integer as a VLQ base64 string.
func EncodeVLQ(value int) string {
	return string(AppendVLQ(make([]byte, 0, 8), value))
}

// DecodeVLQ decodes one VLQ value from the start of input. It returns the
// value and the number of bytes consumed; consumed is 0 when input is
// empty, truncated, or contains a non-base64 byte.
func DecodeVLQ(input string) (value int, consumed int) {
	var v uint64
	var shift uint
	for i := 0; i < len(input); i++ {
		c := input[i]
		if c >= 128 || base64Values[c] < 0 || shift > 60 {
			return 0, 0
		}
		digit := uint64(base64Values[c])
		v |= (digit & vlqMask) << shift
		shift += vlqShift
		if digit&vlqContinuation == 0 {
			n := int(v >> 1)
			if v&1 != 0 {
				n = -n
			}
			return n, i + 1
		}
	}
	return 0, 0
}

// decodeSegment decodes every VLQ value of a single mappings segment.
func decodeSegment(segment string) ([]int, error) {
	values := make([]int, 0, 5)
	for pos := 0; pos < len(segment); {
		value, n := DecodeVLQ(segment[pos:])
		if n == 0 {
			return nil, errors.Wrapf(ErrInvalidVLQ, "segment %q", segment)
		}
		values = append(values, value)
		pos += n
	}
	switch len(values) {
	case 1, 4, 5:
		return values, nil
	}
	return nil, errors.Wrapf(ErrInvalidVLQ, "segment %q has %d fields", segment, len(values))
}

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpcore

// crlf is the two-byte line terminator chunk headers and chunk payloads are
// delimited by.
var crlf = []byte{'\r', '\n'}

// crlfcrlf is the four-byte header/body boundary.
var crlfcrlf = []byte{'\r', '\n', '\r', '\n'}

// RemoveBlock shifts buf[offset+length:] left by length bytes and returns
// the shortened slice, reusing buf's backing array. It is an in-place
// memmove: length must be > 0 and offset+length must be <= len(buf).
func RemoveBlock(buf []byte, offset, length int) []byte {
	if length <= 0 || offset < 0 || offset+length > len(buf) {
		panic("httpcore: RemoveBlock out of range")
	}
	n := copy(buf[offset:], buf[offset+length:])
	return buf[:offset+n]
}

// SubstringIndex returns the smallest i such that haystack[i:i+len(needle)]
// equals needle, or -1 if needle does not occur in haystack. It operates on
// raw bytes, independent of text encoding.
func SubstringIndex(haystack, needle []byte) int {
	if len(needle) == 0 {
		return 0
	}
	if len(needle) > len(haystack) {
		return -1
	}
	first := needle[0]
	limit := len(haystack) - len(needle)
	for i := 0; i <= limit; i++ {
		if haystack[i] != first {
			continue
		}
		if matches(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func matches(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// HexDecode parses the longest leading run of case-insensitive hex digits in
// buf, most-significant digit first, with no sign and no 0x prefix. It
// returns the parsed value and the number of digits consumed; a digit count
// of zero means buf does not start with a hex digit. Any non-hex byte
// terminates the run without being an error — the caller is expected to
// validate what follows (e.g. the CRLF after a chunk size).
func HexDecode(buf []byte) (value int64, digits int) {
	for digits < len(buf) {
		d, ok := hexVal(buf[digits])
		if !ok {
			break
		}
		value = value<<4 | int64(d)
		digits++
	}
	return value, digits
}

func hexVal(b byte) (int, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), true
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10, true
	default:
		return 0, false
	}
}

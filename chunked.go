// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpcore

// decodeChunkFraming runs one decode pass of the HTTP chunked transfer
// encoding decoder, operating in place on *buf.
//
// cursor.idx is the write-cursor of collapsed payload: the prefix of *buf
// that is pure body bytes ready for delivery. cursor.len is the remaining
// byte count of the current chunk whose size line has already been
// consumed but whose payload has not yet fully arrived.
//
// It loops, each iteration either consuming one chunk header (advancing
// cursor.idx by the previous chunk's length and setting cursor.len to the
// next chunk's declared size) or stopping because more bytes are needed.
// zeroReached reports whether the terminating zero-length chunk has been
// fully consumed. err is non-nil only for ErrMalformedChunkSize; any other
// incompleteness is reported by returning with no progress so the caller
// waits for more bytes.
//
// The full CRLF-terminated header line is located before its hex digits
// are parsed, for every chunk. Parsing hex digits against a header that
// hasn't fully arrived would otherwise treat a truncated digit run as the
// final size — the boundary case of a chunk-size line split across two
// reads.
func decodeChunkFraming(buf *[]byte, cursor *chunkCursor) (zeroReached bool, err error) {
	for {
		pos := cursor.idx + cursor.len
		if len(*buf)-pos < 5 {
			return false, nil
		}
		headerStart := pos
		if cursor.len > 0 {
			if (*buf)[pos] != '\r' || (*buf)[pos+1] != '\n' {
				// Payload-trailing CRLF not yet arrived (or malformed; the
				// decoder is permissive here and simply waits for more bytes).
				return false, nil
			}
			headerStart = pos + 2
		} else if (*buf)[pos] == '\r' && (*buf)[pos+1] == '\n' {
			// A body with no data chunks is the bare "\r\n0\r\n" terminator.
			headerStart = pos + 2
		}

		// The size line's own CRLF must be confirmed present before either
		// CRLF is removed from *buf. Removing the payload-trailing CRLF
		// first and only then discovering the size line is incomplete would
		// leave *buf mutated but cursor unadvanced, so the next call would
		// re-enter here with cursor.len unchanged and misread whatever now
		// sits at pos — stalling forever on a legitimate split.
		lineBreak := SubstringIndex((*buf)[headerStart:], crlf)
		if lineBreak < 0 {
			return false, nil
		}
		size, digits := HexDecode((*buf)[headerStart : headerStart+lineBreak])
		if digits == 0 {
			return false, ErrMalformedChunkSize
		}

		if headerStart > pos {
			*buf = RemoveBlock(*buf, pos, 2)
		}
		headerWidth := lineBreak + 2 // hex digits + optional extensions + CRLF
		cursor.idx = pos
		*buf = RemoveBlock(*buf, pos, headerWidth)
		cursor.len = int(size)

		if size == 0 {
			// The zero-size chunk's header line ("0\r\n", already removed
			// above as part of headerWidth) is the complete terminator: the
			// wire terminator is literally "\r\n0\r\n" with nothing following
			// it, so a body ending in "...pedia\r\n0\r\n" carries no trailing
			// CRLF after the zero chunk. Trailers, if any, are not parsed.
			return true, nil
		}
	}
}

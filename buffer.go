package parquetclip

import "fmt"

// sizedWriter is a sequential byte sink over a caller-supplied, exactly-sized
// buffer. Writing past the end means the size accounting is corrupt, which is
// a programming error and not recoverable, so it panics instead of returning
// an error.
type sizedWriter struct {
	buf []byte
	pos int64
}

func newSizedWriter(buf []byte) *sizedWriter {
	return &sizedWriter{buf: buf}
}

func (w *sizedWriter) Write(p []byte) (int, error) {
	if w.pos+int64(len(p)) > int64(len(w.buf)) {
		panic(fmt.Sprintf("parquetclip: write of %d bytes at offset %d exceeds buffer capacity %d", len(p), w.pos, len(w.buf)))
	}
	n := copy(w.buf[w.pos:], p)
	w.pos += int64(n)
	return n, nil
}

func (w *sizedWriter) Pos() int64 {
	return w.pos
}

func (w *sizedWriter) Bytes() []byte {
	return w.buf
}

// countingWriter counts bytes without storing them. It backs the footer
// dry run that measures the encoded footer length before allocation.
type countingWriter struct {
	pos int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.pos += int64(len(p))
	return len(p), nil
}

func (w *countingWriter) Pos() int64 {
	return w.pos
}

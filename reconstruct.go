package parquetclip

import (
	"context"
	"fmt"
	"io"

	"github.com/fraugster/parquet-go/parquet"
)

// OutputSize returns the exact byte size of the file Reconstruct will
// produce for this layout: leading magic, the retained chunk bytes, the
// encoded footer, the footer length field and the trailing magic. The footer
// length is measured by a dry-run serialization with the final, relocated
// offsets into a counting sink, so the result is exact, not an upper bound.
func (l *ClippedLayout) OutputSize(ctx context.Context) (int64, error) {
	relocated, err := relocateRowGroups(ctx, l.rowGroups)
	if err != nil {
		return 0, err
	}
	return l.outputSize(ctx, relocated)
}

func (l *ClippedLayout) outputSize(ctx context.Context, relocated []*parquet.RowGroup) (int64, error) {
	cw := &countingWriter{}
	if err := writeFooter(ctx, cw, l.fileMetaData(relocated)); err != nil {
		return 0, err
	}
	return int64(len(magic)) + l.dataSize + cw.Pos(), nil
}

// Reconstruct assembles a complete parquet file for the clipped layout by
// copying the retained chunk bytes out of src and appending a footer that
// describes the new positions. The returned buffer is allocated to the exact
// output size up front; estimate and written bytes diverging is a defect in
// the size accounting and panics.
func Reconstruct(ctx context.Context, src io.ReadSeeker, layout *ClippedLayout) ([]byte, error) {
	relocated, err := relocateRowGroups(ctx, layout.rowGroups)
	if err != nil {
		return nil, err
	}

	size, err := layout.outputSize(ctx, relocated)
	if err != nil {
		return nil, err
	}

	w := newSizedWriter(make([]byte, size))
	if err := writeFull(w, magic); err != nil {
		return nil, err
	}
	if err := copyChunks(src, layout.rowGroups, relocated, w); err != nil {
		return nil, err
	}
	if err := writeFooter(ctx, w, layout.fileMetaData(relocated)); err != nil {
		return nil, err
	}

	if w.Pos() != size {
		panic(fmt.Sprintf("parquetclip: computed output size %d but wrote %d bytes", size, w.Pos()))
	}

	return w.Bytes(), nil
}

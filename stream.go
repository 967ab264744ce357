package parquetclip

import (
	"fmt"
	"io"
	"strings"

	"github.com/fraugster/parquet-go/parquet"
)

// copyBufferSize is the size of the reusable transfer buffer used when
// streaming chunk bytes from the source into the sink.
const copyBufferSize = 128 * 1024

// copyChunks streams every retained column chunk from src into w, in
// row-group then column order. original describes where the chunks live in
// the source file, relocated where they land in the sink; both must come
// from the same clipped layout. The copy order determines the final layout,
// so the sink position is checked against the relocated offsets before each
// chunk: a mismatch means the offset accounting is corrupt and copying on
// would silently produce a broken file, which is why it panics.
func copyChunks(src io.ReadSeeker, original, relocated []*parquet.RowGroup, w writePos) error {
	buf := make([]byte, copyBufferSize)
	srcPos := int64(-1)

	for i, rg := range original {
		for j, cc := range rg.Columns {
			md := cc.MetaData
			start := chunkStartOffset(md)

			if want := chunkStartOffset(relocated[i].Columns[j].MetaData); w.Pos() != want {
				panic(fmt.Sprintf("parquetclip: sink at offset %d but chunk %q of row group %d relocated to %d", w.Pos(), strings.Join(md.PathInSchema, "."), i, want))
			}

			if srcPos != start {
				if _, err := src.Seek(start, io.SeekStart); err != nil {
					return fmt.Errorf("seek to column chunk at offset %d failed: %w", start, err)
				}
				srcPos = start
			}

			remaining := md.TotalCompressedSize
			for remaining > 0 {
				n := int64(len(buf))
				if remaining < n {
					n = remaining
				}
				if _, err := io.ReadFull(src, buf[:n]); err != nil {
					return fmt.Errorf("read %d bytes of column chunk at offset %d failed: %w", n, srcPos, err)
				}
				if err := writeFull(w, buf[:n]); err != nil {
					return err
				}
				remaining -= n
				srcPos += n
			}
		}
	}

	return nil
}

package parquetclip

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/fraugster/parquet-go/parquet"
)

// chunkStartOffset returns the file offset of the first byte of a column
// chunk. That is the dictionary page when one exists, the first data page
// otherwise. Some writers store a zero dictionary offset to mean "absent",
// so zero is ignored.
func chunkStartOffset(md *parquet.ColumnMetaData) int64 {
	off := md.DataPageOffset
	if md.DictionaryPageOffset != nil && *md.DictionaryPageOffset > 0 && *md.DictionaryPageOffset < off {
		off = *md.DictionaryPageOffset
	}
	return off
}

// relocateRowGroups computes the offsets every retained chunk will occupy
// once the chunks are copied back to back behind the leading magic bytes,
// without touching any data. The input groups are deep-copied; displacement
// is applied to the data page, dictionary page and index page offsets alike,
// so the relative layout inside each chunk is preserved.
//
// The result is exactly the metadata the real copy produces, which is what
// makes the footer dry run an exact measurement: the thrift compact encoding
// of an offset depends on its value, so measuring with anything other than
// the final offsets could misestimate the footer length.
func relocateRowGroups(ctx context.Context, rowGroups []*parquet.RowGroup) ([]*parquet.RowGroup, error) {
	out := make([]*parquet.RowGroup, 0, len(rowGroups))
	pos := int64(len(magic))

	for _, rg := range rowGroups {
		cp := &parquet.RowGroup{}
		if err := copyThrift(ctx, rg, cp); err != nil {
			return nil, err
		}

		groupStart := pos
		for _, cc := range cp.Columns {
			md := cc.MetaData
			displacement := pos - chunkStartOffset(md)

			md.DataPageOffset += displacement
			if md.DictionaryPageOffset != nil && *md.DictionaryPageOffset > 0 {
				md.DictionaryPageOffset = thrift.Int64Ptr(*md.DictionaryPageOffset + displacement)
			}
			if md.IndexPageOffset != nil {
				md.IndexPageOffset = thrift.Int64Ptr(*md.IndexPageOffset + displacement)
			}
			cc.FileOffset = pos

			pos += md.TotalCompressedSize
		}

		if cp.FileOffset != nil {
			cp.FileOffset = thrift.Int64Ptr(groupStart)
		}
		out = append(out, cp)
	}

	return out, nil
}

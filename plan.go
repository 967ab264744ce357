package parquetclip

import (
	"fmt"
	"strings"

	"github.com/fraugster/parquet-go/parquet"
)

// Codecs the default decoder can open. Chunk bytes are copied verbatim, so
// the reconstruction itself works for any codec; the check exists so that
// unsupported files are reported before any work is done, as a planning
// result the caller can fall back on.
var supportedCodecs = map[parquet.CompressionCodec]struct{}{
	parquet.CompressionCodec_UNCOMPRESSED: {},
	parquet.CompressionCodec_SNAPPY:       {},
	parquet.CompressionCodec_GZIP:         {},
}

// CheckSupported inspects the footer of a source file and reports, as an
// UnsupportedError, anything the reconstruction pipeline cannot handle.
// Callers should test the result with IsUnsupported and fall back to a
// regular read path instead of failing the query.
func CheckSupported(meta *parquet.FileMetaData, allowInt96 bool) error {
	if len(meta.Schema) < 2 {
		return &UnsupportedError{Reason: "file contains no columns"}
	}
	if meta.EncryptionAlgorithm != nil {
		return &UnsupportedError{Reason: "file metadata is encrypted"}
	}

	for _, elem := range meta.Schema[1:] {
		if elem.Type != nil && *elem.Type == parquet.Type_INT96 && !allowInt96 {
			return &UnsupportedError{Reason: fmt.Sprintf("column %q uses the deprecated INT96 type", elem.Name)}
		}
	}

	for i, rg := range meta.RowGroups {
		for _, cc := range rg.Columns {
			if cc.FilePath != nil {
				return &UnsupportedError{Reason: "column chunk data lives in an external file"}
			}
			if cc.MetaData == nil {
				return &UnsupportedError{Reason: fmt.Sprintf("row group %d carries a column chunk without meta data", i)}
			}
			if _, ok := supportedCodecs[cc.MetaData.Codec]; !ok {
				return &UnsupportedError{Reason: fmt.Sprintf("column %q uses unsupported compression codec %s", strings.Join(cc.MetaData.PathInSchema, "."), cc.MetaData.Codec)}
			}
		}
	}

	return nil
}

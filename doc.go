// Package parquetclip rewrites the physical layout of parquet files in memory.
//
// Given a column projection and an optional row group predicate, it assembles
// a minimal, self-contained parquet byte buffer that holds only the requested
// column chunks, copied verbatim from the source file, together with a freshly
// serialized footer whose offsets describe the new layout. The buffer is a
// complete parquet file and can be handed to any parquet reader.
//
// The typical entry point is NewPartitionReader, which reads the source
// footer, clips it to the requested columns and row groups, reconstructs the
// buffer and decodes it into a single Batch. The lower-level building blocks
// (ClipLayout, Reconstruct) are exported for callers that want to manage
// decoding themselves.
package parquetclip

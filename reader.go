package parquetclip

import (
	"context"
	"fmt"
	"io"
)

// PartitionReader reads one parquet partition through the reconstruction
// pipeline and delivers the result as a pull-based, single-use sequence of at
// most one Batch. It is not safe for concurrent use; distinct readers over
// distinct files are fully independent.
//
//	r, err := parquetclip.NewPartitionReader(f, parquetclip.WithColumns("id", "name"))
//	...
//	defer r.Close()
//	for r.Advance() {
//		batch, _ := r.Value()
//		...
//	}
//	if err := r.Err(); err != nil { ... }
type PartitionReader struct {
	source  io.ReadSeeker
	name    string
	decoder Decoder

	columns    []string
	pred       RowGroupPredicate
	allowInt96 bool

	layout *ClippedLayout

	batch     *Batch
	delivered bool
	exhausted bool
	closed    bool
	err       error
}

// ReaderOption configures a PartitionReader at construction time. The
// configuration is immutable afterwards.
type ReaderOption func(*PartitionReader)

// WithColumns restricts the read to the given dotted column paths. A path
// naming a group retains every leaf below it. Without this option all
// columns are read.
func WithColumns(columns ...string) ReaderOption {
	return func(r *PartitionReader) {
		r.columns = columns
	}
}

// WithRowGroupFilter installs a predicate over row group metadata, typically
// derived from pushed-down filters over chunk statistics. Row groups the
// predicate rejects are dropped from the reconstructed file.
func WithRowGroupFilter(pred RowGroupPredicate) ReaderOption {
	return func(r *PartitionReader) {
		r.pred = pred
	}
}

// WithDecoder replaces the default parquet-go decoder.
func WithDecoder(d Decoder) ReaderOption {
	return func(r *PartitionReader) {
		r.decoder = d
	}
}

// WithSourceName sets the name used in error messages, usually the file path.
func WithSourceName(name string) ReaderOption {
	return func(r *PartitionReader) {
		r.name = name
	}
}

// WithInt96Columns allows reading files that contain the deprecated INT96
// type, which is otherwise reported as unsupported.
func WithInt96Columns() ReaderOption {
	return func(r *PartitionReader) {
		r.allowInt96 = true
	}
}

// NewPartitionReader reads the footer of the parquet file behind src, checks
// that the file can be accelerated (use IsUnsupported on the error to fall
// back), and clips its layout to the configured columns and row groups. No
// chunk data is read until the first call to Advance.
func NewPartitionReader(src io.ReadSeeker, options ...ReaderOption) (*PartitionReader, error) {
	return NewPartitionReaderWithContext(context.Background(), src, options...)
}

// NewPartitionReaderWithContext is like NewPartitionReader with an explicit
// context.
func NewPartitionReaderWithContext(ctx context.Context, src io.ReadSeeker, options ...ReaderOption) (*PartitionReader, error) {
	r := &PartitionReader{
		source:  src,
		name:    "<unnamed>",
		decoder: goparquetDecoder{},
	}
	for _, opt := range options {
		opt(r)
	}

	meta, err := ReadFooterWithContext(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("reading footer of %s failed: %w", r.name, err)
	}
	if err := CheckSupported(meta, r.allowInt96); err != nil {
		return nil, err
	}

	layout, err := ClipLayoutWithContext(ctx, meta, r.columns, r.pred)
	if err != nil {
		return nil, fmt.Errorf("clipping layout of %s failed: %w", r.name, err)
	}
	r.layout = layout

	return r, nil
}

// Layout returns the clipped layout the reader operates on.
func (r *PartitionReader) Layout() *ClippedLayout {
	return r.layout
}

// Advance moves the reader to its next batch and reports whether one is
// available. The whole pipeline runs on the first call: the output buffer is
// sized, allocated, filled and decoded, then released before Advance
// returns. Every later call reports false. A partition whose clipped layout
// has no row groups yields no batch at all, so the very first call reports
// false. When Advance reports false, Err distinguishes exhaustion from
// failure.
func (r *PartitionReader) Advance() bool {
	return r.AdvanceWithContext(context.Background())
}

// AdvanceWithContext is like Advance with an explicit context.
func (r *PartitionReader) AdvanceWithContext(ctx context.Context) bool {
	if r.closed || r.exhausted || r.err != nil {
		return false
	}
	if r.delivered {
		r.releaseBatch()
		r.exhausted = true
		return false
	}
	if len(r.layout.rowGroups) == 0 {
		r.exhausted = true
		return false
	}

	buf, err := Reconstruct(ctx, r.source, r.layout)
	if err != nil {
		r.fail(err)
		return false
	}

	batch, err := r.decoder.Decode(ctx, buf)
	if err != nil {
		r.fail(fmt.Errorf("decoding %s failed: %w", r.name, err))
		return false
	}

	if batch.NumColumns() != r.layout.leafCount {
		_ = batch.Close()
		r.fail(&FormatError{
			Source: r.name,
			Detail: fmt.Sprintf("expected %d columns, decoder produced %d", r.layout.leafCount, batch.NumColumns()),
		})
		return false
	}

	r.batch = batch
	r.delivered = true
	return true
}

// Value returns the batch produced by the last successful Advance. It fails
// with ErrNoBatch before the first Advance and after exhaustion.
func (r *PartitionReader) Value() (*Batch, error) {
	if r.batch == nil {
		return nil, ErrNoBatch
	}
	return r.batch, nil
}

// Err returns the first error the reader ran into, nil on plain exhaustion.
func (r *PartitionReader) Err() error {
	return r.err
}

// Close releases the held batch, if any. It is idempotent and safe to call
// at any point, including before the first Advance and on failure paths.
func (r *PartitionReader) Close() error {
	r.releaseBatch()
	r.exhausted = true
	r.closed = true
	return nil
}

func (r *PartitionReader) fail(err error) {
	r.err = err
	r.releaseBatch()
	r.exhausted = true
}

func (r *PartitionReader) releaseBatch() {
	if r.batch != nil {
		_ = r.batch.Close()
		r.batch = nil
	}
}

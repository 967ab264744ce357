package parquetclip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	goparquet "github.com/fraugster/parquet-go"
)

// Decoder parses a reconstructed parquet byte buffer into a Batch. The
// default implementation reads the buffer with the parquet-go file reader;
// callers with an accelerated decoder can plug in their own via WithDecoder.
type Decoder interface {
	Decode(ctx context.Context, buf []byte) (*Batch, error)
}

// Batch is one decoded table: all rows of a reconstructed partition and the
// flat names of its leaf columns in schema order.
type Batch struct {
	columns []string
	rows    []map[string]interface{}
	closed  bool
}

// Columns returns the flat (dotted) names of the decoded leaf columns.
func (b *Batch) Columns() []string {
	return b.columns
}

// NumColumns returns the number of decoded leaf columns.
func (b *Batch) NumColumns() int {
	return len(b.columns)
}

// NumRows returns the number of decoded rows.
func (b *Batch) NumRows() int {
	return len(b.rows)
}

// Rows returns the decoded rows. The returned slice is owned by the batch
// and is invalid after Close.
func (b *Batch) Rows() []map[string]interface{} {
	return b.rows
}

// Close releases the batch data. It is idempotent.
func (b *Batch) Close() error {
	b.rows = nil
	b.closed = true
	return nil
}

type goparquetDecoder struct{}

func (goparquetDecoder) Decode(ctx context.Context, buf []byte) (*Batch, error) {
	fr, err := goparquet.NewFileReader(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("opening reconstructed buffer failed: %w", err)
	}

	cols := fr.Columns()
	batch := &Batch{columns: make([]string, 0, len(cols))}
	for _, c := range cols {
		batch.columns = append(batch.columns, c.FlatName())
	}

	for {
		row, err := fr.NextRowWithContext(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding reconstructed buffer failed: %w", err)
		}
		batch.rows = append(batch.rows, row)
	}

	return batch, nil
}

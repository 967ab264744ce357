package parquetclip

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	goparquet "github.com/fraugster/parquet-go"
	"github.com/fraugster/parquet-go/parquet"
	"github.com/fraugster/parquet-go/parquetschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionReaderDeliversSingleBatch(t *testing.T) {
	data := makeTestFile(t, testRows(0, 10), testRows(10, 5))

	r, err := NewPartitionReader(bytes.NewReader(data),
		WithColumns("id", "name"),
		WithSourceName("test.parquet"),
	)
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Advance(), "first advance must deliver the batch")

	batch, err := r.Value()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, batch.Columns())
	assert.Equal(t, 2, batch.NumColumns())
	require.Equal(t, 15, batch.NumRows())
	for i, row := range batch.Rows() {
		assert.Equal(t, int64(i), row["id"])
		assert.Equal(t, []byte(fmt.Sprintf("name-%d", i)), row["name"])
	}

	assert.False(t, r.Advance(), "the reader yields at most one batch")
	assert.NoError(t, r.Err())

	_, err = r.Value()
	assert.ErrorIs(t, err, ErrNoBatch, "the batch is released on exhaustion")
}

func TestPartitionReaderEmptyPartition(t *testing.T) {
	data := makeTestFile(t, testRows(0, 10))

	r, err := NewPartitionReader(bytes.NewReader(data),
		WithRowGroupFilter(func(*parquet.RowGroup) bool { return false }),
	)
	require.NoError(t, err)
	defer r.Close()

	assert.False(t, r.Advance(), "a partition without row groups yields no batch, not an empty one")
	assert.NoError(t, r.Err())

	_, err = r.Value()
	assert.ErrorIs(t, err, ErrNoBatch)
}

func TestPartitionReaderValueBeforeAdvance(t *testing.T) {
	data := makeTestFile(t, testRows(0, 10))

	r, err := NewPartitionReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Value()
	assert.ErrorIs(t, err, ErrNoBatch)
}

func TestPartitionReaderCloseIdempotent(t *testing.T) {
	data := makeTestFile(t, testRows(0, 10))

	r, err := NewPartitionReader(bytes.NewReader(data))
	require.NoError(t, err)

	require.NoError(t, r.Close(), "close before any advance must not error")
	require.NoError(t, r.Close(), "close must be idempotent")

	assert.False(t, r.Advance())

	r, err = NewPartitionReader(bytes.NewReader(data))
	require.NoError(t, err)
	require.True(t, r.Advance())
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err = r.Value()
	assert.ErrorIs(t, err, ErrNoBatch)
}

type fixedDecoder struct {
	batch *Batch
}

func (d fixedDecoder) Decode(context.Context, []byte) (*Batch, error) {
	return d.batch, nil
}

func TestPartitionReaderColumnCountMismatch(t *testing.T) {
	data := makeTestFile(t, testRows(0, 10))

	r, err := NewPartitionReader(bytes.NewReader(data),
		WithColumns("id", "name"),
		WithSourceName("mismatch.parquet"),
		WithDecoder(fixedDecoder{batch: &Batch{columns: []string{"id"}}}),
	)
	require.NoError(t, err)
	defer r.Close()

	assert.False(t, r.Advance())

	var fe *FormatError
	require.ErrorAs(t, r.Err(), &fe)
	assert.Equal(t, "mismatch.parquet", fe.Source)
	assert.Contains(t, fe.Error(), "expected 2 columns, decoder produced 1")

	_, err = r.Value()
	assert.ErrorIs(t, err, ErrNoBatch, "no batch is held after a failure")
}

func TestPartitionReaderInt96Unsupported(t *testing.T) {
	sd, err := parquetschema.ParseSchemaDefinition(`message test {
		required int96 ts;
	}`)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	w := goparquet.NewFileWriter(buf, goparquet.WithSchemaDefinition(sd))
	require.NoError(t, w.AddData(map[string]interface{}{"ts": [12]byte{1, 2, 3}}))
	require.NoError(t, w.Close())

	_, err = NewPartitionReader(bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
	assert.True(t, IsUnsupported(err), "INT96 must be reported as unsupported, not as a failure")

	r, err := NewPartitionReader(bytes.NewReader(buf.Bytes()), WithInt96Columns())
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Advance())
	batch, err := r.Value()
	require.NoError(t, err)
	assert.Equal(t, 1, batch.NumRows())
}

func TestBatchCloseIdempotent(t *testing.T) {
	b := &Batch{columns: []string{"id"}, rows: []map[string]interface{}{{"id": int64(1)}}}

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.Zero(t, b.NumRows())
}

package parquetclip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizedWriter(t *testing.T) {
	w := newSizedWriter(make([]byte, 8))

	n, err := w.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int64(3), w.Pos())

	n, err = w.Write([]byte{4, 5, 6, 7, 8})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, int64(8), w.Pos())

	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, w.Bytes())
}

func TestSizedWriterOverflowPanics(t *testing.T) {
	w := newSizedWriter(make([]byte, 4))

	_, err := w.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)

	assert.Panics(t, func() {
		_, _ = w.Write([]byte{5})
	}, "writing past the allocated capacity must be treated as a defect")
}

func TestCountingWriter(t *testing.T) {
	w := &countingWriter{}

	for i := 0; i < 3; i++ {
		n, err := w.Write(make([]byte, 100))
		require.NoError(t, err)
		assert.Equal(t, 100, n)
	}

	assert.Equal(t, int64(300), w.Pos())
}

package parquetclip

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	goparquet "github.com/fraugster/parquet-go"
	"github.com/fraugster/parquet-go/parquetschema"
	"github.com/stretchr/testify/require"
)

const testSchema = `message test {
	required int64 id;
	optional binary name (STRING);
	optional group meta {
		optional int64 size;
	}
}`

func testRows(start, n int) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, map[string]interface{}{
			"id":   int64(start + i),
			"name": []byte(fmt.Sprintf("name-%d", start+i)),
			"meta": map[string]interface{}{
				"size": int64((start + i) * 10),
			},
		})
	}
	return rows
}

// makeTestFile writes an in-memory parquet file with one row group per
// element of rowGroups.
func makeTestFile(t *testing.T, rowGroups ...[]map[string]interface{}) []byte {
	t.Helper()

	sd, err := parquetschema.ParseSchemaDefinition(testSchema)
	require.NoError(t, err, "parsing schema definition failed")

	buf := &bytes.Buffer{}
	w := goparquet.NewFileWriter(buf,
		goparquet.WithSchemaDefinition(sd),
		goparquet.WithCreator("parquetclip-test"),
	)

	for _, rows := range rowGroups {
		for _, row := range rows {
			require.NoError(t, w.AddData(row), "AddData failed")
		}
		require.NoError(t, w.FlushRowGroup(), "FlushRowGroup failed")
	}
	require.NoError(t, w.Close(), "Close failed")

	return buf.Bytes()
}

// decodeFile reads a parquet byte buffer and returns the flat leaf column
// names and all rows.
func decodeFile(t *testing.T, data []byte) ([]string, []map[string]interface{}) {
	t.Helper()

	fr, err := goparquet.NewFileReader(bytes.NewReader(data))
	require.NoError(t, err, "creating file reader failed")

	names := make([]string, 0, len(fr.Columns()))
	for _, c := range fr.Columns() {
		names = append(names, c.FlatName())
	}

	var rows []map[string]interface{}
	for {
		row, err := fr.NextRow()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err, "NextRow failed")
		rows = append(rows, row)
	}

	return names, rows
}

package parquetclip

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/fraugster/parquet-go/parquet"
)

var magic = []byte{'P', 'A', 'R', '1'}

const (
	// footerVersion is the parquet format version written into reconstructed
	// footers.
	footerVersion = 1

	// createdBy identifies this library in reconstructed footers.
	createdBy = "parquetclip version 0.1"
)

type thriftReader interface {
	Read(context.Context, thrift.TProtocol) error
}

type thriftWriter interface {
	Write(context.Context, thrift.TProtocol) error
}

type thriftObject interface {
	thriftReader
	thriftWriter
}

func readThrift(ctx context.Context, tr thriftReader, r io.Reader) error {
	transport := thrift.NewStreamTransportR(r)
	proto := thrift.NewTCompactProtocolConf(transport, nil)
	return tr.Read(ctx, proto)
}

func writeThrift(ctx context.Context, tw thriftWriter, w io.Writer) error {
	transport := thrift.NewStreamTransportW(w)
	proto := thrift.NewTCompactProtocolConf(transport, nil)
	if err := tw.Write(ctx, proto); err != nil {
		return err
	}
	return proto.Flush(ctx)
}

// copyThrift deep-copies src into dst using a thrift serialization round
// trip. dst must be a freshly allocated value of the same type as src.
func copyThrift(ctx context.Context, src thriftObject, dst thriftObject) error {
	buf := &bytes.Buffer{}
	if err := writeThrift(ctx, src, buf); err != nil {
		return err
	}
	return readThrift(ctx, dst, bytes.NewReader(buf.Bytes()))
}

// ReadFooter reads and returns the footer metadata of a parquet file.
func ReadFooter(r io.ReadSeeker) (*parquet.FileMetaData, error) {
	return ReadFooterWithContext(context.Background(), r)
}

// ReadFooterWithContext reads and returns the footer metadata of a parquet
// file, validating the magic bytes at both ends of the file first.
func ReadFooterWithContext(ctx context.Context, r io.ReadSeeker) (*parquet.FileMetaData, error) {
	buf := make([]byte, 4)

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for the file magic header failed: %w", err)
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read the file magic header failed: %w", err)
	}
	if !bytes.Equal(buf, magic) {
		return nil, errors.New("invalid parquet file header")
	}

	if _, err := r.Seek(-4, io.SeekEnd); err != nil {
		return nil, fmt.Errorf("seek for the file magic footer failed: %w", err)
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read the file magic footer failed: %w", err)
	}
	if !bytes.Equal(buf, magic) {
		return nil, errors.New("invalid parquet file footer")
	}

	if _, err := r.Seek(-8, io.SeekEnd); err != nil {
		return nil, fmt.Errorf("seek for the footer len failed: %w", err)
	}
	var fl int32
	if err := binary.Read(r, binary.LittleEndian, &fl); err != nil {
		return nil, fmt.Errorf("read the footer len failed: %w", err)
	}
	if fl <= 0 {
		return nil, fmt.Errorf("invalid footer len %d", fl)
	}

	if _, err := r.Seek(-8-int64(fl), io.SeekEnd); err != nil {
		return nil, fmt.Errorf("seek to the file meta data failed: %w", err)
	}
	meta := &parquet.FileMetaData{}
	if err := readThrift(ctx, meta, io.LimitReader(r, int64(fl))); err != nil {
		return nil, fmt.Errorf("read the file meta data failed: %w", err)
	}

	return meta, nil
}

// writePos is a byte sink that knows its current write position.
type writePos interface {
	io.Writer
	Pos() int64
}

func writeFull(w io.Writer, buf []byte) error {
	n, err := w.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("needed to write %d bytes, wrote %d", len(buf), n)
	}
	return nil
}

// writeFooter serializes meta into w followed by the little-endian footer
// length and the trailing magic bytes, completing a parquet file.
func writeFooter(ctx context.Context, w writePos, meta *parquet.FileMetaData) error {
	pos := w.Pos()
	if err := writeThrift(ctx, meta, w); err != nil {
		return fmt.Errorf("write the file meta data failed: %w", err)
	}

	ln := int32(w.Pos() - pos)
	if err := binary.Write(w, binary.LittleEndian, ln); err != nil {
		return fmt.Errorf("write the footer len failed: %w", err)
	}

	return writeFull(w, magic)
}

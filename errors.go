package parquetclip

import (
	"errors"
	"fmt"
)

// ErrNoBatch is returned by PartitionReader.Value when no decoded batch is
// available, either because Advance has not been called yet or because the
// reader is already exhausted or closed.
var ErrNoBatch = errors.New("no batch available")

// UnsupportedError indicates that a source file cannot be handled by the
// reconstruction pipeline. It is a planning result, not a failure: callers
// are expected to detect it via IsUnsupported and fall back to a regular
// parquet read path.
type UnsupportedError struct {
	Reason string
}

func (e *UnsupportedError) Error() string {
	return "cannot accelerate parquet read: " + e.Reason
}

// IsUnsupported reports whether err signals an unsupported source file.
func IsUnsupported(err error) bool {
	var ue *UnsupportedError
	return errors.As(err, &ue)
}

// FormatError indicates an inconsistency between the parquet metadata and the
// physical data, for example a decoded column count that does not match the
// clipped schema. It is fatal for the affected partition.
type FormatError struct {
	Source string
	Detail string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("parquet format inconsistency in %s: %s", e.Source, e.Detail)
}

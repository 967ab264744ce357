package parquetclip

import (
	"context"
	"fmt"
	"strings"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/fraugster/parquet-go/parquet"
)

// RowGroupPredicate decides whether a row group is kept in a clipped layout.
// It is typically derived from pushed-down filters over the column chunk
// statistics. A nil predicate keeps every row group.
type RowGroupPredicate func(rg *parquet.RowGroup) bool

// ClippedLayout is the physical layout of a reconstructed parquet file: the
// source footer restricted to the requested columns and row groups, with all
// metadata deep-copied so the source footer stays untouched. It is immutable
// after construction.
type ClippedLayout struct {
	schema    []*parquet.SchemaElement
	rowGroups []*parquet.RowGroup
	numRows   int64
	dataSize  int64
	leafCount int
}

// RowGroups returns the clipped row groups in their original order.
func (l *ClippedLayout) RowGroups() []*parquet.RowGroup {
	return l.rowGroups
}

// Schema returns the pruned schema element list, root element first.
func (l *ClippedLayout) Schema() []*parquet.SchemaElement {
	return l.schema
}

// NumRows returns the total row count over all retained row groups.
func (l *ClippedLayout) NumRows() int64 {
	return l.numRows
}

// NumLeafColumns returns the number of leaf columns in the pruned schema.
func (l *ClippedLayout) NumLeafColumns() int {
	return l.leafCount
}

// DataSize returns the total compressed size of all retained column chunks.
func (l *ClippedLayout) DataSize() int64 {
	return l.dataSize
}

func (l *ClippedLayout) fileMetaData(rowGroups []*parquet.RowGroup) *parquet.FileMetaData {
	return &parquet.FileMetaData{
		Version:   footerVersion,
		Schema:    l.schema,
		NumRows:   l.numRows,
		RowGroups: rowGroups,
		CreatedBy: thrift.StringPtr(createdBy),
	}
}

// ClipLayout restricts the footer metadata of a parquet file to the given
// column paths and to the row groups accepted by pred. Paths use dotted
// notation; a path naming a group retains every leaf below it. A nil or empty
// columns slice retains all columns, a nil pred retains all row groups.
//
// Row groups that end up with zero retained columns are kept with an empty
// column list; they contribute no bytes but still count rows.
func ClipLayout(meta *parquet.FileMetaData, columns []string, pred RowGroupPredicate) (*ClippedLayout, error) {
	return ClipLayoutWithContext(context.Background(), meta, columns, pred)
}

// ClipLayoutWithContext is like ClipLayout with an explicit context.
func ClipLayoutWithContext(ctx context.Context, meta *parquet.FileMetaData, columns []string, pred RowGroupPredicate) (*ClippedLayout, error) {
	schema, leafCount, err := pruneSchema(ctx, meta.Schema, columns)
	if err != nil {
		return nil, fmt.Errorf("pruning schema failed: %w", err)
	}

	layout := &ClippedLayout{
		schema:    schema,
		leafCount: leafCount,
	}

	for _, rg := range meta.RowGroups {
		if pred != nil && !pred(rg) {
			continue
		}

		clipped, err := clipRowGroup(ctx, rg, columns)
		if err != nil {
			return nil, err
		}

		layout.rowGroups = append(layout.rowGroups, clipped)
		layout.numRows += clipped.NumRows
		for _, cc := range clipped.Columns {
			layout.dataSize += cc.MetaData.TotalCompressedSize
		}
	}

	return layout, nil
}

// clipRowGroup copies rg keeping only the selected column chunks, preserving
// their relative order, and recomputes the group byte sizes from the
// retained chunks.
func clipRowGroup(ctx context.Context, rg *parquet.RowGroup, columns []string) (*parquet.RowGroup, error) {
	out := &parquet.RowGroup{
		NumRows: rg.NumRows,
	}
	if rg.Ordinal != nil {
		ordinal := *rg.Ordinal
		out.Ordinal = &ordinal
	}

	var totalCompressed int64
	for _, cc := range rg.Columns {
		if cc.MetaData == nil {
			return nil, fmt.Errorf("column chunk at offset %d carries no meta data", cc.FileOffset)
		}
		if !pathSelected(columns, cc.MetaData.PathInSchema) {
			continue
		}

		cp := &parquet.ColumnChunk{}
		if err := copyThrift(ctx, cc, cp); err != nil {
			return nil, fmt.Errorf("copying column chunk meta data failed: %w", err)
		}
		if err := validateChunk(cp.MetaData); err != nil {
			return nil, err
		}

		out.Columns = append(out.Columns, cp)
		out.TotalByteSize += cp.MetaData.TotalUncompressedSize
		totalCompressed += cp.MetaData.TotalCompressedSize
	}

	if rg.TotalCompressedSize != nil {
		out.TotalCompressedSize = thrift.Int64Ptr(totalCompressed)
	}

	return out, nil
}

// pathSelected reports whether a column path is part of the selection, either
// exactly or because the selection names one of its ancestor groups.
func pathSelected(columns []string, path []string) bool {
	if len(columns) == 0 {
		return true
	}
	flat := strings.Join(path, ".")
	for _, c := range columns {
		if flat == c || strings.HasPrefix(flat, c+".") {
			return true
		}
	}
	return false
}

func validateChunk(md *parquet.ColumnMetaData) error {
	name := strings.Join(md.PathInSchema, ".")
	if md.TotalCompressedSize < 0 || md.TotalUncompressedSize < 0 {
		return fmt.Errorf("column %q has negative chunk size", name)
	}
	start := chunkStartOffset(md)
	if md.DataPageOffset < start {
		return fmt.Errorf("column %q: data page offset %d lies before chunk start %d", name, md.DataPageOffset, start)
	}
	if md.DataPageOffset >= start+md.TotalCompressedSize {
		return fmt.Errorf("column %q: data page offset %d lies past the chunk end %d", name, md.DataPageOffset, start+md.TotalCompressedSize)
	}
	if md.DictionaryPageOffset != nil && *md.DictionaryPageOffset > 0 {
		if d := *md.DictionaryPageOffset; d < start || d >= start+md.TotalCompressedSize {
			return fmt.Errorf("column %q: dictionary page offset %d outside chunk [%d, %d)", name, d, start, start+md.TotalCompressedSize)
		}
	}
	return nil
}

type schemaNode struct {
	elem     *parquet.SchemaElement
	children []*schemaNode
}

func buildSchemaTree(elems []*parquet.SchemaElement, pos int) (*schemaNode, int, error) {
	if pos >= len(elems) {
		return nil, 0, fmt.Errorf("schema element list truncated at %d", pos)
	}

	node := &schemaNode{elem: elems[pos]}
	pos++

	if node.elem.NumChildren != nil {
		for i := int32(0); i < *node.elem.NumChildren; i++ {
			child, next, err := buildSchemaTree(elems, pos)
			if err != nil {
				return nil, 0, err
			}
			node.children = append(node.children, child)
			pos = next
		}
	}

	return node, pos, nil
}

// pruneSchema restricts the flattened schema element list to the selected
// leaf columns and their ancestors, fixing up the children counts of the
// retained groups. It returns the new element list and the number of
// retained leaves.
func pruneSchema(ctx context.Context, elems []*parquet.SchemaElement, columns []string) ([]*parquet.SchemaElement, int, error) {
	if len(elems) == 0 {
		return nil, 0, fmt.Errorf("schema element list is empty")
	}

	root, next, err := buildSchemaTree(elems, 0)
	if err != nil {
		return nil, 0, err
	}
	if next != len(elems) {
		return nil, 0, fmt.Errorf("schema element list has %d trailing elements", len(elems)-next)
	}

	// the root always survives, even when nothing below it does
	pruned, leaves, err := pruneSchemaNode(ctx, root, nil, columns)
	if err != nil {
		return nil, 0, err
	}

	return flattenSchemaTree(pruned, nil), leaves, nil
}

func pruneSchemaNode(ctx context.Context, node *schemaNode, path []string, columns []string) (*schemaNode, int, error) {
	if len(node.children) == 0 && len(path) > 0 {
		if !pathSelected(columns, path) {
			return nil, 0, nil
		}
		elem := &parquet.SchemaElement{}
		if err := copyThrift(ctx, node.elem, elem); err != nil {
			return nil, 0, err
		}
		return &schemaNode{elem: elem}, 1, nil
	}

	var (
		kept   []*schemaNode
		leaves int
	)
	for _, child := range node.children {
		sub, n, err := pruneSchemaNode(ctx, child, append(path, child.elem.Name), columns)
		if err != nil {
			return nil, 0, err
		}
		if sub != nil {
			kept = append(kept, sub)
			leaves += n
		}
	}

	if len(kept) == 0 && len(path) > 0 {
		return nil, 0, nil
	}

	elem := &parquet.SchemaElement{}
	if err := copyThrift(ctx, node.elem, elem); err != nil {
		return nil, 0, err
	}
	elem.NumChildren = thrift.Int32Ptr(int32(len(kept)))

	return &schemaNode{elem: elem, children: kept}, leaves, nil
}

func flattenSchemaTree(node *schemaNode, out []*parquet.SchemaElement) []*parquet.SchemaElement {
	out = append(out, node.elem)
	for _, child := range node.children {
		out = flattenSchemaTree(child, out)
	}
	return out
}

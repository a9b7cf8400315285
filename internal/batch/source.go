package batch

import "io"

// SliceSource serves rows from memory. Used for API batch requests and tests;
// file-backed batches wrap their reader in their own RowSource.
type SliceSource struct {
	rows []Row
	next int
}

func NewSliceSource(rows []Row) *SliceSource {
	return &SliceSource{rows: rows}
}

func (s *SliceSource) Next() (Row, error) {
	if s.next >= len(s.rows) {
		return Row{}, io.EOF
	}
	row := s.rows[s.next]
	s.next++
	return row, nil
}

// RowsFromMaps adapts plain field mappings into rows, fixing the column order
// from the given schema so auto-combine scans deterministically.
func RowsFromMaps(columns []string, maps []map[string]string) []Row {
	rows := make([]Row, len(maps))
	for i, m := range maps {
		rows[i] = Row{Columns: columns, Values: m}
	}
	return rows
}

package excel

// HeaderList returns the header row of sheet.
func HeaderList(path, sheet string) ([]string, error) {
	s, err := Load(path, sheet)
	if err != nil {
		return nil, err
	}
	return s.Header(), nil
}

// ColumnValues returns column col of sheet.
func ColumnValues(path, sheet string, col int, skipHeader bool) ([]string, error) {
	s, err := Load(path, sheet)
	if err != nil {
		return nil, err
	}
	return s.Column(col, skipHeader), nil
}

// ColumnValuesByHeader returns the column of sheet titled header.
func ColumnValuesByHeader(path, sheet, header string, skipHeader bool) ([]string, error) {
	s, err := Load(path, sheet)
	if err != nil {
		return nil, err
	}
	return s.ColumnByHeader(header, skipHeader)
}

// RowValues returns row of sheet.
func RowValues(path, sheet string, row int, skipFirstColumn bool) ([]string, error) {
	s, err := Load(path, sheet)
	if err != nil {
		return nil, err
	}
	return s.Row(row, skipFirstColumn)
}

// RowValuesByHeader returns the row of sheet whose first cell is rowHeader.
func RowValuesByHeader(path, sheet, rowHeader string, skipFirstColumn bool) ([]string, error) {
	s, err := Load(path, sheet)
	if err != nil {
		return nil, err
	}
	return s.RowByHeader(rowHeader, skipFirstColumn)
}

// ReadSheet returns one header -> value map per data row.
func ReadSheet(path, sheet string) ([]map[string]string, error) {
	s, err := Load(path, sheet)
	if err != nil {
		return nil, err
	}
	return s.Records(false), nil
}

// ReadSheetSkipFirstColumn is ReadSheet without the first column, for sheets
// whose first column labels the rows.
func ReadSheetSkipFirstColumn(path, sheet string) ([]map[string]string, error) {
	s, err := Load(path, sheet)
	if err != nil {
		return nil, err
	}
	return s.Records(true), nil
}

// C:\Users\wasab\OneDrive\デスクトップ\PORTION\parsers\table_csv_parser.go
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"portion/table"
)

// ParseTableCSV はヘッダー付きCSVをテーブルに読み込み、各セルを table.Parse で型付けします。
// required の列はヘッダーに必須です。
// セミコロン区切りはヘッダー行から判定します。
func ParseTableCSV(r io.Reader, encoding string, required ...string) (*table.Table, error) {
	decoded, err := NewDecodingReader(r, encoding)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	text := string(raw)

	reader := csv.NewReader(strings.NewReader(text))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	firstLine := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		firstLine = text[:i]
	}
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		reader.Comma = ';'
	}

	header, err := reader.Read()
	if err == io.EOF {
		return table.New(required...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	colIndex, err := getColIndex(header, required)
	if err != nil {
		return nil, err
	}

	t := table.New()
	for _, h := range header {
		if name := strings.TrimSpace(h); name != "" {
			t.AddColumn(name)
		}
	}
	columns := t.Columns()
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		if isBlankRecord(record) {
			continue
		}
		row := make(table.Row, len(columns))
		for _, c := range columns {
			i := colIndex[c]
			if i < len(record) {
				row[c] = table.Parse(record[i])
			} else {
				row[c] = table.Empty()
			}
		}
		t.Append(row)
	}
	return t, nil
}

func isBlankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// C:\Users\wasab\OneDrive\デスクトップ\PORTION\workbook\workbook.go

// Package workbook はテーブルを1テーブル1ブックのxlsxファイルとして保存します。
package workbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"portion/apperr"
	"portion/table"
)

const defaultSheet = "Sheet1"

// Store はテーブル名をブックのパスに対応付けます。
type Store struct {
	mu    sync.Mutex
	paths map[string]string
}

func NewStore(paths map[string]string) *Store {
	copied := make(map[string]string, len(paths))
	for k, v := range paths {
		copied[k] = v
	}
	return &Store{paths: copied}
}

func (s *Store) path(name string) (string, error) {
	p, ok := s.paths[name]
	if !ok {
		return "", fmt.Errorf("no workbook configured for table %s", name)
	}
	return p, nil
}

// Read はテーブルのブックの最初のシートを読み込みます。1行目はヘッダーです。
func (s *Store) Read(ctx context.Context, name string) (*table.Table, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return ReadFile(p, name)
}

// ReadFile は path のxlsxファイルの最初のシートを読み込みます。
func ReadFile(path, name string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, table.ErrNotFound(name)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table.New(), nil
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", path, err)
	}
	if len(rows) == 0 {
		return table.New(), nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	t := table.New()
	for _, h := range header {
		if h != "" {
			t.AddColumn(h)
		}
	}
	for _, record := range rows[1:] {
		r := make(table.Row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(record) {
				r[h] = table.Parse(record[i])
			} else {
				r[h] = table.Empty()
			}
		}
		t.Append(r)
	}
	return t, nil
}

// Write はブックを置き換えます。同じディレクトリに書き出してからリネームし、
// 書きかけのブックが読まれないようにします。
func (s *Store) Write(ctx context.Context, name string, t *table.Table) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteFile(p, t)
}

// Append はブックを読み込み、スキーマを合わせて行を追加し、書き戻します。
func (s *Store) Append(ctx context.Context, name string, rows *table.Table) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := ReadFile(p, name)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			return err
		}
		existing = table.New()
	}
	return WriteFile(p, existing.Concat(rows))
}

func WriteFile(path string, t *table.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	columns := t.Columns()
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}
	for i, r := range t.Rows() {
		cells := make([]interface{}, len(columns))
		for j, c := range columns {
			cells[j] = cellValue(r.Get(c))
		}
		if err := setRow(f, i+2, cells); err != nil {
			return err
		}
	}

	tmp := filepath.Join(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	if err := f.SaveAs(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, rowNo int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(defaultSheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNo, err)
	}
	return nil
}

func cellValue(v table.Value) interface{} {
	switch v.Kind() {
	case table.KindEmpty:
		return nil
	case table.KindTime:
		return v.Text()
	}
	return v.Interface()
}

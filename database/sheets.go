// C:\Users\wasab\OneDrive\デスクトップ\PORTION\database\sheets.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"portion/table"
)

// SheetStore は名前付きテーブルをSQLiteに1セル1行で保存します。
type SheetStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSheetStore(db *sqlx.DB) *SheetStore {
	return &SheetStore{db: db, now: time.Now}
}

type SheetInfo struct {
	Name      string `db:"name" json:"name"`
	Columns   string `db:"columns" json:"-"`
	RowCount  int    `db:"row_count" json:"rowCount"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}

type cellRecord struct {
	Sheet   string          `db:"sheet"`
	RowNo   int             `db:"row_no"`
	Col     string          `db:"col"`
	Kind    int             `db:"kind"`
	IntVal  sql.NullInt64   `db:"int_val"`
	RealVal sql.NullFloat64 `db:"real_val"`
	TextVal sql.NullString  `db:"text_val"`
}

const insertCellQuery = `
INSERT OR REPLACE INTO sheet_cells (sheet, row_no, col, kind, int_val, real_val, text_val)
VALUES (:sheet, :row_no, :col, :kind, :int_val, :real_val, :text_val)`

const upsertSheetQuery = `
INSERT OR REPLACE INTO sheets (name, columns, row_count, updated_at)
VALUES (:name, :columns, :row_count, :updated_at)`

func getSheet(ctx context.Context, dbtx DBTX, name string) (*SheetInfo, error) {
	var info SheetInfo
	err := dbtx.GetContext(ctx, &info, `SELECT name, columns, row_count, updated_at FROM sheets WHERE name = ?`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sheet %s: %w", name, err)
	}
	return &info, nil
}

func (s *SheetStore) Read(ctx context.Context, name string) (*table.Table, error) {
	info, err := getSheet(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, table.ErrNotFound(name)
	}
	var columns []string
	if err := json.Unmarshal([]byte(info.Columns), &columns); err != nil {
		return nil, fmt.Errorf("corrupt column list for sheet %s: %w", name, err)
	}

	var cells []cellRecord
	const q = `SELECT sheet, row_no, col, kind, int_val, real_val, text_val
		FROM sheet_cells WHERE sheet = ? ORDER BY row_no`
	if err := s.db.SelectContext(ctx, &cells, q, name); err != nil {
		return nil, fmt.Errorf("failed to read cells of sheet %s: %w", name, err)
	}

	t := table.New(columns...)
	var current table.Row
	currentNo := -1
	for _, c := range cells {
		if c.RowNo != currentNo {
			if current != nil {
				t.Append(current)
			}
			current = make(table.Row, len(columns))
			currentNo = c.RowNo
		}
		current[c.Col] = decodeCell(c)
	}
	if current != nil {
		t.Append(current)
	}
	return t, nil
}

func (s *SheetStore) Write(ctx context.Context, name string, t *table.Table) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_cells WHERE sheet = ?`, name); err != nil {
		return fmt.Errorf("failed to clear sheet %s: %w", name, err)
	}
	if err := insertRowsInTx(ctx, tx, name, t, 0); err != nil {
		return err
	}
	if err := s.saveSheetInTx(ctx, tx, name, t.Columns(), t.Len()); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SheetStore) Append(ctx context.Context, name string, rows *table.Table) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	info, err := getSheet(ctx, tx, name)
	if err != nil {
		return err
	}
	schema := table.New()
	rowCount := 0
	if info != nil {
		var columns []string
		if err := json.Unmarshal([]byte(info.Columns), &columns); err != nil {
			return fmt.Errorf("corrupt column list for sheet %s: %w", name, err)
		}
		schema = table.New(columns...)
		rowCount = info.RowCount
	}
	schema = schema.Concat(table.New(rows.Columns()...))

	var next sql.NullInt64
	if err := tx.GetContext(ctx, &next, `SELECT MAX(row_no) + 1 FROM sheet_cells WHERE sheet = ?`, name); err != nil {
		return fmt.Errorf("failed to find next row of sheet %s: %w", name, err)
	}
	if err := insertRowsInTx(ctx, tx, name, rows, int(next.Int64)); err != nil {
		return err
	}
	if err := s.saveSheetInTx(ctx, tx, name, schema.Columns(), rowCount+rows.Len()); err != nil {
		return err
	}
	return tx.Commit()
}

// Sheets は保存済みの全テーブル名を返します。
func (s *SheetStore) Sheets(ctx context.Context) ([]SheetInfo, error) {
	var out []SheetInfo
	if err := s.db.SelectContext(ctx, &out, `SELECT name, columns, row_count, updated_at FROM sheets ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	return out, nil
}

func (s *SheetStore) saveSheetInTx(ctx context.Context, tx *sqlx.Tx, name string, columns []string, rowCount int) error {
	encoded, err := json.Marshal(columns)
	if err != nil {
		return err
	}
	_, err = tx.NamedExecContext(ctx, upsertSheetQuery, SheetInfo{
		Name:      name,
		Columns:   string(encoded),
		RowCount:  rowCount,
		UpdatedAt: s.now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to save sheet %s: %w", name, err)
	}
	return nil
}

func insertRowsInTx(ctx context.Context, tx *sqlx.Tx, name string, t *table.Table, firstRow int) error {
	if t.Len() == 0 {
		return nil
	}
	stmt, err := tx.PrepareNamedContext(ctx, insertCellQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for sheet_cells: %w", err)
	}
	defer stmt.Close()

	columns := t.Columns()
	for i, r := range t.Rows() {
		for _, c := range columns {
			rec := encodeCell(name, firstRow+i, c, r.Get(c))
			if _, err := stmt.ExecContext(ctx, rec); err != nil {
				return fmt.Errorf("failed to insert cell %s[%d].%s: %w", name, firstRow+i, c, err)
			}
		}
	}
	return nil
}

func encodeCell(sheet string, rowNo int, col string, v table.Value) cellRecord {
	rec := cellRecord{Sheet: sheet, RowNo: rowNo, Col: col, Kind: int(v.Kind())}
	switch v.Kind() {
	case table.KindInt:
		i, _ := v.Int()
		rec.IntVal = sql.NullInt64{Int64: i, Valid: true}
	case table.KindFloat:
		f, _ := v.Float()
		rec.RealVal = sql.NullFloat64{Float64: f, Valid: true}
	case table.KindString, table.KindTime:
		rec.TextVal = sql.NullString{String: v.Text(), Valid: true}
	}
	return rec
}

func decodeCell(c cellRecord) table.Value {
	switch table.Kind(c.Kind) {
	case table.KindInt:
		return table.Int(c.IntVal.Int64)
	case table.KindFloat:
		return table.Float(c.RealVal.Float64)
	case table.KindString:
		return table.String(c.TextVal.String)
	case table.KindTime:
		if t, err := time.Parse(time.RFC3339, c.TextVal.String); err == nil {
			return table.Time(t)
		}
		return table.String(c.TextVal.String)
	}
	return table.Empty()
}

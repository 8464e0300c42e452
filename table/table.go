// C:\Users\wasab\OneDrive\デスクトップ\PORTION\table\table.go

// Package table はシート（名前付き列を持つ緩い型の行の並び）を表します。
package table

import "sort"

// Row は列名からセルへのマップです。無い列は Empty として読みます。
type Row map[string]Value

func (r Row) Get(column string) Value {
	return r[column]
}

func (r Row) Has(column string) bool {
	_, ok := r[column]
	return ok
}

func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

type Table struct {
	columns []string
	index   map[string]int
	rows    []Row
}

func New(columns ...string) *Table {
	t := &Table{index: make(map[string]int)}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// Columns は列順のコピーを返します。
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

func (t *Table) HasColumn(column string) bool {
	_, ok := t.index[column]
	return ok
}

// AddColumn はスキーマに無ければ column を追加します。
func (t *Table) AddColumn(column string) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if _, ok := t.index[column]; ok {
		return
	}
	t.index[column] = len(t.columns)
	t.columns = append(t.columns, column)
}

func (t *Table) Len() int {
	return len(t.rows)
}

// Rows は内部の行スライスを返します。呼び出し側で append してはいけません。
func (t *Table) Rows() []Row {
	return t.rows
}

func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Append は r を追加し、新しい列があればスキーマに加えます。
// 新しい列は名前順に追加し、スキーマの順序を決定的にします。
func (t *Table) Append(r Row) {
	var added []string
	for k := range r {
		if !t.HasColumn(k) {
			added = append(added, k)
		}
	}
	sort.Strings(added)
	for _, c := range added {
		t.AddColumn(c)
	}
	t.rows = append(t.rows, r)
}

// Filter は keep が受け入れた行だけを持つ同じスキーマのテーブルを返します。
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.columns...)
	for _, r := range t.rows {
		if keep(r) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// Concat は両方のスキーマを合わせ、t の行の後に other の行を続けたテーブルを返します。
func (t *Table) Concat(other *Table) *Table {
	out := New(t.columns...)
	out.rows = append(out.rows, t.rows...)
	if other == nil {
		return out
	}
	for _, c := range other.columns {
		out.AddColumn(c)
	}
	out.rows = append(out.rows, other.rows...)
	return out
}

func (t *Table) Clone() *Table {
	out := New(t.columns...)
	out.rows = make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		out.rows = append(out.rows, r.Clone())
	}
	return out
}

// Column は column の値を行順に返します。
func (t *Table) Column(column string) []Value {
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Get(column)
	}
	return out
}

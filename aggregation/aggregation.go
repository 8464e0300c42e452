// C:\Users\wasab\OneDrive\デスクトップ\PORTION\aggregation\aggregation.go

// Package aggregation は明細行をキー単位の台帳に集約します。
package aggregation

import (
	"fmt"

	"portion/apperr"
	"portion/table"
)

type ReduceOp int

const (
	First ReduceOp = iota
	Sum
	Min
)

func (op ReduceOp) String() string {
	switch op {
	case Sum:
		return "sum"
	case Min:
		return "min"
	default:
		return "first"
	}
}

// Spec は複合キーが同じ行を台帳上でどう畳み込むかを定義します。
type Spec struct {
	GroupKey []string
	// Reducers はFirst以外で集約する非キー列です。
	Reducers map[string]ReduceOp
	// BatchColumn は取り込み済みバッチIDを保持する列名です。
	// 既存行が同じバッチIDを持つ入力行はスキップします。
	BatchColumn string
	// BatchLimit は1行が保持するバッチIDの上限です（新しいものを残す）。
	// 0なら全て保持します。
	BatchLimit int
}

func (s Spec) reducerFor(column string) ReduceOp {
	if op, ok := s.Reducers[column]; ok {
		return op
	}
	return First
}

type group struct {
	key  string
	rows []table.Row
}

// Merge は incoming を existing に畳み込み、複合キーごとに1行にします。
// 両方のテーブルに無いキー列はキーから外します。
func Merge(existing, incoming *table.Table, spec Spec) (*table.Table, error) {
	if existing == nil {
		existing = table.New()
	}
	if incoming == nil {
		incoming = table.New()
	}

	combinedSchema := existing.Concat(table.New(incoming.Columns()...))
	keyColumns := presentKeys(combinedSchema, spec)
	if len(keyColumns) == 0 {
		if existing.Len()+incoming.Len() == 0 {
			return combinedSchema, nil
		}
		return nil, apperr.Newf(apperr.KindInternalAggregation,
			"none of the grouping columns %v exist in the table", spec.GroupKey)
	}
	// 1. 取り込み済みバッチの入力行を除外
	if spec.BatchColumn != "" {
		incoming = dropMergedBatches(existing, incoming, keyColumns, spec.BatchColumn)
	}
	combined := existing.Concat(incoming)

	// 2. 出現順に複合キーでグループ化
	var groups []*group
	byKey := make(map[string]*group)
	for _, r := range combined.Rows() {
		k := GroupKey(r, keyColumns)
		g, ok := byKey[k]
		if !ok {
			g = &group{key: k}
			byKey[k] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, r)
	}

	// 3. グループごとに列単位で集約
	isKey := make(map[string]bool, len(keyColumns))
	for _, c := range keyColumns {
		isKey[c] = true
	}
	out := table.New(combined.Columns()...)
	for _, g := range groups {
		row := make(table.Row, len(combined.Columns()))
		for _, c := range combined.Columns() {
			values := make([]table.Value, len(g.rows))
			for i, r := range g.rows {
				values[i] = r.Get(c)
			}
			if isKey[c] {
				row[c] = firstValue(values)
				continue
			}
			if c == spec.BatchColumn {
				row[c] = unionBatches(values, spec.BatchLimit)
				continue
			}
			v, err := reduce(spec.reducerFor(c), values)
			if err != nil {
				return nil, apperr.Wrap(apperr.KindInternalAggregation,
					fmt.Sprintf("cannot reduce column %s", c), err)
			}
			row[c] = v
		}
		out.Append(row)
	}
	return out, nil
}

func presentKeys(schema *table.Table, spec Spec) []string {
	var keyColumns []string
	for _, c := range spec.GroupKey {
		if schema.HasColumn(c) {
			keyColumns = append(keyColumns, c)
		}
	}
	return keyColumns
}

// Pending は Merge が実際に反映する入力行（既存行がまだ持たないバッチの行）を返します。
func Pending(existing, incoming *table.Table, spec Spec) *table.Table {
	if existing == nil || incoming == nil || spec.BatchColumn == "" {
		return incoming
	}
	keyColumns := presentKeys(existing.Concat(table.New(incoming.Columns()...)), spec)
	if len(keyColumns) == 0 {
		return incoming
	}
	return dropMergedBatches(existing, incoming, keyColumns, spec.BatchColumn)
}

// Reaggregate は集約済みテーブルに残った重複行をまとめ直します。
func Reaggregate(t *table.Table, spec Spec) (*table.Table, error) {
	return Merge(t, nil, spec)
}

func reduce(op ReduceOp, values []table.Value) (table.Value, error) {
	switch op {
	case Sum:
		return sumValues(values)
	case Min:
		return minValue(values)
	default:
		return firstValue(values), nil
	}
}

func dropMergedBatches(existing, incoming *table.Table, keyColumns []string, batchColumn string) *table.Table {
	merged := make(map[string]map[string]bool)
	for _, r := range existing.Rows() {
		ids := splitBatches(r.Get(batchColumn))
		if len(ids) == 0 {
			continue
		}
		k := GroupKey(r, keyColumns)
		if merged[k] == nil {
			merged[k] = make(map[string]bool)
		}
		for _, id := range ids {
			merged[k][id] = true
		}
	}
	if len(merged) == 0 {
		return incoming
	}
	return incoming.Filter(func(r table.Row) bool {
		id := r.Get(batchColumn).Text()
		if id == "" {
			return true
		}
		return !merged[GroupKey(r, keyColumns)][id]
	})
}

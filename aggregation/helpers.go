// C:\Users\wasab\OneDrive\デスクトップ\PORTION\aggregation\helpers.go
package aggregation

import (
	"fmt"
	"strings"

	"portion/table"
)

const batchSeparator = ";"

// GroupKey は r のキー列の値を連結したグループキーを返します。
func GroupKey(r table.Row, columns []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = r.Get(c).Key()
	}
	return strings.Join(parts, "|")
}

// firstValue は最初の空でない値を返します。
func firstValue(values []table.Value) table.Value {
	for _, v := range values {
		if !v.IsEmpty() {
			return v
		}
	}
	return table.Empty()
}

// sumValues は空でない値を合計します。全て空なら空のままです。
func sumValues(values []table.Value) (table.Value, error) {
	var intSum int64
	var floatSum float64
	allInts, seen := true, false
	for _, v := range values {
		if v.IsEmpty() {
			continue
		}
		seen = true
		if v.Kind() == table.KindInt {
			i, _ := v.Int()
			intSum += i
			floatSum += float64(i)
			continue
		}
		f, ok := v.Float()
		if !ok {
			return table.Empty(), fmt.Errorf("value %q is not numeric", v.Text())
		}
		allInts = false
		floatSum += f
	}
	switch {
	case !seen:
		return table.Empty(), nil
	case allInts:
		return table.Int(intSum), nil
	default:
		return table.Float(floatSum), nil
	}
}

// minValue は空でない値の最小値を選びます。数値は数値として、文字列は辞書順で比較し、
// 両者が混在する場合は比較できません。
func minValue(values []table.Value) (table.Value, error) {
	var best table.Value
	var bestNum float64
	found := false
	numeric, textual := 0, 0
	for _, v := range values {
		if v.IsEmpty() {
			continue
		}
		if f, ok := v.Float(); ok {
			numeric++
			if !found || f < bestNum {
				best, bestNum, found = v, f, true
			}
			continue
		}
		textual++
	}
	if numeric > 0 && textual > 0 {
		return table.Empty(), fmt.Errorf("mixed numeric and text values")
	}
	if textual > 0 {
		for _, v := range values {
			if v.IsEmpty() {
				continue
			}
			if !found || v.Text() < best.Text() {
				best, found = v, true
			}
		}
	}
	if !found {
		return table.Empty(), nil
	}
	return best, nil
}

func splitBatches(v table.Value) []string {
	text := v.Text()
	if text == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(text, batchSeparator) {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// unionBatches はグループ内のバッチIDを重複なく出現順に連結します。
// limit が正なら末尾の limit 件だけを残します。
func unionBatches(values []table.Value, limit int) table.Value {
	seen := make(map[string]bool)
	var ids []string
	for _, v := range values {
		for _, id := range splitBatches(v) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return table.Empty()
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}
	return table.String(strings.Join(ids, batchSeparator))
}

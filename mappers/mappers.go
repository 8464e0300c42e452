// C:\Users\wasab\OneDrive\デスクトップ\PORTION\mappers\mappers.go

// Package mappers は保存済みの行をクライアント向けの配列形式に変換します。
package mappers

import (
	"time"

	"portion/dates"
	"portion/model"
	"portion/table"
)

// Tuple はレスポンスの1行です。クライアントは位置で読みます。
type Tuple []interface{}

// RowMapper は loc で日付を整形して1行を変換します。
type RowMapper func(r table.Row, loc *time.Location) Tuple

// Tuples は t の全行を変換します。空のテーブルでも nil ではない空スライスを返します。
func Tuples(t *table.Table, fn RowMapper, loc *time.Location) []Tuple {
	out := make([]Tuple, 0, t.Len())
	for _, r := range t.Rows() {
		out = append(out, fn(r, loc))
	}
	return out
}

// DateText はエポック秒のセルを dd.mm.yyyy に整形します。文字列はそのまま、
// 空のセルは "" になります。
func DateText(v table.Value, loc *time.Location) string {
	if v.IsEmpty() {
		return ""
	}
	if epoch, ok := v.Epoch(); ok {
		return dates.Format(epoch, loc)
	}
	return v.Text()
}

func text(r table.Row, col string) string { return r.Get(col).Text() }
func num(r table.Row, col string) float64 { return model.FloatOf(r.Get(col)) }
func id(r table.Row, col string) int64    { return model.IntOf(r.Get(col)) }

// MainPurchTuple は20要素です。
func MainPurchTuple(r table.Row, loc *time.Location) Tuple {
	return Tuple{
		id(r, model.ColProdID),
		text(r, model.ColName),
		num(r, model.ColTotalVolume),
		text(r, model.ColUnit),
		num(r, model.ColTotalVolumeGr),
		num(r, model.ColKcal100g),
		num(r, model.ColProt100g),
		num(r, model.ColFat100g),
		num(r, model.ColCarb100g),
		DateText(r.Get(model.ColExpireDate), loc),
		text(r, model.ColTag),
		text(r, model.ColCat),
		text(r, model.ColStore),
		id(r, model.ColStoreID),
		DateText(r.Get(model.ColDate), loc),
		num(r, model.ColTotalCostPerCount),
		text(r, model.ColAddress),
		id(r, model.ColAddressID),
		text(r, model.ColUserID),
		id(r, model.ColFamilyID),
	}
}

// OtherPurchTuple は ExpireDate を除いた19要素です。
func OtherPurchTuple(r table.Row, loc *time.Location) Tuple {
	t := MainPurchTuple(r, loc)
	return append(t[:9:9], t[10:]...)
}

// AllPurchTuple は20要素です。食事区分の欄は常にゼロ値で、
// 行ごとの合計金額が無い場合は単価を使います。
func AllPurchTuple(r table.Row, loc *time.Location) Tuple {
	cost := r.Get(model.ColTotalCostPerCount)
	if cost.IsEmpty() {
		cost = r.Get(model.ColTotalCost)
	}
	return Tuple{
		id(r, model.ColProdID),
		text(r, model.ColName),
		num(r, model.ColVolume),
		text(r, model.ColUnit),
		num(r, model.ColVolumeGr),
		num(r, model.ColKcal100g),
		num(r, model.ColProt100g),
		num(r, model.ColFat100g),
		num(r, model.ColCarb100g),
		DateText(r.Get(model.ColExpireDate), loc),
		text(r, model.ColTag),
		text(r, model.ColCat),
		text(r, model.ColStore),
		id(r, model.ColStoreID),
		DateText(r.Get(model.ColDate), loc),
		0,
		"",
		model.FloatOf(cost),
		text(r, model.ColAddress),
		id(r, model.ColAddressID),
	}
}

// RationTuple は UserID までの食事記録列、22要素です。
func RationTuple(r table.Row, loc *time.Location) Tuple {
	return Tuple{
		id(r, model.ColProdID),
		text(r, model.ColName),
		num(r, model.ColVolume),
		text(r, model.ColUnit),
		num(r, model.ColVolumeGr),
		num(r, model.ColKcal100g),
		num(r, model.ColProt100g),
		num(r, model.ColFat100g),
		num(r, model.ColCarb100g),
		DateText(r.Get(model.ColExpireDate), loc),
		text(r, model.ColTag),
		text(r, model.ColCat),
		id(r, model.ColMealID),
		text(r, model.ColMealName),
		DateText(r.Get(model.ColRationDate), loc),
		num(r, model.ColVolumeServ),
		num(r, model.ColVolumeServGr),
		num(r, model.ColKcalServ),
		num(r, model.ColProtServ),
		num(r, model.ColFatServ),
		num(r, model.ColCarbServ),
		text(r, model.ColUserID),
	}
}

// RationDateIndex は RationTuple 内の整形済み RationDate の位置です。
const RationDateIndex = 14

// GroupByDate は食事記録を整形済みの日付ごとにまとめます。
func GroupByDate(tuples []Tuple) map[string][]Tuple {
	out := make(map[string][]Tuple)
	for _, t := range tuples {
		day, _ := t[RationDateIndex].(string)
		out[day] = append(out[day], t)
	}
	return out
}

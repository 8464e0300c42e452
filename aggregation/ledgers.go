// C:\Users\wasab\OneDrive\デスクトップ\PORTION\aggregation\ledgers.go
package aggregation

import (
	"portion/model"
	"portion/table"
)

// LedgerBatchLimit は台帳1行が記憶する注文IDの件数です。
// これより古い注文の再送は検出できません。UUID 200件ならxlsxセルの
// 上限32767文字に十分収まります。
const LedgerBatchLimit = 200

func ledgerReducers(minColumns ...string) map[string]ReduceOp {
	reducers := map[string]ReduceOp{
		model.ColVolume:            Sum,
		model.ColVolumeGr:          Sum,
		model.ColCount:             Sum,
		model.ColTotalVolume:       Sum,
		model.ColTotalVolumeGr:     Sum,
		model.ColTotalCostPerCount: Sum,
		model.ColTotalCost:         Sum,
		model.ColExpireDate:        Min,
	}
	for _, c := range minColumns {
		reducers[c] = Min
	}
	return reducers
}

// MainPurchSpec はメイン店舗の累計を商品と所有者単位で集約します。
// 購入日は最も古いものを採用します。
func MainPurchSpec() Spec {
	return Spec{
		GroupKey:    []string{model.ColProdID, model.ColUserID, model.ColFamilyID},
		Reducers:    ledgerReducers(model.ColDate),
		BatchColumn: model.ColOrderID,
		BatchLimit:  LedgerBatchLimit,
	}
}

// OtherPurchSpec は商品・所有者・店舗・日付ごとに1件の購入として集約します。
func OtherPurchSpec() Spec {
	return Spec{
		GroupKey:    []string{model.ColProdID, model.ColUserID, model.ColFamilyID, model.ColStoreID, model.ColDate},
		Reducers:    ledgerReducers(),
		BatchColumn: model.ColOrderID,
		BatchLimit:  LedgerBatchLimit,
	}
}

// DropZeroVolume はグラム数が0になった行を削除します。
// グラム数が数値でない行は残します。
func DropZeroVolume(t *table.Table) *table.Table {
	return t.Filter(func(r table.Row) bool {
		v := r.Get(model.ColTotalVolumeGr)
		if v.IsEmpty() {
			return true
		}
		f, ok := v.Float()
		return !ok || f > 0
	})
}

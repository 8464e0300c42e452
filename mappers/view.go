// C:\Users\wasab\OneDrive\デスクトップ\PORTION\mappers\view.go
package mappers

import (
	"portion/model"
	"portion/stores"
)

// ProductView は商品検索で返すカタログ項目です。
type ProductView struct {
	ID int64 `json:"id"`
	model.Product
}

// ToProductView はカタログ行に店舗名が無い場合に表示名を補います。
func ToProductView(p model.Product) ProductView {
	if p.Store == "" {
		p.Store = stores.ResolveName(p.StoreID)
	}
	return ProductView{ID: p.ProdID, Product: p}
}

func ToProductViews(products []model.Product) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, ToProductView(p))
	}
	return out
}

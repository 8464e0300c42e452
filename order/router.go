// C:\Users\wasab\OneDrive\デスクトップ\PORTION\order\router.go
package order

import (
	"fmt"

	"github.com/shopspring/decimal"

	"portion/model"
	"portion/stores"
	"portion/table"
)

// Routed は反映先の台帳ごとに振り分けたカートです。
// Main と Other の項目は全て All にも含まれます。
type Routed struct {
	All     *table.Table
	Main    *table.Table
	Other   *table.Table
	Skipped []int64
}

// Catalog は商品行を ProdID で引けるようにします。同じIDは最初の行を採用します。
type Catalog struct {
	rows map[string]table.Row
}

func NewCatalog(t *table.Table) *Catalog {
	c := &Catalog{rows: make(map[string]table.Row, t.Len())}
	for _, r := range t.Rows() {
		k := r.Get(model.ColProdID).Key()
		if _, seen := c.rows[k]; !seen {
			c.rows[k] = r
		}
	}
	return c
}

func (c *Catalog) Lookup(prodID int64) (model.Product, bool) {
	r, ok := c.rows[table.Int(prodID).Key()]
	if !ok {
		return model.Product{}, false
	}
	p := model.ProductFromRow(r)
	p.ProdID = prodID
	return p, true
}

// Route はカートの各項目をカタログで解決し、店舗で振り分けます。
// StoreID 1 は Main、それ以外は Other です。カタログに無い商品はスキップします。
func Route(o model.Order, catalog *Catalog) Routed {
	routed := Routed{
		All:   model.NewLedgerTable(),
		Main:  model.NewLedgerTable(),
		Other: model.NewLedgerTable(),
	}
	for _, item := range o.Items {
		p, ok := catalog.Lookup(item.ProdID)
		if !ok {
			routed.Skipped = append(routed.Skipped, item.ProdID)
			continue
		}
		r := Project(p, o, item.Quantity).Row()
		routed.All.Append(r)
		if p.StoreID == model.DefaultStoreID {
			routed.Main.Append(r.Clone())
		} else {
			routed.Other.Append(r.Clone())
		}
	}
	return routed
}

// Project はカタログのスナップショットと数量から台帳行を作ります。
// 単位あたりの項目はそのまま、Total* 系に数量を掛けます。
func Project(p model.Product, o model.Order, quantity int64) model.LedgerRow {
	if p.Store == "" {
		p.Store = stores.ResolveName(p.StoreID)
	}
	qty := decimal.NewFromInt(quantity)
	costPerCount, _ := decimal.NewFromFloat(p.TotalCost).Mul(qty).Round(2).Float64()

	return model.LedgerRow{
		Product:           p,
		Date:              o.Date,
		FamilyID:          o.FamilyID,
		Address:           fmt.Sprintf("Адрес %d", o.AddressID),
		AddressID:         o.AddressID,
		UserID:            o.UserID,
		Count:             quantity,
		TotalVolume:       p.Volume * float64(quantity),
		TotalVolumeGr:     p.VolumeGr * float64(quantity),
		TotalCostPerCount: costPerCount,
		OrderID:           o.ID,
	}
}

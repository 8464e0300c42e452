// C:\Users\wasab\OneDrive\デスクトップ\PORTION\model\product_types.go
package model

import (
	"strings"

	"portion/table"
)

const DefaultUnit = "шт"

// Product はカタログのスナップショット（100gあたりの栄養素、単価、店舗）です。
type Product struct {
	ProdID    int64   `json:"prod_id"`
	Name      string  `json:"name"`
	Volume    float64 `json:"volume"`
	Unit      string  `json:"unit"`
	VolumeGr  float64 `json:"volume_gr"`
	Kcal100g  float64 `json:"kcal100g"`
	Prot100g  float64 `json:"prot100g"`
	Fat100g   float64 `json:"fat100g"`
	Carb100g  float64 `json:"carb100g"`
	Tag       string  `json:"tag"`
	Cat       string  `json:"cat"`
	TotalCost float64 `json:"total_cost"`
	StoreID   int64   `json:"store_id"`
	Store     string  `json:"store"`
}

// ProductFromRow はカタログ行を読み込みます。欠けた数値は0、
// 欠けた・不正な StoreID は DefaultStoreID になります。
func ProductFromRow(r table.Row) Product {
	p := Product{
		ProdID:    IntOf(r.Get(ColProdID)),
		Name:      strings.TrimSpace(r.Get(ColName).Text()),
		Volume:    FloatOf(r.Get(ColVolume)),
		Unit:      strings.TrimSpace(r.Get(ColUnit).Text()),
		VolumeGr:  FloatOf(r.Get(ColVolumeGr)),
		Kcal100g:  FloatOf(r.Get(ColKcal100g)),
		Prot100g:  FloatOf(r.Get(ColProt100g)),
		Fat100g:   FloatOf(r.Get(ColFat100g)),
		Carb100g:  FloatOf(r.Get(ColCarb100g)),
		Tag:       strings.TrimSpace(r.Get(ColTag).Text()),
		Cat:       strings.TrimSpace(r.Get(ColCat).Text()),
		TotalCost: FloatOf(r.Get(ColTotalCost)),
		StoreID:   StoreIDOf(r.Get(ColStoreID)),
		Store:     strings.TrimSpace(r.Get(ColStore).Text()),
	}
	if p.Unit == "" {
		p.Unit = DefaultUnit
	}
	return p
}

// Row は商品をカタログの列構成で書き出します。
func (p Product) Row() table.Row {
	return table.Row{
		ColProdID:    table.Int(p.ProdID),
		ColName:      table.String(p.Name),
		ColVolume:    table.Float(p.Volume),
		ColUnit:      table.String(p.Unit),
		ColVolumeGr:  table.Float(p.VolumeGr),
		ColKcal100g:  table.Float(p.Kcal100g),
		ColProt100g:  table.Float(p.Prot100g),
		ColFat100g:   table.Float(p.Fat100g),
		ColCarb100g:  table.Float(p.Carb100g),
		ColTag:       table.String(p.Tag),
		ColCat:       table.String(p.Cat),
		ColTotalCost: table.Float(p.TotalCost),
		ColStoreID:   table.Int(p.StoreID),
		ColStore:     table.String(p.Store),
	}
}

// FloatOf は数値セルを読みます。空や数値でなければ0です。
func FloatOf(v table.Value) float64 {
	f, _ := v.Float()
	return f
}

// IntOf は整数セルを読みます。空や数値でなければ0です。
func IntOf(v table.Value) int64 {
	i, _ := v.Int()
	return i
}

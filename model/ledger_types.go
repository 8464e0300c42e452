// C:\Users\wasab\OneDrive\デスクトップ\PORTION\model\ledger_types.go
package model

import "portion/table"

// テーブル名
const (
	TableAllPurch   = "AllPurch"
	TableMainPurch  = "MainPurch"
	TableOtherPurch = "OtherPurch"
	TableRationInfo = "RationInfo"
	TableProducts   = "Products"
	TableProdLinks  = "ProdLinks"
)

// 台帳・カタログの列名
const (
	ColProdID            = "ProdID"
	ColName              = "Name"
	ColVolume            = "Volume"
	ColUnit              = "Unit"
	ColVolumeGr          = "VolumeGr"
	ColKcal100g          = "Kcal100g"
	ColProt100g          = "Prot100g"
	ColFat100g           = "Fat100g"
	ColCarb100g          = "Carb100g"
	ColExpireDate        = "ExpireDate"
	ColTag               = "Tag"
	ColCat               = "Cat"
	ColStore             = "Store"
	ColStoreID           = "StoreID"
	ColDate              = "Date"
	ColFamilyID          = "FamilyID"
	ColTotalCost         = "TotalCost"
	ColAddress           = "Address"
	ColAddressID         = "AddressID"
	ColUserID            = "UserID"
	ColCount             = "Count"
	ColTotalVolume       = "TotalVolume"
	ColTotalVolumeGr     = "TotalVolumeGr"
	ColTotalCostPerCount = "TotalCostPerCount"
	ColOrderID           = "OrderID"
	ColProductURL        = "ProductURL"
)

// LedgerColumns は購入台帳の列順です。
var LedgerColumns = []string{
	ColProdID, ColName, ColVolume, ColUnit, ColVolumeGr,
	ColKcal100g, ColProt100g, ColFat100g, ColCarb100g,
	ColExpireDate, ColTag, ColCat, ColStore, ColStoreID, ColDate,
	ColFamilyID, ColTotalCost, ColAddress, ColAddressID, ColUserID,
	ColCount, ColTotalVolume, ColTotalVolumeGr, ColTotalCostPerCount, ColOrderID,
}

// DefaultStoreID はメイン店舗です。解釈できない店舗IDもこれになります。
const DefaultStoreID int64 = 1

// LedgerRow はカートの1項目を台帳形式にしたものです。
type LedgerRow struct {
	Product
	ExpireDate        *int64
	Date              int64
	FamilyID          int64
	Address           string
	AddressID         int64
	UserID            string
	Count             int64
	TotalVolume       float64
	TotalVolumeGr     float64
	TotalCostPerCount float64
	OrderID           string
}

func (l LedgerRow) Row() table.Row {
	expire := table.Empty()
	if l.ExpireDate != nil {
		expire = table.Int(*l.ExpireDate)
	}
	return table.Row{
		ColProdID:            table.Int(l.ProdID),
		ColName:              table.String(l.Name),
		ColVolume:            table.Float(l.Volume),
		ColUnit:              table.String(l.Unit),
		ColVolumeGr:          table.Float(l.VolumeGr),
		ColKcal100g:          table.Float(l.Kcal100g),
		ColProt100g:          table.Float(l.Prot100g),
		ColFat100g:           table.Float(l.Fat100g),
		ColCarb100g:          table.Float(l.Carb100g),
		ColExpireDate:        expire,
		ColTag:               table.String(l.Tag),
		ColCat:               table.String(l.Cat),
		ColStore:             table.String(l.Store),
		ColStoreID:           table.Int(l.StoreID),
		ColDate:              table.Int(l.Date),
		ColFamilyID:          table.Int(l.FamilyID),
		ColTotalCost:         table.Float(l.TotalCost),
		ColAddress:           table.String(l.Address),
		ColAddressID:         table.Int(l.AddressID),
		ColUserID:            table.String(l.UserID),
		ColCount:             table.Int(l.Count),
		ColTotalVolume:       table.Float(l.TotalVolume),
		ColTotalVolumeGr:     table.Float(l.TotalVolumeGr),
		ColTotalCostPerCount: table.Float(l.TotalCostPerCount),
		ColOrderID:           table.String(l.OrderID),
	}
}

// NewLedgerTable は台帳スキーマの空テーブルを返します。
func NewLedgerTable() *table.Table {
	return table.New(LedgerColumns...)
}

// NormalizeLedger は保存済み台帳を現在のスキーマに揃えます。
// 全ての台帳列を追加し、全行に UserID と FamilyID を持たせます。
func NormalizeLedger(t *table.Table) *table.Table {
	out := NewLedgerTable().Concat(t.Clone())
	for _, r := range out.Rows() {
		if r.Get(ColUserID).Kind() == table.KindEmpty {
			r[ColUserID] = table.String("")
		}
		if r.Get(ColFamilyID).IsEmpty() {
			r[ColFamilyID] = table.Int(0)
		}
	}
	return out
}

// StoreIDOf はセルを店舗IDとして解釈します。既定は DefaultStoreID です。
func StoreIDOf(v table.Value) int64 {
	if v.IsEmpty() {
		return DefaultStoreID
	}
	id, ok := v.Int()
	if !ok {
		return DefaultStoreID
	}
	return id
}

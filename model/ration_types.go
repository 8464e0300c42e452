// C:\Users\wasab\OneDrive\デスクトップ\PORTION\model\ration_types.go
package model

import "portion/table"

// 商品スナップショット以外の食事記録列
const (
	ColMealID       = "MealID"
	ColMealName     = "MealName"
	ColRationDate   = "RationDate"
	ColVolumeServ   = "VolumeServ"
	ColVolumeServGr = "VolumeServGr"
	ColKcalServ     = "KcalServ"
	ColProtServ     = "ProtServ"
	ColFatServ      = "FatServ"
	ColCarbServ     = "CarbServ"
	ColCreatedAt    = "CreatedAt"
	ColEntryID      = "EntryID"
)

var RationColumns = []string{
	ColProdID, ColName, ColVolume, ColUnit, ColVolumeGr,
	ColKcal100g, ColProt100g, ColFat100g, ColCarb100g,
	ColExpireDate, ColTag, ColCat, ColMealID, ColMealName, ColRationDate,
	ColVolumeServ, ColVolumeServGr, ColKcalServ, ColProtServ, ColFatServ, ColCarbServ,
	ColUserID, ColCreatedAt, ColEntryID,
}

// RationRequiredFields は食事記録追加で必須のリクエスト項目です。
var RationRequiredFields = []string{
	"prod_id", "name", "volume", "unit", "volume_gr",
	"kcal100g", "prot100g", "fat100g", "carb100g",
	"meal_id", "meal_name", "ration_date",
	"volume_serv", "volume_serv_gr", "kcal_serv", "prot_serv", "fat_serv", "carb_serv",
	"user_id",
}

type RationRequest struct {
	ProdID       FlexString `json:"prod_id"`
	Name         string     `json:"name"`
	Volume       FlexFloat  `json:"volume"`
	Unit         string     `json:"unit"`
	VolumeGr     FlexFloat  `json:"volume_gr"`
	Kcal100g     FlexFloat  `json:"kcal100g"`
	Prot100g     FlexFloat  `json:"prot100g"`
	Fat100g      FlexFloat  `json:"fat100g"`
	Carb100g     FlexFloat  `json:"carb100g"`
	Tag          string     `json:"tag"`
	Cat          string     `json:"cat"`
	ExpireDate   string     `json:"expire_date"`
	MealID       FlexString `json:"meal_id"`
	MealName     string     `json:"meal_name"`
	RationDate   string     `json:"ration_date"`
	VolumeServ   FlexFloat  `json:"volume_serv"`
	VolumeServGr FlexFloat  `json:"volume_serv_gr"`
	KcalServ     FlexFloat  `json:"kcal_serv"`
	ProtServ     FlexFloat  `json:"prot_serv"`
	FatServ      FlexFloat  `json:"fat_serv"`
	CarbServ     FlexFloat  `json:"carb_serv"`
	UserID       FlexString `json:"user_id"`
}

// RationEntry は1回の食事記録です。日付はエポック秒です。
type RationEntry struct {
	EntryID      string  `json:"entry_id"`
	ProdID       int64   `json:"prod_id"`
	Name         string  `json:"name"`
	Volume       float64 `json:"volume"`
	Unit         string  `json:"unit"`
	VolumeGr     float64 `json:"volume_gr"`
	Kcal100g     float64 `json:"kcal100g"`
	Prot100g     float64 `json:"prot100g"`
	Fat100g      float64 `json:"fat100g"`
	Carb100g     float64 `json:"carb100g"`
	ExpireDate   *int64  `json:"expire_date,omitempty"`
	Tag          string  `json:"tag"`
	Cat          string  `json:"cat"`
	MealID       int64   `json:"meal_id"`
	MealName     string  `json:"meal_name"`
	RationDate   int64   `json:"ration_date"`
	VolumeServ   float64 `json:"volume_serv"`
	VolumeServGr float64 `json:"volume_serv_gr"`
	KcalServ     float64 `json:"kcal_serv"`
	ProtServ     float64 `json:"prot_serv"`
	FatServ      float64 `json:"fat_serv"`
	CarbServ     float64 `json:"carb_serv"`
	UserID       string  `json:"user_id"`
	CreatedAt    int64   `json:"created_at"`
}

func (e RationEntry) Row() table.Row {
	expire := table.Empty()
	if e.ExpireDate != nil {
		expire = table.Int(*e.ExpireDate)
	}
	return table.Row{
		ColProdID:       table.Int(e.ProdID),
		ColName:         table.String(e.Name),
		ColVolume:       table.Float(e.Volume),
		ColUnit:         table.String(e.Unit),
		ColVolumeGr:     table.Float(e.VolumeGr),
		ColKcal100g:     table.Float(e.Kcal100g),
		ColProt100g:     table.Float(e.Prot100g),
		ColFat100g:      table.Float(e.Fat100g),
		ColCarb100g:     table.Float(e.Carb100g),
		ColExpireDate:   expire,
		ColTag:          table.String(e.Tag),
		ColCat:          table.String(e.Cat),
		ColMealID:       table.Int(e.MealID),
		ColMealName:     table.String(e.MealName),
		ColRationDate:   table.Int(e.RationDate),
		ColVolumeServ:   table.Float(e.VolumeServ),
		ColVolumeServGr: table.Float(e.VolumeServGr),
		ColKcalServ:     table.Float(e.KcalServ),
		ColProtServ:     table.Float(e.ProtServ),
		ColFatServ:      table.Float(e.FatServ),
		ColCarbServ:     table.Float(e.CarbServ),
		ColUserID:       table.String(e.UserID),
		ColCreatedAt:    table.Int(e.CreatedAt),
		ColEntryID:      table.String(e.EntryID),
	}
}

type RationDateQuery struct {
	RationDate string     `json:"ration_date"`
	UserID     FlexString `json:"user_id"`
}

type RationRangeQuery struct {
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	UserID    FlexString `json:"user_id"`
}

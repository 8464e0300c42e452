// C:\Users\wasab\OneDrive\デスクトップ\PORTION\model\order_types.go
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexString はJSONの文字列・数値の両方を受け付けます（IDはどちらでも届くため）。
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string { return string(s) }

// Int はIDを整数として解釈します。"3.0" も受け付けます。
func (s FlexString) Int() (int64, error) {
	if i, err := strconv.ParseInt(string(s), 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(string(s), 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("%q is not an integer", string(s))
	}
	return int64(f), nil
}

// FlexFloat はJSONの数値または数値文字列を受け付けます。
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		v = strings.TrimSpace(v)
		if v == "" {
			*f = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", v)
		}
		*f = FlexFloat(parsed)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

type CartItem struct {
	ProdID   FlexString `json:"prod_id"`
	Quantity *FlexFloat `json:"quantity"`
}

type OrderRequest struct {
	FamilyID  FlexString `json:"family_id"`
	AddressID FlexString `json:"address_id"`
	OrderDate string     `json:"order_date"`
	UserID    FlexString `json:"user_id"`
	Items     []CartItem `json:"items"`
}

// OrderItem は検証済みのカート項目です。
type OrderItem struct {
	ProdID   int64
	Quantity int64
}

// Order は所有者付きの検証済みカートです。
type Order struct {
	ID        string
	FamilyID  int64
	AddressID int64
	UserID    string
	Date      int64
	Items     []OrderItem
}

type OrderResult struct {
	OrderID      string  `json:"order_id"`
	AllSaved     int     `json:"all_saved"`
	MainUpdated  int     `json:"main_updated"`
	OtherSaved   int     `json:"other_saved"`
	TotalItems   int     `json:"total_items"`
	SkippedItems []int64 `json:"skipped_items"`
	UserID       string  `json:"user_id"`
}

type PurchQuery struct {
	FamilyID FlexString `json:"family_id"`
	UserID   FlexString `json:"user_id"`
}

type AllPurchQuery struct {
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	UserID      FlexString `json:"user_id"`
	FamilyID    FlexString `json:"family_id"`
	UserAccType FlexString `json:"user_acc_type"`
}

type UpdateMainRequest struct {
	ProdID      FlexString `json:"prod_id"`
	FamilyID    FlexString `json:"family_id"`
	UserID      FlexString `json:"user_id"`
	NewVolumeGr FlexFloat  `json:"new_volume_gr"`
	NewVolume   FlexFloat  `json:"new_volume"`
}

type UpdateOtherRequest struct {
	UpdateMainRequest
	StoreID   FlexString `json:"store_id"`
	OrderDate string     `json:"order_date"`
}

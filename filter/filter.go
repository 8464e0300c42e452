// C:\Users\wasab\OneDrive\デスクトップ\PORTION\filter\filter.go

// Package filter は台帳・食事記録の行を所有者と日付で絞り込みます。
package filter

import (
	"strings"
	"time"

	"portion/apperr"
	"portion/dates"
	"portion/model"
	"portion/table"
)

type Account int

const (
	Personal Account = iota
	Family
)

func (a Account) String() string {
	if a == Personal {
		return "personal"
	}
	return "family"
}

// Identity は問い合わせ対象の所有者です。個人アカウントは FamilyID 0 です。
type Identity struct {
	UserID   string
	FamilyID int64
	Account  Account
}

// IdentityFromIDs は送られたIDからアカウント種別を判定します。
// family_id が "0" でユーザーIDがあれば個人、それ以外は家族です。
func IdentityFromIDs(userID, familyID string) (Identity, error) {
	userID = strings.TrimSpace(userID)
	familyID = strings.TrimSpace(familyID)

	switch {
	case familyID == "" && userID == "":
		return Identity{}, apperr.Invalid("Either family_id or user_id is required")
	case familyID == "0" && userID != "":
		return Identity{UserID: userID, Account: Personal}, nil
	case familyID == "0":
		return Identity{}, apperr.Invalid("Personal account (family_id=0) requires user_id")
	case familyID != "":
		fid, err := parseFamilyID(familyID)
		if err != nil {
			return Identity{}, err
		}
		return Identity{UserID: userID, FamilyID: fid, Account: Family}, nil
	}
	return Identity{}, apperr.Invalid("Invalid request parameters: family_id is required")
}

// IdentityForAccount は明示されたアカウント種別から Identity を作ります。
// 0 は個人、それ以外は家族アカウントです。
func IdentityForAccount(userID, familyID string, accountType int64) (Identity, error) {
	if accountType == 0 {
		return Identity{UserID: strings.TrimSpace(userID), Account: Personal}, nil
	}
	fid, err := parseFamilyID(familyID)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: strings.TrimSpace(userID), FamilyID: fid, Account: Family}, nil
}

func parseFamilyID(familyID string) (int64, error) {
	fid, err := model.FlexString(strings.TrimSpace(familyID)).Int()
	if err != nil {
		return 0, apperr.Invalid("Invalid family_id format: %s", familyID)
	}
	return fid, nil
}

// ByIdentity は id が所有する行だけを残します。
//
// 個人: UserID が一致し FamilyID が数値で0の行。FamilyID 列が無ければ
// UserID のみ比較します。UserID 列が無い場合は MissingColumn になります。
//
// 家族: FamilyID が一致する行。FamilyID 列が無ければ何も一致しません。
func ByIdentity(t *table.Table, tableName string, id Identity) (*table.Table, error) {
	if id.Account == Personal {
		if !t.HasColumn(model.ColUserID) {
			return nil, apperr.MissingColumn(tableName, model.ColUserID)
		}
		user := table.String(id.UserID)
		if !t.HasColumn(model.ColFamilyID) {
			return t.Filter(func(r table.Row) bool {
				return r.Get(model.ColUserID).Equal(user)
			}), nil
		}
		return t.Filter(func(r table.Row) bool {
			return r.Get(model.ColUserID).Equal(user) && familyIs(r, 0)
		}), nil
	}

	if !t.HasColumn(model.ColFamilyID) {
		return table.New(t.Columns()...), nil
	}
	return t.Filter(func(r table.Row) bool {
		return familyIs(r, id.FamilyID)
	}), nil
}

func familyIs(r table.Row, familyID int64) bool {
	f, ok := r.Get(model.ColFamilyID).Float()
	return ok && f == float64(familyID)
}

// ByUser は UserID が userID と等しい行を残します。
func ByUser(t *table.Table, tableName, userID string) (*table.Table, error) {
	if !t.HasColumn(model.ColUserID) {
		return nil, apperr.MissingColumn(tableName, model.ColUserID)
	}
	user := table.String(strings.TrimSpace(userID))
	return t.Filter(func(r table.Row) bool {
		return r.Get(model.ColUserID).Equal(user)
	}), nil
}

// ByDateRange は column のエポック秒が [from, to] に入る行を残します。
// 空や数値でない日付は一致しません。
func ByDateRange(t *table.Table, tableName, column string, from, to int64) (*table.Table, error) {
	if !t.HasColumn(column) {
		return nil, apperr.MissingColumn(tableName, column)
	}
	lo, hi := float64(from), float64(to)
	return t.Filter(func(r table.Row) bool {
		v := r.Get(column)
		if v.IsEmpty() {
			return false
		}
		ts, ok := v.Float()
		return ok && ts >= lo && ts <= hi
	}), nil
}

// ByDay は column のエポック秒が loc で day と同じ日付の行を残します。
// 列が無いテーブルは0件になります。
func ByDay(t *table.Table, column string, day time.Time, loc *time.Location) *table.Table {
	return t.Filter(func(r table.Row) bool {
		ts, ok := r.Get(column).Epoch()
		return ok && dates.SameDay(ts, day, loc)
	})
}

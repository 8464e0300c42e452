// C:\Users\wasab\OneDrive\デスクトップ\PORTION\dates\dates.go

// Package dates はクライアントとやり取りする dd.mm.yyyy 形式の日付を扱います。
package dates

import (
	"strings"
	"time"

	"portion/apperr"
)

const Layout = "02.01.2006"

// Parse は dd.mm.yyyy を loc の0時として読み込みます。
func Parse(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, apperr.Invalid("Invalid date format: %q. Use dd.mm.yyyy", s)
	}
	return t, nil
}

// EndOfDay は t と同じ日の 23:59:59 を返します。
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// Range は開始日・終了日をエポック秒の範囲（両端含む）に変換します。
// 終了側は終了日の 23:59:59 までを含みます。
func Range(start, end string, loc *time.Location) (from, to int64, err error) {
	s, err := Parse(start, loc)
	if err != nil {
		return 0, 0, err
	}
	e, err := Parse(end, loc)
	if err != nil {
		return 0, 0, err
	}
	if s.After(e) {
		return 0, 0, apperr.Invalid("Start date must be earlier than or equal to end date")
	}
	return s.Unix(), EndOfDay(e).Unix(), nil
}

func Format(epoch int64, loc *time.Location) string {
	return time.Unix(epoch, 0).In(loc).Format(Layout)
}

// SameDay は epoch が loc で day と同じ日付かどうかを返します。
func SameDay(epoch int64, day time.Time, loc *time.Location) bool {
	y1, m1, d1 := time.Unix(epoch, 0).In(loc).Date()
	y2, m2, d2 := day.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Location は設定のタイムゾーン名を解決します。"" と "Local" はホストのゾーンです。
func Location(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

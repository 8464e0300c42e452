// C:\Users\wasab\OneDrive\デスクトップ\PORTION\table\value.go
package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type Kind uint8

const (
	KindEmpty Kind = iota
	KindInt
	KindFloat
	KindString
	KindTime
)

// Value は緩い型の1セルです。
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	t    time.Time
}

func Empty() Value              { return Value{} }
func Int(v int64) Value         { return Value{kind: KindInt, i: v} }
func Float(v float64) Value     { return Value{kind: KindFloat, f: v} }
func String(v string) Value     { return Value{kind: KindString, s: v} }
func Time(v time.Time) Value    { return Value{kind: KindTime, t: v} }
func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// IsEmpty はセルが無いか空文字かを返します。
func (v Value) IsEmpty() bool {
	return v.kind == KindEmpty || (v.kind == KindString && v.s == "")
}

// Float は値を数値に変換します。数値文字列も受け付けます。
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	case KindTime:
		return float64(v.t.Unix()), true
	}
	return 0, false
}

// Int は値を整数に変換します。小数は切り捨てます。
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindTime:
		return v.t.Unix(), true
	}
	f, ok := v.Float()
	if !ok || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

// Epoch は値をエポック秒として返します。
func (v Value) Epoch() (int64, bool) {
	if v.IsEmpty() {
		return 0, false
	}
	return v.Int()
}

func (v Value) Text() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	case KindTime:
		return v.t.Format(time.RFC3339)
	}
	return ""
}

// Interface はJSONに変換しやすいGoの値を返します。
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindTime:
		return v.t
	}
	return nil
}

// Key はグループ化に使う値の識別子です。5, 5.0, "5" は同じキーです。
// 表計算系の保存先はセルの型を失うため、数値文字列は数値として扱います。
func (v Value) Key() string {
	switch v.kind {
	case KindEmpty:
		return "\x00"
	case KindTime:
		return "n:" + strconv.FormatInt(v.t.Unix(), 10)
	}
	if f, ok := v.Float(); ok {
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	return "s:" + v.s
}

// Equal は2つのセルをグループ化の識別子で比較します。
func (v Value) Equal(o Value) bool {
	return v.Key() == o.Key()
}

// Parse は表計算やCSVのセル文字列から型付きの値を推定します。
func Parse(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Empty()
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Float(f)
	}
	if strings.EqualFold(trimmed, "nan") {
		return Empty()
	}
	return String(s)
}

// FromInterface はデコード済みJSONやGoのスカラー値を Value に変換します。
func FromInterface(x interface{}) Value {
	switch v := x.(type) {
	case nil:
		return Empty()
	case Value:
		return v
	case int:
		return Int(int64(v))
	case int64:
		return Int(v)
	case int32:
		return Int(int64(v))
	case float64:
		return Float(v)
	case float32:
		return Float(float64(v))
	case string:
		return String(v)
	case bool:
		if v {
			return Int(1)
		}
		return Int(0)
	case time.Time:
		return Time(v)
	}
	return Empty()
}

// C:\Users\wasab\OneDrive\デスクトップ\PORTION\apperr\apperr.go

// Package apperr はAPI利用者に返すエラー種別を定義します。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind string

const (
	KindMissingField        Kind = "missing_field"
	KindMissingColumn       Kind = "missing_column"
	KindInvalidArgument     Kind = "invalid_argument"
	KindNotFound            Kind = "not_found"
	KindInternalAggregation Kind = "internal_aggregation"
	KindInternal            Kind = "internal"
)

// Error は利用者向けメッセージを持つ業務エラーです。
type Error struct {
	Kind    Kind
	Message string
	// Fields は Missing* 系で欠けている項目・列の一覧です。
	Fields []string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// MissingFields は欠けているリクエスト項目をまとめて報告します。
func MissingFields(fields []string) *Error {
	return &Error{
		Kind:    KindMissingField,
		Message: "Missing required fields: " + strings.Join(fields, ", "),
		Fields:  append([]string(nil), fields...),
	}
}

func MissingColumn(table, column string) *Error {
	return &Error{
		Kind:    KindMissingColumn,
		Message: fmt.Sprintf("%s column not found in %s", column, table),
		Fields:  []string{column},
	}
}

func NotFound(format string, args ...interface{}) *Error {
	return Newf(KindNotFound, format, args...)
}

func Invalid(format string, args ...interface{}) *Error {
	return Newf(KindInvalidArgument, format, args...)
}

// KindOf はチェーン内で最初の *Error の種別を返します。無ければ KindInternal です。
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message は err の利用者向けメッセージを返します。
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindMissingField, KindInvalidArgument:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

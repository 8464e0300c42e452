// C:\Users\wasab\OneDrive\デスクトップ\PORTION\table\store.go
package table

import (
	"context"

	"portion/apperr"
)

// Store は名前付きテーブルを永続化します。
type Store interface {
	// Read はテーブルが無ければ NotFound エラーを返します。
	Read(ctx context.Context, name string) (*Table, error)
	// Write はテーブル全体をアトミックに置き換えます。
	Write(ctx context.Context, name string, t *Table) error
	// Append は行を追加します。テーブルが無ければ作成します。
	Append(ctx context.Context, name string, rows *Table) error
}

// ReadOrEmpty は name を読み込み、テーブルが無ければ空として扱います。
func ReadOrEmpty(ctx context.Context, s Store, name string) (*Table, error) {
	t, err := s.Read(ctx, name)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return New(), nil
		}
		return nil, err
	}
	return t, nil
}

// ErrNotFound はテーブルが無い場合のエラーを作ります。
func ErrNotFound(name string) error {
	return apperr.NotFound("%s not found", name)
}

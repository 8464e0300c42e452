// C:\Users\wasab\OneDrive\デスクトップ\PORTION\order\ledger.go
package order

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"portion/aggregation"
	"portion/lock"
	"portion/model"
	"portion/table"
)

// Ledger は保存済みの台帳にバッチを反映します。
// テーブルの読み込みから書き込みまでは、そのテーブルのロックを保持します。
type Ledger struct {
	store       table.Store
	locker      lock.Locker
	lockTimeout time.Duration
	log         *zap.Logger
}

func NewLedger(store table.Store, locker lock.Locker, lockTimeout time.Duration, log *zap.Logger) *Ledger {
	return &Ledger{store: store, locker: locker, lockTimeout: lockTimeout, log: log}
}

func (l *Ledger) Store() table.Store { return l.store }

// WithLock はテーブル name のロックを保持したまま fn を実行します。
func (l *Ledger) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	lockCtx := ctx
	if l.lockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, l.lockTimeout)
		defer cancel()
	}
	unlock, err := l.locker.Lock(lockCtx, name)
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", name, err)
	}
	defer unlock()
	return fn(ctx)
}

// AppendAudit は rows をそのまま AllPurch に追記します。
func (l *Ledger) AppendAudit(ctx context.Context, rows *table.Table) (int, error) {
	if rows.Len() == 0 {
		return 0, nil
	}
	err := l.WithLock(ctx, model.TableAllPurch, func(ctx context.Context) error {
		return l.store.Append(ctx, model.TableAllPurch, rows)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to append to %s: %w", model.TableAllPurch, err)
	}
	return rows.Len(), nil
}

// Merge は spec の集約方法で rows を台帳 name に畳み込み、グラム数0の行を削除します。
// 戻り値は実際に反映した入力行数で、取り込み済み注文の行は数えません。
func (l *Ledger) Merge(ctx context.Context, name string, rows *table.Table, spec aggregation.Spec) (int, error) {
	if rows.Len() == 0 {
		return 0, nil
	}
	var applied int
	err := l.WithLock(ctx, name, func(ctx context.Context) error {
		existing, err := table.ReadOrEmpty(ctx, l.store, name)
		if err != nil {
			return err
		}
		existing = model.NormalizeLedger(existing)
		pending := aggregation.Pending(existing, model.NormalizeLedger(rows), spec)
		if pending.Len() == 0 {
			return nil
		}
		merged, err := aggregation.Merge(existing, pending, spec)
		if err != nil {
			return err
		}
		applied = pending.Len()
		return l.store.Write(ctx, name, aggregation.DropZeroVolume(merged))
	})
	if err != nil {
		return 0, fmt.Errorf("failed to merge into %s: %w", name, err)
	}
	return applied, nil
}

// Rebuild は台帳 name を rows の集約結果で置き換えます。
func (l *Ledger) Rebuild(ctx context.Context, name string, rows *table.Table, spec aggregation.Spec) (int, error) {
	var written int
	err := l.WithLock(ctx, name, func(ctx context.Context) error {
		merged, err := aggregation.Merge(nil, model.NormalizeLedger(rows), spec)
		if err != nil {
			return err
		}
		out := aggregation.DropZeroVolume(merged)
		written = out.Len()
		return l.store.Write(ctx, name, out)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to rebuild %s: %w", name, err)
	}
	l.log.Info("ledger rebuilt", zap.String("table", name), zap.Int("rows", written))
	return written, nil
}

// C:\Users\wasab\OneDrive\デスクトップ\PORTION\purchase\service.go

// Package purchase は台帳の照会と手動での数量修正を扱います。
package purchase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"portion/aggregation"
	"portion/apperr"
	"portion/filter"
	"portion/model"
	"portion/order"
	"portion/table"
)

type Service struct {
	ledger *order.Ledger
	loc    *time.Location
	log    *zap.Logger
}

func NewService(ledger *order.Ledger, loc *time.Location, log *zap.Logger) *Service {
	return &Service{ledger: ledger, loc: loc, log: log}
}

func (s *Service) Location() *time.Location { return s.loc }

// MainPurch は id が所有するメイン店舗の台帳行を返します。
func (s *Service) MainPurch(ctx context.Context, id filter.Identity) (*table.Table, error) {
	return s.ledgerRows(ctx, model.TableMainPurch, id, aggregation.MainPurchSpec())
}

// OtherPurch は id が所有する店舗・日付別の台帳行を返します。
func (s *Service) OtherPurch(ctx context.Context, id filter.Identity) (*table.Table, error) {
	return s.ledgerRows(ctx, model.TableOtherPurch, id, aggregation.OtherPurchSpec())
}

// 家族の結果は書き込み時と同じキーで再集約し、
// 中断した書き込みで残った重複を二重に表示しないようにします。
func (s *Service) ledgerRows(ctx context.Context, name string, id filter.Identity, spec aggregation.Spec) (*table.Table, error) {
	t, err := s.ledger.Store().Read(ctx, name)
	if err != nil {
		return nil, err
	}
	rows, err := filter.ByIdentity(t, name, id)
	if err != nil {
		return nil, err
	}
	if id.Account == filter.Family && rows.Len() > 1 {
		return aggregation.Reaggregate(rows, spec)
	}
	return rows, nil
}

// AllPurchByRange は id が所有する [from, to] の AllPurch 行を返します。
func (s *Service) AllPurchByRange(ctx context.Context, from, to int64, id filter.Identity) (*table.Table, error) {
	t, err := s.ledger.Store().Read(ctx, model.TableAllPurch)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return t, nil
	}
	inRange, err := filter.ByDateRange(t, model.TableAllPurch, model.ColDate, from, to)
	if err != nil {
		return nil, err
	}
	if id.Account == filter.Family && !inRange.HasColumn(model.ColFamilyID) {
		return nil, apperr.MissingColumn(model.TableAllPurch, model.ColFamilyID)
	}
	return filter.ByIdentity(inRange, model.TableAllPurch, id)
}

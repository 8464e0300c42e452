// C:\Users\wasab\OneDrive\デスクトップ\PORTION\ration\log.go

// Package ration は食べた分量の追記専用ログを管理します。
package ration

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portion/apperr"
	"portion/dates"
	"portion/events"
	"portion/filter"
	"portion/model"
	"portion/order"
	"portion/table"
)

// Log は RationInfo に記録を追記し、日付または期間で読み出します。
// 照会は全所有者の行を返すので、呼び出し側で UserID により絞り込みます。
type Log struct {
	ledger    *order.Ledger
	publisher events.Publisher
	loc       *time.Location
	log       *zap.Logger
	now       func() time.Time
}

func NewLog(ledger *order.Ledger, publisher events.Publisher, loc *time.Location, log *zap.Logger) *Log {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Log{ledger: ledger, publisher: publisher, loc: loc, log: log, now: time.Now}
}

func (l *Log) Location() *time.Location { return l.loc }

// NewEntry はリクエストを記録に変換します。空の賞味期限は空のままです。
func (l *Log) NewEntry(req model.RationRequest) (model.RationEntry, error) {
	prodID, err := req.ProdID.Int()
	if err != nil {
		return model.RationEntry{}, apperr.Invalid("Invalid prod_id format: %s", req.ProdID)
	}
	mealID, err := req.MealID.Int()
	if err != nil {
		return model.RationEntry{}, apperr.Invalid("Invalid meal_id format: %s", req.MealID)
	}
	day, err := dates.Parse(req.RationDate, l.loc)
	if err != nil {
		return model.RationEntry{}, err
	}
	var expire *int64
	if s := strings.TrimSpace(req.ExpireDate); s != "" {
		t, err := dates.Parse(s, l.loc)
		if err != nil {
			return model.RationEntry{}, err
		}
		epoch := t.Unix()
		expire = &epoch
	}

	return model.RationEntry{
		EntryID:      uuid.NewString(),
		ProdID:       prodID,
		Name:         req.Name,
		Volume:       float64(req.Volume),
		Unit:         req.Unit,
		VolumeGr:     float64(req.VolumeGr),
		Kcal100g:     float64(req.Kcal100g),
		Prot100g:     float64(req.Prot100g),
		Fat100g:      float64(req.Fat100g),
		Carb100g:     float64(req.Carb100g),
		ExpireDate:   expire,
		Tag:          req.Tag,
		Cat:          req.Cat,
		MealID:       mealID,
		MealName:     req.MealName,
		RationDate:   day.Unix(),
		VolumeServ:   float64(req.VolumeServ),
		VolumeServGr: float64(req.VolumeServGr),
		KcalServ:     float64(req.KcalServ),
		ProtServ:     float64(req.ProtServ),
		FatServ:      float64(req.FatServ),
		CarbServ:     float64(req.CarbServ),
		UserID:       req.UserID.String(),
		CreatedAt:    l.now().Unix(),
	}, nil
}

// Append は1件追記します。既存の行は変更しません。
func (l *Log) Append(ctx context.Context, req model.RationRequest) (model.RationEntry, error) {
	e, err := l.NewEntry(req)
	if err != nil {
		return model.RationEntry{}, err
	}
	rows := table.New(model.RationColumns...)
	rows.Append(e.Row())

	err = l.ledger.WithLock(ctx, model.TableRationInfo, func(ctx context.Context) error {
		return l.ledger.Store().Append(ctx, model.TableRationInfo, rows)
	})
	if err != nil {
		return model.RationEntry{}, err
	}

	if err := l.publisher.Publish(ctx, events.RationAdded, e.UserID, e); err != nil {
		l.log.Warn("failed to publish event", zap.String("event", events.RationAdded), zap.Error(err))
	}
	l.log.Info("ration entry added",
		zap.String("entry_id", e.EntryID),
		zap.String("user_id", e.UserID),
		zap.Int64("prod_id", e.ProdID))
	return e, nil
}

// ByDate は RationDate が day と同じ日付の記録を返します。
func (l *Log) ByDate(ctx context.Context, day time.Time) (*table.Table, error) {
	t, err := table.ReadOrEmpty(ctx, l.ledger.Store(), model.TableRationInfo)
	if err != nil {
		return nil, err
	}
	return filter.ByDay(t, model.ColRationDate, day, l.loc), nil
}

// ByDateRange は [from, to] の記録を返します。
func (l *Log) ByDateRange(ctx context.Context, from, to int64) (*table.Table, error) {
	t, err := table.ReadOrEmpty(ctx, l.ledger.Store(), model.TableRationInfo)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return t, nil
	}
	return filter.ByDateRange(t, model.TableRationInfo, model.ColRationDate, from, to)
}

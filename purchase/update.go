// C:\Users\wasab\OneDrive\デスクトップ\PORTION\purchase\update.go
package purchase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"portion/apperr"
	"portion/dates"
	"portion/model"
	"portion/table"
)

const (
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// VolumeEdit は検証済みの台帳行の数量修正です。
// グラム数0なら行を削除します。
type VolumeEdit struct {
	ProdID      int64
	FamilyID    int64
	UserID      string
	StoreID     int64
	Day         time.Time
	NewVolumeGr float64
	NewVolume   float64
}

func (e VolumeEdit) owns(r table.Row) bool {
	return r.Get(model.ColProdID).Equal(table.Int(e.ProdID)) &&
		r.Get(model.ColFamilyID).Equal(table.Int(e.FamilyID)) &&
		r.Get(model.ColUserID).Equal(table.String(e.UserID))
}

func newVolumeEdit(req model.UpdateMainRequest) (VolumeEdit, error) {
	prodID, err := req.ProdID.Int()
	if err != nil {
		return VolumeEdit{}, apperr.Invalid("Invalid prod_id format: %s", req.ProdID)
	}
	familyID, err := req.FamilyID.Int()
	if err != nil {
		return VolumeEdit{}, apperr.Invalid("Invalid family_id format: %s", req.FamilyID)
	}
	e := VolumeEdit{
		ProdID:      prodID,
		FamilyID:    familyID,
		UserID:      req.UserID.String(),
		NewVolumeGr: float64(req.NewVolumeGr),
		NewVolume:   float64(req.NewVolume),
	}
	if e.NewVolumeGr < 0 || e.NewVolume < 0 {
		return VolumeEdit{}, apperr.Invalid("Volume cannot be negative")
	}
	return e, nil
}

// UpdateMain は (ProdID, FamilyID, UserID) の MainPurch 行を全て更新または削除します。
func (s *Service) UpdateMain(ctx context.Context, req model.UpdateMainRequest) (string, error) {
	e, err := newVolumeEdit(req)
	if err != nil {
		return "", err
	}
	return s.applyEdit(ctx, model.TableMainPurch, e, false, e.owns)
}

// UpdateOther は (ProdID, FamilyID, StoreID, UserID) で指定日の最初の OtherPurch 行を
// 更新または削除します。
func (s *Service) UpdateOther(ctx context.Context, req model.UpdateOtherRequest) (string, error) {
	e, err := newVolumeEdit(req.UpdateMainRequest)
	if err != nil {
		return "", err
	}
	if e.StoreID, err = req.StoreID.Int(); err != nil {
		return "", apperr.Invalid("Invalid store_id format: %s", req.StoreID)
	}
	if e.Day, err = dates.Parse(req.OrderDate, s.loc); err != nil {
		return "", err
	}
	return s.applyEdit(ctx, model.TableOtherPurch, e, true, func(r table.Row) bool {
		if !e.owns(r) || !r.Get(model.ColStoreID).Equal(table.Int(e.StoreID)) {
			return false
		}
		ts, ok := r.Get(model.ColDate).Epoch()
		return ok && dates.SameDay(ts, e.Day, s.loc)
	})
}

func (s *Service) applyEdit(ctx context.Context, name string, e VolumeEdit, firstOnly bool, match func(table.Row) bool) (string, error) {
	action := ActionUpdated
	if e.NewVolumeGr == 0 {
		action = ActionDeleted
	}

	err := s.ledger.WithLock(ctx, name, func(ctx context.Context) error {
		t, err := s.ledger.Store().Read(ctx, name)
		if err != nil {
			return err
		}
		hits := make(map[int]bool)
		for i, r := range t.Rows() {
			if match(r) {
				hits[i] = true
				if firstOnly {
					break
				}
			}
		}
		if len(hits) == 0 {
			return apperr.NotFound("Product not found")
		}

		out := table.New(t.Columns()...)
		for i, r := range t.Rows() {
			if !hits[i] {
				out.Append(r)
				continue
			}
			if action == ActionDeleted {
				continue
			}
			r = r.Clone()
			r[model.ColTotalVolumeGr] = table.Float(e.NewVolumeGr)
			r[model.ColTotalVolume] = table.Float(e.NewVolume)
			out.Append(r)
		}
		return s.ledger.Store().Write(ctx, name, out)
	})
	if err != nil {
		return "", err
	}
	s.log.Info("ledger volume edited",
		zap.String("table", name),
		zap.Int64("prod_id", e.ProdID),
		zap.String("user_id", e.UserID),
		zap.String("action", action))
	return action, nil
}

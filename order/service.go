// C:\Users\wasab\OneDrive\デスクトップ\PORTION\order\service.go
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portion/aggregation"
	"portion/apperr"
	"portion/dates"
	"portion/events"
	"portion/model"
)

type Service struct {
	ledger    *Ledger
	publisher events.Publisher
	loc       *time.Location
	log       *zap.Logger
	newID     func() string
}

func NewService(ledger *Ledger, publisher events.Publisher, loc *time.Location, log *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		ledger:    ledger,
		publisher: publisher,
		loc:       loc,
		log:       log,
		newID:     func() string { return uuid.NewString() },
	}
}

// Validate は書き込み前にカート全体を検証します。
func (s *Service) Validate(req model.OrderRequest) (model.Order, error) {
	if len(req.Items) == 0 {
		return model.Order{}, apperr.Invalid("Cart is empty")
	}
	familyID, err := req.FamilyID.Int()
	if err != nil {
		return model.Order{}, apperr.Invalid("Invalid family_id format: %s", req.FamilyID)
	}
	addressID, err := req.AddressID.Int()
	if err != nil {
		return model.Order{}, apperr.Invalid("Invalid address_id format: %s", req.AddressID)
	}
	day, err := dates.Parse(req.OrderDate, s.loc)
	if err != nil {
		return model.Order{}, err
	}

	o := model.Order{
		FamilyID:  familyID,
		AddressID: addressID,
		UserID:    req.UserID.String(),
		Date:      day.Unix(),
		Items:     make([]model.OrderItem, 0, len(req.Items)),
	}
	for i, item := range req.Items {
		prodID, err := item.ProdID.Int()
		if err != nil {
			return model.Order{}, apperr.Invalid("Item %d: invalid prod_id %q", i+1, item.ProdID)
		}
		q := 1.0
		if item.Quantity != nil {
			q = float64(*item.Quantity)
		}
		if q <= 0 || q != float64(int64(q)) {
			return model.Order{}, apperr.Invalid("Item %d: quantity must be a positive integer", i+1)
		}
		o.Items = append(o.Items, model.OrderItem{ProdID: prodID, Quantity: int64(q)})
	}
	return o, nil
}

// CreateOrder はカートを記録します。先に AllPurch、次に両方の台帳です。
// AllPurch への追記に失敗したら何も書き込みません。片方の台帳が失敗しても
// もう片方は続行し、エラーに途中までの件数を含めます。
func (s *Service) CreateOrder(ctx context.Context, req model.OrderRequest) (model.OrderResult, error) {
	o, err := s.Validate(req)
	if err != nil {
		return model.OrderResult{}, err
	}
	o.ID = s.newID()

	products, err := s.ledger.Store().Read(ctx, model.TableProducts)
	if err != nil {
		return model.OrderResult{}, fmt.Errorf("failed to read product catalog: %w", err)
	}
	routed := Route(o, NewCatalog(products))
	if routed.All.Len() == 0 {
		return model.OrderResult{}, apperr.Invalid("No valid items found in cart")
	}
	if len(routed.Skipped) > 0 {
		s.log.Warn("unknown products skipped",
			zap.String("order_id", o.ID),
			zap.Int64s("prod_ids", routed.Skipped))
	}

	result := model.OrderResult{
		OrderID:      o.ID,
		TotalItems:   len(req.Items),
		SkippedItems: routed.Skipped,
		UserID:       o.UserID,
	}
	if result.AllSaved, err = s.ledger.AppendAudit(ctx, routed.All); err != nil {
		return result, err
	}

	var failed []error
	if result.MainUpdated, err = s.ledger.Merge(ctx, model.TableMainPurch, routed.Main, aggregation.MainPurchSpec()); err != nil {
		failed = append(failed, err)
	}
	if result.OtherSaved, err = s.ledger.Merge(ctx, model.TableOtherPurch, routed.Other, aggregation.OtherPurchSpec()); err != nil {
		failed = append(failed, err)
	}
	if len(failed) > 0 {
		for _, e := range failed {
			s.log.Error("ledger update failed", zap.String("order_id", o.ID), zap.Error(e))
		}
		return result, apperr.Wrap(apperr.KindInternal,
			fmt.Sprintf("Order saved to %s but ledger update failed: main=%d other=%d",
				model.TableAllPurch, result.MainUpdated, result.OtherSaved),
			failed[0])
	}

	if err := s.publisher.Publish(ctx, events.OrderCreated, o.ID, result); err != nil {
		s.log.Warn("failed to publish event", zap.String("event", events.OrderCreated), zap.Error(err))
	}
	s.log.Info("order created",
		zap.String("order_id", o.ID),
		zap.Int("all", result.AllSaved),
		zap.Int("main", result.MainUpdated),
		zap.Int("other", result.OtherSaved))
	return result, nil
}


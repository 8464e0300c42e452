// C:\Users\wasab\OneDrive\デスクトップ\PORTION\reprocess\reprocess.go

// Package reprocess は AllPurch から MainPurch と OtherPurch を再構築します。
package reprocess

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"portion/aggregation"
	"portion/model"
	"portion/order"
	"portion/render"
	"portion/table"
)

type Result struct {
	SourceRows int `json:"source_rows"`
	MainRows   int `json:"main_rows"`
	OtherRows  int `json:"other_rows"`
}

// Execute は AllPurch の全行から台帳を作り直します。
// メイン店舗の行は MainPurch、それ以外は OtherPurch です。
// 両方の台帳を書き終えるまで AllPurch のロックを保持し、途中の注文を取りこぼしません。
func Execute(ctx context.Context, ledger *order.Ledger) (Result, error) {
	var res Result
	err := ledger.WithLock(ctx, model.TableAllPurch, func(ctx context.Context) error {
		all, err := ledger.Store().Read(ctx, model.TableAllPurch)
		if err != nil {
			return fmt.Errorf("Execute: failed to read %s: %w", model.TableAllPurch, err)
		}
		mainRows := all.Filter(func(r table.Row) bool {
			return model.StoreIDOf(r.Get(model.ColStoreID)) == model.DefaultStoreID
		})
		otherRows := all.Filter(func(r table.Row) bool {
			return model.StoreIDOf(r.Get(model.ColStoreID)) != model.DefaultStoreID
		})

		res.SourceRows = all.Len()
		if res.MainRows, err = ledger.Rebuild(ctx, model.TableMainPurch, mainRows, aggregation.MainPurchSpec()); err != nil {
			return err
		}
		res.OtherRows, err = ledger.Rebuild(ctx, model.TableOtherPurch, otherRows, aggregation.OtherPurchSpec())
		return err
	})
	return res, err
}

// Handler は POST /api/reprocess/all を処理します。
func Handler(ledger *order.Ledger, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		res, err := Execute(r.Context(), ledger)
		if err != nil {
			render.Error(w, log, err)
			return
		}
		log.Info("ledgers reprocessed",
			zap.Int("source", res.SourceRows),
			zap.Int("main", res.MainRows),
			zap.Int("other", res.OtherRows))
		render.Success(w, map[string]interface{}{
			"message": fmt.Sprintf("Пересчитано: MainPurch %d, OtherPurch %d", res.MainRows, res.OtherRows),
			"data":    res,
		})
	}
}

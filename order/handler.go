// C:\Users\wasab\OneDrive\デスクトップ\PORTION\order\handler.go
package order

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"portion/apperr"
	"portion/model"
	"portion/render"
)

var createOrderRequired = []string{"family_id", "address_id", "order_date", "items"}

// CreateOrderHandler は POST /api/create_order を処理します。
func CreateOrderHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.OrderRequest
		if err := render.Decode(r, &req, createOrderRequired...); err != nil {
			render.Error(w, log, err)
			return
		}

		result, err := svc.CreateOrder(r.Context(), req)
		if err != nil {
			if result.AllSaved > 0 {
				log.Error("order partially saved", zap.String("order_id", result.OrderID), zap.Error(err))
				render.JSON(w, apperr.HTTPStatus(err), map[string]interface{}{
					"status":  "error",
					"message": apperr.Message(err),
					"data":    result,
				})
				return
			}
			render.Error(w, log, err)
			return
		}

		render.Success(w, map[string]interface{}{
			"message": fmt.Sprintf("Заказ успешно создан! Сохранено позиций: %d", result.AllSaved),
			"data":    result,
		})
	}
}

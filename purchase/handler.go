// C:\Users\wasab\OneDrive\デスクトップ\PORTION\purchase\handler.go
package purchase

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"portion/apperr"
	"portion/dates"
	"portion/filter"
	"portion/mappers"
	"portion/model"
	"portion/render"
	"portion/table"
)

var (
	allPurchRequired    = []string{"start_date", "end_date", "user_id", "family_id", "user_acc_type"}
	updateMainRequired  = []string{"prod_id", "family_id", "user_id", "new_volume_gr", "new_volume"}
	updateOtherRequired = []string{"prod_id", "family_id", "store_id", "order_date", "new_volume_gr", "new_volume", "user_id"}
)

type ledgerQuery func(ctx context.Context, id filter.Identity) (*table.Table, error)

func ledgerHandler(query ledgerQuery, toTuple mappers.RowMapper, svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.PurchQuery
		if err := render.Decode(r, &req); err != nil {
			render.Error(w, log, err)
			return
		}
		id, err := filter.IdentityFromIDs(req.UserID.String(), req.FamilyID.String())
		if err != nil {
			render.Error(w, log, err)
			return
		}

		rows, err := query(r.Context(), id)
		if err != nil {
			render.Error(w, log, err)
			return
		}
		if rows.Len() == 0 {
			render.Success(w, map[string]interface{}{
				"products": []mappers.Tuple{},
				"message":  "No products found",
			})
			return
		}
		products := mappers.Tuples(rows, toTuple, svc.Location())
		render.Success(w, map[string]interface{}{
			"products": products,
			"count":    len(products),
		})
	}
}

// MainPurchHandler は POST /get_main_purch を処理します。
func MainPurchHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return ledgerHandler(svc.MainPurch, mappers.MainPurchTuple, svc, log)
}

// OtherPurchHandler は POST /get_other_purch を処理します。
func OtherPurchHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return ledgerHandler(svc.OtherPurch, mappers.OtherPurchTuple, svc, log)
}

// AllPurchByRangeHandler は POST /get_allpurch_by_daterange を処理します。
func AllPurchByRangeHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.AllPurchQuery
		if err := render.Decode(r, &req, allPurchRequired...); err != nil {
			render.Error(w, log, err)
			return
		}
		accType, err := req.UserAccType.Int()
		if err != nil {
			render.Error(w, log, apperr.Invalid("Invalid user_acc_type format: %s", req.UserAccType))
			return
		}
		id, err := filter.IdentityForAccount(req.UserID.String(), req.FamilyID.String(), accType)
		if err != nil {
			render.Error(w, log, err)
			return
		}
		from, to, err := dates.Range(req.StartDate, req.EndDate, svc.Location())
		if err != nil {
			render.Error(w, log, err)
			return
		}

		rows, err := svc.AllPurchByRange(r.Context(), from, to, id)
		if err != nil {
			render.Error(w, log, err)
			return
		}
		if rows.Len() == 0 {
			render.Success(w, map[string]interface{}{
				"purchases": []mappers.Tuple{},
				"message":   fmt.Sprintf("No purchase data for period %s - %s", req.StartDate, req.EndDate),
			})
			return
		}
		purchases := mappers.Tuples(rows, mappers.AllPurchTuple, svc.Location())
		render.Success(w, map[string]interface{}{
			"purchases": purchases,
			"count":     len(purchases),
			"date_range": map[string]string{
				"start_date": req.StartDate,
				"end_date":   req.EndDate,
			},
		})
	}
}

func editResponse(w http.ResponseWriter, name, action string) {
	message := fmt.Sprintf("Product volume updated in %s", name)
	if action == ActionDeleted {
		message = fmt.Sprintf("Product deleted from %s", name)
	}
	render.Success(w, map[string]interface{}{
		"message": message,
		"action":  action,
	})
}

// UpdateMainHandler は POST /update_main_purch を処理します。
func UpdateMainHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.UpdateMainRequest
		if err := render.Decode(r, &req, updateMainRequired...); err != nil {
			render.Error(w, log, err)
			return
		}
		action, err := svc.UpdateMain(r.Context(), req)
		if err != nil {
			render.Error(w, log, err)
			return
		}
		editResponse(w, model.TableMainPurch, action)
	}
}

// UpdateOtherHandler は POST /update_other_purch を処理します。
func UpdateOtherHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.UpdateOtherRequest
		if err := render.Decode(r, &req, updateOtherRequired...); err != nil {
			render.Error(w, log, err)
			return
		}
		action, err := svc.UpdateOther(r.Context(), req)
		if err != nil {
			render.Error(w, log, err)
			return
		}
		editResponse(w, model.TableOtherPurch, action)
	}
}

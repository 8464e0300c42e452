// C:\Users\wasab\OneDrive\デスクトップ\PORTION\ration\handler.go
package ration

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"portion/dates"
	"portion/filter"
	"portion/mappers"
	"portion/model"
	"portion/render"
)

// AddHandler は POST /add_to_ration を処理します。
func AddHandler(l *Log, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.RationRequest
		if err := render.Decode(r, &req, model.RationRequiredFields...); err != nil {
			render.Error(w, log, err)
			return
		}
		e, err := l.Append(r.Context(), req)
		if err != nil {
			render.Error(w, log, err)
			return
		}
		render.Success(w, map[string]interface{}{
			"message":  "Продукт успешно добавлен в рацион",
			"entry_id": e.EntryID,
		})
	}
}

// ByDateHandler は POST /get_ration_by_date を処理します。
func ByDateHandler(l *Log, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.RationDateQuery
		if err := render.Decode(r, &req, "ration_date", "user_id"); err != nil {
			render.Error(w, log, err)
			return
		}
		day, err := dates.Parse(req.RationDate, l.Location())
		if err != nil {
			render.Error(w, log, err)
			return
		}

		rows, err := l.ByDate(r.Context(), day)
		if err != nil {
			render.Error(w, log, err)
			return
		}
		if rows.Len() == 0 {
			render.Success(w, map[string]interface{}{
				"rations": []mappers.Tuple{},
				"message": fmt.Sprintf("No ration data for %s", req.RationDate),
			})
			return
		}
		mine, err := filter.ByUser(rows, model.TableRationInfo, req.UserID.String())
		if err != nil {
			render.Error(w, log, err)
			return
		}
		if mine.Len() == 0 {
			render.Success(w, map[string]interface{}{
				"rations": []mappers.Tuple{},
				"message": fmt.Sprintf("No ration data for user %s on %s", req.UserID, req.RationDate),
			})
			return
		}
		rations := mappers.Tuples(mine, mappers.RationTuple, l.Location())
		render.Success(w, map[string]interface{}{
			"rations": rations,
			"count":   len(rations),
		})
	}
}

// ByDateRangeHandler は POST /get_ration_by_daterange を処理します。
func ByDateRangeHandler(l *Log, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.RationRangeQuery
		if err := render.Decode(r, &req, "start_date", "end_date", "user_id"); err != nil {
			render.Error(w, log, err)
			return
		}
		from, to, err := dates.Range(req.StartDate, req.EndDate, l.Location())
		if err != nil {
			render.Error(w, log, err)
			return
		}
		period := fmt.Sprintf("%s - %s", req.StartDate, req.EndDate)

		rows, err := l.ByDateRange(r.Context(), from, to)
		if err != nil {
			render.Error(w, log, err)
			return
		}
		if rows.Len() == 0 {
			render.Success(w, map[string]interface{}{
				"rations": []mappers.Tuple{},
				"message": "No ration data for period " + period,
			})
			return
		}
		mine, err := filter.ByUser(rows, model.TableRationInfo, req.UserID.String())
		if err != nil {
			render.Error(w, log, err)
			return
		}
		if mine.Len() == 0 {
			render.Success(w, map[string]interface{}{
				"rations": []mappers.Tuple{},
				"message": fmt.Sprintf("No ration data for user %s in period %s", req.UserID, period),
			})
			return
		}

		rations := mappers.Tuples(mine, mappers.RationTuple, l.Location())
		grouped := mappers.GroupByDate(rations)
		render.Success(w, map[string]interface{}{
			"rations": rations,
			"count":   len(rations),
			"date_range": map[string]string{
				"start_date": req.StartDate,
				"end_date":   req.EndDate,
			},
			"grouped_by_date": grouped,
			"date_count":      len(grouped),
		})
	}
}

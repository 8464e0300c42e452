package purchase

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"portion/apperr"
	"portion/database"
	"portion/filter"
	"portion/lock"
	"portion/model"
	"portion/order"
	"portion/table"
)

var may2 = time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC).Unix()

func newService(t *testing.T) (*Service, table.Store) {
	t.Helper()
	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store := database.NewSheetStore(db)
	ledger := order.NewLedger(store, lock.NewLocal(), time.Second, zap.NewNop())
	return NewService(ledger, time.UTC, zap.NewNop()), store
}

func entry(prodID int64, userID string, familyID, storeID, date int64, grams float64) table.Row {
	return model.LedgerRow{
		Product:       model.Product{ProdID: prodID, Name: "p", Unit: "г", VolumeGr: grams, StoreID: storeID},
		Date:          date,
		FamilyID:      familyID,
		UserID:        userID,
		Count:         1,
		TotalVolume:   grams / 1000,
		TotalVolumeGr: grams,
		OrderID:       "o",
	}.Row()
}

func seed(t *testing.T, s table.Store, name string, rows ...table.Row) {
	t.Helper()
	tb := model.NewLedgerTable()
	for _, r := range rows {
		tb.Append(r)
	}
	if err := s.Write(context.Background(), name, tb); err != nil {
		t.Fatal(err)
	}
}

type response struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Count     int               `json:"count"`
	Action    string            `json:"action"`
	Products  [][]interface{}   `json:"products"`
	Purchases [][]interface{}   `json:"purchases"`
	DateRange map[string]string `json:"date_range"`
	Fields    []string          `json:"fields"`
}

func call(t *testing.T, h http.HandlerFunc, body string) (int, response) {
	t.Helper()
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body)))
	var resp response
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return rr.Code, resp
}

func TestMainPurchHandler(t *testing.T) {
	svc, s := newService(t)
	seed(t, s, model.TableMainPurch,
		entry(1, "abc", 0, 1, may2, 500),
		entry(2, "abc", 12, 1, may2, 300),
		entry(3, "xyz", 0, 1, may2, 100),
	)
	h := MainPurchHandler(svc, zap.NewNop())

	code, resp := call(t, h, `{"family_id":"0","user_id":"abc"}`)
	if code != http.StatusOK || resp.Count != 1 || len(resp.Products) != 1 {
		t.Fatalf("personal: %d %+v", code, resp)
	}
	if p := resp.Products[0]; len(p) != 20 || p[0] != 1.0 || p[14] != "02.05.2024" {
		t.Errorf("tuple = %v", p)
	}

	code, resp = call(t, h, `{"family_id":12}`)
	if code != http.StatusOK || resp.Count != 1 {
		t.Errorf("family: %d %+v", code, resp)
	}

	code, resp = call(t, h, `{"family_id":"0","user_id":"nobody"}`)
	if code != http.StatusOK || resp.Message != "No products found" || resp.Products == nil {
		t.Errorf("empty: %d %+v", code, resp)
	}

	if code, _ = call(t, h, `{"user_id":"abc"}`); code != http.StatusBadRequest {
		t.Errorf("user only status = %d", code)
	}
	if code, _ = call(t, h, `{}`); code != http.StatusBadRequest {
		t.Errorf("no identity status = %d", code)
	}
}

func TestOtherPurchHandlerMissingTable(t *testing.T) {
	svc, _ := newService(t)
	code, resp := call(t, OtherPurchHandler(svc, zap.NewNop()), `{"family_id":"3"}`)
	if code != http.StatusNotFound || resp.Status != "error" {
		t.Errorf("status = %d, body = %+v", code, resp)
	}
}

func TestOtherPurchTupleHasNoExpireDate(t *testing.T) {
	svc, s := newService(t)
	seed(t, s, model.TableOtherPurch, entry(9, "u", 4, 2, may2, 250))
	code, resp := call(t, OtherPurchHandler(svc, zap.NewNop()), `{"family_id":"4"}`)
	if code != http.StatusOK || len(resp.Products) != 1 || len(resp.Products[0]) != 19 {
		t.Fatalf("%d %+v", code, resp)
	}
}

func TestFamilyQueryReaggregatesDuplicates(t *testing.T) {
	svc, s := newService(t)
	first := entry(1, "abc", 12, 1, may2, 200)
	second := entry(1, "abc", 12, 1, may2-86400, 300)
	second[model.ColOrderID] = table.String("o2")
	seed(t, s, model.TableMainPurch, first, second)

	rows, err := svc.MainPurch(context.Background(), filter.Identity{FamilyID: 12, Account: filter.Family})
	if err != nil {
		t.Fatal(err)
	}
	if rows.Len() != 1 {
		t.Fatalf("rows = %d, want 1", rows.Len())
	}
	r := rows.Row(0)
	if model.FloatOf(r.Get(model.ColTotalVolumeGr)) != 500 || model.IntOf(r.Get(model.ColDate)) != may2-86400 {
		t.Errorf("row = %v", r)
	}
}

func TestAllPurchByRangeHandler(t *testing.T) {
	svc, s := newService(t)
	endOfMay3 := time.Date(2024, 5, 3, 23, 59, 59, 0, time.UTC).Unix()
	tb := model.NewLedgerTable()
	tb.Append(entry(1, "abc", 0, 1, may2, 100))
	tb.Append(entry(2, "abc", 0, 3, endOfMay3, 100))
	tb.Append(entry(3, "abc", 0, 3, endOfMay3+1, 100))
	tb.Append(entry(4, "abc", 7, 1, may2, 100))
	if err := s.Append(context.Background(), model.TableAllPurch, tb); err != nil {
		t.Fatal(err)
	}
	h := AllPurchByRangeHandler(svc, zap.NewNop())

	code, resp := call(t, h, `{"start_date":"01.05.2024","end_date":"03.05.2024","user_id":"abc","family_id":0,"user_acc_type":0}`)
	if code != http.StatusOK || resp.Count != 2 {
		t.Fatalf("personal: %d %+v", code, resp)
	}
	if len(resp.Purchases[0]) != 20 || resp.DateRange["end_date"] != "03.05.2024" {
		t.Errorf("purchases = %v range = %v", resp.Purchases, resp.DateRange)
	}

	code, resp = call(t, h, `{"start_date":"01.05.2024","end_date":"03.05.2024","user_id":"abc","family_id":7,"user_acc_type":1}`)
	if code != http.StatusOK || resp.Count != 1 {
		t.Errorf("family: %d %+v", code, resp)
	}

	code, resp = call(t, h, `{"start_date":"01.06.2024","end_date":"02.06.2024","user_id":"abc","family_id":0,"user_acc_type":0}`)
	if code != http.StatusOK || resp.Message != "No purchase data for period 01.06.2024 - 02.06.2024" {
		t.Errorf("empty: %d %+v", code, resp)
	}

	code, resp = call(t, h, `{"start_date":"01.05.2024","user_id":"abc"}`)
	if code != http.StatusBadRequest || len(resp.Fields) != 3 {
		t.Errorf("missing: %d %+v", code, resp)
	}

	code, _ = call(t, h, `{"start_date":"05.05.2024","end_date":"01.05.2024","user_id":"abc","family_id":0,"user_acc_type":0}`)
	if code != http.StatusBadRequest {
		t.Errorf("reversed range status = %d", code)
	}
}

func TestUpdateMain(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	seed(t, s, model.TableMainPurch,
		entry(1, "abc", 0, 1, may2, 500),
		entry(2, "abc", 0, 1, may2, 300),
	)
	h := UpdateMainHandler(svc, zap.NewNop())

	code, resp := call(t, h, `{"prod_id":1,"family_id":0,"user_id":"abc","new_volume_gr":250,"new_volume":0.25}`)
	if code != http.StatusOK || resp.Action != ActionUpdated {
		t.Fatalf("update: %d %+v", code, resp)
	}
	main, _ := s.Read(ctx, model.TableMainPurch)
	if got := model.FloatOf(main.Row(0).Get(model.ColTotalVolumeGr)); got != 250 {
		t.Errorf("TotalVolumeGr = %v", got)
	}
	if got := model.IntOf(main.Row(0).Get(model.ColProdID)); got != 1 {
		t.Errorf("identity changed: ProdID = %d", got)
	}

	code, resp = call(t, h, `{"prod_id":"2","family_id":"0","user_id":"abc","new_volume_gr":0,"new_volume":0}`)
	if code != http.StatusOK || resp.Action != ActionDeleted {
		t.Fatalf("delete: %d %+v", code, resp)
	}
	main, _ = s.Read(ctx, model.TableMainPurch)
	if main.Len() != 1 {
		t.Errorf("rows = %d after delete, want 1", main.Len())
	}

	code, resp = call(t, h, `{"prod_id":2,"family_id":0,"user_id":"abc","new_volume_gr":1,"new_volume":1}`)
	if code != http.StatusNotFound || resp.Message != "Product not found" {
		t.Errorf("miss: %d %+v", code, resp)
	}

	code, _ = call(t, h, `{"prod_id":1,"family_id":0,"user_id":"abc","new_volume_gr":-5,"new_volume":1}`)
	if code != http.StatusBadRequest {
		t.Errorf("negative status = %d", code)
	}
}

func TestUpdateOtherMatchesDayAndFirstRowOnly(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	evening := time.Date(2024, 5, 2, 21, 0, 0, 0, time.UTC).Unix()
	seed(t, s, model.TableOtherPurch,
		entry(5, "u", 3, 2, may2, 100),
		entry(5, "u", 3, 2, evening, 200),
		entry(5, "u", 3, 2, may2+86400, 300),
	)

	_, err := svc.UpdateOther(ctx, model.UpdateOtherRequest{
		UpdateMainRequest: model.UpdateMainRequest{ProdID: "5", FamilyID: "3", UserID: "u"},
		StoreID:           "2",
		OrderDate:         "02.05.2024",
	})
	if err != nil {
		t.Fatal(err)
	}
	other, _ := s.Read(ctx, model.TableOtherPurch)
	if other.Len() != 2 {
		t.Fatalf("rows = %d, want 2", other.Len())
	}
	if got := model.FloatOf(other.Row(0).Get(model.ColTotalVolumeGr)); got != 200 {
		t.Errorf("remaining first row = %v, want the evening purchase", got)
	}

	_, err = svc.UpdateOther(ctx, model.UpdateOtherRequest{
		UpdateMainRequest: model.UpdateMainRequest{ProdID: "5", FamilyID: "3", UserID: "u", NewVolumeGr: 1},
		StoreID:           "9",
		OrderDate:         "02.05.2024",
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("wrong store error = %v", err)
	}
}

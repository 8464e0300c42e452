package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"portion/aggregation"
	"portion/apperr"
	"portion/database"
	"portion/events"
	"portion/lock"
	"portion/model"
	"portion/table"
)

type failingStore struct {
	table.Store
	failWrite string
}

func (f failingStore) Write(ctx context.Context, name string, t *table.Table) error {
	if name == f.failWrite {
		return errors.New("disk full")
	}
	return f.Store.Write(ctx, name, t)
}

func newStore(t *testing.T) table.Store {
	t.Helper()
	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return database.NewSheetStore(db)
}

func seedCatalog(t *testing.T, s table.Store) {
	t.Helper()
	catalog := table.New()
	catalog.Append(model.Product{
		ProdID: 1, Name: "Молоко", Volume: 1, Unit: "л", VolumeGr: 1000,
		Kcal100g: 60, TotalCost: 89.9, StoreID: 1, Store: "Лавка",
	}.Row())
	catalog.Append(model.Product{
		ProdID: 2, Name: "Гречка", Volume: 900, Unit: "г", VolumeGr: 900,
		Kcal100g: 330, TotalCost: 120.333, StoreID: 3,
	}.Row())
	if err := s.Write(context.Background(), model.TableProducts, catalog); err != nil {
		t.Fatal(err)
	}
}

func newService(t *testing.T, s table.Store, pub events.Publisher) *Service {
	t.Helper()
	ledger := NewLedger(s, lock.NewLocal(), time.Second, zap.NewNop())
	svc := NewService(ledger, pub, time.UTC, zap.NewNop())
	n := 0
	svc.newID = func() string {
		n++
		return "order-" + string(rune('0'+n))
	}
	return svc
}

func qty(f float64) *model.FlexFloat {
	v := model.FlexFloat(f)
	return &v
}

func cart(items ...model.CartItem) model.OrderRequest {
	return model.OrderRequest{
		FamilyID:  "0",
		AddressID: "4",
		OrderDate: "02.05.2024",
		UserID:    "u1",
		Items:     items,
	}
}

func TestProject(t *testing.T) {
	o := model.Order{ID: "o1", FamilyID: 7, AddressID: 3, UserID: "u1", Date: 1714608000}
	p := model.Product{ProdID: 2, VolumeGr: 450, Volume: 0.45, TotalCost: 33.335, StoreID: 2}

	got := Project(p, o, 3)
	if got.Store != "Супермаркет" {
		t.Errorf("Store = %q, want resolved name", got.Store)
	}
	if got.Address != "Адрес 3" || got.Count != 3 || got.OrderID != "o1" {
		t.Errorf("Project() = %+v", got)
	}
	if got.TotalVolumeGr != 1350 || got.VolumeGr != 450 {
		t.Errorf("TotalVolumeGr = %v, VolumeGr = %v", got.TotalVolumeGr, got.VolumeGr)
	}
	if got.TotalCostPerCount != 100.01 {
		t.Errorf("TotalCostPerCount = %v, want 100.01", got.TotalCostPerCount)
	}
	if got.ExpireDate != nil {
		t.Errorf("ExpireDate = %v, want empty", *got.ExpireDate)
	}
}

func TestRouteSplitsByStore(t *testing.T) {
	catalog := table.New()
	catalog.Append(model.Product{ProdID: 1, StoreID: 1}.Row())
	catalog.Append(model.Product{ProdID: 2, StoreID: 4}.Row())
	catalog.Append(table.Row{model.ColProdID: table.Int(3)})

	o := model.Order{Items: []model.OrderItem{
		{ProdID: 1, Quantity: 1},
		{ProdID: 2, Quantity: 2},
		{ProdID: 3, Quantity: 1},
		{ProdID: 99, Quantity: 1},
	}}
	routed := Route(o, NewCatalog(catalog))

	if routed.All.Len() != 3 || routed.Main.Len() != 2 || routed.Other.Len() != 1 {
		t.Fatalf("all=%d main=%d other=%d", routed.All.Len(), routed.Main.Len(), routed.Other.Len())
	}
	if len(routed.Skipped) != 1 || routed.Skipped[0] != 99 {
		t.Errorf("Skipped = %v", routed.Skipped)
	}
}

func TestValidate(t *testing.T) {
	svc := newService(t, newStore(t), nil)
	tests := []struct {
		name string
		req  model.OrderRequest
	}{
		{"empty cart", cart()},
		{"zero quantity", cart(model.CartItem{ProdID: "1", Quantity: qty(0)})},
		{"fractional quantity", cart(model.CartItem{ProdID: "1", Quantity: qty(1.5)})},
		{"bad prod id", cart(model.CartItem{ProdID: "abc", Quantity: qty(1)})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Validate(tt.req); !apperr.Is(err, apperr.KindInvalidArgument) {
				t.Errorf("Validate() error = %v, want InvalidArgument", err)
			}
		})
	}

	o, err := svc.Validate(cart(model.CartItem{ProdID: "1"}, model.CartItem{ProdID: "2", Quantity: qty(3)}))
	if err != nil {
		t.Fatalf("Validate() without quantity error = %v", err)
	}
	if o.Items[0].Quantity != 1 || o.Items[1].Quantity != 3 {
		t.Errorf("quantities = %d, %d, want 1, 3", o.Items[0].Quantity, o.Items[1].Quantity)
	}

	bad := cart(model.CartItem{ProdID: "1", Quantity: qty(1)})
	bad.OrderDate = "2024-05-02"
	if _, err := svc.Validate(bad); !apperr.Is(err, apperr.KindInvalidArgument) {
		t.Errorf("bad date error = %v", err)
	}
}

func TestCreateOrderFansOut(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedCatalog(t, s)
	rec := &events.Recorder{}
	svc := newService(t, s, rec)

	res, err := svc.CreateOrder(ctx, cart(
		model.CartItem{ProdID: "1", Quantity: qty(2)},
		model.CartItem{ProdID: "2", Quantity: qty(1)},
		model.CartItem{ProdID: "42", Quantity: qty(1)},
	))
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if res.AllSaved != 2 || res.MainUpdated != 1 || res.OtherSaved != 1 || res.TotalItems != 3 {
		t.Errorf("result = %+v", res)
	}

	all, _ := s.Read(ctx, model.TableAllPurch)
	main, _ := s.Read(ctx, model.TableMainPurch)
	other, _ := s.Read(ctx, model.TableOtherPurch)
	if all.Len() != 2 || main.Len() != 1 || other.Len() != 1 {
		t.Fatalf("all=%d main=%d other=%d", all.Len(), main.Len(), other.Len())
	}
	if got := model.FloatOf(main.Row(0).Get(model.ColTotalVolumeGr)); got != 2000 {
		t.Errorf("MainPurch TotalVolumeGr = %v, want 2000", got)
	}
	if got := other.Row(0).Get(model.ColStore).Text(); got != "Онлайн" {
		t.Errorf("OtherPurch Store = %q", got)
	}
	if types := rec.Types(); len(types) != 1 || types[0] != events.OrderCreated {
		t.Errorf("events = %v", types)
	}
}

func TestCreateOrderAccumulatesMainLedger(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedCatalog(t, s)
	svc := newService(t, s, nil)

	req := cart(model.CartItem{ProdID: "1", Quantity: qty(1)})
	for i := 0; i < 2; i++ {
		if _, err := svc.CreateOrder(ctx, req); err != nil {
			t.Fatal(err)
		}
	}

	all, _ := s.Read(ctx, model.TableAllPurch)
	main, _ := s.Read(ctx, model.TableMainPurch)
	if all.Len() != 2 {
		t.Errorf("AllPurch rows = %d, want 2", all.Len())
	}
	if main.Len() != 1 {
		t.Fatalf("MainPurch rows = %d, want 1", main.Len())
	}
	r := main.Row(0)
	if model.IntOf(r.Get(model.ColCount)) != 2 || model.FloatOf(r.Get(model.ColTotalVolumeGr)) != 2000 {
		t.Errorf("merged row = %v", r)
	}
}

func TestLedgerMergeIsIdempotentPerOrder(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	l := NewLedger(s, lock.NewLocal(), time.Second, zap.NewNop())

	o := model.Order{ID: "same", UserID: "u1", Date: 100}
	batch := model.NewLedgerTable()
	batch.Append(Project(model.Product{ProdID: 1, VolumeGr: 100, StoreID: 1}, o, 1).Row())

	for i, want := range []int{1, 0} {
		applied, err := l.Merge(ctx, model.TableMainPurch, batch, aggregation.MainPurchSpec())
		if err != nil {
			t.Fatal(err)
		}
		if applied != want {
			t.Errorf("merge %d applied %d rows, want %d", i+1, applied, want)
		}
	}
	main, _ := s.Read(ctx, model.TableMainPurch)
	if got := model.FloatOf(main.Row(0).Get(model.ColTotalVolumeGr)); got != 100 {
		t.Errorf("TotalVolumeGr = %v after replaying the same order, want 100", got)
	}
}

func TestCreateOrderNothingRoutable(t *testing.T) {
	s := newStore(t)
	seedCatalog(t, s)
	svc := newService(t, s, nil)

	_, err := svc.CreateOrder(context.Background(), cart(model.CartItem{ProdID: "77", Quantity: qty(1)}))
	if !apperr.Is(err, apperr.KindInvalidArgument) {
		t.Fatalf("error = %v, want InvalidArgument", err)
	}
	if _, err := s.Read(context.Background(), model.TableAllPurch); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("AllPurch was written: %v", err)
	}
}

func TestCreateOrderPartialLedgerFailure(t *testing.T) {
	ctx := context.Background()
	base := newStore(t)
	seedCatalog(t, base)
	s := failingStore{Store: base, failWrite: model.TableMainPurch}
	svc := newService(t, s, nil)

	res, err := svc.CreateOrder(ctx, cart(
		model.CartItem{ProdID: "1", Quantity: qty(1)},
		model.CartItem{ProdID: "2", Quantity: qty(1)},
	))
	if err == nil {
		t.Fatal("expected an error")
	}
	if res.AllSaved != 2 || res.MainUpdated != 0 || res.OtherSaved != 1 {
		t.Errorf("result = %+v", res)
	}
	if other, err := base.Read(ctx, model.TableOtherPurch); err != nil || other.Len() != 1 {
		t.Errorf("OtherPurch should still be written: %v", err)
	}
}

func TestCreateOrderHandler(t *testing.T) {
	s := newStore(t)
	seedCatalog(t, s)
	h := CreateOrderHandler(newService(t, s, nil), zap.NewNop())

	t.Run("missing fields", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h(rr, httptest.NewRequest(http.MethodPost, "/api/create_order", bytes.NewBufferString(`{"items":[]}`)))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rr.Code)
		}
		var body struct {
			Fields []string `json:"fields"`
		}
		json.Unmarshal(rr.Body.Bytes(), &body)
		if len(body.Fields) != 3 {
			t.Errorf("fields = %v, want family_id, address_id, order_date", body.Fields)
		}
	})

	t.Run("created", func(t *testing.T) {
		payload := `{"family_id":0,"address_id":"2","order_date":"01.05.2024","user_id":"u9",
			"items":[{"prod_id":1,"quantity":3}]}`
		rr := httptest.NewRecorder()
		h(rr, httptest.NewRequest(http.MethodPost, "/api/create_order", bytes.NewBufferString(payload)))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d body = %s", rr.Code, rr.Body)
		}
		var body struct {
			Status string             `json:"status"`
			Data   model.OrderResult `json:"data"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Status != "success" || body.Data.AllSaved != 1 || body.Data.UserID != "u9" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("quantity defaults to one", func(t *testing.T) {
		payload := `{"family_id":0,"address_id":"2","order_date":"02.05.2024","user_id":"u7",
			"items":[{"prod_id":1},{"prod_id":2,"quantity":null}]}`
		rr := httptest.NewRecorder()
		h(rr, httptest.NewRequest(http.MethodPost, "/api/create_order", bytes.NewBufferString(payload)))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d body = %s", rr.Code, rr.Body)
		}
		all, err := s.Read(context.Background(), model.TableAllPurch)
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range all.Rows() {
			if r.Get(model.ColUserID).Text() == "u7" && model.IntOf(r.Get(model.ColCount)) != 1 {
				t.Errorf("Count = %v, want 1", r.Get(model.ColCount))
			}
		}
	})
}

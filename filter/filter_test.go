package filter

import (
	"testing"
	"time"

	"portion/apperr"
	"portion/model"
	"portion/table"
)

func ledger(rows ...table.Row) *table.Table {
	t := table.New(model.ColProdID, model.ColUserID, model.ColFamilyID, model.ColDate)
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func row(prodID int64, userID string, familyID table.Value, date int64) table.Row {
	return table.Row{
		model.ColProdID:   table.Int(prodID),
		model.ColUserID:   table.String(userID),
		model.ColFamilyID: familyID,
		model.ColDate:     table.Int(date),
	}
}

func TestIdentityFromIDs(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		familyID string
		want     Identity
		wantErr  bool
	}{
		{"personal", "abc", "0", Identity{UserID: "abc", Account: Personal}, false},
		{"family", "abc", "12", Identity{UserID: "abc", FamilyID: 12, Account: Family}, false},
		{"family without user", "", "12", Identity{FamilyID: 12, Account: Family}, false},
		{"family id as float", "", "12.0", Identity{FamilyID: 12, Account: Family}, false},
		{"nothing", "", "", Identity{}, true},
		{"personal without user", "", "0", Identity{}, true},
		{"user only", "abc", "", Identity{}, true},
		{"bad family id", "", "x1", Identity{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IdentityFromIDs(tt.userID, tt.familyID)
			if tt.wantErr {
				if !apperr.Is(err, apperr.KindInvalidArgument) {
					t.Fatalf("error = %v, want InvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("IdentityFromIDs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestByIdentityPersonal(t *testing.T) {
	tb := ledger(
		row(1, "abc", table.Int(0), 0),
		row(2, "abc", table.Float(0), 0),
		row(3, "abc", table.Int(7), 0),
		row(4, "xyz", table.Int(0), 0),
		row(5, "abc", table.String("0"), 0),
	)
	got, err := ByIdentity(tb, model.TableMainPurch, Identity{UserID: "abc", Account: Personal})
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 3 {
		t.Errorf("rows = %d, want 3 (FamilyID coerced to a number)", got.Len())
	}
}

func TestByIdentityPersonalNoMatchIsEmpty(t *testing.T) {
	tb := ledger(row(1, "abc", table.Int(5), 0))
	got, err := ByIdentity(tb, model.TableMainPurch, Identity{UserID: "abc", Account: Personal})
	if err != nil {
		t.Fatalf("ByIdentity() error = %v, want an empty result", err)
	}
	if got.Len() != 0 {
		t.Errorf("rows = %d, want 0", got.Len())
	}
}

func TestByIdentityPersonalSchemaFallbacks(t *testing.T) {
	noFamily := table.New(model.ColProdID, model.ColUserID)
	noFamily.Append(table.Row{model.ColProdID: table.Int(1), model.ColUserID: table.String("abc")})
	noFamily.Append(table.Row{model.ColProdID: table.Int(2), model.ColUserID: table.String("zzz")})
	got, err := ByIdentity(noFamily, model.TableMainPurch, Identity{UserID: "abc", Account: Personal})
	if err != nil || got.Len() != 1 {
		t.Errorf("UserID-only fallback = %v rows, err %v", got, err)
	}

	noUser := table.New(model.ColProdID, model.ColFamilyID)
	_, err = ByIdentity(noUser, model.TableMainPurch, Identity{UserID: "abc", Account: Personal})
	if !apperr.Is(err, apperr.KindMissingColumn) {
		t.Errorf("error = %v, want MissingColumn", err)
	}
}

func TestByIdentityFamily(t *testing.T) {
	tb := ledger(
		row(1, "a", table.Int(12), 0),
		row(2, "b", table.Float(12), 0),
		row(3, "a", table.Int(13), 0),
		row(4, "a", table.Empty(), 0),
	)
	got, err := ByIdentity(tb, model.TableOtherPurch, Identity{FamilyID: 12, Account: Family})
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 2 {
		t.Errorf("rows = %d, want 2", got.Len())
	}

	noFamily := table.New(model.ColProdID, model.ColUserID)
	noFamily.Append(table.Row{model.ColProdID: table.Int(1)})
	got, err = ByIdentity(noFamily, model.TableOtherPurch, Identity{FamilyID: 12, Account: Family})
	if err != nil || got.Len() != 0 {
		t.Errorf("family query without FamilyID column = %d rows, %v", got.Len(), err)
	}
}

func TestByDateRangeInclusiveEnd(t *testing.T) {
	loc := time.UTC
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, loc).Unix()
	end := time.Date(2024, 5, 3, 23, 59, 59, 0, loc).Unix()

	tb := ledger(
		row(1, "a", table.Int(0), start),
		row(2, "a", table.Int(0), end),
		row(3, "a", table.Int(0), end+1),
		row(4, "a", table.Int(0), start-1),
	)
	tb.Append(table.Row{model.ColProdID: table.Int(5), model.ColDate: table.String("03.05.2024")})
	tb.Append(table.Row{model.ColProdID: table.Int(6)})

	got, err := ByDateRange(tb, model.TableAllPurch, model.ColDate, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 2 {
		t.Fatalf("rows = %d, want 2", got.Len())
	}
	for _, r := range got.Rows() {
		if id, _ := r.Get(model.ColProdID).Int(); id != 1 && id != 2 {
			t.Errorf("unexpected ProdID %d in range", id)
		}
	}

	if _, err := ByDateRange(table.New(model.ColProdID), model.TableAllPurch, model.ColDate, start, end); !apperr.Is(err, apperr.KindMissingColumn) {
		t.Errorf("missing Date column error = %v", err)
	}
}

func TestByDayMatchesCalendarDay(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	day := time.Date(2024, 5, 2, 0, 0, 0, 0, loc)
	morning := time.Date(2024, 5, 2, 8, 0, 0, 0, loc).Unix()
	night := time.Date(2024, 5, 2, 23, 30, 0, 0, loc).Unix()
	nextDay := time.Date(2024, 5, 3, 0, 0, 1, 0, loc).Unix()

	tb := table.New(model.ColRationDate)
	for _, ts := range []int64{morning, night, nextDay} {
		tb.Append(table.Row{model.ColRationDate: table.Int(ts)})
	}
	tb.Append(table.Row{model.ColRationDate: table.Empty()})

	if got := ByDay(tb, model.ColRationDate, day, loc); got.Len() != 2 {
		t.Errorf("rows = %d, want 2", got.Len())
	}
}

func TestByUser(t *testing.T) {
	tb := table.New(model.ColUserID)
	tb.Append(table.Row{model.ColUserID: table.String("u1")})
	tb.Append(table.Row{model.ColUserID: table.String("u2")})
	got, err := ByUser(tb, model.TableRationInfo, "u1")
	if err != nil || got.Len() != 1 {
		t.Errorf("ByUser() = %v, %v", got, err)
	}
	if _, err := ByUser(table.New(model.ColProdID), model.TableRationInfo, "u1"); !apperr.Is(err, apperr.KindMissingColumn) {
		t.Errorf("error = %v, want MissingColumn", err)
	}
}

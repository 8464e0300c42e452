package parsers

import (
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"portion/table"
)

func TestParseTableCSVWithBOM(t *testing.T) {
	in := "\xEF\xBB\xBFProdID,Name,VolumeGr\n5,Молоко,1000\n\n6,Хлеб,\n"
	got, err := ParseTableCSV(strings.NewReader(in), "utf-8", "ProdID", "Name")
	if err != nil {
		t.Fatalf("ParseTableCSV() error = %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("rows = %d, want 2 (blank line skipped)", got.Len())
	}
	if got.Columns()[0] != "ProdID" {
		t.Errorf("BOM leaked into the first header: %q", got.Columns()[0])
	}
	if got.Row(0).Get("ProdID").Kind() != table.KindInt {
		t.Errorf("ProdID should parse as an integer")
	}
	if !got.Row(1).Get("VolumeGr").IsEmpty() {
		t.Errorf("empty cell should stay empty")
	}
}

func TestParseTableCSVLegacyEncodingAndSemicolons(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().String("StoreID;Name\n2;Супермаркет\n")
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseTableCSV(strings.NewReader(encoded), "windows-1251", "StoreID")
	if err != nil {
		t.Fatalf("ParseTableCSV() error = %v", err)
	}
	if got.Len() != 1 || got.Row(0).Get("Name").Text() != "Супермаркет" {
		t.Errorf("decoded rows = %v", got.Rows())
	}
}

func TestParseTableCSVMissingHeader(t *testing.T) {
	_, err := ParseTableCSV(strings.NewReader("Name\nx\n"), "", "ProdID")
	if err == nil || !strings.Contains(err.Error(), "ProdID") {
		t.Errorf("error = %v, want missing ProdID header", err)
	}
}

func TestNewDecodingReaderUnknownEncoding(t *testing.T) {
	if _, err := NewDecodingReader(strings.NewReader(""), "no-such-charset"); err == nil {
		t.Error("unknown encodings must be rejected")
	}
}

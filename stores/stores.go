// C:\Users\wasab\OneDrive\デスクトップ\PORTION\stores\stores.go

// Package stores は店舗IDを表示名に変換します。
package stores

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"portion/model"
	"portion/parsers"
)

var defaultNames = map[int64]string{
	1: "Лавка",
	2: "Супермаркет",
	3: "Онлайн",
	4: "Рынок",
}

var (
	mu    sync.RWMutex
	names = copyNames(defaultNames)
)

func copyNames(m map[int64]string) map[int64]string {
	out := make(map[int64]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// LoadStoresFile は StoreID と Store（または Name）列を持つCSVで店舗名を上書きします。
// IDが数値でない行はスキップします。
func LoadStoresFile(path, encoding string) (map[int64]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadStoresFile: open %s: %w", path, err)
	}
	defer file.Close()

	t, err := parsers.ParseTableCSV(file, encoding, model.ColStoreID)
	if err != nil {
		return nil, fmt.Errorf("LoadStoresFile: read %s: %w", path, err)
	}
	nameColumn := model.ColStore
	if !t.HasColumn(nameColumn) {
		nameColumn = model.ColName
	}

	m := copyNames(defaultNames)
	for _, r := range t.Rows() {
		id, ok := r.Get(model.ColStoreID).Int()
		if !ok {
			continue
		}
		if name := strings.TrimSpace(r.Get(nameColumn).Text()); name != "" {
			m[id] = name
		}
	}

	mu.Lock()
	names = m
	mu.Unlock()
	return copyNames(m), nil
}

// ResolveName は店舗の表示名を返します。不明なら "Магазин N" です。
func ResolveName(id int64) string {
	mu.RLock()
	defer mu.RUnlock()
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("Магазин %d", id)
}

// Names は現在のID→店舗名マップのコピーを返します。
func Names() map[int64]string {
	mu.RLock()
	defer mu.RUnlock()
	return copyNames(names)
}

// Reset は組み込みの店舗名に戻します。
func Reset() {
	mu.Lock()
	names = copyNames(defaultNames)
	mu.Unlock()
}

// C:\Users\wasab\OneDrive\デスクトップ\PORTION\loader\loader.go

// Package loader は商品カタログと商品リンク表をxlsxまたはCSVから取り込みます。
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"portion/apperr"
	"portion/database"
	"portion/model"
	"portion/parsers"
	"portion/table"
	"portion/workbook"
)

// Sources はカタログ取り込みで読むファイルです。
type Sources struct {
	CatalogFile      string
	ProductLinksFile string
	Encoding         string
}

type Counts struct {
	Products int `json:"products"`
	Links    int `json:"links"`
}

// ReadSource は拡張子に応じてxlsxまたはCSVからテーブルを読み込みます。
// ファイルが無い場合は name の NotFound エラーを返します。
func ReadSource(path, name, encoding string, required ...string) (*table.Table, error) {
	var t *table.Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		var err error
		if t, err = workbook.ReadFile(path, name); err != nil {
			return nil, err
		}
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, table.ErrNotFound(name)
			}
			return nil, fmt.Errorf("could not open file %s: %w", path, err)
		}
		defer f.Close()
		if t, err = parsers.ParseTableCSV(f, encoding); err != nil {
			return nil, apperr.Wrap(apperr.KindInvalidArgument, fmt.Sprintf("failed to parse %s", path), err)
		}
	default:
		return nil, apperr.Invalid("unsupported file type for %s: %s", name, path)
	}
	for _, c := range required {
		if !t.HasColumn(c) {
			return nil, apperr.MissingColumn(name, c)
		}
	}
	return t, nil
}

// ImportCatalog は Products と ProdLinks を src の内容で置き換えます。
// リンクファイルは任意です。
func ImportCatalog(ctx context.Context, store table.Store, src Sources, log *zap.Logger) (Counts, error) {
	var counts Counts

	products, err := ReadSource(src.CatalogFile, model.TableProducts, src.Encoding, model.ColProdID, model.ColName)
	if err != nil {
		return counts, err
	}
	if err := store.Write(ctx, model.TableProducts, products); err != nil {
		return counts, fmt.Errorf("failed to write %s: %w", model.TableProducts, err)
	}
	counts.Products = products.Len()
	log.Info("catalog imported", zap.String("file", src.CatalogFile), zap.Int("rows", counts.Products))

	if src.ProductLinksFile == "" {
		return counts, nil
	}
	links, err := ReadSource(src.ProductLinksFile, model.TableProdLinks, src.Encoding)
	if apperr.Is(err, apperr.KindNotFound) {
		log.Warn("product links file not found, skipping", zap.String("file", src.ProductLinksFile))
		return counts, nil
	}
	if err != nil {
		return counts, err
	}
	if err := store.Write(ctx, model.TableProdLinks, links); err != nil {
		return counts, fmt.Errorf("failed to write %s: %w", model.TableProdLinks, err)
	}
	counts.Links = links.Len()
	log.Info("product links imported", zap.String("file", src.ProductLinksFile), zap.Int("rows", counts.Links))
	return counts, nil
}

// InitDatabase はスキーマを適用し、カタログが未登録なら src から取り込みます。
// カタログファイルが無くてもログに残すだけで、空のまま起動します。
func InitDatabase(ctx context.Context, db *sqlx.DB, src Sources, log *zap.Logger) (*database.SheetStore, error) {
	if err := database.ApplySchema(db); err != nil {
		return nil, err
	}
	store := database.NewSheetStore(db)

	_, err := store.Read(ctx, model.TableProducts)
	if err == nil {
		return store, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}
	if _, err := ImportCatalog(ctx, store, src, log); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			log.Warn("catalog file not found, starting without a catalog", zap.String("file", src.CatalogFile))
			return store, nil
		}
		return nil, err
	}
	return store, nil
}

// C:\Users\wasab\OneDrive\デスクトップ\PORTION\routes.go
package main

import (
	"net/http"

	"go.uber.org/zap"

	"portion/apperr"
	"portion/config"
	"portion/images"
	"portion/loader"
	"portion/model"
	"portion/order"
	"portion/product"
	"portion/purchase"
	"portion/ration"
	"portion/render"
	"portion/reprocess"
	"portion/table"
)

const version = "1.0.0"

// App はルートが使うコンポーネントをまとめます。
type App struct {
	Storage   string
	Store     table.Store
	Ledger    *order.Ledger
	Orders    *order.Service
	Purchases *purchase.Service
	Rations   *ration.Log
	Catalog   *product.Catalog
	Images    images.Source
	Log       *zap.Logger
}

var modules = []string{"orders", "purchases", "ration", "products", "images", "reprocess"}

var tableNames = []string{
	model.TableAllPurch, model.TableMainPurch, model.TableOtherPurch,
	model.TableRationInfo, model.TableProducts, model.TableProdLinks,
}

func only(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func SetupRoutes(mux *http.ServeMux, app *App) {
	log := app.Log

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		render.JSON(w, http.StatusOK, map[string]interface{}{
			"status":  "running",
			"name":    "portion",
			"version": version,
			"storage": app.Storage,
			"modules": modules,
		})
	})
	mux.HandleFunc("/config", only(http.MethodGet, tableStatusHandler(app.Store, log)))

	mux.HandleFunc("/create_order", only(http.MethodPost, order.CreateOrderHandler(app.Orders, log)))

	mux.HandleFunc("/get_main_purch", only(http.MethodPost, purchase.MainPurchHandler(app.Purchases, log)))
	mux.HandleFunc("/get_other_purch", only(http.MethodPost, purchase.OtherPurchHandler(app.Purchases, log)))
	mux.HandleFunc("/get_allpurch_by_daterange", only(http.MethodPost, purchase.AllPurchByRangeHandler(app.Purchases, log)))
	mux.HandleFunc("/update_main_purch", only(http.MethodPost, purchase.UpdateMainHandler(app.Purchases, log)))
	mux.HandleFunc("/update_other_purch", only(http.MethodPost, purchase.UpdateOtherHandler(app.Purchases, log)))

	mux.HandleFunc("/add_to_ration", only(http.MethodPost, ration.AddHandler(app.Rations, log)))
	mux.HandleFunc("/get_ration_by_date", only(http.MethodPost, ration.ByDateHandler(app.Rations, log)))
	mux.HandleFunc("/get_ration_by_daterange", only(http.MethodPost, ration.ByDateRangeHandler(app.Rations, log)))

	mux.HandleFunc("/search_products", only(http.MethodPost, product.SearchProductsHandler(app.Catalog, log)))
	mux.HandleFunc("/product_link/", only(http.MethodGet, product.ProductLinkHandler(app.Catalog, log)))
	mux.HandleFunc("/image/", only(http.MethodGet, images.Handler(app.Images, log)))

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			GetConfigHandler()(w, r)
		case http.MethodPost:
			SaveConfigHandler(log)(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/reprocess/all", reprocess.Handler(app.Ledger, log))

	if app.Storage == config.StorageSQLite {
		mux.HandleFunc("/api/catalog/reload", loader.ReloadCatalogHandler(app.Store, catalogSources, log))
	} else {
		mux.HandleFunc("/api/catalog/reload", func(w http.ResponseWriter, r *http.Request) {
			writeJSONError(w, "Catalog reload is only available with the sqlite backend", http.StatusBadRequest)
		})
	}
}

func catalogSources() loader.Sources {
	cfg := config.GetConfig()
	return loader.Sources{
		CatalogFile:      cfg.CatalogFile,
		ProductLinksFile: cfg.ProductLinksFile,
		Encoding:         cfg.ImportEncoding,
	}
}

type tableStatus struct {
	Exists bool   `json:"exists"`
	Rows   int    `json:"rows"`
	Error  string `json:"error,omitempty"`
}

// tableStatusHandler は各テーブルの有無と行数を返します。
func tableStatusHandler(store table.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := make(map[string]tableStatus, len(tableNames))
		for _, name := range tableNames {
			t, err := store.Read(r.Context(), name)
			switch {
			case err == nil:
				status[name] = tableStatus{Exists: true, Rows: t.Len()}
			case apperr.Is(err, apperr.KindNotFound):
				status[name] = tableStatus{}
			default:
				log.Warn("failed to read table", zap.String("table", name), zap.Error(err))
				status[name] = tableStatus{Error: err.Error()}
			}
		}
		render.Success(w, map[string]interface{}{"tables": status})
	}
}

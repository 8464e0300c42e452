// C:\Users\wasab\OneDrive\デスクトップ\PORTION\loader\handler.go
package loader

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"portion/render"
	"portion/table"
)

// ReloadCatalogHandler は POST /api/catalog/reload を処理します。
func ReloadCatalogHandler(store table.Store, src func() Sources, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		log.Info("reloading catalog")
		counts, err := ImportCatalog(r.Context(), store, src(), log)
		if err != nil {
			render.Error(w, log, err)
			return
		}
		render.Success(w, map[string]interface{}{
			"message": fmt.Sprintf("Каталог обновлен: товаров %d, ссылок %d", counts.Products, counts.Links),
			"data":    counts,
		})
	}
}

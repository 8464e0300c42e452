// C:\Users\wasab\OneDrive\デスクトップ\PORTION\product\handler.go
package product

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"portion/apperr"
	"portion/mappers"
	"portion/render"
)

type searchRequest struct {
	SearchTerm string `json:"search_term"`
}

// SearchProductsHandler は POST /search_products を処理します。
func SearchProductsHandler(c *Catalog, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := render.Decode(r, &req); err != nil {
			render.Error(w, log, err)
			return
		}
		if strings.TrimSpace(req.SearchTerm) == "" {
			render.Success(w, map[string]interface{}{
				"products": []mappers.ProductView{},
				"count":    0,
				"message":  "Введите поисковый запрос",
			})
			return
		}

		found, err := c.Search(r.Context(), req.SearchTerm)
		if err != nil {
			render.Error(w, log, err)
			return
		}
		render.Success(w, map[string]interface{}{
			"products": mappers.ToProductViews(found),
			"count":    len(found),
			"message":  fmt.Sprintf("Найдено %d товаров по запросу '%s'", len(found), strings.ToLower(req.SearchTerm)),
		})
	}
}

type linkResponse struct {
	Success bool      `json:"success"`
	Data    *linkData `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
}

type linkData struct {
	ProdID int64  `json:"prodID"`
	URL    string `json:"url"`
}

// ProductLinkHandler は GET /product_link/{prod_id} を処理します。
func ProductLinkHandler(c *Catalog, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.URL.Path, "/product_link/")
		prodID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			render.JSON(w, http.StatusNotFound, linkResponse{Error: "Product link not found"})
			return
		}

		url, ok, err := c.Link(r.Context(), prodID)
		if err != nil {
			status := apperr.HTTPStatus(err)
			if status >= http.StatusInternalServerError {
				log.Error("failed to read product links", zap.Error(err))
			}
			render.JSON(w, status, linkResponse{Error: apperr.Message(err)})
			return
		}
		if !ok {
			render.JSON(w, http.StatusOK, linkResponse{Error: "Product link not found"})
			return
		}
		render.JSON(w, http.StatusOK, linkResponse{Success: true, Data: &linkData{ProdID: prodID, URL: url}})
	}
}

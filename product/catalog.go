// C:\Users\wasab\OneDrive\デスクトップ\PORTION\product\catalog.go

// Package product はカタログ検索と外部商品リンクの解決を行います。
package product

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"portion/apperr"
	"portion/model"
	"portion/table"
)

const DefaultSearchLimit = 50

type Catalog struct {
	store table.Store
	limit int
	log   *zap.Logger
}

func NewCatalog(store table.Store, limit int, log *zap.Logger) *Catalog {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &Catalog{store: store, limit: limit, log: log}
}

type hit struct {
	p    model.Product
	rank [3]int
}

// Search は term を Name, Tag, Cat に対して大文字小文字を区別せず照合します。
// カタログ順で最初の limit 件を残し、名前一致、カテゴリ一致、タグ一致の順に並べます。
func (c *Catalog) Search(ctx context.Context, term string) ([]model.Product, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []model.Product{}, nil
	}
	t, err := c.store.Read(ctx, model.TableProducts)
	if err != nil {
		return nil, err
	}

	var hits []hit
	for _, r := range t.Rows() {
		name := strings.ToLower(r.Get(model.ColName).Text())
		tag := strings.ToLower(r.Get(model.ColTag).Text())
		cat := strings.ToLower(r.Get(model.ColCat).Text())
		if !strings.Contains(name, term) && !strings.Contains(tag, term) && !strings.Contains(cat, term) {
			continue
		}
		p := model.ProductFromRow(r)
		if p.ProdID == 0 {
			p.ProdID = int64(len(hits) + 1)
		}
		hits = append(hits, hit{p: p, rank: rank(p, term)})
		if len(hits) >= c.limit {
			break
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i].rank, hits[j].rank
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	out := make([]model.Product, len(hits))
	for i, h := range hits {
		out[i] = h.p
	}
	c.log.Debug("catalog search", zap.String("term", term), zap.Int("hits", len(out)))
	return out, nil
}

func rank(p model.Product, term string) [3]int {
	var r [3]int
	if !strings.Contains(strings.ToLower(p.Name), term) {
		r[0] = 1
	}
	if !strings.Contains(strings.ToLower(p.Cat), term) {
		r[1] = 2
	}
	if !strings.Contains(strings.ToLower(p.Tag), term) {
		r[2] = 3
	}
	return r
}

// Link は prodID の外部URLを返します。
// ProdID と ProductURL の列が揃っていないテーブルはエラーです。
func (c *Catalog) Link(ctx context.Context, prodID int64) (string, bool, error) {
	t, err := c.store.Read(ctx, model.TableProdLinks)
	if err != nil {
		return "", false, err
	}
	for _, col := range []string{model.ColProdID, model.ColProductURL} {
		if !t.HasColumn(col) {
			return "", false, apperr.Invalid("Product links table must contain '%s' column", col)
		}
	}
	want := table.Int(prodID)
	for _, r := range t.Rows() {
		if !r.Get(model.ColProdID).Equal(want) {
			continue
		}
		url := strings.TrimSpace(r.Get(model.ColProductURL).Text())
		if url == "" || strings.EqualFold(url, "nan") {
			return "", false, nil
		}
		return url, true, nil
	}
	return "", false, nil
}

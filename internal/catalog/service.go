package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/pricing"
)

// Article is a catalog row as served to the POS screen. Price is in the
// reference currency; TaxCode carries the upstream ar_iva value.
type Article struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	TaxCode     int             `json:"taxCode"`
	Barcode     string          `json:"barcode"`
	Stock       decimal.Decimal `json:"stock"`
	Expiration  *string         `json:"expiration,omitempty"`
	Lot         *string         `json:"lot,omitempty"`
}

// SearchParams captures the POS search box inputs.
type SearchParams struct {
	Query       string
	WarehouseID int64
	OnlyInStock bool
	Limit       int
}

type store interface {
	SearchArticles(ctx context.Context, params SearchParams) ([]Article, error)
	GetArticle(ctx context.Context, warehouseID, articleID int64) (Article, error)
}

// ErrArticleNotFound reports a lookup for an id the catalog does not carry.
var ErrArticleNotFound = errors.New("article not found")

// PGStore queries the article catalog in Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

const articleColumns = `a.ar_codigo, a.ar_descripcion, a.ar_pvg, a.ar_iva, a.ar_codbarra,
	COALESCE(s.al_cantidad, 0), to_char(s.al_vencimiento, 'YYYY-MM-DD'), s.al_lote`

// SearchArticles matches the description or barcode against the query within
// one warehouse, optionally restricted to rows with stock.
func (p *PGStore) SearchArticles(ctx context.Context, params SearchParams) ([]Article, error) {
	if p == nil || p.Pool == nil {
		return nil, errors.New("catalog store not configured")
	}
	query := `SELECT ` + articleColumns + `
		FROM articulos a
		LEFT JOIN almacen s ON s.al_articulo = a.ar_codigo AND s.al_deposito = $2
		WHERE (a.ar_descripcion ILIKE '%' || $1 || '%' OR a.ar_codbarra = $1)`
	if params.OnlyInStock {
		query += ` AND COALESCE(s.al_cantidad, 0) > 0`
	}
	query += ` ORDER BY a.ar_descripcion LIMIT $3`

	rows, err := p.Pool.Query(ctx, query, params.Query, params.WarehouseID, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetArticle fetches a single article with its stock row for the warehouse.
func (p *PGStore) GetArticle(ctx context.Context, warehouseID, articleID int64) (Article, error) {
	if p == nil || p.Pool == nil {
		return Article{}, errors.New("catalog store not configured")
	}
	query := `SELECT ` + articleColumns + `
		FROM articulos a
		LEFT JOIN almacen s ON s.al_articulo = a.ar_codigo AND s.al_deposito = $2
		WHERE a.ar_codigo = $1`
	rows, err := p.Pool.Query(ctx, query, articleID, warehouseID)
	if err != nil {
		return Article{}, fmt.Errorf("get article: %w", err)
	}
	defer rows.Close()
	articles, err := scanArticles(rows)
	if err != nil {
		return Article{}, err
	}
	if len(articles) == 0 {
		return Article{}, ErrArticleNotFound
	}
	return articles[0], nil
}

func scanArticles(rows pgx.Rows) ([]Article, error) {
	var result []Article
	for rows.Next() {
		var (
			a          Article
			expiration *string
			lot        *string
		)
		if err := rows.Scan(&a.ID, &a.Description, &a.Price, &a.TaxCode, &a.Barcode, &a.Stock, &expiration, &lot); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.Expiration = expiration
		a.Lot = lot
		result = append(result, a)
	}
	return result, rows.Err()
}

// Service orchestrates article search with short-lived result caching.
type Service struct {
	Store            store
	Cache            *Cache
	MaxResults       int
	DefaultWarehouse int64
}

func (s *Service) maxResults() int {
	if s.MaxResults < 1 {
		return 10
	}
	return s.MaxResults
}

// ParseSearchParams normalises the raw query values. Parameter names follow
// the upstream API the original front-end talked to.
func (s *Service) ParseSearchParams(values url.Values) (SearchParams, error) {
	params := SearchParams{
		Query:       strings.TrimSpace(values.Get("buscar")),
		WarehouseID: s.DefaultWarehouse,
		Limit:       s.maxResults(),
	}
	if params.Query == "" {
		return params, common.NewAppError("BAD_REQUEST", "buscar is required", 400, nil)
	}
	if v := strings.TrimSpace(values.Get("id_deposito")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 1 {
			return params, common.NewAppError("BAD_REQUEST", "id_deposito must be a positive integer", 400, err)
		}
		params.WarehouseID = id
	}
	if v := strings.TrimSpace(values.Get("stock")); v != "" {
		params.OnlyInStock = v == "1" || strings.EqualFold(v, "true")
	}
	return params, nil
}

// Search returns up to MaxResults matching articles, consulting the cache
// first. Search results are cached briefly; the snapshot taken at add time is
// what the cart trusts, not the cache.
func (s *Service) Search(ctx context.Context, params SearchParams) ([]Article, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("catalog service not configured")
	}
	if params.Limit < 1 || params.Limit > s.maxResults() {
		params.Limit = s.maxResults()
	}
	key := searchCacheKey(params)
	var cached []Article
	if hit, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}
	articles, err := s.Store.SearchArticles(ctx, params)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []Article{}
	}
	_ = s.Cache.SetJSON(ctx, key, articles)
	return articles, nil
}

// Lookup resolves the pricing snapshot for an article id. It satisfies the
// session package's ArticleSource.
func (s *Service) Lookup(ctx context.Context, articleID int64) (pricing.Article, bool, error) {
	if s == nil || s.Store == nil {
		return pricing.Article{}, false, errors.New("catalog service not configured")
	}
	article, err := s.Store.GetArticle(ctx, s.DefaultWarehouse, articleID)
	if err != nil {
		if errors.Is(err, ErrArticleNotFound) {
			return pricing.Article{}, false, nil
		}
		return pricing.Article{}, false, err
	}
	out := pricing.Article{
		ID:          article.ID,
		Description: article.Description,
		UnitPrice:   article.Price,
		TaxCategory: pricing.TaxCategory(article.TaxCode),
	}
	if article.Lot != nil {
		out.Lot = *article.Lot
	}
	if article.Expiration != nil {
		out.Expiration = *article.Expiration
	}
	return out, true, nil
}

func searchCacheKey(params SearchParams) string {
	raw := fmt.Sprintf("%s|%d|%t|%d", strings.ToLower(params.Query), params.WarehouseID, params.OnlyInStock, params.Limit)
	sum := sha256.Sum256([]byte(raw))
	return "pos:catalog:search:" + hex.EncodeToString(sum[:8])
}

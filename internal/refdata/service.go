// Package refdata serves the slow-moving reference lists a terminal needs to
// finalise a sale: branches, warehouses, sellers and customers.
package refdata

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Branch is a selling point (sucursal).
type Branch struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Warehouse is a stock location (deposito) attached to a branch.
type Warehouse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	BranchID int64  `json:"branchId"`
}

// Seller is an operator who can be credited with a sale.
type Seller struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Customer is a registered client searchable by name or tax id.
type Customer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	RUC  string `json:"ruc"`
}

type store interface {
	ListBranches(ctx context.Context) ([]Branch, error)
	ListWarehouses(ctx context.Context) ([]Warehouse, error)
	ListSellers(ctx context.Context) ([]Seller, error)
	SearchCustomers(ctx context.Context, query string, limit int) ([]Customer, error)
}

// PGStore reads reference data straight from Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

func (p *PGStore) ListBranches(ctx context.Context) ([]Branch, error) {
	rows, err := p.Pool.Query(ctx, `SELECT su_codigo, su_descripcion FROM sucursales ORDER BY su_descripcion`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (p *PGStore) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	rows, err := p.Pool.Query(ctx, `SELECT dep_codigo, dep_descripcion, dep_sucursal FROM depositos ORDER BY dep_descripcion`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.BranchID); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (p *PGStore) ListSellers(ctx context.Context) ([]Seller, error) {
	rows, err := p.Pool.Query(ctx, `SELECT ven_codigo, ven_nombre FROM vendedores ORDER BY ven_nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Seller
	for rows.Next() {
		var s Seller
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *PGStore) SearchCustomers(ctx context.Context, query string, limit int) ([]Customer, error) {
	rows, err := p.Pool.Query(ctx, `SELECT cli_codigo, cli_nombre, COALESCE(cli_ruc, '')
		FROM clientes
		WHERE cli_nombre ILIKE '%' || $1 || '%' OR cli_ruc = $1
		ORDER BY cli_nombre
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.RUC); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Service caches the reference lists and proxies customer search.
type Service struct {
	Store      store
	Cache      *Cache
	MaxResults int
}

func (s *Service) maxResults() int {
	if s.MaxResults < 1 {
		return 10
	}
	return s.MaxResults
}

// Branches returns all branches, cache first.
func (s *Service) Branches(ctx context.Context) ([]Branch, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("refdata service not configured")
	}
	var cached []Branch
	if hit, err := s.Cache.GetJSON(ctx, "pos:refdata:branches", &cached); err == nil && hit {
		return cached, nil
	}
	branches, err := s.Store.ListBranches(ctx)
	if err != nil {
		return nil, err
	}
	if branches == nil {
		branches = []Branch{}
	}
	_ = s.Cache.SetJSON(ctx, "pos:refdata:branches", branches)
	return branches, nil
}

// Warehouses returns all warehouses, cache first.
func (s *Service) Warehouses(ctx context.Context) ([]Warehouse, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("refdata service not configured")
	}
	var cached []Warehouse
	if hit, err := s.Cache.GetJSON(ctx, "pos:refdata:warehouses", &cached); err == nil && hit {
		return cached, nil
	}
	warehouses, err := s.Store.ListWarehouses(ctx)
	if err != nil {
		return nil, err
	}
	if warehouses == nil {
		warehouses = []Warehouse{}
	}
	_ = s.Cache.SetJSON(ctx, "pos:refdata:warehouses", warehouses)
	return warehouses, nil
}

// Sellers returns all sellers, cache first.
func (s *Service) Sellers(ctx context.Context) ([]Seller, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("refdata service not configured")
	}
	var cached []Seller
	if hit, err := s.Cache.GetJSON(ctx, "pos:refdata:sellers", &cached); err == nil && hit {
		return cached, nil
	}
	sellers, err := s.Store.ListSellers(ctx)
	if err != nil {
		return nil, err
	}
	if sellers == nil {
		sellers = []Seller{}
	}
	_ = s.Cache.SetJSON(ctx, "pos:refdata:sellers", sellers)
	return sellers, nil
}

// SearchCustomers matches customers by name fragment or exact RUC. The buscar
// parameter is required; results are capped at MaxResults.
func (s *Service) SearchCustomers(ctx context.Context, values url.Values) ([]Customer, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("refdata service not configured")
	}
	query := strings.TrimSpace(values.Get("buscar"))
	if query == "" {
		return nil, common.NewAppError("BAD_REQUEST", "buscar is required", 400, nil)
	}
	key := customerCacheKey(query)
	var cached []Customer
	if hit, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}
	customers, err := s.Store.SearchCustomers(ctx, query, s.maxResults())
	if err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []Customer{}
	}
	_ = s.Cache.SetJSON(ctx, key, customers)
	return customers, nil
}

func customerCacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(query)))
	return "pos:refdata:customers:" + hex.EncodeToString(sum[:8])
}

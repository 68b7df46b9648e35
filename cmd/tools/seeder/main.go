package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedBranches(ctx, pool)
	seedSellers(ctx, pool)
	seedCustomers(ctx, pool)
	seedArticles(ctx, pool)

	log.Println("Seeding completed successfully!")
}

func seedBranches(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("Seeding branches and warehouses...")
	branches := []string{"Casa Central", "Sucursal Este"}
	for _, name := range branches {
		var branchID int64
		err := pool.QueryRow(ctx, `
			INSERT INTO sucursales (su_descripcion) VALUES ($1)
			ON CONFLICT DO NOTHING
			RETURNING su_codigo;
		`, name).Scan(&branchID)
		if err != nil {
			if err := pool.QueryRow(ctx, `SELECT su_codigo FROM sucursales WHERE su_descripcion = $1`, name).Scan(&branchID); err != nil {
				log.Printf("Failed to seed branch %s: %v", name, err)
				continue
			}
		}
		_, err = pool.Exec(ctx, `
			INSERT INTO depositos (dep_descripcion, dep_sucursal)
			SELECT $1, $2
			WHERE NOT EXISTS (SELECT 1 FROM depositos WHERE dep_descripcion = $1);
		`, "Deposito "+name, branchID)
		if err != nil {
			log.Printf("Failed to seed warehouse for %s: %v", name, err)
		}
	}
}

func seedSellers(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("Seeding sellers...")
	sellers := []string{"Ana Gonzalez", "Carlos Benitez", "Maria Duarte"}
	for _, name := range sellers {
		_, err := pool.Exec(ctx, `
			INSERT INTO vendedores (ven_nombre)
			SELECT $1
			WHERE NOT EXISTS (SELECT 1 FROM vendedores WHERE ven_nombre = $1);
		`, name)
		if err != nil {
			log.Printf("Failed to seed seller %s: %v", name, err)
		}
	}
}

func seedCustomers(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("Seeding customers...")
	customers := []struct {
		Name string
		RUC  string
	}{
		{"Juan Perez", "800123-4"},
		{"Rosa Martinez", "1234567-8"},
		{"Comercial Guarani SA", "80012345-6"},
		{"Cliente Ocasional", ""},
	}
	for _, c := range customers {
		_, err := pool.Exec(ctx, `
			INSERT INTO clientes (cli_nombre, cli_ruc)
			SELECT $1, NULLIF($2, '')
			WHERE NOT EXISTS (SELECT 1 FROM clientes WHERE cli_nombre = $1);
		`, c.Name, c.RUC)
		if err != nil {
			log.Printf("Failed to seed customer %s: %v", c.Name, err)
		}
	}
}

func seedArticles(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("Seeding articles...")
	articles := []struct {
		Description string
		Price       int64
		TaxCode     int
		Barcode     string
		Stock       int
	}{
		{"Coca Cola 1L", 12000, 2, "7790895000997", 240},
		{"Pan Felipe", 5000, 1, "", 80},
		{"Harina 000 1kg", 6500, 1, "7791234000123", 150},
		{"Libro Escolar", 45000, 0, "9789995300001", 35},
		{"Detergente 900ml", 18000, 2, "7790520001234", 60},
		{"Yerba Mate 500g", 15000, 1, "7840100000456", 200},
		{"Aceite Girasol 900ml", 14500, 1, "7790070012345", 90},
		{"Cuaderno Universitario", 22000, 0, "", 120},
	}
	for _, a := range articles {
		var articleID int64
		err := pool.QueryRow(ctx, `
			INSERT INTO articulos (ar_descripcion, ar_pvg, ar_iva, ar_codbarra)
			SELECT $1, $2, $3, NULLIF($4, '')
			WHERE NOT EXISTS (SELECT 1 FROM articulos WHERE ar_descripcion = $1)
			RETURNING ar_codigo;
		`, a.Description, a.Price, a.TaxCode, a.Barcode).Scan(&articleID)
		if err != nil {
			if err := pool.QueryRow(ctx, `SELECT ar_codigo FROM articulos WHERE ar_descripcion = $1`, a.Description).Scan(&articleID); err != nil {
				log.Printf("Failed to seed article %s: %v", a.Description, err)
				continue
			}
		}
		_, err = pool.Exec(ctx, `
			INSERT INTO almacen (al_articulo, al_deposito, al_cantidad)
			SELECT $1, dep_codigo, $2 FROM depositos
			ON CONFLICT (al_articulo, al_deposito) DO UPDATE SET al_cantidad = EXCLUDED.al_cantidad;
		`, articleID, a.Stock)
		if err != nil {
			log.Printf("Failed to seed stock for %s: %v", a.Description, err)
		}
	}
}

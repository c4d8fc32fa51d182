package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/shipquote/internal/pkg/config"
)

var (
	migrationFiles = []string{
		"migrations/001_init_extensions.sql",
		"migrations/002_core_tables.sql",
	}
	seedFiles = []string{
		"migrations/seed.sql",
	}
)

const dropTables = `
DROP TABLE IF EXISTS order_items;
DROP TABLE IF EXISTS orders;
DROP TABLE IF EXISTS inventory;
DROP TABLE IF EXISTS products;
DROP TABLE IF EXISTS customers;
DROP TABLE IF EXISTS sellers;
DROP TABLE IF EXISTS warehouses;
`

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|seed|down>")
	}

	cfg, err := config.Load("shipquote-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		execFiles(ctx, pool, migrationFiles)
		log.Println("all migrations applied")
	case "seed":
		execFiles(ctx, pool, seedFiles)
		log.Println("demo data loaded")
	case "down":
		if _, err := pool.Exec(ctx, dropTables); err != nil {
			log.Fatalf("down: %v", err)
		}
		log.Println("tables dropped")
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func execFiles(ctx context.Context, pool *pgxpool.Pool, files []string) {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		if _, err := pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}
}

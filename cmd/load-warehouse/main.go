// Command load-warehouse loads the generated dataset into a SQL warehouse.
// The target engine is picked from the DSN scheme: a plain path or
// sqlite:// opens SQLite, postgres:// uses Postgres, mysql:// uses MySQL.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/warehouse"
)

var (
	configPath = flag.String("config", "", "Config file path (default: optional ./config.yml)")
	dsn        = flag.String("dsn", "", "Warehouse DSN (overrides the configured one)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("load config: %v", err)
	}
	if *dsn != "" {
		cfg.Warehouse.DSN = *dsn
	}

	log.Printf("loading warehouse %s", cfg.Warehouse.DSN)
	counts, err := warehouse.LoadAll(cfg)
	if err != nil {
		fatalf("load: %v", err)
	}

	tables := make([]string, 0, len(counts))
	total := 0
	for table, n := range counts {
		tables = append(tables, table)
		total += n
	}
	sort.Strings(tables)
	for _, table := range tables {
		log.Printf("loaded %-28s %7d rows", table, counts[table])
	}
	log.Printf("done: %d tables, %d rows", len(tables), total)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "load-warehouse: "+format+"\n", args...)
	os.Exit(1)
}

// Package warehouse loads every generated CSV into a SQL warehouse so the
// dataset can be queried directly. SQLite is the default target; Postgres and
// MySQL are selected by DSN scheme.
package warehouse

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/csvio"
)

const insertBatchSize = 500

// Dialect captures the per-engine differences the loader cares about.
type Dialect struct {
	Name        string
	Placeholder sq.PlaceholderFormat
	quoteChar   string
}

func (d Dialect) Quote(ident string) string {
	return d.quoteChar + ident + d.quoteChar
}

var (
	sqliteDialect   = Dialect{Name: "sqlite", Placeholder: sq.Question, quoteChar: `"`}
	postgresDialect = Dialect{Name: "postgres", Placeholder: sq.Dollar, quoteChar: `"`}
	mysqlDialect    = Dialect{Name: "mysql", Placeholder: sq.Question, quoteChar: "`"}
)

// Open dispatches on the DSN scheme. A plain path opens a SQLite file.
func Open(dsn string) (*sql.DB, Dialect, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		db, err := sql.Open("pgx", dsn)
		return db, postgresDialect, err
	case strings.HasPrefix(dsn, "mysql://"), strings.HasPrefix(dsn, "mariadb://"):
		native, err := mysqlNativeDSN(dsn)
		if err != nil {
			return nil, mysqlDialect, err
		}
		db, err := sql.Open("mysql", native)
		return db, mysqlDialect, err
	case strings.HasPrefix(dsn, "sqlite://"):
		db, err := sql.Open("sqlite", strings.TrimPrefix(dsn, "sqlite://"))
		return db, sqliteDialect, err
	default:
		db, err := sql.Open("sqlite", dsn)
		return db, sqliteDialect, err
	}
}

// mysqlNativeDSN rewrites a mysql:// URL into the go-sql-driver format.
func mysqlNativeDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Host
	dbName := strings.TrimPrefix(u.Path, "/")
	auth := user
	if pass != "" {
		auth = user + ":" + pass
	}
	native := fmt.Sprintf("%s@tcp(%s)/%s", auth, host, dbName)
	if u.RawQuery != "" {
		native += "?" + u.RawQuery
	}
	return native, nil
}

// Target maps one dataset file onto its warehouse table.
type Target struct {
	File  string
	Table string
}

// Targets lists every dataset table in load order. The customer master lives
// in the processed directory; everything else is generated.
func Targets(cfg *config.Config) []Target {
	t := []Target{
		{cfg.ProcessedPath("01_customer_master.csv"), "customer_master"},
	}
	for _, p := range []Target{
		{"02_transactions_generated.csv", "transactions"},
		{"03_products_generated.csv", "products"},
		{"04_warehouse_costs_generated.csv", "warehouse_costs"},
		{"05_shipping_costs_generated.csv", "shipping_costs"},
		{"06_returns_handling_generated.csv", "returns_handling"},
		{"07_payment_terms_interest_generated.csv", "payment_terms_interest"},
		{"09_admin_overhead_generated.csv", "admin_overhead"},
		{"10_financial_p_l_orders.csv", "financial_p_l_orders"},
		{"10_p_l_by_product.csv", "p_l_by_product"},
		{"10_p_l_by_segment.csv", "p_l_by_segment"},
		{"10_p_l_overall_summary.csv", "p_l_overall_summary"},
		{"10_p_l_segment_product_matrix.csv", "p_l_segment_product_matrix"},
		{"11_clv_action_summary.csv", "clv_action_summary"},
		{"11_clv_by_segment_summary.csv", "clv_by_segment_summary"},
		{"11_clv_segment_summary.csv", "clv_segment_summary"},
		{"11_customer_lifetime_value.csv", "customer_lifetime_value"},
		{"14_scenario_planning.csv", "scenario_planning"},
	} {
		t = append(t, Target{cfg.GeneratedPath(p.File), p.Table})
	}
	return t
}

type columnKind int

const (
	kindInt columnKind = iota
	kindFloat
	kindBool
	kindText
)

func (k columnKind) sqlType() string {
	switch k {
	case kindInt:
		return "BIGINT"
	case kindFloat:
		return "DOUBLE PRECISION"
	case kindBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// inferKind scans a column's values and picks the narrowest type that fits
// all of them. Empty cells are NULLs and do not vote.
func inferKind(t *csvio.Table, col string) columnKind {
	var sawBool, sawInt, sawFloat, sawText, seen bool
	for i := 0; i < t.Len(); i++ {
		v := t.Value(i, col)
		if v == "" {
			continue
		}
		seen = true
		switch {
		case v == "True" || v == "False":
			sawBool = true
		default:
			if _, err := strconv.ParseInt(v, 10, 64); err == nil {
				sawInt = true
			} else if _, err := strconv.ParseFloat(v, 64); err == nil {
				sawFloat = true
			} else {
				sawText = true
			}
		}
	}
	switch {
	case !seen, sawText, sawBool && (sawInt || sawFloat):
		return kindText
	case sawBool:
		return kindBool
	case sawFloat:
		return kindFloat
	default:
		return kindInt
	}
}

func convert(kind columnKind, v string) (interface{}, error) {
	if v == "" {
		return nil, nil
	}
	switch kind {
	case kindInt:
		return strconv.ParseInt(v, 10, 64)
	case kindFloat:
		return strconv.ParseFloat(v, 64)
	case kindBool:
		return v == "True", nil
	default:
		return v, nil
	}
}

// LoadTable recreates the table from the CSV and bulk-inserts every row.
func LoadTable(db *sql.DB, d Dialect, table string, t *csvio.Table) (int, error) {
	kinds := make([]columnKind, len(t.Headers))
	defs := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		kinds[i] = inferKind(t, h)
		defs[i] = d.Quote(h) + " " + kinds[i].sqlType()
	}

	if _, err := db.Exec("DROP TABLE IF EXISTS " + d.Quote(table)); err != nil {
		return 0, fmt.Errorf("drop %s: %w", table, err)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", d.Quote(table), strings.Join(defs, ", "))
	if _, err := db.Exec(create); err != nil {
		return 0, fmt.Errorf("create %s: %w", table, err)
	}

	quoted := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		quoted[i] = d.Quote(h)
	}

	for start := 0; start < t.Len(); start += insertBatchSize {
		end := start + insertBatchSize
		if end > t.Len() {
			end = t.Len()
		}
		ins := sq.Insert(d.Quote(table)).Columns(quoted...).PlaceholderFormat(d.Placeholder)
		for i := start; i < end; i++ {
			vals := make([]interface{}, len(t.Headers))
			for c, h := range t.Headers {
				v, err := convert(kinds[c], t.Value(i, h))
				if err != nil {
					return 0, fmt.Errorf("table %s row %d column %s: %w", table, i, h, err)
				}
				vals[c] = v
			}
			ins = ins.Values(vals...)
		}
		query, args, err := ins.ToSql()
		if err != nil {
			return 0, fmt.Errorf("build insert for %s: %w", table, err)
		}
		if _, err := db.Exec(query, args...); err != nil {
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return t.Len(), nil
}

// LoadAll loads every dataset table and records the run in the load_runs
// ledger. It returns per-table row counts keyed by table name.
func LoadAll(cfg *config.Config) (map[string]int, error) {
	db, d, err := Open(cfg.Warehouse.DSN)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}
	defer db.Close()

	if err := ensureLedger(db, d); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	counts := make(map[string]int)
	for _, target := range Targets(cfg) {
		t, err := csvio.Load(target.File)
		if err != nil {
			return nil, err
		}
		n, err := LoadTable(db, d, target.Table, t)
		if err != nil {
			return nil, err
		}
		counts[target.Table] = n
		if err := recordRun(db, d, runID, target, n); err != nil {
			return nil, err
		}
	}
	return counts, nil
}

func ensureLedger(db *sql.DB, d Dialect) error {
	create := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s TEXT, %s TEXT, %s TEXT, %s BIGINT, %s TEXT)",
		d.Quote("load_runs"), d.Quote("run_id"), d.Quote("source_file"),
		d.Quote("table_name"), d.Quote("row_count"), d.Quote("loaded_at"),
	)
	if _, err := db.Exec(create); err != nil {
		return fmt.Errorf("create load_runs: %w", err)
	}
	return nil
}

func recordRun(db *sql.DB, d Dialect, runID string, target Target, rows int) error {
	query, args, err := sq.Insert(d.Quote("load_runs")).
		Columns(d.Quote("run_id"), d.Quote("source_file"), d.Quote("table_name"), d.Quote("row_count"), d.Quote("loaded_at")).
		Values(runID, target.File, target.Table, rows, time.Now().UTC().Format(time.RFC3339)).
		PlaceholderFormat(d.Placeholder).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := db.Exec(query, args...); err != nil {
		return fmt.Errorf("record load of %s: %w", target.Table, err)
	}
	return nil
}

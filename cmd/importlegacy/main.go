// cmd/importlegacy/main.go
// Copies regattas, classes, entries, races and results from the legacy MySQL
// results database into PostgreSQL. Re-runs skip rows that already exist.
//
// Usage:
//
//	MYSQL_DSN="user:pass@tcp(host:3306)/regatta?parseTime=true" \
//	go run ./cmd/importlegacy
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/config"
	bundb "github.com/ZeMendes2393/sailscore/db"
	applog "github.com/ZeMendes2393/sailscore/logger"
	"github.com/ZeMendes2393/sailscore/models"
	"github.com/ZeMendes2393/sailscore/scoring"
)

const batchSize = 500

func main() {
	ctx := context.Background()

	cfg := config.Load()

	// --- MySQL ---
	if cfg.MySQLDSN == "" {
		log.Fatal("MYSQL_DSN required, e.g.: user:pass@tcp(host:3306)/regatta?parseTime=true")
	}
	myDB, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("open mysql: %v", err)
	}
	defer myDB.Close()
	myDB.SetMaxOpenConns(4)
	if err := myDB.PingContext(ctx); err != nil {
		log.Fatalf("ping mysql: %v", err)
	}
	log.Println("connected to MySQL")

	// --- PostgreSQL ---
	pgDB := bundb.Setup(cfg)
	defer pgDB.Close()
	log.Println("connected to PostgreSQL")

	logger, err := applog.New(false)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	if err := bundb.Migrate(ctx, pgDB, logger); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	steps := []struct {
		name string
		fn   func() (int, error)
	}{
		{"regattas", func() (int, error) { return importRegattas(ctx, myDB, pgDB) }},
		{"classes", func() (int, error) { return importClasses(ctx, myDB, pgDB) }},
		{"entries", func() (int, error) { return importEntries(ctx, myDB, pgDB) }},
		{"races", func() (int, error) { return importRaces(ctx, myDB, pgDB) }},
		{"results", func() (int, error) { return importResults(ctx, myDB, pgDB) }},
	}

	for _, s := range steps {
		n, err := s.fn()
		if err != nil {
			log.Fatalf("import %s: %v", s.name, err)
		}
		log.Printf("%-10s  %d rows imported", s.name, n)
	}

	resetSequences(ctx, pgDB)
	log.Println("import complete")
}

// --- helpers ---

func nullStr(n sql.NullString) *string {
	if !n.Valid || strings.TrimSpace(n.String) == "" {
		return nil
	}
	return &n.String
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return &n.Float64
}

func nullDecimal(n sql.NullString) (*decimal.Decimal, error) {
	if !n.Valid || n.String == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(n.String)
	if err != nil {
		return nil, fmt.Errorf("points %q: %w", n.String, err)
	}
	return &d, nil
}

// bulkInsert inserts a batch, skipping rows that already exist (idempotent re-runs).
func bulkInsert[T any](ctx context.Context, pgDB *bun.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := pgDB.NewInsert().Model(&rows).On("CONFLICT DO NOTHING").Exec(ctx)
	return err
}

// copyRows runs query against MySQL and inserts every scanned row in batches.
func copyRows[T any](ctx context.Context, myDB *sql.DB, pgDB *bun.DB, query string, scan func(*sql.Rows) (T, error)) (int, error) {
	rows, err := myDB.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var batch []T
	total := 0
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return total, err
		}
		batch = append(batch, r)
		if len(batch) >= batchSize {
			if err := bulkInsert(ctx, pgDB, batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return total, err
	}
	if err := bulkInsert(ctx, pgDB, batch); err != nil {
		return total, err
	}
	return total + len(batch), nil
}

// --- per-table imports ---

func importRegattas(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	return copyRows(ctx, myDB, pgDB,
		"SELECT id, name, slug, start_date, end_date FROM regattas",
		func(rows *sql.Rows) (models.Regatta, error) {
			var r models.Regatta
			err := rows.Scan(&r.ID, &r.Name, &r.Slug, &r.StartDate, &r.EndDate)
			return r, err
		})
}

func importClasses(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	return copyRows(ctx, myDB, pgDB,
		`SELECT id, regatta_id, name, class_type, discard_count, discard_threshold,
		        published_races, has_medal_race
		 FROM regatta_classes`,
		func(rows *sql.Rows) (models.RegattaClass, error) {
			var c models.RegattaClass
			err := rows.Scan(&c.ID, &c.RegattaID, &c.Name, &c.ClassType, &c.DiscardCount,
				&c.DiscardThreshold, &c.PublishedRaces, &c.HasMedalRace)
			if c.ClassType != models.ClassHandicap {
				c.ClassType = models.ClassOneDesign
			}
			return c, err
		})
}

func importEntries(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	return copyRows(ctx, myDB, pgDB,
		`SELECT id, regatta_id, class_id, sail_number, country_code, boat_name,
		        skipper, rating, confirmed, paid
		 FROM entries`,
		func(rows *sql.Rows) (models.Entry, error) {
			var (
				e      models.Entry
				rating sql.NullFloat64
			)
			err := rows.Scan(&e.ID, &e.RegattaID, &e.ClassID, &e.SailNumber, &e.CountryCode,
				&e.BoatName, &e.Skipper, &rating, &e.Confirmed, &e.Paid)
			key := scoring.NewBoatKey(e.SailNumber, e.CountryCode)
			e.SailNumber, e.CountryCode = key.SailNumber, key.Country
			e.Rating = nullFloat(rating)
			return e, err
		})
}

func importRaces(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	return copyRows(ctx, myDB, pgDB,
		"SELECT id, regatta_id, class_id, name, order_index, is_medal, start_time FROM races",
		func(rows *sql.Rows) (models.Race, error) {
			var (
				r     models.Race
				start sql.NullString
			)
			err := rows.Scan(&r.ID, &r.RegattaID, &r.ClassID, &r.Name, &r.OrderIndex, &r.IsMedal, &start)
			r.StartTime = nullStr(start)
			return r, err
		})
}

// Legacy results are copied as stored; fleet sets do not exist in the legacy
// schema so every race is imported unfleeted.
func importResults(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	return copyRows(ctx, myDB, pgDB,
		`SELECT id, race_id, regatta_id, class_id, sail_number, country_code,
		        position, CAST(points AS CHAR), code, finish_time, elapsed_time, corrected_time
		 FROM results`,
		func(rows *sql.Rows) (models.Result, error) {
			var (
				r                          models.Result
				points, code               sql.NullString
				finish, elapsed, corrected sql.NullString
			)
			if err := rows.Scan(&r.ID, &r.RaceID, &r.RegattaID, &r.ClassID, &r.SailNumber, &r.CountryCode,
				&r.Position, &points, &code, &finish, &elapsed, &corrected); err != nil {
				return r, err
			}
			key := scoring.NewBoatKey(r.SailNumber, r.CountryCode)
			r.SailNumber, r.CountryCode = key.SailNumber, key.Country

			var err error
			if r.Points, err = nullDecimal(points); err != nil {
				return r, fmt.Errorf("result %d: %w", r.ID, err)
			}
			if c := scoring.ParseCode(code.String); c != "" {
				s := string(c)
				r.Code = &s
			}
			r.FinishTime = nullStr(finish)
			r.ElapsedTime = nullStr(elapsed)
			r.CorrectedTime = nullStr(corrected)
			return r, nil
		})
}

// resetSequences advances each PG sequence to MAX(id) so new inserts don't conflict.
func resetSequences(ctx context.Context, pgDB *bun.DB) {
	for _, table := range []string{"regattas", "regatta_classes", "entries", "races", "results"} {
		q := fmt.Sprintf(
			"SELECT setval('%s_id_seq', COALESCE((SELECT MAX(id) FROM %s), 1))",
			table, table,
		)
		if _, err := pgDB.ExecContext(ctx, q); err != nil {
			log.Printf("reset seq %s: %v", table, err)
		}
	}
	log.Println("sequences reset")
}

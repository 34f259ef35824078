package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"deals-scraper/models"
)

// PostgresWriter persists normalized products to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id               SERIAL PRIMARY KEY,
			url              TEXT          UNIQUE NOT NULL,
			title            TEXT          NOT NULL DEFAULT '',
			brand            TEXT          NOT NULL DEFAULT '',
			model            TEXT          NOT NULL DEFAULT '',
			current_price    NUMERIC(10,2),
			regular_price    NUMERIC(10,2),
			discount_amount  NUMERIC(10,2),
			discount_percent NUMERIC(5,2),
			rating           NUMERIC(4,2)  NOT NULL DEFAULT 0,
			review_count     INTEGER       NOT NULL DEFAULT 0,
			in_stock_online  BOOLEAN       NOT NULL DEFAULT FALSE,
			in_stock_retail  BOOLEAN       NOT NULL DEFAULT FALSE,
			promotion_label  TEXT          NOT NULL DEFAULT '',
			promotion_ends   TIMESTAMPTZ,
			image_urls       TEXT[],
			category         TEXT          NOT NULL DEFAULT '',
			scraped_at       TIMESTAMPTZ   NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_products_category         ON products(category);
		CREATE INDEX IF NOT EXISTS idx_products_discount_percent ON products(discount_percent);
		CREATE INDEX IF NOT EXISTS idx_products_scraped_at       ON products(scraped_at);
	`)
	return err
}

const productColumns = 17

// Write persists a batch under the given consistency mode. The whole batch
// commits in one transaction or none of it does.
func (pw *PostgresWriter) Write(products []*models.Product, mode WriteMode) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if mode == ModeReplace {
		if err := clearCategories(tx, products); err != nil {
			return err
		}
	}

	const batchSize = 50
	for i := 0; i < len(products); i += batchSize {
		end := i + batchSize
		if end > len(products) {
			end = len(products)
		}
		if err := insertBatch(tx, products[i:end], mode); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// clearCategories deletes the prior snapshot of every category present in
// the batch. A batch without categories replaces the whole table.
func clearCategories(tx *sql.Tx, products []*models.Product) error {
	categories := batchCategories(products)

	var err error
	if len(categories) == 0 {
		_, err = tx.Exec("DELETE FROM products")
	} else {
		_, err = tx.Exec("DELETE FROM products WHERE category = ANY($1)", pq.Array(categories))
	}
	if err != nil {
		return fmt.Errorf("postgres: clear snapshot: %w", err)
	}
	return nil
}

// batchCategories lists the distinct non-empty categories of a batch, in
// first-appearance order.
func batchCategories(products []*models.Product) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

func insertBatch(tx *sql.Tx, batch []*models.Product, mode WriteMode) error {
	valueArgs := make([]interface{}, 0, len(batch)*productColumns)
	for _, p := range batch {
		valueArgs = append(valueArgs, productArgs(p)...)
	}

	if _, err := tx.Exec(buildInsertQuery(len(batch), mode), valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch (%s): %w", mode, err)
	}
	return nil
}

// productArgs lays out one product's bind arguments in column order.
func productArgs(p *models.Product) []interface{} {
	return []interface{}{
		p.URL, p.Title, p.Brand, p.Model,
		p.CurrentPrice, p.RegularPrice, p.DiscountAmount, p.DiscountPercent,
		p.Rating, p.ReviewCount, p.InStockOnline, p.InStockRetail,
		p.PromotionLabel, p.PromotionEnds, pq.Array(p.ImageURLs),
		p.Category, p.ScrapedAt,
	}
}

// buildInsertQuery renders the multirow INSERT for n products under the
// given mode's conflict clause.
func buildInsertQuery(n int, mode WriteMode) string {
	valueStrings := make([]string, 0, n)
	for idx := 0; idx < n; idx++ {
		base := idx * productColumns
		placeholders := make([]string, productColumns)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
	}

	return fmt.Sprintf(`
		INSERT INTO products (
			url, title, brand, model,
			current_price, regular_price, discount_amount, discount_percent,
			rating, review_count, in_stock_online, in_stock_retail,
			promotion_label, promotion_ends, image_urls, category, scraped_at
		)
		VALUES %s
		%s
	`, strings.Join(valueStrings, ","), conflictClause(mode))
}

func conflictClause(mode WriteMode) string {
	switch mode {
	case ModeUpsert:
		return `ON CONFLICT (url) DO UPDATE SET
			title            = EXCLUDED.title,
			brand            = EXCLUDED.brand,
			model            = EXCLUDED.model,
			current_price    = EXCLUDED.current_price,
			regular_price    = EXCLUDED.regular_price,
			discount_amount  = EXCLUDED.discount_amount,
			discount_percent = EXCLUDED.discount_percent,
			rating           = EXCLUDED.rating,
			review_count     = EXCLUDED.review_count,
			in_stock_online  = EXCLUDED.in_stock_online,
			in_stock_retail  = EXCLUDED.in_stock_retail,
			promotion_label  = EXCLUDED.promotion_label,
			promotion_ends   = EXCLUDED.promotion_ends,
			image_urls       = EXCLUDED.image_urls,
			category         = EXCLUDED.category,
			scraped_at       = EXCLUDED.scraped_at`
	default:
		// Append keeps the first-seen row; Replace already cleared the
		// generation, so conflicts only arise within one batch.
		return "ON CONFLICT (url) DO NOTHING"
	}
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored products — used by the report service.
func (pw *PostgresWriter) FetchAll() ([]*models.Product, error) {
	rows, err := pw.db.Query(`
		SELECT id, url, title, brand, model,
		       current_price, regular_price, discount_amount, discount_percent,
		       rating, review_count, in_stock_online, in_stock_retail,
		       promotion_label, promotion_ends, image_urls, category, scraped_at
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		var promoEnds sql.NullTime
		if err := rows.Scan(
			&p.ID, &p.URL, &p.Title, &p.Brand, &p.Model,
			&p.CurrentPrice, &p.RegularPrice, &p.DiscountAmount, &p.DiscountPercent,
			&p.Rating, &p.ReviewCount, &p.InStockOnline, &p.InStockRetail,
			&p.PromotionLabel, &promoEnds, pq.Array(&p.ImageURLs),
			&p.Category, &p.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		if promoEnds.Valid {
			t := promoEnds.Time
			p.PromotionEnds = &t
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

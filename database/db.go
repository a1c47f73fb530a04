package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func InitDB(logger *zap.Logger) (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "postgres")
	dbname := getEnv("DB_NAME", "checkoutdb")

	psqlInfo := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Maps each payment reference to the order it produced, claimed before
	// the backend mutation so a reference can never materialize two orders.
	createTableQuery := `
	CREATE TABLE IF NOT EXISTS payment_orders (
		payment_ref VARCHAR(255) PRIMARY KEY,
		provider VARCHAR(50) NOT NULL,
		order_id INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := db.Exec(createTableQuery); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Info("Database connection established")
	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// OrderClaims persists payment-reference to order-id mappings. A claim row
// is inserted before the order mutation is sent to the backend; the unique
// key on payment_ref is what makes order creation idempotent on our side.
type OrderClaims struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewOrderClaims(db *sql.DB, logger *zap.Logger) *OrderClaims {
	return &OrderClaims{db: db, logger: logger}
}

// Claim records the intent to create an order for paymentRef. When the
// reference was already claimed and has an order id, that id is returned
// and the caller must not create a second order. A claim without an order
// id means an earlier attempt died mid-flight; the caller may retry, the
// backend's clientMutationId dedup covers that window.
func (c *OrderClaims) Claim(ctx context.Context, paymentRef, provider string) (existingOrderID int, alreadyCreated bool, err error) {
	res, err := c.db.ExecContext(ctx,
		"INSERT INTO payment_orders (payment_ref, provider) VALUES ($1, $2) ON CONFLICT (payment_ref) DO NOTHING",
		paymentRef, provider,
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to claim payment reference: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read claim result: %w", err)
	}
	if rows > 0 {
		return 0, false, nil
	}

	var orderID sql.NullInt64
	err = c.db.QueryRowContext(ctx,
		"SELECT order_id FROM payment_orders WHERE payment_ref = $1",
		paymentRef,
	).Scan(&orderID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up claimed order: %w", err)
	}
	if orderID.Valid {
		return int(orderID.Int64), true, nil
	}
	return 0, false, nil
}

// SetOrderID records the order the backend created for paymentRef.
func (c *OrderClaims) SetOrderID(ctx context.Context, paymentRef string, orderID int) error {
	_, err := c.db.ExecContext(ctx,
		"UPDATE payment_orders SET order_id = $1, updated_at = CURRENT_TIMESTAMP WHERE payment_ref = $2",
		orderID, paymentRef,
	)
	if err != nil {
		return fmt.Errorf("failed to record order id: %w", err)
	}
	return nil
}

// OrderIDFor returns the order created for a payment reference, if any.
func (c *OrderClaims) OrderIDFor(ctx context.Context, paymentRef string) (int, bool, error) {
	var orderID sql.NullInt64
	err := c.db.QueryRowContext(ctx,
		"SELECT order_id FROM payment_orders WHERE payment_ref = $1",
		paymentRef,
	).Scan(&orderID)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up payment reference: %w", err)
	}
	if !orderID.Valid {
		return 0, false, nil
	}
	return int(orderID.Int64), true, nil
}

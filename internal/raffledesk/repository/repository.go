package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	_ "github.com/jackc/pgx/v4/stdlib"
)

// TicketUpdateFunc resolves the change to apply to a locked ticket.
// Returning an error aborts the transaction without any mutation.
type TicketUpdateFunc func(current models.TicketAccount) (models.TicketChange, error)

// Repository defines the interface for data access operations
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, username, passwordHash string, role models.Role) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// Raffle operations
	CreateRaffle(ctx context.Context, raffle models.Raffle) (int64, error)
	GetRaffle(ctx context.Context, id int64) (*models.Raffle, error)
	ListRaffles(ctx context.Context) ([]models.Raffle, error)
	CountRaffles(ctx context.Context) (int, error)
	UpdateRaffleStatus(ctx context.Context, id int64, status models.RaffleStatus) error

	// Ticket operations
	GetTicket(ctx context.Context, id int64) (*models.Ticket, error)
	GetRaffleTickets(ctx context.Context, raffleID int64) ([]models.Ticket, error)
	UpdateTicket(ctx context.Context, id int64, fn TicketUpdateFunc) (*models.TicketAccount, error)
	GetTicketPayments(ctx context.Context, ticketID int64) ([]models.Payment, error)

	// Initialize and close
	InitDB(databaseURI string) error
	Ping(ctx context.Context) error
	Close() error
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{
		db: nil, // Will be initialized in InitDB
	}
}

// NewPostgresRepositoryWithDB wraps an already opened connection pool
func NewPostgresRepositoryWithDB(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// InitDB initializes the database connection and schema
func (r *PostgresRepository) InitDB(databaseURI string) error {
	db, err := sql.Open("pgx", databaseURI)
	if err != nil {
		return err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	r.db = db

	if err := r.CreateTables(context.Background()); err != nil {
		db.Close()
		return err
	}

	return nil
}

// Ping checks the database connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL CHECK (role IN ('admin', 'seller')),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS raffles (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		prize_cost NUMERIC(14, 2) NOT NULL,
		ticket_value NUMERIC(14, 2) NOT NULL CHECK (ticket_value > 0),
		draw_date VARCHAR(10) NOT NULL,
		lottery_reference VARCHAR(255) NOT NULL DEFAULT '',
		status VARCHAR(16) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'finished')),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id SERIAL PRIMARY KEY,
		raffle_id INTEGER NOT NULL REFERENCES raffles(id) ON DELETE CASCADE,
		number VARCHAR(2) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'pending', 'paid')),
		customer_name VARCHAR(255),
		customer_phone VARCHAR(64),
		total_paid NUMERIC(14, 2) NOT NULL DEFAULT 0 CHECK (total_paid >= 0),
		UNIQUE (raffle_id, number)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id SERIAL PRIMARY KEY,
		ticket_id INTEGER NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
		amount NUMERIC(14, 2) NOT NULL CHECK (amount > 0),
		paid_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS payments_ticket_id_idx ON payments (ticket_id)`,
}

// CreateTables creates the necessary tables if they don't exist
func (r *PostgresRepository) CreateTables(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// withTx runs fn inside a serializable transaction
func (r *PostgresRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		if isSerializationFailure(err) {
			return models.ErrConcurrentUpdate
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return models.ErrConcurrentUpdate
		}
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// isSerializationFailure checks if err means the transaction lost to a
// concurrent one
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		(pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected)
}

// isUniqueViolation checks if err is a PostgreSQL unique constraint violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, username, passwordHash string, role models.Role) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(
		ctx,
		"INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id",
		username, passwordHash, string(role),
	).Scan(&id)

	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: username %q already exists", models.ErrConflict, username)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUser(ctx, "SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1", username)
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUser(ctx, "SELECT id, username, password_hash, role, created_at FROM users WHERE id = $1", id)
}

func (r *PostgresRepository) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	return user, nil
}

// Package postgresdb provides the PostgreSQL-backed implementation of the
// storage interface: the user directory and the link registry, plus schema
// migrations run at startup.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/valerienguyen169/Shrink-Ray/internal/link"
	"github.com/valerienguyen169/Shrink-Ray/internal/models"
	"github.com/valerienguyen169/Shrink-Ray/internal/user"
)

const (
	pgUniqueViolationCode = "23505"

	// 22P02 "invalid_text_representation": a parameter that cannot be cast to
	// the column type, e.g. a non-UUID value against users.id. For lookups by
	// identifier that is the same outcome as no matching row.
	pgInvalidTextRepresentationCode = "22P02"
)

// PostgresDB is a PostgreSQL-backed implementation of the storage interface.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// New establishes a connection to the PostgreSQL database, runs schema
// migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
) (*PostgresDB, error) {
	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("error while `goose.Up()` calling: %w", err)
	}

	return result, nil
}

// CreateUser inserts a new account and returns the generated UUID.
// A concurrent duplicate registration that slips past the service-level
// pre-check is caught by the unique constraint and translated into the same
// models.ErrUsernameTaken.
func (db *PostgresDB) CreateUser(
	ctx context.Context,
	usr *user.User,
	transaction *sql.Tx,
) (string, error) {
	row := db.querier(transaction).QueryRowContext(
		ctx,
		`
			INSERT INTO users (username, password_hash, is_pro, is_admin)
				VALUES ($1, $2, $3, $4)
				RETURNING id
		`,
		usr.Username,
		usr.PasswordHash,
		usr.IsPro,
		usr.IsAdmin,
	)

	var userID string
	if err := row.Scan(&userID); err != nil {
		if isUniqueViolation(err) {
			return "", models.ErrUsernameTaken
		}
		return "", fmt.Errorf("failed to insert user: %w", err)
	}

	return userID, nil
}

// GetUserByID fetches an account by its UUID.
func (db *PostgresDB) GetUserByID(
	ctx context.Context,
	userID string,
	transaction *sql.Tx,
) (*user.User, error) {
	return db.scanUser(db.querier(transaction).QueryRowContext(
		ctx,
		`SELECT id, username, password_hash, is_pro, is_admin FROM users WHERE id = $1`,
		userID,
	))
}

// GetUserByUsername fetches an account by exact, case-sensitive username.
func (db *PostgresDB) GetUserByUsername(
	ctx context.Context,
	username string,
	transaction *sql.Tx,
) (*user.User, error) {
	return db.scanUser(db.querier(transaction).QueryRowContext(
		ctx,
		`SELECT id, username, password_hash, is_pro, is_admin FROM users WHERE username = $1`,
		username,
	))
}

// RenameUser changes the username of an existing account.
func (db *PostgresDB) RenameUser(
	ctx context.Context,
	userID,
	newUsername string,
	transaction *sql.Tx,
) error {
	var database executor = db.database
	if transaction != nil {
		database = transaction
	}

	result, err := database.ExecContext(
		ctx,
		`UPDATE users SET username = $1 WHERE id = $2`,
		newUsername,
		userID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrUsernameTaken
		}
		if isInvalidTextRepresentation(err) {
			return models.ErrUserNotFound
		}
		return fmt.Errorf("failed to rename user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// GetAllUsers returns every account.
func (db *PostgresDB) GetAllUsers(ctx context.Context) ([]*user.User, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT id, username, password_hash, is_pro, is_admin FROM users ORDER BY username`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var result []*user.User
	for rows.Next() {
		usr := &user.User{}
		err := rows.Scan(&usr.ID, &usr.Username, &usr.PasswordHash, &usr.IsPro, &usr.IsAdmin)
		if err != nil {
			return nil, err
		}
		result = append(result, usr)
	}

	return result, rows.Err()
}

// InsertLink persists a new link with a zero hit counter and a fresh
// last-access timestamp. A primary-key collision on the deterministic link ID
// surfaces models.ErrLinkExists.
func (db *PostgresDB) InsertLink(
	ctx context.Context,
	lnk *link.Link,
	transaction *sql.Tx,
) error {
	row := db.querier(transaction).QueryRowContext(
		ctx,
		`
			INSERT INTO links (id, original_url, num_hits, last_accessed_on, user_id)
				VALUES ($1, $2, 0, now(), $3)
				RETURNING num_hits, last_accessed_on
		`,
		lnk.ID,
		lnk.OriginalURL,
		lnk.Owner.ID,
	)

	if err := row.Scan(&lnk.NumHits, &lnk.LastAccessedOn); err != nil {
		if isUniqueViolation(err) {
			return models.ErrLinkExists
		}
		return fmt.Errorf("failed to insert link: %w", err)
	}

	return nil
}

// GetLinkByID fetches a link with its owning account eagerly joined, since
// downstream authorization decisions need the owner.
func (db *PostgresDB) GetLinkByID(ctx context.Context, linkID string) (*link.Link, error) {
	return db.scanLink(db.database.QueryRowContext(
		ctx,
		`
			SELECT links.id, links.original_url, links.num_hits, links.last_accessed_on,
					users.id, users.username, users.password_hash, users.is_pro, users.is_admin
				FROM links
					JOIN users ON users.id = links.user_id
				WHERE links.id = $1
		`,
		linkID,
	))
}

// RecordVisit bumps the hit counter and the last-access timestamp in a single
// targeted UPDATE, so concurrent visits to the same link never lose an
// increment.
func (db *PostgresDB) RecordVisit(ctx context.Context, linkID string) (*link.Link, error) {
	row := db.database.QueryRowContext(
		ctx,
		`
			UPDATE links
				SET num_hits = num_hits + 1,
					last_accessed_on = now()
				WHERE id = $1
				RETURNING id, original_url, num_hits, last_accessed_on
		`,
		linkID,
	)

	lnk := &link.Link{}
	err := row.Scan(&lnk.ID, &lnk.OriginalURL, &lnk.NumHits, &lnk.LastAccessedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to record visit: %w", err)
	}

	return lnk, nil
}

// GetLinksByUserID returns the owner's links in creation order.
func (db *PostgresDB) GetLinksByUserID(ctx context.Context, userID string) ([]*link.Link, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`
			SELECT links.id, links.original_url, links.num_hits, links.last_accessed_on,
					users.id, users.username, users.password_hash, users.is_pro, users.is_admin
				FROM links
					JOIN users ON users.id = links.user_id
				WHERE links.user_id = $1
				ORDER BY links.created_at
		`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query links by user: %w", err)
	}
	defer rows.Close()

	var result []*link.Link
	for rows.Next() {
		lnk := &link.Link{Owner: &user.User{}}
		err := rows.Scan(
			&lnk.ID,
			&lnk.OriginalURL,
			&lnk.NumHits,
			&lnk.LastAccessedOn,
			&lnk.Owner.ID,
			&lnk.Owner.Username,
			&lnk.Owner.PasswordHash,
			&lnk.Owner.IsPro,
			&lnk.Owner.IsAdmin,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, lnk)
	}

	return result, rows.Err()
}

// CountUserLinks returns the number of links owned by the user.
func (db *PostgresDB) CountUserLinks(ctx context.Context, userID string) (int, error) {
	var count int
	err := db.database.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM links WHERE user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count user links: %w", err)
	}

	return count, nil
}

// DeleteLink removes the link. Deleting an absent ID is not an error.
func (db *PostgresDB) DeleteLink(ctx context.Context, linkID string) error {
	_, err := db.database.ExecContext(ctx, `DELETE FROM links WHERE id = $1`, linkID)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	return nil
}

// BeginTransaction starts a new SQL transaction and returns it.
// The caller is responsible for committing or rolling it back.
func (db *PostgresDB) BeginTransaction() (*sql.Tx, error) {
	return db.database.Begin()
}

// CommitTransaction commits the given SQL transaction.
func (db *PostgresDB) CommitTransaction(transaction *sql.Tx) error {
	return transaction.Commit()
}

// RollbackTransaction rolls back the given SQL transaction.
func (db *PostgresDB) RollbackTransaction(transaction *sql.Tx) error {
	return transaction.Rollback()
}

// Ping checks the database connection.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) querier(transaction *sql.Tx) queryer {
	if transaction != nil {
		return transaction
	}

	return db.database
}

func (db *PostgresDB) scanUser(row *sql.Row) (*user.User, error) {
	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Username, &usr.PasswordHash, &usr.IsPro, &usr.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidTextRepresentation(err) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return usr, nil
}

func (db *PostgresDB) scanLink(row *sql.Row) (*link.Link, error) {
	lnk := &link.Link{Owner: &user.User{}}
	err := row.Scan(
		&lnk.ID,
		&lnk.OriginalURL,
		&lnk.NumHits,
		&lnk.LastAccessedOn,
		&lnk.Owner.ID,
		&lnk.Owner.Username,
		&lnk.Owner.PasswordHash,
		&lnk.Owner.IsPro,
		&lnk.Owner.IsAdmin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to scan link: %w", err)
	}

	return lnk, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode
}

func isInvalidTextRepresentation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentationCode
}

// ParseDBError converts an unexpected persistence error into the structured
// payload returned with 500 responses. The raw error text stays in the server
// logs; clients only see the parsed fields.
func ParseDBError(err error) *models.DatabaseError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &models.DatabaseError{
			Message:    pgErr.Message,
			Code:       pgErr.Code,
			Constraint: pgErr.ConstraintName,
			Table:      pgErr.TableName,
		}
	}

	return &models.DatabaseError{Message: "unexpected database error"}
}

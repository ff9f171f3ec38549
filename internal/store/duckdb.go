package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
)

// InMemory opens a store that lives only as long as the process.
const InMemory = ":memory:"

// insertBatchSize bounds the number of rows per INSERT statement.
const insertBatchSize = 1000

const schema = `
	CREATE TABLE IF NOT EXISTS series_meta (
		symbol TEXT,
		company_name TEXT,
		fetched_at TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS price_bars (
		symbol TEXT,
		time TIMESTAMP,
		open DOUBLE,
		high DOUBLE,
		low DOUBLE,
		close DOUBLE,
		volume BIGINT
	);
`

// DuckDBStore is a SeriesStore backed by a DuckDB database file.
type DuckDBStore struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBStore opens (creating if needed) the database at path. Use InMemory
// for a throwaway store.
func NewDuckDBStore(path string, log *logger.Logger) (*DuckDBStore, error) {
	if path != InMemory && path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeStoreOpenFailed, err, "failed to create directory for %s", path)
		}
	}

	dsn := path
	if dsn == InMemory {
		dsn = ""
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreOpenFailed, "failed to open DuckDB connection", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeStoreOpenFailed, "failed to create tables", err)
	}

	if log == nil {
		log = logger.NewNop()
	}

	log.Debug("Opened series store", zap.String("path", path))

	return &DuckDBStore{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Load implements SeriesStore.
func (s *DuckDBStore) Load(ctx context.Context, symbol string) (optional.Option[Cached], error) {
	symbol = types.NormalizeSymbol(symbol)

	query, args, err := s.sq.
		Select("company_name", "fetched_at").
		From("series_meta").
		Where(squirrel.Eq{"symbol": symbol}).
		ToSql()
	if err != nil {
		return optional.None[Cached](), errors.Wrap(errors.ErrCodeStoreQueryFailed, "failed to build query", err)
	}

	var (
		name      sql.NullString
		fetchedAt time.Time
	)

	err = s.db.QueryRowContext(ctx, query, args...).Scan(&name, &fetchedAt)
	if err == sql.ErrNoRows {
		return optional.None[Cached](), nil
	}

	if err != nil {
		return optional.None[Cached](), errors.Wrapf(errors.ErrCodeStoreQueryFailed, err, "failed to read metadata for %s", symbol)
	}

	bars, err := s.loadBars(ctx, symbol)
	if err != nil {
		return optional.None[Cached](), err
	}

	return optional.Some(Cached{
		Series:      types.NewPriceSeries(symbol, bars),
		CompanyName: name.String,
		FetchedAt:   fetchedAt.UTC(),
	}), nil
}

func (s *DuckDBStore) loadBars(ctx context.Context, symbol string) ([]types.PriceBar, error) {
	query, args, err := s.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From("price_bars").
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQueryFailed, "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStoreQueryFailed, err, "failed to read bars for %s", symbol)
	}
	defer rows.Close()

	bars := make([]types.PriceBar, 0, 1024)

	for rows.Next() {
		var bar types.PriceBar

		if err := rows.Scan(&bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreQueryFailed, "failed to scan row", err)
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQueryFailed, "failed to iterate rows", err)
	}

	return bars, nil
}

// Save implements SeriesStore. The previous series for the symbol is replaced
// in a single transaction.
func (s *DuckDBStore) Save(ctx context.Context, cached Cached) (err error) {
	symbol := cached.Series.Symbol
	if symbol == "" {
		return errors.New(errors.ErrCodeInvalidSymbol, "cannot store a series without a symbol")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to begin transaction", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Warn("Failed to roll back series write", zap.String("symbol", symbol), zap.Error(rbErr))
			}
		}
	}()

	if err = s.deleteSymbol(ctx, tx, symbol); err != nil {
		return err
	}

	metaQuery, metaArgs, err := s.sq.
		Insert("series_meta").
		Columns("symbol", "company_name", "fetched_at").
		Values(symbol, cached.CompanyName, cached.FetchedAt.UTC()).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to build insert", err)
	}

	if _, err = tx.ExecContext(ctx, metaQuery, metaArgs...); err != nil {
		return errors.Wrapf(errors.ErrCodeStoreWriteFailed, err, "failed to write metadata for %s", symbol)
	}

	bars := cached.Series.Bars()
	for start := 0; start < len(bars); start += insertBatchSize {
		end := min(start+insertBatchSize, len(bars))

		insert := s.sq.Insert("price_bars").Columns("symbol", "time", "open", "high", "low", "close", "volume")
		for _, bar := range bars[start:end] {
			insert = insert.Values(symbol, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
		}

		query, args, buildErr := insert.ToSql()
		if buildErr != nil {
			err = errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to build insert", buildErr)

			return err
		}

		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(errors.ErrCodeStoreWriteFailed, err, "failed to write bars for %s", symbol)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to commit transaction", err)
	}

	s.logger.Debug("Stored series", zap.String("symbol", symbol), zap.Int("bars", len(bars)))

	return nil
}

// SaveCompanyName implements SeriesStore. Unknown symbols are ignored.
func (s *DuckDBStore) SaveCompanyName(ctx context.Context, symbol string, name string) error {
	query, args, err := s.sq.
		Update("series_meta").
		Set("company_name", name).
		Where(squirrel.Eq{"symbol": types.NormalizeSymbol(symbol)}).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to build update", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(errors.ErrCodeStoreWriteFailed, err, "failed to update name for %s", symbol)
	}

	return nil
}

// Prune implements SeriesStore.
func (s *DuckDBStore) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	query, args, err := s.sq.
		Select("symbol").
		From("series_meta").
		Where(squirrel.Lt{"fetched_at": olderThan.UTC()}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeStoreQueryFailed, "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeStoreQueryFailed, "failed to list stale series", err)
	}

	var stale []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			rows.Close()

			return 0, errors.Wrap(errors.ErrCodeStoreQueryFailed, "failed to scan row", err)
		}

		stale = append(stale, symbol)
	}

	rows.Close()

	for _, symbol := range stale {
		if err := s.deleteSymbol(ctx, s.db, symbol); err != nil {
			return 0, err
		}
	}

	if len(stale) > 0 {
		s.logger.Info("Pruned stale series", zap.Strings("symbols", stale))
	}

	return len(stale), nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *DuckDBStore) deleteSymbol(ctx context.Context, db execer, symbol string) error {
	for _, table := range []string{"price_bars", "series_meta"} {
		query, args, err := s.sq.Delete(table).Where(squirrel.Eq{"symbol": symbol}).ToSql()
		if err != nil {
			return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to build delete", err)
		}

		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(errors.ErrCodeStoreWriteFailed, err, "failed to delete %s from %s", symbol, table)
		}
	}

	return nil
}

// Close implements SeriesStore.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}

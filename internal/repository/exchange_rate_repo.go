package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyulbade/trade-cost-backoffice/internal/model"
)

type ExchangeRateRepository struct {
	pool *pgxpool.Pool
}

func NewExchangeRateRepository(pool *pgxpool.Pool) *ExchangeRateRepository {
	return &ExchangeRateRepository{pool: pool}
}

func scanRate(row pgx.Row) (*model.ExchangeRate, error) {
	rate := &model.ExchangeRate{}
	err := row.Scan(&rate.Date, &rate.USDRate, &rate.CNYRate, &rate.EURRate, &rate.JPYRate, &rate.Source)
	if err != nil {
		return nil, err
	}
	return rate, nil
}

func (r *ExchangeRateRepository) Latest(ctx context.Context) (*model.ExchangeRate, error) {
	return scanRate(r.pool.QueryRow(ctx,
		`SELECT date, usd_rate, cny_rate, eur_rate, jpy_rate, source
		FROM exchange_rates ORDER BY date DESC LIMIT 1`))
}

func (r *ExchangeRateRepository) ForDate(ctx context.Context, date time.Time) (*model.ExchangeRate, error) {
	return scanRate(r.pool.QueryRow(ctx,
		`SELECT date, usd_rate, cny_rate, eur_rate, jpy_rate, source
		FROM exchange_rates WHERE date = $1`, date))
}

func (r *ExchangeRateRepository) Insert(ctx context.Context, rate *model.ExchangeRate) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO exchange_rates (date, usd_rate, cny_rate, eur_rate, jpy_rate, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date) DO NOTHING`,
		rate.Date, rate.USDRate, rate.CNYRate, rate.EURRate, rate.JPYRate, rate.Source)
	if err != nil {
		return false, fmt.Errorf("insert exchange rate: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ExchangeRateRepository) History(ctx context.Context, limit int) ([]model.ExchangeRate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT date, usd_rate, cny_rate, eur_rate, jpy_rate, source
		FROM (
			SELECT * FROM exchange_rates ORDER BY date DESC LIMIT $1
		) recent
		ORDER BY date ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("query exchange rate history: %w", err)
	}
	defer rows.Close()

	var rates []model.ExchangeRate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exchange rate: %w", err)
		}
		rates = append(rates, *rate)
	}
	return rates, rows.Err()
}

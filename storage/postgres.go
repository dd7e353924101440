package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"casa8_ingest/models"
)

// PostgresStore implements the property store against a direct
// database connection. Used when SUPABASE_DB_URL is configured;
// otherwise the REST-based SupabaseStore handles persistence.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

const propertyColumns = `id, external_url, external_id, source_market, title, description,
	property_type, bedrooms, bathrooms, sqft, price, address, city, state, zip_code,
	latitude, longitude, images, landlord_id, is_active, data_source,
	scraped_contact_name, scraped_contact_phone, last_scraped_at, created_at, updated_at`

func (s *PostgresStore) GetByExternalURL(ctx context.Context, externalURL string) (*models.CanonicalProperty, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE external_url = $1`

	var p models.CanonicalProperty
	err := s.pool.QueryRow(ctx, query, externalURL).Scan(
		&p.ID, &p.ExternalURL, &p.ExternalID, &p.SourceMarket, &p.Title, &p.Description,
		&p.PropertyType, &p.Bedrooms, &p.Bathrooms, &p.SqFt, &p.Price, &p.Address, &p.City, &p.State, &p.ZipCode,
		&p.Latitude, &p.Longitude, &p.Images, &p.LandlordID, &p.IsActive, &p.DataSource,
		&p.ScrapedContactName, &p.ScrapedContactPhone, &p.LastScrapedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) Insert(ctx context.Context, p *models.CanonicalProperty) error {
	query := `
		INSERT INTO properties (
			external_url, external_id, source_market, title, description,
			property_type, bedrooms, bathrooms, sqft, price, address, city, state, zip_code,
			latitude, longitude, images, landlord_id, is_active, data_source,
			scraped_contact_name, scraped_contact_phone, last_scraped_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		p.ExternalURL, p.ExternalID, p.SourceMarket, p.Title, p.Description,
		p.PropertyType, p.Bedrooms, p.Bathrooms, p.SqFt, p.Price, p.Address, p.City, p.State, p.ZipCode,
		p.Latitude, p.Longitude, p.Images, p.LandlordID, p.IsActive, p.DataSource,
		p.ScrapedContactName, p.ScrapedContactPhone, p.LastScrapedAt,
	).Scan(&p.ID)
}

func (s *PostgresStore) Update(ctx context.Context, id string, p *models.CanonicalProperty) error {
	query := `
		UPDATE properties SET
			external_id = $2, source_market = $3, title = $4, description = $5,
			property_type = $6, bedrooms = $7, bathrooms = $8, sqft = $9, price = $10,
			address = $11, city = $12, state = $13, zip_code = $14,
			latitude = $15, longitude = $16, images = $17, is_active = $18,
			scraped_contact_name = $19, scraped_contact_phone = $20,
			last_scraped_at = $21, updated_at = NOW()
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		id, p.ExternalID, p.SourceMarket, p.Title, p.Description,
		p.PropertyType, p.Bedrooms, p.Bathrooms, p.SqFt, p.Price,
		p.Address, p.City, p.State, p.ZipCode,
		p.Latitude, p.Longitude, p.Images, p.IsActive,
		p.ScrapedContactName, p.ScrapedContactPhone, p.LastScrapedAt,
	)
	return err
}

// DeactivateByURLs retires removed listings in one statement, scoped
// to the market so URL collisions across markets stay isolated.
func (s *PostgresStore) DeactivateByURLs(ctx context.Context, urls []string, sourceMarket string) (int, error) {
	if len(urls) == 0 {
		return 0, nil
	}

	query := `
		UPDATE properties
		SET is_active = FALSE, updated_at = NOW()
		WHERE external_url = ANY($1) AND source_market = $2`

	tag, err := s.pool.Exec(ctx, query, urls, sourceMarket)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) ListExternalURLs(ctx context.Context, sourceMarket string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT external_url FROM properties WHERE source_market = $1`, sourceMarket)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

package catalogrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/yanqian/skincare-api/internal/domain/recommendation"
)

// PostgresRepository loads catalog products from the products table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// LoadProducts returns every product ordered by catalog position.
func (r *PostgresRepository) LoadProducts(ctx context.Context) ([]recommendation.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, brand, description, price::text, category,
		       ingredients, skin_types, concerns, dermatologist_recommended, rating
		FROM products
		ORDER BY position, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []recommendation.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (recommendation.Product, error) {
	var (
		p        recommendation.Product
		price    string
		category string
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Brand, &p.Description, &price, &category,
		&p.Ingredients, &p.SkinTypes, &p.Concerns, &p.DermatologistRecommended, &p.Rating,
	); err != nil {
		return recommendation.Product{}, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return recommendation.Product{}, fmt.Errorf("product %q price: %w", p.ID, err)
	}
	p.Price = parsed
	p.Category = recommendation.Category(category)
	return p, nil
}

var _ recommendation.CatalogSource = (*PostgresRepository)(nil)

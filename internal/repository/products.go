package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
)

const productColumns = `id, name, name_fr, name_ar, description, description_fr, description_ar,
	category, subcategory, price, currency, image, tags, stock,
	popularity, recency, personal, seller_boost,
	medical_conditions, skin_conditions, nutritional_info,
	age_range, gender, hair_types, problems_solved`

// LoadProducts returns the whole catalog in its stored order.
func (r *Repository) LoadProducts(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var items []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over products: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCatalog
	}
	return items, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p                              domain.Product
		nameFR, nameAR, descFR, descAR *string
		subcategory, currency, image   *string
	)
	err := row.Scan(
		&p.ID, &p.Name, &nameFR, &nameAR, &p.Description, &descFR, &descAR,
		&p.Category, &subcategory, &p.Price, &currency, &image, &p.Tags, &p.Stock,
		&p.Popularity, &p.Recency, &p.Personal, &p.SellerBoost,
		&p.MedicalConditions, &p.SkinConditions, &p.NutritionalInfo,
		&p.AgeRange, &p.Gender, &p.HairTypes, &p.ProblemsSolved,
	)
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	p.NameFR, p.NameAR = deref(nameFR), deref(nameAR)
	p.DescriptionFR, p.DescriptionAR = deref(descFR), deref(descAR)
	p.Subcategory, p.Currency, p.Image = deref(subcategory), deref(currency), deref(image)
	return &p, nil
}

// UpdateSellerBoost persists the boost of an already-updated product.
func (r *Repository) UpdateSellerBoost(ctx context.Context, p *domain.Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET seller_boost = $1, updated_at = NOW() WHERE id = $2`,
		p.SellerBoost, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update seller boost for %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// CountProducts is used to decide whether the demo catalog must be seeded.
func (r *Repository) CountProducts(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

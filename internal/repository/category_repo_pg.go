package repository

import (
	"context"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
}

type PGCategoryRepository struct {
	db *pgxpool.Pool
}

func NewCategoryRepository(db *pgxpool.Pool) CategoryRepository {
	return &PGCategoryRepository{db: db}
}

func (r *PGCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT c.category_id, c.name, COALESCE(c.description, ''),
			COALESCE(c.icon, ''), COUNT(s.service_id)
		FROM categories c
		LEFT JOIN services s ON c.category_id = s.category_id AND s.is_active = TRUE
		GROUP BY c.category_id
		ORDER BY c.name ASC`)
	if err != nil {
		return nil, mapError("category", "select", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.ServiceCount); err != nil {
			return nil, mapError("category", "scan", err)
		}
		categories = append(categories, c)
	}
	return categories, mapError("category", "select", rows.Err())
}

func (r *PGCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	row := r.db.QueryRow(ctx, `SELECT category_id, name, COALESCE(description, ''), COALESCE(icon, '')
		FROM categories WHERE category_id=$1`, id)
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Icon); err != nil {
		return nil, mapError("category", "select", err)
	}
	return &c, nil
}

var _ CategoryRepository = (*PGCategoryRepository)(nil)

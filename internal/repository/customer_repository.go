package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pawnshop/pawn-engine/internal/domain"
)

type customerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) GetByIDNumber(ctx context.Context, idNumber string) (*domain.Customer, error) {
	query := `
		SELECT id, full_name, phone, id_number, address, status, created_at, updated_at
		FROM customers
		WHERE id_number = $1
	`

	var customer domain.Customer
	if err := sqlx.GetContext(ctx, getExt(ctx, r.db), &customer, query, idNumber); err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, full_name, phone, id_number, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := getExt(ctx, r.db).ExecContext(ctx, query,
		customer.ID,
		customer.FullName,
		customer.Phone,
		customer.IDNumber,
		customer.Address,
		customer.Status,
		customer.CreatedAt,
		customer.UpdatedAt,
	)

	return err
}

type pawnItemRepository struct {
	db *sqlx.DB
}

func NewPawnItemRepository(db *sqlx.DB) PawnItemRepository {
	return &pawnItemRepository{db: db}
}

func (r *pawnItemRepository) Create(ctx context.Context, item *domain.PawnItem) error {
	query := `
		INSERT INTO pawn_items (id, customer_id, item_type, description, estimated_value, photo_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := getExt(ctx, r.db).ExecContext(ctx, query,
		item.ID,
		item.CustomerID,
		item.ItemType,
		item.Description,
		item.EstimatedValue,
		item.PhotoURL,
		item.Status,
		item.CreatedAt,
		item.UpdatedAt,
	)

	return err
}

func (r *pawnItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PawnItem, error) {
	query := `
		SELECT id, customer_id, item_type, description, estimated_value, photo_url, status, created_at, updated_at
		FROM pawn_items
		WHERE id = $1
	`

	var item domain.PawnItem
	if err := sqlx.GetContext(ctx, getExt(ctx, r.db), &item, query, id); err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *pawnItemRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE pawn_items SET status = $2, updated_at = NOW() WHERE id = $1`

	_, err := getExt(ctx, r.db).ExecContext(ctx, query, id, status)
	return err
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pawnshop/pawn-engine/internal/domain"
)

type currencyRepository struct {
	db *sqlx.DB
}

func NewCurrencyRepository(db *sqlx.DB) CurrencyRepository {
	return &currencyRepository{db: db}
}

func (r *currencyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Currency, error) {
	query := `
		SELECT id, code, name, symbol, decimal_place, status, created_at
		FROM currencies
		WHERE id = $1
	`

	var currency domain.Currency
	if err := sqlx.GetContext(ctx, getExt(ctx, r.db), &currency, query, id); err != nil {
		return nil, err
	}

	return &currency, nil
}

type branchRepository struct {
	db *sqlx.DB
}

func NewBranchRepository(db *sqlx.DB) BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Branch, error) {
	query := `
		SELECT id, name, status, created_at
		FROM branches
		WHERE id = $1
	`

	var branch domain.Branch
	if err := sqlx.GetContext(ctx, getExt(ctx, r.db), &branch, query, id); err != nil {
		return nil, err
	}

	return &branch, nil
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ereignis/ereignis-api/internal/domain"
)

// AddressRepository encapsulates address persistence.
type AddressRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Address, error)
	Insert(ctx context.Context, address *domain.Address) error
	Update(ctx context.Context, id int64, input domain.AddressInput) (*domain.Address, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page domain.PageRequest) ([]domain.Address, error)
}

const addressColumns = `id, owner_id, country, state, city, street, zip, exterior_number, interior_number, created_at, updated_at`

type addressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository instantiates repository.
func NewAddressRepository(pool *pgxpool.Pool) AddressRepository {
	return &addressRepository{pool: pool}
}

func (r *addressRepository) Insert(ctx context.Context, address *domain.Address) error {
	const query = `
        INSERT INTO addresses (owner_id, country, state, city, street, zip, exterior_number, interior_number)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		address.OwnerID,
		address.Country,
		address.State,
		address.City,
		address.Street,
		address.Zip,
		address.ExteriorNumber,
		address.InteriorNumber,
	).Scan(&address.ID, &address.CreatedAt, &address.UpdatedAt)
	return translate(err)
}

func (r *addressRepository) FindByID(ctx context.Context, id int64) (*domain.Address, error) {
	address, err := scanAddress(r.pool.QueryRow(ctx, `SELECT `+addressColumns+` FROM addresses WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return address, nil
}

func (r *addressRepository) Update(ctx context.Context, id int64, input domain.AddressInput) (*domain.Address, error) {
	const query = `
        UPDATE addresses SET country=$1, state=$2, city=$3, street=$4, zip=$5,
            exterior_number=$6, interior_number=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING ` + addressColumns
	address, err := scanAddress(r.pool.QueryRow(ctx, query,
		input.Country,
		input.State,
		input.City,
		input.Street,
		input.Zip,
		input.ExteriorNumber,
		input.InteriorNumber,
		id,
	))
	if err != nil {
		return nil, translate(err)
	}
	return address, nil
}

func (r *addressRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM addresses WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *addressRepository) List(ctx context.Context, page domain.PageRequest) ([]domain.Address, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if page.Before != nil {
		args = append(args, *page.Before)
		clauses = append(clauses, fmt.Sprintf("created_at < $%d", len(args)))
	}
	args = append(args, page.Limit)
	query := fmt.Sprintf(`SELECT %s FROM addresses WHERE %s ORDER BY created_at DESC LIMIT $%d`,
		addressColumns, strings.Join(clauses, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Address
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *address)
	}
	return result, rows.Err()
}

func scanAddress(row pgx.Row) (*domain.Address, error) {
	var a domain.Address
	if err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.Country,
		&a.State,
		&a.City,
		&a.Street,
		&a.Zip,
		&a.ExteriorNumber,
		&a.InteriorNumber,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

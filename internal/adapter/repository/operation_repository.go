package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plastinin/fileconverter/internal/domain"
)

const operationColumns = `id, kind, status, file_count, input_bytes, output_bytes, page_count, error, created_at, completed_at`

// OperationRepository журнал операций в PostgreSQL
type OperationRepository struct {
	pool *pgxpool.Pool
}

// NewOperationRepository создаёт новый экземпляр OperationRepository
func NewOperationRepository(pool *pgxpool.Pool) *OperationRepository {
	return &OperationRepository{pool: pool}
}

// Create записывает завершённую операцию
func (r *OperationRepository) Create(ctx context.Context, op *domain.Operation) error {
	query := `
		INSERT INTO operations (` + operationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	// Пустая ошибка хранится как NULL
	var errorMsg *string
	if op.Error != "" {
		errorMsg = &op.Error
	}

	_, err := r.pool.Exec(ctx, query,
		op.ID,
		op.Kind,
		op.Status,
		op.FileCount,
		op.InputBytes,
		op.OutputBytes,
		op.PageCount,
		errorMsg,
		op.CreatedAt,
		op.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert operation: %w", err)
	}

	return nil
}

// GetByID возвращает операцию по ID
func (r *OperationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations WHERE id = $1`

	op, err := scanOperation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperationNotFound
		}
		return nil, fmt.Errorf("failed to get operation: %w", err)
	}

	return op, nil
}

// List возвращает страницу журнала, новые записи первыми
func (r *OperationRepository) List(ctx context.Context, filter domain.OperationFilter, pagination domain.Pagination) (*domain.OperationListResult, error) {
	where, args := buildFilter(filter)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM operations"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count operations: %w", err)
	}

	selectQuery := fmt.Sprintf(`SELECT %s FROM operations%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		operationColumns, where, len(args)+1, len(args)+2)
	args = append(args, pagination.Limit(), pagination.Offset())

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	operations := make([]*domain.Operation, 0)
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		operations = append(operations, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return &domain.OperationListResult{
		Operations: operations,
		Total:      total,
		Pagination: pagination,
	}, nil
}

// buildFilter строит WHERE и аргументы для фильтра
func buildFilter(filter domain.OperationFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.Kind != nil {
		args = append(args, *filter.Kind)
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	where := " WHERE " + conds[0]
	for _, c := range conds[1:] {
		where += " AND " + c
	}
	return where, args
}

func scanOperation(row pgx.Row) (*domain.Operation, error) {
	op := &domain.Operation{}
	var errorMsg *string // Указатель для NULL

	err := row.Scan(
		&op.ID,
		&op.Kind,
		&op.Status,
		&op.FileCount,
		&op.InputBytes,
		&op.OutputBytes,
		&op.PageCount,
		&errorMsg,
		&op.CreatedAt,
		&op.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if errorMsg != nil {
		op.Error = *errorMsg
	}
	return op, nil
}

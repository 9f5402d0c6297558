package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

type changeLogRepository struct {
	db *sql.DB
}

// NewChangeLogRepository создаёт PostgreSQL-реализацию ChangeLogRepository.
func NewChangeLogRepository(store *Store) domain.ChangeLogRepository {
	return &changeLogRepository{db: store.DB()}
}

// Append добавляет запись в историю заказа.
func (r *changeLogRepository) Append(ctx context.Context, entry domain.OperationLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_change_log (id, order_id, operation_type, detail, user_name, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, entry.ID, entry.OrderID, entry.OperationType, entry.Detail, entry.UserName, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert change log entry: %w", err)
	}
	return nil
}

// List возвращает записи заказа в хронологическом порядке.
func (r *changeLogRepository) List(ctx context.Context, orderID string) ([]domain.OperationLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, operation_type, detail, user_name, created_at
		FROM order_change_log
		WHERE order_id = $1
		ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list change log: %w", err)
	}
	defer rows.Close()

	result := make([]domain.OperationLog, 0)
	for rows.Next() {
		var entry domain.OperationLog
		if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.OperationType,
			&entry.Detail, &entry.UserName, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan change log row: %w", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

var _ domain.ChangeLogRepository = (*changeLogRepository)(nil)

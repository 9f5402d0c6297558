package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

const orderColumns = `id, number, store_id, customer_id, employee_id, currency, language_code, status, total_minor, version, created_at, updated_at`

// Search выполняет поиск по критериям, уже суженным scope-фильтром.
func (r *orderRepository) Search(ctx context.Context, criteria domain.SearchCriteria) (domain.SearchResult, error) {
	where, args := buildWhere(criteria)

	var total int
	countQuery := `SELECT COUNT(*) FROM customer_orders` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return domain.SearchResult{}, fmt.Errorf("count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM customer_orders` + where +
		` ORDER BY created_at DESC, id DESC`
	if criteria.Take > 0 {
		args = append(args, criteria.Take)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if criteria.Skip > 0 {
		args = append(args, criteria.Skip)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("search orders: %w", err)
	}
	defer rows.Close()

	orders, err := r.scanOrders(ctx, rows, criteria.ResponseGroup)
	if err != nil {
		return domain.SearchResult{}, err
	}

	return domain.SearchResult{Orders: orders, TotalCount: total}, nil
}

// GetByIDs возвращает найденные заказы; отсутствующие id пропускаются.
func (r *orderRepository) GetByIDs(ctx context.Context, ids []string, respGroup string) ([]domain.CustomerOrder, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `SELECT ` + orderColumns + ` FROM customer_orders WHERE id IN (` +
		strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get orders by ids: %w", err)
	}
	defer rows.Close()

	return r.scanOrders(ctx, rows, respGroup)
}

// Save upsert-ит агрегаты с проверкой версии (optimistic locking).
func (r *orderRepository) Save(ctx context.Context, orders []domain.CustomerOrder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range orders {
		if err = r.saveOne(ctx, tx, &orders[i]); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save orders: %w", err)
	}
	return nil
}

func (r *orderRepository) saveOne(ctx context.Context, tx *sql.Tx, order *domain.CustomerOrder) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO customer_orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10+1,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
			number = EXCLUDED.number,
			store_id = EXCLUDED.store_id,
			customer_id = EXCLUDED.customer_id,
			employee_id = EXCLUDED.employee_id,
			currency = EXCLUDED.currency,
			language_code = EXCLUDED.language_code,
			status = EXCLUDED.status,
			total_minor = EXCLUDED.total_minor,
			version = customer_orders.version + 1,
			updated_at = EXCLUDED.updated_at
		WHERE customer_orders.version = $10
	`,
		order.ID, order.Number, order.StoreID, order.CustomerID, order.EmployeeID,
		order.Currency, order.LanguageCode, string(order.Status), order.TotalMinor,
		order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert order %q: %w", order.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrVersionConflict
	}

	// Платежи и отгрузки перезаписываются вместе с агрегатом.
	if _, err = tx.ExecContext(ctx, `DELETE FROM order_payments WHERE order_id = $1`, order.ID); err != nil {
		return fmt.Errorf("clear order payments: %w", err)
	}
	for _, p := range order.InPayments {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_payments (
				id, number, order_id, customer_id, gateway_code, outer_id,
				status, sum_minor, currency, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`,
			p.ID, p.Number, order.ID, p.CustomerID, p.GatewayCode, p.OuterID,
			string(p.Status), p.SumMinor, p.Currency, p.CreatedAt, p.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert order payment %q: %w", p.ID, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM order_shipments WHERE order_id = $1`, order.ID); err != nil {
		return fmt.Errorf("clear order shipments: %w", err)
	}
	for _, sh := range order.Shipments {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_shipments (id, number, order_id, currency, status)
			VALUES ($1,$2,$3,$4,$5)
		`, sh.ID, sh.Number, order.ID, sh.Currency, sh.Status); err != nil {
			return fmt.Errorf("insert order shipment %q: %w", sh.ID, err)
		}
	}

	return nil
}

func (r *orderRepository) scanOrders(ctx context.Context, rows *sql.Rows, respGroup string) ([]domain.CustomerOrder, error) {
	orders := make([]domain.CustomerOrder, 0)
	for rows.Next() {
		var order domain.CustomerOrder
		var status string
		if err := rows.Scan(
			&order.ID, &order.Number, &order.StoreID, &order.CustomerID, &order.EmployeeID,
			&order.Currency, &order.LanguageCode, &status, &order.TotalMinor,
			&order.Version, &order.CreatedAt, &order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		order.Status = domain.OrderStatus(status)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		if err := r.loadPayments(ctx, &orders[i]); err != nil {
			return nil, err
		}
		if err := r.loadShipments(ctx, &orders[i]); err != nil {
			return nil, err
		}
		project(&orders[i], respGroup)
	}
	return orders, nil
}

func (r *orderRepository) loadPayments(ctx context.Context, order *domain.CustomerOrder) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, number, customer_id, gateway_code, outer_id, status, sum_minor, currency, created_at, updated_at
		FROM order_payments
		WHERE order_id = $1
		ORDER BY created_at, id
	`, order.ID)
	if err != nil {
		return fmt.Errorf("load order payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.PaymentIn
		var status string
		if err := rows.Scan(
			&p.ID, &p.Number, &p.CustomerID, &p.GatewayCode, &p.OuterID,
			&status, &p.SumMinor, &p.Currency, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return fmt.Errorf("scan payment row: %w", err)
		}
		p.OrderID = order.ID
		p.Status = domain.PaymentStatus(status)
		order.InPayments = append(order.InPayments, p)
	}
	return rows.Err()
}

func (r *orderRepository) loadShipments(ctx context.Context, order *domain.CustomerOrder) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, number, currency, status
		FROM order_shipments
		WHERE order_id = $1
		ORDER BY id
	`, order.ID)
	if err != nil {
		return fmt.Errorf("load order shipments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sh domain.Shipment
		if err := rows.Scan(&sh.ID, &sh.Number, &sh.Currency, &sh.Status); err != nil {
			return fmt.Errorf("scan shipment row: %w", err)
		}
		order.Shipments = append(order.Shipments, sh)
	}
	return rows.Err()
}

// project обнуляет денежные поля, если ценовая группа не запрошена.
func project(order *domain.CustomerOrder, respGroup string) {
	if respGroup == domain.ResponseGroupWithPrices || respGroup == domain.ResponseGroupFull {
		return
	}
	order.TotalMinor = 0
	for i := range order.InPayments {
		order.InPayments[i].SumMinor = 0
	}
}

func buildWhere(criteria domain.SearchCriteria) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if criteria.Number != "" {
		add("LOWER(number) = LOWER($%d)", criteria.Number)
	}
	if len(criteria.StoreIDs) > 0 {
		placeholders := make([]string, len(criteria.StoreIDs))
		for i, id := range criteria.StoreIDs {
			args = append(args, id)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, "store_id IN ("+strings.Join(placeholders, ",")+")")
	}
	if criteria.EmployeeID != "" {
		add("employee_id = $%d", criteria.EmployeeID)
	}
	if criteria.CustomerID != "" {
		add("customer_id = $%d", criteria.CustomerID)
	}
	if criteria.StartDate != nil {
		add("created_at >= $%d", *criteria.StartDate)
	}
	if criteria.EndDate != nil {
		add("created_at <= $%d", *criteria.EndDate)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var _ domain.OrderRepository = (*orderRepository)(nil)

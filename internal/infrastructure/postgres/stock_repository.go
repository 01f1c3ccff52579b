package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/beanstock-api/internal/domain"
	"github.com/jhoicas/beanstock-api/internal/domain/entity"
	"github.com/jhoicas/beanstock-api/internal/domain/repository"
)

var _ repository.StockConditionRepository = (*StockConditionRepo)(nil)

// StockConditionRepo implementación de StockConditionRepository sobre PostgreSQL (usable con pool o tx).
type StockConditionRepo struct {
	q Querier
}

// NewStockConditionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockConditionRepository(q Querier) *StockConditionRepo {
	return &StockConditionRepo{q: q}
}

const stockSelect = `
	SELECT s.id, s.user_id, s.bean_type, s.quantity, s.temperature, s.humidity, s.status,
	       s.location, s.air_condition, s.action_taken, s.last_updated, s.created_at, s.updated_at,
	       u.name, u.email
	FROM stock_conditions s
	JOIN users u ON u.id = s.user_id`

func scanStock(row pgx.Row) (*entity.StockCondition, error) {
	var s entity.StockCondition
	owner := &entity.UserSummary{}
	err := row.Scan(
		&s.ID, &s.UserID, &s.BeanType, &s.Quantity, &s.Temperature, &s.Humidity, &s.Status,
		&s.Location, &s.AirCondition, &s.ActionTaken, &s.LastUpdated, &s.CreatedAt, &s.UpdatedAt,
		&owner.Name, &owner.Email,
	)
	if err != nil {
		return nil, err
	}
	owner.ID = s.UserID
	s.Owner = owner
	return &s, nil
}

// Create inserta la observación y asigna su ID.
func (r *StockConditionRepo) Create(ctx context.Context, s *entity.StockCondition) error {
	query := `
		INSERT INTO stock_conditions (user_id, bean_type, quantity, temperature, humidity, status,
		                              location, air_condition, action_taken, last_updated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		s.UserID, s.BeanType, s.Quantity, s.Temperature, s.Humidity, s.Status,
		s.Location, s.AirCondition, s.ActionTaken, s.LastUpdated, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert stock condition: %w", err)
	}
	return nil
}

// GetByID obtiene la observación con su dueño.
func (r *StockConditionRepo) GetByID(ctx context.Context, id int64) (*entity.StockCondition, error) {
	s, err := scanStock(r.q.QueryRow(ctx, stockSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock condition: %w", err)
	}
	return s, nil
}

// Update reescribe los campos editables. user_id y created_at no se tocan.
func (r *StockConditionRepo) Update(ctx context.Context, s *entity.StockCondition) error {
	query := `
		UPDATE stock_conditions SET
			bean_type = $2, quantity = $3, temperature = $4, humidity = $5, status = $6,
			location = $7, air_condition = $8, action_taken = $9, last_updated = $10, updated_at = $11
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.BeanType, s.Quantity, s.Temperature, s.Humidity, s.Status,
		s.Location, s.AirCondition, s.ActionTaken, s.LastUpdated, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock condition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borrado definitivo.
func (r *StockConditionRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_conditions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stock condition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func filterClause(f repository.StockFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.UserID != nil {
		args = append(args, *f.UserID)
		where = append(where, fmt.Sprintf("s.user_id = $%d", len(args)))
	}
	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// List observaciones del filtro, más recientes primero.
func (r *StockConditionRepo) List(ctx context.Context, f repository.StockFilter) ([]*entity.StockCondition, error) {
	where, args := filterClause(f)
	query := stockSelect + where + ` ORDER BY s.created_at DESC, s.id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock conditions: %w", err)
	}
	defer rows.Close()
	list := []*entity.StockCondition{}
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock condition: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Count total de observaciones del filtro (ignora Limit/Offset).
func (r *StockConditionRepo) Count(ctx context.Context, f repository.StockFilter) (int, error) {
	where, args := filterClause(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_conditions s`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stock conditions: %w", err)
	}
	return n, nil
}

// Summary dueños distintos y promedios (NUMERIC -> decimal.Decimal, 0 si no hay registros).
func (r *StockConditionRepo) Summary(ctx context.Context) (*repository.StockSummary, error) {
	query := `
		SELECT COUNT(DISTINCT user_id),
		       COALESCE(AVG(temperature)::numeric, 0),
		       COALESCE(AVG(humidity)::numeric, 0)
		FROM stock_conditions`
	var out repository.StockSummary
	if err := r.q.QueryRow(ctx, query).Scan(&out.DistinctOwners, &out.AvgTemperature, &out.AvgHumidity); err != nil {
		return nil, fmt.Errorf("stock summary: %w", err)
	}
	return &out, nil
}

// Latest observación más reciente de cualquier dueño.
func (r *StockConditionRepo) Latest(ctx context.Context) (*entity.StockCondition, error) {
	s, err := scanStock(r.q.QueryRow(ctx, stockSelect+` ORDER BY s.created_at DESC, s.id DESC LIMIT 1`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest stock condition: %w", err)
	}
	return s, nil
}

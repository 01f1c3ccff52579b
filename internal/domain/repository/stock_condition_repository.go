package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/beanstock-api/internal/domain/entity"
)

// StockFilter filtro de listados. UserID nil = todos los dueños; Limit 0 = sin paginar.
type StockFilter struct {
	UserID *int64
	Limit  int
	Offset int
}

// StockSummary agregados sobre todos los registros.
type StockSummary struct {
	DistinctOwners int
	AvgTemperature decimal.Decimal
	AvgHumidity    decimal.Decimal
}

// StockConditionRepository puerto de persistencia de observaciones.
// Lecturas cargan Owner; los listados van del más reciente al más antiguo (created_at, id).
type StockConditionRepository interface {
	Create(ctx context.Context, s *entity.StockCondition) error
	GetByID(ctx context.Context, id int64) (*entity.StockCondition, error)
	Update(ctx context.Context, s *entity.StockCondition) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f StockFilter) ([]*entity.StockCondition, error)
	Count(ctx context.Context, f StockFilter) (int, error)
	Summary(ctx context.Context) (*StockSummary, error)
	// Latest registro más reciente; nil si no hay ninguno.
	Latest(ctx context.Context) (*entity.StockCondition, error)
}

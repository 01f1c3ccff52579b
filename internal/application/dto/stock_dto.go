package dto

import (
	"bytes"
	"encoding/json"
	"time"
)

// CreateStockRequest alta por POST /stocks (humedad acotada a 0–100).
type CreateStockRequest struct {
	BeanType     string   `json:"bean_type" validate:"required,max=255"`
	Quantity     *float64 `json:"quantity" validate:"required,min=0"`
	Temperature  *float64 `json:"temperature" validate:"required"`
	Humidity     *float64 `json:"humidity" validate:"required,min=0,max=100"`
	Status       string   `json:"status" validate:"required,oneof=Good Warning Critical"`
	Location     string   `json:"location" validate:"required,max=255"`
	AirCondition string   `json:"air_condition" validate:"required,max=255"`
	ActionTaken  *string  `json:"action_taken" validate:"omitnil,max=1000"`
}

// CreateStockConditionRequest alta por POST /stock-conditions: misma forma pero sin cota de humedad.
type CreateStockConditionRequest struct {
	BeanType     string   `json:"bean_type" validate:"required,max=255"`
	Quantity     *float64 `json:"quantity" validate:"required,min=0"`
	Temperature  *float64 `json:"temperature" validate:"required"`
	Humidity     *float64 `json:"humidity" validate:"required"`
	Status       string   `json:"status" validate:"required,oneof=Good Warning Critical"`
	Location     string   `json:"location" validate:"required,max=255"`
	AirCondition string   `json:"air_condition" validate:"required,max=255"`
	ActionTaken  *string  `json:"action_taken" validate:"omitnil,max=1000"`
}

// UpdateStockRequest actualización parcial; solo se validan los campos enviados.
// last_updated no se acepta del cliente: toda actualización lo refresca.
type UpdateStockRequest struct {
	BeanType     *string  `json:"bean_type" validate:"omitnil,min=1,max=255"`
	Quantity     *float64 `json:"quantity" validate:"omitnil,min=0"`
	Temperature  *float64 `json:"temperature"`
	Humidity     *float64 `json:"humidity"`
	Status       *string  `json:"status" validate:"omitnil,oneof=Good Warning Critical"`
	Location     *string  `json:"location" validate:"omitnil,min=1,max=255"`
	AirCondition *string  `json:"air_condition" validate:"omitnil,min=1,max=255"`
	ActionTaken  *string  `json:"action_taken" validate:"omitnil,max=1000"`

	// ClearActionTaken "action_taken": null explícito (ausente no borra).
	ClearActionTaken bool `json:"-"`
}

// UnmarshalJSON distingue action_taken ausente de action_taken null.
func (r *UpdateStockRequest) UnmarshalJSON(data []byte) error {
	type plain UpdateStockRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, ok := raw["action_taken"]
	p.ClearActionTaken = ok && bytes.Equal(bytes.TrimSpace(v), []byte("null"))
	*r = UpdateStockRequest(p)
	return nil
}

// OwnerResponse campos públicos del dueño.
type OwnerResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// StockResponse salida de un registro con su dueño anidado.
type StockResponse struct {
	ID           int64          `json:"id"`
	UserID       int64          `json:"user_id"`
	BeanType     string         `json:"bean_type"`
	Quantity     float64        `json:"quantity"`
	Temperature  float64        `json:"temperature"`
	Humidity     float64        `json:"humidity"`
	Status       string         `json:"status"`
	Location     string         `json:"location"`
	AirCondition string         `json:"air_condition"`
	ActionTaken  *string        `json:"action_taken"`
	LastUpdated  time.Time      `json:"last_updated"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	User         *OwnerResponse `json:"user,omitempty"`
}

// StockPageResponse página de registros (10 por página).
type StockPageResponse struct {
	CurrentPage int             `json:"current_page"`
	PerPage     int             `json:"per_page"`
	Total       int             `json:"total"`
	LastPage    int             `json:"last_page"`
	Data        []StockResponse `json:"data"`
}

// StockSummaryResponse resumen para administradores.
type StockSummaryResponse struct {
	TotalUsers      int            `json:"total_users"`
	AvgTemperature  float64        `json:"avg_temperature"`
	AvgHumidity     float64        `json:"avg_humidity"`
	LatestCondition *StockResponse `json:"latest_condition"`
}

// StockOverview vista de /stocks/overview: Page para farmers, Summary para admins.
type StockOverview struct {
	Page    *StockPageResponse
	Summary *StockSummaryResponse
}

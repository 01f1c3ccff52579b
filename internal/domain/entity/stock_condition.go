package entity

import "time"

// Estados válidos de una observación.
const (
	StockStatusGood     = "Good"
	StockStatusWarning  = "Warning"
	StockStatusCritical = "Critical"
)

// StockCondition observación de inventario de granos (temperatura, humedad, estado)
// registrada por un usuario. UserID se fija al crear y no cambia después.
type StockCondition struct {
	ID           int64
	UserID       int64
	BeanType     string
	Quantity     float64
	Temperature  float64
	Humidity     float64
	Status       string
	Location     string
	AirCondition string
	ActionTaken  *string
	LastUpdated  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Owner *UserSummary // cargado junto con el registro en lecturas
}

// OwnedBy indica si el registro pertenece al usuario.
func (s *StockCondition) OwnedBy(userID int64) bool {
	return s.UserID == userID
}

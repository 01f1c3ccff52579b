package stock

import (
	"context"
	"time"

	"github.com/jhoicas/beanstock-api/internal/application/dto"
)

// ReportData datos del reporte de observaciones para administradores.
type ReportData struct {
	GeneratedAt time.Time
	GeneratedBy string
	Summary     dto.StockSummaryResponse
	Rows        []dto.StockResponse
}

// ReportGenerator puerto para renderizar el reporte (PDF).
type ReportGenerator interface {
	GenerateStockReport(ctx context.Context, data ReportData) ([]byte, error)
}

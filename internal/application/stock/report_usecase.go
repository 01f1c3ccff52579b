package stock

import (
	"context"
	"fmt"

	"github.com/jhoicas/beanstock-api/internal/domain/authz"
)

// ReportUseCase genera el reporte PDF de todas las observaciones (solo Admin).
type ReportUseCase struct {
	stocks    *StockUseCase
	generator ReportGenerator
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(stocks *StockUseCase, generator ReportGenerator) *ReportUseCase {
	return &ReportUseCase{stocks: stocks, generator: generator}
}

// StockConditionsPDF devuelve los bytes del PDF y el nombre de archivo sugerido.
func (uc *ReportUseCase) StockConditionsPDF(ctx context.Context, id *authz.Identity) ([]byte, string, error) {
	rows, err := uc.stocks.ListAll(ctx, id)
	if err != nil {
		return nil, "", err
	}
	summary, err := uc.stocks.Summary(ctx)
	if err != nil {
		return nil, "", err
	}
	now := uc.stocks.now()
	data := ReportData{
		GeneratedAt: now,
		GeneratedBy: id.Name,
		Summary:     *summary,
		Rows:        rows,
	}
	pdf, err := uc.generator.GenerateStockReport(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("reporte: generar pdf: %w", err)
	}
	return pdf, fmt.Sprintf("stock-conditions-%s.pdf", now.Format("20060102-150405")), nil
}

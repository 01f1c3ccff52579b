package stock

import (
	"context"
	"math"
	"time"

	"github.com/jhoicas/beanstock-api/internal/application/dto"
	"github.com/jhoicas/beanstock-api/internal/domain"
	"github.com/jhoicas/beanstock-api/internal/domain/authz"
	"github.com/jhoicas/beanstock-api/internal/domain/entity"
	"github.com/jhoicas/beanstock-api/internal/domain/repository"
	"github.com/jhoicas/beanstock-api/pkg/logger"
	"github.com/jhoicas/beanstock-api/pkg/validator"
)

// PerPage tamaño de página de /stocks/overview.
const PerPage = 10

// UpdateOptions diferencias entre los endpoints de actualización.
type UpdateOptions struct {
	Policy authz.DenyPolicy
}

// StockUseCase observaciones de inventario filtradas por dueño.
type StockUseCase struct {
	repo     repository.StockConditionRepository
	users    repository.UserRepository
	guard    *authz.Guard
	validate *validator.Validator
	log      *logger.Logger
	now      func() time.Time
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	repo repository.StockConditionRepository,
	users repository.UserRepository,
	guard *authz.Guard,
	v *validator.Validator,
	log *logger.Logger,
) *StockUseCase {
	return &StockUseCase{repo: repo, users: users, guard: guard, validate: v, log: log, now: time.Now}
}

// Create alta por /stocks: humedad entre 0 y 100.
func (uc *StockUseCase) Create(ctx context.Context, id *authz.Identity, in dto.CreateStockRequest) (*dto.StockResponse, error) {
	if err := uc.authorize(id, authz.ActionCreateStock, nil, authz.DenyAsForbidden); err != nil {
		return nil, err
	}
	in.BeanType = validator.Sanitize(in.BeanType)
	in.Location = validator.Sanitize(in.Location)
	in.AirCondition = validator.Sanitize(in.AirCondition)
	in.ActionTaken = validator.SanitizePtr(in.ActionTaken)
	if errs := uc.validate.Struct(in); errs != nil {
		return nil, domain.ValidationFromFields(errs)
	}
	return uc.create(ctx, id, dto.CreateStockConditionRequest(in))
}

// CreateLegacy alta por /stock-conditions: misma forma, humedad sin cota.
func (uc *StockUseCase) CreateLegacy(ctx context.Context, id *authz.Identity, in dto.CreateStockConditionRequest) (*dto.StockResponse, error) {
	if err := uc.authorize(id, authz.ActionCreateStock, nil, authz.DenyAsForbidden); err != nil {
		return nil, err
	}
	in.BeanType = validator.Sanitize(in.BeanType)
	in.Location = validator.Sanitize(in.Location)
	in.AirCondition = validator.Sanitize(in.AirCondition)
	in.ActionTaken = validator.SanitizePtr(in.ActionTaken)
	if errs := uc.validate.Struct(in); errs != nil {
		return nil, domain.ValidationFromFields(errs)
	}
	return uc.create(ctx, id, in)
}

func (uc *StockUseCase) create(ctx context.Context, id *authz.Identity, in dto.CreateStockConditionRequest) (*dto.StockResponse, error) {
	now := uc.now()
	s := &entity.StockCondition{
		UserID:       id.UserID,
		BeanType:     in.BeanType,
		Quantity:     *in.Quantity,
		Temperature:  *in.Temperature,
		Humidity:     *in.Humidity,
		Status:       in.Status,
		Location:     in.Location,
		AirCondition: in.AirCondition,
		ActionTaken:  in.ActionTaken,
		LastUpdated:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
		Owner:        &entity.UserSummary{ID: id.UserID, Name: id.Name, Email: id.Email},
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", id.UserID).Int64("stock_id", s.ID).Msg("observación registrada")
	return ToStockResponse(s), nil
}

// Get obtiene un registro. Inexistente -> ErrNotFound; ajeno -> según policy.
func (uc *StockUseCase) Get(ctx context.Context, id *authz.Identity, stockID int64, policy authz.DenyPolicy) (*dto.StockResponse, error) {
	s, err := uc.load(ctx, id, stockID, authz.ActionReadStock, policy)
	if err != nil {
		return nil, err
	}
	return ToStockResponse(s), nil
}

// Update aplica solo los campos enviados y siempre refresca last_updated. El dueño no cambia.
func (uc *StockUseCase) Update(ctx context.Context, id *authz.Identity, stockID int64, in dto.UpdateStockRequest, opts UpdateOptions) (*dto.StockResponse, error) {
	s, err := uc.load(ctx, id, stockID, authz.ActionUpdateStock, opts.Policy)
	if err != nil {
		return nil, err
	}
	in.BeanType = validator.SanitizePtr(in.BeanType)
	in.Location = validator.SanitizePtr(in.Location)
	in.AirCondition = validator.SanitizePtr(in.AirCondition)
	in.ActionTaken = validator.SanitizePtr(in.ActionTaken)
	if errs := uc.validate.Struct(in); errs != nil {
		return nil, domain.ValidationFromFields(errs)
	}

	if in.BeanType != nil {
		s.BeanType = *in.BeanType
	}
	if in.Quantity != nil {
		s.Quantity = *in.Quantity
	}
	if in.Temperature != nil {
		s.Temperature = *in.Temperature
	}
	if in.Humidity != nil {
		s.Humidity = *in.Humidity
	}
	if in.Status != nil {
		s.Status = *in.Status
	}
	if in.Location != nil {
		s.Location = *in.Location
	}
	if in.AirCondition != nil {
		s.AirCondition = *in.AirCondition
	}
	switch {
	case in.ClearActionTaken:
		s.ActionTaken = nil
	case in.ActionTaken != nil:
		s.ActionTaken = in.ActionTaken
	}
	now := uc.now()
	s.LastUpdated = now
	s.UpdatedAt = now

	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return ToStockResponse(s), nil
}

// Delete borrado definitivo.
func (uc *StockUseCase) Delete(ctx context.Context, id *authz.Identity, stockID int64, policy authz.DenyPolicy) error {
	s, err := uc.load(ctx, id, stockID, authz.ActionDeleteStock, policy)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, s.ID); err != nil {
		return err
	}
	uc.log.Info().Int64("user_id", id.UserID).Int64("stock_id", s.ID).Int64("owner_id", s.UserID).Msg("observación eliminada")
	return nil
}

// List Farmer: solo los propios; Admin: todos. Si tiene ambos roles prima Farmer.
func (uc *StockUseCase) List(ctx context.Context, id *authz.Identity) ([]dto.StockResponse, error) {
	if err := uc.authorize(id, authz.ActionListStocks, nil, authz.DenyAsForbidden); err != nil {
		return nil, err
	}
	f := repository.StockFilter{}
	if id.IsFarmer() {
		f.UserID = &id.UserID
	}
	return uc.list(ctx, f)
}

// ListAll todos los registros sin paginar (solo Admin).
func (uc *StockUseCase) ListAll(ctx context.Context, id *authz.Identity) ([]dto.StockResponse, error) {
	if err := uc.authorize(id, authz.ActionListAllStocks, nil, authz.DenyAsForbidden); err != nil {
		return nil, err
	}
	return uc.list(ctx, repository.StockFilter{})
}

// ListByOwner registros de un usuario concreto (solo Admin). Usuario inexistente -> ErrUserNotFound.
func (uc *StockUseCase) ListByOwner(ctx context.Context, id *authz.Identity, ownerID int64) ([]dto.StockResponse, error) {
	if err := uc.authorize(id, authz.ActionListAllStocks, nil, authz.DenyAsForbidden); err != nil {
		return nil, err
	}
	owner, err := uc.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, domain.ErrUserNotFound
	}
	return uc.list(ctx, repository.StockFilter{UserID: &ownerID})
}

// Overview Farmer: página de sus registros (10 por página); Admin: resumen agregado.
func (uc *StockUseCase) Overview(ctx context.Context, id *authz.Identity, page int) (*dto.StockOverview, error) {
	if err := uc.authorize(id, authz.ActionListStocks, nil, authz.DenyAsForbidden); err != nil {
		return nil, err
	}
	if !id.IsFarmer() {
		summary, err := uc.Summary(ctx)
		if err != nil {
			return nil, err
		}
		return &dto.StockOverview{Summary: summary}, nil
	}

	req := dto.PageRequest{Page: page}
	req.Normalize(PerPage)
	f := repository.StockFilter{UserID: &id.UserID}
	total, err := uc.repo.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	lastPage := int(math.Ceil(float64(total) / float64(req.PerPage)))
	if lastPage < 1 {
		lastPage = 1
	}
	items := []dto.StockResponse{}
	if req.Page <= lastPage {
		f.Limit, f.Offset = req.PerPage, req.Offset()
		if items, err = uc.list(ctx, f); err != nil {
			return nil, err
		}
	}
	return &dto.StockOverview{Page: &dto.StockPageResponse{
		CurrentPage: req.Page,
		PerPage:     req.PerPage,
		Total:       total,
		LastPage:    lastPage,
		Data:        items,
	}}, nil
}

// Summary dueños distintos, promedios redondeados a 2 decimales y el registro más reciente.
// No verifica permisos: lo llaman Overview y el reporte después de autorizar.
func (uc *StockUseCase) Summary(ctx context.Context) (*dto.StockSummaryResponse, error) {
	sum, err := uc.repo.Summary(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := uc.repo.Latest(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.StockSummaryResponse{
		TotalUsers:     sum.DistinctOwners,
		AvgTemperature: sum.AvgTemperature.Round(2).InexactFloat64(),
		AvgHumidity:    sum.AvgHumidity.Round(2).InexactFloat64(),
	}
	if latest != nil {
		out.LatestCondition = ToStockResponse(latest)
	}
	return out, nil
}

func (uc *StockUseCase) list(ctx context.Context, f repository.StockFilter) ([]dto.StockResponse, error) {
	rows, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, 0, len(rows))
	for _, s := range rows {
		out = append(out, *ToStockResponse(s))
	}
	return out, nil
}

// load busca el registro y aplica el guard con su dueño.
func (uc *StockUseCase) load(ctx context.Context, id *authz.Identity, stockID int64, action authz.Action, policy authz.DenyPolicy) (*entity.StockCondition, error) {
	if id == nil {
		return nil, domain.ErrUnauthorized
	}
	s, err := uc.repo.GetByID(ctx, stockID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.authorize(id, action, &s.UserID, policy); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *StockUseCase) authorize(id *authz.Identity, action authz.Action, ownerID *int64, policy authz.DenyPolicy) error {
	if id == nil {
		return domain.ErrUnauthorized
	}
	if err := uc.guard.Authorize(id, action, ownerID, policy); err != nil {
		uc.log.Warn().Int64("user_id", id.UserID).Str("action", string(action)).Msg("acceso denegado")
		return err
	}
	return nil
}

// ToStockResponse mapea la entidad a la salida con el dueño anidado.
func ToStockResponse(s *entity.StockCondition) *dto.StockResponse {
	out := &dto.StockResponse{
		ID:           s.ID,
		UserID:       s.UserID,
		BeanType:     s.BeanType,
		Quantity:     s.Quantity,
		Temperature:  s.Temperature,
		Humidity:     s.Humidity,
		Status:       s.Status,
		Location:     s.Location,
		AirCondition: s.AirCondition,
		ActionTaken:  s.ActionTaken,
		LastUpdated:  s.LastUpdated,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.Owner != nil {
		out.User = &dto.OwnerResponse{ID: s.Owner.ID, Name: s.Owner.Name, Email: s.Owner.Email}
	}
	return out
}

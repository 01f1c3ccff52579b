package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/beanstock-api/internal/application/dto"
	"github.com/jhoicas/beanstock-api/internal/application/stock"
	"github.com/jhoicas/beanstock-api/internal/domain/authz"
	"github.com/jhoicas/beanstock-api/pkg/logger"
)

// StockHandler maneja /stocks y el recurso heredado /stock-conditions.
// Cada ruta fija su política de denegación (403 o 404) para registros ajenos.
type StockHandler struct {
	uc  *stock.StockUseCase
	log *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.StockUseCase, log *logger.Logger) *StockHandler {
	return &StockHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar observaciones (Farmer: propias; Admin: todas)
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Envelope{data=[]dto.StockResponse}
// @Failure      403  {object}  dto.Envelope
// @Router       /stocks [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetIdentity(c))
	if err != nil {
		return respondError(c, h.log, string(authz.ActionListStocks), err)
	}
	return okList(c, "", out)
}

// Create godoc
// @Summary      Registrar observación (humedad 0–100)
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRequest  true  "Observación"
// @Success      201   {object}  dto.Envelope{data=dto.StockResponse}
// @Failure      403   {object}  dto.Envelope
// @Failure      422   {object}  dto.Envelope
// @Router       /stocks [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, string(authz.ActionCreateStock), err)
	}
	out, err := h.uc.Create(c.UserContext(), GetIdentity(c), in)
	if err != nil {
		return respondError(c, h.log, string(authz.ActionCreateStock), err)
	}
	return ok(c, fiber.StatusCreated, "observación registrada", out)
}

// Overview godoc
// @Summary      Farmer: página de sus observaciones (10 por página). Admin: resumen agregado
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        page  query  int  false  "Página (desde 1)"
// @Success      200   {object}  dto.Envelope
// @Router       /stocks/overview [get]
func (h *StockHandler) Overview(c *fiber.Ctx) error {
	out, err := h.uc.Overview(c.UserContext(), GetIdentity(c), c.QueryInt("page", 1))
	if err != nil {
		return respondError(c, h.log, string(authz.ActionListStocks), err)
	}
	if out.Summary != nil {
		return ok(c, fiber.StatusOK, "resumen de observaciones", out.Summary)
	}
	return ok(c, fiber.StatusOK, "", out.Page)
}

// ListAll godoc
// @Summary      Todas las observaciones sin paginar (solo Admin)
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Envelope{data=[]dto.StockResponse}
// @Failure      403  {object}  dto.Envelope
// @Router       /stocks/stock-conditions/all [get]
func (h *StockHandler) ListAll(c *fiber.Ctx) error {
	out, err := h.uc.ListAll(c.UserContext(), GetIdentity(c))
	if err != nil {
		return respondError(c, h.log, string(authz.ActionListAllStocks), err)
	}
	return okList(c, "", out)
}

// Get godoc
// @Summary      Obtener observación (ajena o inexistente: 404)
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID"
// @Success      200  {object}  dto.Envelope{data=dto.StockResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /stocks/{id} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	return h.get(c, authz.DenyAsNotFound)
}

// Update godoc
// @Summary      Actualizar observación (campos opcionales; ajena o inexistente: 404)
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                     true  "ID"
// @Param        body  body  dto.UpdateStockRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.Envelope{data=dto.StockResponse}
// @Failure      404   {object}  dto.Envelope
// @Failure      422   {object}  dto.Envelope
// @Router       /stocks/{id} [put]
func (h *StockHandler) Update(c *fiber.Ctx) error {
	return h.update(c, stock.UpdateOptions{Policy: authz.DenyAsNotFound})
}

// Delete godoc
// @Summary      Eliminar observación (inexistente: 404; ajena: 403)
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID"
// @Success      200  {object}  dto.Envelope
// @Failure      403  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /stocks/{id} [delete]
func (h *StockHandler) Delete(c *fiber.Ctx) error {
	return h.delete(c, authz.DenyAsForbidden)
}

// CreateCondition godoc
// @Summary      Registrar observación (ruta heredada, humedad sin cota)
// @Tags         stock-conditions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockConditionRequest  true  "Observación"
// @Success      201   {object}  dto.Envelope{data=dto.StockResponse}
// @Failure      422   {object}  dto.Envelope
// @Router       /stock-conditions [post]
func (h *StockHandler) CreateCondition(c *fiber.Ctx) error {
	var in dto.CreateStockConditionRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, string(authz.ActionCreateStock), err)
	}
	out, err := h.uc.CreateLegacy(c.UserContext(), GetIdentity(c), in)
	if err != nil {
		return respondError(c, h.log, string(authz.ActionCreateStock), err)
	}
	return ok(c, fiber.StatusCreated, "observación registrada", out)
}

// GetCondition godoc
// @Summary      Obtener observación (ruta heredada; ajena: 403)
// @Tags         stock-conditions
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID"
// @Success      200  {object}  dto.Envelope{data=dto.StockResponse}
// @Failure      403  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /stock-conditions/{id} [get]
func (h *StockHandler) GetCondition(c *fiber.Ctx) error {
	return h.get(c, authz.DenyAsForbidden)
}

// UpdateCondition godoc
// @Summary      Actualizar observación (ruta heredada; ajena: 403)
// @Tags         stock-conditions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                     true  "ID"
// @Param        body  body  dto.UpdateStockRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.Envelope{data=dto.StockResponse}
// @Failure      403   {object}  dto.Envelope
// @Router       /stock-conditions/{id} [put]
func (h *StockHandler) UpdateCondition(c *fiber.Ctx) error {
	return h.update(c, stock.UpdateOptions{Policy: authz.DenyAsForbidden})
}

// DeleteCondition godoc
// @Summary      Eliminar observación (ruta heredada; ajena: 403)
// @Tags         stock-conditions
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID"
// @Success      200  {object}  dto.Envelope
// @Failure      403  {object}  dto.Envelope
// @Router       /stock-conditions/{id} [delete]
func (h *StockHandler) DeleteCondition(c *fiber.Ctx) error {
	return h.delete(c, authz.DenyAsForbidden)
}

func (h *StockHandler) get(c *fiber.Ctx, policy authz.DenyPolicy) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, string(authz.ActionReadStock), err)
	}
	out, err := h.uc.Get(c.UserContext(), GetIdentity(c), id, policy)
	if err != nil {
		return respondError(c, h.log, string(authz.ActionReadStock), err)
	}
	return ok(c, fiber.StatusOK, "", out)
}

func (h *StockHandler) update(c *fiber.Ctx, opts stock.UpdateOptions) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, string(authz.ActionUpdateStock), err)
	}
	var in dto.UpdateStockRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, string(authz.ActionUpdateStock), err)
	}
	out, err := h.uc.Update(c.UserContext(), GetIdentity(c), id, in, opts)
	if err != nil {
		return respondError(c, h.log, string(authz.ActionUpdateStock), err)
	}
	return ok(c, fiber.StatusOK, "observación actualizada", out)
}

func (h *StockHandler) delete(c *fiber.Ctx, policy authz.DenyPolicy) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, string(authz.ActionDeleteStock), err)
	}
	if err := h.uc.Delete(c.UserContext(), GetIdentity(c), id, policy); err != nil {
		return respondError(c, h.log, string(authz.ActionDeleteStock), err)
	}
	return ok(c, fiber.StatusOK, "observación eliminada", nil)
}

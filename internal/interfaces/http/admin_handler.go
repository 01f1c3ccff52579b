package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/beanstock-api/internal/application/admin"
	"github.com/jhoicas/beanstock-api/internal/application/dto"
	"github.com/jhoicas/beanstock-api/internal/application/stock"
	"github.com/jhoicas/beanstock-api/internal/domain/authz"
	"github.com/jhoicas/beanstock-api/pkg/logger"
)

// AdminHandler administración de usuarios, roles y reportes.
type AdminHandler struct {
	uc      *admin.AdminUseCase
	stocks  *stock.StockUseCase
	reports *stock.ReportUseCase
	log     *logger.Logger
}

// NewAdminHandler construye el handler.
func NewAdminHandler(uc *admin.AdminUseCase, stocks *stock.StockUseCase, reports *stock.ReportUseCase, log *logger.Logger) *AdminHandler {
	return &AdminHandler{uc: uc, stocks: stocks, reports: reports, log: log}
}

// ListFarmers godoc
// @Summary      Listar farmers
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Envelope{data=[]dto.UserResponse}
// @Failure      403  {object}  dto.Envelope
// @Router       /admin/users [get]
func (h *AdminHandler) ListFarmers(c *fiber.Ctx) error {
	out, err := h.uc.ListFarmers(c.UserContext(), GetIdentity(c))
	if err != nil {
		return respondError(c, h.log, string(authz.ActionListFarmers), err)
	}
	return okList(c, "", out)
}

// CreateFarmer godoc
// @Summary      Crear farmer
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "name, email, password"
// @Success      201   {object}  dto.Envelope{data=dto.UserResponse}
// @Failure      403   {object}  dto.Envelope
// @Failure      422   {object}  dto.Envelope
// @Router       /admin/create-farmer [post]
func (h *AdminHandler) CreateFarmer(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, string(authz.ActionCreateFarmer), err)
	}
	out, err := h.uc.CreateFarmer(c.UserContext(), GetIdentity(c), in)
	if err != nil {
		return respondError(c, h.log, string(authz.ActionCreateFarmer), err)
	}
	return ok(c, fiber.StatusCreated, "farmer creado", out)
}

// AssignRole godoc
// @Summary      Asignar rol (solo el administrador inicial)
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssignRoleRequest  true  "user_id, role_name"
// @Success      200   {object}  dto.Envelope{data=dto.AssignRoleResponse}
// @Failure      403   {object}  dto.Envelope
// @Failure      422   {object}  dto.Envelope
// @Router       /admin/assign-role [post]
func (h *AdminHandler) AssignRole(c *fiber.Ctx) error {
	var in dto.AssignRoleRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, string(authz.ActionAssignRole), err)
	}
	out, err := h.uc.AssignRole(c.UserContext(), GetIdentity(c), in)
	if err != nil {
		return respondError(c, h.log, string(authz.ActionAssignRole), err)
	}
	return ok(c, fiber.StatusOK, "rol asignado", out)
}

// GetUserRoles godoc
// @Summary      Roles de un usuario
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        userId  path  int  true  "ID del usuario"
// @Success      200     {object}  dto.Envelope{data=dto.UserRolesResponse}
// @Failure      404     {object}  dto.Envelope
// @Router       /admin/user-roles/{userId} [get]
func (h *AdminHandler) GetUserRoles(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, h.log, string(authz.ActionGetUserRoles), err)
	}
	out, err := h.uc.GetUserRoles(c.UserContext(), GetIdentity(c), userID)
	if err != nil {
		return respondError(c, h.log, string(authz.ActionGetUserRoles), err)
	}
	return ok(c, fiber.StatusOK, "", out)
}

// UpdateFarmer godoc
// @Summary      Actualizar cuenta (Admin o Farmer)
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                      true  "ID del usuario"
// @Param        body  body  dto.UpdateFarmerRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.Envelope{data=dto.UserResponse}
// @Failure      403   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      422   {object}  dto.Envelope
// @Router       /admin/update/{id} [put]
func (h *AdminHandler) UpdateFarmer(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, string(authz.ActionUpdateFarmer), err)
	}
	var in dto.UpdateFarmerRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, string(authz.ActionUpdateFarmer), err)
	}
	out, err := h.uc.UpdateFarmer(c.UserContext(), GetIdentity(c), userID, in)
	if err != nil {
		return respondError(c, h.log, string(authz.ActionUpdateFarmer), err)
	}
	return ok(c, fiber.StatusOK, "usuario actualizado", out)
}

// ListRoles godoc
// @Summary      Catálogo de roles
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Envelope{data=[]dto.RoleResponse}
// @Router       /admin/roles [get]
func (h *AdminHandler) ListRoles(c *fiber.Ctx) error {
	out, err := h.uc.ListRoles(c.UserContext(), GetIdentity(c))
	if err != nil {
		return respondError(c, h.log, string(authz.ActionListRoles), err)
	}
	return okList(c, "", out)
}

// DeleteUser godoc
// @Summary      Eliminar usuario (sus observaciones se borran en cascada)
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del usuario"
// @Success      200  {object}  dto.Envelope
// @Failure      403  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, string(authz.ActionDeleteUser), err)
	}
	if err := h.uc.DeleteUser(c.UserContext(), GetIdentity(c), userID); err != nil {
		return respondError(c, h.log, string(authz.ActionDeleteUser), err)
	}
	return ok(c, fiber.StatusOK, "usuario eliminado", nil)
}

// UserStocks godoc
// @Summary      Observaciones de un usuario
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        userId  path  int  true  "ID del usuario"
// @Success      200     {object}  dto.Envelope{data=[]dto.StockResponse}
// @Failure      404     {object}  dto.Envelope
// @Router       /admin/users/{userId}/stocks [get]
func (h *AdminHandler) UserStocks(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, h.log, string(authz.ActionListAllStocks), err)
	}
	out, err := h.stocks.ListByOwner(c.UserContext(), GetIdentity(c), userID)
	if err != nil {
		return respondError(c, h.log, string(authz.ActionListAllStocks), err)
	}
	return okList(c, "", out)
}

// StockReport godoc
// @Summary      Reporte PDF de observaciones
// @Tags         admin
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Failure      403  {object}  dto.Envelope
// @Router       /admin/reports/stock-conditions [get]
func (h *AdminHandler) StockReport(c *fiber.Ctx) error {
	pdf, filename, err := h.reports.StockConditionsPDF(c.UserContext(), GetIdentity(c))
	if err != nil {
		return respondError(c, h.log, "stock-report", err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Status(fiber.StatusOK).Send(pdf)
}

package stock_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/beanstock-api/internal/application/dto"
	"github.com/jhoicas/beanstock-api/internal/application/stock"
	"github.com/jhoicas/beanstock-api/internal/domain"
	"github.com/jhoicas/beanstock-api/internal/domain/authz"
	"github.com/jhoicas/beanstock-api/internal/domain/entity"
	"github.com/jhoicas/beanstock-api/internal/testutil"
	"github.com/jhoicas/beanstock-api/pkg/logger"
	"github.com/jhoicas/beanstock-api/pkg/validator"
)

type fixture struct {
	store   *testutil.Store
	uc      *stock.StockUseCase
	admin   *authz.Identity
	farmerA *authz.Identity
	farmerB *authz.Identity
}

func setup(t *testing.T) *fixture {
	t.Helper()
	s := testutil.NewStore()
	admin := testutil.SeedAdmin(t, s)
	a := testutil.SeedFarmer(t, s, "Farmer A", "a@example.com")
	b := testutil.SeedFarmer(t, s, "Farmer B", "b@example.com")
	uc := stock.NewStockUseCase(s.Stocks(), s.Users(), authz.NewGuard(admin.ID), validator.New(), logger.Nop())
	return &fixture{
		store:   s,
		uc:      uc,
		admin:   testutil.Identity(admin),
		farmerA: testutil.Identity(a),
		farmerB: testutil.Identity(b),
	}
}

func arabica() dto.CreateStockRequest {
	return dto.CreateStockRequest{
		BeanType:     "Arabica",
		Quantity:     testutil.Float64(100),
		Temperature:  testutil.Float64(22.5),
		Humidity:     testutil.Float64(55),
		Status:       entity.StockStatusGood,
		Location:     "Warehouse1",
		AirCondition: "Dry",
	}
}

func validationFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "se esperaba ValidationError, fue %v", err)
	return verr.Fields
}

func TestCreate_DuenoEsElCreador(t *testing.T) {
	f := setup(t)
	out, err := f.uc.Create(context.Background(), f.farmerA, arabica())
	require.NoError(t, err)
	assert.Equal(t, f.farmerA.UserID, out.UserID)
	require.NotNil(t, out.User)
	assert.Equal(t, "a@example.com", out.User.Email)
	assert.False(t, out.LastUpdated.IsZero())
}

func TestCreate_Validacion(t *testing.T) {
	f := setup(t)
	in := arabica()
	in.Humidity = testutil.Float64(120)
	in.Quantity = testutil.Float64(-1)
	in.Status = "Bad"
	in.BeanType = "<b></b>"

	_, err := f.uc.Create(context.Background(), f.farmerA, in)
	fields := validationFields(t, err)
	assert.Contains(t, fields, "humidity")
	assert.Contains(t, fields, "quantity")
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "bean_type")
}

func TestCreateLegacy_HumedadSinCota(t *testing.T) {
	f := setup(t)
	in := dto.CreateStockConditionRequest(arabica())
	in.Humidity = testutil.Float64(120)

	out, err := f.uc.CreateLegacy(context.Background(), f.farmerA, in)
	require.NoError(t, err)
	assert.Equal(t, 120.0, out.Humidity)

	in.ActionTaken = testutil.String(strings.Repeat("x", 1001))
	_, err = f.uc.CreateLegacy(context.Background(), f.farmerA, in)
	assert.Contains(t, validationFields(t, err), "action_taken")
}

func TestCreate_SinRolDenegado(t *testing.T) {
	f := setup(t)
	nobody := &authz.Identity{UserID: 99}
	_, err := f.uc.Create(context.Background(), nobody, arabica())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.Create(context.Background(), nil, arabica())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGet_PoliticaPorEndpoint(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	rec, err := f.uc.Create(ctx, f.farmerA, arabica())
	require.NoError(t, err)

	_, err = f.uc.Get(ctx, f.farmerB, rec.ID, authz.DenyAsNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.Get(ctx, f.farmerB, rec.ID, authz.DenyAsForbidden)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := f.uc.Get(ctx, f.admin, rec.ID, authz.DenyAsNotFound)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, f.farmerA.UserID, got.User.ID)

	_, err = f.uc.Get(ctx, f.admin, 9999, authz.DenyAsForbidden)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_DuenoInmutableEIdempotente(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	rec, err := f.uc.Create(ctx, f.farmerA, arabica())
	require.NoError(t, err)

	in := dto.UpdateStockRequest{Status: testutil.String(entity.StockStatusWarning), Humidity: testutil.Float64(140)}
	opts := stock.UpdateOptions{Policy: authz.DenyAsNotFound}

	first, err := f.uc.Update(ctx, f.admin, rec.ID, in, opts)
	require.NoError(t, err)
	second, err := f.uc.Update(ctx, f.admin, rec.ID, in, opts)
	require.NoError(t, err)

	assert.Equal(t, f.farmerA.UserID, second.UserID)
	assert.Equal(t, entity.StockStatusWarning, second.Status)
	assert.Equal(t, 140.0, second.Humidity)
	assert.Equal(t, first.BeanType, second.BeanType)
	assert.Equal(t, rec.Quantity, second.Quantity)

	_, err = f.uc.Update(ctx, f.farmerB, rec.ID, in, opts)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_ActionTakenNullLoBorra(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	in := arabica()
	in.ActionTaken = testutil.String("ventilar")
	rec, err := f.uc.Create(ctx, f.farmerA, in)
	require.NoError(t, err)
	opts := stock.UpdateOptions{Policy: authz.DenyAsNotFound}

	// ausente: se conserva
	out, err := f.uc.Update(ctx, f.farmerA, rec.ID, dto.UpdateStockRequest{Status: testutil.String("Warning")}, opts)
	require.NoError(t, err)
	require.NotNil(t, out.ActionTaken)
	assert.Equal(t, "ventilar", *out.ActionTaken)

	out, err = f.uc.Update(ctx, f.farmerA, rec.ID, dto.UpdateStockRequest{ClearActionTaken: true}, opts)
	require.NoError(t, err)
	assert.Nil(t, out.ActionTaken)

	got, err := f.uc.Get(ctx, f.farmerA, rec.ID, authz.DenyAsNotFound)
	require.NoError(t, err)
	assert.Nil(t, got.ActionTaken)
}

func TestUpdate_RefrescaLastUpdated(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	rec, err := f.uc.Create(ctx, f.farmerA, arabica())
	require.NoError(t, err)

	for _, policy := range []authz.DenyPolicy{authz.DenyAsNotFound, authz.DenyAsForbidden} {
		before := time.Now()
		out, err := f.uc.Update(ctx, f.farmerA, rec.ID, dto.UpdateStockRequest{}, stock.UpdateOptions{Policy: policy})
		require.NoError(t, err)
		assert.False(t, out.LastUpdated.Before(before.Add(-time.Second)), "last_updated debe ser el momento de la actualización")
		assert.False(t, out.LastUpdated.Before(rec.LastUpdated))
	}
}

func TestUpdate_ValidaSoloCamposEnviados(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	rec, err := f.uc.Create(ctx, f.farmerA, arabica())
	require.NoError(t, err)

	_, err = f.uc.Update(ctx, f.farmerA, rec.ID, dto.UpdateStockRequest{Status: testutil.String("Rotten")}, stock.UpdateOptions{})
	fields := validationFields(t, err)
	assert.Contains(t, fields, "status")
	assert.Len(t, fields, 1)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	rec, err := f.uc.Create(ctx, f.farmerA, arabica())
	require.NoError(t, err)

	assert.ErrorIs(t, f.uc.Delete(ctx, f.farmerB, rec.ID, authz.DenyAsForbidden), domain.ErrForbidden)
	require.NoError(t, f.uc.Delete(ctx, f.farmerA, rec.ID, authz.DenyAsForbidden))
	assert.ErrorIs(t, f.uc.Delete(ctx, f.farmerA, rec.ID, authz.DenyAsForbidden), domain.ErrNotFound)
}

func TestList_FarmerSoloVeLosPropios(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.uc.Create(ctx, f.farmerA, arabica())
		require.NoError(t, err)
	}
	_, err := f.uc.Create(ctx, f.farmerB, arabica())
	require.NoError(t, err)

	own, err := f.uc.List(ctx, f.farmerA)
	require.NoError(t, err)
	assert.Len(t, own, 3)
	for _, r := range own {
		assert.Equal(t, f.farmerA.UserID, r.UserID)
	}
	assert.Greater(t, own[0].ID, own[2].ID, "más recientes primero")

	all, err := f.uc.List(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	all, err = f.uc.ListAll(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = f.uc.ListAll(ctx, f.farmerA)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListByOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.uc.Create(ctx, f.farmerA, arabica())
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, f.farmerB, arabica())
	require.NoError(t, err)

	rows, err := f.uc.ListByOwner(ctx, f.admin, f.farmerB.UserID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.farmerB.UserID, rows[0].UserID)

	_, err = f.uc.ListByOwner(ctx, f.admin, 404)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestOverview_FarmerPaginado(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, err := f.uc.Create(ctx, f.farmerA, arabica())
		require.NoError(t, err)
	}

	ov, err := f.uc.Overview(ctx, f.farmerA, 2)
	require.NoError(t, err)
	require.NotNil(t, ov.Page)
	assert.Nil(t, ov.Summary)
	assert.Equal(t, 2, ov.Page.CurrentPage)
	assert.Equal(t, stock.PerPage, ov.Page.PerPage)
	assert.Equal(t, 12, ov.Page.Total)
	assert.Equal(t, 2, ov.Page.LastPage)
	assert.Len(t, ov.Page.Data, 2)

	ov, err = f.uc.Overview(ctx, f.farmerB, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, ov.Page.CurrentPage)
	assert.Equal(t, 1, ov.Page.LastPage)
	assert.Empty(t, ov.Page.Data)
}

func TestOverview_PaginaFueraDeRango(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.uc.Create(ctx, f.farmerA, arabica())
		require.NoError(t, err)
	}

	for _, page := range []int{2, 1000, math.MaxInt/10 + 2, math.MaxInt} {
		ov, err := f.uc.Overview(ctx, f.farmerA, page)
		require.NoError(t, err, "página %d", page)
		require.NotNil(t, ov.Page)
		assert.Equal(t, 3, ov.Page.Total)
		assert.Equal(t, 1, ov.Page.LastPage)
		assert.NotNil(t, ov.Page.Data)
		assert.Empty(t, ov.Page.Data)
		assert.Positive(t, ov.Page.CurrentPage)
	}
}

func TestOverview_AdminResumen(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ov, err := f.uc.Overview(ctx, f.admin, 1)
	require.NoError(t, err)
	require.NotNil(t, ov.Summary)
	assert.Equal(t, 0, ov.Summary.TotalUsers)
	assert.Nil(t, ov.Summary.LatestCondition)

	a := arabica()
	a.Temperature, a.Humidity = testutil.Float64(20), testutil.Float64(50)
	_, err = f.uc.Create(ctx, f.farmerA, a)
	require.NoError(t, err)
	a.Temperature, a.Humidity = testutil.Float64(21), testutil.Float64(51)
	_, err = f.uc.Create(ctx, f.farmerA, a)
	require.NoError(t, err)
	a.Temperature, a.Humidity = testutil.Float64(22.5), testutil.Float64(60)
	last, err := f.uc.Create(ctx, f.farmerB, a)
	require.NoError(t, err)

	ov, err = f.uc.Overview(ctx, f.admin, 1)
	require.NoError(t, err)
	assert.Nil(t, ov.Page)
	assert.Equal(t, 2, ov.Summary.TotalUsers)
	assert.Equal(t, 21.17, ov.Summary.AvgTemperature)
	assert.Equal(t, 53.67, ov.Summary.AvgHumidity)
	require.NotNil(t, ov.Summary.LatestCondition)
	assert.Equal(t, last.ID, ov.Summary.LatestCondition.ID)
}

package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/device-rental-api/internal/application/analytics"
	"github.com/jhoicas/device-rental-api/internal/application/auth"
	"github.com/jhoicas/device-rental-api/internal/application/dto"
	"github.com/jhoicas/device-rental-api/internal/application/ledger"
	"github.com/jhoicas/device-rental-api/internal/application/rental"
	"github.com/jhoicas/device-rental-api/internal/application/repair"
	"github.com/jhoicas/device-rental-api/internal/application/usecase"
	"github.com/jhoicas/device-rental-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/device-rental-api/internal/infrastructure/pdf"
	"github.com/jhoicas/device-rental-api/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/device-rental-api/internal/interfaces/http"
)

type apiFixture struct {
	app   *fiber.App
	admin string // header Authorization
}

// newAPI arma la API completa sobre almacenamiento en memoria con un admin inicial.
func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	backend := storage.NewMemory(memory.NewStore())
	ledgerUC := ledger.NewLedgerUseCase(backend.Tx, ledger.Config{TxTimeout: time.Second, MaxRetries: 2, RetryBackoff: time.Millisecond}, zerolog.Nop())
	authUC := auth.NewAuthUseCase(backend.Users, backend.Facilities, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		UserUC:      usecase.NewUserUseCase(backend.Users),
		FacilityUC:  usecase.NewFacilityUseCase(backend.Facilities),
		DeviceUC:    usecase.NewDeviceUseCase(backend.Facilities, ledgerUC),
		LedgerUC:    ledgerUC,
		RentalUC:    rental.NewRentalUseCase(ledgerUC, backend.Facilities, infrapdf.NewMarotoReceiptGenerator()),
		RepairUC:    repair.NewRepairUseCase(ledgerUC),
		DashboardUC: appanalytics.NewDashboardUseCase(backend.Dashboard, ledgerUC),
		JWTSecret:   testJWTSecret,
	})

	_, err := authUC.RegisterUser(context.Background(), dto.RegisterRequest{
		Email: "admin@rental.test", Password: "admin-pass-1", Role: "admin",
	})
	require.NoError(t, err)
	f := &apiFixture{app: app}
	f.admin = f.login(t, "admin@rental.test", "admin-pass-1")
	return f
}

func (f *apiFixture) login(t *testing.T, email, password string) string {
	t.Helper()
	var out dto.LoginResponse
	resp := f.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: password}, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, out.Token)
	return "Bearer " + out.Token
}

// call envía body como JSON y decodifica la respuesta en out si no es nil.
func (f *apiFixture) call(t *testing.T, method, path, authHeader string, body, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (f *apiFixture) errorCode(t *testing.T, method, path, authHeader string, body any) (int, string) {
	t.Helper()
	var out dto.ErrorResponse
	resp := f.call(t, method, path, authHeader, body, &out)
	return resp.StatusCode, out.Code
}

// setupStock crea una sede y un tipo con total inicial.
func (f *apiFixture) setupStock(t *testing.T, name string, total int) (facilityID, typeID string) {
	t.Helper()
	var fac dto.FacilityResponse
	resp := f.call(t, http.MethodPost, "/api/facilities", f.admin, dto.CreateFacilityRequest{Name: name}, &fac)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var dt dto.DeviceTypeResponse
	resp = f.call(t, http.MethodPost, "/api/facilities/"+fac.ID+"/device-types", f.admin,
		dto.CreateDeviceTypeRequest{Category: "AR_GLASSES", Name: "AR글라스"}, &dt)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.call(t, http.MethodPost, "/api/facilities/"+fac.ID+"/stock/"+dt.ID+"/adjust", f.admin,
		dto.AdjustStockRequest{NewTotal: total, Reason: "alta inicial"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return fac.ID, dt.ID
}

func TestAPI_LedgerOperations(t *testing.T) {
	f := newAPI(t)
	facilityID, typeID := f.setupStock(t, "Centro Norte", 5)
	base := "/api/facilities/" + facilityID + "/stock/" + typeID

	var s dto.StockResponse
	resp := f.call(t, http.MethodPost, base+"/rent", f.admin, dto.StockQuantityRequest{Quantity: 3}, &s)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, s.Available)
	assert.Equal(t, 3, s.Rented)

	status, code := f.errorCode(t, http.MethodPost, base+"/rent", f.admin, dto.StockQuantityRequest{Quantity: 3})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", code)

	status, code = f.errorCode(t, http.MethodPost, base+"/return", f.admin, dto.StockQuantityRequest{Quantity: 4})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "OVER_RETURN", code)

	status, code = f.errorCode(t, http.MethodPost, base+"/rent", f.admin, dto.StockQuantityRequest{Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_QUANTITY", code)

	status, code = f.errorCode(t, http.MethodPost, base+"/adjust", f.admin, dto.AdjustStockRequest{NewTotal: 2, Reason: "baja"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ADJUSTMENT", code)

	status, code = f.errorCode(t, http.MethodPost, base+"/adjust", f.admin, dto.AdjustStockRequest{NewTotal: 9, Reason: "  "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", code)

	resp = f.call(t, http.MethodPost, base+"/broken", f.admin, dto.ReportBrokenRequest{Quantity: 1, FromRented: true}, &s)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, dto.StockResponse{FacilityID: facilityID, DeviceTypeID: typeID, Total: 5, Available: 2, Rented: 2, Broken: 1, Version: s.Version, UpdatedAt: s.UpdatedAt}, s)

	resp = f.call(t, http.MethodPost, base+"/repair", f.admin, dto.StockQuantityRequest{Quantity: 1}, &s)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, s.Available)
	assert.Equal(t, 0, s.Broken)

	var movements dto.StockMovementListResponse
	resp = f.call(t, http.MethodGet, base+"/movements", f.admin, nil, &movements)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, movements.Items, 4) // adjust, rent, broken, repair
	assert.Equal(t, "REPAIR", movements.Items[0].Type)
}

func TestAPI_PorCantidadRechazadoConUnidades(t *testing.T) {
	f := newAPI(t)
	facilityID, typeID := f.setupStock(t, "Centro Este", 0)
	resp := f.call(t, http.MethodPost, "/api/facilities/"+facilityID+"/items", f.admin,
		dto.RegisterDeviceItemRequest{DeviceTypeID: typeID, Serial: "AR-001"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	base := "/api/facilities/" + facilityID + "/stock/" + typeID
	for _, op := range []string{"rent", "return", "repair"} {
		status, code := f.errorCode(t, http.MethodPost, base+"/"+op, f.admin, dto.StockQuantityRequest{Quantity: 1})
		assert.Equal(t, http.StatusBadRequest, status, op)
		assert.Equal(t, "VALIDATION", code, op)
	}
	status, code := f.errorCode(t, http.MethodPost, base+"/broken", f.admin, dto.ReportBrokenRequest{Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", code)

	var s dto.StockResponse
	f.call(t, http.MethodGet, base, f.admin, nil, &s)
	assert.Equal(t, 1, s.Total)
	assert.Equal(t, 1, s.Available)
}

func TestAPI_BodyInvalido(t *testing.T) {
	f := newAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/facilities", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", f.admin)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	status, code := f.errorCode(t, http.MethodPost, "/api/facilities", f.admin, dto.CreateFacilityRequest{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", code)
}

func TestAPI_RentalLifecycle(t *testing.T) {
	f := newAPI(t)
	facilityID, typeID := f.setupStock(t, "Centro Norte", 4)
	start := time.Now().UTC().Truncate(time.Second)

	var rent dto.RentalResponse
	resp := f.call(t, http.MethodPost, "/api/facilities/"+facilityID+"/rentals", f.admin, dto.CreateRentalRequest{
		BorrowerName: "Kim Min-ji",
		StartDate:    start,
		DueDate:      start.Add(72 * time.Hour),
		Lines:        []dto.RentalLineRequest{{DeviceTypeID: typeID, Quantity: 2}},
	}, &rent)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "active", rent.Status)

	req := httptest.NewRequest(http.MethodGet, "/api/facilities/"+facilityID+"/rentals/"+rent.ID+"/receipt", nil)
	req.Header.Set("Authorization", f.admin)
	pdfResp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, pdfResp.StatusCode)
	assert.Equal(t, "application/pdf", pdfResp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(pdfResp.Body)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	var dash dto.DashboardSummaryDTO
	resp = f.call(t, http.MethodGet, "/api/facilities/"+facilityID+"/dashboard", f.admin, nil, &dash)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, dash.Rented)
	assert.Equal(t, 1, dash.ActiveRentals)
	assert.Equal(t, "50", dash.UtilizationPct.String())

	resp = f.call(t, http.MethodPost, "/api/facilities/"+facilityID+"/rentals/"+rent.ID+"/return", f.admin, nil, &rent)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "returned", rent.Status)

	status, code := f.errorCode(t, http.MethodPost, "/api/facilities/"+facilityID+"/rentals/"+rent.ID+"/return", f.admin, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_RETURNED", code)

	var s dto.StockResponse
	f.call(t, http.MethodGet, "/api/facilities/"+facilityID+"/stock/"+typeID, f.admin, nil, &s)
	assert.Equal(t, 4, s.Available)
	assert.Equal(t, 0, s.Rented)
}

func TestAPI_ManagerLimitadoASuSede(t *testing.T) {
	f := newAPI(t)
	facilityID, typeID := f.setupStock(t, "Centro Norte", 2)
	otherID, _ := f.setupStock(t, "Centro Sur", 1)

	resp := f.call(t, http.MethodPost, "/api/auth/register", f.admin, dto.RegisterRequest{
		Email: "manager@rental.test", Password: "manager-pass", FacilityID: facilityID, Role: "facility_manager",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	manager := f.login(t, "manager@rental.test", "manager-pass")

	resp = f.call(t, http.MethodGet, "/api/facilities/"+facilityID+"/stock/"+typeID, manager, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.call(t, http.MethodGet, "/api/facilities/"+otherID+"/stock", manager, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Ajustes y alta de operadores son solo de admin.
	resp = f.call(t, http.MethodPost, "/api/facilities/"+facilityID+"/stock/"+typeID+"/adjust", manager,
		dto.AdjustStockRequest{NewTotal: 10, Reason: "x"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = f.call(t, http.MethodPost, "/api/auth/register", manager, dto.RegisterRequest{
		Email: "otro@rental.test", Password: "otro-pass-1", FacilityID: facilityID,
	}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var me dto.UserResponse
	resp = f.call(t, http.MethodGet, "/api/me", manager, nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, facilityID, me.FacilityID)
}

func TestAPI_LoginCredencialesInvalidas(t *testing.T) {
	f := newAPI(t)
	status, code := f.errorCode(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@rental.test", Password: "mala-clave"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", code)

	status, _ = f.errorCode(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "nadie@rental.test", Password: "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obralink/obralink-api/internal/application/auth"
	"github.com/obralink/obralink-api/internal/application/dto"
	"github.com/obralink/obralink-api/internal/application/inventory"
	"github.com/obralink/obralink-api/internal/application/reporting"
	"github.com/obralink/obralink-api/internal/application/usecase"
	"github.com/obralink/obralink-api/internal/domain/repository"
	"github.com/obralink/obralink-api/internal/infrastructure/invoice"
	"github.com/obralink/obralink-api/internal/infrastructure/memory"
	"github.com/obralink/obralink-api/internal/infrastructure/pdf"
	apphttp "github.com/obralink/obralink-api/internal/interfaces/http"
	"github.com/obralink/obralink-api/pkg/logger"
)

const testJWTSecret = "test-secret-key-for-unit-tests"

type testServer struct {
	app   *fiber.App
	store *memory.Store
	auth  *auth.AuthUseCase
}

func newTestServer(t *testing.T, requireAuth bool) *testServer {
	t.Helper()
	store := memory.New()
	log := logger.Nop()
	ledger := inventory.NewLedgerUseCase(store, store.Movements(), inventory.LedgerConfig{CentralSiteID: 1}, nil, log)
	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: "obralink-test"})

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:     usecase.NewProductUseCase(store.Products(), store, ledger),
		SiteUC:        usecase.NewSiteUseCase(store.Sites(), store.Reports(), store, ledger, 1, log),
		Ledger:        ledger,
		Reconciler:    inventory.NewReconcileUseCase(store, ledger, "", nil, log),
		InvoiceParser: invoice.NewParser(),
		ReportUC: reporting.NewReportUseCase(store.Reports(), store.Products(), store.Movements(), store.Sites(),
			pdf.NewMarotoReportGenerator("ObraLink"), 5),
		AuthUC:      authUC,
		Log:         log,
		ServiceName: "obralink-test",
		JWTSecret:   testJWTSecret,
		RequireAuth: requireAuth,
	})
	return &testServer{app: app, store: store, auth: authUC}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header ...string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		reader = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, out
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func (s *testServer) createProduct(t *testing.T, name string, cost, stock int64) dto.ProductResponse {
	t.Helper()
	resp, body := s.do(t, http.MethodPost, "/productos", map[string]any{
		"nombre": name, "precio_costo": cost, "stock_inicial": stock,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decode[dto.ProductResponse](t, body)
}

func (s *testServer) createSite(t *testing.T, name string) dto.SiteResponse {
	t.Helper()
	resp, body := s.do(t, http.MethodPost, "/obras", map[string]any{"nombre": name, "cliente": "Cliente", "presupuesto": 100000})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decode[dto.SiteResponse](t, body)
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t, false)
	resp, body := s.do(t, http.MethodGet, "/health", nil, "X-Request-Id", "req-123")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-Id"))
	assert.Contains(t, string(body), `"ok"`)

	resp, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestProducts_CreateListAndDuplicateSKU(t *testing.T) {
	s := newTestServer(t, false)
	p := s.createProduct(t, "Taladro", 1500, 25)
	assert.EqualValues(t, 25, p.StockActual)

	resp, body := s.do(t, http.MethodGet, "/productos?busqueda=tala", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]dto.ProductResponse](t, body)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)

	resp, body = s.do(t, http.MethodPost, "/productos", map[string]any{"nombre": "Otro", "sku": p.SKU})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_SKU", decode[dto.ErrorResponse](t, body).Code)

	resp, body = s.do(t, http.MethodPost, "/productos", map[string]any{"precio_costo": 10})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[dto.ErrorResponse](t, body).Message, "nombre")
}

func TestProducts_CreateAcceptsStockActualAlias(t *testing.T) {
	s := newTestServer(t, false)
	resp, body := s.do(t, http.MethodPost, "/productos", map[string]any{"nombre": "Broca", "stock_actual": 7})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 7, decode[dto.ProductResponse](t, body).StockActual)
}

func TestProducts_UpdateRejectsStockField(t *testing.T) {
	s := newTestServer(t, false)
	p := s.createProduct(t, "Taladro", 1500, 25)

	resp, body := s.do(t, http.MethodPut, "/productos/"+itoa(p.ID), map[string]any{"stock_actual": 999, "nombre": "Taladro X"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, body).Code)

	resp, body = s.do(t, http.MethodGet, "/productos/"+itoa(p.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.ProductResponse](t, body)
	assert.EqualValues(t, 25, got.StockActual)
	assert.Equal(t, "Taladro", got.Nombre)

	resp, body = s.do(t, http.MethodPut, "/productos/"+itoa(p.ID), map[string]any{"precio_costo": 1700, "proveedor": "Sodimac"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decode[dto.ProductResponse](t, body)
	assert.EqualValues(t, 1700, got.PrecioCosto)
	assert.EqualValues(t, 25, got.StockActual)
}

func TestProducts_NotFoundAndBadID(t *testing.T) {
	s := newTestServer(t, false)
	resp, _ := s.do(t, http.MethodGet, "/productos/404", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/productos/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/productos/404", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMovements_RecordListAndReverse(t *testing.T) {
	s := newTestServer(t, false)
	p := s.createProduct(t, "Taladro", 1500, 25)
	site := s.createSite(t, "Edificio Norte")

	resp, body := s.do(t, http.MethodPost, "/movimientos", map[string]any{
		"id_producto": p.ID, "tipo": "SALIDA", "cantidad": 5, "id_obra": site.ID, "recibido_por": "Pedro",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	mov := decode[dto.MovementResponse](t, body)
	assert.Equal(t, "SALIDA", mov.Tipo)

	resp, body = s.do(t, http.MethodGet, "/movimientos?tipo=salida&id_obra="+itoa(site.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]dto.MovementResponse](t, body)
	require.Len(t, list, 1)
	assert.Equal(t, "Taladro", list[0].Producto)
	require.NotNil(t, list[0].Obra)
	assert.Equal(t, "Edificio Norte", *list[0].Obra)

	resp, body = s.do(t, http.MethodGet, "/obras/"+itoa(site.ID)+"/recibido", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 5, decode[dto.SiteReceivedResponse](t, body).TotalRecibido)

	resp, _ = s.do(t, http.MethodDelete, "/movimientos/"+itoa(mov.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, "/productos/"+itoa(p.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 25, decode[dto.ProductResponse](t, body).StockActual)

	resp, body = s.do(t, http.MethodDelete, "/movimientos/"+itoa(mov.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, body).Code)
}

func TestMovements_Validation(t *testing.T) {
	s := newTestServer(t, false)
	p := s.createProduct(t, "Taladro", 1500, 0)

	cases := map[string]map[string]any{
		"cantidad cero":    {"id_producto": p.ID, "tipo": "ENTRADA", "cantidad": 0},
		"tipo inválido":    {"id_producto": p.ID, "tipo": "AJUSTE", "cantidad": 1},
		"salida sin obra":  {"id_producto": p.ID, "tipo": "SALIDA", "cantidad": 1},
		"salida a bodega":  {"id_producto": p.ID, "tipo": "SALIDA", "cantidad": 1, "id_obra": 1},
		"fecha inválida":   {"id_producto": p.ID, "tipo": "ENTRADA", "cantidad": 1, "fecha": "ayer"},
		"entrada con obra": {"id_producto": p.ID, "tipo": "ENTRADA", "cantidad": 1, "id_obra": 1},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, _ := s.do(t, http.MethodPost, "/movimientos", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	resp, _ := s.do(t, http.MethodPost, "/movimientos", map[string]any{"id_producto": 999, "tipo": "ENTRADA", "cantidad": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/movimientos?tipo=AJUSTE", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMovements_InternalErrorIsGeneric(t *testing.T) {
	s := newTestServer(t, false)
	p := s.createProduct(t, "Taladro", 1500, 0)

	s.store.FailOn(memory.OpTxCommit, 0, errors.New("disk on fire"))
	resp, body := s.do(t, http.MethodPost, "/movimientos", map[string]any{"id_producto": p.ID, "tipo": "ENTRADA", "cantidad": 3})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	e := decode[dto.ErrorResponse](t, body)
	assert.Equal(t, "INTERNAL", e.Code)
	assert.NotContains(t, e.Message, "disk on fire")

	resp, body = s.do(t, http.MethodGet, "/productos/"+itoa(p.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, decode[dto.ProductResponse](t, body).StockActual)
}

func TestSites_DeleteCentralIsForbidden(t *testing.T) {
	s := newTestServer(t, false)
	resp, body := s.do(t, http.MethodDelete, "/obras/1", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "PROTECTED_RESOURCE", decode[dto.ErrorResponse](t, body).Code)

	resp, body = s.do(t, http.MethodGet, "/obras", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.SiteResponse](t, body), 1)
}

func TestSites_DeleteRestoresStock(t *testing.T) {
	s := newTestServer(t, false)
	p := s.createProduct(t, "Cemento", 5000, 40)
	site := s.createSite(t, "Casa Sur")
	for _, qty := range []int{10, 5} {
		resp, _ := s.do(t, http.MethodPost, "/movimientos", map[string]any{
			"id_producto": p.ID, "tipo": "SALIDA", "cantidad": qty, "id_obra": site.ID,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := s.do(t, http.MethodDelete, "/obras/"+itoa(site.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, 2, decode[dto.SiteDeletedResponse](t, body).MovimientosRevertidos)

	resp, body = s.do(t, http.MethodGet, "/productos/"+itoa(p.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 40, decode[dto.ProductResponse](t, body).StockActual)
}

func TestIngressAndBulkImport(t *testing.T) {
	s := newTestServer(t, false)
	p := s.createProduct(t, "Taladro", 1000, 20)

	resp, body := s.do(t, http.MethodPost, "/registrar-ingreso-completo", map[string]any{
		"es_nuevo": true, "nombre": "Pintura", "cantidad": 4, "precio_costo": 8990, "proveedor": "Sherwin",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	ing := decode[dto.IngressResponse](t, body)
	assert.True(t, ing.Creado)
	assert.EqualValues(t, 4, ing.Producto.StockActual)

	resp, _ = s.do(t, http.MethodPost, "/registrar-ingreso-completo", map[string]any{"es_nuevo": false, "cantidad": 4})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = s.do(t, http.MethodPost, "/ingreso-masivo", []map[string]any{
		{"nombre": "taladro", "cantidad": 10, "precio_costo": 1200},
		{"nombre": "NuevoItem", "cantidad": 3, "precio_costo": 500},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	imp := decode[dto.ImportResponse](t, body)
	assert.Equal(t, 1, imp.Coincidencias)
	assert.Equal(t, 1, imp.Creados)
	assert.NotEmpty(t, imp.IDLote)

	resp, body = s.do(t, http.MethodGet, "/productos/"+itoa(p.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.ProductResponse](t, body)
	assert.EqualValues(t, 30, got.StockActual)
	assert.EqualValues(t, 1200, got.PrecioCosto)

	resp, body = s.do(t, http.MethodPost, "/ingreso-masivo", map[string]any{"items": []map[string]any{
		{"nombre": "Ok", "cantidad": 1, "precio_costo": 1},
		{"nombre": "Roto", "cantidad": 0, "precio_costo": 1},
	}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[dto.ErrorResponse](t, body).Message, "línea 2")

	resp, _ = s.do(t, http.MethodPost, "/ingreso-masivo", "[]")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadInvoice(t *testing.T) {
	s := newTestServer(t, false)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("factura", "factura.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("10 x Taladro percutor [TAL-1234] $1.200\nbasura\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/subir-factura", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.InvoiceParseResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "factura.txt", out.Archivo)
	require.Len(t, out.Items, 1)
	assert.Equal(t, dto.ImportLineRequest{Nombre: "Taladro percutor", SKU: "TAL-1234", Cantidad: 10, PrecioCosto: 1200}, out.Items[0])

	all, err := s.store.Products().List(context.Background(), repository.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	resp2, _ := s.do(t, http.MethodPost, "/subir-factura", nil)
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestReports(t *testing.T) {
	s := newTestServer(t, false)
	s.createProduct(t, "Taladro", 1500, 25)
	s.createProduct(t, "Broca", 300, 2)

	resp, body := s.do(t, http.MethodGet, "/reportes/resumen", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary map[string]any
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, "38100", summary["valorizacion"])
	assert.EqualValues(t, 1, summary["criticos"])
	assert.EqualValues(t, 5, summary["umbral"])
	assert.EqualValues(t, 27, summary["entradas"])

	resp, body = s.do(t, http.MethodGet, "/reportes/resumen?umbral=30", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.EqualValues(t, 2, summary["criticos"])

	resp, body = s.do(t, http.MethodGet, "/reportes/resumen?umbral=0", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.EqualValues(t, 0, summary["criticos"])
	assert.EqualValues(t, 0, summary["umbral"])

	resp, body = s.do(t, http.MethodGet, "/reportes/criticos?umbral=0", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]dto.CriticalProductResponse](t, body))

	resp, _ = s.do(t, http.MethodGet, "/reportes/resumen?umbral=-1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, "/reporte-pdf?categoria=General", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "inventario_")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, _ = s.do(t, http.MethodGet, "/reporte-historial-pdf?id_obra=77", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/reporte-historial-pdf?desde=2025-02-01&hasta=2025-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, false)
	require.NoError(t, s.auth.EnsureAdmin(context.Background(), "admin@obralink.cl", "secreto", "Admin"))

	resp, body := s.do(t, http.MethodPost, "/login", map[string]any{"email": "ADMIN@obralink.cl", "password": "secreto"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	out := decode[dto.LoginResponse](t, body)
	assert.True(t, out.Success)
	assert.True(t, out.EsAdmin)
	assert.NotEmpty(t, out.Token)

	resp, body = s.do(t, http.MethodPost, "/login", map[string]any{"email": "admin@obralink.cl", "password": "mala"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	out = decode[dto.LoginResponse](t, body)
	assert.False(t, out.Success)
	assert.Equal(t, "Credenciales incorrectas", out.Mensaje)
}

func TestRequireAuth_ProtectsWrites(t *testing.T) {
	s := newTestServer(t, true)
	require.NoError(t, s.auth.EnsureAdmin(context.Background(), "admin@obralink.cl", "secreto", "Admin"))

	resp, _ := s.do(t, http.MethodGet, "/productos", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/productos", map[string]any{"nombre": "Taladro"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", decode[dto.ErrorResponse](t, body).Code)

	resp, _ = s.do(t, http.MethodPost, "/productos", map[string]any{"nombre": "Taladro"}, "Authorization", "Bearer token.invalido.aqui")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, body = s.do(t, http.MethodPost, "/login", map[string]any{"email": "admin@obralink.cl", "password": "secreto"})
	token := decode[dto.LoginResponse](t, body).Token
	resp, body = s.do(t, http.MethodPost, "/productos", map[string]any{"nombre": "Taladro"}, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
}

func TestClientFormPayloads_AcceptNumericStrings(t *testing.T) {
	s := newTestServer(t, false)

	resp, body := s.do(t, http.MethodPost, "/productos",
		`{"nombre":"Taladro","sku":"TAL-1234","precio_costo":"1500","categoria":"Herramientas","precio_venta":0,"stock_actual":0}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	p := decode[dto.ProductResponse](t, body)
	assert.EqualValues(t, 1500, p.PrecioCosto)

	resp, body = s.do(t, http.MethodPost, "/obras", `{"nombre":"Edificio","cliente":"X","presupuesto":"500000"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	site := decode[dto.SiteResponse](t, body)
	assert.EqualValues(t, 500000, site.Presupuesto)

	resp, body = s.do(t, http.MethodPost, "/movimientos",
		`{"id_producto":"`+itoa(p.ID)+`","tipo":"ENTRADA","cantidad":"5","id_obra":null}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Nil(t, decode[dto.MovementResponse](t, body).IDObra)

	resp, body = s.do(t, http.MethodPost, "/movimientos",
		`{"id_producto":"`+itoa(p.ID)+`","tipo":"ENTRADA","cantidad":"1","id_obra":""}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = s.do(t, http.MethodPost, "/movimientos",
		`{"id_producto":"`+itoa(p.ID)+`","tipo":"SALIDA","cantidad":"2","id_obra":"`+itoa(site.ID)+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	mov := decode[dto.MovementResponse](t, body)
	require.NotNil(t, mov.IDObra)
	assert.Equal(t, site.ID, *mov.IDObra)
	assert.EqualValues(t, 2, mov.Cantidad)

	resp, body = s.do(t, http.MethodPut, "/productos/"+itoa(p.ID),
		`{"nombre":"Taladro","sku":"TAL-1234","precio_costo":"1700","categoria":"Herramientas"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	updated := decode[dto.ProductResponse](t, body)
	assert.EqualValues(t, 1700, updated.PrecioCosto)
	assert.EqualValues(t, 4, updated.StockActual)
}

func TestClientFormPayloads_RejectNonNumericStrings(t *testing.T) {
	s := newTestServer(t, false)
	p := s.createProduct(t, "Taladro", 1500, 10)

	for _, raw := range []string{
		`{"id_producto":"` + itoa(p.ID) + `","tipo":"SALIDA","cantidad":"abc"}`,
		`{"id_producto":"x","tipo":"ENTRADA","cantidad":"1"}`,
		`{"id_producto":"` + itoa(p.ID) + `","tipo":"ENTRADA","cantidad":"1.5"}`,
	} {
		resp, body := s.do(t, http.MethodPost, "/movimientos", raw)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, raw)
		assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, body).Code, raw)
	}

	resp, body := s.do(t, http.MethodGet, "/productos/"+itoa(p.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 10, decode[dto.ProductResponse](t, body).StockActual)
}

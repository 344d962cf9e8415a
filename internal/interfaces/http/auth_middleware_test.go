package http_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elhamd/elhamd-api/internal/domain"
	apphttp "github.com/elhamd/elhamd-api/internal/interfaces/http"
	pkgjwt "github.com/elhamd/elhamd-api/pkg/jwt"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testBranchID  = "branch-cairo"
	testIssuer    = "elhamd-test"
	testExpMin    = 60
)

// protectedApp GET /protected detrás de AuthMiddleware + RequireRole(allowed...).
func protectedApp(allowed ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowed...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "role": apphttp.GetRole(c)})
		},
	)
	return app
}

// branchApp GET /scoped?branch_id=... devuelve la sucursal efectiva del reporte.
func branchApp() *fiber.App {
	app := fiber.New()
	app.Get("/scoped", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		branch, err := apphttp.ScopeBranch(c, c.Query("branch_id"))
		if errors.Is(err, domain.ErrForbidden) {
			return c.SendStatus(fiber.StatusForbidden)
		}
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"branch_id": branch})
	})
	return app
}

func bearer(t *testing.T, branchID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, branchID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func get(t *testing.T, app *fiber.App, target, auth string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ── RequireRole ───────────────────────────────────────────────────────────────

// Grupos de roles de las rutas: lectura (todos), caja (pagos, finanzas) y baja (admin).
func TestRequireRole_GruposDeRutas(t *testing.T) {
	anyRole := []string{pkgjwt.RoleAdmin, pkgjwt.RoleAccountant, pkgjwt.RoleSales}
	cashier := []string{pkgjwt.RoleAdmin, pkgjwt.RoleAccountant}
	adminOnly := []string{pkgjwt.RoleAdmin}

	cases := []struct {
		name    string
		allowed []string
		role    string
		want    int
	}{
		{"ventas lee facturas", anyRole, pkgjwt.RoleSales, http.StatusOK},
		{"contador cobra", cashier, pkgjwt.RoleAccountant, http.StatusOK},
		{"admin cobra", cashier, pkgjwt.RoleAdmin, http.StatusOK},
		{"ventas no cobra", cashier, pkgjwt.RoleSales, http.StatusForbidden},
		{"contador no elimina", adminOnly, pkgjwt.RoleAccountant, http.StatusForbidden},
		{"admin elimina", adminOnly, pkgjwt.RoleAdmin, http.StatusOK},
		{"rol desconocido", anyRole, "auditor", http.StatusForbidden},
		{"sin rol", anyRole, "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := get(t, protectedApp(tc.allowed...), "/protected", bearer(t, testBranchID, tc.role))
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestRequireRole_CodigosDeError(t *testing.T) {
	app := protectedApp(pkgjwt.RoleAdmin)

	cases := []struct {
		name string
		auth string
		want int
		code string
	}{
		{"sin header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"token malformado", "Bearer token.invalido.aqui", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token sin rol", bearer(t, testBranchID, ""), http.StatusUnauthorized, "MISSING_ROLE"},
		{"rol no permitido", bearer(t, testBranchID, pkgjwt.RoleSales), http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := get(t, app, "/protected", tc.auth)
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), tc.code)
		})
	}
}

// ── Alcance por sucursal ──────────────────────────────────────────────────────

func TestScopeBranch(t *testing.T) {
	cases := []struct {
		name      string
		branch    string
		role      string
		requested string
		want      int
		wantScope string
	}{
		{"contador sin filtro ve su sucursal", testBranchID, pkgjwt.RoleAccountant, "", http.StatusOK, testBranchID},
		{"contador pide su sucursal", testBranchID, pkgjwt.RoleAccountant, testBranchID, http.StatusOK, testBranchID},
		{"contador pide otra sucursal", testBranchID, pkgjwt.RoleAccountant, "branch-alex", http.StatusForbidden, ""},
		{"ventas pide otra sucursal", testBranchID, pkgjwt.RoleSales, "branch-alex", http.StatusForbidden, ""},
		{"admin con sucursal pide otra", testBranchID, pkgjwt.RoleAdmin, "branch-alex", http.StatusOK, "branch-alex"},
		{"admin sin filtro ve todo", testBranchID, pkgjwt.RoleAdmin, "", http.StatusOK, ""},
		{"contador sin sucursal elige", "", pkgjwt.RoleAccountant, "branch-alex", http.StatusOK, "branch-alex"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := "/scoped"
			if tc.requested != "" {
				target += "?branch_id=" + tc.requested
			}
			resp := get(t, branchApp(), target, bearer(t, tc.branch, tc.role))
			defer resp.Body.Close()

			require.Equal(t, tc.want, resp.StatusCode)
			if tc.want != http.StatusOK {
				return
			}
			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.wantScope, body["branch_id"])
		})
	}
}

// ── AuthMiddleware ────────────────────────────────────────────────────────────

func TestAuthMiddleware_CargaClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   apphttp.GetUserID(c),
			"branch_id": apphttp.GetBranchID(c),
			"role":      apphttp.GetRole(c),
		})
	})

	resp := get(t, app, "/me", bearer(t, testBranchID, pkgjwt.RoleSales))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testBranchID, body["branch_id"])
	assert.Equal(t, pkgjwt.RoleSales, body["role"])
}

// ── pkg/jwt ───────────────────────────────────────────────────────────────────

func TestJWT_GenerateYParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testBranchID, pkgjwt.RoleAccountant, testIssuer, testExpMin)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.UserID)
	assert.Equal(t, testBranchID, claims.BranchID)
	assert.Equal(t, pkgjwt.RoleAccountant, claims.Role)
	assert.Equal(t, testIssuer, claims.Issuer)

	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, testBranchID, pkgjwt.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)
	_, err = pkgjwt.Parse(testJWTSecret, expired)
	assert.Error(t, err, "token expirado")

	_, err = pkgjwt.Parse("otro-secret", tok)
	assert.Error(t, err, "secret incorrecto")
}

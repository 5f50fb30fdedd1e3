package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"obrafin/internal/database"
	"obrafin/internal/google"
	"obrafin/internal/middleware"
	"obrafin/internal/model"
	"obrafin/internal/repository"
	"obrafin/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type envelope struct {
	Status     string            `json:"status"`
	StatusCode int               `json:"status_code"`
	Data       json.RawMessage   `json:"data"`
	Error      string            `json:"error"`
	Code       string            `json:"code"`
	Details    map[string]string `json:"details"`
}

type fakeGoogle struct {
	google.Unconfigured
	folders []google.File
}

func (f fakeGoogle) ListFolders(context.Context) ([]google.File, error) {
	return f.folders, nil
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	tokens *token.Service
	users  repository.UserRepository
}

func setupTestRouter(t *testing.T, client google.Client) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory("server_test_" + t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	tokens := token.New("test-secret", time.Hour)
	r := gin.New()
	r.Use(middleware.ErrorLogger())
	Register(r, db, Options{Tokens: tokens, Google: client})

	return &testServer{router: r, db: db, tokens: tokens, users: repository.NewUserRepository(db)}
}

// seedUser stores an account with password "segredo123" and returns its bearer token.
func (s *testServer) seedUser(t *testing.T, email, role string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		Nome:     "Usuário " + role,
		Email:    email,
		Password: string(hash),
		Role:     role,
		Approved: role != model.RolePending,
	}
	require.NoError(t, s.users.Create(context.Background(), u))
	tok, err := s.tokens.GenerateToken(u.ID, u.Role)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, tok string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func material(nota string) gin.H {
	return gin.H{
		"numeroNota":     nota,
		"data":           "2024-05-10",
		"localCompra":    "Depósito Central",
		"valor":          "1250.50",
		"solicitante":    "Carlos",
		"formaPagamento": "avista",
	}
}

func TestHealth(t *testing.T) {
	s := setupTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestLoginSetsCookie(t *testing.T) {
	s := setupTestRouter(t, nil)
	s.seedUser(t, "ana@obra.com", model.RoleUser)

	w, env := s.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "ana@obra.com", "password": "segredo123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}](t, env.Data)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "ana@obra.com", login.User.Email)

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.AccessCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessCookie, Value: session.Value})
	me := httptest.NewRecorder()
	s.router.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code, me.Body.String())

	w, env = s.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "ana@obra.com", "password": "errada"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIAL", env.Code)
}

func TestAuthGuards(t *testing.T) {
	s := setupTestRouter(t, nil)
	pending := s.seedUser(t, "espera@obra.com", model.RolePending)
	member := s.seedUser(t, "membro@obra.com", model.RoleUser)

	w, env := s.do(t, http.MethodGet, "/api/materiais", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", env.Code)

	w, env = s.do(t, http.MethodGet, "/api/materiais", "nao-e-um-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIAL", env.Code)

	w, env = s.do(t, http.MethodGet, "/api/materiais", pending, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Code)

	w, _ = s.do(t, http.MethodGet, "/api/users", member, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/materiais", member, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMaterialCRUD(t *testing.T) {
	s := setupTestRouter(t, nil)
	admin := s.seedUser(t, "admin@obra.com", model.RoleAdmin)

	w, env := s.do(t, http.MethodPost, "/api/materiais", admin, material("NF-100"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, http.StatusCreated, env.StatusCode)
	created := decode[struct {
		ID         string `json:"_id"`
		NumeroNota string `json:"numeroNota"`
	}](t, env.Data)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "NF-100", created.NumeroNota)

	path := "/api/materiais/" + created.ID
	w, env = s.do(t, http.MethodPut, path, admin, gin.H{"numeroNota": "NF-101"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[struct {
		ID         string `json:"_id"`
		NumeroNota string `json:"numeroNota"`
	}](t, env.Data)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "NF-101", updated.NumeroNota)

	w, _ = s.do(t, http.MethodGet, path, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodDelete, path, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Registro excluído com sucesso"}`, string(env.Data))

	w, env = s.do(t, http.MethodGet, path, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)

	w, env = s.do(t, http.MethodGet, "/api/materiais/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Details, "id")
}

func TestValidationDetails(t *testing.T) {
	s := setupTestRouter(t, nil)
	admin := s.seedUser(t, "admin@obra.com", model.RoleAdmin)

	body := material("NF-1")
	delete(body, "localCompra")
	body["formaPagamento"] = "escambo"
	body["data"] = "10/05/2024"

	w, env := s.do(t, http.MethodPost, "/api/materiais", admin, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)
	assert.Equal(t, "is required", env.Details["localCompra"])
	assert.Contains(t, env.Details["formaPagamento"], "must be one of")
	assert.Contains(t, env.Details, "data")

	w, env = s.do(t, http.MethodGet, "/api/materiais?obraId=nao-uuid", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be a valid id", env.Details["obraId"])
}

func TestListPagination(t *testing.T) {
	s := setupTestRouter(t, nil)
	admin := s.seedUser(t, "admin@obra.com", model.RoleAdmin)

	for i := 0; i < 25; i++ {
		w, _ := s.do(t, http.MethodPost, "/api/materiais", admin, material(fmt.Sprintf("NF-%02d", i)))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, env := s.do(t, http.MethodGet, "/api/materiais?page=3&limit=10", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		Records    []json.RawMessage `json:"records"`
		Pagination struct {
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
			Total int64 `json:"total"`
			Pages int64 `json:"pages"`
		} `json:"pagination"`
	}](t, env.Data)
	assert.Len(t, page.Records, 5)
	assert.Equal(t, 3, page.Pagination.Page)
	assert.Equal(t, 10, page.Pagination.Limit)
	assert.Equal(t, int64(25), page.Pagination.Total)
	assert.Equal(t, int64(3), page.Pagination.Pages)

	w, env = s.do(t, http.MethodGet, "/api/materiais?numeroNota=NF-1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	filtered := decode[struct {
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}](t, env.Data)
	assert.Equal(t, int64(10), filtered.Pagination.Total)
}

func TestUserAdministration(t *testing.T) {
	s := setupTestRouter(t, nil)
	admin := s.seedUser(t, "admin@obra.com", model.RoleAdmin)

	w, env := s.do(t, http.MethodPost, "/api/users", "", gin.H{
		"nome": "Nova Pessoa", "email": "nova@obra.com", "password": "segredo123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	registered := decode[struct {
		ID       string `json:"_id"`
		Role     string `json:"role"`
		Approved bool   `json:"approved"`
	}](t, env.Data)
	assert.Equal(t, model.RolePending, registered.Role)
	assert.False(t, registered.Approved)

	w, env = s.do(t, http.MethodGet, "/api/users/pending", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	pending := decode[struct {
		Records []struct {
			ID string `json:"_id"`
		} `json:"records"`
	}](t, env.Data)
	require.Len(t, pending.Records, 1)
	assert.Equal(t, registered.ID, pending.Records[0].ID)

	w, _ = s.do(t, http.MethodPut, "/api/users/"+registered.ID, admin, gin.H{"approved": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = s.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "nova@obra.com", "password": "segredo123"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestLedgerWeeklyPaymentOverHTTP(t *testing.T) {
	s := setupTestRouter(t, nil)
	member := s.seedUser(t, "membro@obra.com", model.RoleUser)

	w, env := s.do(t, http.MethodPost, "/api/pagamentos", member, gin.H{
		"obra": gin.H{
			"nome":             "Residencial Aurora",
			"dataInicio":       "2024-01-01",
			"dataFinalEntrega": "2024-12-31",
			"orcamento":        "50000",
		},
		"pagamentosSemanais": []gin.H{
			{"nome": "João", "semana": 12, "ano": 2024, "valorPagar": "900", "valorVA": "100"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	type weekly struct {
		ID                    string  `json:"_id"`
		Status                string  `json:"status"`
		DataPagamentoEfetuado *string `json:"dataPagamentoEfetuado"`
	}
	ledger := decode[struct {
		ID                 string   `json:"_id"`
		PagamentosSemanais []weekly `json:"pagamentosSemanais"`
	}](t, env.Data)
	require.Len(t, ledger.PagamentosSemanais, 1)
	assert.Equal(t, model.WeeklyToPay, ledger.PagamentosSemanais[0].Status)

	path := fmt.Sprintf("/api/pagamentos/%s/pagamentos-semanais/%s/efetuado", ledger.ID, ledger.PagamentosSemanais[0].ID)
	w, env = s.do(t, http.MethodPatch, path, member, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := decode[struct {
		PagamentosSemanais []weekly `json:"pagamentosSemanais"`
	}](t, env.Data)
	require.Len(t, paid.PagamentosSemanais, 1)
	assert.Equal(t, model.WeeklyPaid, paid.PagamentosSemanais[0].Status)
	assert.NotNil(t, paid.PagamentosSemanais[0].DataPagamentoEfetuado)

	w, env = s.do(t, http.MethodPatch, fmt.Sprintf("/api/pagamentos/%s/pagamentos-semanais/%s/efetuado", ledger.ID, ledger.ID), member, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ELEMENT_NOT_FOUND", env.Code)

	w, env = s.do(t, http.MethodGet, "/api/pagamentos/semanais/pendentes", member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestGoogleRoutes(t *testing.T) {
	t.Run("configured client", func(t *testing.T) {
		s := setupTestRouter(t, fakeGoogle{folders: []google.File{{ID: "f1", Name: "Obras"}}})
		member := s.seedUser(t, "membro@obra.com", model.RoleUser)

		w, env := s.do(t, http.MethodGet, "/api/google/drive/folders", member, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `[{"id":"f1","name":"Obras"}]`, string(env.Data))
	})

	t.Run("unconfigured client", func(t *testing.T) {
		s := setupTestRouter(t, nil)
		member := s.seedUser(t, "membro@obra.com", model.RoleUser)

		w, env := s.do(t, http.MethodGet, "/api/google/drive/folders", member, nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "INTEGRATION_FAILURE", env.Code)
	})
}

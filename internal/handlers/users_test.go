package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storecore/catalog-api/internal/auth"
	"github.com/storecore/catalog-api/internal/models"
	"github.com/storecore/catalog-api/internal/query"
)

func newUserRouter(h *UserHandler, tokens *auth.TokenManager) chi.Router {
	r := chi.NewRouter()
	r.Get("/users/me", h.GetMe)
	r.Patch("/users/me", h.UpdateMe)
	r.Put("/users/me/image", h.UpdateMyImage)
	r.Patch("/users/me/password", h.UpdateMyPassword(tokens))
	r.Get("/admin/users", h.ListUsers)
	r.Get("/admin/users/{id}", h.GetUser)
	r.Post("/admin/users", h.CreateUser)
	r.Delete("/admin/users/{id}", h.DeleteUser)
	return r
}

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager("test-secret-key-with-enough-entropy", time.Hour)
}

func regularUser() *models.User {
	return &models.User{ID: "u1", Email: "user@example.com", Name: "Test User", Role: "user"}
}

func TestUserHandler_GetMe(t *testing.T) {
	h := NewUserHandler(&MockUserService{}, &MockImageStore{})
	router := newUserRouter(h, testTokens())

	req := WithAuthContext(httptest.NewRequest(http.MethodGet, "/users/me", nil), regularUser())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp struct {
		Data UserResponse `json:"data"`
	}
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "u1", resp.Data.ID)
	assert.Equal(t, "user@example.com", resp.Data.Email)
}

func TestUserHandler_GetMe_Unauthenticated(t *testing.T) {
	h := NewUserHandler(&MockUserService{}, &MockImageStore{})
	router := newUserRouter(h, testTokens())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
}

func TestUserHandler_UpdateMe(t *testing.T) {
	svc := &MockUserService{
		UpdateProfileFunc: func(ctx context.Context, id, name, email string) (*models.User, error) {
			return &models.User{ID: id, Name: name, Email: email, Role: "user"}, nil
		},
	}
	h := NewUserHandler(svc, &MockImageStore{})
	router := newUserRouter(h, testTokens())

	req := NewTestRequest(t, http.MethodPatch, "/users/me", map[string]string{
		"name":  "New Name",
		"email": "new@example.com",
	})
	req = WithAuthContext(req, regularUser())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp struct {
		Data UserResponse `json:"data"`
	}
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "New Name", resp.Data.Name)
}

func TestUserHandler_UpdateMe_RejectsPassword(t *testing.T) {
	svc := &MockUserService{
		UpdateProfileFunc: func(ctx context.Context, id, name, email string) (*models.User, error) {
			t.Fatal("profile update must not run when a password is supplied")
			return nil, nil
		},
	}
	h := NewUserHandler(svc, &MockImageStore{})
	router := newUserRouter(h, testTokens())

	req := NewTestRequest(t, http.MethodPatch, "/users/me", map[string]string{
		"name":     "New Name",
		"password": "Sneaky1234",
	})
	req = WithAuthContext(req, regularUser())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestUserHandler_UpdateMyPassword(t *testing.T) {
	var gotOld, gotNew string
	svc := &MockUserService{
		UpdatePasswordFunc: func(ctx context.Context, id, oldPassword, newPassword string) error {
			gotOld = oldPassword
			gotNew = newPassword
			return nil
		},
	}
	h := NewUserHandler(svc, &MockImageStore{})
	tokens := testTokens()
	router := newUserRouter(h, tokens)

	req := NewTestRequest(t, http.MethodPatch, "/users/me/password", map[string]string{
		"oldPassword": "OldPassw0rd",
		"newPassword": "NewPassw0rd",
	})
	req = WithAuthContext(req, regularUser())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp struct {
		Token string `json:"token"`
	}
	AssertJSONResponse(t, w, http.StatusOK, &resp)

	assert.Equal(t, "OldPassw0rd", gotOld)
	assert.Equal(t, "NewPassw0rd", gotNew)

	// a fresh token is issued so the client survives its own stale-session cutoff
	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestUserHandler_UpdateMyPassword_WrongOldPassword(t *testing.T) {
	svc := &MockUserService{
		UpdatePasswordFunc: func(ctx context.Context, id, oldPassword, newPassword string) error {
			return models.ErrBadRequest
		},
	}
	h := NewUserHandler(svc, &MockImageStore{})
	router := newUserRouter(h, testTokens())

	req := NewTestRequest(t, http.MethodPatch, "/users/me/password", map[string]string{
		"oldPassword": "wrong",
		"newPassword": "NewPassw0rd",
	})
	req = WithAuthContext(req, regularUser())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestUserHandler_UpdateMyImage(t *testing.T) {
	svc := &MockUserService{
		UpdateProfileImageFunc: func(ctx context.Context, id, imageKey string) (*models.User, error) {
			return &models.User{ID: id, ProfileImage: imageKey, Role: "user"}, nil
		},
	}
	h := NewUserHandler(svc, &MockImageStore{})
	router := newUserRouter(h, testTokens())

	req := NewMultipartRequest(t, http.MethodPut, "/users/me/image", nil, "avatar.png", []byte("fake image bytes"))
	req = WithAuthContext(req, regularUser())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp struct {
		Data UserResponse `json:"data"`
	}
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "stored-key.jpg", resp.Data.ProfileImage)
}

func TestUserHandler_ListUsers(t *testing.T) {
	svc := &MockUserService{
		ListUsersFunc: func(ctx context.Context, spec query.Spec) ([]map[string]any, query.Pagination, error) {
			return []map[string]any{{"id": "u1", "email": "user@example.com"}},
				query.Pagination{CurrentPage: 1, Limit: 10, NumberOfPages: 1, TotalDocuments: 1}, nil
		},
	}
	h := NewUserHandler(svc, &MockImageStore{})
	router := newUserRouter(h, testTokens())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users?keyword=test", nil))

	var resp ListResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, 1, resp.Results)
}

func TestUserHandler_CreateUser(t *testing.T) {
	svc := &MockUserService{
		CreateUserFunc: func(ctx context.Context, user *models.User, password string) (*models.User, error) {
			user.ID = "u2"
			return user, nil
		},
	}
	h := NewUserHandler(svc, &MockImageStore{})
	router := newUserRouter(h, testTokens())

	req := NewTestRequest(t, http.MethodPost, "/admin/users", map[string]string{
		"email":    "new@example.com",
		"name":     "New User",
		"password": "Str0ngPassw0rd",
		"role":     "admin",
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp struct {
		Data UserResponse `json:"data"`
	}
	AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, "u2", resp.Data.ID)
	assert.Equal(t, "admin", resp.Data.Role)
}

func TestUserHandler_CreateUser_InvalidEmail(t *testing.T) {
	h := NewUserHandler(&MockUserService{}, &MockImageStore{})
	router := newUserRouter(h, testTokens())

	req := NewTestRequest(t, http.MethodPost, "/admin/users", map[string]string{
		"email":    "not-an-email",
		"name":     "New User",
		"password": "Str0ngPassw0rd",
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "validation_error")
}

func TestUserHandler_DeleteUser_NotFound(t *testing.T) {
	svc := &MockUserService{
		DeleteUserFunc: func(ctx context.Context, id string) error {
			return models.ErrNotFound
		},
	}
	h := NewUserHandler(svc, &MockImageStore{})
	router := newUserRouter(h, testTokens())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/users/missing", nil))

	AssertErrorResponse(t, w, http.StatusNotFound, "not_found")
}

func TestUserHandler_GetUser(t *testing.T) {
	svc := &MockUserService{
		GetUserByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Email: "user@example.com", Name: "Test User", Role: "user"}, nil
		},
	}
	h := NewUserHandler(svc, &MockImageStore{})
	router := newUserRouter(h, testTokens())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users/u1", nil))

	var resp struct {
		Data UserResponse `json:"data"`
	}
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	require.Equal(t, "u1", resp.Data.ID)
}

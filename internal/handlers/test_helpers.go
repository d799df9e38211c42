package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storecore/catalog-api/internal/auth"
	"github.com/storecore/catalog-api/internal/models"
	"github.com/storecore/catalog-api/internal/query"
	"github.com/storecore/catalog-api/internal/services"
	"github.com/storecore/catalog-api/pkg/httpapi"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewMultipartRequest builds a multipart form request with the given fields
// and one file part named "image".
func NewMultipartRequest(t *testing.T, method, url string, fields map[string]string, filename string, fileContent []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// WithAuthContext attaches a resolved user to the request context, standing in
// for the Authenticate middleware
func WithAuthContext(req *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserContextKey, user)
	return req.WithContext(ctx)
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp httpapi.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockItemService implements ItemService for testing
type MockItemService struct {
	ListItemsFunc  func(ctx context.Context, spec query.Spec, inStockOnly bool) ([]map[string]any, query.Pagination, error)
	GetItemFunc    func(ctx context.Context, id string) (*models.Item, error)
	CreateItemFunc func(ctx context.Context, item *models.Item) (*models.Item, error)
	UpdateItemFunc func(ctx context.Context, id string, patch services.ItemPatch, updatedBy string) (*models.Item, error)
	DeleteItemFunc func(ctx context.Context, id string) error
}

func (m *MockItemService) ListItems(ctx context.Context, spec query.Spec, inStockOnly bool) ([]map[string]any, query.Pagination, error) {
	if m.ListItemsFunc == nil {
		return nil, query.Pagination{}, nil
	}
	return m.ListItemsFunc(ctx, spec, inStockOnly)
}

func (m *MockItemService) GetItem(ctx context.Context, id string) (*models.Item, error) {
	if m.GetItemFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetItemFunc(ctx, id)
}

func (m *MockItemService) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if m.CreateItemFunc == nil {
		return item, nil
	}
	return m.CreateItemFunc(ctx, item)
}

func (m *MockItemService) UpdateItem(ctx context.Context, id string, patch services.ItemPatch, updatedBy string) (*models.Item, error) {
	if m.UpdateItemFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateItemFunc(ctx, id, patch, updatedBy)
}

func (m *MockItemService) DeleteItem(ctx context.Context, id string) error {
	if m.DeleteItemFunc == nil {
		return nil
	}
	return m.DeleteItemFunc(ctx, id)
}

// MockUserService implements UserService for testing
type MockUserService struct {
	GetUserByIDFunc        func(ctx context.Context, id string) (*models.User, error)
	ListUsersFunc          func(ctx context.Context, spec query.Spec) ([]map[string]any, query.Pagination, error)
	CreateUserFunc         func(ctx context.Context, user *models.User, password string) (*models.User, error)
	UpdateProfileFunc      func(ctx context.Context, id, name, email string) (*models.User, error)
	UpdateProfileImageFunc func(ctx context.Context, id, imageKey string) (*models.User, error)
	UpdatePasswordFunc     func(ctx context.Context, id, oldPassword, newPassword string) error
	DeleteUserFunc         func(ctx context.Context, id string) error
}

func (m *MockUserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetUserByIDFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetUserByIDFunc(ctx, id)
}

func (m *MockUserService) ListUsers(ctx context.Context, spec query.Spec) ([]map[string]any, query.Pagination, error) {
	if m.ListUsersFunc == nil {
		return nil, query.Pagination{}, nil
	}
	return m.ListUsersFunc(ctx, spec)
}

func (m *MockUserService) CreateUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if m.CreateUserFunc == nil {
		return user, nil
	}
	return m.CreateUserFunc(ctx, user, password)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error) {
	if m.UpdateProfileFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateProfileFunc(ctx, id, name, email)
}

func (m *MockUserService) UpdateProfileImage(ctx context.Context, id, imageKey string) (*models.User, error) {
	if m.UpdateProfileImageFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateProfileImageFunc(ctx, id, imageKey)
}

func (m *MockUserService) UpdatePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	if m.UpdatePasswordFunc == nil {
		return nil
	}
	return m.UpdatePasswordFunc(ctx, id, oldPassword, newPassword)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id string) error {
	if m.DeleteUserFunc == nil {
		return nil
	}
	return m.DeleteUserFunc(ctx, id)
}

// MockAuthService implements AuthService for testing
type MockAuthService struct {
	LoginFunc func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, email, password, ipAddress)
}

// MockImageStore implements storage.ImageStore for testing
type MockImageStore struct {
	SaveFunc   func(ctx context.Context, filename string, r io.Reader) (string, error)
	DeleteFunc func(ctx context.Context, key string) error
}

func (m *MockImageStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if m.SaveFunc == nil {
		return "stored-key.jpg", nil
	}
	return m.SaveFunc(ctx, filename, r)
}

func (m *MockImageStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, key)
}

package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/retailstack/catalog/internal/db"
	"github.com/retailstack/catalog/internal/hierarchy"
	"github.com/retailstack/catalog/internal/repo"
	"github.com/retailstack/catalog/pkg/logger"
)

func setupTestServer(t *testing.T) *Server {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	database := &db.DB{DB: gormDB}
	require.NoError(t, db.RunMigrations(database))
	require.NoError(t, db.SeedHierarchy(database))

	log := logger.NewLogger("test", "info")
	hier, err := hierarchy.Load(context.Background(), database, log)
	require.NoError(t, err)

	productRepo := repo.NewProductRepository(database, log)
	return NewServer(productRepo, hier, nil, database, log)
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

const speakerJSON = `{
	"sku": "100001",
	"description": "Speaker",
	"department_id": 1,
	"class_id": 1,
	"family_id": 1,
	"stock": 10,
	"quantity": 5,
	"brand": "Acme",
	"model": "XOne",
	"discontinued": false
}`

func TestAddAndGetProduct(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(s, http.MethodPost, "/products", speakerJSON)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(s, http.MethodGet, "/products/100001", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var detail repo.ProductDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Speaker", detail.Description)
	assert.Equal(t, int64(10), detail.Stock)
	assert.Equal(t, int64(5), detail.Quantity)
	assert.Equal(t, "Electronics", detail.DepartmentName)
	assert.Equal(t, "Audio", detail.ClassName)
	assert.Equal(t, "Headphones", detail.FamilyName)
}

func TestAddDuplicateSKUKeepsOriginal(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(s, http.MethodPost, "/products", speakerJSON)
	require.Equal(t, http.StatusCreated, rec.Code)

	duplicate := strings.Replace(speakerJSON, `"Speaker"`, `"Other"`, 1)
	rec = doRequest(s, http.MethodPost, "/products", duplicate)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(s, http.MethodGet, "/products/100001", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var detail repo.ProductDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Speaker", detail.Description)
}

func TestAddProductValidation(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name  string
		patch func(string) string
		field string
	}{
		{"non-numeric sku", func(b string) string {
			return strings.Replace(b, `"100001"`, `"ABC"`, 1)
		}, "sku"},
		{"empty description", func(b string) string {
			return strings.Replace(b, `"Speaker"`, `""`, 1)
		}, "description"},
		{"unknown family", func(b string) string {
			return strings.Replace(b, `"family_id": 1`, `"family_id": 9`, 1)
		}, "family_id"},
		{"unknown class", func(b string) string {
			return strings.Replace(b, `"class_id": 1`, `"class_id": 5`, 1)
		}, "class_id"},
		{"quantity above stock", func(b string) string {
			return strings.Replace(b, `"quantity": 5`, `"quantity": 50`, 1)
		}, "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, http.MethodPost, "/products", tt.patch(speakerJSON))
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.field, body["field"])
		})
	}
}

func TestGetProductNotFound(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(s, http.MethodGet, "/products/999999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProduct(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(s, http.MethodPost, "/products", speakerJSON)
	require.Equal(t, http.StatusCreated, rec.Code)

	updated := strings.Replace(speakerJSON, `"Speaker"`, `"Earbuds"`, 1)
	updated = strings.Replace(updated, `"discontinued": false`, `"discontinued": true`, 1)
	rec = doRequest(s, http.MethodPut, "/products/100001", updated)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodGet, "/products/100001", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var detail repo.ProductDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Earbuds", detail.Description)
	assert.True(t, detail.Discontinued)
	assert.NotEqual(t, db.NeverDiscontinued, detail.DeletedDate)
}

func TestUpdateUnknownProduct(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(s, http.MethodPut, "/products/999999", speakerJSON)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(s, http.MethodPost, "/products", speakerJSON)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(s, http.MethodDelete, "/products/100001", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(s, http.MethodGet, "/products/100001", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Deleting again is still a no-op.
	rec = doRequest(s, http.MethodDelete, "/products/100001", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHierarchyRoutes(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(s, http.MethodGet, "/hierarchy/departments", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var departments map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &departments))
	assert.Equal(t, []string{"Electronics", "Home"}, departments["departments"])

	rec = doRequest(s, http.MethodGet, "/hierarchy/departments/1/classes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var classes map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &classes))
	assert.Equal(t, []string{"Audio", "Video"}, classes["classes"])

	rec = doRequest(s, http.MethodGet, "/hierarchy/departments/1/classes/1/families", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var families map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &families))
	assert.Equal(t, []string{"Headphones", "Speakers"}, families["families"])

	rec = doRequest(s, http.MethodGet, "/hierarchy/departments/x/classes", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := setupTestServer(t)

	rec := doRequest(s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

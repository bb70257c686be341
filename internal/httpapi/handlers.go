package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/retailstack/catalog/internal/db"
	"github.com/retailstack/catalog/internal/repo"
	"github.com/retailstack/catalog/internal/validate"
)

// ProductRequest is the payload for product create and update requests.
type ProductRequest struct {
	SKU          string `json:"sku"`
	Description  string `json:"description"`
	DepartmentID int    `json:"department_id"`
	ClassID      int    `json:"class_id"`
	FamilyID     int    `json:"family_id"`
	Stock        int64  `json:"stock"`
	Quantity     int64  `json:"quantity"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Discontinued bool   `json:"discontinued"`
}

// validateRequest checks the same invariants the editing session enforces
// at its save gate and returns the name of the first offending field.
func (s *Server) validateRequest(req *ProductRequest) string {
	if !validate.ValidSKU(req.SKU) {
		return "sku"
	}
	if req.Description == "" {
		return "description"
	}
	if req.Brand == "" {
		return "brand"
	}
	if req.Model == "" {
		return "model"
	}
	if _, ok := s.hier.DepartmentName(req.DepartmentID); !ok {
		return "department_id"
	}
	if _, ok := s.hier.ClassName(req.DepartmentID, req.ClassID); !ok {
		return "class_id"
	}
	if _, ok := s.hier.FamilyName(req.DepartmentID, req.ClassID, req.FamilyID); !ok {
		return "family_id"
	}
	if req.Stock < 0 {
		return "stock"
	}
	if req.Quantity < 0 || req.Quantity > req.Stock {
		return "quantity"
	}
	return ""
}

func (req *ProductRequest) toProduct(createdDate string) *db.Product {
	deletedDate := db.NeverDiscontinued
	if req.Discontinued {
		deletedDate = time.Now().Format(db.DateLayout)
	}
	return &db.Product{
		SKU:          req.SKU,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
		ClassID:      req.ClassID,
		FamilyID:     req.FamilyID,
		Stock:        req.Stock,
		Quantity:     req.Quantity,
		DeletedDate:  deletedDate,
		Model:        req.Model,
		Brand:        req.Brand,
		CreatedDate:  createdDate,
		Discontinued: req.Discontinued,
	}
}

func (s *Server) getProduct(c echo.Context) error {
	sku := c.Param("sku")

	detail, err := s.repo.Get(c.Request().Context(), sku)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get product"})
	}

	productOperationsTotal.WithLabelValues("get").Inc()
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) addProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if field := s.validateRequest(&req); field != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field", "field": field})
	}

	product := req.toProduct(time.Now().Format(db.DateLayout))
	if err := s.repo.Add(c.Request().Context(), product); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add product"})
	}

	if s.publisher != nil {
		if err := s.publisher.PublishProductAdded(c.Request().Context(), product); err != nil {
			s.log.Error("Failed to publish product added event", zap.String("sku", product.SKU), zap.Error(err))
		}
	}

	productOperationsTotal.WithLabelValues("add").Inc()
	return c.JSON(http.StatusCreated, product)
}

func (s *Server) updateProduct(c echo.Context) error {
	sku := c.Param("sku")

	// The repository update is silent on an unknown SKU, so existence is
	// checked first, the way the editing session consults before saving.
	existing, err := s.repo.Get(c.Request().Context(), sku)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get product"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.SKU = sku

	if field := s.validateRequest(&req); field != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field", "field": field})
	}

	product := req.toProduct(existing.CreatedDate)
	if err := s.repo.Update(c.Request().Context(), product); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update product"})
	}

	if s.publisher != nil {
		if err := s.publisher.PublishProductUpdated(c.Request().Context(), product); err != nil {
			s.log.Error("Failed to publish product updated event", zap.String("sku", sku), zap.Error(err))
		}
	}

	productOperationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, product)
}

func (s *Server) deleteProduct(c echo.Context) error {
	sku := c.Param("sku")

	if err := s.repo.Delete(c.Request().Context(), sku); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}

	if s.publisher != nil {
		if err := s.publisher.PublishProductDeleted(c.Request().Context(), sku); err != nil {
			s.log.Error("Failed to publish product deleted event", zap.String("sku", sku), zap.Error(err))
		}
	}

	productOperationsTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listDepartments(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"departments": s.hier.Departments()})
}

func (s *Server) listClasses(c echo.Context) error {
	deptID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid department id"})
	}
	return c.JSON(http.StatusOK, echo.Map{"classes": s.hier.ClassesOf(deptID)})
}

func (s *Server) listFamilies(c echo.Context) error {
	deptID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid department id"})
	}
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid class id"})
	}
	return c.JSON(http.StatusOK, echo.Map{"families": s.hier.FamiliesOf(deptID, classID)})
}

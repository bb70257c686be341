package repo

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailstack/catalog/internal/db"
)

// ErrProductNotFound is returned when a product is not found, or when its
// stored classification ids no longer resolve through the hierarchy join.
var ErrProductNotFound = errors.New("product not found")

// ProductDetail is a product augmented with its resolved hierarchy names.
type ProductDetail struct {
	db.Product
	DepartmentName string `json:"department_name"`
	ClassName      string `json:"class_name"`
	FamilyName     string `json:"family_name"`
}

// ProductRepository handles product catalog operations
type ProductRepository struct {
	db  *db.DB
	log *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(database *db.DB, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{
		db:  database,
		log: logger,
	}
}

// Add inserts a product. Inserting an existing SKU succeeds without
// modifying the stored row: re-submitting a record is not an error.
func (r *ProductRepository) Add(ctx context.Context, product *db.Product) error {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}},
		DoNothing: true,
	}).Create(product)
	if result.Error != nil {
		r.log.Error("Failed to add product", zap.String("sku", product.SKU), zap.Error(result.Error))
		return result.Error
	}

	if result.RowsAffected == 0 {
		r.log.Info("Product already exists, insert ignored", zap.String("sku", product.SKU))
		return nil
	}

	r.log.Info("Product added", zap.String("sku", product.SKU), zap.String("description", product.Description))
	return nil
}

// Update replaces every mutable field of the row matching the product's
// SKU. An unknown SKU affects zero rows and is not an error; callers are
// expected to have verified existence via Get.
func (r *ProductRepository) Update(ctx context.Context, product *db.Product) error {
	updates := map[string]interface{}{
		"description":   product.Description,
		"department_id": product.DepartmentID,
		"class_id":      product.ClassID,
		"family_id":     product.FamilyID,
		"stock":         product.Stock,
		"quantity":      product.Quantity,
		"deleted_date":  product.DeletedDate,
		"model":         product.Model,
		"brand":         product.Brand,
		"created_date":  product.CreatedDate,
		"discontinued":  product.Discontinued,
	}

	result := r.db.WithContext(ctx).Model(&db.Product{}).Where("sku = ?", product.SKU).Updates(updates)
	if result.Error != nil {
		r.log.Error("Failed to update product", zap.String("sku", product.SKU), zap.Error(result.Error))
		return result.Error
	}

	if result.RowsAffected == 0 {
		r.log.Warn("Update matched no rows", zap.String("sku", product.SKU))
		return nil
	}

	r.log.Info("Product updated", zap.String("sku", product.SKU))
	return nil
}

// Delete removes the row matching the SKU; a no-op when absent. This is a
// hard delete, distinct from the discontinued flag.
func (r *ProductRepository) Delete(ctx context.Context, sku string) error {
	result := r.db.WithContext(ctx).Where("sku = ?", sku).Delete(&db.Product{})
	if result.Error != nil {
		r.log.Error("Failed to delete product", zap.String("sku", sku), zap.Error(result.Error))
		return result.Error
	}

	r.log.Info("Product deleted", zap.String("sku", sku), zap.Int64("rows", result.RowsAffected))
	return nil
}

// Get retrieves a product by SKU with its resolved department, class and
// family names. A row whose stored ids do not survive the composite join
// resolves to nothing and is reported as not found, the same as an absent
// SKU.
func (r *ProductRepository) Get(ctx context.Context, sku string) (*ProductDetail, error) {
	var detail ProductDetail
	err := r.db.WithContext(ctx).
		Table("products").
		Select("products.*, departments.name AS department_name, classes.name AS class_name, families.name AS family_name").
		Joins("JOIN departments ON departments.id = products.department_id").
		Joins("JOIN classes ON classes.id = products.class_id AND classes.department_id = products.department_id").
		Joins("JOIN families ON families.id = products.family_id AND families.class_id = products.class_id AND families.department_id = products.department_id").
		Where("products.sku = ?", sku).
		Take(&detail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		r.log.Error("Failed to get product", zap.String("sku", sku), zap.Error(err))
		return nil, err
	}

	return &detail, nil
}

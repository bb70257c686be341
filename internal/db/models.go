package db

// DateLayout is the storage format for product dates.
const DateLayout = "2006-01-02"

// NeverDiscontinued is the sentinel deletion date for products that have
// not been discontinued.
const NeverDiscontinued = "1900-01-01"

// Department is the top level of the classification hierarchy
type Department struct {
	ID   int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"type:varchar(100);not null" json:"name"`
}

// TableName specifies the table name for Department model
func (Department) TableName() string {
	return "departments"
}

// Class is the middle level of the hierarchy, unique per (department_id, id)
type Class struct {
	ID           int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	DepartmentID int    `gorm:"primaryKey;autoIncrement:false" json:"department_id"`
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
}

// TableName specifies the table name for Class model
func (Class) TableName() string {
	return "classes"
}

// Family is the leaf level of the hierarchy. Its department_id must match
// the department of its class, which a single foreign key cannot express;
// the composite key carries both references.
type Family struct {
	ID           int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ClassID      int    `gorm:"primaryKey;autoIncrement:false" json:"class_id"`
	DepartmentID int    `gorm:"primaryKey;autoIncrement:false" json:"department_id"`
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
}

// TableName specifies the table name for Family model
func (Family) TableName() string {
	return "families"
}

// Product represents a catalog product keyed by SKU
type Product struct {
	SKU          string `gorm:"primaryKey;type:varchar(6)" json:"sku"`
	Description  string `gorm:"type:varchar(15);not null" json:"description"`
	DepartmentID int    `gorm:"not null;index:idx_products_hierarchy" json:"department_id"`
	ClassID      int    `gorm:"not null;index:idx_products_hierarchy" json:"class_id"`
	FamilyID     int    `gorm:"not null;index:idx_products_hierarchy" json:"family_id"`
	Stock        int64  `gorm:"not null;default:0" json:"stock"`
	Quantity     int64  `gorm:"not null;default:0" json:"quantity"`
	DeletedDate  string `gorm:"type:varchar(10);not null;default:'1900-01-01'" json:"deleted_date"`
	Model        string `gorm:"type:varchar(20);not null" json:"model"`
	Brand        string `gorm:"type:varchar(15);not null" json:"brand"`
	CreatedDate  string `gorm:"type:varchar(10);not null" json:"created_date"`
	Discontinued bool   `gorm:"not null;default:false" json:"discontinued"`
}

// TableName specifies the table name for Product model
func (Product) TableName() string {
	return "products"
}

package domain

// 商品类型。这些值会写入数据库，也出现在 URL 和导出文件中。
const (
	ProductTypeProduce  = "hortifruti"
	ProductTypeInternal = "interno"
)

// ProductTypeAll 是不按类型筛选时使用的值。
const ProductTypeAll = "todos"

// Product 是被登记损耗的商品。
// 蔬果类按名称识别，内部商品按条码识别。
type Product struct {
	ID      uint    `gorm:"primaryKey"`
	Name    string  `gorm:"type:varchar(100);not null;index"`
	Barcode *string `gorm:"type:varchar(50);uniqueIndex:idx_products_barcode"`
	Type    string  `gorm:"type:varchar(50);not null;index"`
}

// IsProduce 判断商品是否按重量登记。
func (p *Product) IsProduce() bool { return p.Type == ProductTypeProduce }

// IsInternal 判断商品是否按条码识别。
func (p *Product) IsInternal() bool { return p.Type == ProductTypeInternal }

// BarcodeValue 返回条码，没有条码时返回空字符串。
func (p *Product) BarcodeValue() string {
	if p.Barcode == nil {
		return ""
	}
	return *p.Barcode
}

// ValidProductType 判断 t 是否为合法的商品类型。
func ValidProductType(t string) bool {
	return t == ProductTypeProduce || t == ProductTypeInternal
}

// ProductListing 是商品及其损耗记录数。
type ProductListing struct {
	Product
	RecordCount int64
}

package enums

import "fmt"

// CatalogEntity identifies one of the defaultable catalogue entity kinds.
// Controllers use it to route generic catalogue CRUD to the right table.
type CatalogEntity string

const (
	CatalogEntityPriceList     CatalogEntity = "price_list"
	CatalogEntityProductType   CatalogEntity = "product_type"
	CatalogEntityProductStatus CatalogEntity = "product_status"
	CatalogEntityTaxClass      CatalogEntity = "tax_class"
	CatalogEntityMeasureUnit   CatalogEntity = "measure_unit"
)

var validCatalogEntities = []CatalogEntity{
	CatalogEntityPriceList,
	CatalogEntityProductType,
	CatalogEntityProductStatus,
	CatalogEntityTaxClass,
	CatalogEntityMeasureUnit,
}

func (e CatalogEntity) String() string {
	return string(e)
}

func (e CatalogEntity) IsValid() bool {
	for _, candidate := range validCatalogEntities {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseCatalogEntity converts raw input into a CatalogEntity.
func ParseCatalogEntity(value string) (CatalogEntity, error) {
	for _, candidate := range validCatalogEntities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid catalog entity %q", value)
}

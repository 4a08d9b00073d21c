package recommendation

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	apperrors "github.com/yanqian/skincare-api/pkg/errors"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var validate = validator.New()

// CatalogSource loads products from an external system at startup.
type CatalogSource interface {
	LoadProducts(ctx context.Context) ([]Product, error)
}

// Catalog is the read-only product table scored by the engine.
// Product order is significant: it breaks score ties.
type Catalog struct {
	products []Product
	index    map[string]int
}

type catalogFile struct {
	Products []Product `yaml:"products"`
}

// NewCatalog validates products and freezes them into a Catalog.
func NewCatalog(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		index:    make(map[string]int, len(products)),
	}
	for i, p := range products {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("product %d (%q): %w", i, p.ID, err)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %q: price cannot be negative", p.ID)
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("product %q: duplicate id", p.ID)
		}
		c.index[p.ID] = len(c.products)
		c.products = append(c.products, cloneProduct(p))
	}
	return c, nil
}

// ParseCatalogYAML decodes a `products:` document.
func ParseCatalogYAML(data []byte) ([]Product, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Products) == 0 {
		return nil, errors.New("catalog contains no products")
	}
	return file.Products, nil
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	products, err := ParseCatalogYAML(defaultCatalogYAML)
	if err != nil {
		return nil, err
	}
	return NewCatalog(products)
}

// Len reports the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// All returns copies of every product in catalog order.
func (c *Catalog) All() []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, cloneProduct(p))
	}
	return out
}

// Find returns the product with the given id.
func (c *Catalog) Find(id string) (Product, error) {
	i, ok := c.index[id]
	if !ok {
		return Product{}, apperrors.Wrap("not_found", fmt.Sprintf("product %q not found", id), nil)
	}
	return cloneProduct(c.products[i]), nil
}

// Filter returns the products matching every non-empty filter field.
func (c *Catalog) Filter(f ProductFilter) []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.SkinType != "" && !p.SuitsSkinType(f.SkinType) {
			continue
		}
		if f.Concern != "" && !slices.Contains(p.Concerns, f.Concern) {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	return out
}

// SuitsSkinType reports whether the product lists skinType or the wildcard.
func (p Product) SuitsSkinType(skinType string) bool {
	return slices.Contains(p.SkinTypes, skinType) || slices.Contains(p.SkinTypes, WildcardSkinType)
}

func cloneProduct(p Product) Product {
	p.Ingredients = slices.Clone(p.Ingredients)
	p.SkinTypes = slices.Clone(p.SkinTypes)
	p.Concerns = slices.Clone(p.Concerns)
	return p
}

// View converts a product to its wire representation.
func (p Product) View() ProductView {
	return ProductView{
		ID:                       p.ID,
		Name:                     p.Name,
		Brand:                    p.Brand,
		Price:                    p.Price.InexactFloat64(),
		Category:                 p.Category,
		Description:              p.Description,
		Ingredients:              nonNil(p.Ingredients),
		SkinType:                 nonNil(p.SkinTypes),
		Concerns:                 nonNil(p.Concerns),
		DermatologistRecommended: p.DermatologistRecommended,
		Rating:                   p.Rating,
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

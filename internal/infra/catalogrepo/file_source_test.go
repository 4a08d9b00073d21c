package catalogrepo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/skincare-api/internal/domain/recommendation"
)

func TestFileSourceLoadsProducts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
products:
  - id: spf-stick
    name: SPF Stick
    brand: Sunny
    price: "9.99"
    category: sunscreen
    ingredients: [zinc oxide]
    skinType: [all]
    concerns: [sun_protection]
    rating: 4.0
`), 0o600))

	products, err := NewFileSource(path).LoadProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, recommendation.CategorySunscreen, products[0].Category)

	catalog, err := recommendation.NewCatalog(products)
	require.NoError(t, err)
	require.Equal(t, 1, catalog.Len())
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.yaml")).LoadProducts(context.Background())
	require.ErrorContains(t, err, "read catalog file")
}

type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		switch ptr := d.(type) {
		case *string:
			*ptr = r.values[i].(string)
		case *[]string:
			*ptr = r.values[i].([]string)
		case *bool:
			*ptr = r.values[i].(bool)
		case *float64:
			*ptr = r.values[i].(float64)
		}
	}
	return nil
}

func TestScanProduct(t *testing.T) {
	row := fakeRow{values: []any{
		"p1", "Gel", "Brand", "desc", "12.50", "serum",
		[]string{"niacinamide"}, []string{"oily"}, []string{"acne"}, true, 4.4,
	}}
	p, err := scanProduct(row)
	require.NoError(t, err)
	require.Equal(t, recommendation.CategorySerum, p.Category)
	require.Equal(t, "12.5", p.Price.String())
	require.True(t, p.DermatologistRecommended)

	row.values[4] = "not-a-number"
	_, err = scanProduct(row)
	require.ErrorContains(t, err, "price")
}

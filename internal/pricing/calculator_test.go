package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdomain "github.com/bagelworks/storefront/internal/cart/domain"
	catalogdomain "github.com/bagelworks/storefront/internal/catalog/domain"
)

func product(id int64, name, price string) catalogdomain.Product {
	return catalogdomain.Product{ID: id, Name: name, Price: decimal.RequireFromString(price)}
}

func TestPriceComputesSubtotalsAndTotal(t *testing.T) {
	entries := []cartdomain.Entry{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 3},
	}
	products := map[int64]catalogdomain.Product{
		1: product(1, "Plain Bagel", "2.50"),
		2: product(2, "Sesame Bagel", "2.75"),
	}

	lines, total := Price(entries, products)

	require.Len(t, lines, 2)
	assert.True(t, lines[0].Subtotal.Equal(decimal.RequireFromString("5.00")), "got %s", lines[0].Subtotal)
	assert.True(t, lines[1].Subtotal.Equal(decimal.RequireFromString("8.25")), "got %s", lines[1].Subtotal)
	assert.True(t, total.Equal(decimal.RequireFromString("13.25")), "got %s", total)
}

func TestPriceTotalEqualsSumOfSubtotalsExactly(t *testing.T) {
	// Amounts chosen to drift under binary floats.
	entries := []cartdomain.Entry{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 7},
	}
	products := map[int64]catalogdomain.Product{
		1: product(1, "Everything Bagel", "0.10"),
		2: product(2, "Onion Bagel", "0.20"),
	}

	lines, total := Price(entries, products)

	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal)
	}
	assert.True(t, total.Equal(sum))
	assert.True(t, total.Equal(decimal.RequireFromString("1.70")), "got %s", total)
}

func TestPriceSkipsStaleProductReferences(t *testing.T) {
	entries := []cartdomain.Entry{
		{ProductID: 1, Quantity: 2},
		{ProductID: 42, Quantity: 5}, // no longer in the catalog
	}
	products := map[int64]catalogdomain.Product{
		1: product(1, "Plain Bagel", "2.50"),
	}

	lines, total := Price(entries, products)

	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].Product.ID)
	assert.True(t, total.Equal(decimal.RequireFromString("5.00")), "stale line must not count toward the total, got %s", total)
}

func TestPriceEmptyCart(t *testing.T) {
	lines, total := Price(nil, map[int64]catalogdomain.Product{})

	assert.Empty(t, lines)
	assert.True(t, total.IsZero())
}

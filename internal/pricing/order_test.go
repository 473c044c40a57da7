package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-pricing-core/internal/model"
)

func intPtr(i int) *int {
	return &i
}

var testTaxRate = decimal.NewFromFloat(0.15)

func testDeliveryOptions() []model.DeliveryOption {
	return []model.DeliveryOption{
		{Name: "Next Day", DaysToDeliver: 1, ShippingPrice: decimal.NewFromInt(35)},
		{Name: "Express", DaysToDeliver: 3, ShippingPrice: decimal.NewFromInt(25), FreeShippingMinPrice: decimal.NewFromInt(300)},
		{Name: "Standard", DaysToDeliver: 7, ShippingPrice: decimal.NewFromInt(15), FreeShippingMinPrice: decimal.NewFromInt(150)},
	}
}

func assertDecEqual(t *testing.T, expected float64, got decimal.Decimal, label string) {
	t.Helper()
	assert.True(t, decimal.NewFromFloat(expected).Equal(got), "%s: expected %v, got %s", label, expected, got)
}

func TestComputeQuote_NoCouponFreeShipping(t *testing.T) {
	// Two items at 100 with a 150 free-shipping threshold on the default
	// (last) option: items=200, shipping=0, tax=30, total=230.
	quote, err := ComputeQuote(QuoteInput{
		Items: []model.QuoteItem{
			{ProductID: "prod_001", UnitPrice: decimal.NewFromInt(100), Quantity: 2},
		},
		HasShippingAddress: true,
		DeliveryOptions:    testDeliveryOptions(),
		TaxRate:            testTaxRate,
	})

	require.NoError(t, err)
	assertDecEqual(t, 200, quote.ItemsPrice, "items price")
	assertDecEqual(t, 0, quote.Discount, "discount")
	require.NotNil(t, quote.ShippingPrice)
	assertDecEqual(t, 0, *quote.ShippingPrice, "shipping price")
	require.NotNil(t, quote.TaxPrice)
	assertDecEqual(t, 30, *quote.TaxPrice, "tax price")
	assertDecEqual(t, 230, quote.TotalPrice, "total price")
	assert.Equal(t, "Standard", quote.DeliveryOption.Name)
}

func TestComputeQuote_CouponDiscountsItemsOnly(t *testing.T) {
	// 10% coupon on a 200 cart: discount=20, tax on 180, free shipping is
	// still judged on the pre-discount 200.
	discount := decimal.NewFromInt(10)
	quote, err := ComputeQuote(QuoteInput{
		Items: []model.QuoteItem{
			{ProductID: "prod_001", UnitPrice: decimal.NewFromInt(100), Quantity: 2},
		},
		HasShippingAddress: true,
		DiscountPercent:    &discount,
		DeliveryOptions:    testDeliveryOptions(),
		TaxRate:            testTaxRate,
	})

	require.NoError(t, err)
	assertDecEqual(t, 200, quote.ItemsPrice, "items price")
	assertDecEqual(t, 20, quote.Discount, "discount")
	require.NotNil(t, quote.ShippingPrice)
	assertDecEqual(t, 0, *quote.ShippingPrice, "shipping price")
	require.NotNil(t, quote.TaxPrice)
	assertDecEqual(t, 27, *quote.TaxPrice, "tax price")
	assertDecEqual(t, 207, quote.TotalPrice, "total price")
}

func TestComputeQuote_FreeShippingUsesPreDiscountSubtotal(t *testing.T) {
	// Items land exactly on the threshold; a 50% coupon drops the
	// discounted subtotal well below it, yet shipping stays free.
	discount := decimal.NewFromInt(50)
	quote, err := ComputeQuote(QuoteInput{
		Items: []model.QuoteItem{
			{ProductID: "prod_001", UnitPrice: decimal.NewFromInt(150), Quantity: 1},
		},
		HasShippingAddress: true,
		DiscountPercent:    &discount,
		DeliveryOptions:    testDeliveryOptions(),
		TaxRate:            testTaxRate,
	})

	require.NoError(t, err)
	assertDecEqual(t, 75, quote.Discount, "discount")
	require.NotNil(t, quote.ShippingPrice)
	assertDecEqual(t, 0, *quote.ShippingPrice, "shipping price")
}

func TestComputeQuote_ShippingChargedBelowThreshold(t *testing.T) {
	quote, err := ComputeQuote(QuoteInput{
		Items: []model.QuoteItem{
			{ProductID: "prod_001", UnitPrice: decimal.NewFromInt(100), Quantity: 1},
		},
		HasShippingAddress: true,
		DeliveryOptions:    testDeliveryOptions(),
		TaxRate:            testTaxRate,
	})

	require.NoError(t, err)
	require.NotNil(t, quote.ShippingPrice)
	assertDecEqual(t, 15, *quote.ShippingPrice, "shipping price")
	require.NotNil(t, quote.TaxPrice)
	assertDecEqual(t, 15, *quote.TaxPrice, "tax price")
	assertDecEqual(t, 130, quote.TotalPrice, "total price")
}

func TestComputeQuote_NoFreeShippingThresholdNeverFree(t *testing.T) {
	// The Next Day option carries no threshold; even a large cart pays it.
	quote, err := ComputeQuote(QuoteInput{
		Items: []model.QuoteItem{
			{ProductID: "prod_001", UnitPrice: decimal.NewFromInt(500), Quantity: 1},
		},
		HasShippingAddress: true,
		DeliveryDateIndex:  intPtr(0),
		DeliveryOptions:    testDeliveryOptions(),
		TaxRate:            testTaxRate,
	})

	require.NoError(t, err)
	assert.Equal(t, "Next Day", quote.DeliveryOption.Name)
	require.NotNil(t, quote.ShippingPrice)
	assertDecEqual(t, 35, *quote.ShippingPrice, "shipping price")
}

func TestComputeQuote_NoShippingAddress(t *testing.T) {
	quote, err := ComputeQuote(QuoteInput{
		Items: []model.QuoteItem{
			{ProductID: "prod_001", UnitPrice: decimal.NewFromInt(100), Quantity: 2},
		},
		HasShippingAddress: false,
		DeliveryOptions:    testDeliveryOptions(),
		TaxRate:            testTaxRate,
	})

	require.NoError(t, err)
	assert.Nil(t, quote.ShippingPrice, "shipping is unknown without an address")
	assert.Nil(t, quote.TaxPrice, "tax is unknown without an address")
	assertDecEqual(t, 200, quote.TotalPrice, "total price")
}

func TestComputeQuote_ExplicitDeliveryIndex(t *testing.T) {
	quote, err := ComputeQuote(QuoteInput{
		Items: []model.QuoteItem{
			{ProductID: "prod_001", UnitPrice: decimal.NewFromInt(100), Quantity: 1},
		},
		HasShippingAddress: true,
		DeliveryDateIndex:  intPtr(1),
		DeliveryOptions:    testDeliveryOptions(),
		TaxRate:            testTaxRate,
	})

	require.NoError(t, err)
	assert.Equal(t, "Express", quote.DeliveryOption.Name)
	require.NotNil(t, quote.ShippingPrice)
	assertDecEqual(t, 25, *quote.ShippingPrice, "shipping price")
}

func TestComputeQuote_DeliveryIndexOutOfRange(t *testing.T) {
	for _, idx := range []int{-1, 3, 100} {
		_, err := ComputeQuote(QuoteInput{
			Items: []model.QuoteItem{
				{ProductID: "prod_001", UnitPrice: decimal.NewFromInt(100), Quantity: 1},
			},
			HasShippingAddress: true,
			DeliveryDateIndex:  intPtr(idx),
			DeliveryOptions:    testDeliveryOptions(),
			TaxRate:            testTaxRate,
		})
		assert.ErrorIs(t, err, ErrInvalidDeliveryOption, "index %d", idx)
	}
}

func TestComputeQuote_NoDeliveryOptions(t *testing.T) {
	_, err := ComputeQuote(QuoteInput{
		Items: []model.QuoteItem{
			{ProductID: "prod_001", UnitPrice: decimal.NewFromInt(100), Quantity: 1},
		},
		TaxRate: testTaxRate,
	})

	assert.ErrorIs(t, err, ErrNoDeliveryOptions)
}

func TestComputeQuote_RoundsEachComponent(t *testing.T) {
	// 3 * 33.33 = 99.99; 7% discount = 6.9993 -> 7.00; discounted 92.99;
	// tax 13.9485 -> 13.95; shipping 15; total 121.94.
	discount := decimal.NewFromInt(7)
	quote, err := ComputeQuote(QuoteInput{
		Items: []model.QuoteItem{
			{ProductID: "prod_001", UnitPrice: decimal.NewFromFloat(33.33), Quantity: 3},
		},
		HasShippingAddress: true,
		DiscountPercent:    &discount,
		DeliveryOptions:    testDeliveryOptions(),
		TaxRate:            testTaxRate,
	})

	require.NoError(t, err)
	assertDecEqual(t, 99.99, quote.ItemsPrice, "items price")
	assertDecEqual(t, 7.00, quote.Discount, "discount")
	require.NotNil(t, quote.TaxPrice)
	assertDecEqual(t, 13.95, *quote.TaxPrice, "tax price")
	assertDecEqual(t, 121.94, quote.TotalPrice, "total price")
}

func TestComputeQuote_MultipleItems(t *testing.T) {
	quote, err := ComputeQuote(QuoteInput{
		Items: []model.QuoteItem{
			{ProductID: "prod_001", UnitPrice: decimal.NewFromFloat(19.99), Quantity: 2},
			{ProductID: "prod_002", UnitPrice: decimal.NewFromFloat(5.50), Quantity: 4},
		},
		HasShippingAddress: false,
		DeliveryOptions:    testDeliveryOptions(),
		TaxRate:            testTaxRate,
	})

	require.NoError(t, err)
	assertDecEqual(t, 61.98, quote.ItemsPrice, "items price")
	assertDecEqual(t, 61.98, quote.TotalPrice, "total price")
}

func TestDefaultDeliveryOptions_LastIsCheapest(t *testing.T) {
	options := model.DefaultDeliveryOptions()

	require.NotEmpty(t, options)
	last := options[len(options)-1]
	for _, opt := range options[:len(options)-1] {
		assert.True(t, last.ShippingPrice.LessThanOrEqual(opt.ShippingPrice),
			"default option %q should not cost more than %q", last.Name, opt.Name)
	}
}

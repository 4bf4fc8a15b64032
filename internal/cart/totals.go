package cart

import "github.com/shopspring/decimal"

// Totals is the result of ComputeTotals.
type Totals struct {
	Net            decimal.Decimal
	DeliveryIncome decimal.Decimal
	GrandTotal     decimal.Decimal
}

// DeliveryCoster exposes a delivery cost, e.g. a city's courier fee.
type DeliveryCoster interface {
	DeliveryCost() decimal.Decimal
}

// ComputeTotals sums the given lines and an optional delivery charge.
// Net covers the non-delivery lines only; the synthetic delivery line is
// represented by the delivery argument, so a cart that carries one is not
// double-counted. Grand total = net + delivery income. It is a pure
// function, total over any finite item list including the empty one.
func ComputeTotals(items []LineItem, delivery interface{}) Totals {
	net := decimal.Zero
	for i := range items {
		if items[i].IsDelivery {
			continue
		}
		net = net.Add(items[i].LineTotal())
	}

	income := decimal.Zero
	switch d := delivery.(type) {
	case nil:
	case decimal.Decimal:
		income = d
	case DeliveryCoster:
		income = d.DeliveryCost()
	}

	return Totals{
		Net:            net,
		DeliveryIncome: income,
		GrandTotal:     net.Add(income),
	}
}

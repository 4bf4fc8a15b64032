package cart

import (
	"testing"

	"github.com/shopspring/decimal"
)

type fakeCity struct {
	cost decimal.Decimal
}

func (f fakeCity) DeliveryCost() decimal.Decimal { return f.cost }

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name       string
		items      []LineItem
		delivery   interface{}
		wantNet    string
		wantIncome string
		wantGrand  string
	}{
		{
			name: "items with delivery amount",
			items: []LineItem{
				{ID: "a", Price: d("10"), Qty: 2},
				{ID: "b", Price: d("5"), Qty: 1},
			},
			delivery:   d("5"),
			wantNet:    "25",
			wantIncome: "5",
			wantGrand:  "30",
		},
		{
			name: "delivery from coster",
			items: []LineItem{
				{ID: "a", Price: d("12.50"), Qty: 4},
			},
			delivery:   fakeCity{cost: d("7.25")},
			wantNet:    "50",
			wantIncome: "7.25",
			wantGrand:  "57.25",
		},
		{
			name:       "no delivery",
			items:      []LineItem{{ID: "a", Price: d("3"), Qty: 3}},
			delivery:   nil,
			wantNet:    "9",
			wantIncome: "0",
			wantGrand:  "9",
		},
		{
			name: "delivery line excluded from net",
			items: []LineItem{
				{ID: "a", Price: d("10"), Qty: 2},
				{ID: DeliveryLineID, Price: d("5"), Qty: 1, IsDelivery: true},
			},
			delivery:   d("5"),
			wantNet:    "20",
			wantIncome: "5",
			wantGrand:  "25",
		},
		{
			name:       "empty cart",
			items:      nil,
			delivery:   d("10"),
			wantNet:    "0",
			wantIncome: "10",
			wantGrand:  "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.items, tt.delivery)
			if !got.Net.Equal(d(tt.wantNet)) {
				t.Errorf("net: expected %s, got %s", tt.wantNet, got.Net)
			}
			if !got.DeliveryIncome.Equal(d(tt.wantIncome)) {
				t.Errorf("delivery income: expected %s, got %s", tt.wantIncome, got.DeliveryIncome)
			}
			if !got.GrandTotal.Equal(d(tt.wantGrand)) {
				t.Errorf("grand total: expected %s, got %s", tt.wantGrand, got.GrandTotal)
			}
		})
	}
}

func TestGrandTotalIsNetPlusDelivery(t *testing.T) {
	items := []LineItem{
		{ID: "a", Price: d("19.99"), Qty: 3},
		{ID: "b", Price: d("0.01"), Qty: 7},
		{ID: "c", Price: d("150"), Qty: 1},
	}
	for _, delivery := range []string{"0", "5", "12.75"} {
		got := ComputeTotals(items, d(delivery))
		if !got.GrandTotal.Equal(got.Net.Add(got.DeliveryIncome)) {
			t.Errorf("delivery %s: grand total %s != net %s + income %s",
				delivery, got.GrandTotal, got.Net, got.DeliveryIncome)
		}
	}
}

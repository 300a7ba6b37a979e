package storage

import (
	"encoding/json"
	"testing"
)

func TestCustomerFromModel(t *testing.T) {
	model := customerModel{
		ID:            "c-1",
		Name:          "sara",
		Address:       "Zone 4",
		LastBill:      120,
		PredictedBill: 130,
		UsagePattern:  json.RawMessage(`{"high_consumption_reason":"new heater","notes":["works from home"]}`),
	}
	records := []consumptionModel{
		{CustomerID: "c-1", Month: "2025-01", Amount: 100, Usage: 400},
		{CustomerID: "c-1", Month: "2025-02", Amount: 120, Usage: 480},
	}
	got, err := customerFromModel(model, records)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.UsagePattern.HighConsumptionReason != "new heater" || len(got.UsagePattern.Notes) != 1 {
		t.Fatalf("unexpected usage pattern: %#v", got.UsagePattern)
	}
	if len(got.Consumption) != 2 || got.Consumption[1].Amount != 120 {
		t.Fatalf("unexpected consumption: %#v", got.Consumption)
	}
}

func TestCustomerFromModelBadPattern(t *testing.T) {
	_, err := customerFromModel(customerModel{UsagePattern: json.RawMessage(`[`)}, nil)
	if err == nil {
		t.Fatalf("expected decode error")
	}
}

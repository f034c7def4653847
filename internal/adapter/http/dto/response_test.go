package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

func TestEntryFromDomain(t *testing.T) {
	now := time.Now()
	entry := &domain.Entry{
		ID:           "entry-1",
		Type:         domain.EntryTypeAddMoney,
		Title:        "Added USD",
		Currency:     "USD",
		Amount:       decimal.RequireFromString("50"),
		BaseCurrency: "NGN",
		BaseEquiv:    decimal.RequireFromString("82500"),
		FXRateUsed:   decimal.RequireFromString("1650"),
		Metadata:     map[string]any{"source": "card"},
		CreatedAt:    now,
	}

	resp := EntryFromDomain(entry)
	if resp.ID != entry.ID || resp.Type != "add_money" || resp.Display != "$50.00" || resp.BaseDisplay != "₦82,500.00" {
		t.Fatalf("unexpected entry response: %+v", resp)
	}

	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"fx_rate_used":"1650"`) || !strings.Contains(string(body), `"base_equiv":"82500"`) {
		t.Fatalf("unexpected JSON %s", body)
	}

	list := EntriesFromDomain([]*domain.Entry{entry})
	if len(list) != 1 || list[0].ID != entry.ID {
		t.Fatalf("EntriesFromDomain returned %+v", list)
	}
}

func TestBalancesFromDomain(t *testing.T) {
	resp := BalancesFromDomain(domain.Balances{
		"USD": decimal.NewFromInt(150),
		"NGN": decimal.Zero,
	}, "NGN", decimal.NewFromInt(247500))

	if len(resp.Balances) != 2 || resp.Balances[0].Currency != "NGN" || resp.Balances[1].Display != "$150.00" {
		t.Fatalf("unexpected balances %+v", resp.Balances)
	}
	if resp.TotalDisplay != "₦247,500.00" {
		t.Fatalf("unexpected total display %q", resp.TotalDisplay)
	}
}

func TestRateResponses(t *testing.T) {
	table := domain.NewRateTable(3, time.Now(), map[string]map[string]decimal.Decimal{
		"USD": {"NGN": decimal.NewFromInt(1650), "EUR": decimal.RequireFromString("0.92")},
	})

	resp := RateTableFromDomain(table)
	if resp.Version != 3 || len(resp.Rates) != 2 || resp.Rates[0].To != "EUR" {
		t.Fatalf("unexpected table response %+v", resp)
	}

	conv := ConversionFromDomain(table.Resolve("USD", "NGN"), decimal.NewFromInt(2))
	if !conv.Converted.Equal(decimal.NewFromInt(3300)) || conv.Source != "exact" || conv.Display != "₦3,300.00" {
		t.Fatalf("unexpected conversion %+v", conv)
	}

	approx := RateResolutionFromDomain(table.Resolve("GBP", "NGN"))
	if !approx.Approximate || approx.Source != "defaulted" {
		t.Fatalf("expected defaulted resolution, got %+v", approx)
	}
}

func TestReportResponses(t *testing.T) {
	summary := SummaryFromUseCase(&usecase.SummaryResult{
		Balances: domain.Balances{"USD": decimal.NewFromInt(1)},
		Currencies: []domain.CurrencySummary{
			{Currency: "USD", Credits: decimal.NewFromInt(3), Debits: decimal.NewFromInt(2), Net: decimal.NewFromInt(1), Count: 2},
		},
	})
	if len(summary.Balances) != 1 || len(summary.Currencies) != 1 || summary.Currencies[0].Count != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	consistency := ConsistencyFromDomain(&domain.ConsistencyReport{Checked: 4, Inconsistent: []string{"e2"}})
	if consistency.Consistent || consistency.Checked != 4 || len(consistency.OutOfOrder) != 0 || consistency.OutOfOrder == nil {
		t.Fatalf("unexpected consistency %+v", consistency)
	}
}

package costs

import (
	"fmt"

	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/models"
)

// Days sales outstanding per payment term.
var dsoDays = map[string]int{"Net-30": 30, "Net-60": 60, "Net-90": 90}

// InterestColumns is the payment-terms interest schema, in export order.
var InterestColumns = []string{
	"TransactionID", "CustomerID", "TransactionAmount_EUR", "PaymentTerms",
	"DSO_Days", "AnnualInterestRate", "DailyInterestCost_EUR", "DSO_InterestCost_EUR",
}

type InterestCost struct {
	TransactionID string
	CustomerID    string
	Amount        float64
	PaymentTerms  string
	DSODays       int
	AnnualRate    float64
	Daily         float64
	Total         float64
}

// AllocateInterest prices the working capital tied up between delivery and
// payment: amount x annual rate x DSO/365.
func AllocateInterest(txns []models.Transaction, annualRate float64) ([]InterestCost, error) {
	out := make([]InterestCost, 0, len(txns))
	for _, tx := range txns {
		days, ok := dsoDays[tx.PaymentTerms]
		if !ok {
			return nil, fmt.Errorf("transaction %s: unknown payment terms %q", tx.ID, tx.PaymentTerms)
		}
		daily := tx.Amount * annualRate / 365
		out = append(out, InterestCost{
			TransactionID: tx.ID,
			CustomerID:    tx.CustomerID,
			Amount:        csvio.Round2(tx.Amount),
			PaymentTerms:  tx.PaymentTerms,
			DSODays:       days,
			AnnualRate:    annualRate,
			Daily:         csvio.Round(daily, 4),
			Total:         csvio.Round2(daily * float64(days)),
		})
	}
	return out, nil
}

func WriteInterestCosts(path string, records []InterestCost) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.TransactionID,
			rec.CustomerID,
			csvio.Money(rec.Amount),
			rec.PaymentTerms,
			csvio.Int(rec.DSODays),
			csvio.Float(rec.AnnualRate),
			csvio.Fixed(rec.Daily, 4),
			csvio.Money(rec.Total),
		})
	}
	return csvio.WriteFile(path, InterestColumns, rows)
}

// GenerateInterest runs the payment-interest stage end to end.
func GenerateInterest(cfg *config.Config) error {
	txns, err := models.ReadTransactions(cfg.GeneratedPath("02_transactions_generated.csv"))
	if err != nil {
		return err
	}
	records, err := AllocateInterest(txns, cfg.Finance.AnnualInterestRate)
	if err != nil {
		return err
	}
	return WriteInterestCosts(cfg.GeneratedPath("07_payment_terms_interest_generated.csv"), records)
}

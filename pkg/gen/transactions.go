package gen

import (
	"fmt"
	"math"
	"time"

	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/models"
	"cost-to-serve/pkg/rng"
)

// seasonalMultipliers shape the monthly order budget: a slow first quarter
// building to a strong holiday season.
var seasonalMultipliers = [13]float64{
	0, 0.88, 0.90, 0.92, 1.03, 1.05, 1.08, 1.25, 1.22, 1.15, 1.20, 1.35, 1.40,
}

type channelProfile struct {
	customRate   float64
	rushRate     float64
	avgOrderSize float64
	supportRate  float64
}

// HORECA orders are small, frequent, and service-heavy; retail orders are
// large and mostly standard.
var channelProfiles = map[int]channelProfile{
	1: {customRate: 0.38, rushRate: 0.12, avgOrderSize: 175, supportRate: 0.12},
	2: {customRate: 0.07, rushRate: 0.04, avgOrderSize: 500, supportRate: 0.08},
}

const (
	orderAmountMin = 40.0
	orderAmountMax = 1500.0
	orderYear      = 2023
)

// BuildTransactions expands each customer's annual category spend into a
// year of orders. Per-order amounts are drawn log-normally inside a
// seasonal monthly budget, then the whole year is rescaled so the orders
// sum to the customer's exact annual revenue.
func BuildTransactions(customers []models.Customer, r *rng.Rand) []models.Transaction {
	var txns []models.Transaction
	counter := 1

	for _, c := range customers {
		profile := channelProfiles[c.Channel]
		if c.TotalRevenue <= 0 {
			continue
		}
		annualOrders := int(c.OrderFrequency * 12)
		if annualOrders < 1 {
			annualOrders = 1
		}

		type draft struct {
			month  int
			amount float64
		}
		var drafts []draft
		generated := 0.0
		for month := 1; month <= 12; month++ {
			monthlyBudget := float64(c.TotalRevenue) / 12 * seasonalMultipliers[month]
			ordersThisMonth := annualOrders/12 + r.IntBetween(-1, 2)
			if ordersThisMonth < 1 {
				ordersThisMonth = 1
			}
			for o := 0; o < ordersThisMonth; o++ {
				amount := r.LogNormal(math.Log(profile.avgOrderSize), 0.5)
				amount = math.Max(orderAmountMin, math.Min(orderAmountMax, amount))
				amount = math.Min(amount, monthlyBudget*0.4)
				drafts = append(drafts, draft{month, amount})
				generated += amount
			}
		}

		scale := 1.0
		if generated > 0 {
			scale = float64(c.TotalRevenue) / generated
		}

		weights := make([]float64, len(models.Categories))
		for i, cat := range models.Categories {
			weights[i] = float64(c.AnnualSpending[cat])
		}

		for _, d := range drafts {
			amount := d.amount * scale
			date := time.Date(orderYear, time.Month(d.month), r.IntBetween(1, 29), 0, 0, 0, 0, time.UTC)
			category := models.Categories[r.WeightedIndex(weights)]

			lineItems := r.IntBetween(1, 6)
			isStandard := r.Float64() > profile.customRate
			isUrgent := r.Float64() < profile.rushRate
			needsSupport := r.Float64() < profile.supportRate

			flags := 0
			if !isStandard {
				flags++
			}
			if isUrgent {
				flags++
			}
			if needsSupport {
				flags++
			}
			intensity := "Low"
			if flags == 1 {
				intensity = "Medium"
			} else if flags > 1 {
				intensity = "High"
			}

			multiplier := 1.0
			if !isStandard {
				multiplier *= 1.5
			}
			if isUrgent {
				multiplier *= 1.3
			}
			if needsSupport {
				multiplier *= 1.2
			}
			multiplier = math.Min(multiplier, 1.8)

			quantity := int(amount / 25)
			if quantity < 1 {
				quantity = 1
			}

			txns = append(txns, models.Transaction{
				ID:             fmt.Sprintf("TXN-%d-%06d", orderYear, counter),
				CustomerID:     c.ID,
				Date:           date,
				Month:          d.month,
				DayOfWeek:      date.Weekday().String(),
				Category:       category,
				Amount:         csvio.Round2(amount),
				Quantity:       quantity,
				LineItems:      lineItems,
				IsStandard:     isStandard,
				IsUrgent:       isUrgent,
				NeedsSupport:   needsSupport,
				IntensityLevel: intensity,
				Multiplier:     csvio.Round2(multiplier),
				PaymentTerms:   c.PaymentTerms,
			})
			counter++
		}
	}
	return txns
}

// GenerateTransactions runs the transactions stage end to end.
func GenerateTransactions(cfg *config.Config) error {
	customers, err := models.ReadCustomers(cfg.ProcessedPath("01_customer_master.csv"))
	if err != nil {
		return err
	}
	txns := BuildTransactions(customers, rng.New(cfg.Seed))
	return models.WriteTransactions(cfg.GeneratedPath("02_transactions_generated.csv"), txns)
}

// Package gen builds the synthetic wholesale dataset: the customer master
// from the raw UCI seed file, a year of transactions, and the product
// catalog.
package gen

import (
	"time"

	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/models"
	"cost-to-serve/pkg/rng"
)

// SeedRow is one customer from the raw UCI wholesale customers file.
type SeedRow struct {
	Channel int
	Region  int
	Spend   map[string]int
}

// seedSpendColumns maps the raw file's column names (including its historic
// misspelling of Delicatessen) onto catalog categories.
var seedSpendColumns = map[string]string{
	"Fresh":           "Fresh",
	"Milk":            "Milk",
	"Grocery":         "Grocery",
	"Frozen":          "Frozen",
	"DetergentsPaper": "Detergents_Paper",
	"Delicatessen":    "Delicassen",
}

// acquisitionRef anchors AcquisitionDate = ref - DaysAsCustomer.
var acquisitionRef = time.Date(2024, time.November, 4, 0, 0, 0, 0, time.UTC)

// ReadSeed loads the raw wholesale customers file.
func ReadSeed(path string) ([]SeedRow, error) {
	t, err := csvio.Load(path)
	if err != nil {
		return nil, err
	}
	required := []string{"Channel", "Region"}
	for _, col := range seedSpendColumns {
		required = append(required, col)
	}
	if err := t.Require(required...); err != nil {
		return nil, err
	}
	rows := make([]SeedRow, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := SeedRow{Spend: make(map[string]int, len(models.Categories))}
		if row.Channel, err = t.Int(i, "Channel"); err != nil {
			return nil, err
		}
		if row.Region, err = t.Int(i, "Region"); err != nil {
			return nil, err
		}
		for cat, col := range seedSpendColumns {
			if row.Spend[cat], err = t.Int(i, col); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var regionNames = map[int]string{1: "Lisbon", 2: "Porto", 3: "Other_Regions"}
var channelNames = map[int]string{1: "HORECA", 2: "Retail"}

var paymentTermOptions = []string{"Net-30", "Net-60", "Net-90"}

// segmentTermWeights drives the 88% rule-based share of payment terms.
var segmentTermWeights = map[string][]float64{
	"SMB":        {0.80, 0.15, 0.05},
	"Mid-Market": {0.40, 0.45, 0.15},
	"Enterprise": {0.20, 0.40, 0.40},
}

// BuildCustomers derives the customer master from the raw seed rows. Every
// random draw comes from r, so the same seed reproduces the same master.
func BuildCustomers(seeds []SeedRow, r *rng.Rand) []models.Customer {
	customers := make([]models.Customer, 0, len(seeds))
	for i, seed := range seeds {
		c := models.Customer{
			ID:             customerID(i + 1),
			Name:           companyName(r),
			Channel:        seed.Channel,
			ChannelName:    channelNames[seed.Channel],
			Region:         seed.Region,
			RegionName:     regionNames[seed.Region],
			AnnualSpending: seed.Spend,
		}
		for _, cat := range models.Categories {
			c.TotalRevenue += seed.Spend[cat]
		}
		c.Segment = segmentFor(c.TotalRevenue)
		c.DaysAsCustomer = r.IntBetween(365, 1095)
		if c.Channel == 1 {
			c.OrderFrequency = r.Uniform(3, 5)
		} else {
			c.OrderFrequency = r.Uniform(0.5, 2)
		}
		c.PaymentTerms = paymentTerms(r, c.Segment, c.DaysAsCustomer)
		c.ServiceScore = serviceScore(r, c.Channel, c.OrderFrequency, c.PaymentTerms)
		c.ServiceDrivers = serviceDrivers(c.ChannelName, c.OrderFrequency, c.PaymentTerms)
		c.PremiumRequests = c.ServiceScore > 6
		c.AcquisitionDate = acquisitionRef.AddDate(0, 0, -c.DaysAsCustomer)
		c.SalesRep = salesRep(r.IntBetween(1, 26))
		c.AccountTier = accountTier(c.ServiceScore, c.TotalRevenue)
		customers = append(customers, c)
	}
	return customers
}

func segmentFor(revenue int) string {
	switch {
	case revenue < 20000:
		return "SMB"
	case revenue < 50000:
		return "Mid-Market"
	default:
		return "Enterprise"
	}
}

// paymentTerms draws terms: 12% fully random outliers, otherwise
// segment-weighted with a Net-30 override for customers under six months.
func paymentTerms(r *rng.Rand, segment string, daysAsCustomer int) string {
	if r.Float64() < 0.12 {
		return paymentTermOptions[r.IntBetween(0, 3)]
	}
	terms := paymentTermOptions[r.WeightedIndex(segmentTermWeights[segment])]
	if daysAsCustomer < 180 {
		return "Net-30"
	}
	return terms
}

func serviceScore(r *rng.Rand, channel int, freq float64, terms string) float64 {
	score := 1.0
	if channel == 1 {
		score = 3.0
	}
	switch {
	case freq >= 4:
		score += 3.0
	case freq >= 2.5:
		score += 2.0
	default:
		score += 1.0
	}
	switch terms {
	case "Net-90":
		score += 2.0
	case "Net-60":
		score += 1.0
	default:
		score += 0.5
	}
	score += r.Float64()
	score = csvio.Round(score, 1)
	if score > 10 {
		score = 10
	}
	if score < 1 {
		score = 1
	}
	return score
}

func serviceDrivers(channelName string, freq float64, terms string) string {
	freqLabel := "Low freq"
	switch {
	case freq >= 4:
		freqLabel = "High freq"
	case freq >= 2.5:
		freqLabel = "Med freq"
	}
	return channelName + " + " + freqLabel + " + " + terms
}

func accountTier(score float64, revenue int) string {
	switch {
	case score >= 7:
		return "PREMIUM"
	case score >= 4:
		return "STANDARD"
	case revenue > 50000:
		return "ENTERPRISE"
	default:
		return "STANDARD"
	}
}

// GenerateCustomerMaster runs the customer-master stage end to end.
func GenerateCustomerMaster(cfg *config.Config) error {
	seeds, err := ReadSeed(cfg.SeedPath())
	if err != nil {
		return err
	}
	customers := BuildCustomers(seeds, rng.New(cfg.Seed))
	return models.WriteCustomers(cfg.ProcessedPath("01_customer_master.csv"), customers)
}

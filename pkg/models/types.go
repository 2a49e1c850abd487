// Package models holds the row types and CSV schemas shared by the
// pipeline stages.
package models

import "time"

// Categories lists the six wholesale product categories in catalog order.
var Categories = []string{"Fresh", "Milk", "Grocery", "Frozen", "DetergentsPaper", "Delicatessen"}

// ColdChainCategories require temperature-controlled transport.
var ColdChainCategories = map[string]bool{
	"Fresh":        true,
	"Milk":         true,
	"Delicatessen": true,
}

type Customer struct {
	ID              string
	Name            string
	Channel         int // 1 HORECA, 2 Retail
	ChannelName     string
	Region          int // 1 Lisbon, 2 Porto, 3 other
	RegionName      string
	AnnualSpending  map[string]int // category -> EUR/year
	TotalRevenue    int
	Segment         string // SMB, Mid-Market, Enterprise
	PaymentTerms    string // Net-30, Net-60, Net-90
	OrderFrequency  float64
	ServiceScore    float64
	ServiceDrivers  string
	PremiumRequests bool
	DaysAsCustomer  int
	AcquisitionDate time.Time
	SalesRep        string
	AccountTier     string // PREMIUM, STANDARD, ENTERPRISE
}

type Transaction struct {
	ID             string
	CustomerID     string
	Date           time.Time
	Month          int
	DayOfWeek      string
	Category       string
	Amount         float64
	Quantity       int
	LineItems      int
	IsStandard     bool
	IsUrgent       bool
	NeedsSupport   bool
	IntensityLevel string // Low, Medium, High
	Multiplier     float64
	PaymentTerms   string
}

type Product struct {
	SKU          string
	Name         string
	Category     string
	UnitCost     float64
	ListPrice    float64
	WeightKg     float64
	IsPerishable bool
	ReturnRate   float64 // percent
	GrossMargin  float64 // percent
	Markup       float64
}

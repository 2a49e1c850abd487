package models

import (
	"fmt"
	"time"

	"cost-to-serve/pkg/csvio"
)

// CustomerColumns is the customer master schema, in export order.
var CustomerColumns = []string{
	"CustomerID", "CustomerName", "OriginalChannel", "ChannelName",
	"OriginalRegion", "RegionName", "AnnualFreshSpending", "AnnualMilkSpending",
	"AnnualGrocerySpending", "AnnualFrozenSpending", "AnnualDetergentsPaperSpending",
	"AnnualDelicatessenSpending", "TotalAnnualRevenue", "CustomerSegment", "PaymentTerms",
	"OrderFrequencyPerMonth", "ServiceIntensityScore", "ServiceIntensityDrivers",
	"HasPremiumRequests", "DaysAsCustomer", "AcquisitionDate", "SalesRepAssigned", "AccountTier",
}

// TransactionColumns is the transaction schema, in export order.
var TransactionColumns = []string{
	"TransactionID", "CustomerID", "TransactionDate", "OrderMonth", "OrderDayOfWeek",
	"ProductCategory", "TransactionAmount", "Quantity", "NumberOfLineItems",
	"IsStandardOrder", "IsUrgent", "CustomerServiceInteractionRequired",
	"OrderIntensityLevel", "ServiceCostMultiplier", "PaymentTerms",
}

// ProductColumns is the product catalog schema, in export order.
var ProductColumns = []string{
	"SKU", "ProductName", "Category", "UnitCost", "ListPrice", "Weight_kg",
	"IsPerishable", "ReturnRate_Percent", "GrossMargin_Percent", "Markup_Multiplier",
}

// SpendingColumn returns the customer master column carrying annual spend for
// a category.
func SpendingColumn(category string) string {
	return "Annual" + category + "Spending"
}

func WriteCustomers(path string, customers []Customer) error {
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []string{
			c.ID,
			c.Name,
			csvio.Int(c.Channel),
			c.ChannelName,
			csvio.Int(c.Region),
			c.RegionName,
			csvio.Int(c.AnnualSpending["Fresh"]),
			csvio.Int(c.AnnualSpending["Milk"]),
			csvio.Int(c.AnnualSpending["Grocery"]),
			csvio.Int(c.AnnualSpending["Frozen"]),
			csvio.Int(c.AnnualSpending["DetergentsPaper"]),
			csvio.Int(c.AnnualSpending["Delicatessen"]),
			csvio.Int(c.TotalRevenue),
			c.Segment,
			c.PaymentTerms,
			csvio.Float(c.OrderFrequency),
			csvio.Float(c.ServiceScore),
			c.ServiceDrivers,
			csvio.Bool(c.PremiumRequests),
			csvio.Int(c.DaysAsCustomer),
			c.AcquisitionDate.Format("2006-01-02"),
			c.SalesRep,
			c.AccountTier,
		})
	}
	return csvio.WriteFile(path, CustomerColumns, rows)
}

func ReadCustomers(path string) ([]Customer, error) {
	t, err := csvio.Load(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(CustomerColumns...); err != nil {
		return nil, err
	}
	customers := make([]Customer, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		c := Customer{
			ID:             t.Value(i, "CustomerID"),
			Name:           t.Value(i, "CustomerName"),
			ChannelName:    t.Value(i, "ChannelName"),
			RegionName:     t.Value(i, "RegionName"),
			Segment:        t.Value(i, "CustomerSegment"),
			PaymentTerms:   t.Value(i, "PaymentTerms"),
			ServiceDrivers: t.Value(i, "ServiceIntensityDrivers"),
			SalesRep:       t.Value(i, "SalesRepAssigned"),
			AccountTier:    t.Value(i, "AccountTier"),
			AnnualSpending: make(map[string]int, len(Categories)),
		}
		if c.Channel, err = t.Int(i, "OriginalChannel"); err != nil {
			return nil, err
		}
		if c.Region, err = t.Int(i, "OriginalRegion"); err != nil {
			return nil, err
		}
		for _, cat := range Categories {
			if c.AnnualSpending[cat], err = t.Int(i, SpendingColumn(cat)); err != nil {
				return nil, err
			}
		}
		if c.TotalRevenue, err = t.Int(i, "TotalAnnualRevenue"); err != nil {
			return nil, err
		}
		if c.OrderFrequency, err = t.Float(i, "OrderFrequencyPerMonth"); err != nil {
			return nil, err
		}
		if c.ServiceScore, err = t.Float(i, "ServiceIntensityScore"); err != nil {
			return nil, err
		}
		if c.PremiumRequests, err = t.Bool(i, "HasPremiumRequests"); err != nil {
			return nil, err
		}
		if c.DaysAsCustomer, err = t.Int(i, "DaysAsCustomer"); err != nil {
			return nil, err
		}
		if c.AcquisitionDate, err = time.Parse("2006-01-02", t.Value(i, "AcquisitionDate")); err != nil {
			return nil, fmt.Errorf("%s row %d: AcquisitionDate: %w", path, i+2, err)
		}
		customers = append(customers, c)
	}
	return customers, nil
}

func WriteTransactions(path string, txns []Transaction) error {
	rows := make([][]string, 0, len(txns))
	for _, tx := range txns {
		rows = append(rows, []string{
			tx.ID,
			tx.CustomerID,
			tx.Date.Format("2006-01-02"),
			csvio.Int(tx.Month),
			tx.DayOfWeek,
			tx.Category,
			csvio.Money(tx.Amount),
			csvio.Int(tx.Quantity),
			csvio.Int(tx.LineItems),
			csvio.Bool(tx.IsStandard),
			csvio.Bool(tx.IsUrgent),
			csvio.Bool(tx.NeedsSupport),
			tx.IntensityLevel,
			csvio.Float(tx.Multiplier),
			tx.PaymentTerms,
		})
	}
	return csvio.WriteFile(path, TransactionColumns, rows)
}

func ReadTransactions(path string) ([]Transaction, error) {
	t, err := csvio.Load(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(TransactionColumns...); err != nil {
		return nil, err
	}
	txns := make([]Transaction, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		tx := Transaction{
			ID:             t.Value(i, "TransactionID"),
			CustomerID:     t.Value(i, "CustomerID"),
			DayOfWeek:      t.Value(i, "OrderDayOfWeek"),
			Category:       t.Value(i, "ProductCategory"),
			IntensityLevel: t.Value(i, "OrderIntensityLevel"),
			PaymentTerms:   t.Value(i, "PaymentTerms"),
		}
		if tx.Date, err = time.Parse("2006-01-02", t.Value(i, "TransactionDate")); err != nil {
			return nil, fmt.Errorf("%s row %d: TransactionDate: %w", path, i+2, err)
		}
		if tx.Month, err = t.Int(i, "OrderMonth"); err != nil {
			return nil, err
		}
		if tx.Amount, err = t.Float(i, "TransactionAmount"); err != nil {
			return nil, err
		}
		if tx.Quantity, err = t.Int(i, "Quantity"); err != nil {
			return nil, err
		}
		if tx.LineItems, err = t.Int(i, "NumberOfLineItems"); err != nil {
			return nil, err
		}
		if tx.IsStandard, err = t.Bool(i, "IsStandardOrder"); err != nil {
			return nil, err
		}
		if tx.IsUrgent, err = t.Bool(i, "IsUrgent"); err != nil {
			return nil, err
		}
		if tx.NeedsSupport, err = t.Bool(i, "CustomerServiceInteractionRequired"); err != nil {
			return nil, err
		}
		if tx.Multiplier, err = t.Float(i, "ServiceCostMultiplier"); err != nil {
			return nil, err
		}
		txns = append(txns, tx)
	}
	return txns, nil
}

func WriteProducts(path string, products []Product) error {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			p.SKU,
			p.Name,
			p.Category,
			csvio.Money(p.UnitCost),
			csvio.Money(p.ListPrice),
			csvio.Money(p.WeightKg),
			csvio.Bool(p.IsPerishable),
			csvio.Money(p.ReturnRate),
			csvio.Money(p.GrossMargin),
			csvio.Money(p.Markup),
		})
	}
	return csvio.WriteFile(path, ProductColumns, rows)
}

func ReadProducts(path string) ([]Product, error) {
	t, err := csvio.Load(path)
	if err != nil {
		return nil, err
	}
	if err := t.Require(ProductColumns...); err != nil {
		return nil, err
	}
	products := make([]Product, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		p := Product{
			SKU:      t.Value(i, "SKU"),
			Name:     t.Value(i, "ProductName"),
			Category: t.Value(i, "Category"),
		}
		if p.UnitCost, err = t.Float(i, "UnitCost"); err != nil {
			return nil, err
		}
		if p.ListPrice, err = t.Float(i, "ListPrice"); err != nil {
			return nil, err
		}
		if p.WeightKg, err = t.Float(i, "Weight_kg"); err != nil {
			return nil, err
		}
		if p.IsPerishable, err = t.Bool(i, "IsPerishable"); err != nil {
			return nil, err
		}
		if p.ReturnRate, err = t.Float(i, "ReturnRate_Percent"); err != nil {
			return nil, err
		}
		if p.GrossMargin, err = t.Float(i, "GrossMargin_Percent"); err != nil {
			return nil, err
		}
		if p.Markup, err = t.Float(i, "Markup_Multiplier"); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// AvgWeightByCategory averages catalog weights per category, used to estimate
// order weights in the cost stages.
func AvgWeightByCategory(products []Product) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, p := range products {
		sums[p.Category] += p.WeightKg
		counts[p.Category]++
	}
	out := make(map[string]float64, len(sums))
	for cat, sum := range sums {
		out[cat] = sum / float64(counts[cat])
	}
	return out
}

package gen

import (
	"fmt"
	"strings"

	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/csvio"
	"cost-to-serve/pkg/models"
	"cost-to-serve/pkg/rng"
)

type catalogSpec struct {
	count       int
	examples    []string
	costMin     float64
	costMax     float64
	markupMin   float64
	markupMax   float64
	weightMin   float64
	weightMax   float64
	perishable  bool
	returnMin   float64
	returnMax   float64
}

// Catalog parameters per category: SKU counts, wholesale cost, markup,
// weight and return-rate ranges calibrated to food wholesale.
var catalogSpecs = map[string]catalogSpec{
	"Fresh": {
		count: 55,
		examples: []string{
			"Tomato", "Lettuce", "Carrot", "Broccoli", "Bell Pepper", "Cucumber",
			"Onion", "Garlic", "Spinach", "Potato", "Asparagus", "Green Beans",
			"Zucchini", "Cauliflower", "Mushroom", "Celery", "Leek", "Radish",
		},
		costMin: 0.50, costMax: 3.00, markupMin: 1.50, markupMax: 1.65,
		weightMin: 0.2, weightMax: 5.0, perishable: true, returnMin: 0.06, returnMax: 0.10,
	},
	"Milk": {
		count: 25,
		examples: []string{
			"Whole Milk", "Skim Milk", "2% Milk", "Yogurt", "Greek Yogurt",
			"Cheese", "Cheddar", "Mozzarella", "Butter", "Cream", "Cottage Cheese",
		},
		costMin: 1.00, costMax: 4.00, markupMin: 1.20, markupMax: 1.40,
		weightMin: 0.3, weightMax: 1.5, perishable: true, returnMin: 0.02, returnMax: 0.05,
	},
	"Grocery": {
		count: 110,
		examples: []string{
			"Rice", "Pasta", "Bread", "Cereal", "Olive Oil", "Vegetable Oil", "Sugar",
			"Flour", "Beans", "Canned Tomatoes", "Coffee", "Tea", "Salt", "Pepper",
			"Spices", "Peanut Butter", "Jam", "Honey", "Nuts", "Raisins",
		},
		costMin: 0.30, costMax: 2.50, markupMin: 1.50, markupMax: 1.65,
		weightMin: 0.5, weightMax: 10.0, perishable: false, returnMin: 0.01, returnMax: 0.03,
	},
	"Frozen": {
		count: 40,
		examples: []string{
			"Frozen Vegetables", "Frozen Broccoli", "Frozen Peas", "Frozen Berries",
			"Frozen Chicken Breast", "Frozen Fish Fillet", "Frozen Shrimp",
			"Ice Cream", "Frozen Pizza", "Frozen Fries",
		},
		costMin: 1.50, costMax: 4.50, markupMin: 1.25, markupMax: 1.50,
		weightMin: 0.5, weightMax: 3.0, perishable: true, returnMin: 0.03, returnMax: 0.07,
	},
	"DetergentsPaper": {
		count: 25,
		examples: []string{
			"Dish Soap", "Laundry Detergent", "Paper Towels", "Napkins",
			"Toilet Paper", "Trash Bags", "Cleaning Spray", "Bleach", "Sponges",
		},
		costMin: 0.50, costMax: 3.00, markupMin: 1.70, markupMax: 2.00,
		weightMin: 0.1, weightMax: 2.0, perishable: false, returnMin: 0.001, returnMax: 0.005,
	},
	"Delicatessen": {
		count: 20,
		examples: []string{
			"Prosciutto", "Parma Ham", "Salami", "Serrano Ham", "Smoked Salmon",
			"Smoked Trout", "Aged Cheddar", "Brie", "Gouda", "Parmigiano",
		},
		costMin: 3.00, costMax: 10.00, markupMin: 1.40, markupMax: 2.00,
		weightMin: 0.2, weightMax: 1.0, perishable: true, returnMin: 0.08, returnMax: 0.12,
	},
}

// fillerWords name SKUs beyond the curated examples.
var fillerWords = []string{
	"Premium", "Classic", "Select", "Deluxe", "Harvest", "Artisan", "Golden",
	"Rustic", "Prime", "Heritage", "Coastal", "Garden", "Vintage", "Royal",
	"Farmhouse", "Reserve", "Signature", "Estate", "Orchard", "Valley",
}

// BuildProducts generates the 275-SKU catalog in category order.
func BuildProducts(r *rng.Rand) []models.Product {
	var products []models.Product
	for _, category := range models.Categories {
		spec := catalogSpecs[category]
		code := strings.ToUpper(category[:3])
		for i := 0; i < spec.count; i++ {
			var base string
			if i < len(spec.examples) {
				base = spec.examples[i]
			} else {
				base = r.Choice(fillerWords)
			}
			unitCost := r.Uniform(spec.costMin, spec.costMax)
			markup := r.Uniform(spec.markupMin, spec.markupMax)
			listPrice := unitCost * markup
			weight := r.Uniform(spec.weightMin, spec.weightMax)
			returnRate := r.Uniform(spec.returnMin, spec.returnMax)
			grossMargin := (listPrice - unitCost) / listPrice * 100

			products = append(products, models.Product{
				SKU:          fmt.Sprintf("SKU-%s-%04d", code, i+1),
				Name:         fmt.Sprintf("%s (%s)", base, category),
				Category:     category,
				UnitCost:     csvio.Round2(unitCost),
				ListPrice:    csvio.Round2(listPrice),
				WeightKg:     csvio.Round2(weight),
				IsPerishable: spec.perishable,
				ReturnRate:   csvio.Round2(returnRate * 100),
				GrossMargin:  csvio.Round2(grossMargin),
				Markup:       csvio.Round2(markup),
			})
		}
	}
	return products
}

// GenerateProducts runs the products stage end to end.
func GenerateProducts(cfg *config.Config) error {
	products := BuildProducts(rng.New(cfg.Seed))
	return models.WriteProducts(cfg.GeneratedPath("03_products_generated.csv"), products)
}

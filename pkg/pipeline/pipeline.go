// Package pipeline declares the generation stages as a DAG over the files
// they read and write, and runs them in dependency order.
package pipeline

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"cost-to-serve/pkg/clv"
	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/costs"
	"cost-to-serve/pkg/gen"
	"cost-to-serve/pkg/pnl"
	"cost-to-serve/pkg/scenario"
)

// Stage is one pipeline step with its declared file dependencies.
type Stage struct {
	Name    string
	Inputs  []string
	Outputs []string
	Run     func(*config.Config) error
}

// Stages declares the full generation pipeline for the given config.
func Stages(cfg *config.Config) []Stage {
	master := cfg.ProcessedPath("01_customer_master.csv")
	txns := cfg.GeneratedPath("02_transactions_generated.csv")
	products := cfg.GeneratedPath("03_products_generated.csv")
	warehouse := cfg.GeneratedPath("04_warehouse_costs_generated.csv")
	shipping := cfg.GeneratedPath("05_shipping_costs_generated.csv")
	returns := cfg.GeneratedPath("06_returns_handling_generated.csv")
	interest := cfg.GeneratedPath("07_payment_terms_interest_generated.csv")
	overhead := cfg.GeneratedPath("09_admin_overhead_generated.csv")
	orders := cfg.GeneratedPath("10_financial_p_l_orders.csv")
	clvFile := cfg.GeneratedPath("11_customer_lifetime_value.csv")

	return []Stage{
		{
			Name:    "customer-master",
			Inputs:  []string{cfg.SeedPath()},
			Outputs: []string{master},
			Run:     gen.GenerateCustomerMaster,
		},
		{
			Name:    "transactions",
			Inputs:  []string{master},
			Outputs: []string{txns},
			Run:     gen.GenerateTransactions,
		},
		{
			Name:    "product-catalog",
			Outputs: []string{products},
			Run:     gen.GenerateProducts,
		},
		{
			Name:    "warehouse-costs",
			Inputs:  []string{txns, products},
			Outputs: []string{warehouse},
			Run:     costs.GenerateWarehouseCosts,
		},
		{
			Name:    "shipping-costs",
			Inputs:  []string{txns, products},
			Outputs: []string{shipping},
			Run:     costs.GenerateShippingCosts,
		},
		{
			Name:    "returns-handling",
			Inputs:  []string{txns, warehouse},
			Outputs: []string{returns},
			Run:     costs.GenerateReturns,
		},
		{
			Name:    "payment-interest",
			Inputs:  []string{txns},
			Outputs: []string{interest},
			Run:     costs.GenerateInterest,
		},
		{
			Name:    "admin-overhead",
			Inputs:  []string{master, txns},
			Outputs: []string{overhead},
			Run:     costs.GenerateOverhead,
		},
		{
			Name:   "financial-pnl",
			Inputs: []string{master, txns, warehouse, shipping, returns, interest, overhead},
			Outputs: []string{
				orders,
				cfg.GeneratedPath("10_p_l_by_segment.csv"),
				cfg.GeneratedPath("10_p_l_by_product.csv"),
				cfg.GeneratedPath("10_p_l_segment_product_matrix.csv"),
				cfg.GeneratedPath("10_p_l_overall_summary.csv"),
			},
			Run: pnl.Generate,
		},
		{
			Name:   "customer-lifetime-value",
			Inputs: []string{master, orders},
			Outputs: []string{
				clvFile,
				cfg.GeneratedPath("11_clv_by_segment_summary.csv"),
				cfg.GeneratedPath("11_clv_segment_summary.csv"),
				cfg.GeneratedPath("11_clv_action_summary.csv"),
			},
			Run: clv.Generate,
		},
		{
			Name:    "scenario-planning",
			Inputs:  []string{orders, clvFile},
			Outputs: []string{cfg.GeneratedPath("14_scenario_planning.csv")},
			Run:     scenario.Generate,
		},
	}
}

// Sort orders stages so every producer runs before its consumers. Declaration
// order is preserved among stages with no dependency between them.
func Sort(stages []Stage) ([]Stage, error) {
	producer := make(map[string]int, len(stages))
	for i, st := range stages {
		for _, out := range st.Outputs {
			if prev, dup := producer[out]; dup {
				return nil, fmt.Errorf("stages %q and %q both produce %s", stages[prev].Name, st.Name, out)
			}
			producer[out] = i
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(stages))
	order := make([]Stage, 0, len(stages))

	var visit func(int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("stage %q is part of a dependency cycle", stages[i].Name)
		}
		state[i] = visiting
		for _, in := range stages[i].Inputs {
			if j, ok := producer[in]; ok {
				if err := visit(j); err != nil {
					return err
				}
			}
		}
		state[i] = done
		order = append(order, stages[i])
		return nil
	}
	for i := range stages {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Run executes the stages in dependency order, verifying before each stage
// that its inputs exist on disk.
func Run(cfg *config.Config, stages []Stage) error {
	order, err := Sort(stages)
	if err != nil {
		return err
	}

	producer := make(map[string]string)
	for _, st := range stages {
		for _, out := range st.Outputs {
			producer[out] = st.Name
		}
	}

	bar := progressbar.Default(int64(len(order)), "pipeline")
	for _, st := range order {
		bar.Describe(st.Name)
		for _, in := range st.Inputs {
			if _, err := os.Stat(in); err != nil {
				if from, ok := producer[in]; ok {
					return fmt.Errorf("stage %s: input %s missing (produced by stage %s)", st.Name, in, from)
				}
				return fmt.Errorf("stage %s: input %s missing", st.Name, in)
			}
		}
		if err := st.Run(cfg); err != nil {
			return fmt.Errorf("stage %s: %w", st.Name, err)
		}
		if err := bar.Add(1); err != nil {
			return err
		}
	}
	return bar.Finish()
}

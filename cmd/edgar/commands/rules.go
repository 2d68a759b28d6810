package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/razor389/sec-queries/internal/ruletable"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules [COMPANY]",
	Short: "Validate and inspect the rule table",
	Long: `Loads the rule table, reports structural errors and prints the
effective profile for a company, overrides applied.

Example:
  go run ./cmd/edgar rules
  go run ./cmd/edgar rules PRI`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	table, err := ruletable.Load(cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("rule table %s: %w", cfg.RulesPath, err)
	}

	company := ""
	if len(args) == 1 {
		company = args[0]
	}

	fmt.Printf("Rule table: %s\n", cfg.RulesPath)
	if company != "" {
		fmt.Printf("Profile: %s\n\n", company)
	} else {
		fmt.Printf("Profile: default\n\n")
	}

	fmt.Println("Metrics:")
	for _, key := range table.MetricKeys(company) {
		rule, _ := table.Rule(company, key)
		fmt.Printf("  %-28s %d alias(es), strategy %s\n", key, len(rule.Entries), rule.Strategy)
	}

	segments := table.SegmentNames(company)
	if len(segments) > 0 {
		fmt.Println("\nSegments:")
		for _, name := range segments {
			defs := table.SegmentDefs(company, name)
			fmt.Printf("  %-28s %d variant(s)\n", name, len(defs))
		}
	}

	fmt.Println("\nCategories:")
	for _, category := range ruletable.CategoryOrder {
		keys := table.CategoryKeys(company, category)
		fmt.Printf("  %-24s %v\n", category, keys)
	}

	return nil
}

package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gitbridge/internal/domain/commands"
	"github.com/rios0rios0/gitbridge/internal/domain/entities"
)

// CheckController handles the "check" subcommand.
type CheckController struct {
	command commands.Check
}

// NewCheckController creates a new CheckController.
func NewCheckController(command commands.Check) *CheckController {
	return &CheckController{command: command}
}

// GetBind returns the Cobra command metadata for the check controller.
func (it *CheckController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "check",
		Short: "Check the connection to the configured providers",
		Long: `Authenticate against every configured Git provider and report
the account each credential belongs to.

Use --provider to check a single provider.`,
	}
}

// AddFlags adds the check-specific flags to the given Cobra command.
func (it *CheckController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "Only check the provider with this name")
	cmd.Flags().StringP("output", "o", outputTable, "Output format (table, json)")
}

// Execute runs the connection check.
func (it *CheckController) Execute(cmd *cobra.Command, _ []string) {
	providerName, _ := cmd.Flags().GetString("provider")
	output, _ := cmd.Flags().GetString("output")
	if err := validateOutput(output); err != nil {
		logger.Error(err)
		return
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		return
	}

	results, checkErr := it.command.Execute(context.Background(), settings, commands.CheckOptions{
		ProviderName: providerName,
	})
	if results != nil {
		if writeErr := writeCheckResults(cmd, output, results); writeErr != nil {
			logger.Errorf("Failed to write output: %v", writeErr)
		}
	}
	if checkErr != nil {
		logger.Errorf("Check failed: %v", checkErr)
	}
}

type checkRow struct {
	Name     string                `json:"name"`
	Type     entities.ProviderType `json:"type"`
	Username string                `json:"username,omitempty"`
	Error    string                `json:"error,omitempty"`
}

func writeCheckResults(cmd *cobra.Command, output string, results []commands.CheckResult) error {
	rows := make([]checkRow, 0, len(results))
	for _, result := range results {
		row := checkRow{Name: result.Name, Type: result.Type}
		if result.User != nil {
			row.Username = result.User.Username
		}
		if result.Err != nil {
			row.Error = result.Err.Error()
		}
		rows = append(rows, row)
	}

	if output == outputJSON {
		return writeJSON(cmd.OutOrStdout(), rows)
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		status := "ok"
		if row.Error != "" {
			status = row.Error
		}
		cells = append(cells, []string{row.Name, row.Type.String(), row.Username, status})
	}
	return writeTable(cmd.OutOrStdout(), []string{"NAME", "TYPE", "USER", "STATUS"}, cells)
}

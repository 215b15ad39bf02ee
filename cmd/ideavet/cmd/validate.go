package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ideavet/ideavet/internal/fsutil"
	"github.com/ideavet/ideavet/internal/orchestrator"
)

var (
	validateWorkflow    string
	validateInteractive bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [idea.json]",
	Short: "Run a validation workflow over a startup idea",
	Long: `Run a validation workflow over a startup idea described in a JSON
file ('-' reads from stdin). The idea needs at least "name" and
"description"; target_audience, industry, problem_statement, solution,
revenue_model and initial_thoughts refine the analysis.

The resulting report is printed as JSON and saved under the output
directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateWorkflow, "workflow", "w",
		orchestrator.WorkflowFullValidation,
		"workflow to run (full_validation, market_only, mvp_only)")
	validateCmd.Flags().BoolVarP(&validateInteractive, "interactive", "i", false,
		"enable the human approval gate")
}

func runValidate(_ *cobra.Command, args []string) error {
	input, err := readIdeaInput(args[0])
	if err != nil {
		return err
	}

	application, err := buildApp(validateInteractive)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := application.engine.Execute(ctx, validateWorkflow, input)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// readIdeaInput decodes the idea JSON from a file or stdin.
func readIdeaInput(path string) (map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = fsutil.ReadFileScoped(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading idea: %w", err)
	}

	var input map[string]any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parsing idea JSON: %w", err)
	}
	return input, nil
}

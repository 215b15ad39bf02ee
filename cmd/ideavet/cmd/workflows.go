package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ideavet/ideavet/internal/orchestrator"
)

var workflowDescriptions = map[string]string{
	orchestrator.WorkflowFullValidation: "market research, competitors, personas, MVP plan and scored report",
	orchestrator.WorkflowMarketOnly:     "market research only, no score",
	orchestrator.WorkflowMVPOnly:        "MVP planning from previously collected analysis data",
}

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List available workflows",
	Long:  "List the validation workflows and the collaborators they use.",
	RunE:  runWorkflowsList,
}

func init() {
	rootCmd.AddCommand(workflowsCmd)
}

func runWorkflowsList(_ *cobra.Command, _ []string) error {
	application, err := buildApp(false)
	if err != nil {
		return err
	}
	defer application.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WORKFLOW\tDESCRIPTION")
	for _, name := range application.engine.Workflows() {
		fmt.Fprintf(w, "%s\t%s\n", name, workflowDescriptions[name])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Agents:", application.registry.ListAgents())
	fmt.Println("Tools: ", application.registry.ListTools())
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and collaborator availability",
	Long:  "Verify the configuration, the output directory and every registered collaborator.",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	fmt.Println("Checking configuration...")
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("  ✗ configuration: %v\n", err)
		return fmt.Errorf("configuration check failed")
	}
	fmt.Println("  ✓ configuration valid")
	fmt.Printf("  ✓ checkpoint backend: %s\n", cfg.Checkpoint.Backend)

	if err := checkOutputDir(cfg.Output.Dir); err != nil {
		fmt.Printf("  ✗ output directory %s: %v\n", cfg.Output.Dir, err)
		return fmt.Errorf("output directory check failed")
	}
	fmt.Printf("  ✓ output directory writable: %s\n", cfg.Output.Dir)
	fmt.Println()

	fmt.Println("Checking collaborators...")
	fmt.Println()

	application, err := buildApp(false)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results := application.registry.PingAll(ctx)
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	allOk := true
	for _, name := range names {
		if pingErr := results[name]; pingErr != nil {
			fmt.Printf("  ✗ %s: %v\n", name, pingErr)
			allOk = false
		} else {
			fmt.Printf("  ✓ %s\n", name)
		}
	}
	fmt.Println()

	if !allOk {
		return fmt.Errorf("some collaborators are unavailable")
	}
	fmt.Println("All checks passed")
	return nil
}

// checkOutputDir verifies the output directory exists (creating it if
// needed) and accepts writes.
func checkOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	probe := filepath.Join(dir, ".doctor_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return err
	}
	return os.Remove(probe)
}

package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-taint-trace/internal/config"
	"github.com/l3aro/go-taint-trace/pkg/rules"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file interactively",
	Long: `Guides you through setting up gtt configuration step by step.
Creates a config file with the rules to run, scan parallelism, engine limits
and logging settings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	out := config.DefaultConfig()

	// === SECTION 1: Rules ===
	var ruleOptions []huh.Option[string]
	for _, def := range rules.Definitions() {
		ruleOptions = append(ruleOptions, huh.NewOption(def.ID+" - "+def.Description, def.ID).Selected(true))
	}
	var selected []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Rules").
				Description("Select the detectors gtt scan runs").
				Options(ruleOptions...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	if len(selected) < len(ruleOptions) {
		out.Rules = selected
	}

	// === SECTION 2: Scanning ===
	workers := strconv.Itoa(out.Workers)
	callDepth := strconv.Itoa(out.MaxCallDepth)
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Parallel workers").
				Description("Number of files scanned at the same time").
				Placeholder(workers).
				Value(&workers).
				Validate(positiveInt),
			huh.NewInput().
				Title("Maximum call depth").
				Description("How many nested function returns one trace may enter").
				Placeholder(callDepth).
				Value(&callDepth).
				Validate(positiveInt),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	out.Workers, _ = strconv.Atoi(workers)
	out.MaxCallDepth, _ = strconv.Atoi(callDepth)

	// === SECTION 3: Logging ===
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("Info", "info"),
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error", "error"),
				).
				Value(&out.LogLevel),
			huh.NewConfirm().
				Title("JSON logs").
				Description("Write log lines as JSON objects?").
				Value(&out.LogJSON),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 4: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Project (./.gtt/config.yaml)", "project"),
					huh.NewOption("Global (~/.gtt/config.yaml)", "global"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectConfigPath()
	if saveLocationChoice == "global" {
		configPath = config.GlobalConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := out.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	if len(out.Rules) == 0 {
		fmt.Println("Rules: all")
	} else {
		fmt.Printf("Rules: %v\n", out.Rules)
	}
	fmt.Printf("Workers: %d\n", out.Workers)
	fmt.Printf("Max call depth: %d\n", out.MaxCallDepth)
	fmt.Printf("Log level: %s (json: %t)\n", out.LogLevel, out.LogJSON)
	fmt.Println("================================")

	if err := out.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)
	return nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

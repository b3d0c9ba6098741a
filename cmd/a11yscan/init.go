package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/a11yscan/internal/config"
	"github.com/ludo-technologies/a11yscan/internal/constants"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate an a11yscan configuration file",
		Long: `Generate a documented a11yscan configuration file with sensible defaults.

By default, creates .a11yscan.yaml in the current directory with full
documentation. Use --interactive for a guided setup wizard.

Examples:
  # Create .a11yscan.yaml in current directory
  a11yscan init

  # Custom output path
  a11yscan init --config ci/a11yscan.yaml

  # Overwrite existing file
  a11yscan init --force

  # Generate smaller config with essential options only
  a11yscan init --minimal

  # Interactive setup wizard
  a11yscan init -i

  # Write the resolved configuration (defaults, discovered file, A11YSCAN_* variables)
  a11yscan init --effective --config resolved.yaml --force`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with essential options only")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")
	cmd.Flags().Bool("effective", false,
		"Write the resolved configuration instead of a documented template")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")
	effective, _ := cmd.Flags().GetBool("effective")

	out := cmd.OutOrStdout()
	projectType := config.ProjectTypeGeneric
	strictness := config.StrictnessStandard

	if interactive {
		var err error
		projectType, strictness, configPath, err = runInteractiveSetup(out, configPath)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	if effective {
		cfg, err := config.LoadConfigWithTarget("", ".")
		if err != nil {
			return err
		}
		if err := config.SaveConfig(cfg, configPath); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
	} else {
		var content string
		if minimal {
			content = config.GetMinimalConfigTemplate()
		} else {
			content = config.GetFullConfigTemplate(projectType, strictness)
		}

		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	fmt.Fprintf(out, "Created %s\n", displayPath)
	fmt.Fprintln(out, "\nRun 'a11yscan check .' to audit your pages.")

	return nil
}

func runInteractiveSetup(out io.Writer, defaultConfigPath string) (config.ProjectType, config.Strictness, string, error) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "a11yscan Configuration Setup")
	fmt.Fprintln(out, "============================")
	fmt.Fprintln(out)

	projectTypes := []struct {
		Label string
		Value config.ProjectType
	}{
		{"Any HTML files", config.ProjectTypeGeneric},
		{"Static site build output (public/, dist/, _site/)", config.ProjectTypeStaticSite},
		{"Server-side templates (templates/, views/)", config.ProjectTypeTemplates},
	}

	projectPrompt := promptui.Select{
		Label: "What are you auditing?",
		Items: projectTypes,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "\U0001F449 {{ .Label | cyan }}",
			Inactive: "   {{ .Label | white }}",
			Selected: "\U00002705 {{ .Label | green }}",
		},
	}

	projectIdx, _, err := projectPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("project selection cancelled: %w", err)
	}

	fmt.Fprintln(out)

	strictnessLevels := []struct {
		Label       string
		Description string
		Value       config.Strictness
	}{
		{"Standard (recommended)", "WCAG 2.0/2.1 A and AA rules", config.StrictnessStandard},
		{"Relaxed", "WCAG 2.0 A rules, skips region and color-contrast", config.StrictnessRelaxed},
		{"Strict", "Adds WCAG 2.2 AA and best practices, fails fast", config.StrictnessStrict},
	}

	strictnessPrompt := promptui.Select{
		Label: "How strict should the audit be?",
		Items: strictnessLevels,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
			Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
			Selected: "\U00002705 {{ .Label | green }}",
		},
	}

	strictnessIdx, _, err := strictnessPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("strictness selection cancelled: %w", err)
	}

	fmt.Fprintln(out)

	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}

	outputPath, err := outputPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("output path input cancelled: %w", err)
	}
	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	fmt.Fprintln(out)
	return projectTypes[projectIdx].Value, strictnessLevels[strictnessIdx].Value, outputPath, nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/DhavalSuthar-24/miow-context-master/internal/config"
	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
	"github.com/DhavalSuthar-24/miow-context-master/internal/ux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or create the miow configuration",
	Long: `Manage the project configuration stored at .miow/config.yaml.

Examples:
  # Write the default configuration
  miow config init

  # Show the effective configuration (API key redacted)
  miow config show

  # Check the configuration file
  miow config validate

  # Show the configuration file path
  miow config path
`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// resolveConfigPath returns --config or the discovered default.
func resolveConfigPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	paths, err := ux.DiscoverPaths()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile(), nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	redacted := a.cfg.Redacted()
	if outFormat == "text" || outFormat == "" {
		data, err := yaml.Marshal(redacted)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", a.configPath, data)
		return nil
	}
	return output(cmd, redacted)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !configInitForce {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("config file already exists: %s", path)).
			WithSuggestion("Pass --force to overwrite it")
	}
	if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
		return ux.EnhanceError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	if cfg.Provider.APIKey == "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: no API key set for provider %s\n", cfg.Provider.Name)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

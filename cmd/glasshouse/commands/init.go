package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/glasshouse/internal/cli/prompt"
	"github.com/marmos91/glasshouse/pkg/config"
	"github.com/marmos91/glasshouse/pkg/store"
)

var (
	initForce          bool
	initNonInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a glasshouse configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/glasshouse/config.yaml,
and a short interactive prompt walks through the settings most worth customizing on first
run. Use --non-interactive to skip the prompts and write the defaults untouched.

Examples:
  # Interactive first-run setup
  glasshouse init

  # Skip prompts, write defaults as-is
  glasshouse init --non-interactive

  # Initialize with custom path
  glasshouse init --config /etc/glasshouse/config.yaml

  # Force overwrite existing config
  glasshouse init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "Skip interactive prompts and write defaults")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()
	path := configFile
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	cfg := config.GetDefaultConfig()
	if !initNonInteractive {
		if err := promptForConfig(cfg); err != nil {
			if prompt.IsAborted(err) {
				fmt.Println("\nAborted.")
				return nil
			}
			return err
		}
	}

	cfg.Database.ApplyDefaults()
	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database configuration failed validation: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("configuration failed validation: %w", err)
	}
	if err := writeConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Review the configuration file to customize interfaces, banners, and enrichment keys")
	fmt.Println("  2. Start the honeypot with: glasshouse start")
	fmt.Printf("  3. Or specify a custom config: glasshouse start --config %s\n", path)

	return nil
}

// promptForConfig walks the operator through the settings most worth
// customizing on first run, leaving everything else at its default.
func promptForConfig(cfg *config.Config) error {
	fmt.Println("Setting up a new glasshouse honeypot. Press Enter to accept a default.")
	fmt.Println()

	port, err := prompt.InputInt("SSH listen port", 2222)
	if err != nil {
		return err
	}
	cfg.Interfaces = []string{":" + strconv.Itoa(port)}

	hostname, err := prompt.Input("Hostname shown in the shell prompt", cfg.Hostname)
	if err != nil {
		return err
	}
	cfg.Hostname = hostname

	serverID, err := prompt.Input("Server ID (used to tag recorded evidence)", cfg.ServerID)
	if err != nil {
		return err
	}
	cfg.ServerID = serverID

	sftp, err := prompt.Confirm("Enable the SFTP subsystem", cfg.EnableSFTP)
	if err != nil {
		return err
	}
	cfg.EnableSFTP = sftp

	wantReputation, err := prompt.Confirm("Enrich attacker IPs with AbuseIPDB reputation data", false)
	if err != nil {
		return err
	}
	if wantReputation {
		apiKey, err := prompt.Password("AbuseIPDB API key")
		if err != nil {
			return err
		}
		cfg.Reputation.APIKey = strings.TrimSpace(apiKey)
	}

	driver, err := prompt.SelectString("Database driver", []string{"sqlite", "postgres"})
	if err != nil {
		return err
	}
	cfg.Database.Type = store.DatabaseType(driver)

	if cfg.Database.Type == store.DatabaseTypePostgres {
		if err := promptForPostgres(&cfg.Database.Postgres); err != nil {
			return err
		}
	}

	return nil
}

func promptForPostgres(pg *store.PostgresConfig) error {
	host, err := prompt.InputRequired("Postgres host")
	if err != nil {
		return err
	}
	pg.Host = host

	database, err := prompt.InputRequired("Postgres database name")
	if err != nil {
		return err
	}
	pg.Database = database

	user, err := prompt.InputRequired("Postgres user")
	if err != nil {
		return err
	}
	pg.User = user

	password, err := prompt.Password("Postgres password")
	if err != nil {
		return err
	}
	pg.Password = password

	return nil
}

func writeConfig(cfg *config.Config, path string) error {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}
	return config.SaveConfig(cfg, path)
}

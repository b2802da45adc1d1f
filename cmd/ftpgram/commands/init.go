package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ftpgram/ftpgram/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample ftpgram configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/ftpgram/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  ftpgram init

  # Initialize with custom path
  ftpgram init --config /etc/ftpgram/config.yaml

  # Force overwrite existing config
  ftpgram init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Set your bot token and destination chat ids in the config file")
	fmt.Println("  2. Start the relay with: ftpgram start")
	fmt.Printf("  3. Or specify custom config: ftpgram start --config %s\n", configPath)
	fmt.Println("\nSecurity note:")
	fmt.Println("  The config file carries your bot token; it is written with mode 0600.")
	fmt.Println("  You can also supply the token via environment variable:")
	fmt.Println("    export FTPGRAM_TELEGRAM_TOKEN=123456:your-token")

	return nil
}

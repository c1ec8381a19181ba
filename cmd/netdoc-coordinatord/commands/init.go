package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netdoc/netdoc/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample configuration file",
	Long: `Write a sample netdoc-coordinatord configuration file.

By default the file is created at ./config.yaml. Use --config to choose a
different path, and --force to overwrite an existing file.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if path == "" {
		path = "config.yaml"
	}

	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists; pass --force to overwrite", path)
		}
	}

	if err := config.Save(config.Default(), path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", path)
	fmt.Println("Edit it to set database.type/dsn and server addresses, then run:")
	fmt.Printf("  netdoc-coordinatord start --config %s\n", path)
	return nil
}

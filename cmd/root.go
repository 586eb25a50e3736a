package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/agubarev/orgtree/internal/config"
	"github.com/agubarev/orgtree/pkg/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile   string
	debugMode bool
	cfg       config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "orgtree",
	Short: "Hierarchical menus, departments, dictionaries and posts of an admin console.",
	Long: `orgtree keeps four independent forests (menu, dept, dict and post),
serves them over an HTTP API and inspects them from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		if cfg, err = config.Load(cfgFile); err != nil {
			return err
		}

		if debugMode {
			cfg.Log.Debug = true
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.orgtree.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "verbose logging")
}

// processLogger returns the logger of a long running process
func processLogger() (*zap.Logger, error) {
	return util.DefaultLogger(cfg.Log.Debug, cfg.Log.Dir)
}

// commandLogger keeps one-shot commands quiet unless debugging
func commandLogger() (*zap.Logger, error) {
	if !cfg.Log.Debug {
		return zap.NewNop(), nil
	}

	return util.DefaultLogger(true, "")
}

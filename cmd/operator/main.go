// Package main provides the operator CLI for inspecting the assistant core and
// running deployment tasks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/easeaico/gridcare/internal/assistant"
	"github.com/easeaico/gridcare/internal/config"
	"github.com/easeaico/gridcare/internal/customer"
	"github.com/easeaico/gridcare/internal/types"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the flag-backed settings shared by every command.
type cli struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "operator",
		Short:         "gridcare operator - inspection and operations CLI",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			assistant.SetupLogging(cmd.ErrOrStderr(), c.v.GetString("log_level"))
		},
	}

	root.PersistentFlags().String("config", "", "YAML config file")
	root.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().String("customer", "", "customer profile JSON file")
	root.PersistentFlags().String("customer-id", "", "customer ID to load from the database")

	_ = c.v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = c.v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	_ = c.v.BindPFlag("customer", root.PersistentFlags().Lookup("customer"))
	_ = c.v.BindPFlag("customer_id", root.PersistentFlags().Lookup("customer-id"))
	c.v.SetEnvPrefix("OPERATOR")
	c.v.AutomaticEnv()

	root.AddCommand(
		c.classifyCmd(),
		c.sentimentCmd(),
		c.predictCmd(),
		c.analyzeCmd(),
		c.insightsCmd(),
		c.statsCmd(),
		c.similarCmd(),
		c.askCmd(),
		c.migrateCmd(),
		c.validateCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) loadConfig() (config.Config, error) {
	return config.Load(c.v.GetString("config"))
}

// loadCustomer reads --customer from disk, or --customer-id from the database.
func (c *cli) loadCustomer(ctx context.Context, cfg *config.Config) (*types.CustomerProfile, error) {
	if path := c.v.GetString("customer"); path != "" {
		return customer.LoadFile(path)
	}
	id := c.v.GetString("customer_id")
	if id == "" {
		return nil, fmt.Errorf("--customer or --customer-id is required")
	}
	accessor, closeFn, err := assistant.OpenAccessor(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	profile, err := accessor.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("customer %q not found", id)
	}
	return profile, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

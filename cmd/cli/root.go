package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Settings keys; each is also read from BARTER_<KEY> and the config file.
const (
	keyURL     = "url"
	keyTimeout = "timeout"
	keyToken   = "token"
	keyJSON    = "json"
)

func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "barter",
		Short:         "Barter CLI",
		Long:          "A command line interface for trading items and checking presence through the Barter API.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(v, cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default $HOME/.barter.yaml)")
	flags.String(keyURL, "http://localhost:8080", "Base URL of the Barter API")
	flags.Duration(keyTimeout, 10*time.Second, "Request timeout")
	flags.String(keyToken, "", "Bearer token issued by the auth provider")
	flags.Bool(keyJSON, false, "Print raw JSON responses")

	for _, key := range []string{keyURL, keyTimeout, keyToken, keyJSON} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}

	rootCmd.AddCommand(
		newTradeCmd(v),
		newAccountCmd(v),
		newInventoryCmd(v),
		newPresenceCmd(v),
		newLedgerCmd(v),
	)

	return rootCmd
}

func loadConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix("barter")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}

	v.SetConfigName(".barter")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func clientFrom(v *viper.Viper) *apiClient {
	return newAPIClient(v.GetString(keyURL), v.GetString(keyToken), v.GetDuration(keyTimeout))
}

// printResult writes raw JSON when --json is set, otherwise the formatted text.
func printResult(cmd *cobra.Command, v *viper.Viper, raw []byte, text func() string) error {
	if v.GetBool(keyJSON) {
		var pretty any
		if err := json.Unmarshal(raw, &pretty); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(pretty)
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), text())
	return err
}

package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scottbw/dvnt/internal/completion"
	"github.com/scottbw/dvnt/internal/config"
	"github.com/scottbw/dvnt/internal/output"
)

// configKeys maps each settable key to a parser that validates and
// coerces its string form into the stored type.
var configKeys = map[string]func(string) (any, error){
	"base_url":       parseURLValue,
	"auth_url":       parseURLValue,
	"token_url":      parseURLValue,
	"client_id":      parseStringValue,
	"client_secret":  parseStringValue,
	"redirect_port":  parsePortValue,
	"scope":          parseStringValue,
	"mature_content": parseBoolValue,
	"page_size":      parsePageSizeValue,
	"format":         parseFormatValue,
	"verbose":        parseVerboseValue,
}

func parseStringValue(v string) (any, error) { return v, nil }

func configKeyNames() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseURLValue(v string) (any, error) {
	if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
		return nil, fmt.Errorf("must be an http(s) URL")
	}
	return config.NormalizeBaseURL(v), nil
}

func parseBoolValue(v string) (any, error) {
	switch strings.ToLower(v) {
	case "true", "1", "on", "yes":
		return true, nil
	case "false", "0", "off", "no":
		return false, nil
	}
	return nil, fmt.Errorf("must be true or false")
}

func parsePortValue(v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 65535 {
		return nil, fmt.Errorf("must be a port number")
	}
	return n, nil
}

func parsePageSizeValue(v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 120 {
		return nil, fmt.Errorf("must be between 1 and 120")
	}
	return n, nil
}

func parseFormatValue(v string) (any, error) {
	switch v {
	case "auto", "json", "yaml", "styled", "quiet":
		return v, nil
	}
	return nil, fmt.Errorf("must be one of auto, json, yaml, styled, quiet")
}

func parseVerboseValue(v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 2 {
		return nil, fmt.Errorf("must be 0, 1 or 2")
	}
	return n, nil
}

// NewConfigCmd creates the config command group.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change configuration",
		Long: `Inspect and change configuration. Values are resolved from flags,
DVNT_* environment variables, the global config file and built-in
defaults, in that order. 'config set' writes to the global file.`,
		RunE: runConfigShow,
	}

	cmd.AddCommand(
		newConfigGetCmd(),
		newConfigSetCmd(),
		newConfigUnsetCmd(),
		newConfigListCmd(),
	)

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "get <key>",
		Short:             "Show one configuration value",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.ConfigKeyCompletion(configKeyNames()),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			values := configValues(app.Config)
			entry, ok := values[args[0]]
			if !ok {
				return output.ErrUsageHint(
					fmt.Sprintf("unknown config key %q", args[0]),
					"Run 'dvnt config list' to see available keys")
			}

			return app.OK(entry, output.WithSummary(fmt.Sprintf("%v", entry["value"])))
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "set <key> <value>",
		Short:             "Write a configuration value to the global file",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completion.ConfigKeyCompletion(configKeyNames()),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			key, raw := args[0], args[1]
			parse, ok := configKeys[key]
			if !ok {
				return output.ErrUsageHint(
					fmt.Sprintf("unknown config key %q", key),
					"Run 'dvnt config list' to see available keys")
			}
			value, err := parse(raw)
			if err != nil {
				return output.ErrUsage(fmt.Sprintf("invalid value for %s: %v", key, err))
			}

			if err := config.Save(map[string]any{key: value}); err != nil {
				return err
			}

			return app.OK(map[string]any{
				"key":   key,
				"value": value,
			}, output.WithSummary(fmt.Sprintf("%s = %v", key, value)))
		},
	}
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "unset <key>",
		Short:             "Remove a key from the global config file",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.ConfigKeyCompletion(configKeyNames()),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			key := args[0]
			if _, ok := configKeys[key]; !ok {
				return output.ErrUsageHint(
					fmt.Sprintf("unknown config key %q", key),
					"Run 'dvnt config list' to see available keys")
			}

			if err := config.Save(map[string]any{key: nil}); err != nil {
				return err
			}

			return app.OK(map[string]any{"key": key}, output.WithSummary(key+" unset"))
		},
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"show"},
		Short:   "Show all configuration values and where they came from",
		RunE:    runConfigShow,
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	app, err := requireApp(cmd)
	if err != nil {
		return err
	}

	values := configValues(app.Config)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%-16s %-24v (%s)\n", k, values[k]["value"], values[k]["source"])
	}

	return app.OK(values, output.WithSummary(strings.TrimRight(b.String(), "\n")))
}

// configValues flattens the resolved config into key -> {value, source}.
// The client secret is masked; credentials have their own store.
func configValues(cfg *config.Config) map[string]map[string]any {
	source := func(key string) string {
		if s, ok := cfg.Sources[key]; ok {
			return s
		}
		return string(config.SourceDefault)
	}

	secret := ""
	if cfg.ClientSecret != "" {
		secret = "********"
	}

	verbose := 0
	if cfg.Verbose != nil {
		verbose = *cfg.Verbose
	}

	values := map[string]any{
		"base_url":       cfg.BaseURL,
		"auth_url":       cfg.AuthURL,
		"token_url":      cfg.TokenURL,
		"client_id":      cfg.ClientID,
		"client_secret":  secret,
		"redirect_port":  cfg.RedirectPort,
		"scope":          cfg.Scope,
		"mature_content": cfg.MatureContent,
		"page_size":      cfg.PageSize,
		"format":         cfg.Format,
		"verbose":        verbose,
	}

	out := make(map[string]map[string]any, len(values))
	for k, v := range values {
		out[k] = map[string]any{"value": v, "source": source(k)}
	}
	return out
}

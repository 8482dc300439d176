package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/tagwm/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize the configuration",
	}
	cmd.AddCommand(
		newConfigPathCmd(opts),
		newConfigInitCmd(opts),
		newConfigCheckCmd(opts),
		newConfigPrintCmd(opts),
		newConfigExplainCmd(opts),
	)
	return cmd
}

func newConfigPathCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.resolvePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.resolvePath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

var errInvalidConfig = errors.New("config has rejected values")

func newConfigCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if len(res.Warnings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "config: ok")
				return nil
			}
			for _, w := range res.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), w)
			}
			return errInvalidConfig
		},
	}
}

func newConfigPrintCmd(opts *rootOptions) *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if !defaults {
				res, err := loadConfig(opts)
				if err != nil {
					return err
				}
				cfg = res.Config
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "Print built-in defaults (no file)")
	return cmd
}

func newConfigExplainCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <yaml.path>",
		Short: "Show a config value and where it came from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfig(opts)
			if err != nil {
				return err
			}
			value, src, err := config.Explain(res, args[0])
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(value)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "path: %s\n", args[0])
			fmt.Fprintf(w, "source: %s\n", formatSource(src))
			fmt.Fprintf(w, "value:\n%s", out)
			return nil
		},
	}
}

func loadConfig(opts *rootOptions) (*config.LoadResult, error) {
	path, err := opts.resolvePath()
	if err != nil {
		return nil, err
	}
	return config.LoadFromPath(path)
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		return "default"
	default:
		return string(src.Kind)
	}
}

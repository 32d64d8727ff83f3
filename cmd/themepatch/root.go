package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fjelltone/themepatch"
	"github.com/fjelltone/themepatch/internal/config"
	"github.com/fjelltone/themepatch/internal/messages"
)

// rootFlags holds the persistent flag values shared by every subcommand.
type rootFlags struct {
	jarPath    string
	cacheRoot  string
	configPath string
	timeout    time.Duration
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.jarPath, "jar", "", messages.RootFlagJar)
	cmd.PersistentFlags().StringVar(&flags.cacheRoot, "cache-root", "", messages.RootFlagCacheRoot)
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", messages.RootFlagConfig)
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, messages.RootFlagTimeout)
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, messages.RootFlagVerbose)
	// cobra only installs its default version flag when none is registered.
	cmd.Flags().Bool("version", false, messages.RootFlagVersion)

	cmd.AddCommand(newPatchCmd(flags))
	cmd.AddCommand(newRestoreCmd(flags))
	cmd.AddCommand(newStatusCmd(flags))
	cmd.AddCommand(newBackupsCmd(flags))
	cmd.AddCommand(newFetchToolCmd(flags))
	cmd.AddCommand(newDoctorCmd(flags))
	return cmd
}

// loadConfig reads the config file named by --config, or the default path
// when it exists. An explicitly named file must load.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	if flags.configPath != "" {
		return config.Load(flags.configPath)
	}
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	return config.LoadOptional(path)
}

// buildOptions merges config file values and command-line flags into
// Manager options. Flags win over the file.
func buildOptions(cmd *cobra.Command, flags *rootFlags) (themepatch.Options, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return themepatch.Options{}, err
	}
	opts := themepatch.Options{
		CacheRoot:  cfg.CacheRoot,
		TempRoot:   cfg.ResolveTempRoot(),
		JavaPath:   cfg.JavaPath,
		ToolURL:    cfg.ToolURL,
		ToolSHA256: cfg.ToolSHA256,
		Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	if flags.cacheRoot != "" {
		opts.CacheRoot = flags.cacheRoot
	}
	if flags.timeout > 0 {
		opts.Timeout = flags.timeout
	}
	if flags.verbose {
		opts.LogOutput = cmd.ErrOrStderr()
	}
	return opts, nil
}

// newManager builds a Manager from the merged flag and config values.
func newManager(cmd *cobra.Command, flags *rootFlags) (*themepatch.Manager, error) {
	opts, err := buildOptions(cmd, flags)
	if err != nil {
		return nil, err
	}
	return themepatch.NewManager(opts)
}

// requireJar validates that --jar was provided.
func requireJar(flags *rootFlags) (string, error) {
	if flags.jarPath == "" {
		return "", fmt.Errorf(messages.RootJarRequired)
	}
	return flags.jarPath, nil
}

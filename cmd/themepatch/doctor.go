package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fjelltone/themepatch/internal/acquire"
	"github.com/fjelltone/themepatch/internal/elevate"
	"github.com/fjelltone/themepatch/internal/jre"
	"github.com/fjelltone/themepatch/internal/messages"
)

type checkStatus int

const (
	statusPass checkStatus = iota
	statusWarn
	statusFail
)

type checkResult struct {
	name    string
	status  checkStatus
	message string
}

func newDoctorCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.DoctorUse,
		Short: messages.DoctorShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			cacheRoot, err := cfg.ResolveCacheRoot()
			if err != nil {
				return err
			}
			if flags.cacheRoot != "" {
				cacheRoot = flags.cacheRoot
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprint(out, messages.DoctorHeaderFmt)

			results := []checkResult{
				checkJava(cmd, cfg.JavaPath),
				checkElevation(cfg.ResolveTempRoot()),
				checkTransfer(cacheRoot, cfg.ToolURL, cfg.ToolSHA256),
				checkCache(cacheRoot),
			}

			hasFail := false
			for _, r := range results {
				printCheck(out, r)
				if r.status == statusFail {
					hasFail = true
				}
			}
			if hasFail {
				return fmt.Errorf(messages.DoctorFailed)
			}
			return nil
		},
	}
}

func checkJava(cmd *cobra.Command, override string) checkResult {
	finder := jre.NewFinder(runtime.GOOS, override, io.Discard)
	path, err := finder.Find(cmd.Context())
	if err != nil {
		return checkResult{messages.DoctorCheckJava, statusFail, messages.DoctorJavaMissing}
	}
	return checkResult{messages.DoctorCheckJava, statusPass, fmt.Sprintf(messages.DoctorJavaOKFmt, path)}
}

func checkElevation(tempRoot string) checkResult {
	platform := elevate.DefaultPlatform(runtime.GOOS, tempRoot, io.Discard)
	if !platform.HasMechanism() {
		return checkResult{messages.DoctorCheckElevate, statusWarn, messages.DoctorElevateMiss}
	}
	return checkResult{messages.DoctorCheckElevate, statusPass, fmt.Sprintf(messages.DoctorElevateOKFmt, platform.MechanismName())}
}

func checkTransfer(cacheRoot string, toolURL string, toolSHA string) checkResult {
	acquirer := acquire.New(cacheRoot, toolURL, "", toolSHA, io.Discard)
	name, ok := acquirer.TransferToolName()
	if !ok {
		return checkResult{messages.DoctorCheckFetch, statusFail, messages.DoctorFetchMissing}
	}
	return checkResult{messages.DoctorCheckFetch, statusPass, fmt.Sprintf(messages.DoctorFetchOKFmt, name)}
}

func checkCache(cacheRoot string) checkResult {
	if err := os.MkdirAll(cacheRoot, 0o755); err != nil {
		return checkResult{messages.DoctorCheckCache, statusFail, fmt.Sprintf(messages.DoctorCacheFailFmt, err)}
	}
	probe := filepath.Join(cacheRoot, ".doctor-probe")
	f, err := os.OpenFile(probe, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return checkResult{messages.DoctorCheckCache, statusFail, fmt.Sprintf(messages.DoctorCacheFailFmt, err)}
	}
	_ = f.Close()
	_ = os.Remove(probe)
	return checkResult{messages.DoctorCheckCache, statusPass, fmt.Sprintf(messages.DoctorCacheOKFmt, cacheRoot)}
}

func printCheck(out io.Writer, r checkResult) {
	var label string
	switch r.status {
	case statusPass:
		label = color.GreenString(messages.DoctorStatusPass)
	case statusWarn:
		label = color.YellowString(messages.DoctorStatusWarn)
	case statusFail:
		label = color.RedString(messages.DoctorStatusFail)
	}
	_, _ = fmt.Fprintf(out, messages.DoctorResultFmt, label, r.name, r.message)
}

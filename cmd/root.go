/*
Copyright (c) DataVeil, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dataveil/dataveil/src/config"
	"github.com/dataveil/dataveil/src/lockfile"
	"github.com/dataveil/dataveil/src/utils"
)

var (
	cfgFile   string
	outputDir string
	logDir    string
	lockFile  *lockfile.Lockfile
)

var rootCmd = &cobra.Command{
	Use:   "dataveil",
	Short: "A CLI tool to anonymize sensitive fields in structured data files",
	Long: `A CLI tool that rewrites sensitive fields in CSV and JSON data files with
realistic fake values while preserving referential consistency. The same input
value always maps to the same substitute within a run; email domains, IP
subnets, CIDR masks and coordinate locality survive the rewrite.`,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		overrides, err := initConfig(cmd)
		if err != nil {
			utils.ErrExit("loading config: %v", err)
		}
		if err := config.ValidateLogLevel(); err != nil {
			utils.ErrExit("%v", err)
		}
		if outputDir != "" && utils.FileOrFolderExists(outputDir) {
			if cmd.Use != "version" {
				lockOutputDir(cmd.Use)
			}
			InitLogging(lo.Ternary(logDir != "", logDir, outputDir), cmd.Use == "version", cmd.Use)
			for _, override := range overrides {
				log.Infof("flag %q set from config key %q = %q", override.FlagName, override.ConfigKey, override.Value)
			}
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			os.Exit(0)
		}
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if outputDir != "" && utils.FileOrFolderExists(outputDir) && cmd.Use != "version" {
			unlockOutputDir()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"path to the config file (default is dataveil-config.yaml in the home directory)")

	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", "info",
		"log level for the log file: trace, debug, info, warn, error, fatal, panic")

	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "",
		"directory for the log file (default is the output directory)")
}

func lockOutputDir(cmdName string) {
	lockFileName := fmt.Sprintf(".%sLockfile.lck", cmdName)
	lockFilePath, err := filepath.Abs(filepath.Join(outputDir, lockFileName))
	if err != nil {
		utils.ErrExit("Failed to get absolute path for lockfile %q: %v\n", lockFileName, err)
	}
	lockFile = lockfile.NewLockfile(lockFilePath)
	lockFile.Lock()
}

func unlockOutputDir() {
	lockFile.Unlock()
}

package cmd

import (
	"fmt"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dataveil/dataveil/src/utils"
)

var allowedGlobalConfigKeys = mapset.NewThreadUnsafeSet[string](
	"output-dir", "log-level", "log-dir",
)

var allowedAnonymizeConfigKeys = mapset.NewThreadUnsafeSet[string](
	"name-field", "email-field", "id-field", "host-field", "ip-field",
	"coordinate-field", "file-format", "data-dir", "delimiter", "deterministic",
	"parallel-jobs", "cidr-keep-host-bits", "report", "disable-pb",
)

// Define allowed nested sections
var allowedConfigSections = map[string]mapset.Set[string]{
	"anonymize": allowedAnonymizeConfigKeys,
}

// ConfigFlagOverride represents a CLI flag whose value was set from the config file.
// It captures the flag name, the corresponding config key that supplied the value,
// and the final value that was applied. This is useful for logging and debugging
// which flags were influenced by configuration during command execution.
type ConfigFlagOverride struct {
	FlagName  string
	ConfigKey string
	Value     string
}

/*
initConfig initializes the configuration for the given Cobra command.

	It performs the following steps:
	 1. Creates a new Viper instance to isolate config handling for the command.
	 2. Loads the config file if explicitly provided via --config, or defaults to ~/dataveil-config.yaml.
	 3. Reads and validates the configuration file for allowed global keys, sections, and section keys.
	 4. Binds Viper config values to Cobra flags, giving priority to command-line flags over config values.
	 5. Returns a slice of ConfigFlagOverride structs, which represent the flags that were set from the config file.
	 6. If any error occurs during the process, it returns the error.

	This setup ensures CLI > Config precedence
*/
func initConfig(cmd *cobra.Command) ([]ConfigFlagOverride, error) {
	v := viper.New()

	// Precedence of which config file to use:
	// CLI Flag > ENV Variable > Default config file in home directory
	if cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(cfgFile)
	} else if os.Getenv("DATAVEIL_CONFIG_FILE") != "" {
		// passed as an ENV variable by the name DATAVEIL_CONFIG_FILE
		v.SetConfigFile(os.Getenv("DATAVEIL_CONFIG_FILE"))
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		// Search config in home directory with name "dataveil-config" (without extension).
		v.AddConfigPath(home)
		v.SetConfigName("dataveil-config")
		v.SetConfigType("yaml")
	}

	// If a config file is found, read it in.
	if err := v.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", v.ConfigFileUsed())
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Validate the config file for allowed keys and sections
	err := validateConfigFile(v)
	if err != nil {
		return nil, err
	}

	// Bind the config values to the Cobra command flags
	overrides, err := bindCobraFlagsToViper(cmd, v)
	if err != nil {
		return nil, fmt.Errorf("failed to bind cobra flags to viper: %w", err)
	}

	return overrides, nil
}

/*
validateConfigFile checks the loaded configuration for correctness.

	It performs the following validations:
	1. Ensures that all global-level keys (non-nested) are in the allowed list.
	2. Ensures that all section names (e.g., anonymize) are known and valid.
	3. Ensures that all nested keys inside each section are valid for that section.

	Any invalid global keys, unknown sections, or invalid section keys are collected and printed.
	If any validation error is found, an error is returned.

	This helps catch misconfigurations early and provides comprehensive feedback to the user.
*/
func validateConfigFile(v *viper.Viper) error {

	invalidGlobalKeys := mapset.NewThreadUnsafeSet[string]()
	invalidSectionKeys := make(map[string]mapset.Set[string])
	invalidSections := mapset.NewThreadUnsafeSet[string]()

	for _, key := range v.AllKeys() {
		parts := strings.Split(key, ".")
		if len(parts) == 1 {
			// Check global level keys
			if !allowedGlobalConfigKeys.Contains(key) {
				invalidGlobalKeys.Add(key)
			}
		} else {
			// Validate section-based keys
			// The section is the first part of the key, the rest of the parts combined using "." are the nested key
			// For example: "a.b.c" -> section: "a", nestedKey: "b.c"
			section := parts[0]
			nestedKey := strings.Join(parts[1:], ".")

			allowedKeys, ok := allowedConfigSections[section]
			if !ok {
				// Unknown section
				invalidSections.Add(section)
				continue
			}

			if !allowedKeys.Contains(nestedKey) {
				// Invalid key inside a known section
				if _, exists := invalidSectionKeys[section]; !exists {
					invalidSectionKeys[section] = mapset.NewThreadUnsafeSet[string]()
				}
				invalidSectionKeys[section].Add(nestedKey)
			}
		}
	}

	// If invalid configurations exist, print them
	if invalidGlobalKeys.Cardinality() > 0 || len(invalidSectionKeys) > 0 || invalidSections.Cardinality() > 0 {
		if invalidGlobalKeys.Cardinality() > 0 {
			fmt.Printf("%s [%s]\n", color.RedString("Invalid global config keys:"), strings.Join(invalidGlobalKeys.ToSlice(), ", "))
		}
		for section, keys := range invalidSectionKeys {
			fmt.Printf("%s [%s]\n", color.RedString(fmt.Sprintf("Invalid keys in section '%s':", section)), strings.Join(keys.ToSlice(), ", "))
		}
		if invalidSections.Cardinality() > 0 {
			fmt.Printf("%s [%s]\n", color.RedString("Invalid sections:"), strings.Join(invalidSections.ToSlice(), ", "))
		}

		// Return a general error message
		return fmt.Errorf("found invalid configurations in config file: %s", v.ConfigFileUsed())
	}

	return nil
}

/*
bindCobraFlagsToViper binds configuration values from a Viper instance to the flags of a given Cobra command.

	It performs the following actions:
	 1. Derives a config key prefix based on the command path (replacing spaces with hyphens).
	 2. For each flag in the command that was not already set by the user:
	    - Checks for a matching value in Viper using the full prefixed key.
	    - Falls back to checking the global (non-prefixed) key.
	 3. If a value is found in Viper, the corresponding flag is set with that value.
	 4. If any error occurs during binding, it stops further processing and returns the error.
	 5. Also returns a slice of ConfigFlagOverride structs, which represent the flags that were set from the config file. Should only be used if there are no errors.

	This function allows users to configure flags through the config file or environment variables,
	while still letting command-line input take precedence.
*/
func bindCobraFlagsToViper(cmd *cobra.Command, v *viper.Viper) ([]ConfigFlagOverride, error) {
	var bindErr error
	var overrides []ConfigFlagOverride

	subCmdPath := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name())
	subCmdPath = strings.TrimSpace(subCmdPath) // remove leading space if any
	// Replace spaces with hyphens
	configKeyPrefix := strings.ReplaceAll(subCmdPath, " ", "-")

	setFlagFromConfig := func(f *pflag.Flag, configKey string) {
		if f.Value.Type() == "stringArray" {
			// A list-valued config key feeds the array one element per Set call.
			// A scalar value is read as a comma-separated list.
			var values []string
			if s, ok := v.Get(configKey).(string); ok {
				values = utils.CsvStringToSlice(s)
			} else {
				values = v.GetStringSlice(configKey)
			}
			for _, val := range values {
				if err := cmd.Flags().Set(f.Name, val); err != nil {
					bindErr = err
					return
				}
			}
			overrides = append(overrides, ConfigFlagOverride{
				FlagName:  f.Name,
				ConfigKey: configKey,
				Value:     strings.Join(values, ", "),
			})
			return
		}
		val := v.GetString(configKey)
		if err := cmd.Flags().Set(f.Name, val); err != nil {
			bindErr = err
			return
		}
		overrides = append(overrides, ConfigFlagOverride{
			FlagName:  f.Name,
			ConfigKey: configKey,
			Value:     val,
		})
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Changed {
			return // Skip already-set flags or if an error occurred
		}

		// Check for <command_path>.<flagname>
		if v.IsSet(configKeyPrefix + "." + f.Name) {
			setFlagFromConfig(f, configKeyPrefix+"."+f.Name)
		} else if v.IsSet(f.Name) {
			// Bind the global flag from viper to cmd
			setFlagFromConfig(f, f.Name)
		}
		// If the flag is not set in viper, do nothing and leave it as is
		// This allows the flag to retain its default value or the value set by the user in the command line
	})

	return overrides, bindErr
}

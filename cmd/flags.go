package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bindFlags binds flags to viper configuration keys so a flag, when set,
// overrides the file and environment.
func bindFlags(flags *pflag.FlagSet, bindings map[string]string) {
	for flagName, configKey := range bindings {
		if flag := flags.Lookup(flagName); flag != nil {
			_ = viper.BindPFlag(configKey, flag)
		}
	}
}

// OutputFlags holds the output format flag shared by listing commands.
type OutputFlags struct {
	Format string
}

// AddOutputFlags adds --format/-f to cmd, validated against formats.
func AddOutputFlags(cmd *cobra.Command, formats ...string) *OutputFlags {
	flags := &OutputFlags{}
	cmd.Flags().StringVarP(&flags.Format, "format", "f", formats[0],
		fmt.Sprintf("Output format (%s)", strings.Join(formats, "|")))
	AddFlagValidation(cmd, "format", func(value string) error {
		return ValidateFormat(value, formats)
	})
	return flags
}

// ValidateFormat reports an error naming the supported formats.
func ValidateFormat(format string, supported []string) error {
	for _, s := range supported {
		if strings.EqualFold(format, s) {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q, must be one of: %s", format, strings.Join(supported, ", "))
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

package config

import (
	"os"

	"github.com/spf13/pflag"
)

// Flags são as opções de linha de comando comuns aos binários.
type Flags struct {
	ConfigPath string
	Help       bool
}

// ParseFlags lê --config (padrão: RESERVAS_CONFIG) de args.
func ParseFlags(name string, args []string) (Flags, *pflag.FlagSet, error) {
	var flags Flags
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.StringVarP(&flags.ConfigPath, "config", "c", os.Getenv(EnvConfigFile), "path to the YAML config file")
	flagSet.BoolVarP(&flags.Help, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			flags.Help = true
			return flags, flagSet, nil
		}
		return flags, flagSet, err
	}
	return flags, flagSet, nil
}

// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	log "github.com/inconshreveable/log15"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	versionKey  = "version"
	logLevelKey = "log-level"
)

type params struct {
	version  bool
	logLevel log.Lvl
}

func buildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("calculatorvm", pflag.ContinueOnError)

	fs.Bool(versionKey, false, "If true, prints the VM's name and version and quits")
	fs.String(logLevelKey, "info", "Log level used until the chain config is read")

	return fs
}

// getViper returns the viper environment for the plugin binary
func getViper(args []string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("calculatorvm")
	v.AutomaticEnv()

	fs := buildFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	return v, nil
}

func parseParams(args []string) (params, error) {
	v, err := getViper(args)
	if err != nil {
		return params{}, err
	}

	lvl, err := log.LvlFromString(v.GetString(logLevelKey))
	if err != nil {
		return params{}, fmt.Errorf("invalid %s: %w", logLevelKey, err)
	}
	return params{
		version:  v.GetBool(versionKey),
		logLevel: lvl,
	}, nil
}

// Package config resolves connection settings from flags, environment and
// an optional configuration file, and sets log verbosity.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DefaultLogLevel is used when no -v flag is passed.
const DefaultLogLevel = log.WarnLevel

// connectionKeys are registered up front so environment-only values are seen
// by Unmarshal.
var connectionKeys = map[string]any{
	"url":        "",
	"username":   "",
	"password":   "",
	"insecure":   false,
	"datacenter": "",
	"ca-file":    "",
}

// SetVerboseMode switches logs between very, middly and non verbose.
func SetVerboseMode(level int) {
	var reportCaller bool
	switch level {
	case 0:
		log.SetLevel(DefaultLogLevel)
	case 1:
		log.SetLevel(log.InfoLevel)
	case 3:
		reportCaller = true
		fallthrough
	default:
		log.SetLevel(log.DebugLevel)
	}
	log.SetReportCaller(reportCaller)
}

// Init sets verbosity from the command's persistent verbose flag and loads
// the configuration file, if any, into vip. Environment variables prefixed
// with name (upper-cased) override the file; flags bound to vip override both.
func Init(name string, cmd *cobra.Command, vip *viper.Viper) error {
	v, err := cmd.Flags().GetCount("verbose")
	if err != nil {
		return fmt.Errorf("internal error: no persistent verbose flag installed on cmd: %w", err)
	}
	SetVerboseMode(v)

	if path, err := cmd.Flags().GetString("config"); err == nil && path != "" {
		vip.SetConfigFile(path)
	} else {
		vip.SetConfigName(name)
		vip.AddConfigPath("./")
		vip.AddConfigPath("$HOME/.config/" + name)
		vip.AddConfigPath("/etc/" + name)
		if binPath, err := os.Executable(); err != nil {
			log.Warnf("Failed to get current executable path, not adding it as a config dir: %v", err)
		} else {
			vip.AddConfigPath(filepath.Dir(binPath))
		}
	}

	if err := vip.ReadInConfig(); err != nil {
		var e viper.ConfigFileNotFoundError
		if !errors.As(err, &e) {
			return fmt.Errorf("invalid configuration file: %w", err)
		}
		log.Infof("No configuration file: %v. Using defaults, env variables and flags.", e)
	} else {
		log.Infof("Using configuration file: %v", vip.ConfigFileUsed())
	}

	for k, v := range connectionKeys {
		vip.SetDefault(k, v)
	}
	vip.SetEnvPrefix(name)
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vip.AutomaticEnv()

	return nil
}

// LoadConnection decodes and validates the connection settings held by vip.
func LoadConnection(vip *viper.Viper) (*Connection, error) {
	var c Connection
	if err := vip.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode configuration into struct: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid connection settings: %w", err)
	}

	return &c, nil
}

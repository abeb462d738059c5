package cmd

import (
	"github.com/spf13/viper"

	"ragrouter/src/config"
)

func settingDefaultConfig() {
	config.SetDefaults(viper.GetViper())

	viper.BindEnv("log.file", "LOG_FILE")
}

package cmd

import (
	"github.com/spf13/viper"

	"boxwatch/types"
)

// setDefaultConfig sets default values for the settings
func setDefaultConfig() {
	def := types.DefaultProcessorConfig()

	viper.SetDefault("quiet", false)
	viper.SetDefault("workers", def.Workers)
	viper.SetDefault("max-workers", def.MaxWorkers)
	viper.SetDefault("smooth-radius", def.SmoothRadius)
	viper.SetDefault("threshold", def.BinaryThreshold)
	viper.SetDefault("snapshot-dir", "")
	viper.SetDefault("metrics-file", "")
	viper.SetDefault("scale", 1.0)
}

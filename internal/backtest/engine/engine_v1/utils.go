package engine

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResultFolder returns the folder the results of one run are written to:
// <results>/<strategy>/<config>[/<start>_<end>]/<data file>.
func ResultFolder(resultsFolder string, strategyName string, configPath string, dataPath string, config PositionManagerConfig) string {
	strategyFolder := filepath.Join(resultsFolder, strategyName)

	configName := "default"
	if configPath != "" {
		configName = strings.TrimSuffix(filepath.Base(configPath), filepath.Ext(configPath))
	}

	dataFolder := filepath.Join(strategyFolder, configName)

	if config.StartTrades.IsSome() || config.EndTrades.IsSome() {
		startTimeStr := "all"
		endTimeStr := "all"

		if config.StartTrades.IsSome() {
			startTimeStr = config.StartTrades.Unwrap().Format("20060102")
		}

		if config.EndTrades.IsSome() {
			endTimeStr = config.EndTrades.Unwrap().Format("20060102")
		}

		dataFolder = filepath.Join(dataFolder, fmt.Sprintf("%s_%s", startTimeStr, endTimeStr))
	}

	dataFileName := strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath))

	return filepath.Join(dataFolder, dataFileName)
}

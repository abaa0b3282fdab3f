// Command leadconv prepares lead data, trains the conversion model and runs
// inference against the held-out test split.
//
//	leadconv describe --plot-dir reports/figures
//	leadconv prepare
//	leadconv train
//	leadconv predict -n 5 --expect-predictions "[0 1 0 1 0]"
package main

import (
	"os"

	"github.com/YuminosukeSato/leadconv/pkg/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.GetLoggerWithName("cli").Error("Command failed", log.ErrAttrKey, err)
		os.Exit(1)
	}
}

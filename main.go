// main is the entry point for the recon CLI.
package main

import (
	"github.com/huangsam/recon/cmd"
	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()
	iocache.CloseCaching()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		contract.LogFatal("recon failed", err)
	}
}

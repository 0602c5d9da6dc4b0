// Package outwriter has output and writer logic.
package outwriter

import (
	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the command layer.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints a scan report using the configured output format.
func (ow *OutWriter) WriteReport(report *schema.Report, cfg *contract.Config) error {
	return WriteReport(report, cfg)
}

// WriteHistory prints the git section of a scan using the configured output format.
func (ow *OutWriter) WriteHistory(stats schema.GitStats, cfg *contract.Config) error {
	return WriteHistory(stats, cfg)
}

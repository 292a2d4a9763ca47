package tracker

import "github.com/ogulcanaydogan/quartermaster/pkg/model"

// Re-export types from model package for convenience.
type (
	RunRecord  = model.RunRecord
	RunFilter  = model.RunFilter
	RunStatus  = model.RunStatus
	RunSummary = model.RunSummary
)

// Re-export constants.
const (
	RunOK      = model.RunOK
	RunError   = model.RunError
	RunDryRun  = model.RunDryRun
	RunSkipped = model.RunSkipped
)

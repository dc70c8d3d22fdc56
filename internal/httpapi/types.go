package httpapi

import "leadhunt-engine/internal/pipeline"

type RunStatus struct {
	Workflow  string            `json:"workflow"`
	LastRunAt string            `json:"last_run_at"`
	LastOkAt  string            `json:"last_ok_at"`
	LastError string            `json:"last_error"`
	Reports   []pipeline.Report `json:"reports"`
	Running   bool              `json:"running"`
}

package model

// VersionInfo contains version information for the application.
type VersionInfo struct {
	AppVersion string `json:"app_version"`
	DbVersion  string `json:"db_version"`
}

// CheckResult is the outcome of one validation suite check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

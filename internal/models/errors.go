package models

import "fmt"

// StepError represents a provisioning step failure
type StepError struct {
	Phase  string // "bootstrap" or "configure"
	StepID string
	Stage  string // "action" or "verify"
	Cause  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step '%s' failed during %s (%s stage): %v",
		e.StepID, e.Phase, e.Stage, e.Cause)
}

func (e *StepError) Unwrap() error {
	return e.Cause
}

// MissingSecretError represents a required credential that could not be
// resolved from any source
type MissingSecretError struct {
	Key         string
	Description string
}

func (e *MissingSecretError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("required secret '%s' (%s) could not be resolved from environment, secret manager, or prompt",
			e.Key, e.Description)
	}
	return fmt.Sprintf("required secret '%s' could not be resolved from environment, secret manager, or prompt", e.Key)
}

// ValidationWarning represents a resolved credential whose remote validation
// probe failed; never fatal because the remote system owns credential
// correctness
type ValidationWarning struct {
	Key   string
	Cause error
}

func (e *ValidationWarning) Error() string {
	return fmt.Sprintf("secret '%s' accepted locally but remote validation failed: %v", e.Key, e.Cause)
}

func (e *ValidationWarning) Unwrap() error {
	return e.Cause
}

// ProbeError represents a failed outbound validation call
type ProbeError struct {
	Service    string // "anthropic", "telegram", "outline", "todoist"
	Endpoint   string
	StatusCode int
	Cause      error
}

func (e *ProbeError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s probe failed: %s (status %d): %v",
			e.Service, e.Endpoint, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s probe failed: %s: %v", e.Service, e.Endpoint, e.Cause)
}

func (e *ProbeError) Unwrap() error {
	return e.Cause
}

// BackendError represents a service-control backend operation failure
type BackendError struct {
	Backend   string // "systemd", "docker"
	Operation string // "install", "start", "restart", "status", "logs"
	Cause     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend error during %s: %v", e.Backend, e.Operation, e.Cause)
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// ManagerUnavailableError represents a secret manager that could not be
// reached; resolution falls through to the next source with a warning
type ManagerUnavailableError struct {
	Backend string // "op", "vault"
	Cause   error
}

func (e *ManagerUnavailableError) Error() string {
	return fmt.Sprintf("secret manager (%s) unreachable: %v", e.Backend, e.Cause)
}

func (e *ManagerUnavailableError) Unwrap() error {
	return e.Cause
}

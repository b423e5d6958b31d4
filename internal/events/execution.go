// Package events defines the lifecycle events the executor publishes on the
// eventbus.
package events

import (
	"time"
)

// ExecutionStart is published when an operation begins executing.
type ExecutionStart struct {
	OperationName string
	OperationType string
}

// ExecutionFinish is published when the result is complete.
type ExecutionFinish struct {
	OperationName string
	OperationType string
	ErrorCount    int
	Duration      time.Duration
}

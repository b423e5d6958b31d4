package events

import (
	"time"

	schema "github.com/weftql/weft/internal/schema"
)

// ResolveStart is published before a field resolver runs.
type ResolveStart struct {
	ObjectType string
	Field      string
	Path       schema.Path
}

// ResolveFinish is published after a field resolver returns. For thenable
// results the duration covers only the synchronous part of the call.
type ResolveFinish struct {
	ObjectType string
	Field      string
	Path       schema.Path
	Err        error
	Duration   time.Duration
}

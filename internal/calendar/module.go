// Package calendar provides the event model, in-memory store and month
// grid computation.
package calendar

import "go.uber.org/fx"

// Module provides calendar dependencies.
var Module = fx.Module("calendar",
	fx.Provide(NewStore),
)

package workflow

import (
	"github.com/openrange/rangex/app/engine/activity"
	"github.com/openrange/rangex/pkg/temporal"
)

// Context holds the workflow context.
type Context struct {
	TemporalClient  *temporal.Client
	ActivityContext *activity.Context
}

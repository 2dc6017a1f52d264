package settlement

import (
	"context"
	"strings"

	"dorm-delivery/internal/domain"
)

type actionFunc func(context.Context, domain.TaskEvent) error

type actionFactory struct {
	byAction map[string]actionFunc
}

func newActionFactory(onFailed actionFunc) *actionFactory {
	return &actionFactory{
		byAction: map[string]actionFunc{
			"fail": onFailed,
		},
	}
}

func (f *actionFactory) get(action string) (actionFunc, bool) {
	action = strings.ToLower(strings.TrimSpace(action))
	fn, ok := f.byAction[action]
	return fn, ok
}

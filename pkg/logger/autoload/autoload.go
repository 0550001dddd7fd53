// Package autoload configures the global logger from LOG_* variables when
// imported.
package autoload

import (
	configx "github.com/tanpawarit/Chative-Flavia-Agent/pkg/config"
	logx "github.com/tanpawarit/Chative-Flavia-Agent/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}

package daemon

import (
	"log/slog"

	"github.com/1broseidon/tagwm/internal/config"
)

// reloader re-reads the configuration after an edit. Most settings are
// bound at startup, so a change is only applied by restarting.
type reloader struct {
	path    string
	current *config.Config
	logger  *slog.Logger
}

// changed reports whether the manager should restart for the new file.
func (r *reloader) changed() bool {
	res, err := config.LoadFromPath(r.path)
	if err != nil {
		r.logger.Warn("failed to reload config", "path", r.path, "error", err)
		return false
	}
	for _, w := range res.Warnings {
		r.logger.Warn("config value rejected", "error", w)
	}

	diff := config.Diff(r.current, res.Config)
	if diff == "" {
		r.logger.Debug("config file touched without changes", "path", r.path)
		return false
	}
	r.logger.Info("config changed", "path", r.path, "diff", diff)
	r.current = res.Config

	if !res.Config.RestartOnConfigChange {
		r.logger.Info("restart to apply the new config")
		return false
	}
	return true
}

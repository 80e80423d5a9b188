package notifier

import (
	"log/slog"

	"github.com/lacedup/footwork/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new postings to the given logger as structured messages.
// Used when no webhook is configured and in dry-run mode.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(postings []model.Posting) error {
	for _, p := range postings {
		args := []any{"company", p.Company, "title", p.Title, "location", p.Location, "url", p.URL, "source", p.Source}
		if p.PostedAt != nil {
			args = append(args, "posted_at", *p.PostedAt)
		}
		n.logger.Info("new posting", args...)
	}
	return nil
}

func (n *LogNotifier) Heartbeat(stats model.RunStats) error {
	n.logger.Info("heartbeat",
		"checked", stats.Checked,
		"new", stats.New,
		"sources_ok", stats.SourcesOK,
		"sources_failed", stats.SourcesFailed,
	)
	return nil
}

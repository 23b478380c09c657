package tracker

import (
	"github.com/runnerr0/dwell/internal/logger"
)

// HealthPayload is the extension's periodic self-report.
type HealthPayload struct {
	ExtensionVersion  string `json:"extensionVersion"`
	Platform          string `json:"platform"`
	Arch              string `json:"arch"`
	ErrorsEncountered *int   `json:"errorsEncountered"`
	Timestamp         string `json:"timestamp"`
}

// RecordHealth validates p and logs it. Nothing is persisted.
func (s *Service) RecordHealth(userID string, p HealthPayload) error {
	switch {
	case p.ExtensionVersion == "":
		return invalid("extensionVersion", "required")
	case p.Platform == "":
		return invalid("platform", "required")
	case p.Arch == "":
		return invalid("arch", "required")
	case p.ErrorsEncountered == nil:
		return invalid("errorsEncountered", "required")
	case p.Timestamp == "":
		return invalid("timestamp", "required")
	}

	s.log.Info("Health check received",
		logger.String("user_id", userID),
		logger.String("extension_version", p.ExtensionVersion),
		logger.String("platform", p.Platform),
		logger.String("arch", p.Arch),
		logger.Int("errors_encountered", *p.ErrorsEncountered),
		logger.String("reported_at", p.Timestamp),
	)
	return nil
}

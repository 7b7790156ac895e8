package app

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/zeus-tips-bot/internal/config"
)

func TestSchedulerEvaluatesSpecsInUTC(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	s := NewScheduler(&Jobs{}, logger, config.Schedules{})

	// Fixed-time specs like "0 15 * * *" must not shift with the host
	// timezone.
	assert.Equal(t, time.UTC, s.cron.Location())
}

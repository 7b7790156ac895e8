package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/example/zeus-tips-bot/internal/repository"
)

// VIPChannelKey is the bot_settings key holding the numeric channel ID used
// for every broadcast.
const VIPChannelKey = "VIP_CHANNEL_ID"

// ErrChannelNotConfigured is returned when no VIP channel has been set up yet.
var ErrChannelNotConfigured = errors.New("vip channel id not configured")

// ChannelService resolves the VIP channel ID. The value is read from the
// settings table on every call so an admin change takes effect immediately;
// the env fallback from initial deployment is written back once used.
type ChannelService struct {
	settings repository.SettingsRepository
	fallback int64
}

func NewChannelService(settings repository.SettingsRepository, fallback int64) *ChannelService {
	return &ChannelService{settings: settings, fallback: fallback}
}

// VIPChannelID returns the numeric channel identifier for broadcasts.
func (s *ChannelService) VIPChannelID(ctx context.Context) (int64, error) {
	value, err := s.settings.Get(ctx, VIPChannelKey)
	if errors.Is(err, repository.ErrNotFound) {
		if s.fallback == 0 {
			return 0, ErrChannelNotConfigured
		}
		if err := s.settings.Set(ctx, VIPChannelKey, strconv.FormatInt(s.fallback, 10)); err != nil {
			return 0, fmt.Errorf("persist fallback channel id: %w", err)
		}
		return s.fallback, nil
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("vip channel id %q is not numeric: %w", value, err)
	}
	return id, nil
}

// SetVIPChannelID stores a new channel ID. Last write wins.
func (s *ChannelService) SetVIPChannelID(ctx context.Context, id int64) error {
	return s.settings.Set(ctx, VIPChannelKey, strconv.FormatInt(id, 10))
}

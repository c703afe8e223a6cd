package repository

import "context"

// SettingsRepository stores the operational gate
type SettingsRepository interface {
	IsOperational(ctx context.Context) (bool, error)
	SetOperational(ctx context.Context, operational bool) error
}

package providers

import (
	"github.com/samber/do/v2"

	"github.com/openmusic/openmusic-server/internal/auth"
	"github.com/openmusic/openmusic-server/internal/config"
	"github.com/openmusic/openmusic-server/internal/logger"
)

// AuthKey is the hex-encoded PASETO key.
type AuthKey string

// ProvideAuthKey resolves the configured key or loads/generates one in the data directory.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	keyHex, err := auth.ResolveKey(cfg.Auth.AccessTokenKeyHex, cfg.Metadata.BasePath)
	if err != nil {
		return "", err
	}

	log.Info("Authentication key loaded",
		"configured", cfg.Auth.AccessTokenKeyHex != "",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
		"refresh_token_duration", cfg.Auth.RefreshTokenDuration,
	)

	return AuthKey(keyHex), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(string(key), cfg.Auth.AccessTokenDuration, cfg.Auth.RefreshTokenDuration)
}

package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "github.com/quizsquirrel/social-api/configs"
	"github.com/quizsquirrel/social-api/internal/models"
	"github.com/quizsquirrel/social-api/internal/platform"
	"github.com/quizsquirrel/social-api/pkg/crypto"
)

// oauthHTTPClient is shared by the connection negotiators. Publishing and
// engagement calls have their own client inside the platform package.
var oauthHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// buildClient decrypts a connection's stored credentials and hands them to
// the factory. Plaintext tokens only ever live in the returned client.
func buildClient(cfg config.Config, cipher *crypto.Cipher, newClient ClientFactory, connection *models.SocialMediaConnection) (platform.Client, error) {
	accessToken, err := cipher.Decrypt(connection.AccessToken)
	if err != nil {
		return nil, credentialError(connection.Platform, err)
	}

	var tokenSecret, pageToken string
	if connection.TokenSecret != "" {
		tokenSecret, err = cipher.Decrypt(connection.TokenSecret)
		if err != nil {
			return nil, credentialError(connection.Platform, err)
		}
	}
	if connection.PageToken != "" {
		pageToken, err = cipher.Decrypt(connection.PageToken)
		if err != nil {
			return nil, credentialError(connection.Platform, err)
		}
	}

	return newClient(cfg, connection, accessToken, tokenSecret, pageToken), nil
}

func credentialError(platformName string, err error) error {
	if errors.Is(err, crypto.ErrDecryptFailed) {
		slog.Info(fmt.Sprintf("stored credentials unreadable for %s connection", platformName))
		return platform.NewError(platform.KindInvalidCredentials, platformName,
			"stored credentials are unreadable; reconnect the account", err)
	}
	return err
}

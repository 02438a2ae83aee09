package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	config "github.com/quizsquirrel/social-api/configs"
	"github.com/quizsquirrel/social-api/internal/models"
	"github.com/quizsquirrel/social-api/internal/repository"
	"github.com/quizsquirrel/social-api/pkg/crypto"
)

type ConnectionService interface {
	List(ctx context.Context, userID int64) ([]*models.SocialMediaConnection, error)
	Disconnect(ctx context.Context, userID, connectionID int64, purge bool) error
	DeactivateAll(ctx context.Context) (int64, error)
	VerifyStoredCredentials(ctx context.Context) error
}

type connectionService struct {
	cfg    config.Config
	conn   repository.ConnectionRepository
	cipher *crypto.Cipher
}

func NewConnectionService(cfg config.Config, conn repository.ConnectionRepository, cipher *crypto.Cipher) ConnectionService {
	return &connectionService{
		cfg:    cfg,
		conn:   conn,
		cipher: cipher,
	}
}

func (s *connectionService) List(ctx context.Context, userID int64) ([]*models.SocialMediaConnection, error) {
	var err error

	if userID == 0 {
		err = errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	connections, err := s.conn.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting connections")
	}

	return connections, nil
}

// Disconnect deactivates the connection so publishing stops immediately. With
// purge the row and its ciphertext are removed entirely. Posts already made
// stay up; we never delete platform content on disconnect.
func (s *connectionService) Disconnect(ctx context.Context, userID, connectionID int64, purge bool) error {
	var err error

	if userID == 0 {
		err = errors.New("UserID is not valid")
		slog.Info(err.Error())
		return err
	}

	if connectionID == 0 {
		err = errors.New("ConnectionID is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.conn.CheckByUserID(ctx, connectionID, userID)
	if err != nil {
		return err
	}

	if !isValid {
		err = errors.New("Connection doesn't exist")
		slog.Info(err.Error())
		return err
	}

	if err := s.conn.Deactivate(ctx, connectionID); err != nil {
		return fmt.Errorf("Error deactivating connection")
	}

	if purge {
		if err := s.conn.Remove(ctx, connectionID); err != nil {
			return fmt.Errorf("Error removing connection")
		}
	}

	return nil
}

// DeactivateAll is the key-rotation remediation: every connection goes
// inactive in one statement and users reconnect their accounts.
func (s *connectionService) DeactivateAll(ctx context.Context) (int64, error) {
	count, err := s.conn.DeactivateAll(ctx)
	if err != nil {
		return 0, err
	}
	slog.Info(fmt.Sprintf("deactivated %d connections", count))
	return count, nil
}

// VerifyStoredCredentials probes the newest active connection at startup. If
// its token no longer decrypts the encryption key has changed, and every
// stored credential is garbage; deactivate them all rather than serve errors
// one publish at a time.
func (s *connectionService) VerifyStoredCredentials(ctx context.Context) error {
	connection, err := s.conn.GetNewestActive(ctx)
	if err != nil {
		return err
	}
	if connection == nil {
		return nil
	}

	if _, err := s.cipher.Decrypt(connection.AccessToken); err != nil {
		if errors.Is(err, crypto.ErrDecryptFailed) {
			slog.Info("stored credentials do not decrypt with the current key, deactivating all connections")
			_, err := s.conn.DeactivateAll(ctx)
			return err
		}
		return err
	}

	return nil
}

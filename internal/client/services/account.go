package services

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/accountkeeper/internal/client/client"
)

// AccountService exposes profile operations for the CLI.
type AccountService interface {
	Get(ctx context.Context, userID string) (*client.User, error)
	Update(ctx context.Context, form client.UpdateUserForm) error
	Delete(ctx context.Context, userID string) error
	UploadProfilePicture(ctx context.Context, userID string, filePath string) error
	ProfileImageURL(ctx context.Context, userID string) (string, error)
}

type accountService struct {
	client client.Client
}

func NewAccountService(client client.Client) AccountService {
	return &accountService{client: client}
}

func (s *accountService) Get(ctx context.Context, userID string) (*client.User, error) {
	return s.client.GetUser(ctx, userID)
}

func (s *accountService) Update(ctx context.Context, form client.UpdateUserForm) error {
	return s.client.UpdateUser(ctx, form)
}

func (s *accountService) Delete(ctx context.Context, userID string) error {
	return s.client.DeleteUser(ctx, userID)
}

// UploadProfilePicture reads the image from disk and uploads it through a
// presigned URL issued by the server.
func (s *accountService) UploadProfilePicture(ctx context.Context, userID string, filePath string) error {
	image, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filePath, err)
	}
	return s.client.UploadProfilePicture(ctx, userID, image)
}

func (s *accountService) ProfileImageURL(ctx context.Context, userID string) (string, error) {
	return s.client.ProfileImageURL(ctx, userID)
}

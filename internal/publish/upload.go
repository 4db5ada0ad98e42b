package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// Uploader stores one blob.
type Uploader interface {
	Upload(ctx context.Context, container, name string, data []byte) error
}

// AzureUploader uploads to an Azure Storage account.
type AzureUploader struct {
	client *azblob.Client
}

// NewAzureUploader authenticates with the default Azure credential chain.
func NewAzureUploader(accountURL string) (*AzureUploader, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("creating Azure credential: %w", err)
	}
	return newAzureUploader(accountURL, cred)
}

func newAzureUploader(accountURL string, cred azcore.TokenCredential) (*AzureUploader, error) {
	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client for %s: %w", accountURL, err)
	}
	return &AzureUploader{client: client}, nil
}

func (u *AzureUploader) Upload(ctx context.Context, container, name string, data []byte) error {
	if _, err := u.client.UploadBuffer(ctx, container, name, data, nil); err != nil {
		return fmt.Errorf("uploading %s to container %s: %w", name, container, err)
	}
	return nil
}

// BlobName returns the default blob name for a results archive.
func BlobName(suite string, now time.Time) string {
	return fmt.Sprintf("%s/%s.tar.zst", suite, now.UTC().Format("20060102T150405Z"))
}

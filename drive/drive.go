package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"drive-linkbot/models"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// FolderMimeType marks an entry as a folder.
const FolderMimeType = "application/vnd.google-apps.folder"

const listFields = "nextPageToken, files(id, name, mimeType, webViewLink)"

// Lister lists the immediate children of a remote folder.
type Lister interface {
	List(ctx context.Context, folderID string) ([]models.RemoteEntry, error)
}

// Config holds the settings needed to reach Google Drive.
type Config struct {
	CredentialsFile string
	TokenFile       string
	RequestTimeout  time.Duration
}

// Client lists Google Drive folders.
type Client struct {
	service *gdrive.Service
	timeout time.Duration
	log     zerolog.Logger
}

var _ Lister = (*Client)(nil)

// NewClient creates a Drive client. With a token file the credentials file is
// treated as an OAuth client secret and the cached user token is used;
// otherwise the credentials file is used directly (service account).
func NewClient(ctx context.Context, cfg Config, log zerolog.Logger) (*Client, error) {
	var opts []option.ClientOption
	if cfg.TokenFile != "" {
		httpClient, err := userClient(ctx, cfg.CredentialsFile, cfg.TokenFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithHTTPClient(httpClient))
	} else {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile), option.WithScopes(gdrive.DriveReadonlyScope))
	}

	service, err := gdrive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating Drive service: %w", err)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		service: service,
		timeout: timeout,
		log:     log.With().Str("component", "drive").Logger(),
	}, nil
}

func userClient(ctx context.Context, credentialsFile, tokenFile string) (*http.Client, error) {
	secret, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}
	conf, err := google.ConfigFromJSON(secret, gdrive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file: %w", err)
	}

	raw, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read token file %s: %w", tokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("unable to parse token file %s: %w", tokenFile, err)
	}
	return conf.Client(ctx, &token), nil
}

// List returns every non-trashed child of folderID. Each call is bounded by
// the client's request timeout; any failure wraps models.ErrRemoteList.
func (c *Client) List(ctx context.Context, folderID string) ([]models.RemoteEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var entries []models.RemoteEntry
	err := c.service.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed = false", folderID)).
		Fields(listFields).
		PageSize(1000).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *gdrive.FileList) error {
			for _, f := range page.Files {
				entries = append(entries, ToEntry(f))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("%w: folder %s: %v", models.ErrRemoteList, folderID, err)
	}

	c.log.Debug().Str("folder_id", folderID).Int("children", len(entries)).Msg("Listed folder")
	return entries, nil
}

// ToEntry converts a Drive file into a RemoteEntry.
func ToEntry(f *gdrive.File) models.RemoteEntry {
	return models.RemoteEntry{
		ID:       f.Id,
		Name:     f.Name,
		IsFolder: f.MimeType == FolderMimeType,
		ViewURL:  f.WebViewLink,
	}
}

// RootEntry builds the entry the scan starts from.
func RootEntry(id, name, url string) models.RemoteEntry {
	if url == "" {
		url = "https://drive.google.com/drive/folders/" + id
	}
	return models.RemoteEntry{ID: id, Name: name, IsFolder: true, ViewURL: url}
}

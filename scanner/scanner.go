package scanner

import (
	"context"
	"errors"
	"fmt"

	"drive-linkbot/drive"
	"drive-linkbot/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrentRequests caps outstanding listing calls when no limit is given.
const DefaultMaxConcurrentRequests = 8

// Scanner walks a remote folder tree and groups files by their parent folder's path.
type Scanner struct {
	lister drive.Lister
	sem    *semaphore.Weighted
	log    zerolog.Logger
}

// New creates a Scanner allowing at most maxConcurrent listing calls in flight.
func New(lister drive.Lister, maxConcurrent int64, log zerolog.Logger) *Scanner {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentRequests
	}
	return &Scanner{
		lister: lister,
		sem:    semaphore.NewWeighted(maxConcurrent),
		log:    log.With().Str("component", "scanner").Logger(),
	}
}

// Scan lists root recursively. A child whose path matches any ignore pattern
// is skipped at discovery, so an ignored folder's subtree is never listed.
// The result holds one section per visited folder, each folder before its
// descendants and siblings in listing order. The root only gets a section
// when it directly holds files.
func (s *Scanner) Scan(ctx context.Context, root models.RemoteEntry, patterns []models.IgnorePattern) (*models.FolderMap, error) {
	sections, err := s.walk(ctx, root, models.RootPath, patterns)
	if err != nil {
		return nil, err
	}

	folders := models.NewFolderMap()
	for _, section := range sections {
		if section.Path == models.RootPath && len(section.Files) == 0 {
			continue
		}
		if !folders.Add(section) {
			s.log.Warn().Str("path", section.Path).Msg("Duplicate folder path, merging files")
		}
	}
	s.log.Debug().Int("folders", folders.Len()).Str("root_id", root.ID).Msg("Scan finished")
	return folders, nil
}

func (s *Scanner) walk(ctx context.Context, folder models.RemoteEntry, path string, patterns []models.IgnorePattern) ([]*models.FolderSection, error) {
	children, err := s.list(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	source := folder
	section := &models.FolderSection{Path: path, Source: &source}

	type subfolder struct {
		entry models.RemoteEntry
		path  string
	}
	var subfolders []subfolder
	for _, child := range children {
		childPath := models.JoinPath(path, child.Name)
		if models.MatchAny(patterns, childPath) {
			continue
		}
		if child.IsFolder {
			subfolders = append(subfolders, subfolder{entry: child, path: childPath})
		} else {
			section.Files = append(section.Files, child)
		}
	}

	results := make([][]*models.FolderSection, len(subfolders))
	g, gctx := errgroup.WithContext(ctx)
	for i, sub := range subfolders {
		g.Go(func() error {
			found, err := s.walk(gctx, sub.entry, sub.path, patterns)
			if err != nil {
				return err
			}
			results[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := []*models.FolderSection{section}
	for _, found := range results {
		out = append(out, found...)
	}
	return out, nil
}

// list performs one listing call while holding a concurrency slot.
func (s *Scanner) list(ctx context.Context, folderID string) ([]models.RemoteEntry, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: folder %s: %v", models.ErrRemoteList, folderID, err)
	}
	defer s.sem.Release(1)

	entries, err := s.lister.List(ctx, folderID)
	if err != nil && !errors.Is(err, models.ErrRemoteList) {
		return nil, fmt.Errorf("%w: folder %s: %v", models.ErrRemoteList, folderID, err)
	}
	return entries, err
}

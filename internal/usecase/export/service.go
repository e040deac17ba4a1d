// Package export produces a portable copy of a user's data.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/lifeos/internal/domain"
	domuser "github.com/kailas-cloud/lifeos/internal/domain/user"
)

// FeedSize is the number of newest entries in the Atom feed.
const FeedSize = 50

// Service builds exports.
type Service struct {
	users   UserReader
	records RecordLister
	now     func() time.Time
}

// New creates an export service.
func New(users UserReader, records RecordLister) *Service {
	return &Service{users: users, records: records, now: time.Now}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Export collects all of the user's records.
func (s *Service) Export(ctx context.Context, userID string) (Document, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return Document{}, fmt.Errorf("get user: %w", err)
	}
	snap, err := s.collect(ctx, userID, 0)
	if err != nil {
		return Document{}, err
	}
	return newDocument(s.now(), &u, snap), nil
}

// WriteJSON writes the indented JSON export to w.
func (s *Service) WriteJSON(ctx context.Context, userID string, w io.Writer) error {
	doc, err := s.Export(ctx, userID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// WriteAllJSON exports every stored user in ID order. open returns the destination
// for one user; it is closed once that user's document is written. Users deleted
// after listing are skipped. It returns the IDs that were written.
func (s *Service) WriteAllJSON(
	ctx context.Context, open func(userID string) (io.WriteCloser, error),
) ([]string, error) {
	ids, err := s.users.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	slices.Sort(ids)

	written := make([]string, 0, len(ids))
	for _, id := range ids {
		doc, err := s.Export(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return written, fmt.Errorf("export user %s: %w", id, err)
		}
		if err := writeDocument(open, id, &doc); err != nil {
			return written, err
		}
		written = append(written, id)
	}
	return written, nil
}

func writeDocument(open func(string) (io.WriteCloser, error), userID string, doc *Document) (err error) {
	w, err := open(userID)
	if err != nil {
		return fmt.Errorf("open export for %s: %w", userID, err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close export for %s: %w", userID, cerr)
		}
	}()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export for %s: %w", userID, err)
	}
	return nil
}

// WriteAtom writes an Atom feed of the user's newest entries. baseURL prefixes entry links.
func (s *Service) WriteAtom(ctx context.Context, userID, baseURL string, w io.Writer) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	entries, err := s.records.ListEntries(ctx, userID, FeedSize)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}

	feed := newFeed(&u, strings.TrimRight(baseURL, "/"), s.now())
	for i := range entries {
		e := &entries[i]
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          "urn:uuid:" + e.ID(),
			Title:       e.Title(),
			Link:        &feeds.Link{Href: feed.Link.Href + "/entries/" + e.ID()},
			Description: e.Mood() + " " + e.Folder(),
			Content:     e.Content(),
			Created:     millis(e.CreatedAt()),
			Updated:     millis(e.UpdatedAt()),
		})
	}
	if len(entries) > 0 {
		feed.Updated = millis(entries[0].UpdatedAt())
	}

	if err := feed.WriteAtom(w); err != nil {
		return fmt.Errorf("write atom: %w", err)
	}
	return nil
}

func newFeed(u *domuser.User, baseURL string, now time.Time) *feeds.Feed {
	return &feeds.Feed{
		Id:      "urn:uuid:" + u.ID(),
		Title:   u.Name() + "'s journal",
		Link:    &feeds.Link{Href: baseURL},
		Author:  &feeds.Author{Name: u.Name(), Email: u.Email()},
		Created: now.UTC(),
		Updated: now.UTC(),
	}
}

func (s *Service) collect(ctx context.Context, userID string, limit int) (*snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if snap.entries, err = s.records.ListEntries(gctx, userID, limit); err != nil {
			return fmt.Errorf("list entries: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if snap.habits, err = s.records.ListHabits(gctx, userID); err != nil {
			return fmt.Errorf("list habits: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if snap.reminders, err = s.records.ListReminders(gctx, userID); err != nil {
			return fmt.Errorf("list reminders: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if snap.tasks, err = s.records.ListTasks(gctx, userID); err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // wrapped per list
	}
	return &snap, nil
}

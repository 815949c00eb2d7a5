// Package appstate maintains the site bootstrap snapshot: everything the public page
// needs on first load in one payload. Each data slice refreshes independently, so a
// failure in one leaves the others intact.
package appstate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andiamooltre/oltreweb/internal/auth"
	"github.com/andiamooltre/oltreweb/internal/contact"
	"github.com/andiamooltre/oltreweb/internal/content"
	"github.com/andiamooltre/oltreweb/internal/member"
	"github.com/andiamooltre/oltreweb/internal/news"
	"github.com/andiamooltre/oltreweb/pkg/broadcaster"
	"github.com/andiamooltre/oltreweb/pkg/log"
)

// Snapshot is the assembled bootstrap payload. Slices that failed to load hold their
// zero value rather than blocking the rest of the page.
type Snapshot struct {
	SiteName        string          `json:"site_name"`
	HomeDescription string          `json:"home_description"`
	Members         []member.Member `json:"members"`
	President       *member.Member  `json:"president,omitempty"`
	News            []news.Article  `json:"news"`
	Contact         contact.Info    `json:"contact"`
	AdminActive     bool            `json:"admin_active"`
	GeneratedOn     time.Time       `json:"generated_on"`
}

type AppState struct {
	members  member.Members
	news     news.News
	contacts contact.Contacts
	contents content.Contents
	auth     *auth.Auth
	changes  *broadcaster.Broadcaster[string]
	siteName string

	mu       sync.RWMutex
	snapshot Snapshot
	// signedIn tracks distinct signed in admin emails. Only the Start goroutine writes
	// it.
	signedIn map[string]bool
}

func New(members member.Members, newsUC news.News, contacts contact.Contacts,
	contents content.Contents, authUC *auth.Auth, changes *broadcaster.Broadcaster[string],
	siteName string,
) *AppState {
	return &AppState{
		members:  members,
		news:     newsUC,
		contacts: contacts,
		contents: contents,
		auth:     authUC,
		changes:  changes,
		siteName: siteName,
		snapshot: Snapshot{SiteName: siteName},
		signedIn: map[string]bool{},
	}
}

// Current returns the latest snapshot.
func (s *AppState) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot
}

// Initialize loads every slice concurrently. All loads run to completion regardless of
// individual failures and the joined error is returned for logging, a partially loaded
// snapshot is still served.
func (s *AppState) Initialize(ctx context.Context) error {
	loaders := []func(context.Context) error{
		s.RefreshMembers,
		s.RefreshNews,
		s.RefreshContact,
		s.RefreshContent,
	}

	errs := make([]error, len(loaders))

	group, groupCtx := errgroup.WithContext(ctx)

	for index, loader := range loaders {
		group.Go(func() error {
			errs[index] = loader(groupCtx)

			// Never fail the group, a single bad slice must not cancel its siblings.
			return nil
		})
	}

	_ = group.Wait()

	s.mu.Lock()
	s.snapshot.GeneratedOn = time.Now()
	s.mu.Unlock()

	return errors.Join(errs...)
}

func (s *AppState) RefreshMembers(ctx context.Context) error {
	members, errMembers := s.members.List(ctx)
	if errMembers != nil {
		return errMembers
	}

	var president *member.Member
	if featured, found := member.Featured(members); found {
		president = &featured
	}

	s.mu.Lock()
	s.snapshot.Members = members
	s.snapshot.President = president
	s.mu.Unlock()

	return nil
}

func (s *AppState) RefreshNews(ctx context.Context) error {
	articles, errArticles := s.news.List(ctx)
	if errArticles != nil {
		return errArticles
	}

	s.mu.Lock()
	s.snapshot.News = articles
	s.mu.Unlock()

	return nil
}

func (s *AppState) RefreshContact(ctx context.Context) error {
	info, errInfo := s.contacts.Info(ctx)
	if errInfo != nil {
		return errInfo
	}

	s.mu.Lock()
	s.snapshot.Contact = info
	s.mu.Unlock()

	return nil
}

func (s *AppState) RefreshContent(ctx context.Context) error {
	section, errSection := s.contents.Get(ctx, content.SectionHomeDescription)
	if errSection != nil {
		return errSection
	}

	s.mu.Lock()
	s.snapshot.HomeDescription = section.Sanitized()
	s.mu.Unlock()

	return nil
}

func (s *AppState) refreshTopic(ctx context.Context, topic string) {
	var errRefresh error

	switch topic {
	case member.TopicChanged:
		errRefresh = s.RefreshMembers(ctx)
	case news.TopicChanged:
		errRefresh = s.RefreshNews(ctx)
	case contact.TopicChanged:
		errRefresh = s.RefreshContact(ctx)
	case content.TopicChanged:
		errRefresh = s.RefreshContent(ctx)
	default:
		slog.Warn("Unknown change topic", slog.String("topic", topic))

		return
	}

	if errRefresh != nil {
		slog.Error("Failed to refresh snapshot slice",
			slog.String("topic", topic), log.ErrAttr(errRefresh))

		return
	}

	s.mu.Lock()
	s.snapshot.GeneratedOn = time.Now()
	s.mu.Unlock()
}

func (s *AppState) applyAuthEvent(event auth.StateChange) {
	switch event.Event {
	case auth.SignedIn:
		s.signedIn[event.Email] = true
	case auth.SignedOut:
		delete(s.signedIn, event.Email)
	}

	s.mu.Lock()
	s.snapshot.AdminActive = len(s.signedIn) > 0
	s.mu.Unlock()
}

// Start runs the single snapshot writer until ctx is cancelled, consuming content
// change topics and auth state changes.
func (s *AppState) Start(ctx context.Context) {
	topicChan := make(chan string, 16)
	if errConsume := s.changes.Consume(topicChan); errConsume != nil {
		slog.Error("Failed to subscribe to change topics", log.ErrAttr(errConsume))

		return
	}

	defer s.changes.Unregister(topicChan)

	authChan := make(chan auth.StateChange, 16)
	if errSubscribe := s.auth.Subscribe(authChan); errSubscribe != nil {
		slog.Error("Failed to subscribe to auth events", log.ErrAttr(errSubscribe))

		return
	}

	defer s.auth.Unsubscribe(authChan)

	for {
		select {
		case <-ctx.Done():
			return
		case topic := <-topicChan:
			s.refreshTopic(ctx, topic)
		case event := <-authChan:
			s.applyAuthEvent(event)
		}
	}
}

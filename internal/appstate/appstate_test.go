package appstate_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/andiamooltre/oltreweb/internal/appstate"
	"github.com/andiamooltre/oltreweb/internal/asset"
	"github.com/andiamooltre/oltreweb/internal/auth"
	"github.com/andiamooltre/oltreweb/internal/contact"
	"github.com/andiamooltre/oltreweb/internal/content"
	"github.com/andiamooltre/oltreweb/internal/database"
	"github.com/andiamooltre/oltreweb/internal/member"
	"github.com/andiamooltre/oltreweb/internal/news"
	"github.com/andiamooltre/oltreweb/pkg/broadcaster"
)

type fixture struct {
	memberRepo  *memberRepo
	newsRepo    *newsRepo
	contactRepo *contactRepo
	contentRepo *contentRepo
	authRepo    *authRepo
	authUC      *auth.Auth
	changes     *broadcaster.Broadcaster[string]
	state       *appstate.AppState
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fix := &fixture{
		memberRepo:  &memberRepo{},
		newsRepo:    &newsRepo{},
		contactRepo: &contactRepo{},
		contentRepo: &contentRepo{},
		authRepo:    &authRepo{admins: map[string]auth.Admin{}},
		changes:     broadcaster.New[string](),
	}

	fix.authUC = auth.NewAuth(fix.authRepo, "test-key", time.Hour)

	members := member.NewMembers(fix.memberRepo, "placeholder", fix.changes)
	newsUC := news.NewNews(fix.newsRepo, "placeholder", fix.changes)
	contents := content.NewContents(fix.contentRepo, afs.New(), t.TempDir(), fix.changes)
	contacts := contact.NewContacts(fix.contactRepo, asset.Assets{}, nil, fix.authUC,
		fix.changes, 5, "supporto@example.com")

	fix.state = appstate.New(members, newsUC, contacts, contents, fix.authUC, fix.changes,
		"Andiamo Oltre")

	return fix
}

func TestInitializeLoadsAllSlices(t *testing.T) {
	t.Parallel()

	fix := newFixture(t)
	fix.memberRepo.members = []member.Member{
		{MemberID: uuid.Must(uuid.NewV4()), Name: "Maria", IsPresident: true},
		{MemberID: uuid.Must(uuid.NewV4()), Name: "Paolo"},
	}
	fix.newsRepo.articles = []news.Article{{NewsID: uuid.Must(uuid.NewV4()), Title: "Titolo"}}
	fix.contactRepo.info = contact.Info{Email: "info@example.com"}
	fix.contentRepo.sections = map[string]content.Section{
		content.SectionHomeDescription: {Key: content.SectionHomeDescription, Content: "Benvenuti"},
	}

	require.NoError(t, fix.state.Initialize(context.Background()))

	snapshot := fix.state.Current()
	require.Equal(t, "Andiamo Oltre", snapshot.SiteName)
	require.Len(t, snapshot.Members, 2)
	require.NotNil(t, snapshot.President)
	require.Equal(t, "Maria", snapshot.President.Name)
	require.Len(t, snapshot.News, 1)
	require.Equal(t, "info@example.com", snapshot.Contact.Email)
	require.Equal(t, "Benvenuti", snapshot.HomeDescription)
	require.False(t, snapshot.GeneratedOn.IsZero())
	require.False(t, snapshot.AdminActive)
}

func TestInitializeToleratesSliceFailure(t *testing.T) {
	t.Parallel()

	fix := newFixture(t)
	fix.memberRepo.fail = errors.New("members unavailable")
	fix.newsRepo.articles = []news.Article{{NewsID: uuid.Must(uuid.NewV4()), Title: "Titolo"}}

	errInit := fix.state.Initialize(context.Background())
	require.Error(t, errInit)

	// The failed slice is empty but the others still loaded.
	snapshot := fix.state.Current()
	require.Empty(t, snapshot.Members)
	require.Len(t, snapshot.News, 1)
}

func TestChangeTopicRefreshesSlice(t *testing.T) {
	t.Parallel()

	fix := newFixture(t)
	require.NoError(t, fix.state.Initialize(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go fix.state.Start(ctx)

	// Give the writer a moment to subscribe before emitting.
	require.Eventually(t, func() bool {
		fix.memberRepo.setMembers([]member.Member{{MemberID: uuid.Must(uuid.NewV4()), Name: "Nuovo"}})
		fix.changes.Emit(member.TopicChanged)

		return len(fix.state.Current().Members) == 1
	}, 2*time.Second, 50*time.Millisecond)
}

func TestAdminFlagFollowsAuthEvents(t *testing.T) {
	t.Parallel()

	fix := newFixture(t)

	admin, errAdmin := auth.NewAdmin("admin@example.com", "hunter2")
	require.NoError(t, errAdmin)
	require.NoError(t, fix.authRepo.SaveAdmin(context.Background(), &admin))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go fix.state.Start(ctx)

	require.Eventually(t, func() bool {
		_, errSignIn := fix.authUC.SignIn(context.Background(), "admin@example.com", "hunter2")
		require.NoError(t, errSignIn)

		return fix.state.Current().AdminActive
	}, 2*time.Second, 50*time.Millisecond)

	fix.authUC.SignOut(context.Background(), "admin@example.com")

	require.Eventually(t, func() bool {
		return !fix.state.Current().AdminActive
	}, 2*time.Second, 50*time.Millisecond)
}

type memberRepo struct {
	mu      sync.Mutex
	members []member.Member
	fail    error
}

func (r *memberRepo) setMembers(members []member.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members = members
}

func (r *memberRepo) List(_ context.Context) ([]member.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail != nil {
		return nil, r.fail
	}

	out := make([]member.Member, len(r.members))
	copy(out, r.members)

	return out, nil
}

func (r *memberRepo) GetByID(_ context.Context, _ uuid.UUID, _ *member.Member) error {
	return database.ErrNoResult
}

func (r *memberRepo) Save(_ context.Context, _ *member.Member) error { return nil }

func (r *memberRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type newsRepo struct {
	mu       sync.Mutex
	articles []news.Article
}

func (r *newsRepo) List(_ context.Context) ([]news.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]news.Article, len(r.articles))
	copy(out, r.articles)

	return out, nil
}

func (r *newsRepo) GetByID(_ context.Context, _ uuid.UUID, _ *news.Article) error {
	return database.ErrNoResult
}

func (r *newsRepo) Save(_ context.Context, _ *news.Article) error { return nil }

func (r *newsRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type contactRepo struct {
	mu   sync.Mutex
	info contact.Info
}

func (r *contactRepo) GetInfo(_ context.Context, info *contact.Info) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	*info = r.info

	return nil
}

func (r *contactRepo) SaveInfo(_ context.Context, info *contact.Info) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.info = *info

	return nil
}

func (r *contactRepo) InsertReport(_ context.Context, _ *contact.Report) error { return nil }

func (r *contactRepo) ListReports(_ context.Context) ([]contact.Report, error) { return nil, nil }

func (r *contactRepo) SetReportRead(_ context.Context, _ uuid.UUID, _ bool) error { return nil }

func (r *contactRepo) DeleteReport(_ context.Context, _ uuid.UUID) error { return nil }

type contentRepo struct {
	mu       sync.Mutex
	sections map[string]content.Section
}

func (r *contentRepo) Get(_ context.Context, key string, section *content.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, found := r.sections[key]
	if !found {
		return database.ErrNoResult
	}

	*section = stored

	return nil
}

func (r *contentRepo) List(_ context.Context) ([]content.Section, error) { return nil, nil }

func (r *contentRepo) Save(_ context.Context, section *content.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sections == nil {
		r.sections = map[string]content.Section{}
	}

	r.sections[section.Key] = *section

	return nil
}

type authRepo struct {
	mu     sync.Mutex
	admins map[string]auth.Admin
	nextID int
}

func (r *authRepo) GetAdminByEmail(_ context.Context, email string) (auth.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	admin, found := r.admins[email]
	if !found {
		return auth.Admin{}, database.ErrNoResult
	}

	return admin, nil
}

func (r *authRepo) SaveAdmin(_ context.Context, admin *auth.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	admin.AdminID = r.nextID
	r.admins[admin.Email] = *admin

	return nil
}

func (r *authRepo) TouchLastLogin(_ context.Context, _ int) error { return nil }

package member_test

import (
	"context"
	"sync"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/andiamooltre/oltreweb/internal/database"
	"github.com/andiamooltre/oltreweb/internal/member"
	"github.com/andiamooltre/oltreweb/pkg/broadcaster"
)

type memoryRepository struct {
	mu      sync.Mutex
	members []member.Member
}

func (r *memoryRepository) List(_ context.Context) ([]member.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]member.Member, len(r.members))
	copy(out, r.members)

	return out, nil
}

func (r *memoryRepository) GetByID(_ context.Context, memberID uuid.UUID, entry *member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.members {
		if existing.MemberID == memberID {
			*entry = existing

			return nil
		}
	}

	return database.ErrNoResult
}

func (r *memoryRepository) Save(_ context.Context, entry *member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.MemberID.IsNil() {
		entry.MemberID = uuid.Must(uuid.NewV4())
		r.members = append(r.members, *entry)

		return nil
	}

	for index, existing := range r.members {
		if existing.MemberID == entry.MemberID {
			r.members[index] = *entry

			return nil
		}
	}

	return database.ErrNoResult
}

func (r *memoryRepository) Delete(_ context.Context, memberID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for index, existing := range r.members {
		if existing.MemberID == memberID {
			r.members = append(r.members[:index], r.members[index+1:]...)

			return nil
		}
	}

	return database.ErrNoResult
}

const placeholder = "https://via.placeholder.com/150"

func TestSaveRequiresName(t *testing.T) {
	t.Parallel()

	members := member.NewMembers(&memoryRepository{}, placeholder, nil)

	err := members.Save(context.Background(), &member.Member{})
	require.ErrorIs(t, err, member.ErrNameRequired)
}

func TestSaveAppliesPlaceholder(t *testing.T) {
	t.Parallel()

	members := member.NewMembers(&memoryRepository{}, placeholder, nil)

	entry := member.Member{Name: "Mario"}
	require.NoError(t, members.Save(context.Background(), &entry))
	require.Equal(t, placeholder, entry.ImageURL)
	require.False(t, entry.MemberID.IsNil())

	withImage := member.Member{Name: "Luisa", ImageURL: "http://localhost/media/x/y.png"}
	require.NoError(t, members.Save(context.Background(), &withImage))
	require.Equal(t, "http://localhost/media/x/y.png", withImage.ImageURL)
}

func TestSaveEmitsChange(t *testing.T) {
	t.Parallel()

	changes := broadcaster.New[string]()
	topics := make(chan string, 4)
	require.NoError(t, changes.Consume(topics))

	members := member.NewMembers(&memoryRepository{}, placeholder, changes)

	entry := member.Member{Name: "Mario"}
	require.NoError(t, members.Save(context.Background(), &entry))
	require.Equal(t, member.TopicChanged, <-topics)

	require.NoError(t, members.Delete(context.Background(), entry.MemberID))
	require.Equal(t, member.TopicChanged, <-topics)
}

func TestFeatured(t *testing.T) {
	t.Parallel()

	_, found := member.Featured(nil)
	require.False(t, found)

	roster := []member.Member{
		{Name: "A"},
		{Name: "B", Role: member.PresidentRole},
		{Name: "C", IsPresident: true},
	}

	featured, found := member.Featured(roster)
	require.True(t, found)
	require.Equal(t, "B", featured.Name)

	// The legacy role string still marks a member as featured.
	require.True(t, member.Member{Role: member.PresidentRole}.Featured())
	require.True(t, member.Member{IsPresident: true}.Featured())
	require.False(t, member.Member{Role: "Segretario"}.Featured())
}

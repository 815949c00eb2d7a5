// Package member manages the association member roster.
package member

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/andiamooltre/oltreweb/pkg/broadcaster"
)

// TopicChanged is emitted on the change broadcaster whenever the roster mutates.
const TopicChanged = "members"

var ErrNameRequired = errors.New("member name is required")

// PresidentRole is the legacy role string that used to mark the featured member
// before the explicit flag existed. It is honored on reads only.
const PresidentRole = "Presidente"

type Member struct {
	MemberID    uuid.UUID `json:"member_id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Description string    `json:"description"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Instagram   string    `json:"instagram"`
	Facebook    string    `json:"facebook"`
	ImageURL    string    `json:"image_url"`
	IsPresident bool      `json:"is_president"`
	CreatedOn   time.Time `json:"created_on,omitzero"`
	UpdatedOn   time.Time `json:"updated_on,omitzero"`
}

// Featured reports whether this member gets the enlarged president layout.
func (m Member) Featured() bool {
	return m.IsPresident || m.Role == PresidentRole
}

type Repository interface {
	List(ctx context.Context) ([]Member, error)
	GetByID(ctx context.Context, memberID uuid.UUID, entry *Member) error
	Save(ctx context.Context, entry *Member) error
	Delete(ctx context.Context, memberID uuid.UUID) error
}

type Members struct {
	repository  Repository
	placeholder string
	changes     *broadcaster.Broadcaster[string]
}

func NewMembers(repository Repository, placeholderImage string, changes *broadcaster.Broadcaster[string]) Members {
	return Members{repository: repository, placeholder: placeholderImage, changes: changes}
}

func (u Members) changed() {
	if u.changes != nil {
		u.changes.Emit(TopicChanged)
	}
}

// List returns the roster newest first.
func (u Members) List(ctx context.Context) ([]Member, error) {
	return u.repository.List(ctx)
}

func (u Members) GetByID(ctx context.Context, memberID uuid.UUID, entry *Member) error {
	return u.repository.GetByID(ctx, memberID, entry)
}

// Save persists a member, substituting the placeholder image when none was provided.
func (u Members) Save(ctx context.Context, entry *Member) error {
	if entry.Name == "" {
		return ErrNameRequired
	}

	if entry.ImageURL == "" {
		entry.ImageURL = u.placeholder
	}

	if errSave := u.repository.Save(ctx, entry); errSave != nil {
		return errSave
	}

	u.changed()

	return nil
}

func (u Members) Delete(ctx context.Context, memberID uuid.UUID) error {
	if err := u.repository.Delete(ctx, memberID); err != nil {
		return err
	}

	slog.Info("Deleted member", slog.String("member_id", memberID.String()))

	u.changed()

	return nil
}

// Featured returns the first featured member, or false when the roster has none.
// Multiple featured records are allowed, first found wins.
func Featured(members []Member) (Member, bool) {
	for _, entry := range members {
		if entry.Featured() {
			return entry, true
		}
	}

	return Member{}, false
}

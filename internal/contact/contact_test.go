package contact_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/andiamooltre/oltreweb/internal/asset"
	"github.com/andiamooltre/oltreweb/internal/contact"
	"github.com/andiamooltre/oltreweb/internal/database"
	"github.com/andiamooltre/oltreweb/internal/notification"
)

const supportAddress = "supporto@example.com"

type memoryRepository struct {
	mu      sync.Mutex
	info    contact.Info
	reports []contact.Report
}

func (r *memoryRepository) GetInfo(_ context.Context, info *contact.Info) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	*info = r.info

	return nil
}

func (r *memoryRepository) SaveInfo(_ context.Context, info *contact.Info) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.info = *info

	return nil
}

func (r *memoryRepository) InsertReport(_ context.Context, report *contact.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	report.ReportID = uuid.Must(uuid.NewV4())
	r.reports = append(r.reports, *report)

	return nil
}

func (r *memoryRepository) ListReports(_ context.Context) ([]contact.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]contact.Report, len(r.reports))
	copy(out, r.reports)

	return out, nil
}

func (r *memoryRepository) SetReportRead(_ context.Context, reportID uuid.UUID, isRead bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for index, existing := range r.reports {
		if existing.ReportID == reportID {
			r.reports[index].IsRead = isRead

			return nil
		}
	}

	return database.ErrNoResult
}

func (r *memoryRepository) DeleteReport(_ context.Context, reportID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for index, existing := range r.reports {
		if existing.ReportID == reportID {
			r.reports = append(r.reports[:index], r.reports[index+1:]...)

			return nil
		}
	}

	return database.ErrNoResult
}

type captureSender struct {
	mu       sync.Mutex
	messages []notification.Message
	fail     bool
}

func (s *captureSender) Send(_ context.Context, message notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return notification.ErrSendEmail
	}

	s.messages = append(s.messages, message)

	return nil
}

type fakeElevator struct {
	password string
}

func (e fakeElevator) SignIn(_ context.Context, _ string, password string) (string, error) {
	if password != e.password {
		return "", errors.New("invalid credentials")
	}

	return "token-123", nil
}

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func testContacts(repo contact.Repository, sender notification.Sender) contact.Contacts {
	assets := asset.NewAssets(asset.NewMemoryRepository(), asset.Limits{
		MaxImageSize: 1024 * 1024,
		MaxVideoSize: 1024 * 1024,
		MaxRawSize:   1024 * 1024,
	}, func(path string) string { return "http://localhost" + path })

	return contact.NewContacts(repo, assets, sender, fakeElevator{password: "hunter2"},
		nil, 2, supportAddress)
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	contacts := testContacts(&memoryRepository{}, &captureSender{})

	_, errEmpty := contacts.Submit(context.Background(), contact.Submission{
		Email: "a@b.it",
	})
	require.ErrorIs(t, errEmpty, contact.ErrDescriptionRequired)

	tooMany := contact.Submission{
		Description: "ciao",
		Email:       "a@b.it",
		Images: []asset.Upload{
			{Name: "1.png", Content: bytes.NewReader(pngHeader)},
			{Name: "2.png", Content: bytes.NewReader(pngHeader)},
			{Name: "3.png", Content: bytes.NewReader(pngHeader)},
		},
	}

	_, errImages := contacts.Submit(context.Background(), tooMany)
	require.ErrorIs(t, errImages, contact.ErrTooManyImages)
}

func TestSubmitDescriptionOnly(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{}
	contacts := testContacts(repo, &captureSender{})

	// Every identity field is optional, an anonymous report carries only the message.
	receipt, errSubmit := contacts.Submit(context.Background(), contact.Submission{
		Description: "ciao",
	})
	require.NoError(t, errSubmit)
	require.False(t, receipt.ReportID.IsNil())

	reports, errReports := contacts.Reports(context.Background())
	require.NoError(t, errReports)
	require.Len(t, reports, 1)
	require.Empty(t, reports[0].Name)
	require.Empty(t, reports[0].Email)
	require.Empty(t, reports[0].Phone)
}

func TestSubmitStoresAndNotifies(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{}
	sender := &captureSender{}
	contacts := testContacts(repo, sender)

	receipt, errSubmit := contacts.Submit(context.Background(), contact.Submission{
		Name:        "Mario",
		Surname:     "Rossi",
		Email:       "mario@example.com",
		Description: "C'e' un problema in piazza",
		Images:      []asset.Upload{{Name: "foto.png", Content: bytes.NewReader(pngHeader)}},
	})
	require.NoError(t, errSubmit)
	require.False(t, receipt.ReportID.IsNil())
	require.True(t, receipt.Notified)

	reports, errReports := contacts.Reports(context.Background())
	require.NoError(t, errReports)
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Images, 1)
	require.Contains(t, reports[0].Images[0].Src, "/media/")
	require.False(t, reports[0].IsRead)

	require.Len(t, sender.messages, 1)
	require.Contains(t, sender.messages[0].Subject, "Mario")
}

func TestSubmitNotifyFailureStillStores(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{}
	contacts := testContacts(repo, &captureSender{fail: true})

	receipt, errSubmit := contacts.Submit(context.Background(), contact.Submission{
		Email:       "a@b.it",
		Description: "ciao",
	})
	require.NoError(t, errSubmit)
	require.False(t, receipt.Notified)

	reports, errReports := contacts.Reports(context.Background())
	require.NoError(t, errReports)
	require.Len(t, reports, 1)
}

func TestSubmitSanitizesInput(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{}
	contacts := testContacts(repo, &captureSender{})

	_, errSubmit := contacts.Submit(context.Background(), contact.Submission{
		Email:       "a@b.it",
		Description: "ciao <script>alert(1)</script>",
	})
	require.NoError(t, errSubmit)

	reports, _ := contacts.Reports(context.Background())
	require.NotContains(t, reports[0].Description, "<script>")
}

func TestElevation(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{}
	contacts := testContacts(repo, &captureSender{})

	normal := contact.Submission{Name: "Mario", Surname: "Rossi"}
	require.False(t, contacts.IsElevation(normal))

	hidden := contact.Submission{Name: supportAddress, Surname: "hunter2"}
	require.True(t, contacts.IsElevation(hidden))

	token, errToken := contacts.Elevate(context.Background(), hidden)
	require.NoError(t, errToken)
	require.Equal(t, "token-123", token)

	_, errBad := contacts.Elevate(context.Background(),
		contact.Submission{Name: supportAddress, Surname: "wrong"})
	require.Error(t, errBad)

	// Elevation attempts are never stored as reports.
	reports, _ := contacts.Reports(context.Background())
	require.Empty(t, reports)
}

func TestReportReadAndDelete(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{}
	contacts := testContacts(repo, &captureSender{})

	receipt, errSubmit := contacts.Submit(context.Background(), contact.Submission{
		Email:       "a@b.it",
		Description: "ciao",
	})
	require.NoError(t, errSubmit)

	require.NoError(t, contacts.SetReportRead(context.Background(), receipt.ReportID, true))

	reports, _ := contacts.Reports(context.Background())
	require.True(t, reports[0].IsRead)

	require.NoError(t, contacts.DeleteReport(context.Background(), receipt.ReportID))

	reports, _ = contacts.Reports(context.Background())
	require.Empty(t, reports)
}

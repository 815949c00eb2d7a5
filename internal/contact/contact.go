// Package contact holds the public contact card and the message intake pipeline.
package contact

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/andiamooltre/oltreweb/internal/asset"
	"github.com/andiamooltre/oltreweb/internal/notification"
	"github.com/andiamooltre/oltreweb/pkg/broadcaster"
	"github.com/andiamooltre/oltreweb/pkg/log"
	"github.com/andiamooltre/oltreweb/pkg/stringutil"
)

var (
	ErrDescriptionRequired = errors.New("message description is required")
	ErrTooManyImages       = errors.New("too many attached images")
)

const TopicChanged = "contact_info"

// Info is the single public contact card.
type Info struct {
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Instagram string    `json:"instagram"`
	Facebook  string    `json:"facebook"`
	UpdatedOn time.Time `json:"updated_on,omitzero"`
}

type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Report is a stored contact form submission.
type Report struct {
	ReportID    uuid.UUID `json:"report_id"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Description string    `json:"description"`
	Images      []Image   `json:"images"`
	IsRead      bool      `json:"is_read"`
	CreatedOn   time.Time `json:"created_on"`
}

// Submission is an incoming contact form post before it is stored.
type Submission struct {
	Name        string
	Surname     string
	Email       string
	Phone       string
	Description string
	Images      []asset.Upload
}

// Receipt is returned to the submitter. Notified reports whether the admin email went
// out, a failed notification never fails the submission itself.
type Receipt struct {
	ReportID uuid.UUID `json:"report_id"`
	Notified bool      `json:"notified"`
}

type Repository interface {
	GetInfo(ctx context.Context, info *Info) error
	SaveInfo(ctx context.Context, info *Info) error
	InsertReport(ctx context.Context, report *Report) error
	ListReports(ctx context.Context) ([]Report, error)
	SetReportRead(ctx context.Context, reportID uuid.UUID, isRead bool) error
	DeleteReport(ctx context.Context, reportID uuid.UUID) error
}

// Elevator verifies hidden admin sign in attempts made through the contact form.
type Elevator interface {
	SignIn(ctx context.Context, email string, password string) (string, error)
}

type Contacts struct {
	repository     Repository
	assets         asset.Assets
	sender         notification.Sender
	elevator       Elevator
	changes        *broadcaster.Broadcaster[string]
	imageLimit     int
	supportAddress string
}

func NewContacts(repository Repository, assets asset.Assets, sender notification.Sender,
	elevator Elevator, changes *broadcaster.Broadcaster[string], imageLimit int,
	supportAddress string,
) Contacts {
	return Contacts{
		repository:     repository,
		assets:         assets,
		sender:         sender,
		elevator:       elevator,
		changes:        changes,
		imageLimit:     imageLimit,
		supportAddress: supportAddress,
	}
}

func (u Contacts) Info(ctx context.Context) (Info, error) {
	var info Info
	if errGet := u.repository.GetInfo(ctx, &info); errGet != nil {
		return Info{}, errGet
	}

	return info, nil
}

func (u Contacts) SaveInfo(ctx context.Context, info *Info) error {
	if errSave := u.repository.SaveInfo(ctx, info); errSave != nil {
		return errSave
	}

	if u.changes != nil {
		u.changes.Emit(TopicChanged)
	}

	return nil
}

// IsElevation reports whether a submission is actually a hidden admin sign in attempt,
// recognized by the name field holding the support address.
func (u Contacts) IsElevation(submission Submission) bool {
	return submission.Name == u.supportAddress
}

// Elevate attempts the hidden sign in, using the surname field as the password. The
// submission is never stored.
func (u Contacts) Elevate(ctx context.Context, submission Submission) (string, error) {
	return u.elevator.SignIn(ctx, u.supportAddress, submission.Surname)
}

// Submit validates and stores a contact form submission. Only the description is
// required, every identity field may be left empty for anonymous reports. Attached
// images upload as an atomic batch before the report row is written, so a stored
// report never references missing media. The admin notification is best effort.
func (u Contacts) Submit(ctx context.Context, submission Submission) (Receipt, error) {
	if submission.Description == "" {
		return Receipt{}, ErrDescriptionRequired
	}

	if len(submission.Images) > u.imageLimit {
		return Receipt{}, ErrTooManyImages
	}

	stored, errBatch := u.assets.CreateBatch(ctx, submission.Images)
	if errBatch != nil {
		return Receipt{}, errBatch
	}

	report := Report{
		Name:        stringutil.SanitizeUGC(submission.Name),
		Surname:     stringutil.SanitizeUGC(submission.Surname),
		Email:       stringutil.SanitizeUGC(submission.Email),
		Phone:       stringutil.SanitizeUGC(submission.Phone),
		Description: stringutil.SanitizeUGC(submission.Description),
	}

	imageURLs := make([]string, 0, len(stored))
	for _, saved := range stored {
		url := u.assets.URL(saved)
		report.Images = append(report.Images, Image{Src: url, Alt: saved.Name})
		imageURLs = append(imageURLs, url)
	}

	if errInsert := u.repository.InsertReport(ctx, &report); errInsert != nil {
		return Receipt{}, errInsert
	}

	receipt := Receipt{ReportID: report.ReportID}

	message := notification.NewContactMessage(report.Name, report.Surname, report.Email,
		report.Phone, report.Description, imageURLs)
	if errSend := u.sender.Send(ctx, message); errSend != nil {
		slog.Error("Failed to send contact notification",
			slog.String("report_id", report.ReportID.String()), log.ErrAttr(errSend))
	} else {
		receipt.Notified = true
	}

	return receipt, nil
}

func (u Contacts) Reports(ctx context.Context) ([]Report, error) {
	return u.repository.ListReports(ctx)
}

func (u Contacts) SetReportRead(ctx context.Context, reportID uuid.UUID, isRead bool) error {
	return u.repository.SetReportRead(ctx, reportID, isRead)
}

func (u Contacts) DeleteReport(ctx context.Context, reportID uuid.UUID) error {
	return u.repository.DeleteReport(ctx, reportID)
}

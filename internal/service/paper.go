package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"paperapi/internal/messaging"
	"paperapi/internal/model"
	"paperapi/internal/repository"
	"paperapi/internal/storage"
)

var (
	// ErrInvalidRequest means a caller-supplied field is missing or malformed.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrFileRequired means the upload carried no file part.
	ErrFileRequired = errors.New("file is required")
	// ErrUnsupportedMediaType means the uploaded file is not a PDF.
	ErrUnsupportedMediaType = errors.New("only PDF files are allowed")
	// ErrNotFound means no paper record exists for the id.
	ErrNotFound = errors.New("paper not found")
	// ErrFileMissing means the record exists but its stored file does not.
	ErrFileMissing = errors.New("paper file missing from storage")
	// ErrStorageWrite means the blob store rejected the upload.
	ErrStorageWrite = errors.New("storage write failed")
	// ErrStoreUnavailable means the record store could not be reached.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrDeliveryFailed means the messaging bridge did not accept the send.
	// The underlying cause (session, destination, rejection) is not distinguished.
	ErrDeliveryFailed = errors.New("failed to deliver paper")
)

const pdfMediaType = "application/pdf"

// UploadInput carries one multipart paper submission.
type UploadInput struct {
	Title       string
	Course      string
	Year        int
	File        io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// PaperService defines the use cases of the paper catalog.
type PaperService interface {
	// List returns every paper, newest exam year first.
	List(ctx context.Context) ([]model.Paper, error)

	// Upload validates the submission, writes the PDF to the blob store and
	// creates the catalog record. The blob is written first; if the record
	// insert then fails the blob is deleted best-effort.
	Upload(ctx context.Context, in UploadInput) (*model.Paper, error)

	// Download resolves a paper and opens its stored file for streaming.
	// The caller owns the returned ReadCloser.
	Download(ctx context.Context, id string) (*model.Paper, io.ReadCloser, error)

	// Deliver forwards a paper's file to phoneNumber over the messaging
	// bridge. Blocks until the bridge acknowledges; single attempt.
	Deliver(ctx context.Context, paperID, phoneNumber string) error
}

// paperService is the concrete implementation of PaperService.
type paperService struct {
	store         storage.Storage
	repo          repository.PaperRepository
	messenger     messaging.Client
	addressSuffix string
}

// NewPaperService constructs a new PaperService. addressSuffix is the
// messaging network's address suffix appended to normalized phone numbers
// (e.g. "@c.us").
func NewPaperService(store storage.Storage, repo repository.PaperRepository, messenger messaging.Client, addressSuffix string) PaperService {
	return &paperService{
		store:         store,
		repo:          repo,
		messenger:     messenger,
		addressSuffix: addressSuffix,
	}
}

func (s *paperService) List(ctx context.Context) ([]model.Paper, error) {
	papers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return papers, nil
}

func (s *paperService) Upload(ctx context.Context, in UploadInput) (*model.Paper, error) {
	title := strings.TrimSpace(in.Title)
	course := strings.TrimSpace(in.Course)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if course == "" {
		return nil, fmt.Errorf("%w: course is required", ErrInvalidRequest)
	}
	if in.File == nil {
		return nil, ErrFileRequired
	}

	mt, _, err := mime.ParseMediaType(in.ContentType)
	if err != nil || mt != pdfMediaType {
		return nil, ErrUnsupportedMediaType
	}

	// Timestamp+random naming avoids collisions between concurrent uploads.
	// Deliberately not content-addressed: identical uploads get distinct blobs.
	key := blobKey(in.Filename)

	// Blob first, record after; a record never points at a file that was
	// never written.
	if _, err := s.store.Put(ctx, key, in.File, storage.PutOptions{
		Size:        in.Size,
		ContentType: pdfMediaType,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	paper := &model.Paper{
		ID:        uuid.New().String(),
		Title:     title,
		Course:    course,
		Year:      in.Year,
		FilePath:  key,
		CreatedAt: time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, paper)
	if err != nil {
		// Compensating cleanup so the blob is not orphaned.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("save paper failed: %v; blob cleanup failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("save paper failed: %w", err)
	}
	return stored, nil
}

func (s *paperService) Download(ctx context.Context, id string) (*model.Paper, io.ReadCloser, error) {
	if id == "" {
		return nil, nil, fmt.Errorf("%w: id is required", ErrInvalidRequest)
	}

	paper, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	rc, _, err := s.store.Get(ctx, paper.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, nil, ErrFileMissing
		}
		return nil, nil, fmt.Errorf("open paper file: %w", err)
	}
	return paper, rc, nil
}

func (s *paperService) Deliver(ctx context.Context, paperID, phoneNumber string) error {
	// Both fields are required before any lookup happens.
	if paperID == "" || phoneNumber == "" {
		return fmt.Errorf("%w: paperId and phoneNumber are required", ErrInvalidRequest)
	}

	paper, err := s.repo.FindByID(ctx, paperID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	destination := stripNonDigits(phoneNumber) + s.addressSuffix

	rc, _, err := s.store.Get(ctx, paper.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return ErrFileMissing
		}
		return fmt.Errorf("open paper file: %w", err)
	}
	defer rc.Close()

	caption := "Requested: " + paper.Title
	if err := s.messenger.SendMedia(ctx, destination, rc, paper.Title+".pdf", caption); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// blobKey builds the stored filename: fixed field tag, current epoch millis,
// random disambiguator and the original file's extension.
func blobKey(originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	return fmt.Sprintf("file-%d-%d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
}

// stripNonDigits keeps only decimal digits. No length or country-code
// validation; an empty result is forwarded as-is.
func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

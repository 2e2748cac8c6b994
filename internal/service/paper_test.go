package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"

	msgMocks "paperapi/internal/messaging/mocks"
	"paperapi/internal/model"
	repoMocks "paperapi/internal/repository/mocks"
	"paperapi/internal/storage"
	storeMocks "paperapi/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var blobKeyPattern = regexp.MustCompile(`^file-\d+-\d+\.pdf$`)

func newTestService(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPaperRepository, mMsg *msgMocks.MockClient) PaperService {
	return NewPaperService(mStore, mRepo, mMsg, "@c.us")
}

func TestPaperService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		in         UploadInput
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPaperRepository)
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "happy path",
			in: UploadInput{
				Title:       "  Algorithms Midterm ",
				Course:      " CS202 ",
				Year:        2022,
				File:        strings.NewReader("%PDF-1.4"),
				Filename:    "midterm.pdf",
				ContentType: "application/pdf",
				Size:        8,
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPaperRepository) {
				mStore.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return blobKeyPattern.MatchString(key)
				}), mock.Anything, storage.PutOptions{
					Size:        8,
					ContentType: "application/pdf",
				}).Return(storage.BlobInfo{Size: 8}, nil)

				mRepo.On("Create", ctx, mock.MatchedBy(func(p *model.Paper) bool {
					return p.ID != "" &&
						p.Title == "Algorithms Midterm" &&
						p.Course == "CS202" &&
						p.Year == 2022 &&
						blobKeyPattern.MatchString(p.FilePath) &&
						!p.CreatedAt.IsZero()
				})).Return(&model.Paper{ID: "gen-id", Title: "Algorithms Midterm"}, nil)
			},
			wantErr: nil,
		},
		{
			name: "content type with parameters accepted",
			in: UploadInput{
				Title:       "Paper",
				Course:      "PHY 212",
				Year:        2020,
				File:        strings.NewReader("x"),
				Filename:    "p.pdf",
				ContentType: "application/pdf; charset=binary",
				Size:        1,
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPaperRepository) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.BlobInfo{}, nil)
				mRepo.On("Create", ctx, mock.Anything).
					Return(&model.Paper{ID: "gen-id"}, nil)
			},
			wantErr: nil,
		},
		{
			name: "missing title",
			in: UploadInput{
				Title:       "   ",
				Course:      "CS202",
				File:        strings.NewReader("x"),
				ContentType: "application/pdf",
			},
			setupMocks: func(*storeMocks.MockStorage, *repoMocks.MockPaperRepository) {},
			wantErr:    ErrInvalidRequest,
		},
		{
			name: "missing course",
			in: UploadInput{
				Title:       "Paper",
				Course:      "",
				File:        strings.NewReader("x"),
				ContentType: "application/pdf",
			},
			setupMocks: func(*storeMocks.MockStorage, *repoMocks.MockPaperRepository) {},
			wantErr:    ErrInvalidRequest,
		},
		{
			name: "nil file",
			in: UploadInput{
				Title:       "Paper",
				Course:      "CS202",
				ContentType: "application/pdf",
			},
			setupMocks: func(*storeMocks.MockStorage, *repoMocks.MockPaperRepository) {},
			wantErr:    ErrFileRequired,
		},
		{
			name: "non-pdf upload rejected before any write",
			in: UploadInput{
				Title:       "Paper",
				Course:      "CS202",
				File:        strings.NewReader("png bytes"),
				Filename:    "scan.png",
				ContentType: "image/png",
			},
			setupMocks: func(*storeMocks.MockStorage, *repoMocks.MockPaperRepository) {},
			wantErr:    ErrUnsupportedMediaType,
		},
		{
			name: "storage write failure creates no record",
			in: UploadInput{
				Title:       "Paper",
				Course:      "CS202",
				File:        strings.NewReader("x"),
				Filename:    "p.pdf",
				ContentType: "application/pdf",
				Size:        1,
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPaperRepository) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.BlobInfo{}, errors.New("disk full"))
			},
			wantErr: ErrStorageWrite,
		},
		{
			name: "record failure triggers blob cleanup",
			in: UploadInput{
				Title:       "Paper",
				Course:      "CS202",
				File:        strings.NewReader("x"),
				Filename:    "p.pdf",
				ContentType: "application/pdf",
				Size:        1,
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPaperRepository) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.BlobInfo{}, nil)
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.MatchedBy(func(key string) bool {
					return blobKeyPattern.MatchString(key)
				})).Return(nil)
			},
			wantErrMsg: "save paper failed: db fail",
		},
		{
			name: "record failure with failed cleanup",
			in: UploadInput{
				Title:       "Paper",
				Course:      "CS202",
				File:        strings.NewReader("x"),
				Filename:    "p.pdf",
				ContentType: "application/pdf",
				Size:        1,
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPaperRepository) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.BlobInfo{}, nil)
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).
					Return(errors.New("delete fail"))
			},
			wantErrMsg: "blob cleanup failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockPaperRepository)
			svc := newTestService(mStore, mRepo, new(msgMocks.MockClient))

			tt.setupMocks(mStore, mRepo)

			p, err := svc.Upload(ctx, tt.in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, p)
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestPaperService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("passes through repository order", func(t *testing.T) {
		mRepo := new(repoMocks.MockPaperRepository)
		svc := newTestService(new(storeMocks.MockStorage), mRepo, new(msgMocks.MockClient))

		expected := []model.Paper{
			{ID: "a", Year: 2023},
			{ID: "b", Year: 2018},
			{ID: "c", Year: 2016},
		}
		mRepo.On("List", ctx).Return(expected, nil)

		papers, err := svc.List(ctx)

		assert.NoError(t, err)
		assert.Equal(t, expected, papers)
		mRepo.AssertExpectations(t)
	})

	t.Run("store unavailable", func(t *testing.T) {
		mRepo := new(repoMocks.MockPaperRepository)
		svc := newTestService(new(storeMocks.MockStorage), mRepo, new(msgMocks.MockClient))

		mRepo.On("List", ctx).Return(nil, errors.New("connection refused"))

		papers, err := svc.List(ctx)

		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Nil(t, papers)
	})
}

func TestPaperService_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockPaperRepository)
		svc := newTestService(mStore, mRepo, new(msgMocks.MockClient))

		paper := &model.Paper{ID: "id-1", Title: "Electricity and Magnetism", FilePath: "file-1-1.pdf"}
		mRepo.On("FindByID", ctx, "id-1").Return(paper, nil)
		mStore.On("Get", ctx, "file-1-1.pdf").
			Return(io.NopCloser(strings.NewReader("pdf bytes")), storage.BlobInfo{Size: 9}, nil)

		got, rc, err := svc.Download(ctx, "id-1")

		assert.NoError(t, err)
		assert.Equal(t, paper, got)

		b, _ := io.ReadAll(rc)
		rc.Close()
		assert.Equal(t, "pdf bytes", string(b))
	})

	t.Run("empty id", func(t *testing.T) {
		svc := newTestService(new(storeMocks.MockStorage), new(repoMocks.MockPaperRepository), new(msgMocks.MockClient))
		_, _, err := svc.Download(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("record not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockPaperRepository)
		svc := newTestService(new(storeMocks.MockStorage), mRepo, new(msgMocks.MockClient))

		mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		_, _, err := svc.Download(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("blob deleted out of band", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockPaperRepository)
		svc := newTestService(mStore, mRepo, new(msgMocks.MockClient))

		mRepo.On("FindByID", ctx, "id-1").
			Return(&model.Paper{ID: "id-1", FilePath: "file-1-1.pdf"}, nil)
		mStore.On("Get", ctx, "file-1-1.pdf").
			Return(nil, storage.BlobInfo{}, storage.ErrNotExist)

		_, _, err := svc.Download(ctx, "id-1")
		assert.ErrorIs(t, err, ErrFileMissing)
	})
}

func TestPaperService_Deliver(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes phone number and sends with caption", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockPaperRepository)
		mMsg := new(msgMocks.MockClient)
		svc := newTestService(mStore, mRepo, mMsg)

		paper := &model.Paper{ID: "id-1", Title: "Electricity and Magnetism", FilePath: "file-1-1.pdf"}
		mRepo.On("FindByID", ctx, "id-1").Return(paper, nil)
		mStore.On("Get", ctx, "file-1-1.pdf").
			Return(io.NopCloser(strings.NewReader("pdf bytes")), storage.BlobInfo{}, nil)
		mMsg.On("SendMedia", ctx, "254712345678@c.us", mock.Anything,
			"Electricity and Magnetism.pdf", "Requested: Electricity and Magnetism").
			Return(nil)

		err := svc.Deliver(ctx, "id-1", "+254 712-345678")

		assert.NoError(t, err)
		mMsg.AssertExpectations(t)
	})

	t.Run("empty phone rejected before lookup", func(t *testing.T) {
		mRepo := new(repoMocks.MockPaperRepository)
		svc := newTestService(new(storeMocks.MockStorage), mRepo, new(msgMocks.MockClient))

		err := svc.Deliver(ctx, "id-1", "")

		assert.ErrorIs(t, err, ErrInvalidRequest)
		mRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("empty paper id rejected before lookup", func(t *testing.T) {
		mRepo := new(repoMocks.MockPaperRepository)
		svc := newTestService(new(storeMocks.MockStorage), mRepo, new(msgMocks.MockClient))

		err := svc.Deliver(ctx, "", "254712345678")

		assert.ErrorIs(t, err, ErrInvalidRequest)
		mRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("digit-free phone is still forwarded", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockPaperRepository)
		mMsg := new(msgMocks.MockClient)
		svc := newTestService(mStore, mRepo, mMsg)

		mRepo.On("FindByID", ctx, "id-1").
			Return(&model.Paper{ID: "id-1", Title: "T", FilePath: "f.pdf"}, nil)
		mStore.On("Get", ctx, "f.pdf").
			Return(io.NopCloser(strings.NewReader("x")), storage.BlobInfo{}, nil)
		mMsg.On("SendMedia", ctx, "@c.us", mock.Anything, "T.pdf", "Requested: T").
			Return(nil)

		assert.NoError(t, svc.Deliver(ctx, "id-1", "+-() "))
		mMsg.AssertExpectations(t)
	})

	t.Run("record not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockPaperRepository)
		svc := newTestService(new(storeMocks.MockStorage), mRepo, new(msgMocks.MockClient))

		mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		assert.ErrorIs(t, svc.Deliver(ctx, "missing", "123"), ErrNotFound)
	})

	t.Run("blob missing", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockPaperRepository)
		svc := newTestService(mStore, mRepo, new(msgMocks.MockClient))

		mRepo.On("FindByID", ctx, "id-1").
			Return(&model.Paper{ID: "id-1", FilePath: "f.pdf"}, nil)
		mStore.On("Get", ctx, "f.pdf").
			Return(nil, storage.BlobInfo{}, storage.ErrNotExist)

		assert.ErrorIs(t, svc.Deliver(ctx, "id-1", "123"), ErrFileMissing)
	})

	t.Run("bridge failure maps to delivery error", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockPaperRepository)
		mMsg := new(msgMocks.MockClient)
		svc := newTestService(mStore, mRepo, mMsg)

		mRepo.On("FindByID", ctx, "id-1").
			Return(&model.Paper{ID: "id-1", Title: "T", FilePath: "f.pdf"}, nil)
		mStore.On("Get", ctx, "f.pdf").
			Return(io.NopCloser(strings.NewReader("x")), storage.BlobInfo{}, nil)
		mMsg.On("SendMedia", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("session not authenticated"))

		assert.ErrorIs(t, svc.Deliver(ctx, "id-1", "123"), ErrDeliveryFailed)
	})
}

func TestStripNonDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+254 712-345678", "254712345678"},
		{"(555) 010 2345", "5550102345"},
		{"no digits", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripNonDigits(tt.in))
	}
}

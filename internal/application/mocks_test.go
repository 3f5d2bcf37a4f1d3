package application

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/jobify/internal/domain/entity"
	repo "github.com/oksasatya/jobify/internal/domain/repository"
	"github.com/oksasatya/jobify/internal/domain/service"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) ListAll(ctx context.Context) ([]*entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id entity.EntityID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email entity.Email) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) Create(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepo) Update(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepo) UpdateProfileImage(ctx context.Context, id entity.EntityID, imageID string) (*entity.User, error) {
	args := m.Called(ctx, id, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) Delete(ctx context.Context, id entity.EntityID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepo) ListImageIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) ListAll(ctx context.Context) ([]*entity.Job, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Job), args.Error(1)
}

func (m *MockJobRepo) GetByID(ctx context.Context, id entity.EntityID) (*entity.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Job), args.Error(1)
}

func (m *MockJobRepo) Create(ctx context.Context, j *entity.Job) error {
	return m.Called(ctx, j).Error(0)
}

func (m *MockJobRepo) Update(ctx context.Context, j *entity.Job) error {
	return m.Called(ctx, j).Error(0)
}

func (m *MockJobRepo) Delete(ctx context.Context, id entity.EntityID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockJobRepo) FindByIDAndOwner(ctx context.Context, id, ownerID entity.EntityID) (*entity.Job, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Job), args.Error(1)
}

func (m *MockJobRepo) ListByOwner(ctx context.Context, ownerID *entity.EntityID, q repo.JobQuery) ([]*entity.Job, int64, error) {
	args := m.Called(ctx, ownerID, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entity.Job), args.Get(1).(int64), args.Error(2)
}

func (m *MockJobRepo) GetStats(ctx context.Context, ownerID entity.EntityID) (*repo.JobStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.JobStats), args.Error(1)
}

func (m *MockJobRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) UploadFile(ctx context.Context, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) DeleteFile(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBlobStore) GetFile(ctx context.Context, id string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.String(1), args.Error(2)
}

func (m *MockBlobStore) ListFiles(ctx context.Context) ([]service.BlobInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.BlobInfo), args.Error(1)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Open(ctx context.Context, s service.Session, ttl time.Duration) error {
	return m.Called(ctx, s, ttl).Error(0)
}

func (m *MockSessionStore) Get(ctx context.Context, userID string) (*service.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockSessionStore) Touch(ctx context.Context, userID string, fields map[string]any) error {
	return m.Called(ctx, userID, fields).Error(0)
}

func (m *MockSessionStore) Close(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockEmailQueue struct {
	mock.Mock
}

func (m *MockEmailQueue) PublishJSON(ctx context.Context, body any) error {
	return m.Called(ctx, body).Error(0)
}

type MockUserIndex struct {
	mock.Mock
}

func (m *MockUserIndex) Index(ctx context.Context, doc service.UserDocument) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockUserIndex) Search(ctx context.Context, q string, size int) ([]service.UserDocument, error) {
	args := m.Called(ctx, q, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.UserDocument), args.Error(1)
}

// fakeHasher prefixes instead of hashing so tests stay fast.
type fakeHasher struct{}

func (fakeHasher) Hash(raw string) (string, error) { return "hashed:" + raw, nil }
func (fakeHasher) Compare(hashed, raw string) bool { return hashed == "hashed:"+raw }

type fakeTokens struct{}

func (fakeTokens) Issue(c service.TokenClaims) (string, time.Time, error) {
	return "token:" + c.UserID + ":" + c.Role.String(), fixedNow.Add(24 * time.Hour), nil
}

func (fakeTokens) Verify(token string) (*service.TokenClaims, error) {
	return nil, nil
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

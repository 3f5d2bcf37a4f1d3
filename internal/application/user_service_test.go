package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/jobify/internal/domain/entity"
	repo "github.com/oksasatya/jobify/internal/domain/repository"
	"github.com/oksasatya/jobify/internal/domain/service"
	"github.com/oksasatya/jobify/pkg/apperror"
	"github.com/oksasatya/jobify/pkg/mailer"
	mailtpl "github.com/oksasatya/jobify/pkg/mailer/templates"
)

type userFixture struct {
	svc      *UserService
	users    *MockUserRepo
	jobs     *MockJobRepo
	sessions *MockSessionStore
	blobs    *MockBlobStore
	emails   *MockEmailQueue
	index    *MockUserIndex
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:    new(MockUserRepo),
		jobs:     new(MockJobRepo),
		sessions: new(MockSessionStore),
		blobs:    new(MockBlobStore),
		emails:   new(MockEmailQueue),
		index:    new(MockUserIndex),
	}
	f.svc = NewUserService(f.users, f.jobs, fakeHasher{}, fakeTokens{}, f.sessions, quietLogger())
	f.svc.Blobs = f.blobs
	f.svc.Emails = f.emails
	f.svc.Index = f.index
	f.svc.now = fixedClock
	return f
}

func validRegistration() RegisterInput {
	return RegisterInput{Name: "Ann", LastName: "Lee", Email: "Ann@X.com", Password: "secret1", Location: "Berlin"}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	email, _ := entity.NewEmail("ann@x.com")

	f.users.On("FindByEmail", ctx, email).Return(nil, repo.ErrNotFound)
	f.users.On("Create", ctx, mock.AnythingOfType("*entity.User")).Run(func(args mock.Arguments) {
		u := args.Get(1).(*entity.User)
		assert.Equal(t, "hashed:secret1", u.Password.Hashed())
		assert.Equal(t, entity.RoleUser, u.Role)
		u.ID = entity.GenerateEntityID()
	}).Return(nil).Once()
	f.index.On("Index", ctx, mock.AnythingOfType("service.UserDocument")).Return(nil)
	f.emails.On("PublishJSON", ctx, mock.MatchedBy(func(job mailer.EmailJob) bool {
		return job.To == "ann@x.com" && job.Template == mailtpl.Welcome
	})).Return(nil).Once()

	summary, err := f.svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, summary.ID)
	assert.Equal(t, "ann@x.com", summary.Email)
	assert.Equal(t, entity.RoleUser, summary.Role)
	assert.Equal(t, fixedNow, summary.CreatedAt)
	f.users.AssertExpectations(t)
	f.emails.AssertExpectations(t)
}

func TestRegisterSideEffectFailuresAreIgnored(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()

	f.users.On("FindByEmail", ctx, mock.Anything).Return(nil, repo.ErrNotFound)
	f.users.On("Create", ctx, mock.Anything).Return(nil)
	f.index.On("Index", ctx, mock.Anything).Return(errors.New("es down"))
	f.emails.On("PublishJSON", ctx, mock.Anything).Return(errors.New("amqp down"))

	_, err := f.svc.Register(ctx, validRegistration())
	assert.NoError(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	existing := testUser(t, "ann@x.com", entity.RoleUser)
	f.users.On("FindByEmail", ctx, existing.Email).Return(existing, nil)

	_, err := f.svc.Register(ctx, validRegistration())
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
	assert.EqualError(t, err, "E-mail already in use")
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterLosesRaceOnEmail(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	f.users.On("FindByEmail", ctx, mock.Anything).Return(nil, repo.ErrNotFound)
	f.users.On("Create", ctx, mock.Anything).Return(fmt.Errorf("%w: users_email_key", repo.ErrDuplicate))

	_, err := f.svc.Register(ctx, validRegistration())
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
	assert.EqualError(t, err, "E-mail already in use")
	f.emails.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	f.users.On("FindByEmail", ctx, mock.Anything).Return(nil, repo.ErrNotFound)

	in := validRegistration()
	in.Password = "123"
	_, err := f.svc.Register(ctx, in)
	assert.EqualError(t, err, "password must be at least 6 characters long")

	in = validRegistration()
	in.Email = "not-an-email"
	_, err = f.svc.Register(ctx, in)
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	in = validRegistration()
	in.Location = ""
	_, err = f.svc.Register(ctx, in)
	assert.EqualError(t, err, "location is required")
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	u := testUser(t, "ann@x.com", entity.RoleAdmin)
	f.users.On("FindByEmail", ctx, u.Email).Return(u, nil)
	f.sessions.On("Open", ctx, mock.MatchedBy(func(s service.Session) bool {
		return s.UserID == u.ID.String() && s.Role == entity.RoleAdmin
	}), 24*time.Hour).Return(nil).Once()

	res, err := f.svc.Login(ctx, LoginInput{Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "token:"+u.ID.String()+":admin", res.Token)
	assert.Equal(t, u.ID.String(), res.User.ID)
	f.sessions.AssertExpectations(t)
}

func TestLoginFailuresShareMessage(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	u := testUser(t, "ann@x.com", entity.RoleUser)
	unknown, _ := entity.NewEmail("nobody@x.com")
	f.users.On("FindByEmail", ctx, u.Email).Return(u, nil)
	f.users.On("FindByEmail", ctx, unknown).Return(nil, repo.ErrNotFound)

	_, wrongPassword := f.svc.Login(ctx, LoginInput{Email: "ann@x.com", Password: "nope123"})
	_, noUser := f.svc.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "secret1"})

	for _, err := range []error{wrongPassword, noUser} {
		assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))
		assert.EqualError(t, err, "Invalid credentials")
	}
	f.sessions.AssertNotCalled(t, "Open", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogoutClosesSession(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	f.sessions.On("Close", ctx, "abc").Return(nil).Once()

	require.NoError(t, f.svc.Logout(ctx, "abc"))
	f.sessions.AssertExpectations(t)
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	u := testUser(t, "ann@x.com", entity.RoleUser)
	ghost := entity.GenerateEntityID()
	f.users.On("GetByID", ctx, u.ID).Return(u, nil)
	f.users.On("GetByID", ctx, ghost).Return(nil, repo.ErrNotFound)

	s, err := f.svc.CurrentUser(ctx, u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", s.Email)

	_, err = f.svc.CurrentUser(ctx, ghost.String())
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthenticated))
}

func TestUpdateProfileWithoutImage(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	u := testUser(t, "ann@x.com", entity.RoleUser)

	f.users.On("GetByID", ctx, u.ID).Return(u, nil)
	f.users.On("Update", ctx, mock.MatchedBy(func(n *entity.User) bool {
		return n.Name == "Anna" && n.Email == u.Email && n.Password == u.Password
	})).Return(nil).Once()
	f.sessions.On("Touch", ctx, u.ID.String(), map[string]any{"name": "Anna"}).Return(nil)
	f.index.On("Index", ctx, mock.Anything).Return(nil)
	f.emails.On("PublishJSON", ctx, mock.MatchedBy(func(job mailer.EmailJob) bool {
		return job.Template == mailtpl.ProfileUpdated
	})).Return(nil).Once()

	updated, err := f.svc.UpdateProfile(ctx, UpdateProfileInput{UserID: u.ID.String(), Name: "Anna", LastName: "Lee", Location: "Oslo"})
	require.NoError(t, err)
	assert.Equal(t, "Oslo", updated.Location)
	assert.Equal(t, u.Email, updated.Email)
	f.blobs.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything)
	f.users.AssertExpectations(t)
	f.emails.AssertExpectations(t)
}

func TestUpdateProfileMissingUser(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	ghost := entity.GenerateEntityID()
	f.users.On("GetByID", ctx, ghost).Return(nil, repo.ErrNotFound)

	_, err := f.svc.UpdateProfile(ctx, UpdateProfileInput{UserID: ghost.String(), Name: "A", LastName: "B", Location: "C"})
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
	assert.EqualError(t, err, "user not found")
}

func TestUpdateProfileOversizedImageKeepsTextUpdate(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	u := testUser(t, "ann@x.com", entity.RoleUser)
	f.users.On("GetByID", ctx, u.ID).Return(u, nil)
	f.users.On("Update", ctx, mock.Anything).Return(nil).Once()

	_, err := f.svc.UpdateProfile(ctx, UpdateProfileInput{
		UserID:   u.ID.String(),
		Name:     "Anna",
		LastName: "Lee",
		Location: "Oslo",
		Image:    make([]byte, DefaultImageMaxBytes+1),
	})
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
	assert.EqualError(t, err, "Image must be smaller than 2MB")
	f.users.AssertNumberOfCalls(t, "Update", 1)
	f.blobs.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateProfileReplacesImage(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	u := testUser(t, "ann@x.com", entity.RoleUser).WithImage("old-img", fixedNow)
	img := []byte("png-bytes")
	stored := u.WithImage("new-img", fixedNow)

	f.users.On("GetByID", ctx, u.ID).Return(u, nil)
	f.users.On("Update", ctx, mock.Anything).Return(nil)
	f.blobs.On("DeleteFile", ctx, "old-img").Return(errors.New("already gone")).Once()
	f.blobs.On("UploadFile", ctx, img, "image/png").Return("new-img", nil).Once()
	f.users.On("UpdateProfileImage", ctx, u.ID, "new-img").Return(stored, nil).Once()
	f.sessions.On("Touch", ctx, mock.Anything, mock.Anything).Return(nil)
	f.index.On("Index", ctx, mock.Anything).Return(nil)
	f.emails.On("PublishJSON", ctx, mock.Anything).Return(nil)

	res, err := f.svc.UpdateProfile(ctx, UpdateProfileInput{
		UserID:           u.ID.String(),
		Name:             u.Name,
		LastName:         u.LastName,
		Location:         u.Location,
		Image:            img,
		ImageContentType: "image/png",
	})
	require.NoError(t, err, "a failed delete of the old image is not fatal")
	assert.Equal(t, "new-img", res.ImageID)
	f.blobs.AssertExpectations(t)
	f.users.AssertExpectations(t)
}

func TestProfileImage(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	owner := testUser(t, "ann@x.com", entity.RoleUser).WithImage("img-1", fixedNow)
	other := testUser(t, "bob@x.com", entity.RoleUser)
	f.users.On("GetByID", ctx, owner.ID).Return(owner, nil)
	f.users.On("GetByID", ctx, other.ID).Return(other, nil)
	f.blobs.On("GetFile", ctx, "img-1").Return(io.NopCloser(bytes.NewReader([]byte("png"))), "image/png", nil)

	rc, ct, err := f.svc.ProfileImage(ctx, owner.ID.String(), owner.ID.String())
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "image/png", ct)

	_, _, err = f.svc.ProfileImage(ctx, other.ID.String(), owner.ID.String())
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))

	_, _, err = f.svc.ProfileImage(ctx, other.ID.String(), other.ID.String())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestAppStatsWithoutCache(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	f.users.On("Count", ctx).Return(int64(3), nil)
	f.jobs.On("Count", ctx).Return(int64(42), nil)

	stats, err := f.svc.AppStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &AppStats{Users: 3, Jobs: 42}, stats)
}

func TestSearchUsers(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	docs := []service.UserDocument{{ID: "1", Email: "ann@x.com"}}
	f.index.On("Search", ctx, "ann", 10).Return(docs, nil)

	got, err := f.svc.SearchUsers(ctx, "ann", 10)
	require.NoError(t, err)
	assert.Equal(t, docs, got)

	f.svc.Index = nil
	got, err = f.svc.SearchUsers(ctx, "ann", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSizeLabel(t *testing.T) {
	assert.Equal(t, "2MB", sizeLabel(2<<20))
	assert.Equal(t, "512KB", sizeLabel(512<<10))
	assert.Equal(t, "1536KB", sizeLabel(3<<19))
}

package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/jobify/internal/domain/entity"
	repo "github.com/oksasatya/jobify/internal/domain/repository"
	"github.com/oksasatya/jobify/internal/domain/service"
	"github.com/oksasatya/jobify/pkg/apperror"
	"github.com/oksasatya/jobify/pkg/helpers"
	"github.com/oksasatya/jobify/pkg/mailer"
	mailtpl "github.com/oksasatya/jobify/pkg/mailer/templates"
)

const (
	DefaultImageMaxBytes = 2 << 20

	appStatsCacheTTL = 30 * time.Second
)

var appStatsCacheKey = helpers.RedisKey("stats", "app")

// UserService covers registration, login and the profile.
// Blobs, Emails, Index and Cache are optional.
type UserService struct {
	Repo     repo.UserRepository
	Jobs     repo.JobRepository
	Hasher   service.PasswordHasher
	Tokens   service.TokenIssuer
	Sessions service.SessionStore
	Blobs    service.BlobStore
	Emails   service.EmailQueue
	Index    service.UserIndex
	Cache    *redis.Client
	Logger   *logrus.Logger

	Brand         mailtpl.Brand
	ImageMaxBytes int64

	ownership *OwnershipValidator
	now       func() time.Time
}

func NewUserService(users repo.UserRepository, jobs repo.JobRepository, hasher service.PasswordHasher, tokens service.TokenIssuer, sessions service.SessionStore, logger *logrus.Logger) *UserService {
	return &UserService{
		Repo:          users,
		Jobs:          jobs,
		Hasher:        hasher,
		Tokens:        tokens,
		Sessions:      sessions,
		Logger:        logger,
		ImageMaxBytes: DefaultImageMaxBytes,
		ownership:     NewOwnershipValidator(users),
		now:           time.Now,
	}
}

type RegisterInput struct {
	Name     string
	LastName string
	Email    string
	Password string
	Location string
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.UserSummary, error) {
	email, err := entity.NewEmail(in.Email)
	if err != nil {
		return nil, err
	}
	existing, err := s.Repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, internal(err)
	}
	if existing != nil {
		return nil, apperror.BadRequest(msgEmailInUse)
	}

	pwd, err := entity.NewRawPassword(in.Password, s.Hasher.Hash)
	if err != nil {
		return nil, err
	}
	now := s.now()
	u, err := entity.NewUser(entity.UserParams{
		Name:      in.Name,
		LastName:  in.LastName,
		Email:     email,
		Password:  pwd,
		Location:  in.Location,
		Role:      entity.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.BadRequest(msgEmailInUse)
		}
		s.Logger.WithError(err).WithField("email", email.String()).Error("create user failed")
		return nil, internal(err)
	}

	usersRegistered.Add(1)
	s.dropAppStats(ctx)
	s.indexUser(ctx, u)
	s.enqueueEmail(ctx, mailer.EmailJob{
		To:       u.Email.String(),
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(s.Brand, u.Name, u.Email.String(), mailtpl.WithTime(now)),
	})

	summary := u.Summary()
	return &summary, nil
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      entity.UserSummary
}

// Login never says whether the email or the password was wrong.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email, err := entity.NewEmail(in.Email)
	if err != nil {
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}
	u, err := s.Repo.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && u == nil) {
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return nil, internal(err)
	}
	if !s.Hasher.Compare(u.Password.Hashed(), in.Password) {
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	token, exp, err := s.Tokens.Issue(service.TokenClaims{UserID: u.ID.String(), Role: u.Role})
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		return nil, internal(err)
	}
	if s.Sessions != nil {
		sess := service.Session{
			UserID:    u.ID.String(),
			Role:      u.Role,
			Name:      u.Name,
			Email:     u.Email.String(),
			CreatedAt: s.now(),
		}
		if err := s.Sessions.Open(ctx, sess, exp.Sub(s.now())); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("open session failed")
			return nil, internal(err)
		}
	}
	loginsSucceeded.Add(1)
	return &LoginResult{Token: token, ExpiresAt: exp, User: u.Summary()}, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	if s.Sessions == nil || userID == "" {
		return nil
	}
	if err := s.Sessions.Close(ctx, userID); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("close session failed")
		return internal(err)
	}
	return nil
}

func (s *UserService) CurrentUser(ctx context.Context, userID string) (*entity.UserSummary, error) {
	uid, err := actingUserID(userID)
	if err != nil {
		return nil, err
	}
	u, err := findUser(ctx, s.Repo, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperror.Unauthenticated(msgAuthInvalid)
	}
	summary := u.Summary()
	return &summary, nil
}

type UpdateProfileInput struct {
	UserID   string
	Name     string
	LastName string
	Location string
	// Image is nil when no new picture was sent.
	Image            []byte
	ImageContentType string
}

// UpdateProfile commits the text fields before looking at the image, so an
// oversized image leaves the new name and location in place.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*entity.User, error) {
	uid, err := actingUserID(in.UserID)
	if err != nil {
		return nil, err
	}
	u, err := findUser(ctx, s.Repo, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperror.BadRequest("user not found")
	}

	updated, err := u.WithProfile(in.Name, in.LastName, in.Location, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, updated); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("update user failed")
		return nil, internal(err)
	}
	changes := profileChanges(u, updated)

	if in.Image == nil {
		s.afterProfileUpdate(ctx, updated, changes)
		return updated, nil
	}

	if int64(len(in.Image)) > s.ImageMaxBytes {
		return nil, apperror.BadRequest("Image must be smaller than " + sizeLabel(s.ImageMaxBytes))
	}
	if s.Blobs == nil {
		return nil, apperror.Internal(errors.New("blob store not configured"))
	}
	if updated.HasImage() {
		if err := s.Blobs.DeleteFile(ctx, updated.ImageID); err != nil {
			s.Logger.WithError(err).WithField("image_id", updated.ImageID).Warn("delete previous image failed")
		}
	}
	imageID, err := s.Blobs.UploadFile(ctx, in.Image, in.ImageContentType)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("upload image failed")
		return nil, internal(err)
	}
	withImage, err := s.Repo.UpdateProfileImage(ctx, updated.ID, imageID)
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "image_id": imageID}).Error("store image id failed")
		return nil, internal(err)
	}
	changes["image"] = "updated"
	s.afterProfileUpdate(ctx, withImage, changes)
	return withImage, nil
}

// sizeLabel prints whole megabytes when possible and kilobytes otherwise.
func sizeLabel(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	return fmt.Sprintf("%dKB", n>>10)
}

func profileChanges(before, after *entity.User) map[string]string {
	ch := map[string]string{}
	if before.Name != after.Name {
		ch["name"] = after.Name
	}
	if before.LastName != after.LastName {
		ch["lastName"] = after.LastName
	}
	if before.Location != after.Location {
		ch["location"] = after.Location
	}
	return ch
}

func (s *UserService) afterProfileUpdate(ctx context.Context, u *entity.User, changes map[string]string) {
	if s.Sessions != nil {
		if err := s.Sessions.Touch(ctx, u.ID.String(), map[string]any{"name": u.Name}); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("refresh session failed")
		}
	}
	s.indexUser(ctx, u)
	if len(changes) > 0 {
		s.enqueueEmail(ctx, mailer.EmailJob{
			To:       u.Email.String(),
			Template: mailtpl.ProfileUpdated,
			Data:     mailtpl.NewProfileUpdatedData(s.Brand, u.Name, u.Email.String(), changes, mailtpl.WithTime(s.now())),
		})
	}
}

// ProfileImage opens the stored picture of targetUserID for its owner or an admin.
func (s *UserService) ProfileImage(ctx context.Context, viewerID, targetUserID string) (io.ReadCloser, string, error) {
	uid, err := actingUserID(viewerID)
	if err != nil {
		return nil, "", err
	}
	tid, err := entity.NewEntityID(targetUserID)
	if err != nil {
		return nil, "", err
	}
	target, err := findUser(ctx, s.Repo, tid)
	if err != nil {
		return nil, "", err
	}
	if target == nil {
		return nil, "", userNotFound(targetUserID)
	}
	if err := s.ownership.Validate(ctx, uid, target.ID); err != nil {
		return nil, "", err
	}
	if !target.HasImage() || s.Blobs == nil {
		return nil, "", apperror.NotFound("Profile image not found")
	}
	rc, contentType, err := s.Blobs.GetFile(ctx, target.ImageID)
	if errors.Is(err, service.ErrBlobNotFound) {
		return nil, "", apperror.NotFound("Profile image not found")
	}
	if err != nil {
		return nil, "", internal(err)
	}
	return rc, contentType, nil
}

type AppStats struct {
	Users int64 `json:"users"`
	Jobs  int64 `json:"jobs"`
}

// AppStats counts users and jobs, cached briefly in Redis when available.
func (s *UserService) AppStats(ctx context.Context) (*AppStats, error) {
	var cached AppStats
	if s.Cache != nil {
		if ok, err := helpers.RedisGetJSON(ctx, s.Cache, appStatsCacheKey, &cached); err == nil && ok {
			return &cached, nil
		}
	}
	users, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, internal(err)
	}
	jobs, err := s.Jobs.Count(ctx)
	if err != nil {
		return nil, internal(err)
	}
	stats := &AppStats{Users: users, Jobs: jobs}
	if s.Cache != nil {
		if err := helpers.RedisSetJSON(ctx, s.Cache, appStatsCacheKey, stats, appStatsCacheTTL); err != nil {
			s.Logger.WithError(err).Warn("cache app stats failed")
		}
	}
	return stats, nil
}

// dropAppStats forgets the cached counts so a new signup shows up at once.
func (s *UserService) dropAppStats(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Cache, appStatsCacheKey); err != nil {
		s.Logger.WithError(err).Warn("drop app stats cache failed")
	}
}

// SearchUsers queries the user directory.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]service.UserDocument, error) {
	if s.Index == nil {
		return []service.UserDocument{}, nil
	}
	docs, err := s.Index.Search(ctx, q, size)
	if err != nil {
		s.Logger.WithError(err).WithField("q", q).Error("user search failed")
		return nil, internal(err)
	}
	return docs, nil
}

func (s *UserService) indexUser(ctx context.Context, u *entity.User) {
	if s.Index == nil {
		return
	}
	doc := service.UserDocument{
		ID:        u.ID.String(),
		Name:      u.Name,
		LastName:  u.LastName,
		Email:     u.Email.String(),
		Location:  u.Location,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
	if err := s.Index.Index(ctx, doc); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("index user failed")
	}
}

func (s *UserService) enqueueEmail(ctx context.Context, job mailer.EmailJob) {
	if s.Emails == nil {
		return
	}
	if err := s.Emails.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Warn("enqueue email failed")
	}
}

// Package service declares the capabilities the application layer consumes
// without knowing how they are implemented.
package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/oksasatya/jobify/internal/domain/entity"
)

type PasswordHasher interface {
	Hash(raw string) (string, error)
	Compare(hashed, raw string) bool
}

// TokenClaims is what a session token asserts about its bearer.
type TokenClaims struct {
	UserID string
	Role   entity.Role
}

type TokenIssuer interface {
	Issue(claims TokenClaims) (token string, expiresAt time.Time, err error)
	Verify(token string) (*TokenClaims, error)
}

// ErrBlobNotFound is returned by BlobStore.GetFile for unknown ids.
var ErrBlobNotFound = errors.New("blob not found")

// BlobInfo describes a stored object.
type BlobInfo struct {
	ID        string
	CreatedAt time.Time
}

type BlobStore interface {
	UploadFile(ctx context.Context, data []byte, contentType string) (string, error)
	DeleteFile(ctx context.Context, id string) error
	GetFile(ctx context.Context, id string) (io.ReadCloser, string, error)
	ListFiles(ctx context.Context) ([]BlobInfo, error)
}

// Session is the server-side record backing a login cookie.
type Session struct {
	UserID    string
	Role      entity.Role
	Name      string
	Email     string
	CreatedAt time.Time
}

// ErrSessionNotFound is returned by SessionStore.Get when no live session exists.
var ErrSessionNotFound = errors.New("session not found")

type SessionStore interface {
	Open(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, userID string) (*Session, error)
	Touch(ctx context.Context, userID string, fields map[string]any) error
	Close(ctx context.Context, userID string) error
}

// EmailQueue hands email jobs to the asynchronous sender.
type EmailQueue interface {
	PublishJSON(ctx context.Context, body any) error
}

// UserDocument is the searchable projection of a user.
type UserDocument struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Location  string    `json:"location"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserIndex interface {
	Index(ctx context.Context, doc UserDocument) error
	Search(ctx context.Context, q string, size int) ([]UserDocument, error)
}

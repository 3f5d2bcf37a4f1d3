package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/jobify/internal/domain/repository"
	"github.com/oksasatya/jobify/internal/domain/service"
)

// DefaultJanitorGrace keeps fresh uploads whose id has not been stored yet.
const DefaultJanitorGrace = time.Hour

// ImageJanitor deletes profile images that no user references anymore.
// Replacing a picture is not transactional, so a crash between upload and
// UpdateProfileImage, or a failed delete of the previous picture, leaves
// orphans behind.
type ImageJanitor struct {
	Users  repo.UserRepository
	Blobs  service.BlobStore
	Logger *logrus.Logger
	Grace  time.Duration

	now func() time.Time
}

func NewImageJanitor(users repo.UserRepository, blobs service.BlobStore, logger *logrus.Logger) *ImageJanitor {
	return &ImageJanitor{Users: users, Blobs: blobs, Logger: logger, Grace: DefaultJanitorGrace, now: time.Now}
}

type JanitorReport struct {
	Scanned int
	Deleted int
	Failed  int
}

func (j *ImageJanitor) Run(ctx context.Context) (JanitorReport, error) {
	var report JanitorReport

	ids, err := j.Users.ListImageIDs(ctx)
	if err != nil {
		return report, internal(err)
	}
	referenced := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		referenced[id] = struct{}{}
	}

	files, err := j.Blobs.ListFiles(ctx)
	if err != nil {
		return report, internal(err)
	}
	cutoff := j.now().Add(-j.Grace)
	for _, f := range files {
		report.Scanned++
		if _, ok := referenced[f.ID]; ok {
			continue
		}
		if f.CreatedAt.After(cutoff) {
			continue
		}
		if err := j.Blobs.DeleteFile(ctx, f.ID); err != nil {
			report.Failed++
			j.Logger.WithError(err).WithField("image_id", f.ID).Warn("delete orphaned image failed")
			continue
		}
		report.Deleted++
		imagesReaped.Add(1)
		j.Logger.WithField("image_id", f.ID).Info("deleted orphaned image")
	}
	return report, nil
}

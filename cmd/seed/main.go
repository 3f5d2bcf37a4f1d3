package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/oksasatya/jobify/config"
	"github.com/oksasatya/jobify/internal/domain/entity"
	"github.com/oksasatya/jobify/internal/domain/repository"
	pginfra "github.com/oksasatya/jobify/internal/infrastructure/postgres"
	"github.com/oksasatya/jobify/pkg/helpers"
)

func main() {
	demo := flag.Int("demo-jobs", 0, "number of demo jobs to create for the admin (only when it has none)")
	flag.Parse()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, helpers.WithLevel(cfg.LogLevel))
	if cfg.SeedAdminPassword == "" {
		log.Fatal("SEED_ADMIN_PASSWORD is required")
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptionsFrom(cfg, true))
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	jobs := pginfra.NewJobRepository(pool)

	admin, err := adminUser(cfg, helpers.NewBcryptHasher())
	if err != nil {
		log.Fatalf("invalid admin: %v", err)
	}
	if err := users.Upsert(ctx, admin); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	logger.WithField("id", admin.ID).WithField("email", admin.Email.String()).Info("admin seeded")

	if *demo <= 0 {
		return
	}
	_, existing, err := jobs.ListByOwner(ctx, &admin.ID, repository.JobQuery{Limit: 1})
	if err != nil {
		log.Fatalf("failed to count admin jobs: %v", err)
	}
	if existing > 0 {
		logger.WithField("jobs", existing).Info("admin already has jobs; skipping demo data")
		return
	}
	for _, j := range demoJobs(admin, *demo, time.Now().UTC()) {
		if err := jobs.Create(ctx, j); err != nil {
			log.Fatalf("failed to seed job: %v", err)
		}
	}
	logger.WithField("jobs", *demo).Info("demo jobs seeded")
}

func adminUser(cfg *config.Config, hasher *helpers.BcryptHasher) (*entity.User, error) {
	email, err := entity.NewEmail(cfg.SeedAdminEmail)
	if err != nil {
		return nil, err
	}
	pwd, err := entity.NewRawPassword(cfg.SeedAdminPassword, hasher.Hash)
	if err != nil {
		return nil, err
	}
	return entity.NewUser(entity.UserParams{
		Name:     "Admin",
		LastName: "Jobify",
		Email:    email,
		Password: pwd,
		Location: entity.DefaultJobLocation,
		Role:     entity.RoleAdmin,
	})
}

var (
	demoCompanies = []string{"Acme", "Globex", "Initech", "Umbrella", "Hooli", "Stark Industries", "Wayne Enterprises"}
	demoPositions = []string{"Backend Engineer", "Frontend Developer", "SRE", "Data Engineer", "Product Designer", "QA Engineer"}
	demoLocations = []string{"Remote", "Berlin", "Lisbon", "New York", "Singapore"}
)

// demoJobs spreads n jobs over the last six months so the stats charts have data.
func demoJobs(owner *entity.User, n int, now time.Time) []*entity.Job {
	out := make([]*entity.Job, 0, n)
	for i := 0; i < n; i++ {
		created := now.AddDate(0, -(i % 6), -(i % 27))
		j, err := entity.NewJob(entity.JobParams{
			Company:   demoCompanies[i%len(demoCompanies)],
			Position:  demoPositions[i%len(demoPositions)],
			Status:    entity.JobStatuses[i%len(entity.JobStatuses)],
			Type:      entity.JobTypes[i%len(entity.JobTypes)],
			Location:  demoLocations[i%len(demoLocations)],
			CreatedBy: owner,
			CreatedAt: created,
			UpdatedAt: created,
		})
		if err != nil {
			// the demo tables only hold valid values
			panic(err)
		}
		out = append(out, j)
	}
	return out
}

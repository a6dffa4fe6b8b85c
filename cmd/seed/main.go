package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/bonsai-buddy/config"
	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	pginfra "github.com/oksasatya/bonsai-buddy/internal/infrastructure/postgres"
	"github.com/oksasatya/bonsai-buddy/internal/infrastructure/search"
	"github.com/oksasatya/bonsai-buddy/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	profiles := pginfra.NewProfileRepository(pool)
	specimens := pginfra.NewSpecimenRepository(pool)
	posts := pginfra.NewPostRepository(pool)

	email := "demo@bonsaibuddy.app"
	password := "password123"
	name := "Demo Gardener"

	u, err := users.GetByEmail(ctx, email)
	if errors.Is(err, apperror.ErrNotFound) {
		hash, herr := helpers.HashPassword(password)
		if herr != nil {
			log.Fatalf("failed to hash password: %v", herr)
		}
		u = &entity.User{Email: email, Password: hash}
		err = users.Create(ctx, u)
	}
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}

	profile, err := profiles.GetByID(ctx, u.ID)
	if errors.Is(err, apperror.ErrNotFound) {
		profile = &entity.Profile{ID: u.ID, Name: name, Email: email, Theme: entity.ThemeDark}
		err = profiles.Create(ctx, profile)
	}
	if err != nil {
		log.Fatalf("failed to seed profile: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", u.ID, email, profile.Name, password)

	owned, err := specimens.ListByOwner(ctx, u.ID)
	if err != nil {
		log.Fatalf("failed to list specimens: %v", err)
	}
	if len(owned) > 0 {
		fmt.Println("demo specimen already present")
		return
	}

	bucket := cfg.GCSBucket
	if bucket == "" {
		bucket = "bonsai-buddy-demo"
	}
	notes := "Water when the top centimetre of soil is dry. Repot every two years in spring."
	sp := &entity.Specimen{
		UserID:    u.ID,
		Name:      "Old Juniper",
		Species:   "Juniperus chinensis",
		Age:       35,
		Health:    entity.HealthExcellent,
		ImageURL:  helpers.PublicURL(bucket, "seed/old-juniper.jpg"),
		CareNotes: &notes,
	}
	if err := specimens.Create(ctx, sp); err != nil {
		log.Fatalf("failed to seed specimen: %v", err)
	}
	caption := fmt.Sprintf("Just added %s (%s) to my collection!", sp.Name, sp.Species)
	post := &entity.Post{SpecimenID: sp.ID, UserID: u.ID, ImageURL: sp.ImageURL, Caption: &caption, IsPublic: true}
	if err := posts.Create(ctx, post); err != nil {
		log.Fatalf("failed to seed post: %v", err)
	}
	fmt.Printf("seeded specimen=%s post=%s\n", sp.ID, post.ID)

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("skipping search indexing")
			return
		}
		idx := search.NewIndex(es, cfg.ESProfilesIndex, cfg.ESSpecimensIndex)
		if err := idx.EnsureIndices(ctx); err != nil {
			logger.WithError(err).Warn("skipping search indexing")
			return
		}
		if err := idx.IndexProfile(ctx, *profile); err != nil {
			logger.WithError(err).Warn("profile not indexed")
		}
		if err := idx.IndexSpecimen(ctx, *sp); err != nil {
			logger.WithError(err).Warn("specimen not indexed")
		}
	}
}

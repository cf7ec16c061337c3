// Command seed loads the sample reference courses into the database.
package main

import (
	"context"
	"log"
	"time"

	"golf-tracker/internal"
	"golf-tracker/internal/apperr"
	"golf-tracker/internal/config"
)

func main() {
	cfg, err := config.LoadSeed()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := internal.MustDB(cfg.DatabaseURL)
	defer db.Close()
	if err := internal.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	store := internal.NewPG(db, apperr.DefaultBackoff)
	for _, c := range internal.SampleCourses(time.Now()) {
		if err := store.UpsertCourse(ctx, c); err != nil {
			log.Fatalf("[seed] course %s: %v", c.ID, err)
		}
		log.Printf("[seed] course %s (%s) par %d, %d holes", c.ID, c.Name, c.ParTotal, len(c.Holes))
	}
	log.Printf("[seed] done")
}

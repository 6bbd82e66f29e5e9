package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"lead-insights/internal/demo"
	"lead-insights/internal/provider"
	"lead-insights/internal/store"
)

func main() {
	scenario := flag.String("scenario", demo.ScenarioSteady, "Scenario to generate: steady, surge, slump")
	outDir := flag.String("out", "./cache", "Output directory for the JSONL snapshot")
	source := flag.String("source", "mock", "Snapshot name; the file is written as <source>.jsonl")
	count := flag.Int("count", 250, "Number of leads to generate")
	seed := flag.Int64("seed", 42, "Random seed")
	months := flag.Int("months", 12, "How many months back inquiry dates reach")
	project := flag.String("firestore-project", "", "Also upload the leads to this Firestore project")
	collection := flag.String("firestore-collection", "leads", "Firestore collection to upload to")
	flag.Parse()

	cfg := demo.Config{
		Scenario: *scenario,
		Count:    *count,
		Seed:     *seed,
		Months:   *months,
		Now:      time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (Count: %d, Seed: %d) to %s...\n", cfg.Scenario, cfg.Count, cfg.Seed, store.CachePath(*outDir, *source))

	ls := demo.Generate(cfg)

	s := store.NewLeadStore()
	s.Replace(*source, ls)
	if err := s.Save(*outDir, *source); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	if *project != "" {
		fmt.Printf("Uploading %d leads to firestore %s/%s...\n", len(ls), *project, *collection)
		fs, err := provider.NewFirestoreProvider(provider.FirestoreConfig{
			ProjectID:         *project,
			Collection:        *collection,
			CredentialsFile:   os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
			CredentialsBase64: os.Getenv("FIRESTORE_CREDENTIALS_BASE64"),
		})
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			err = fs.Upload(ctx, ls)
			cancel()
		}
		if err != nil {
			fmt.Printf("Failed to upload mock data: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("Done.")
}

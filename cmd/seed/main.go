// Command seed populates a local catalog database and event store with
// synthetic tutoring traffic for development and demos.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tiktoken-go/tokenizer"

	"github.com/courseloop/insights/internal/catalog/sqldb"
	"github.com/courseloop/insights/internal/core/domain"
	"github.com/courseloop/insights/internal/eventstore/badgerdb"
)

var questions = []string{
	"How do I compute the limit of this sequence?",
	"How do I compute a limit?",
	"What is the difference between a limit and a derivative?",
	"Can you explain the chain rule with an example?",
	"Why does my integration by parts give the wrong sign?",
	"What is Newton's second law?",
	"How do I balance this chemical equation?",
	"When is a function continuous but not differentiable?",
	"What does the second derivative tell me about a graph?",
	"How do I find the moles from grams?",
}

var models = []struct {
	provider string
	model    string
}{
	{"openai", "gpt-4o"},
	{"openai", "gpt-4o-mini"},
	{"anthropic", "claude-sonnet-4-20250514"},
}

func main() {
	catalogPath := flag.String("catalog", "data/catalog.db", "sqlite catalog path")
	eventsPath := flag.String("events", "data/events", "badger event store path")
	days := flag.Int("days", 30, "days of history to generate")
	perDay := flag.Int("per-day", 200, "events per day")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	rng := rand.New(rand.NewSource(*seed))

	ctx := context.Background()

	catalog, err := sqldb.New(*catalogPath)
	if err != nil {
		log.Fatalf("open catalog: %v", err)
	}
	defer catalog.Close()

	if err := seedCatalog(ctx, catalog); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}

	store, err := badgerdb.Open(badgerdb.Config{Path: *eventsPath, Logger: logger})
	if err != nil {
		log.Fatalf("open event store: %v", err)
	}
	defer store.Close()

	// gpt-4o shares cl100k-era vocabulary closely enough for synthetic
	// token estimates.
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		log.Fatalf("load tokenizer: %v", err)
	}

	total, err := seedEvents(ctx, store, codec, rng, *days, *perDay)
	if err != nil {
		log.Fatalf("seed events: %v", err)
	}
	logger.Info("seeding complete", slog.Int("events", total), slog.Int("days", *days))
}

func seedCatalog(ctx context.Context, catalog *sqldb.Store) error {
	institutions := []domain.Institution{
		{ID: 1, Name: "Northfield University"},
		{ID: 2, Name: "Eastgate College"},
	}
	courses := []domain.Course{
		{ID: 1, InstitutionID: 1, Name: "Calculus I"},
		{ID: 2, InstitutionID: 1, Name: "Classical Mechanics"},
		{ID: 3, InstitutionID: 2, Name: "General Chemistry"},
	}
	modules := []domain.Module{
		{ID: 5, CourseID: 1, Name: "Limits"},
		{ID: 6, CourseID: 1, Name: "Derivatives"},
		{ID: 7, CourseID: 2, Name: "Newton's Laws"},
		{ID: 9, CourseID: 3, Name: "Stoichiometry"},
	}

	for _, inst := range institutions {
		if err := catalog.UpsertInstitution(ctx, inst); err != nil {
			return fmt.Errorf("institution %d: %w", inst.ID, err)
		}
	}
	for _, c := range courses {
		if err := catalog.UpsertCourse(ctx, c); err != nil {
			return fmt.Errorf("course %d: %w", c.ID, err)
		}
	}
	for _, m := range modules {
		if err := catalog.UpsertModule(ctx, m); err != nil {
			return fmt.Errorf("module %d: %w", m.ID, err)
		}
	}
	if err := catalog.AssignInstructor(ctx, "instr-1", 1); err != nil {
		return err
	}
	if err := catalog.AssignInstructor(ctx, "instr-2", 3); err != nil {
		return err
	}

	pricing := []domain.PricingEntry{
		{
			Provider:                   "openai",
			ModelName:                  "gpt-4o",
			InputCostPerMillionTokens:  decimal.RequireFromString("2.50"),
			OutputCostPerMillionTokens: decimal.RequireFromString("10.00"),
			IsActive:                   true,
		},
		{
			Provider:                   "openai",
			ModelName:                  "gpt-4o-mini",
			InputCostPerMillionTokens:  decimal.RequireFromString("0.15"),
			OutputCostPerMillionTokens: decimal.RequireFromString("0.60"),
			IsActive:                   true,
		},
		{
			Provider:                   "anthropic",
			ModelName:                  "claude-sonnet-4-20250514",
			InputCostPerMillionTokens:  decimal.RequireFromString("3.00"),
			OutputCostPerMillionTokens: decimal.RequireFromString("15.00"),
			IsActive:                   true,
		},
	}
	for _, p := range pricing {
		if err := catalog.UpsertPricing(ctx, p); err != nil {
			return fmt.Errorf("pricing %s/%s: %w", p.Provider, p.ModelName, err)
		}
	}
	return nil
}

func seedEvents(ctx context.Context, store *badgerdb.Store, codec tokenizer.Codec, rng *rand.Rand, days, perDay int) (int, error) {
	moduleIDs := []int64{5, 6, 7, 9}
	students := make([]string, 40)
	for i := range students {
		students[i] = fmt.Sprintf("stu-%03d", i+1)
	}

	now := time.Now().UTC()
	total := 0
	for d := 0; d < days; d++ {
		dayStart := now.AddDate(0, 0, -d).Truncate(24 * time.Hour)

		batch := make([]domain.InteractionEvent, 0, perDay)
		for i := 0; i < perDay; i++ {
			q := questions[rng.Intn(len(questions))]
			m := models[rng.Intn(len(models))]

			inputTokens, err := codec.Count(q)
			if err != nil {
				return total, fmt.Errorf("count tokens: %w", err)
			}

			// Activity skews toward afternoon and evening hours.
			hour := 9 + rng.Intn(13)
			ts := dayStart.Add(time.Duration(hour)*time.Hour +
				time.Duration(rng.Intn(3600))*time.Second)

			batch = append(batch, domain.InteractionEvent{
				MessageID:          uuid.New().String(),
				ConversationID:     fmt.Sprintf("conv-%d-%d", d, rng.Intn(perDay/4+1)),
				StudentID:          students[rng.Intn(len(students))],
				ModuleID:           moduleIDs[rng.Intn(len(moduleIDs))],
				Provider:           m.provider,
				ModelName:          m.model,
				InputTokens:        int64(inputTokens) + int64(rng.Intn(400)),
				OutputTokens:       int64(100 + rng.Intn(900)),
				ResponseTimeMillis: int64(300 + rng.Intn(4000)),
				HasAttachment:      rng.Intn(10) == 0,
				Question:           q,
				Timestamp:          ts,
			})
		}
		if err := store.Append(ctx, batch...); err != nil {
			return total, fmt.Errorf("append day %d: %w", d, err)
		}
		total += len(batch)
	}
	return total, nil
}

// Package demo generates synthetic dealership leads for offline rendering and tests.
package demo

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"lead-insights/internal/leads"
)

// Scenarios shape the generated funnel.
const (
	ScenarioSteady = "steady"
	ScenarioSurge  = "surge" // inquiries skew towards recent months
	ScenarioSlump  = "slump" // conversion drops and lost leads rise
)

type Config struct {
	Scenario string
	Count    int
	Seed     int64
	Now      time.Time
	// Months bounds how far back inquiry dates go.
	Months int
}

var (
	sources     = []string{"Website", "Referral", "Walk-in", "Phone", "Social Media", "Dealer Site"}
	channels    = []string{"Google Ads", "Facebook", "Instagram", "Email", "Organic", "Direct"}
	cities      = []string{"Austin", "Dallas", "Houston", "San Antonio", "Fort Worth", "El Paso", "Plano", "Arlington", "Irving", "Lubbock"}
	salespeople = []string{"Dana Cruz", "Eli Novak", "Fay Okafor", "Gus Lindqvist", "Hana Ito", "Ivan Petrov", "Jo Alvarez", "Kai Mensah", "Lena Brandt"}
	lostReasons = []string{"Price", "Bought Elsewhere", "Financing Declined", "No Response", "Timing", "Inventory"}
	payments    = []string{"Cash", "Finance", "Lease"}
	customers   = []string{"Individual", "Business", "Fleet"}
	conditions  = []string{"New", "Used", "Certified Pre-Owned"}
	firstNames  = []string{"Avery", "Blake", "Casey", "Drew", "Emery", "Finley", "Harper", "Jordan", "Morgan", "Quinn", "Reese", "Rowan", "Sage", "Taylor"}
	lastNames   = []string{"Adams", "Baker", "Chen", "Diaz", "Evans", "Garcia", "Hughes", "Kim", "Lopez", "Miller", "Patel", "Singh", "Walker", "Young"}

	models = map[string][]string{
		"Toyota":        {"Camry", "Corolla", "RAV4", "Tacoma", "Highlander"},
		"Honda":         {"Civic", "Accord", "CR-V", "Pilot"},
		"Ford":          {"F-150", "Explorer", "Mustang", "Escape"},
		"Chevrolet":     {"Silverado", "Equinox", "Malibu", "Tahoe"},
		"Nissan":        {"Altima", "Rogue", "Sentra"},
		"Hyundai":       {"Elantra", "Tucson", "Santa Fe"},
		"Kia":           {"Sportage", "Sorento", "Telluride"},
		"Tesla":         {"Model 3", "Model Y"},
		"BMW":           {"3 Series", "X3", "X5"},
		"Mercedes-Benz": {"C-Class", "GLC", "E-Class"},
		"Audi":          {"A4", "Q5"},
		"Mazda":         {"CX-5", "Mazda3"},
		"Subaru":        {"Outback", "Forester"},
	}
	makes = []string{"Toyota", "Honda", "Ford", "Chevrolet", "Nissan", "Hyundai", "Kia", "Tesla", "BMW", "Mercedes-Benz", "Audi", "Mazda", "Subaru"}

	// open stages and their typical close probability
	openStages = []struct {
		stage       string
		probability float64
	}{
		{"Inquiry", 10},
		{"Contacted", 25},
		{"Qualified", 45},
		{"Negotiation", 65},
		{"Financing", 85},
	}
)

// Generate returns cfg.Count leads. The same Config always yields the same leads.
func Generate(cfg Config) []leads.Lead {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Months <= 0 {
		cfg.Months = 12
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	span := cfg.Now.Sub(cfg.Now.AddDate(0, -cfg.Months, 0))

	// Probability that a lead ends Sold / Lost; the rest stay open.
	pSold, pLost := 0.22, 0.18
	if cfg.Scenario == ScenarioSlump {
		pSold, pLost = 0.09, 0.35
	}

	out := make([]leads.Lead, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		// 1. Identity
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%d-%d", cfg.Seed, i)))
		}
		first, last := pick(rng, firstNames), pick(rng, lastNames)
		brand := pick(rng, makes)

		l := leads.Lead{
			ID:                  id.String(),
			Name:                first + " " + last,
			Email:               fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1),
			Phone:               fmt.Sprintf("(512) 555-%04d", rng.Intn(10000)),
			LeadSource:          pick(rng, sources),
			LeadChannel:         pick(rng, channels),
			LeadScoring:         leads.Float(math.Round(rng.Float64()*50) / 10),
			VehicleMake:         brand,
			VehicleModel:        pick(rng, models[brand]),
			NewUsed:             pick(rng, conditions),
			City:                pick(rng, cities),
			AssignedSalesperson: pick(rng, salespeople),
			CustomerType:        pick(rng, customers),
		}

		// 2. Arrival
		offset := rng.Float64()
		if cfg.Scenario == ScenarioSurge {
			offset = math.Sqrt(offset)
		}
		inquiry := cfg.Now.Add(-span + time.Duration(offset*float64(span)))
		l.DateOfInquiry = time.Date(inquiry.Year(), inquiry.Month(), inquiry.Day(), 0, 0, 0, 0, time.UTC)

		// 3. Response time in minutes, long-tailed
		l.ResponseTime = leads.Float(math.Round(weibullSample(rng, 1.3, 55)))

		// 4. Outcome
		price := float64(18000 + rng.Intn(52000))
		switch r := rng.Float64(); {
		case r < pSold:
			l.LeadStatus = leads.StatusSold
			l.DealStage = "Sold"
			l.DealStatus = "Won"
			l.DealValue = leads.Float(price)
			l.CloseProbability = leads.Float(100)
			l.PaymentType = pick(rng, payments)
			l.ExpectedCloseDate = l.DateOfInquiry.AddDate(0, 0, 3+rng.Intn(40))
		case r < pSold+pLost:
			l.LeadStatus = leads.StatusLost
			l.DealStage = "Lost"
			l.DealStatus = "Lost"
			l.CloseProbability = leads.Float(0)
			l.LostReason = pick(rng, lostReasons)
		default:
			s := openStages[rng.Intn(len(openStages))]
			l.LeadStatus = openStatus(s.stage)
			l.DealStage = s.stage
			l.DealStatus = leads.DealStatusOpen
			jitter := float64(rng.Intn(21) - 10)
			l.CloseProbability = leads.Float(math.Max(0, math.Min(100, s.probability+jitter)))
			l.ExpectedCloseDate = cfg.Now.AddDate(0, 0, 7+rng.Intn(60)).Truncate(24 * time.Hour)
			if s.probability >= 45 {
				l.DealValue = leads.Float(price)
				l.PaymentType = pick(rng, payments)
			}
		}

		out = append(out, l)
	}
	return out
}

func openStatus(stage string) string {
	switch stage {
	case "Inquiry":
		return "New"
	case "Contacted":
		return "Contacted"
	default:
		return "Qualified"
	}
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.Intn(len(from))]
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

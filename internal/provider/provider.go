// Package provider supplies lead snapshots from demo data, files or a live backend.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lead-insights/internal/leads"
)

// LeadProvider fetches a complete, materialized lead snapshot.
type LeadProvider interface {
	// Name identifies the snapshot partition the leads belong to.
	Name() string
	Fetch(ctx context.Context) ([]leads.Lead, error)
}

// Source kinds accepted by New.
const (
	SourceDemo      = "demo"
	SourceFile      = "file"
	SourceREST      = "rest"
	SourceFirestore = "firestore"
)

// ErrUnknownSource is returned by New for an unrecognized source kind.
var ErrUnknownSource = errors.New("unknown lead source")

// Settings selects and configures a provider.
type Settings struct {
	Source    string
	Demo      DemoConfig
	File      FileConfig
	REST      RESTConfig
	Firestore FirestoreConfig
}

type DemoConfig struct {
	Count    int
	Seed     int64
	Scenario string
}

type FileConfig struct {
	Path string
}

// RESTConfig targets a PostgREST-style hosted backend.
type RESTConfig struct {
	BaseURL string
	Table   string
	APIKey  string
	// Token is a user access token; the API key is sent as bearer when empty.
	Token string
	// Order is passed through as the PostgREST order parameter, e.g. "dateOfInquiry.asc".
	Order          string
	PageSize       int
	Concurrency    int
	CacheTTL       time.Duration
	RequestTimeout time.Duration
}

type FirestoreConfig struct {
	ProjectID         string
	Collection        string
	CredentialsFile   string
	CredentialsBase64 string
}

// New builds the provider named by s.Source.
func New(s Settings) (LeadProvider, error) {
	switch strings.ToLower(strings.TrimSpace(s.Source)) {
	case SourceDemo, "":
		return NewDemoProvider(s.Demo), nil
	case SourceFile:
		return NewFileProvider(s.File)
	case SourceREST:
		return NewRESTProvider(s.REST)
	case SourceFirestore:
		return NewFirestoreProvider(s.Firestore)
	default:
		return nil, fmt.Errorf("%w: %q (want demo, file, rest or firestore)", ErrUnknownSource, s.Source)
	}
}

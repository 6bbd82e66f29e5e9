package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"lead-insights/internal/leads"
)

// FirestoreProvider reads every document of a Firestore collection as a lead.
type FirestoreProvider struct {
	cfg FirestoreConfig
}

func NewFirestoreProvider(cfg FirestoreConfig) (*FirestoreProvider, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firestore source requires FIRESTORE_PROJECT_ID")
	}
	if cfg.Collection == "" {
		cfg.Collection = "leads"
	}
	return &FirestoreProvider{cfg: cfg}, nil
}

func (p *FirestoreProvider) Name() string { return p.cfg.Collection }

// clientOptions resolves credentials from base64, then file. With neither, the client
// falls back to application default credentials or FIRESTORE_EMULATOR_HOST.
func (p *FirestoreProvider) clientOptions() ([]option.ClientOption, string, error) {
	if p.cfg.CredentialsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(p.cfg.CredentialsBase64)
		if err != nil {
			return nil, "base64", fmt.Errorf("decode FIRESTORE_CREDENTIALS_BASE64: %w", err)
		}
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}, "base64", nil
	}
	if p.cfg.CredentialsFile != "" {
		data, err := os.ReadFile(p.cfg.CredentialsFile)
		if err != nil {
			return nil, "file", fmt.Errorf("read GOOGLE_APPLICATION_CREDENTIALS: %w", err)
		}
		return []option.ClientOption{option.WithCredentialsJSON(data)}, "file", nil
	}
	return nil, "default", nil
}

func (p *FirestoreProvider) client(ctx context.Context) (*firestore.Client, error) {
	opts, source, err := p.clientOptions()
	if err != nil {
		return nil, err
	}
	client, err := firestore.NewClient(ctx, p.cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}
	log.Debug().Str("project", p.cfg.ProjectID).Str("credentials", source).Msg("Firestore client ready")
	return client, nil
}

func (p *FirestoreProvider) Fetch(ctx context.Context) ([]leads.Lead, error) {
	client, err := p.client(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	iter := client.Collection(p.cfg.Collection).Documents(ctx)
	defer iter.Stop()

	out := make([]leads.Lead, 0)
	skipped := 0
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate %s: %w", p.cfg.Collection, err)
		}

		l, err := documentLead(doc.Ref.ID, doc.Data())
		if err != nil {
			skipped++
			log.Warn().Err(err).Str("doc", doc.Ref.ID).Msg("Skipping unreadable lead document")
			continue
		}
		out = append(out, l)
	}

	log.Info().Str("collection", p.cfg.Collection).Int("count", len(out)).Int("skipped", skipped).Msg("Fetched leads from Firestore")
	return out, nil
}

// documentLead converts raw document data through the wire record, so dates stored either
// as Firestore timestamps or as strings are accepted. The document ID fills a missing id.
func documentLead(docID string, data map[string]interface{}) (leads.Lead, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return leads.Lead{}, err
	}
	var rec leads.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return leads.Lead{}, err
	}
	if rec.ID == "" {
		rec.ID = docID
	}
	return rec.Lead()
}

// Upload writes leads into the collection, keyed by lead ID.
func (p *FirestoreProvider) Upload(ctx context.Context, ls []leads.Lead) error {
	client, err := p.client(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	bw := client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(ls))
	coll := client.Collection(p.cfg.Collection)
	for _, l := range ls {
		ref := coll.NewDoc()
		if l.ID != "" {
			ref = coll.Doc(l.ID)
		}
		job, err := bw.Set(ref, l)
		if err != nil {
			bw.End()
			return fmt.Errorf("queue lead %s: %w", l.ID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("write lead: %w", err)
		}
	}
	log.Info().Str("collection", p.cfg.Collection).Int("count", len(ls)).Msg("Uploaded leads to Firestore")
	return nil
}

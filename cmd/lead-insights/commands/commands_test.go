package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lead-insights/internal/config"
	"lead-insights/internal/export"
	"lead-insights/internal/leads"
	"lead-insights/internal/provider"
)

func TestLocalURL(t *testing.T) {
	tests := map[string]string{
		":8080":          "http://localhost:8080",
		"127.0.0.1:9000": "http://127.0.0.1:9000",
	}
	for addr, want := range tests {
		if got := localURL(addr); got != want {
			t.Errorf("localURL(%q) = %q, want %q", addr, got, want)
		}
	}
}

func TestBuildSession(t *testing.T) {
	dir := t.TempDir()
	colsFile := filepath.Join(dir, "columns.yaml")
	if err := os.WriteFile(colsFile, []byte("columns:\n  - key: name\n  - key: city\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c := &config.AppConfig{
		Provider:          provider.Settings{Source: provider.SourceDemo, Demo: provider.DemoConfig{Count: 20, Seed: 7}},
		CacheDir:          dir,
		ExportColumnsFile: colsFile,
	}
	s, err := buildSession(c)
	if err != nil {
		t.Fatalf("buildSession: %v", err)
	}
	if len(s.columns) != 2 {
		t.Errorf("expected 2 export columns, got %d", len(s.columns))
	}

	res, err := s.dash.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.KPIs.TotalLeads != 20 {
		t.Errorf("total leads = %d, want 20", res.KPIs.TotalLeads)
	}
	if _, err := os.Stat(filepath.Join(dir, "demo.jsonl")); err != nil {
		t.Errorf("expected snapshot cache to be written: %v", err)
	}

	c.Provider.Source = "carrier-pigeon"
	if _, err := buildSession(c); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestSchemaCommand(t *testing.T) {
	var buf bytes.Buffer
	schemaCmd.SetOut(&buf)
	if err := schemaCmd.RunE(schemaCmd, nil); err != nil {
		t.Fatal(err)
	}

	var schema struct {
		Title      string                     `json:"title"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(buf.Bytes(), &schema); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	for _, prop := range []string{"leadStatus", "dealValue", "dateOfInquiry"} {
		if _, ok := schema.Properties[prop]; !ok {
			t.Errorf("schema missing property %q", prop)
		}
	}
}

func TestExportColumnSet(t *testing.T) {
	base := export.Columns{{Key: leads.ColName, Header: "Customer"}, {Key: leads.ColCity, Header: "City"}}

	tests := []struct {
		name    string
		list    string
		moves   []string
		want    []leads.ColumnKey
		wantErr bool
	}{
		{"configured set", "", nil, []leads.ColumnKey{leads.ColName, leads.ColCity}, false},
		{"move within configured set", "", []string{"city:0"}, []leads.ColumnKey{leads.ColCity, leads.ColName}, false},
		{"list then move", "id,dealValue,leadStatus", []string{"2:0"}, []leads.ColumnKey{leads.ColLeadStatus, leads.ColID, leads.ColDealValue}, false},
		{"bad move", "", []string{"id:0"}, nil, true},
		{"bad list", "bogus", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := exportColumnSet(base, tt.list, tt.moves)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(tt.want, got.Keys()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if got, err := exportColumnSet(nil, "", []string{"0:1"}); err != nil || got[1].Key != leads.ColID {
		t.Errorf("moves on the default set: %v %v", got.Keys(), err)
	}
}

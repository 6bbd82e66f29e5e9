package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"lead-insights/internal/leads"
)

func TestParseYAML(t *testing.T) {
	data := []byte(`
columns:
  - key: name
    header: Customer
  - key: leadstatus
  - key: dealValue
    header: "Value (EUR)"
`)
	got, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	want := Columns{
		{Key: leads.ColName, Header: "Customer"},
		{Key: leads.ColLeadStatus, Header: "Lead Status"},
		{Key: leads.ColDealValue, Header: "Value (EUR)"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYAML_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		unknown bool
	}{
		{"malformed", "columns: [", false},
		{"empty", "columns: []", false},
		{"unknown key", "columns:\n  - key: shoeSize\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, leads.ErrUnknownColumn); got != tt.unknown {
				t.Errorf("errors.Is(ErrUnknownColumn) = %v, want %v (%v)", got, tt.unknown, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "columns.yaml")
	if err := os.WriteFile(path, []byte("columns:\n  - key: city\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Header != "City" {
		t.Errorf("unexpected columns: %+v", got)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseList(t *testing.T) {
	got, err := ParseList(" name, city ,,")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]leads.ColumnKey{leads.ColName, leads.ColCity}, got.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	def, err := ParseList("")
	if err != nil {
		t.Fatal(err)
	}
	if len(def) != len(leads.Columns()) {
		t.Errorf("empty list should yield default columns, got %d", len(def))
	}

	if _, err := ParseList("name,bogus"); !errors.Is(err, leads.ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestColumns_Move(t *testing.T) {
	base := Columns{{Key: "a"}, {Key: "b"}, {Key: "c"}, {Key: "d"}}

	tests := []struct {
		from, to int
		want     []leads.ColumnKey
	}{
		{0, 2, []leads.ColumnKey{"b", "c", "a", "d"}},
		{3, 0, []leads.ColumnKey{"d", "a", "b", "c"}},
		{1, 1, []leads.ColumnKey{"a", "b", "c", "d"}},
		{2, 3, []leads.ColumnKey{"a", "b", "d", "c"}},
	}
	for _, tt := range tests {
		got, err := base.Move(tt.from, tt.to)
		if err != nil {
			t.Fatalf("Move(%d, %d): %v", tt.from, tt.to, err)
		}
		if diff := cmp.Diff(tt.want, got.Keys()); diff != "" {
			t.Errorf("Move(%d, %d) mismatch (-want +got):\n%s", tt.from, tt.to, diff)
		}
	}

	if diff := cmp.Diff([]leads.ColumnKey{"a", "b", "c", "d"}, base.Keys()); diff != "" {
		t.Errorf("Move mutated receiver:\n%s", diff)
	}
	if _, err := base.Move(0, 4); err == nil {
		t.Error("expected out of range error")
	}
}

func TestColumns_ApplyMoves(t *testing.T) {
	base, err := ParseList("id,name,city,dealValue")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		moves   []string
		want    []leads.ColumnKey
		wantErr bool
	}{
		{"none", nil, []leads.ColumnKey{"id", "name", "city", "dealValue"}, false},
		{"by index", []string{"0:3"}, []leads.ColumnKey{"name", "city", "dealValue", "id"}, false},
		{"by key", []string{"dealValue:0"}, []leads.ColumnKey{"dealValue", "id", "name", "city"}, false},
		{"case-insensitive key", []string{" CITY : 1 "}, []leads.ColumnKey{"id", "city", "name", "dealValue"}, false},
		{"applied in order", []string{"city:0", "id:3"}, []leads.ColumnKey{"city", "name", "dealValue", "id"}, false},
		{"missing colon", []string{"city"}, nil, true},
		{"key not exported", []string{"email:0"}, nil, true},
		{"unknown key", []string{"bogus:0"}, nil, true},
		{"target not an index", []string{"0:city"}, nil, true},
		{"out of range", []string{"0:9"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := base.ApplyMoves(tt.moves...)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got.Keys())
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got.Keys()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	ls := []leads.Lead{
		{ID: "1", Name: "Ana, Jr.", DealValue: leads.Float(1250.5), DateOfInquiry: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{ID: "2", Name: "Ben"},
	}
	cols := Columns{
		{Key: leads.ColName, Header: "Customer"},
		{Key: leads.ColDealValue, Header: "Value"},
		{Key: leads.ColDateOfInquiry, Header: "Inquiry"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ls, cols); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "Customer,Value,Inquiry\n\"Ana, Jr.\",1250.5,2024-03-05\nBen,,\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV_UnknownColumn(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, nil, Columns{{Key: "nope"}})
	if !errors.Is(err, leads.ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestWriteCSV_DefaultColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got[:len("ID,Name,Email")] != "ID,Name,Email" {
		t.Errorf("unexpected default header: %q", got)
	}
}

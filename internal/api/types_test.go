package api

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestConfigPreservesUnknownKeys(t *testing.T) {
	raw := `{
		"discovery": {"keywords": ["crispr", "glioma"], "days_back": 3, "max_results": 20, "sources": ["pubmed"]},
		"outreach": {"max_daily_emails": 40, "retry_attempts": 2, "delay_seconds": 30, "sender": "lab@example.org"},
		"profiling": {"enabled": true}
	}`

	var cfg Config
	require.NoError(t, json.Unmarshal([]byte(raw), &cfg))
	require.Equal(t, []string{"crispr", "glioma"}, cfg.Discovery.Keywords)
	require.Equal(t, 40, *cfg.Outreach.MaxDailyEmails)
	require.Contains(t, cfg.Discovery.Extra, "sources")
	require.Contains(t, cfg.Outreach.Extra, "sender")
	require.Contains(t, cfg.Extra, "profiling")

	cfg.Outreach.DelaySeconds = Int(45)
	out, err := json.Marshal(cfg)
	require.NoError(t, err)

	var round map[string]map[string]any
	require.NoError(t, json.Unmarshal(out, &round))
	require.Equal(t, "lab@example.org", round["outreach"]["sender"])
	require.EqualValues(t, 45, round["outreach"]["delay_seconds"])
	require.Equal(t, true, round["profiling"]["enabled"])
	require.Equal(t, []any{"pubmed"}, round["discovery"]["sources"])
}

func TestConfigMarshalSendsOnlyKeysItReceived(t *testing.T) {
	var cfg Config
	require.NoError(t, json.Unmarshal(
		[]byte(`{"discovery":{"max_results":50},"outreach":{"max_daily_emails":20}}`), &cfg))
	require.Nil(t, cfg.Outreach.DelaySeconds)
	require.Nil(t, cfg.Discovery.Keywords)

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.JSONEq(t, `{"discovery":{"max_results":50},"outreach":{"max_daily_emails":20}}`, string(out))

	// Edited fields join the keys that were sent.
	cfg.Outreach.RetryAttempts = Int(0)
	cfg.Discovery.Keywords = []string{}
	out, err = json.Marshal(cfg)
	require.NoError(t, err)
	require.JSONEq(t,
		`{"discovery":{"keywords":[],"max_results":50},"outreach":{"max_daily_emails":20,"retry_attempts":0}}`,
		string(out))
}

func TestConfigCloneDoesNotAlias(t *testing.T) {
	orig := Config{Discovery: DiscoverySettings{
		Keywords: []string{"a", "b"},
		DaysBack: Int(3),
		Extra:    map[string]any{"x": 1},
	}}
	clone := orig.Clone()
	clone.Discovery.Keywords[0] = "z"
	clone.Discovery.Extra["x"] = 2
	*clone.Discovery.DaysBack = 9

	if *orig.Discovery.DaysBack != 3 {
		t.Fatalf("clone aliased days_back: %d", *orig.Discovery.DaysBack)
	}
	if got := (Config{Discovery: DiscoverySettings{Keywords: []string{}}}).Clone().Discovery.Keywords; got == nil {
		t.Fatal("clone turned an empty keyword list into an absent one")
	}

	if orig.Discovery.Keywords[0] != "a" {
		t.Fatalf("clone aliased keywords: %v", orig.Discovery.Keywords)
	}
	if orig.Discovery.Extra["x"] != 1 {
		t.Fatalf("clone aliased extras: %v", orig.Discovery.Extra)
	}
}

func TestSplitKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"crispr", []string{"crispr"}},
		{" crispr , glioma,, ", []string{"crispr", "glioma"}},
		{"a,b,c", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, SplitKeywords(tt.in)); diff != "" {
			t.Fatalf("SplitKeywords(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}

	cfg := Config{Discovery: DiscoverySettings{Keywords: []string{"a", "b"}}}
	if got := cfg.KeywordsText(); got != "a, b" {
		t.Fatalf("KeywordsText = %q, want %q", got, "a, b")
	}
}

func TestAuthorDecodingAndAffiliations(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		paperID string
		primary string
	}{
		{"string id serialized list", `{"paper_id":"PMC1","affiliations":"[\"Broad\",\"MIT\"]"}`, "PMC1", "Broad"},
		{"numeric id", `{"paper_id":38001234,"affiliations":"[]"}`, "38001234", "Unknown Affiliation"},
		{"bare array", `{"paper_id":null,"affiliations":["Stanford"]}`, "", "Stanford"},
		{"malformed", `{"affiliations":"not json"}`, "", "Unknown Affiliation"},
		{"blank entries", `{"affiliations":"[\" \",\"UCSF\"]"}`, "", "UCSF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Author
			if err := json.Unmarshal([]byte(tt.raw), &a); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if a.PaperID != tt.paperID {
				t.Fatalf("PaperID = %q, want %q", a.PaperID, tt.paperID)
			}
			if got := a.PrimaryAffiliation(); got != tt.primary {
				t.Fatalf("PrimaryAffiliation = %q, want %q", got, tt.primary)
			}
		})
	}
}

func TestStatusOnline(t *testing.T) {
	if !(Status{Status: " Online "}).Online() {
		t.Fatalf("Online() = false, want true")
	}
	if (Status{Status: "degraded"}).Online() {
		t.Fatalf("Online() = true for degraded")
	}
}

package api

import (
	"encoding/json"
	"slices"
	"strings"
)

// Stats mirrors the payload returned by /api/stats.
type Stats struct {
	PapersFound     int `json:"papers_found" yaml:"papers_found"`
	AuthorsProfiled int `json:"authors_profiled" yaml:"authors_profiled"`
	EmailsSent      int `json:"emails_sent" yaml:"emails_sent"`
}

// Status mirrors /api/status.
type Status struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Online reports whether the backend declared itself online.
func (s Status) Online() bool {
	return strings.EqualFold(strings.TrimSpace(s.Status), "online")
}

// DiscoverySettings configures the paper discovery agent. Nil fields were
// absent from the backend document and are not sent back.
type DiscoverySettings struct {
	Keywords   []string `json:"keywords" yaml:"keywords,omitempty"`
	DaysBack   *int     `json:"days_back" yaml:"days_back,omitempty"`
	MaxResults *int     `json:"max_results" yaml:"max_results,omitempty"`

	// Extra keeps keys the console does not edit so a save does not drop them.
	Extra map[string]any `json:"-" yaml:",inline"`
}

// OutreachSettings configures the outreach agent's sending limits.
type OutreachSettings struct {
	MaxDailyEmails *int `json:"max_daily_emails" yaml:"max_daily_emails,omitempty"`
	RetryAttempts  *int `json:"retry_attempts" yaml:"retry_attempts,omitempty"`
	DelaySeconds   *int `json:"delay_seconds" yaml:"delay_seconds,omitempty"`

	Extra map[string]any `json:"-" yaml:",inline"`
}

// Int returns a pointer to v for setting optional config fields.
func Int(v int) *int { return &v }

// Config mirrors the nested document served by GET /api/config and accepted
// wholesale by POST /api/config.
type Config struct {
	Discovery DiscoverySettings `json:"discovery" yaml:"discovery"`
	Outreach  OutreachSettings  `json:"outreach" yaml:"outreach"`

	Extra map[string]any `json:"-" yaml:",inline"`
}

var (
	discoveryKeys = []string{"keywords", "days_back", "max_results"}
	outreachKeys  = []string{"max_daily_emails", "retry_attempts", "delay_seconds"}
	configKeys    = []string{"discovery", "outreach"}
)

// Clone returns a deep copy so form edits never alias fetched data.
func (c Config) Clone() Config {
	out := c
	out.Discovery.Keywords = slices.Clone(c.Discovery.Keywords)
	out.Discovery.DaysBack = cloneInt(c.Discovery.DaysBack)
	out.Discovery.MaxResults = cloneInt(c.Discovery.MaxResults)
	out.Outreach.MaxDailyEmails = cloneInt(c.Outreach.MaxDailyEmails)
	out.Outreach.RetryAttempts = cloneInt(c.Outreach.RetryAttempts)
	out.Outreach.DelaySeconds = cloneInt(c.Outreach.DelaySeconds)
	out.Discovery.Extra = cloneMap(c.Discovery.Extra)
	out.Outreach.Extra = cloneMap(c.Outreach.Extra)
	out.Extra = cloneMap(c.Extra)
	return out
}

// KeywordsText renders the keyword list the way the settings form edits it.
func (c Config) KeywordsText() string {
	return strings.Join(c.Discovery.Keywords, ", ")
}

// SplitKeywords splits comma separated input into trimmed keywords. Empty
// segments are dropped.
func SplitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MarshalJSON emits the known fields that are set plus preserved extras. An
// empty non-nil keyword list is sent as [].
func (d DiscoverySettings) MarshalJSON() ([]byte, error) {
	m := mergeExtra(d.Extra)
	if d.Keywords != nil {
		m["keywords"] = d.Keywords
	}
	putInt(m, "days_back", d.DaysBack)
	putInt(m, "max_results", d.MaxResults)
	return json.Marshal(m)
}

// UnmarshalJSON decodes known fields and stashes the rest in Extra.
func (d *DiscoverySettings) UnmarshalJSON(data []byte) error {
	type plain DiscoverySettings
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraKeys(data, discoveryKeys)
	if err != nil {
		return err
	}
	*d = DiscoverySettings(p)
	d.Extra = extra
	return nil
}

// MarshalJSON emits the known fields that are set plus preserved extras.
func (o OutreachSettings) MarshalJSON() ([]byte, error) {
	m := mergeExtra(o.Extra)
	putInt(m, "max_daily_emails", o.MaxDailyEmails)
	putInt(m, "retry_attempts", o.RetryAttempts)
	putInt(m, "delay_seconds", o.DelaySeconds)
	return json.Marshal(m)
}

// UnmarshalJSON decodes known fields and stashes the rest in Extra.
func (o *OutreachSettings) UnmarshalJSON(data []byte) error {
	type plain OutreachSettings
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraKeys(data, outreachKeys)
	if err != nil {
		return err
	}
	*o = OutreachSettings(p)
	o.Extra = extra
	return nil
}

// MarshalJSON always emits both sections plus preserved extras.
func (c Config) MarshalJSON() ([]byte, error) {
	m := mergeExtra(c.Extra)
	m["discovery"] = c.Discovery
	m["outreach"] = c.Outreach
	return json.Marshal(m)
}

// UnmarshalJSON decodes both sections and stashes the rest in Extra.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraKeys(data, configKeys)
	if err != nil {
		return err
	}
	*c = Config(p)
	c.Extra = extra
	return nil
}

func putInt(m map[string]any, key string, v *int) {
	if v != nil {
		m[key] = *v
	}
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	return Int(*v)
}

func mergeExtra(extra map[string]any) map[string]any {
	m := make(map[string]any, len(extra)+3)
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func extraKeys(data []byte, known []string) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Author is one profiled author row from /api/authors.
type Author struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Journal      string `json:"journal"`
	PaperID      string `json:"paper_id"`
	PaperTitle   string `json:"paper_title"`
	Affiliations string `json:"affiliations"`
}

// UnmarshalJSON tolerates paper_id arriving as a number and affiliations
// arriving as a bare array instead of its serialized form.
func (a *Author) UnmarshalJSON(data []byte) error {
	type plain Author
	var aux struct {
		plain
		PaperID      json.RawMessage `json:"paper_id"`
		Affiliations json.RawMessage `json:"affiliations"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = Author(aux.plain)
	a.PaperID = rawString(aux.PaperID)
	if trimmed := strings.TrimSpace(string(aux.Affiliations)); strings.HasPrefix(trimmed, "[") {
		a.Affiliations = trimmed
	} else {
		a.Affiliations = rawString(aux.Affiliations)
	}
	return nil
}

// AffiliationList decodes the serialized affiliation array. Malformed or empty
// payloads yield nil.
func (a Author) AffiliationList() []string {
	raw := strings.TrimSpace(a.Affiliations)
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}

// PrimaryAffiliation returns the first affiliation or a placeholder.
func (a Author) PrimaryAffiliation() string {
	for _, aff := range a.AffiliationList() {
		if aff = strings.TrimSpace(aff); aff != "" {
			return aff
		}
	}
	return "Unknown Affiliation"
}

// LogsResponse mirrors /api/logs.
type LogsResponse struct {
	Logs  []string `json:"logs"`
	Error string   `json:"error,omitempty"`
}

// AgentResult mirrors POST /api/agents/{name}/start.
type AgentResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Started reports whether the backend accepted the start request.
func (r AgentResult) Started() bool {
	return r.Status == "started"
}

// SyncResult mirrors POST /api/authors/sync.
type SyncResult struct {
	Status  string `json:"status"`
	Added   int    `json:"added"`
	Message string `json:"message"`
}

// Synced reports whether the backend imported profiles.
func (r SyncResult) Synced() bool {
	return r.Status == "synced"
}

// UpdateResult mirrors POST /api/config.
type UpdateResult struct {
	Status string `json:"status"`
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}

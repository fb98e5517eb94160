package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scheme-eligibility-service/internal/domain"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestClassifyJSONFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemes.yaml")
	doc := `schemes:
  - name: Mukhyamantri Kanya Utthan Yojana
    criteria:
      - Applicant must be a resident of Bihar
      - Copy of Aadhaar card
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := run(t, "classify", "--file", path, "-o", "json")
	var body struct {
		Rules []RuleRow `json:"rules"`
	}
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	byQuestion := make(map[domain.QuestionID]RuleRow)
	for _, row := range body.Rules {
		byQuestion[row.Question] = row
	}
	if row := byQuestion[domain.QResidency]; row.Kind != domain.RulePresence || row.Condition != "= yes" {
		t.Fatalf("expected residency presence rule, got %+v", row)
	}
	if row := byQuestion[domain.QGender]; row.Condition != "in Female" {
		t.Fatalf("expected gender inferred from the scheme name, got %+v", row)
	}
	if row := byQuestion[domain.QAadhaar]; row.Kind != domain.RuleInformational {
		t.Fatalf("expected informational aadhaar rule, got %+v", row)
	}
}

func TestClassifyStatsTable(t *testing.T) {
	out := run(t, "classify", "--stats")
	for _, want := range []string{"SCHEMES", "CLASSIFIED", "family:"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCatalogYAML(t *testing.T) {
	out := run(t, "catalog", "-o", "yaml")
	if !strings.Contains(out, "id: q_1") || !strings.Contains(out, "answerKind: number") {
		t.Fatalf("unexpected catalog output:\n%s", out)
	}
	if strings.Contains(out, "q_13_h_farmer") {
		t.Fatalf("headers must not be exported")
	}
}

func TestRejectsUnknownFormat(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"catalog", "-o", "xml"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		pred domain.Predicate
		want string
	}{
		{domain.Range(domain.Bound(18), domain.Bound(35)), "18 .. 35"},
		{domain.Range(nil, domain.Bound(120000)), "<= 120000"},
		{domain.Range(domain.Bound(2.5), nil), ">= 2.5"},
		{domain.Presence{Expected: false}, "= no"},
		{domain.NegativeMembership{Rejected: []string{"Remarried"}}, "not in Remarried"},
		{nil, "-"},
	}
	for _, tc := range cases {
		if got := describe(tc.pred); got != tc.want {
			t.Fatalf("describe(%#v) = %q, want %q", tc.pred, got, tc.want)
		}
	}
}

package filter

import "testing"

var (
	testInclude = []string{"intern", "coordinator", "associate", "analyst", "graduate", "entry level"}
	testSenior  = []string{"senior", "sr.", "lead", "principal", "director", "vp"}
	testRetail  = []string{"sales associate", "store", "retail", "cashier", "keyholder"}
)

func TestMatch(t *testing.T) {
	f := NewKeywordFilter(testInclude, testSenior, testRetail, nil)

	tests := []struct {
		title string
		want  bool
	}{
		{"Marketing Coordinator", true},
		{"Senior Marketing Coordinator", false},
		{"Retail Sales Associate", false},
		{"Software Engineer", false},
		{"Footwear Design Intern", true},
		{"Supply Chain Analyst", true},
		{"Lead Product Analyst", false},
		{"Store Operations Coordinator", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := f.Match(tt.title); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestMatchIsCaseInsensitive(t *testing.T) {
	f := NewKeywordFilter([]string{"INTERN"}, []string{"Senior"}, nil, nil)

	if !f.Match("marketing intern") {
		t.Error("expected lowercase title to match uppercase keyword")
	}
	if f.Match("SENIOR INTERN") {
		t.Error("expected uppercase seniority keyword to reject")
	}
}

func TestMatchExtraKeywords(t *testing.T) {
	// With extra keywords configured, the title must hit one of them too.
	f := NewKeywordFilter(testInclude, testSenior, testRetail, []string{"design", "marketing"})

	if !f.Match("Marketing Coordinator") {
		t.Error("expected title matching an extra keyword to pass")
	}
	if f.Match("Finance Coordinator") {
		t.Error("expected title missing all extra keywords to be rejected")
	}

	// Empty extra list skips the check entirely.
	f = NewKeywordFilter(testInclude, testSenior, testRetail, []string{})
	if !f.Match("Finance Coordinator") {
		t.Error("expected empty extra keyword list to pass all includes")
	}
}

func TestMatchSubstringSemantics(t *testing.T) {
	// Matching is substring-based, not tokenized: "junior" inside
	// "conjunction" still counts. This is deliberate.
	f := NewKeywordFilter([]string{"junior"}, nil, nil, nil)
	if !f.Match("Conjunction Specialist") {
		t.Error("expected substring match inside a longer word")
	}
}

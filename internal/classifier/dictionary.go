package classifier

import "regexp"

type synonym struct {
	pattern *regexp.Regexp
	value   string
}

func collect(c string, dict []synonym) []string {
	var out []string
	for _, s := range dict {
		if s.pattern.MatchString(c) && !contains(out, s.value) {
			out = append(out, s.value)
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}

var occupationSynonyms = []synonym{
	{regexp.MustCompile(`\bfarmers?\b|cultivat|\bkisan\b`), "Farmer"},
	{regexp.MustCompile(`construction.*work|building.*work|\bbbocwwb\b`), "Construction Worker"},
	{regexp.MustCompile(`unorgani[sz]ed.*sector|\bworkers?\b.*craftsm[ae]n|\bartisans?\b`), "Unorganised Sector Worker"},
	{regexp.MustCompile(`\bjournalists?\b|media\s+representative`), "Journalist"},
	{regexp.MustCompile(`\bbusiness\b.*(?:unit|firm|proprietorship|partnership|enterprise)|\bstart-?ups?\b`), "Business"},
}

// BC is checked against text with the OBC and EBC phrases removed, so
// "other backward class" does not also count as BC.
var (
	categorySynonyms = []synonym{
		{regexp.MustCompile(`scheduled\s+castes?|\bsc\b`), "SC"},
		{regexp.MustCompile(`scheduled\s+tribes?|\bst\b`), "ST"},
		{regexp.MustCompile(`\bobc\b|other\s+backward`), "OBC"},
		{regexp.MustCompile(`extremely\s+backward|\bebc\b|ati\s+pichhada`), "EBC"},
		{regexp.MustCompile(`\bgeneral\s+(?:category|caste|class)|\bunreserved\b`), "General"},
	}
	backwardClassRe    = regexp.MustCompile(`\bbc\b|backward\s+class`)
	compoundBackwardRe = regexp.MustCompile(`(?:other|extremely)\s+backward\s+class(?:es)?`)
)

var (
	femaleRe      = regexp.MustCompile(`\bfemales?\b|\bwom[ae]n\b`)
	girlRe        = regexp.MustCompile(`\bgirls?\b`)
	maleRe        = regexp.MustCompile(`\bmales?\b|\bmen\b`)
	transgenderRe = regexp.MustCompile(`transgender`)
)

// Implicit inference keywords, matched against lower-cased scheme names.
var (
	femaleNameKeywords = []string{
		"girl", "woman", "women", "female", "kanya", "nari", "mahila",
		"daughter", "balika", "kishori",
	}
	occupationNameKeywords = []struct {
		occupation string
		keywords   []string
	}{
		{"Farmer", []string{"farmer", "krishi", "fasal", "kisan", "agriculture", "crop", "seed"}},
		{"Construction Worker", []string{"construction worker", "bbocwwb", "building worker"}},
		{"Student", []string{"student", "vidyarthi", "scholarship"}},
		{"Journalist", []string{"journalist", "patrakar"}},
	}
)

// Display categories for scheme statistics, first match wins.
var displayCategories = []struct {
	name     string
	keywords []string
}{
	{"Social Security", []string{"pension", "suraksha", "kalyan"}},
	{"Agriculture", []string{"krishi", "fasal", "farmer"}},
	{"Business & Employment", []string{"udyami", "startup", "business"}},
	{"Education", []string{"education", "scholarship", "chhatravas"}},
	{"Healthcare", []string{"health", "medical", "aids"}},
}

const otherCategory = "Other"

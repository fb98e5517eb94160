// Package classifier turns free-text eligibility criteria into structured rules
// bound to the questionnaire vocabulary.
package classifier

import (
	"regexp"
	"strings"

	"scheme-eligibility-service/internal/domain"
)

// sentence is one criterion prepared for matching.
type sentence struct {
	text   string
	lower  string
	scheme string
}

func newSentence(text, scheme string) sentence {
	return sentence{
		text:   strings.TrimSpace(text),
		lower:  strings.Join(strings.Fields(strings.ToLower(text)), " "),
		scheme: scheme,
	}
}

// detection is what a detector produces once its keyword family matched.
// A nil predicate means the family matched but no rule can be derived.
type detection struct {
	question  domain.QuestionID
	predicate domain.Predicate
}

type detector struct {
	family string
	detect func(s sentence) (detection, bool)
}

func matched(q domain.QuestionID, p domain.Predicate) (detection, bool) {
	return detection{question: q, predicate: p}, true
}

func unmappable(q domain.QuestionID) (detection, bool) {
	return detection{question: q}, true
}

func skip() (detection, bool) {
	return detection{}, false
}

func presence(q domain.QuestionID, re *regexp.Regexp, expected bool) func(sentence) (detection, bool) {
	return func(s sentence) (detection, bool) {
		if !re.MatchString(s.lower) {
			return skip()
		}
		return matched(q, domain.Presence{Expected: expected})
	}
}

// detectors is tried in order and the first family that matches decides.
// Specific phrasings sit ahead of generic numeric extraction.
var detectors []detector

func init() {
	detectors = []detector{
		{"age_between", detectAgeBetween},
		{"document", detectDocument},
		{"residency", detectResidency},
		{"gender", detectGender},
		{"age", detectAge},
		{"occupation", detectOccupation},
		{"category", detectCategory},
		{"income", detectIncome},
		{"economic", detectEconomic},
		{"marital", detectMarital},
		{"disability", presence(domain.QDisability, disabilityRe, true)},
		{"land", detectLand},
		{"education", detectEducation},
		{"dbt", presence(domain.QDBT, dbtRe, true)},
		{"bank_account", presence(domain.QBankAccount, bankRe, true)},
		{"aadhaar", presence(domain.QAadhaar, aadhaarRe, true)},
		{"minority", presence(domain.QMinority, minorityRe, true)},
		{"pension", detectPension},
		{"family_death", detectFamilyDeath},
		{"medical", presence(domain.QMedical, medicalRe, true)},
		{"pregnancy", presence(domain.QPregnancy, pregnancyRe, true)},
		{"fisheries", presence(domain.QFishPond, fishRe, true)},
		{"piped_water", presence(domain.QPipedWater, pipedWaterRe, false)},
		{"pmay", presence(domain.QPMAY, pmayRe, true)},
		{"prior_benefit", presence(domain.QPriorBenefit, priorBenefitRe, false)},
		{"training", presence(domain.QTraining, trainingRe, true)},
		{"driving_license", presence(domain.QDrivingLicense, drivingRe, true)},
		{"children", detectChildren},
		{"student", detectStudent},
	}
}

var (
	ageBetweenRe   = regexp.MustCompile(`between\s+` + num + `\s+(?:and|to|-)\s+` + num + `\s+years?`)
	documentRe     = regexp.MustCompile(`^(?:a\s+)?(?:self[- ]attested\s+)?(?:copy\s+of|submission\s+of|proof\s+of|documents?\s+(?:required|needed)\b)`)
	residencyRe    = regexp.MustCompile(`resident of bihar|permanent resident|domicile|\bresidents?\b.*\bbihar\b|\bbihar\b.*\bresidents?\b`)
	ageRe          = regexp.MustCompile(`\baged?\b|years?\s+old|years?\s+or\s+(?:above|more|older)|between\s+\d+\s+(?:and|to)\s+\d+.*\byears?\b`)
	economicRe     = regexp.MustCompile(`\bbpl\b|below\s+poverty|poverty\s+line|ultra.?poor|poor\s+famil`)
	incomeRe       = regexp.MustCompile(`income|₹|\brs\.?\s*\d|annual.*family`)
	maritalRe      = regexp.MustCompile(`\bwidow|\bdivorc|\bunmarried\b|\bremarr|\binter.?caste\b|\bmarried\b|\bseparated\b`)
	disabilityRe   = regexp.MustCompile(`\bdisab|\bdivyang|\bhandicap|\bblind\b|\bdeaf\b|impairment`)
	landRe         = regexp.MustCompile(`\bacres?\b|\bland\b|\blandless\b|\bhectares?\b|agricultural land`)
	educationRe    = regexp.MustCompile(`10\+2|intermediate|matric|graduat|diploma|\biti\b|polytechnic|education.*qualif|\bexams?\b|examination|\bupsc\b|\bbpsc\b|competitive`)
	dbtRe          = regexp.MustCompile(`\bdbt\b|direct\s+benefit\s+transfer`)
	bankRe         = regexp.MustCompile(`bank\s+account`)
	aadhaarRe      = regexp.MustCompile(`aadh?aa?r`)
	minorityRe     = regexp.MustCompile(`minority|muslim`)
	pensionRe      = regexp.MustCompile(`pension|retired`)
	negationRe     = regexp.MustCompile(`\bnot\b`)
	medicalRe      = regexp.MustCompile(`\bmedical\b|\bdiseases?\b|\bhealth\b|\btreatment\b|\baids\b|\bcancer\b`)
	pregnancyRe    = regexp.MustCompile(`pregnan|lactating|breastfeeding|maternity|childbirth`)
	fishRe         = regexp.MustCompile(`\bfish|\bponds?\b|aquaculture`)
	pipedWaterRe   = regexp.MustCompile(`piped\s+water|water\s+supply|drinking\s+water|tap\s+water`)
	pmayRe         = regexp.MustCompile(`\bpmay\b|pradhan\s+mantri\s+awas`)
	priorBenefitRe = regexp.MustCompile(`(?:already|previously)\s+(?:availed|received|benefited|taken)|not\s+(?:have\s+)?(?:availed|received|taken)\s+(?:any\s+)?(?:benefit|assistance|loan|grant)`)
	trainingRe     = regexp.MustCompile(`\btraining\b|skill\s+development`)
	drivingRe      = regexp.MustCompile(`driving|\blicen[cs]e\b`)
	childrenRe     = regexp.MustCompile(`\bchild|\bdaughters?\b|\bsons?\b|two.*girl|girl.*child|first.*born`)
	studentRe      = regexp.MustCompile(`\bstudents?\b|\bstudying\b|\benrolled\b.*\bcourse\b`)
)

// Classify maps one criterion sentence to a rule. It returns false when no
// detector applies or the matching detector cannot build a rule.
func Classify(text, schemeName string) (domain.Rule, bool) {
	_, rule, ok := classify(newSentence(text, schemeName))
	return rule, ok
}

func classify(s sentence) (string, domain.Rule, bool) {
	if s.lower == "" {
		return "", domain.Rule{}, false
	}
	for _, d := range detectors {
		det, ok := d.detect(s)
		if !ok {
			continue
		}
		if det.predicate == nil {
			return d.family, domain.Rule{}, false
		}
		return d.family, domain.Rule{
			QuestionID: det.question,
			SourceText: s.text,
			SchemeName: s.scheme,
			Predicate:  det.predicate,
		}, true
	}
	return "", domain.Rule{}, false
}

func detectAgeBetween(s sentence) (detection, bool) {
	m := ageBetweenRe.FindStringSubmatch(s.lower)
	if m == nil {
		return skip()
	}
	return matched(domain.QAge, orderedRange(m[1], m[2]))
}

// detectDocument keeps document requirements as audit text on the question
// the rest of the sentence refers to.
func detectDocument(s sentence) (detection, bool) {
	if !documentRe.MatchString(s.lower) {
		return skip()
	}
	for _, d := range detectors[2:] {
		if det, ok := d.detect(s); ok && det.question != "" {
			return matched(det.question, domain.Informational{})
		}
	}
	return unmappable("")
}

func detectResidency(s sentence) (detection, bool) {
	if !residencyRe.MatchString(s.lower) {
		return skip()
	}
	return matched(domain.QResidency, domain.Presence{Expected: true})
}

func detectGender(s sentence) (detection, bool) {
	c := s.lower
	female := femaleRe.MatchString(c)
	if loc := girlRe.FindStringIndex(c); loc != nil && !strings.Contains(c[loc[1]:], "school") {
		female = true
	}
	male := maleRe.MatchString(c)
	trans := transgenderRe.MatchString(c)

	switch {
	case female && male:
		// "men and women" names both genders and filters nothing.
		return unmappable(domain.QGender)
	case female:
		accepted := []string{"Female"}
		if trans {
			accepted = append(accepted, "Other")
		}
		return matched(domain.QGender, domain.Membership{Accepted: accepted})
	case male:
		return matched(domain.QGender, domain.Membership{Accepted: []string{"Male"}})
	case trans:
		return matched(domain.QGender, domain.Membership{Accepted: []string{"Other"}})
	}
	return skip()
}

func detectAge(s sentence) (detection, bool) {
	if !ageRe.MatchString(s.lower) {
		return skip()
	}
	rng, ok := extractBounds(s.lower, true, nil)
	if !ok {
		return unmappable(domain.QAge)
	}
	return matched(domain.QAge, rng)
}

func detectOccupation(s sentence) (detection, bool) {
	accepted := collect(s.lower, occupationSynonyms)
	if len(accepted) == 0 {
		return skip()
	}
	return matched(domain.QOccupation, domain.Membership{Accepted: accepted})
}

func detectCategory(s sentence) (detection, bool) {
	accepted := collect(s.lower, categorySynonyms)
	if backwardClassRe.MatchString(compoundBackwardRe.ReplaceAllString(s.lower, " ")) {
		accepted = append(accepted, "BC")
	}
	if len(accepted) == 0 {
		return skip()
	}
	return matched(domain.QCategory, domain.Membership{Accepted: accepted})
}

func detectIncome(s sentence) (detection, bool) {
	if !incomeRe.MatchString(s.lower) {
		return skip()
	}
	normalized, amounts := normalizeAmounts(stripFiscalYears(s.lower))
	var figures []float64
	for _, v := range amounts {
		if plausibleIncome(v) {
			figures = append(figures, v)
		}
	}
	if len(figures) == 0 {
		return unmappable(domain.QIncome)
	}
	if rng, ok := extractBounds(normalized, false, plausibleIncome); ok {
		return matched(domain.QIncome, rng)
	}
	limit, _ := largest(figures)
	return matched(domain.QIncome, domain.Range(nil, domain.Bound(limit)))
}

func detectEconomic(s sentence) (detection, bool) {
	if !economicRe.MatchString(s.lower) {
		return skip()
	}
	if strings.Contains(s.lower, "ultra") {
		return matched(domain.QEconomic, domain.Membership{Accepted: []string{"Ultra-poor"}})
	}
	return matched(domain.QEconomic, domain.Membership{Accepted: []string{"Ultra-poor", "below poverty line (BPL)"}})
}

var (
	divorcedRe  = regexp.MustCompile(`\bdivorc`)
	unmarriedRe = regexp.MustCompile(`\bunmarried\b`)
	marriedRe   = regexp.MustCompile(`\bmarried\b`)
	separatedRe = regexp.MustCompile(`\bseparated\b`)
	interCaste  = regexp.MustCompile(`\binter.?caste\b`)
)

func detectMarital(s sentence) (detection, bool) {
	c := s.lower
	if !maritalRe.MatchString(c) {
		return skip()
	}
	if strings.Contains(c, "remarr") && (negationRe.MatchString(c) || strings.Contains(c, "ineligible")) {
		return matched(domain.QMarital, domain.NegativeMembership{Rejected: []string{"Remarried"}})
	}
	if interCaste.MatchString(c) {
		return unmappable(domain.QMarital)
	}
	if strings.Contains(c, "widow") {
		if strings.Contains(c, "not eligible") {
			return matched(domain.QMarital, domain.NegativeMembership{Rejected: []string{"Widowed"}})
		}
		return matched(domain.QMarital, domain.Membership{Accepted: []string{"Widowed"}})
	}
	var accepted []string
	if divorcedRe.MatchString(c) {
		accepted = append(accepted, "Divorced")
	}
	if unmarriedRe.MatchString(c) {
		accepted = append(accepted, "Unmarried")
	}
	if separatedRe.MatchString(c) {
		accepted = append(accepted, "Separated")
	}
	if marriedRe.MatchString(c) {
		accepted = append(accepted, "Married")
	}
	if len(accepted) == 0 {
		return skip()
	}
	return matched(domain.QMarital, domain.Membership{Accepted: accepted})
}

func detectLand(s sentence) (detection, bool) {
	if !landRe.MatchString(s.lower) {
		return skip()
	}
	c := normalizeLand(s.lower)
	if rng, ok := extractBounds(c, false, nil); ok {
		return matched(domain.QLand, rng)
	}
	if strings.Contains(c, "landless") {
		return matched(domain.QLand, domain.Range(nil, domain.Bound(0)))
	}
	if rng, ok := extractBounds(c, true, nil); ok {
		return matched(domain.QLand, rng)
	}
	return unmappable(domain.QLand)
}

func detectEducation(s sentence) (detection, bool) {
	if !educationRe.MatchString(s.lower) {
		return skip()
	}
	return unmappable(domain.QEducation)
}

func detectPension(s sentence) (detection, bool) {
	c := s.lower
	if !pensionRe.MatchString(c) {
		return skip()
	}
	if negationRe.MatchString(c) && (strings.Contains(c, "receiving") || strings.Contains(c, "retired") || strings.Contains(c, "eligible")) {
		return matched(domain.QPension, domain.Presence{Expected: false})
	}
	return matched(domain.QPension, domain.Presence{Expected: true})
}

func detectFamilyDeath(s sentence) (detection, bool) {
	c := s.lower
	if !strings.Contains(c, "death") {
		return skip()
	}
	if !strings.Contains(c, "family") && !strings.Contains(c, "deceased") {
		return skip()
	}
	return matched(domain.QFamilyDeath, domain.Presence{Expected: true})
}

func detectChildren(s sentence) (detection, bool) {
	if !childrenRe.MatchString(s.lower) {
		return skip()
	}
	return unmappable(domain.QChildren)
}

func detectStudent(s sentence) (detection, bool) {
	if !studentRe.MatchString(s.lower) {
		return skip()
	}
	return matched(domain.QOccupation, domain.Membership{Accepted: []string{"Student"}})
}

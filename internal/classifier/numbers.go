package classifier

import (
	"regexp"
	"strconv"
	"strings"

	"scheme-eligibility-service/internal/domain"
)

const num = `(\d+(?:\.\d+)?)`

var (
	betweenRe = regexp.MustCompile(`between\s+` + num + `\s+(?:and|to|-)\s+` + num)
	toRangeRe = regexp.MustCompile(num + `\s*(?:to|-|–)\s*` + num)
	atLeastRe = regexp.MustCompile(num + `\s+(?:[a-z]+\s+)?(?:or\s+)?(?:above|older|more)\b`)
	notLessRe = regexp.MustCompile(`not\s+(?:be\s+)?(?:less|lower|younger)\s+than\s+` + num)
	atMostRe  = regexp.MustCompile(`(?:not\s+(?:be\s+)?(?:more|greater|higher|older)\s+than|not\s+exceed(?:ing)?|does\s+not\s+exceed|below|under|less\s+than|up\s*to|within)\s+` + num)
	orLessRe  = regexp.MustCompile(num + `\s+(?:[a-z]+\s+)?or\s+(?:less|below|under|younger)\b`)
	minimumRe = regexp.MustCompile(`(?:minimum|at\s+least)(?:\s+(?:age|of|is|limit))*\s+` + num)
	maximumRe = regexp.MustCompile(`maximum(?:\s+(?:age|of|is|limit))*\s+` + num)
	numberRe  = regexp.MustCompile(num)

	// fiscalYearRe matches session tokens such as 2023-24 that are not bounds.
	fiscalYearRe = regexp.MustCompile(`\b(?:19|20)\d{2}\s*[-–/]\s*\d{2,4}\b`)

	// amountRe matches rupee figures, optionally in lakh, with Indian digit grouping.
	amountRe   = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*(lakhs?|lacs?)?\b`)
	landUnitRe = regexp.MustCompile(num + `\s*(hectares?|decimals?)\b`)
)

const (
	lakh          = 100000
	acresPerHa    = 2.471
	decimalsPerAc = 100

	// minIncomeFigure is the smallest amount read as a rupee income limit.
	minIncomeFigure = 1000
)

// extractBounds applies the phrasing cascade shared by age, land and income:
// between, X to Y, X or above, below X, minimum/maximum X, and finally the
// first two numbers when pairFallback is set. A phrasing only applies when
// every number it captures passes keep; a nil keep accepts all numbers.
func extractBounds(c string, pairFallback bool, keep func(float64) bool) (domain.NumericRange, bool) {
	c = stripFiscalYears(c)
	if m := firstMatch(betweenRe, c, keep); m != nil {
		return orderedRange(m[1], m[2]), true
	}
	if m := firstMatch(toRangeRe, c, keep); m != nil {
		return orderedRange(m[1], m[2]), true
	}
	if m := firstMatch(atLeastRe, c, keep); m != nil {
		return domain.Range(parseBound(m[1]), nil), true
	}
	if m := firstMatch(notLessRe, c, keep); m != nil {
		return domain.Range(parseBound(m[1]), nil), true
	}
	if m := firstMatch(atMostRe, c, keep); m != nil {
		return domain.Range(nil, parseBound(m[1])), true
	}
	if m := firstMatch(orLessRe, c, keep); m != nil {
		return domain.Range(nil, parseBound(m[1])), true
	}

	var rng domain.NumericRange
	found := false
	if m := firstMatch(minimumRe, c, keep); m != nil {
		rng.Min = parseBound(m[1])
		found = true
	}
	if m := firstMatch(maximumRe, c, keep); m != nil {
		rng.Max = parseBound(m[1])
		found = true
	}
	if found {
		return rng, true
	}

	if pairFallback {
		var nums []string
		for _, raw := range numberRe.FindAllString(c, -1) {
			if accepts(raw, keep) {
				nums = append(nums, raw)
			}
		}
		if len(nums) >= 2 {
			return orderedRange(nums[0], nums[1]), true
		}
	}
	return domain.NumericRange{}, false
}

// firstMatch returns the submatches of the first hit of re whose captured
// numbers all pass keep.
func firstMatch(re *regexp.Regexp, c string, keep func(float64) bool) []string {
	for _, m := range re.FindAllStringSubmatch(c, -1) {
		ok := true
		for _, raw := range m[1:] {
			if !accepts(raw, keep) {
				ok = false
				break
			}
		}
		if ok {
			return m
		}
	}
	return nil
}

func accepts(raw string, keep func(float64) bool) bool {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return false
	}
	return keep == nil || keep(v)
}

func plausibleIncome(v float64) bool { return v >= minIncomeFigure }

func stripFiscalYears(c string) string {
	return fiscalYearRe.ReplaceAllString(c, " ")
}

func orderedRange(a, b string) domain.NumericRange {
	lo, hi := parseBound(a), parseBound(b)
	if *lo > *hi {
		lo, hi = hi, lo
	}
	return domain.Range(lo, hi)
}

func parseBound(raw string) *float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return domain.Bound(v)
}

// normalizeAmounts rewrites every rupee figure as a plain integer so the
// bounds cascade sees "250000" for both "2,50,000" and "2.5 lakh".
func normalizeAmounts(c string) (string, []float64) {
	c = strings.NewReplacer("₹", " ", "rs.", " ", "/-", " ", "inr", " ").Replace(c)
	var amounts []float64
	out := amountRe.ReplaceAllStringFunc(c, func(match string) string {
		m := amountRe.FindStringSubmatch(match)
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			return match
		}
		if m[2] != "" {
			v *= lakh
		}
		amounts = append(amounts, v)
		return strconv.FormatFloat(v, 'f', -1, 64) + " "
	})
	return out, amounts
}

// normalizeLand converts hectares and decimals to acres.
func normalizeLand(c string) string {
	return landUnitRe.ReplaceAllStringFunc(c, func(match string) string {
		m := landUnitRe.FindStringSubmatch(match)
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return match
		}
		switch {
		case strings.HasPrefix(m[2], "hectare"):
			v *= acresPerHa
		case strings.HasPrefix(m[2], "decimal"):
			v /= decimalsPerAc
		}
		return strconv.FormatFloat(v, 'f', -1, 64) + " acres"
	})
}

func largest(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	return best, true
}

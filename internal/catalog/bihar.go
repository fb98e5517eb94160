package catalog

import "scheme-eligibility-service/internal/domain"

// Section ids used by the Bihar questionnaire.
const (
	GroupBasic      = "basic"
	GroupWelfare    = "welfare"
	GroupHealth     = "health"
	GroupAssets     = "assets"
	GroupFamily     = "family"
	GroupOccupation = "occupation"
	GroupIdentity   = "identity"
	GroupSocial     = "social"
	GroupLocation   = "location"
	GroupHousehold  = "household"
)

// DefaultSkipped are the location questions this deployment never asks.
var DefaultSkipped = []domain.QuestionID{domain.QLiving, "q_21_1", domain.QBlock, domain.QDistrict}

var (
	yesNo = []string{"Yes", "No"}

	Occupations = []string{
		"Farmer", "Construction Worker", "Student", "Business",
		"Employment", "Journalist", "Unorganised Sector Worker", "Other",
	}
	SocialCategories = []string{"General", "SC", "ST", "OBC", "BC", "EBC"}
	MaritalStatuses  = []string{"Unmarried", "Married", "Widowed", "Divorced", "Separated", "Remarried"}
	EconomicStatuses = []string{"Ultra-poor", "below poverty line (BPL)", "Above poverty line (APL)"}
	Genders          = []string{"Male", "Female", "Other"}
	EducationLevels  = []string{"No formal education", "Below 10th", "10th pass", "12th pass", "Graduate", "Post Graduate"}

	BiharDistricts = []string{
		"Araria", "Arwal", "Aurangabad", "Banka", "Begusarai",
		"Bhagalpur", "Bhojpur", "Buxar", "Darbhanga", "East Champaran (Motihari)",
		"Gaya", "Gopalganj", "Jamui", "Jehanabad", "Kaimur (Bhabua)",
		"Katihar", "Khagaria", "Kishanganj", "Lakhisarai", "Madhepura",
		"Madhubani", "Munger", "Muzaffarpur", "Nalanda", "Nawada",
		"Patna", "Purnia", "Rohtas", "Saharsa", "Samastipur",
		"Saran (Chapra)", "Sheikhpura", "Sheohar", "Sitamarhi",
		"Siwan", "Supaul", "Vaishali", "West Champaran (Bettiah)",
	}
)

func boolean(id domain.QuestionID, group, text string) domain.Question {
	return domain.Question{ID: id, Text: text, Kind: domain.KindBoolean, Options: yesNo, GroupID: group}
}

func number(id domain.QuestionID, group, text string) domain.Question {
	return domain.Question{ID: id, Text: text, Kind: domain.KindNumber, GroupID: group}
}

func choice(id domain.QuestionID, group, text string, options []string) domain.Question {
	return domain.Question{ID: id, Text: text, Kind: domain.KindSingleChoice, Options: options, GroupID: group}
}

func text(id domain.QuestionID, group, prompt string) domain.Question {
	return domain.Question{ID: id, Text: prompt, Kind: domain.KindFreeText, GroupID: group}
}

// followUp attaches q to parent, shown only while cond holds.
func followUp(q domain.Question, parent domain.QuestionID, cond *domain.Condition) domain.Question {
	q.ParentID = parent
	q.Visibility = cond
	return q
}

// branch tags an occupation sub-question with the category it belongs to.
func branch(q domain.Question, category string) domain.Question {
	q = followUp(q, domain.QOccupation, domain.Eq(domain.QOccupation, category))
	q.Category = category
	return q
}

func header(id domain.QuestionID, category string) domain.Question {
	return domain.Question{
		ID:       id,
		Text:     category,
		GroupID:  GroupOccupation,
		ParentID: domain.QOccupation,
		Header:   true,
		Category: category,
	}
}

// BiharQuestions returns the canonical Bihar questionnaire.
func BiharQuestions() []domain.Question {
	return []domain.Question{
		number(domain.QIncome, GroupBasic, "What is your annual family income (in rupees)?"),
		boolean(domain.QResidency, GroupBasic, "Are you a permanent resident of Bihar?"),
		choice(domain.QGender, GroupBasic, "What is your gender?", Genders),

		boolean(domain.QPension, GroupWelfare, "Are you currently receiving any government pension?"),
		boolean(domain.QDBT, GroupWelfare, "Are you registered on the Direct Benefit Transfer (DBT) portal?"),
		boolean(domain.QBankAccount, GroupWelfare, "Do you have a bank account in your name?"),
		boolean(domain.QMinority, GroupWelfare, "Do you belong to a notified minority community?"),

		boolean(domain.QDisability, GroupHealth, "Do you have a disability?"),
		followUp(number("q_7_1", GroupHealth, "What is your disability percentage?"),
			domain.QDisability, domain.Eq(domain.QDisability, true)),
		boolean(domain.QDrivingLicense, GroupAssets, "Do you hold a valid driving license?"),
		boolean(domain.QFamilyDeath, GroupFamily, "Has there been a death of an earning member in your family?"),
		followUp(choice("q_9_1", GroupFamily, "What was your relationship to the deceased?", []string{"Spouse", "Parent", "Child", "Other"}),
			domain.QFamilyDeath, domain.Eq(domain.QFamilyDeath, true)),
		boolean(domain.QMedical, GroupHealth, "Is anyone in your family suffering from a serious illness?"),
		followUp(text("q_10_1", GroupHealth, "Please name the illness."),
			domain.QMedical, domain.Eq(domain.QMedical, true)),

		number(domain.QLand, GroupAssets, "How much agricultural land does your family own (in acres)?"),
		followUp(boolean("q_11_1", GroupAssets, "Is the land registered in your name?"),
			domain.QLand, domain.Gt(domain.QLand, 0)),

		choice(domain.QMarital, GroupFamily, "What is your current marital status?", MaritalStatuses),
		followUp(number("q_17_1", GroupFamily, "In which year did you get married?"),
			domain.QMarital, domain.Neq(domain.QMarital, "Unmarried")),
		{
			ID:         domain.QChildren,
			Text:       "How many children do you have?",
			Kind:       domain.KindNumber,
			GroupID:    GroupFamily,
			Visibility: domain.Neq(domain.QMarital, "Unmarried"),
		},
		followUp(number("q_12_1", GroupFamily, "How many of them are daughters?"),
			domain.QChildren, domain.Gt(domain.QChildren, 0)),

		choice(domain.QOccupation, GroupOccupation, "What is your occupation?", Occupations),
		header("q_13_h_farmer", "Farmer"),
		branch(number("q_13_1", GroupOccupation, "How many acres do you cultivate?"), "Farmer"),
		branch(boolean("q_13_2", GroupOccupation, "Are you registered on the DBT agriculture portal?"), "Farmer"),
		header("q_13_h_construction", "Construction Worker"),
		branch(boolean("q_13_3", GroupOccupation, "Are you registered with the Bihar Building and Other Construction Workers Welfare Board?"), "Construction Worker"),
		header("q_13_h_student", "Student"),
		branch(text("q_13_4", GroupOccupation, "Which course are you currently studying?"), "Student"),
		branch(boolean("q_13_5", GroupOccupation, "Are you studying in a government institution?"), "Student"),
		header("q_13_h_business", "Business"),
		branch(boolean("q_13_6", GroupOccupation, "Is your business registered?"), "Business"),
		header("q_13_h_journalist", "Journalist"),
		branch(boolean("q_13_7", GroupOccupation, "Are you an accredited journalist?"), "Journalist"),
		header("q_13_h_unorganised", "Unorganised Sector Worker"),
		branch(text("q_13_8", GroupOccupation, "What is your trade or craft?"), "Unorganised Sector Worker"),

		boolean(domain.QAadhaar, GroupIdentity, "Do you have an Aadhaar card?"),
		number(domain.QAge, GroupBasic, "What is your age?"),
		choice(domain.QEducation, GroupSocial, "What is your highest educational qualification?", EducationLevels),
		followUp(boolean("q_16_1", GroupSocial, "Are you currently enrolled in a course?"), domain.QEducation, nil),
		choice(domain.QEconomic, GroupSocial, "What is your family's economic status?", EconomicStatuses),
		choice(domain.QCategory, GroupSocial, "What is your social category?", SocialCategories),

		choice(domain.QLiving, GroupLocation, "Do you live in a rural or urban area?", []string{"Rural", "Urban"}),
		followUp(text("q_21_1", GroupLocation, "Name of your panchayat or ward."), domain.QLiving, nil),
		text(domain.QBlock, GroupLocation, "Which block do you live in?"),
		choice(domain.QDistrict, GroupLocation, "Which district do you live in?", BiharDistricts),

		{
			ID:         domain.QPregnancy,
			Text:       "Are you currently pregnant or a lactating mother?",
			Kind:       domain.KindBoolean,
			Options:    yesNo,
			GroupID:    GroupHealth,
			Visibility: domain.Neq(domain.QGender, "Male"),
		},
		followUp(number("q_24_1", GroupHealth, "How many months pregnant are you?"),
			domain.QPregnancy, domain.Eq(domain.QPregnancy, true)),
		boolean(domain.QFishPond, GroupAssets, "Do you own or lease a fish pond?"),
		boolean(domain.QPriorBenefit, GroupWelfare, "Have you already received a benefit under a similar scheme?"),
		boolean(domain.QPipedWater, GroupHousehold, "Does your household have a piped water connection?"),
		boolean(domain.QPMAY, GroupHousehold, "Have you received a house under Pradhan Mantri Awas Yojana (PMAY)?"),
		boolean(domain.QTraining, GroupWelfare, "Have you completed any government skill training?"),
	}
}

// Default builds the Bihar catalog. It panics if the static definition is
// malformed, which only happens when BiharQuestions is edited incorrectly.
func Default(opts ...Option) *Catalog {
	c, err := New(BiharQuestions(), opts...)
	if err != nil {
		panic(err)
	}
	return c
}

package airquality

import "strings"

// RiskProfile groups people by how strongly polluted air affects them.
type RiskProfile string

const (
	RiskGeneral   RiskProfile = "general"
	RiskChildren  RiskProfile = "children"
	RiskTeens     RiskProfile = "teens"
	RiskPregnant  RiskProfile = "pregnant"
	RiskElderly   RiskProfile = "elderly"
	RiskSensitive RiskProfile = "sensitive"
	RiskHighRisk  RiskProfile = "high_risk"
	RiskCritical  RiskProfile = "critical"
)

// riskMarkers is checked in order; the first profile with a marker contained
// in any condition wins.
var riskMarkers = []struct {
	profile RiskProfile
	markers []string
}{
	{RiskCritical, []string{"transplant", "organ transplant", "immunocompromised", "immune compromised",
		"chemotherapy", "cancer treatment", "hiv", "aids", "severe immunodeficiency"}},
	{RiskPregnant, []string{"pregnant", "pregnancy", "expecting", "expectant", "prenatal"}},
	{RiskChildren, []string{"child", "children", "kid", "infant", "toddler", "baby", "under 12"}},
	{RiskTeens, []string{"teen", "teenager", "adolescent", "age 13-18", "youth", "student"}},
	{RiskElderly, []string{"elderly", "senior", "old age", "aged", "60+", "over 60"}},
	{RiskHighRisk, []string{"copd", "chronic obstructive pulmonary", "emphysema", "severe asthma",
		"heart disease", "cardiovascular disease", "heart failure", "cardiac", "lung cancer", "pulmonary fibrosis"}},
	{RiskSensitive, []string{"asthma", "mild asthma", "allergies", "bronchitis", "sinus",
		"respiratory infection", "allergy", "breathing problem"}},
}

// DetermineRiskProfile maps free-text health conditions to a risk profile.
// Matching is case-insensitive substring matching. Conditions that match no
// marker still count as sensitive; no conditions at all is general.
func DetermineRiskProfile(conditions []string) RiskProfile {
	cleaned := cleanConditions(conditions)
	if len(cleaned) == 0 {
		return RiskGeneral
	}

	for _, rm := range riskMarkers {
		for _, c := range cleaned {
			for _, m := range rm.markers {
				if strings.Contains(c, m) {
					return rm.profile
				}
			}
		}
	}
	return RiskSensitive
}

func cleanConditions(conditions []string) []string {
	out := make([]string, 0, len(conditions))
	for _, c := range conditions {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// RegionalContext is local background for the reading.
type RegionalContext struct {
	Seasonal           string `json:"seasonal"`
	GovernmentMeasures string `json:"governmentMeasures"`
	LocalTips          string `json:"localTips"`
}

// Recommendation is rule-based guidance for one AQI reading and risk profile.
type Recommendation struct {
	AQI                float64         `json:"aqi"`
	Tier               Tier            `json:"tier"`
	RiskProfile        RiskProfile     `json:"riskProfile"`
	Conditions         []string        `json:"conditions"`
	Summary            string          `json:"summary"`
	Precautions        []string        `json:"precautions"`
	Activities         []string        `json:"recommendedActivities"`
	HealthImplications string          `json:"healthImplications"`
	LocalNote          string          `json:"localNote"`
	Context            RegionalContext `json:"context"`
}

type guidance struct {
	summary      string
	precautions  []string
	activities   []string
	implications string
	localNote    string
}

var guidanceByLevel = map[Level]guidance{
	LevelGood: {
		summary:      "Air quality is excellent! Perfect day to enjoy outdoor activities.",
		precautions:  []string{"Stay hydrated", "Keep a basic mask handy"},
		activities:   []string{"Outdoor exercise", "Park visits", "Sports activities"},
		implications: "Air quality poses minimal risk.",
		localNote:    "Make the most of this rare good air quality day in Delhi NCR.",
	},
	LevelModerate: {
		summary:      "Air quality is acceptable. Most people can go about normal activities.",
		precautions:  []string{"Watch for any symptoms", "Consider masks in heavy traffic"},
		activities:   []string{"Normal outdoor activities", "Moderate exercise"},
		implications: "Air quality is acceptable for most people.",
		localNote:    "This is better than average for Delhi NCR.",
	},
	LevelSensitive: {
		summary:      "Sensitive groups should take precautions. Others can continue normal activities with awareness.",
		precautions:  []string{"Wear mask when outdoors", "Use air purifiers", "Limit prolonged outdoor time"},
		activities:   []string{"Prefer indoor activities", "Short outdoor errands with mask"},
		implications: "Sensitive groups will notice effects. General public may experience minor symptoms.",
		localNote:    "Typical level for Delhi NCR. Masks and air purifiers become important.",
	},
	LevelUnhealthy: {
		summary:      "Everyone affected. Stay indoors and use protection when going out.",
		precautions:  []string{"Wear N95 mask outdoors", "Keep windows closed", "Use air purifiers"},
		activities:   []string{"Stay indoors when possible", "Work from home if available"},
		implications: "Everyone may experience health effects.",
		localNote:    "Common during Delhi NCR winter season. Use protective measures consistently.",
	},
	LevelVeryUnhealthy: {
		summary:      "Health alert for everyone. Stay indoors with air filtration.",
		precautions:  []string{"Complete indoor isolation", "Multiple air purifiers", "N95 masks mandatory"},
		activities:   []string{"Indoor activities only", "Work from home", "Essential travel only"},
		implications: "Everyone at increased risk. Serious effects for sensitive groups.",
		localNote:    "Emergency level common during Delhi winter. Follow official guidelines.",
	},
	LevelHazardous: {
		summary:      "Health emergency. Everyone must stay indoors with air filtration.",
		precautions:  []string{"Seal windows", "Multiple air purifiers", "Complete indoor isolation"},
		activities:   []string{"Stay indoors", "No outdoor activities", "Follow emergency guidelines"},
		implications: "Serious health effects for everyone.",
		localNote:    "Emergency level requiring government action. Follow all official guidelines.",
	},
}

var delhiContext = RegionalContext{
	Seasonal:           "Delhi NCR experiences high pollution during winter months (Oct-Feb).",
	GovernmentMeasures: "GRAP measures may be in effect at this AQI level.",
	LocalTips:          "Use N95 masks, air purifiers, and monitor AQI regularly.",
}

// Recommend builds guidance for aqi from its tier and the risk profile of
// the given health conditions. Conditions are echoed back trimmed, with
// blanks removed.
func Recommend(aqi float64, conditions []string) Recommendation {
	tier := Classify(aqi)
	g := guidanceByLevel[tier.Level]

	echoed := make([]string, 0, len(conditions))
	for _, c := range conditions {
		if c = strings.TrimSpace(c); c != "" {
			echoed = append(echoed, c)
		}
	}

	return Recommendation{
		AQI:                aqi,
		Tier:               tier,
		RiskProfile:        DetermineRiskProfile(conditions),
		Conditions:         echoed,
		Summary:            g.summary,
		Precautions:        append([]string(nil), g.precautions...),
		Activities:         append([]string(nil), g.activities...),
		HealthImplications: g.implications,
		LocalNote:          g.localNote,
		Context:            delhiContext,
	}
}

package healthlink

import (
	"fmt"
	"strings"
	"time"
)

const (
	minPatientAge = 18
	maxPatientAge = 90

	dobLayout = "20060102"
)

// Patient is a synthetic patient created for a single message.
type Patient struct {
	ID   string `json:"id"`
	MRN  string `json:"mrn"`
	PPSN string `json:"ppsn"`
	NHI  string `json:"nhi"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	// FullName is "LAST,FIRST" upper-cased.
	FullName string `json:"full_name"`

	DOB    string `json:"dob"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`

	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	County       string `json:"county"`
	Eircode      string `json:"eircode"`
	Phone        string `json:"phone"`
	Mobile       string `json:"mobile"`

	// Condition and ConditionCode are both set or both empty.
	Condition     string `json:"clinical_condition"`
	ConditionCode string `json:"clinical_condition_code"`

	Practice Practice `json:"gp_practice"`
}

// GenderText spells out the gender code for prompts.
func (p *Patient) GenderText() string {
	if p.Gender == "M" {
		return "Male"
	}
	return "Female"
}

// Provider is the synthetic doctor named on referral messages.
type Provider struct {
	Name       string    `json:"name"`
	MCN        string    `json:"mcn"`
	PracticeID string    `json:"practice_id"`
	Specialty  Specialty `json:"specialty"`
	Hospital   string    `json:"hospital_affiliation"`
}

// SplitName splits the display name on its first comma into family and
// given parts. A name without a comma is all family name.
func (p *Provider) SplitName() (family, given string) {
	family, given, _ = strings.Cut(p.Name, ",")
	return family, given
}

// providerPracticeID is the practice identifier literal carried by every
// provider.
const providerPracticeID = "MCN.HLPracticeID"

// Synthesizer builds patients and providers from the reference tables.
type Synthesizer struct {
	src   ValueSource
	clock func() time.Time
}

// NewSynthesizer returns a synthesizer drawing from src. A nil clock uses
// time.Now.
func NewSynthesizer(src ValueSource, clock func() time.Time) *Synthesizer {
	if clock == nil {
		clock = time.Now
	}
	return &Synthesizer{src: src, clock: clock}
}

// SynthesizePatient returns a fresh patient.
func (s *Synthesizer) SynthesizePatient() *Patient {
	src := s.src
	now := s.clock()

	gender := pick(src, genders)
	names := femaleFirstNames
	if gender == "M" {
		names = maleFirstNames
	}
	first := pick(src, names)
	last := pick(src, surnames)

	dob := src.DateBetween(now.AddDate(-maxPatientAge, 0, 0), now.AddDate(-minPatientAge, 0, 0))

	p := &Patient{
		ID:           fmt.Sprintf("%d", src.IntRange(100000, 999999)),
		MRN:          fmt.Sprintf("%s%d", pick(src, mrnPrefixes), src.IntRange(1, 999999)),
		PPSN:         fmt.Sprintf("%d%d%s", src.IntRange(100000, 999999), src.IntRange(10, 99), pick(src, ppsnLetters)),
		NHI:          fmt.Sprintf("IE%d%d", src.IntRange(100000, 999999), src.IntRange(100, 999)),
		FirstName:    first,
		LastName:     last,
		FullName:     strings.ToUpper(last) + "," + strings.ToUpper(first),
		DOB:          dob.Format(dobLayout),
		Age:          ageAt(dob, now),
		Gender:       gender,
		AddressLine1: pick(src, dublinStreets),
		AddressLine2: pick(src, towns),
		County:       pick(src, counties),
		Eircode: fmt.Sprintf("%s%s%s%d",
			pick(src, eircodeAreas), pick(src, eircodeLetter1), pick(src, eircodeLetter2), src.IntRange(10, 99)),
		Phone:    fmt.Sprintf("0%d %d%d", src.IntRange(21, 99), src.IntRange(400, 999), src.IntRange(1000, 9999)),
		Mobile:   fmt.Sprintf("087 %d%d", src.IntRange(100, 999), src.IntRange(1000, 9999)),
		Practice: pick(src, practices),
	}

	cond := pick(src, conditions)
	if src.Float64() < cond.Prevalence {
		p.Condition = cond.Name
		p.ConditionCode = cond.ICD10
	}
	return p
}

// SynthesizeProvider returns a fresh provider based on a consultant from the
// reference table.
func (s *Synthesizer) SynthesizeProvider() *Provider {
	src := s.src
	c := pick(src, consultants)

	bare := strings.TrimPrefix(c.Name, "Dr. ")
	variants := []string{
		"Dr " + bare,
		strings.ToUpper("DR " + bare),
		strings.ReplaceAll(bare, " ", ","),
	}

	return &Provider{
		Name:       pick(src, variants),
		MCN:        fmt.Sprintf("%d.%d", src.IntRange(10000, 999999), src.IntRange(1000, 9999)),
		PracticeID: providerPracticeID,
		Specialty:  c.Specialty,
		Hospital:   pick(src, hospitals).Name,
	}
}

// ageAt returns completed years between dob and now.
func ageAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

package healthlink

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

var (
	mrnPattern     = regexp.MustCompile(`^[MPH]\d{1,6}$`)
	ppsnPattern    = regexp.MustCompile(`^\d{8}[A-Z]$`)
	nhiPattern     = regexp.MustCompile(`^IE\d{9}$`)
	eircodePattern = regexp.MustCompile(`^[A-Z]\d{2}[A-Z0-9]{2}\d{2}$`)
	phonePattern   = regexp.MustCompile(`^0\d{2} \d{7}$`)
	mobilePattern  = regexp.MustCompile(`^087 \d{7}$`)
	mcnPattern     = regexp.MustCompile(`^\d{5,6}\.\d{4}$`)
)

var fixedNow = time.Date(2025, time.March, 14, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestSynthesizePatient_Invariants(t *testing.T) {
	s := NewSynthesizer(NewRandSource(2024), fixedClock)
	earliest := fixedNow.AddDate(-maxPatientAge, 0, -1)
	latest := fixedNow.AddDate(-minPatientAge, 0, 0)

	for i := 0; i < 500; i++ {
		p := s.SynthesizePatient()

		if p.Gender != "M" && p.Gender != "F" {
			t.Fatalf("invalid gender %q", p.Gender)
		}
		if (p.Condition == "") != (p.ConditionCode == "") {
			t.Fatalf("condition fields out of step: %q / %q", p.Condition, p.ConditionCode)
		}

		dob, err := time.Parse(dobLayout, p.DOB)
		if err != nil {
			t.Fatalf("dob %q is not a calendar date: %v", p.DOB, err)
		}
		if dob.Before(earliest) || dob.After(latest) {
			t.Fatalf("dob %s outside [%s, %s]", p.DOB, earliest, latest)
		}
		if p.Age < minPatientAge || p.Age > maxPatientAge {
			t.Fatalf("age %d out of range", p.Age)
		}

		checks := map[string]struct {
			re  *regexp.Regexp
			val string
		}{
			"mrn":     {mrnPattern, p.MRN},
			"ppsn":    {ppsnPattern, p.PPSN},
			"nhi":     {nhiPattern, p.NHI},
			"eircode": {eircodePattern, p.Eircode},
			"phone":   {phonePattern, p.Phone},
			"mobile":  {mobilePattern, p.Mobile},
		}
		for field, c := range checks {
			if !c.re.MatchString(c.val) {
				t.Fatalf("%s %q does not match %s", field, c.val, c.re)
			}
		}

		want := strings.ToUpper(p.LastName) + "," + strings.ToUpper(p.FirstName)
		if p.FullName != want {
			t.Fatalf("expected full name %q, got %q", want, p.FullName)
		}
		if p.AddressLine1 == "" || p.AddressLine2 == "" || p.County == "" || p.Practice.Name == "" {
			t.Fatalf("missing address or practice: %+v", p)
		}
	}
}

func TestSynthesizePatient_ConditionPrevalence(t *testing.T) {
	always := NewSynthesizer(&scriptedSource{float: 0}, fixedClock).SynthesizePatient()
	if always.Condition == "" || always.ConditionCode == "" {
		t.Error("expected condition attached when draw is below prevalence")
	}

	never := NewSynthesizer(&scriptedSource{float: 0.999}, fixedClock).SynthesizePatient()
	if never.Condition != "" || never.ConditionCode != "" {
		t.Errorf("expected no condition, got %q", never.Condition)
	}
}

func TestAgeAt(t *testing.T) {
	tests := []struct {
		dob  time.Time
		want int
	}{
		{time.Date(2000, time.March, 14, 0, 0, 0, 0, time.UTC), 25},
		{time.Date(2000, time.March, 15, 0, 0, 0, 0, time.UTC), 24},
		{time.Date(2000, time.February, 29, 0, 0, 0, 0, time.UTC), 25},
		{time.Date(2007, time.April, 1, 0, 0, 0, 0, time.UTC), 17},
	}
	for _, tt := range tests {
		if got := ageAt(tt.dob, fixedNow); got != tt.want {
			t.Errorf("ageAt(%s) = %d, want %d", tt.dob.Format(dobLayout), got, tt.want)
		}
	}
}

func TestSynthesizeProvider_Invariants(t *testing.T) {
	s := NewSynthesizer(NewRandSource(11), fixedClock)
	for i := 0; i < 200; i++ {
		p := s.SynthesizeProvider()
		if !p.Specialty.Valid() {
			t.Fatalf("invalid specialty %q", p.Specialty)
		}
		if !mcnPattern.MatchString(p.MCN) {
			t.Fatalf("mcn %q does not match", p.MCN)
		}
		if p.PracticeID != providerPracticeID {
			t.Fatalf("unexpected practice id %q", p.PracticeID)
		}
		if p.Name == "" || p.Hospital == "" {
			t.Fatalf("missing name or hospital: %+v", p)
		}
	}
}

func TestProvider_SplitName(t *testing.T) {
	tests := []struct {
		name   string
		family string
		given  string
	}{
		{"Mary,Murphy", "Mary", "Murphy"},
		{"Dr Mary Murphy", "Dr Mary Murphy", ""},
		{"A,B,C", "A", "B,C"},
	}
	for _, tt := range tests {
		family, given := (&Provider{Name: tt.name}).SplitName()
		if family != tt.family || given != tt.given {
			t.Errorf("SplitName(%q) = %q, %q; want %q, %q", tt.name, family, given, tt.family, tt.given)
		}
	}
}

func TestPatient_GenderText(t *testing.T) {
	if got := (&Patient{Gender: "M"}).GenderText(); got != "Male" {
		t.Errorf("expected Male, got %s", got)
	}
	if got := (&Patient{Gender: "F"}).GenderText(); got != "Female" {
		t.Errorf("expected Female, got %s", got)
	}
}

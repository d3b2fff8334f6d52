package healthlink

import (
	"fmt"
	"strings"

	"github.com/norrisp90/HL7SyntGen/internal/platform/narrative"
)

// labResultMaxLen bounds provider supplied lab values.
const labResultMaxLen = 50

const englishOnly = "IMPORTANT: Respond only in English, never in Irish Gaelic."

// Note types used for NTE segments.
const (
	noteLaboratory = "LABORATORY"
	noteRadiology  = "RADIOLOGY"
	noteReferral   = "REFERRAL"
)

// defaultNote is the local NTE text for every note type.
const defaultNote = "Clinical note documented."

const fallbackDischargeSummary = "Patient admitted for assessment. Treatment provided as indicated. " +
	"Discharged in stable condition with appropriate follow-up arranged."

var fallbackReferralReasons = map[Specialty]string{
	SpecialtyCardiology:       "Chest pain and abnormal ECG findings requiring specialist assessment",
	SpecialtyNeurology:        "Neurological symptoms requiring specialist evaluation",
	SpecialtyOncology:         "Abnormal screening results requiring urgent specialist review",
	SpecialtyOrthopaedics:     "Joint pain and mobility issues requiring orthopaedic assessment",
	SpecialtyGastroenterology: "Gastrointestinal symptoms requiring specialist investigation",
	SpecialtyRespiratory:      "Respiratory symptoms and abnormal chest imaging",
	SpecialtyEndocrinology:    "Diabetes management and endocrine disorder assessment",
	SpecialtyRadiology:        "Clinical indication for advanced imaging studies",
	SpecialtyDermatology:      "Skin lesion requiring dermatological evaluation",
	SpecialtyOphthalmology:    "Visual symptoms requiring ophthalmologic assessment",
	SpecialtyENT:              "ENT symptoms requiring specialist evaluation",
	SpecialtyUrology:          "Urological symptoms requiring specialist assessment",
	SpecialtyGynaecology:      "Gynaecological symptoms requiring specialist evaluation",
}

const defaultReferralReason = "Clinical assessment required"

func fallbackNote() string {
	return defaultNote
}

func fallbackReferralReason(s Specialty) string {
	if r, ok := fallbackReferralReasons[s]; ok {
		return r
	}
	return defaultReferralReason
}

func fallbackRadiologyReport(t LabTest) string {
	return t.Name + ": Normal study. No acute abnormality detected."
}

// ---------------------------------------------------------------------------
// Prompts
// ---------------------------------------------------------------------------

func labResultPrompt(t LabTest, p *Patient) narrative.Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a realistic medical laboratory result value for:\nTest: %s (Code: %s)\n", t.Name, t.Code)
	fmt.Fprintf(&b, "Patient Age: %d years\nPatient Gender: %s\n", p.Age, p.GenderText())
	b.WriteString(`
Requirements:
- Return only the value with appropriate units
- Use Irish/European medical standards
- Keep it concise (max 20 characters)
- If abnormal, make it slightly outside normal range

Examples:
- Glucose: "5.4 mmol/L"
- Creatinine: "78 umol/L"

Result value only:`)

	return narrative.NewPrompt(narrative.KindLabResult,
		"You are a medical laboratory system generating realistic Irish lab values. "+
			"Return only the requested lab value with units. "+englishOnly,
		b.String())
}

func radiologyReportPrompt(examType string, p *Patient) narrative.Prompt {
	user := fmt.Sprintf(`Generate a realistic radiology report for Irish healthcare.

Exam details:
- Type: %s examination
- Patient: %d-year-old %s

Requirements:
- Include TECHNIQUE, FINDINGS and IMPRESSION sections
- Professional radiologist language
- 100-200 words maximum
- The study may be normal or show minor age-related changes`, examType, p.Age, p.GenderText())

	return narrative.NewPrompt(narrative.KindRadiologyReport,
		"You are a radiologist generating medical reports for Irish healthcare. "+englishOnly,
		user)
}

func referralReasonPrompt(s Specialty, p *Patient) narrative.Prompt {
	condition := p.ConditionCode
	if condition == "" {
		condition = "General assessment required"
	}
	user := fmt.Sprintf(`Generate a realistic referral reason for an Irish hospital referral to %s.

Patient context:
- Age: %d
- Gender: %s
- Clinical condition: %s

Requirements:
- Professional Irish medical terminology
- Relevant clinical history in 2-3 sentences
- GP referral to consultant context
- Maximum 150 words

Example format: "6-month history of [symptoms]. [Investigation findings]. Requesting [specific assessment/management]."`,
		s.Display(), p.Age, p.GenderText(), condition)

	return narrative.NewPrompt(narrative.KindReferralReason,
		"You are a medical professional generating clinical content for Irish healthcare. "+englishOnly,
		user)
}

func clinicalNotePrompt(noteType, context string, p *Patient) narrative.Prompt {
	user := fmt.Sprintf(`Generate clinical notes for Irish healthcare documentation.

Context:
- Note type: %s
- Patient: %d-year-old %s
- Clinical context: %s

Requirements:
- Suitable for inter-professional communication
- 50-100 words
- Clear, concise and professional`, noteType, p.Age, p.GenderText(), context)

	return narrative.NewPrompt(narrative.KindClinicalNote,
		"You are a healthcare professional generating clinical documentation for Irish healthcare. "+englishOnly,
		user)
}

func dischargeSummaryPrompt(admissionReason string, p *Patient) narrative.Prompt {
	user := fmt.Sprintf(`Generate a discharge summary for an Irish hospital.

Patient details:
- Age: %d
- Gender: %s
- Admission reason: %s
- Hospital course: Routine care provided

Requirements:
- Admission reason, hospital course and discharge condition
- Follow-up arrangements
- 100-150 words
- Appropriate for GP communication`, p.Age, p.GenderText(), admissionReason)

	return narrative.NewPrompt(narrative.KindDischargeSummary,
		"You are a healthcare professional generating discharge summaries for Irish hospitals. "+englishOnly,
		user)
}

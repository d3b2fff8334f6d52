package healthlink

import (
	"fmt"
	"strings"
	"time"

	"github.com/norrisp90/HL7SyntGen/internal/platform/hl7v2"
)

// dischargeSummaryTypeID is the REF_I12 message type that carries a discharge
// summary note.
const dischargeSummaryTypeID = 5

// clinicalNoteTypeIDs are the REF_I12 message types that carry a referral
// clinical note.
var clinicalNoteTypeIDs = map[int]bool{
	3: true, 14: true, 16: true, 18: true, 19: true, 20: true,
	22: true, 24: true, 26: true, 28: true, 30: true,
}

// Originating referral ids carry a date from this window.
var (
	referralIDFrom = time.Date(2012, time.May, 30, 0, 0, 0, 0, time.UTC)
	referralIDTo   = time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
)

// buildReferralGroup builds RF1, the primary care provider contact, PID and,
// for some referral types, an NTE note.
func buildReferralGroup(in *buildInput) []*hl7v2.Node {
	specialty := pick(in.src, referralSpecialties)
	priority := pick(in.src, referralPriorities)

	rf1 := hl7v2.NewNode("RF1")
	addCE(rf1, "RF1.1", "P", "Pending")
	addCE(rf1, "RF1.2", priority.Code, priority.Text)
	addCE(rf1, "RF1.3", string(specialty), specialty.Display())
	rf1.Set("RF1.4", in.text.Resolve(in.ctx, referralReasonPrompt(specialty, in.patient), 0,
		func() string { return fallbackReferralReason(specialty) }))
	rf1.Add("RF1.6").Set("EI.1", originatingReferralID(in.src)).Empty("EI.2", "EI.3", "EI.4")
	rf1.Add("RF1.7").Set("TS.1", in.timestamp[:8])

	family, given := in.provider.SplitName()
	contact := hl7v2.NewNode("REF_I12.PROVIDER_CONTACT")
	prd := contact.Add("PRD")
	addCE(prd, "PRD.1", "PP", "Primary Care Provider")
	addXPN(prd, "PRD.2", family, given)

	segs := []*hl7v2.Node{rf1, contact, buildPID(in.patient, in.hospital.Name)}

	switch {
	case in.msgType.ID == dischargeSummaryTypeID:
		reason := "Assessment for " + strings.ToLower(specialty.Display())
		segs = append(segs, buildNTE(in.text.Resolve(in.ctx, dischargeSummaryPrompt(reason, in.patient), 0,
			func() string { return fallbackDischargeSummary })))
	case clinicalNoteTypeIDs[in.msgType.ID]:
		noteContext := "Referral to " + specialty.Display()
		segs = append(segs, buildNTE(in.text.Resolve(in.ctx, clinicalNotePrompt(noteReferral, noteContext, in.patient), 0,
			fallbackNote)))
	}
	return segs
}

// originatingReferralID looks like "REF20120530134026012121".
func originatingReferralID(src ValueSource) string {
	day := src.DateBetween(referralIDFrom, referralIDTo)
	return fmt.Sprintf("REF%s%d%d", day.Format("20060102"), src.IntRange(130000, 200000), src.IntRange(100000, 999999))
}

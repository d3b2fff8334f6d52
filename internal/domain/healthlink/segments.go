package healthlink

import (
	"strings"

	"github.com/norrisp90/HL7SyntGen/internal/platform/hl7v2"
)

const (
	fieldSeparator     = "|"
	encodingCharacters = `^~\&`
	receivingApp       = "HEALTHLINK"
	receivingFacility  = "HSE"
	processingID       = "P"
	versionID          = "2.5"

	// localCodingSystem marks locally defined codes in CE.3.
	localCodingSystem = "L"
)

// buildHeader builds the MSH segment.
func buildHeader(mt MessageType, hospital Hospital, timestamp, controlID string) *hl7v2.Node {
	msh := hl7v2.NewNode("MSH")
	msh.Set("MSH.1", fieldSeparator).
		Set("MSH.2", encodingCharacters).
		Set("MSH.3", mt.SendingApplication()).
		Set("MSH.4", hospital.HIPE).
		Set("MSH.5", receivingApp).
		Set("MSH.6", receivingFacility).
		Set("MSH.7", timestamp)
	msh.Add("MSH.9").
		Set("MSG.1", mt.MessageCode()).
		Set("MSG.2", mt.TriggerEvent()).
		Set("MSG.3", mt.HL7Type)
	msh.Set("MSH.10", controlID).
		Set("MSH.11", processingID).
		Set("MSH.12", versionID)
	return msh
}

// buildPID builds the patient identification segment. authority names the
// facility that assigned the MRN.
func buildPID(p *Patient, authority string) *hl7v2.Node {
	pid := hl7v2.NewNode("PID")
	pid.Set("PID.1", "1")

	mrn := pid.Add("PID.3").Set("CX.1", p.MRN).Empty("CX.2", "CX.3")
	mrn.Add("CX.4").Set("HD.1", authority).Empty("HD.2", "HD.3")
	mrn.Set("CX.5", "MRN")

	nhi := pid.Add("PID.3").Set("CX.1", p.NHI).Empty("CX.2", "CX.3")
	nhi.Add("CX.4").Set("HD.1", receivingFacility).Empty("HD.2", "HD.3")
	nhi.Set("CX.5", "NHI")

	addXPN(pid, "PID.5", strings.ToUpper(p.LastName), strings.ToUpper(p.FirstName))

	pid.Add("PID.7").Set("TS.1", p.DOB)
	pid.Set("PID.8", p.Gender)

	addr := pid.Add("PID.11")
	addr.Add("XAD.1").Set("SAD.1", p.AddressLine1)
	addr.Set("XAD.2", p.AddressLine2).
		Set("XAD.3", p.County).
		Set("XAD.4", strings.ToUpper(p.County)).
		Set("XAD.5", p.Eircode)

	if p.Phone != "" {
		pid.Add("PID.13").Set("XTN.1", p.Phone).Set("XTN.2", "PRN").Set("XTN.3", "PH")
	}
	if p.Mobile != "" {
		pid.Add("PID.13").Set("XTN.1", p.Mobile).Set("XTN.2", "PRN").Set("XTN.3", "CP")
	}

	pid.Set("PID.19", p.PPSN)
	return pid
}

// addCE appends a coded element with empty alternate-code components.
func addCE(parent *hl7v2.Node, tag, code, text string) *hl7v2.Node {
	return parent.Add(tag).
		Set("CE.1", code).
		Set("CE.2", text).
		Set("CE.3", localCodingSystem).
		Empty("CE.4", "CE.5", "CE.6")
}

// addXPN appends an extended person name.
func addXPN(parent *hl7v2.Node, tag, family, given string) *hl7v2.Node {
	xpn := parent.Add(tag)
	xpn.Add("XPN.1").Set("FN.1", family)
	xpn.Set("XPN.2", given).Empty("XPN.3", "XPN.4", "XPN.5", "XPN.6", "XPN.7")
	return xpn
}

// buildNTE builds a single notes-and-comments segment.
func buildNTE(text string) *hl7v2.Node {
	return hl7v2.NewNode("NTE").Set("NTE.1", "1").Set("NTE.3", text)
}

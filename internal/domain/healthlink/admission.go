package healthlink

import "github.com/norrisp90/HL7SyntGen/internal/platform/hl7v2"

// admissionEvent maps the ADT message type to its EVN.1 event code. Anything
// other than an admission or discharge is reported as a patient update.
func admissionEvent(hl7Type string) string {
	switch hl7Type {
	case "ADT_A01":
		return "A01"
	case "ADT_A03":
		return "A03"
	default:
		return "A08"
	}
}

// buildAdmissionGroup builds EVN, PID and a minimal PV1.
func buildAdmissionGroup(in *buildInput) []*hl7v2.Node {
	evn := hl7v2.NewNode("EVN")
	evn.Set("EVN.1", admissionEvent(in.msgType.HL7Type))
	evn.Add("EVN.2").Set("TS.1", in.timestamp)

	pv1 := hl7v2.NewNode("PV1")
	pv1.Set("PV1.2", pick(in.src, admissionClasses))
	pv1.Add("PV1.3").
		Set("PL.1", pick(in.src, admissionWards)).
		Set("PL.2", pick(in.src, admissionBeds))

	return []*hl7v2.Node{
		evn,
		buildPID(in.patient, in.hospital.Name),
		pv1,
	}
}

package healthlink

import (
	"fmt"

	"github.com/norrisp90/HL7SyntGen/internal/platform/hl7v2"
)

const (
	ackApplicationAccept = "AA"
	ackSuccessText       = "Message processed successfully"
)

// buildReferralResponseGroup builds MSA and PID for RRI_I12.
func buildReferralResponseGroup(in *buildInput) []*hl7v2.Node {
	msa := hl7v2.NewNode("MSA")
	msa.Set("MSA.1", ackApplicationAccept).
		Set("MSA.2", fmt.Sprintf("REF%s%d", in.timestamp, in.src.IntRange(100, 999)))

	return []*hl7v2.Node{msa, buildPID(in.patient, in.hospital.Name)}
}

// buildAcknowledgementGroup builds the MSA segment of an ACK. No patient
// data is included.
func buildAcknowledgementGroup(in *buildInput) []*hl7v2.Node {
	msa := hl7v2.NewNode("MSA")
	msa.Set("MSA.1", ackApplicationAccept).
		Set("MSA.2", fmt.Sprintf("ACK%s%d", in.timestamp, in.src.IntRange(1000, 9999))).
		Set("MSA.3", ackSuccessText)

	return []*hl7v2.Node{msa}
}

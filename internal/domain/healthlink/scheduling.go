package healthlink

import (
	"fmt"

	"github.com/norrisp90/HL7SyntGen/internal/platform/hl7v2"
)

const (
	appointmentRequestType = "New"
	appointmentDuration    = "30"
	appointmentUnits       = "min"
)

// buildSchedulingGroup builds SCH and PID for SIU_S12.
func buildSchedulingGroup(in *buildInput) []*hl7v2.Node {
	sch := hl7v2.NewNode("SCH")
	sch.Add("SCH.1").Set("EI.1", fmt.Sprintf("APT%d", in.src.IntRange(100000, 999999)))
	sch.Set("SCH.7", appointmentRequestType)
	sch.Add("SCH.11").Set("TQ.1", appointmentDuration).Set("TQ.2", appointmentUnits)

	return []*hl7v2.Node{sch, buildPID(in.patient, in.hospital.Name)}
}

package healthlink

import (
	"fmt"
	"strings"

	"github.com/norrisp90/HL7SyntGen/internal/platform/hl7v2"
)

// imagingTypeIDs are the ORU_R01 message types that carry imaging reports
// rather than lab values.
var imagingTypeIDs = map[int]bool{
	7:  true,
	17: true,
}

const (
	specimenCode       = "XXX"
	specimenText       = "Specified in report"
	visitLocationLabel = "Live Healthlink Location"
)

// buildResultGroup builds ORU_R01.PATIENT_RESULT with the patient, visit,
// order and a single observation.
func buildResultGroup(in *buildInput) []*hl7v2.Node {
	test := pick(in.src, labTests)
	imaging := imagingTypeIDs[in.msgType.ID]

	result := hl7v2.NewNode("ORU_R01.PATIENT_RESULT")

	patient := result.Add("ORU_R01.PATIENT")
	patient.Append(buildPID(in.patient, in.hospital.Name))
	patient.Add("ORU_R01.PATIENT_VISIT").Append(buildResultPV1(in))

	order := result.Add("ORU_R01.ORDER_OBSERVATION")
	order.Append(buildOBR(in, test))

	obs := order.Add("ORU_R01.OBSERVATION")
	obs.Append(buildOBX(test, resultValue(in, test, imaging)))

	noteType, noteContext := noteLaboratory, test.Name+" results"
	if imaging {
		noteType, noteContext = noteRadiology, test.Name+" interpretation"
	}
	obs.Append(buildNTE(in.text.Resolve(in.ctx, clinicalNotePrompt(noteType, noteContext, in.patient), 0,
		fallbackNote)))

	return []*hl7v2.Node{result}
}

func buildResultPV1(in *buildInput) *hl7v2.Node {
	pv1 := hl7v2.NewNode("PV1")
	pv1.Set("PV1.2", pick(in.src, resultPatientClasses))

	loc := pv1.Add("PV1.3")
	loc.Set("PL.1", pick(in.src, resultLocations)).Empty("PL.2", "PL.3")
	loc.Add("PL.4").Empty("HD.1", "HD.2", "HD.3")
	loc.Empty("PL.5", "PL.6", "PL.7", "PL.8").Set("PL.9", visitLocationLabel)

	pv1.Add("PV1.19").Empty("CX.1")
	return pv1
}

func buildOBR(in *buildInput, test LabTest) *hl7v2.Node {
	obr := hl7v2.NewNode("OBR")
	obr.Set("OBR.1", "1")
	obr.Add("OBR.2").Set("EI.1", placerOrderNumber(in)).Empty("EI.2")
	obr.Add("OBR.3").Set("EI.1", fillerOrderNumber(in)).Empty("EI.2", "EI.3", "EI.4")
	addCE(obr, "OBR.4", test.Code, test.Name)
	obr.Add("OBR.7").Set("TS.1", in.timestamp)
	obr.Empty("OBR.13")
	obr.Add("OBR.14").Set("TS.1", in.timestamp)

	sps := obr.Add("OBR.15")
	addCE(sps, "SPS.1", specimenCode, specimenText)
	sps.Empty("SPS.2", "SPS.3")
	sps.Add("SPS.4").Empty("CE.1", "CE.2", "CE.3")
	return obr
}

func buildOBX(test LabTest, value string) *hl7v2.Node {
	obx := hl7v2.NewNode("OBX")
	obx.Set("OBX.1", "1").Set("OBX.2", "TX")
	obx.Add("OBX.3").Set("CE.1", test.Code).Set("CE.2", test.Name).Set("CE.3", localCodingSystem)
	obx.Set("OBX.5", value).Set("OBX.11", "F")
	return obx
}

// placerOrderNumber is ten digits followed by the first four letters of the
// hospital name.
func placerOrderNumber(in *buildInput) string {
	prefix := in.hospital.Name
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return fmt.Sprintf("%d%d%s", in.src.IntRange(6000, 9999), in.src.IntRange(100000, 999999), strings.ToUpper(prefix))
}

// fillerOrderNumber looks like "JS008002B".
func fillerOrderNumber(in *buildInput) string {
	return fmt.Sprintf("JS%d%s", in.src.IntRange(100000, 999999), pick(in.src, fillerSuffixes))
}

func resultValue(in *buildInput, test LabTest, imaging bool) string {
	if imaging {
		return in.text.Resolve(in.ctx, radiologyReportPrompt(test.Name, in.patient), 0,
			func() string { return fallbackRadiologyReport(test) })
	}
	gen := labValueGenerator{src: in.src}
	return in.text.Resolve(in.ctx, labResultPrompt(test, in.patient), labResultMaxLen,
		func() string { return gen.Generate(test) })
}

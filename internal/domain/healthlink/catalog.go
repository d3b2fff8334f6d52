// Package healthlink assembles synthetic HL7 v2 XML messages shaped after
// the Irish HealthLink interchange profile. A message type id (1..31) selects
// the message structure; patients, providers and clinical content are drawn
// from fixed reference tables through an injected ValueSource.
package healthlink

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownMessageType is returned for message type ids outside the catalog.
var ErrUnknownMessageType = errors.New("healthlink: unknown message type")

// MessageType describes one entry of the HealthLink catalog.
type MessageType struct {
	ID           int    `json:"id" yaml:"id"`
	HL7Type      string `json:"hl7_type" yaml:"hl7_type"`
	Name         string `json:"name" yaml:"name"`
	HeaderSuffix string `json:"header_suffix" yaml:"header_suffix"`
}

// MessageCode returns the message code part of the HL7 type ("ORU" for
// "ORU_R01").
func (m MessageType) MessageCode() string {
	code, _, _ := strings.Cut(m.HL7Type, "_")
	return code
}

// TriggerEvent returns the trigger event part of the HL7 type ("R01" for
// "ORU_R01"), or "" when the type has none.
func (m MessageType) TriggerEvent() string {
	_, event, _ := strings.Cut(m.HL7Type, "_")
	return event
}

// SendingApplication is the MSH.3 label for the message type.
func (m MessageType) SendingApplication() string {
	return "HL7SYNTGEN" + m.HeaderSuffix
}

const (
	// MinMessageTypeID and MaxMessageTypeID bound the catalog ids.
	MinMessageTypeID = 1
	MaxMessageTypeID = 31
)

func entry(id int, hl7Type, name string) MessageType {
	return MessageType{ID: id, HL7Type: hl7Type, Name: name, HeaderSuffix: strconv.Itoa(id)}
}

// catalog is indexed by id-1.
var catalog = []MessageType{
	entry(1, "OML_O21", "Laboratory Order"),
	entry(2, "ADT_A01", "Inpatient Admission"),
	entry(3, "REF_I12", "Outpatient Clinic Letter"),
	entry(4, "ADT_A01", "A&E Notification"),
	entry(5, "REF_I12", "Discharge Summary"),
	entry(6, "ADT_A03", "Death Notification"),
	entry(7, "ORU_R01", "Radiology Result"),
	entry(8, "SIU_S12", "OPD Appointment"),
	entry(9, "SIU_S12", "Waiting List"),
	entry(10, "ORU_R01", "Laboratory Result"),
	entry(11, "ORL_O22", "Laboratory NACK"),
	entry(12, "ADT_A03", "Discharge Notification"),
	entry(13, "ACK", "Acknowledgement"),
	entry(14, "REF_I12", "Neurology Referral"),
	entry(15, "RRI_I12", "Neurology Referral Response"),
	entry(16, "REF_I12", "Co-op Discharge"),
	entry(17, "ORU_R01", "Cardiology Result"),
	entry(18, "REF_I12", "Oesophageal and Gastric Cancer Referral"),
	entry(19, "REF_I12", "A&E Letter"),
	entry(20, "REF_I12", "Prostate Cancer Referral"),
	entry(21, "RRI_I12", "Prostate Cancer Referral Response"),
	entry(22, "REF_I12", "Breast Cancer Referral"),
	entry(23, "RRI_I12", "Breast Cancer Referral Response"),
	entry(24, "REF_I12", "Lung Cancer Referral"),
	entry(25, "RRI_I12", "Lung Cancer Referral Response"),
	entry(26, "REF_I12", "Chest Pain Referral"),
	entry(27, "RRI_I12", "Chest Pain Referral Response"),
	entry(28, "REF_I12", "MRI Request"),
	entry(29, "RRI_I12", "MRI Request Response"),
	entry(30, "REF_I12", "General Referral"),
	entry(31, "RRI_I12", "General Referral Response"),
}

// Catalog returns a copy of every message type ordered by id.
func Catalog() []MessageType {
	out := make([]MessageType, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the message type with the given id.
func Lookup(id int) (MessageType, error) {
	if id < MinMessageTypeID || id > MaxMessageTypeID {
		return MessageType{}, fmt.Errorf("%w: %d", ErrUnknownMessageType, id)
	}
	return catalog[id-1], nil
}

// Category is the segment-group family a message type is built with.
type Category int

const (
	CategoryGeneric Category = iota
	CategoryResult
	CategoryAdmission
	CategoryReferral
	CategoryReferralResponse
	CategoryAcknowledgement
	CategoryScheduling
)

func (c Category) String() string {
	switch c {
	case CategoryResult:
		return "result"
	case CategoryAdmission:
		return "admission"
	case CategoryReferral:
		return "referral"
	case CategoryReferralResponse:
		return "referral-response"
	case CategoryAcknowledgement:
		return "acknowledgement"
	case CategoryScheduling:
		return "scheduling"
	default:
		return "generic"
	}
}

// CategoryOf maps an HL7 message type to its builder family.
func CategoryOf(hl7Type string) Category {
	switch {
	case hl7Type == "ORU_R01":
		return CategoryResult
	case strings.HasPrefix(hl7Type, "ADT"):
		return CategoryAdmission
	case hl7Type == "REF_I12":
		return CategoryReferral
	case hl7Type == "RRI_I12":
		return CategoryReferralResponse
	case hl7Type == "ACK":
		return CategoryAcknowledgement
	case hl7Type == "SIU_S12":
		return CategoryScheduling
	default:
		return CategoryGeneric
	}
}

// Category returns the builder family of the message type.
func (m MessageType) Category() Category {
	return CategoryOf(m.HL7Type)
}

package healthlink

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/norrisp90/HL7SyntGen/internal/platform/hl7v2"
	"github.com/norrisp90/HL7SyntGen/internal/platform/narrative"
)

// TimestampLayout is the HL7 TS layout used for MSH.7 and friends.
const TimestampLayout = "20060102150405"

// Message is an assembled HealthLink message.
type Message struct {
	Type      MessageType
	Root      *hl7v2.Node
	ControlID string
	Timestamp string
	Patient   *Patient
	Provider  *Provider
	Hospital  Hospital
}

// buildInput is what every segment-group builder receives. All segments of
// one message share the timestamp.
type buildInput struct {
	ctx       context.Context
	msgType   MessageType
	patient   *Patient
	provider  *Provider
	hospital  Hospital
	timestamp string
	src       ValueSource
	text      *narrative.Resolver
}

// groupBuilder returns the segments that follow MSH.
type groupBuilder func(in *buildInput) []*hl7v2.Node

var groupBuilders = map[Category]groupBuilder{
	CategoryResult:           buildResultGroup,
	CategoryAdmission:        buildAdmissionGroup,
	CategoryReferral:         buildReferralGroup,
	CategoryReferralResponse: buildReferralResponseGroup,
	CategoryAcknowledgement:  buildAcknowledgementGroup,
	CategoryScheduling:       buildSchedulingGroup,
	CategoryGeneric:          buildGenericGroup,
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithNarrative wires a narrative resolver for free-text fields.
func WithNarrative(r *narrative.Resolver) Option {
	return func(a *Assembler) { a.text = r }
}

// WithClock overrides the time source used for timestamps and ages.
func WithClock(clock func() time.Time) Option {
	return func(a *Assembler) { a.clock = clock }
}

// WithLogger sets the logger for build events.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// Assembler builds complete messages from a message type id. It holds no
// per-message state and is safe for concurrent use when its ValueSource is.
type Assembler struct {
	src    ValueSource
	text   *narrative.Resolver
	clock  func() time.Time
	logger zerolog.Logger
}

// NewAssembler returns an assembler drawing randomness from src.
func NewAssembler(src ValueSource, opts ...Option) *Assembler {
	a := &Assembler{
		src:    src,
		clock:  time.Now,
		logger: zerolog.Nop(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Derive returns a copy of a that draws from src and shares everything else.
func (a *Assembler) Derive(src ValueSource) *Assembler {
	cp := *a
	cp.src = src
	return &cp
}

// RandomTypeID draws a catalog id uniformly.
func (a *Assembler) RandomTypeID() int {
	return a.src.IntRange(MinMessageTypeID, MaxMessageTypeID)
}

// Build assembles the message for typeID. It fails with
// ErrUnknownMessageType before drawing any data when the id is not in the
// catalog.
func (a *Assembler) Build(ctx context.Context, typeID int) (*Message, error) {
	mt, err := Lookup(typeID)
	if err != nil {
		return nil, err
	}

	now := a.clock()
	synth := NewSynthesizer(a.src, func() time.Time { return now })

	patient := synth.SynthesizePatient()
	provider := synth.SynthesizeProvider()
	hospital := pick(a.src, hospitals)
	timestamp := now.Format(TimestampLayout)
	controlID := fmt.Sprintf("%s%d", timestamp, a.src.IntRange(1000, 9999))

	root := hl7v2.NewNode(mt.HL7Type)
	root.Append(buildHeader(mt, hospital, timestamp, controlID))

	in := &buildInput{
		ctx:       ctx,
		msgType:   mt,
		patient:   patient,
		provider:  provider,
		hospital:  hospital,
		timestamp: timestamp,
		src:       a.src,
		text:      a.text,
	}
	for _, seg := range groupBuilders[mt.Category()](in) {
		root.Append(seg)
	}

	a.logger.Debug().
		Int("message_type_id", mt.ID).
		Str("hl7_type", mt.HL7Type).
		Str("category", mt.Category().String()).
		Str("control_id", controlID).
		Msg("message assembled")

	return &Message{
		Type:      mt,
		Root:      root,
		ControlID: controlID,
		Timestamp: timestamp,
		Patient:   patient,
		Provider:  provider,
		Hospital:  hospital,
	}, nil
}

// buildGenericGroup is used for message types without a dedicated builder.
func buildGenericGroup(in *buildInput) []*hl7v2.Node {
	return []*hl7v2.Node{buildPID(in.patient, in.hospital.Name)}
}

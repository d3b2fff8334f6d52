package hl7v2

import (
	"errors"
	"strings"
	"testing"
)

func TestSerialize_Compact(t *testing.T) {
	root := NewNode("ACK")
	root.Add("MSA").Set("MSA.1", "AA").Set("MSA.2", "ACK123")

	out, err := Serialize(root, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<ACK><MSA><MSA.1>AA</MSA.1><MSA.2>ACK123</MSA.2></MSA></ACK>"
	if string(out) != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestSerialize_NoDeclaration(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		out, err := Serialize(sampleTree(), pretty)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.HasPrefix(string(out), "<?xml") {
			t.Errorf("pretty=%v: expected no XML declaration", pretty)
		}
		if !strings.HasPrefix(string(out), "<ORU_R01>") {
			t.Errorf("pretty=%v: expected output to start with root tag, got %q", pretty, out[:20])
		}
	}
}

func TestSerialize_Pretty(t *testing.T) {
	out, err := Serialize(sampleTree(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(string(out), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			t.Errorf("line %d is blank", i)
		}
	}
	if !strings.Contains(string(out), "\n  <MSH>") {
		t.Error("expected MSH indented two spaces")
	}
	if !strings.Contains(string(out), "<PID.1></PID.1>") {
		t.Error("expected empty leaf emitted on one line")
	}
}

func TestSerialize_Escaping(t *testing.T) {
	root := NewNode("MSH")
	root.Set("MSH.2", `^~\&`)

	out, err := Serialize(root, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), `<MSH.2>^~\&amp;</MSH.2>`) {
		t.Errorf("expected ampersand escaped, got %q", out)
	}

	parsed, err := Parse(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := parsed.Child("MSH.2").Text; got != `^~\&` {
		t.Errorf("expected encoding characters restored, got %q", got)
	}
}

func TestSerialize_EmptyTag(t *testing.T) {
	root := NewNode("ACK")
	root.Add("")

	_, err := Serialize(root, false)
	if !errors.Is(err, ErrSerialization) {
		t.Errorf("expected ErrSerialization, got %v", err)
	}
}

func TestSerialize_NilTree(t *testing.T) {
	_, err := Serialize(nil, true)
	if !errors.Is(err, ErrSerialization) {
		t.Errorf("expected ErrSerialization, got %v", err)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		out, err := Serialize(sampleTree(), pretty)
		if err != nil {
			t.Fatalf("serialize: %v", err)
		}
		parsed, err := Parse(out)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if parsed.Tag != "ORU_R01" {
			t.Errorf("expected root ORU_R01, got %s", parsed.Tag)
		}
		if n := parsed.Path("ORU_R01.PATIENT", "PID", "PID.5", "XPN.1"); n == nil || n.Text != "MURPHY" {
			t.Errorf("pretty=%v: expected family name MURPHY, got %+v", pretty, n)
		}
		if n := parsed.Path("ORU_R01.PATIENT", "PID", "PID.2"); n == nil || n.Text != "" {
			t.Errorf("pretty=%v: expected empty PID.2 preserved", pretty)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"unclosed", "<ACK><MSA>"},
		{"two roots", "<A></A><B></B>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

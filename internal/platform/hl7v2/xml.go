package hl7v2

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrSerialization is returned when a tree cannot be rendered as XML.
var ErrSerialization = errors.New("hl7v2: serialization failed")

// Serialize renders the tree as XML. With pretty set the output is indented
// two spaces per level and whitespace-only lines are dropped. No XML
// declaration is written in either mode.
func Serialize(root *Node, pretty bool) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil tree", ErrSerialization)
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if pretty {
		enc.Indent("", "  ")
	}
	if err := encodeNode(enc, root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	if !pretty {
		return buf.Bytes(), nil
	}
	return dropBlankLines(buf.Bytes()), nil
}

func encodeNode(enc *xml.Encoder, n *Node) error {
	if n.Tag == "" {
		return errors.New("element with empty tag")
	}
	start := xml.StartElement{Name: xml.Name{Local: n.Tag}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if n.IsLeaf() {
		if n.Text != "" {
			if err := enc.EncodeToken(xml.CharData(n.Text)); err != nil {
				return err
			}
		}
	} else {
		for _, c := range n.Children {
			if err := encodeNode(enc, c); err != nil {
				return err
			}
		}
	}
	return enc.EncodeToken(start.End())
}

func dropBlankLines(data []byte) []byte {
	lines := strings.Split(string(data), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return []byte(strings.Join(kept, "\n"))
}

// Parse reads an XML document back into a tree. Character data inside
// elements that have child elements is treated as formatting and dropped;
// leaf text is kept verbatim.
func Parse(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		root  *Node
		stack []*Node
		text  []*strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("hl7v2: parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Tag: t.Name.Local}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("hl7v2: parse xml: multiple root elements")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
			text = append(text, &strings.Builder{})
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		case xml.EndElement:
			node := stack[len(stack)-1]
			if node.IsLeaf() {
				node.Text = text[len(text)-1].String()
			}
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
		}
	}

	if root == nil {
		return nil, errors.New("hl7v2: parse xml: empty document")
	}
	return root, nil
}

// Package xbrl parses XBRL instance documents into the raw fact pool the
// resolution engine consumes. Contexts are indexed first (period plus
// explicit dimensional members), then numeric facts are joined to their
// contexts; structural and non-numeric elements are skipped.
package xbrl

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/razor389/sec-queries/internal/facts"
)

// Namespaces that carry structure rather than facts
var structuralNamespaces = map[string]bool{
	"http://www.xbrl.org/2003/instance": true,
	"http://www.xbrl.org/2003/linkbase": true,
	"http://xbrl.org/2006/xbrldi":       true,
	"http://www.w3.org/1999/xlink":      true,
}

type context struct {
	start string
	end   string // end date or instant
	dims  map[string]string
}

type rawFact struct {
	space      string
	local      string
	contextRef string
	unitRef    string
	decimals   string
	scale      string
	text       string
}

// Parse converts an instance document into the fact pool. It returns an
// error only for malformed XML; individual non-numeric or context-less
// elements are skipped silently, matching how filings mix text blocks and
// numeric facts.
func Parse(data []byte) ([]facts.Fact, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	prefixes := make(map[string]string) // namespace URI -> declared prefix
	contexts := make(map[string]context)
	var raws []rawFact

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse instance document: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		// Namespace declarations; instance documents declare them on the
		// root but amendments occasionally redeclare deeper down.
		for _, attr := range start.Attr {
			if attr.Name.Space == "xmlns" {
				prefixes[attr.Value] = attr.Name.Local
			}
		}

		if strings.EqualFold(start.Name.Local, "context") {
			id, ctx, err := parseContext(dec, start)
			if err != nil {
				return nil, err
			}
			if id != "" {
				contexts[id] = ctx
			}
			continue
		}

		if structuralNamespaces[start.Name.Space] {
			// the root element carries the facts; everything else in a
			// structural namespace (units, schemaRef, footnotes) is a
			// subtree to skip
			if strings.EqualFold(start.Name.Local, "xbrl") {
				continue
			}
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("parse instance document: %w", err)
			}
			continue
		}

		ctxRef := attrValue(start, "contextRef")
		if ctxRef == "" {
			continue
		}

		text, ok, err := elementText(dec)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		raws = append(raws, rawFact{
			space:      start.Name.Space,
			local:      start.Name.Local,
			contextRef: ctxRef,
			unitRef:    attrValue(start, "unitRef"),
			decimals:   attrValue(start, "decimals"),
			scale:      attrValue(start, "scale"),
			text:       text,
		})
	}

	pool := make([]facts.Fact, 0, len(raws))
	for _, r := range raws {
		prefix := prefixes[r.space]
		if prefix == "" {
			// unknown namespace, likely structural
			continue
		}

		value, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(r.text), ",", ""), 64)
		if err != nil {
			// text blocks and dates share the fact syntax; not numeric,
			// not a fact we care about
			continue
		}

		ctx, ok := contexts[r.contextRef]
		if !ok {
			continue
		}

		if r.scale != "" && r.scale != "0" {
			if exp, err := strconv.Atoi(r.scale); err == nil {
				value *= math.Pow10(exp)
			}
		}

		pool = append(pool, facts.Fact{
			Tag:       prefix + ":" + r.local,
			Value:     value,
			Unit:      r.unitRef,
			Decimals:  r.decimals,
			Start:     ctx.start,
			End:       ctx.end,
			Dims:      ctx.dims,
			ContextID: r.contextRef,
		})
	}

	return pool, nil
}

// parseContext walks one context subtree: period (startDate/endDate or
// instant) and segment explicitMember dimensions
func parseContext(dec *xml.Decoder, start xml.StartElement) (string, context, error) {
	id := attrValue(start, "id")
	ctx := context{dims: make(map[string]string)}

	var startDate, endDate, instant string

	depth := 1
	var current string
	var currentDim string
	var text strings.Builder

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", context{}, fmt.Errorf("parse context %s: %w", id, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			current = strings.ToLower(t.Name.Local)
			text.Reset()
			if strings.Contains(current, "explicitmember") {
				currentDim = attrValue(t, "dimension")
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			depth--
			value := strings.TrimSpace(text.String())
			switch {
			case current == "startdate":
				startDate = value
			case current == "enddate":
				endDate = value
			case current == "instant":
				instant = value
			case strings.Contains(current, "explicitmember") && currentDim != "" && value != "":
				ctx.dims[currentDim] = value
				currentDim = ""
			}
			current = ""
			text.Reset()
		}
	}

	if instant != "" {
		ctx.end = instant
	} else {
		ctx.start = startDate
		ctx.end = endDate
	}

	return id, ctx, nil
}

// elementText collects the character content of the current element. The
// second return value is false when the element contains child elements
// (a tuple or text block, not a numeric fact).
func elementText(dec *xml.Decoder) (string, bool, error) {
	var text strings.Builder
	hasChildren := false
	depth := 1

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", false, fmt.Errorf("parse fact element: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			hasChildren = true
		case xml.CharData:
			if depth == 1 {
				text.Write(t)
			}
		case xml.EndElement:
			depth--
		}
	}

	if hasChildren {
		return "", false, nil
	}
	return text.String(), true, nil
}

func attrValue(e xml.StartElement, name string) string {
	for _, attr := range e.Attr {
		if strings.EqualFold(attr.Name.Local, name) {
			return attr.Value
		}
	}
	return ""
}

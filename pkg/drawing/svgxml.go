package drawing

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Node is one element of an SVG document. Geometry attributes are kept as
// strings because an absent attribute and an explicit zero differ for some
// shapes (rect rx/ry).
type Node struct {
	XMLName             xml.Name
	Width               string  `xml:"width,attr,omitempty"`
	Height              string  `xml:"height,attr,omitempty"`
	ViewBox             string  `xml:"viewBox,attr,omitempty"`
	PreserveAspectRatio string  `xml:"preserveAspectRatio,attr,omitempty"`
	ID                  string  `xml:"id,attr,omitempty"`
	Styles              string  `xml:"style,attr,omitempty"`
	Display             string  `xml:"display,attr,omitempty"`
	Transform           string  `xml:"transform,attr,omitempty"`
	D                   string  `xml:"d,attr,omitempty"`
	Points              string  `xml:"points,attr,omitempty"`
	Children            []*Node `xml:",any"`

	X  string `xml:"x,attr,omitempty"`
	Y  string `xml:"y,attr,omitempty"`
	RX string `xml:"rx,attr,omitempty"`
	RY string `xml:"ry,attr,omitempty"`
	CX string `xml:"cx,attr,omitempty"`
	CY string `xml:"cy,attr,omitempty"`
	R  string `xml:"r,attr,omitempty"`
	X1 string `xml:"x1,attr,omitempty"`
	Y1 string `xml:"y1,attr,omitempty"`
	X2 string `xml:"x2,attr,omitempty"`
	Y2 string `xml:"y2,attr,omitempty"`

	style map[string]string
}

func parseXML(data []byte) (*Node, error) {
	var svg Node
	err := xml.Unmarshal(data, &svg)
	return &svg, err
}

// ParseNumber parses a plain number, returning 0 for anything unparsable.
func ParseNumber(n string) float64 {
	val, _ := strconv.ParseFloat(strings.TrimSpace(n), 64)
	return val
}

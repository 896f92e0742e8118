package roi

import (
	"encoding/xml"
	"fmt"
	"io"

	"roilab/pkg/colorutil"
	"roilab/pkg/geometry"
)

// xmlPoint is a serialized anchor position.
type xmlPoint struct {
	X float64 `xml:"x"`
	Y float64 `xml:"y"`
	Z float64 `xml:"z"`
}

type xmlPoints struct {
	Point []xmlPoint `xml:"point"`
}

// xmlROI is the on-disk form of a single ROI. Shape payload elements are
// set according to the shape type.
type xmlROI struct {
	XMLName     xml.Name  `xml:"roi"`
	Type        string    `xml:"type"`
	Name        string    `xml:"name"`
	Color       string    `xml:"color"`
	Position    *xmlPoint `xml:"position,omitempty"`
	Points      *xmlPoints `xml:"points,omitempty"`
	Pt1         *xmlPoint `xml:"pt1,omitempty"`
	Pt2         *xmlPoint `xml:"pt2,omitempty"`
	TopLeft     *xmlPoint `xml:"top_left,omitempty"`
	BottomRight *xmlPoint `xml:"bottom_right,omitempty"`
	CloseZ      *float64  `xml:"close_z,omitempty"`
	FarZ        *float64  `xml:"far_z,omitempty"`
}

type xmlROIList struct {
	XMLName xml.Name `xml:"rois"`
	ROI     []xmlROI `xml:"roi"`
}

// SaveROIs writes the ROIs as a <rois> XML document.
func SaveROIs(w io.Writer, rois []ROI) error {
	doc := xmlROIList{}
	for _, r := range rois {
		xr, err := encodeROI(r)
		if err != nil {
			return err
		}
		doc.ROI = append(doc.ROI, xr)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding rois: %w", err)
	}
	return enc.Close()
}

// LoadROIs reads a <rois> XML document.
func LoadROIs(r io.Reader) ([]ROI, error) {
	var doc xmlROIList
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding rois: %w", err)
	}
	out := make([]ROI, 0, len(doc.ROI))
	for _, xr := range doc.ROI {
		roi, err := decodeROI(xr)
		if err != nil {
			return nil, err
		}
		out = append(out, roi)
	}
	return out, nil
}

func encodeROI(r ROI) (xmlROI, error) {
	xr := xmlROI{
		Type:  r.TypeName(),
		Name:  r.Name(),
		Color: colorutil.Hex(r.Color()),
	}
	switch s := r.(type) {
	case *Point2D:
		a := s.anchor
		xr.Position = &xmlPoint{X: a.X(), Y: a.Y()}
	case *Point3D:
		p := s.anchor.Position()
		xr.Position = &xmlPoint{X: p.X, Y: p.Y, Z: p.Z}
	case *Line2D:
		pts := s.Points()
		xr.Pt1 = &xmlPoint{X: pts[0].X, Y: pts[0].Y}
		xr.Pt2 = &xmlPoint{X: pts[1].X, Y: pts[1].Y}
	case *Line3D:
		p1, p2 := s.Endpoints()
		xr.Pt1 = &xmlPoint{X: p1.X, Y: p1.Y, Z: p1.Z}
		xr.Pt2 = &xmlPoint{X: p2.X, Y: p2.Y, Z: p2.Z}
	case *Polyline2D:
		xr.Points = encodePoints(s.Points())
	case *Polygon2D:
		xr.Points = encodePoints(s.Points())
	case *Rectangle2D:
		xr.TopLeft, xr.BottomRight = encodeRect(s.Rect())
	case *Ellipse2D:
		xr.TopLeft, xr.BottomRight = encodeRect(s.Rect())
	case *Box3D:
		xr.TopLeft, xr.BottomRight = encodeRect(s.Rect())
		xr.CloseZ, xr.FarZ = f64ptr(s.CloseZ()), f64ptr(s.FarZ())
	case *Cylinder3D:
		xr.TopLeft, xr.BottomRight = encodeRect(s.Rect())
		xr.CloseZ, xr.FarZ = f64ptr(s.CloseZ()), f64ptr(s.FarZ())
	default:
		return xmlROI{}, fmt.Errorf("roi type %q cannot be serialized", r.TypeName())
	}
	return xr, nil
}

func decodeROI(xr xmlROI) (ROI, error) {
	var r ROI
	switch xr.Type {
	case TypePoint2D:
		p := requirePoint(xr.Position)
		r = NewPoint2D(p.X, p.Y)
	case TypePoint3D:
		p := requirePoint(xr.Position)
		r = NewPoint3D(p.X, p.Y, p.Z)
	case TypeLine2D:
		p1, p2 := requirePoint(xr.Pt1), requirePoint(xr.Pt2)
		r = NewLine2D(p1.X, p1.Y, p2.X, p2.Y)
	case TypeLine3D:
		p1, p2 := requirePoint(xr.Pt1), requirePoint(xr.Pt2)
		r = NewLine3D(geometry.Point3D{X: p1.X, Y: p1.Y, Z: p1.Z},
			geometry.Point3D{X: p2.X, Y: p2.Y, Z: p2.Z})
	case TypePolyline2D:
		r = NewPolyline2D(decodePoints(xr.Points))
	case TypePolygon2D:
		r = NewPolygon2D(decodePoints(xr.Points))
	case TypeRectangle2D:
		r = NewRectangle2D(decodeRect(xr.TopLeft, xr.BottomRight))
	case TypeEllipse2D:
		r = NewEllipse2D(decodeRect(xr.TopLeft, xr.BottomRight))
	case TypeBox3D:
		r = NewBox3D(decodeRect(xr.TopLeft, xr.BottomRight), f64val(xr.CloseZ), f64val(xr.FarZ))
	case TypeCylinder3D:
		r = NewCylinder3D(decodeRect(xr.TopLeft, xr.BottomRight), f64val(xr.CloseZ), f64val(xr.FarZ))
	default:
		return nil, fmt.Errorf("unknown roi type %q", xr.Type)
	}
	if xr.Name != "" {
		r.SetName(xr.Name)
	}
	if xr.Color != "" {
		if c, err := colorutil.ParseHex(xr.Color); err == nil {
			r.SetColor(c)
		}
	}
	return r, nil
}

func encodePoints(points []geometry.Point2D) *xmlPoints {
	out := &xmlPoints{Point: make([]xmlPoint, len(points))}
	for i, p := range points {
		out.Point[i] = xmlPoint{X: p.X, Y: p.Y}
	}
	return out
}

func decodePoints(points *xmlPoints) []geometry.Point2D {
	if points == nil {
		return nil
	}
	out := make([]geometry.Point2D, len(points.Point))
	for i, p := range points.Point {
		out[i] = geometry.Point2D{X: p.X, Y: p.Y}
	}
	return out
}

func encodeRect(r geometry.Rect) (*xmlPoint, *xmlPoint) {
	tl := r.TopLeft()
	br := r.BottomRight()
	return &xmlPoint{X: tl.X, Y: tl.Y}, &xmlPoint{X: br.X, Y: br.Y}
}

func decodeRect(tl, br *xmlPoint) geometry.Rect {
	p1 := requirePoint(tl)
	p2 := requirePoint(br)
	return geometry.NewRect(p1.X, p1.Y, p2.X-p1.X, p2.Y-p1.Y)
}

func requirePoint(p *xmlPoint) xmlPoint {
	if p == nil {
		return xmlPoint{}
	}
	return *p
}

func f64ptr(v float64) *float64 { return &v }

func f64val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

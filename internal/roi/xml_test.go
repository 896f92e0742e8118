package roi

import (
	"bytes"
	"strings"
	"testing"

	"roilab/pkg/geometry"
)

func TestROIXMLRoundTrip(t *testing.T) {
	rois := []ROI{
		NewPoint2D(3, 4),
		NewLine2D(0, 0, 10, 5),
		NewPolygon2D(trianglePoints()),
		NewRectangle2D(geometry.NewRect(1, 2, 10, 20)),
		NewEllipse2D(geometry.NewRect(0, 0, 8, 4)),
		NewBox3D(geometry.NewRect(0, 0, 10, 10), 1, 6),
		NewCylinder3D(geometry.NewRect(2, 2, 6, 6), 0, 3),
	}
	rois[0].SetName("marker")

	var buf bytes.Buffer
	if err := SaveROIs(&buf, rois); err != nil {
		t.Fatalf("SaveROIs failed: %v", err)
	}

	loaded, err := LoadROIs(&buf)
	if err != nil {
		t.Fatalf("LoadROIs failed: %v", err)
	}
	if len(loaded) != len(rois) {
		t.Fatalf("expected %d rois, got %d", len(rois), len(loaded))
	}

	for i, r := range loaded {
		if r.TypeName() != rois[i].TypeName() {
			t.Errorf("roi %d: expected type %s, got %s", i, rois[i].TypeName(), r.TypeName())
		}
		if r.Bounds() != rois[i].Bounds() {
			t.Errorf("roi %d: expected bounds %+v, got %+v", i, rois[i].Bounds(), r.Bounds())
		}
	}
	if loaded[0].Name() != "marker" {
		t.Errorf("expected name marker, got %s", loaded[0].Name())
	}

	box, ok := loaded[5].(*Box3D)
	if !ok {
		t.Fatalf("expected Box3D, got %T", loaded[5])
	}
	if box.CloseZ() != 1 || box.FarZ() != 6 {
		t.Errorf("expected box extent [1, 6], got [%v, %v]", box.CloseZ(), box.FarZ())
	}
}

func TestROIXMLElementNames(t *testing.T) {
	var buf bytes.Buffer
	err := SaveROIs(&buf, []ROI{
		NewBox3D(geometry.NewRect(0, 0, 4, 4), 0, 2),
		NewPolygon2D(trianglePoints()),
		NewLine2D(0, 0, 1, 1),
	})
	if err != nil {
		t.Fatalf("SaveROIs failed: %v", err)
	}

	out := buf.String()
	for _, elem := range []string{"<top_left>", "<bottom_right>", "<close_z>", "<far_z>",
		"<points>", "<point>", "<pt1>", "<pt2>"} {
		if !strings.Contains(out, elem) {
			t.Errorf("expected element %s in output:\n%s", elem, out)
		}
	}
}

func TestLoadROIsUnknownType(t *testing.T) {
	doc := `<rois><roi><type>blob7d</type><name>x</name></roi></rois>`
	_, err := LoadROIs(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected error for unknown roi type")
	}
	if !strings.Contains(err.Error(), "blob7d") {
		t.Errorf("expected error naming the unknown type, got: %v", err)
	}
}

func TestSaveROIsRejectsFreeformArea(t *testing.T) {
	area := NewArea2D(filledMask(0, 0, 2, 2))
	var buf bytes.Buffer
	if err := SaveROIs(&buf, []ROI{area}); err == nil {
		t.Fatal("expected error serializing freeform area roi")
	}
}

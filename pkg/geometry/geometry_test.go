package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewport_ToCanvas(t *testing.T) {
	tests := []struct {
		name   string
		view   Viewport
		client Point
		want   Point
	}{
		{"origin offset", Viewport{Origin: Pt(50, 50), Zoom: 1}, Pt(150, 150), Pt(100, 100)},
		{"zoomed in", Viewport{Origin: Pt(50, 50), Zoom: 2}, Pt(150, 150), Pt(50, 50)},
		{"panned", Viewport{Origin: Pt(0, 0), Pan: Pt(20, -10), Zoom: 1}, Pt(100, 100), Pt(80, 110)},
		{"zero zoom treated as one", Viewport{Origin: Pt(10, 10)}, Pt(30, 40), Pt(20, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.view.ToCanvas(tt.client)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)

			back := tt.view.ToClient(got)
			assert.InDelta(t, tt.client.X, back.X, 1e-9)
			assert.InDelta(t, tt.client.Y, back.Y, 1e-9)
		})
	}
}

func TestSegment_Touches(t *testing.T) {
	s := Segment{A: Pt(0, 0), B: Pt(100, 0)}

	assert.True(t, s.Touches(Pt(50, 0), 0.5))
	assert.True(t, s.Touches(Pt(50, 0.4), 0.5))
	assert.False(t, s.Touches(Pt(50, 2), 0.5))
	assert.False(t, s.Touches(Pt(101, 0), 0.5))
	assert.True(t, s.Touches(Pt(100, 0), 0.5))

	dot := Segment{A: Pt(3, 4), B: Pt(3, 4)}
	assert.InDelta(t, 5.0, dot.DistanceTo(Pt(0, 0)), 1e-12)
}

func TestPolyline(t *testing.T) {
	assert.Nil(t, Polyline([]Point{Pt(1, 1)}))

	segs := Polyline([]Point{Pt(0, 0), Pt(10, 0), Pt(10, 10)})
	assert.Len(t, segs, 2)
	assert.Equal(t, Pt(10, 0), segs[1].A)
}

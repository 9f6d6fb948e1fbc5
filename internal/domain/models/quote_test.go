package models

import (
	"encoding/json"
	"testing"
)

func TestCoordinateMarshalsLatFirst(t *testing.T) {
	b, err := json.Marshal(Coordinate{Lat: 4.711, Lng: -74.0721})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "[4.711,-74.0721]" {
		t.Fatalf("got %s", b)
	}

	var c Coordinate
	if err := json.Unmarshal(b, &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Lat != 4.711 || c.Lng != -74.0721 {
		t.Fatalf("round trip %+v", c)
	}
}

func TestCoordinateUnmarshalRejectsBadShape(t *testing.T) {
	var c Coordinate
	if err := json.Unmarshal([]byte(`{"lat":1}`), &c); err == nil {
		t.Fatalf("expected error for non-array coordinate")
	}
}

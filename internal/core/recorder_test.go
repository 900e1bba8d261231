package core

import "testing"

func TestRecorderRecordIsIdempotentPerCoordinate(t *testing.T) {
	r := NewRecorder()
	r.Record("org.example", "lib", "1.0.0")
	r.Record("org.example", "lib", "1.1.0")

	m, err := r.Manifest("id", "name")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Streams) != 1 {
		t.Fatalf("expected re-recording the same coordinate to overwrite in place, got %d streams", len(m.Streams))
	}
	s, ok := m.FindStream("org.example", "lib")
	if !ok || s.Selector.Fixed != "1.1.0" {
		t.Fatalf("expected the latest recorded version 1.1.0, got %+v", s)
	}
}

func TestRecorderManifestPreservesAllCoordinates(t *testing.T) {
	r := NewRecorder()
	r.Record("org.b", "y", "2.0.0")
	r.Record("org.a", "x", "1.0.0")

	m, err := r.Manifest("id", "name")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(m.Streams))
	}
	if _, ok := m.FindStream("org.a", "x"); !ok {
		t.Error("expected org.a:x to be recorded")
	}
	if _, ok := m.FindStream("org.b", "y"); !ok {
		t.Error("expected org.b:y to be recorded")
	}
}

package models

import (
	"encoding/json"
	"testing"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("%q: got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTimeOfDayJSON(t *testing.T) {
	b, err := json.Marshal(TimeOfDay(605))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"10:05"` {
		t.Errorf("marshal: got %s", b)
	}

	var back TimeOfDay
	if err := json.Unmarshal([]byte(`"14:45"`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != 885 {
		t.Errorf("unmarshal: got %d", back)
	}
	if err := json.Unmarshal([]byte(`"nope"`), &back); err == nil {
		t.Error("expected error for bad time")
	}
}

func TestTimeOfDayScan(t *testing.T) {
	var v TimeOfDay
	if err := v.Scan([]byte("08:15")); err != nil || v != 495 {
		t.Errorf("scan bytes: %d, %v", v, err)
	}
	if err := v.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}

func TestPictureMimeType(t *testing.T) {
	if got := (Picture{ImageType: "jpg"}).MimeType(); got != "image/jpeg" {
		t.Errorf("jpg: %s", got)
	}
	if got := (Picture{ImageType: "png"}).MimeType(); got != "image/png" {
		t.Errorf("png: %s", got)
	}
}

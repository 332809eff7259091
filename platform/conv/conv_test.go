package conv

import (
	"reflect"
	"testing"
)

func TestExpandSI(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1500", 1500},
		{"1.2M", 1200000},
		{"3K", 3000},
		{"2G", 2000000000},
		{"0", 0},
	}
	for _, c := range cases {
		got, err := ExpandSI(c.in)
		if err != nil {
			t.Fatalf("ExpandSI(%q) returned error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ExpandSI(%q) = %d, want %d", c.in, got, c.want)
		}
	}
	if _, err := ExpandSI("garbage"); err == nil {
		t.Error("ExpandSI should reject non-numeric input")
	}
	if _, err := ExpandSI(""); err == nil {
		t.Error("ExpandSI should reject empty input")
	}
}

func TestSpeedMbps(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10G", 10000, true},
		{"1G", 1000, true},
		{"1000M", 1000, true},
		{"100", 100, true},
		{"N/A", 0, false},
		{"auto", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := SpeedMbps(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("SpeedMbps(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestBpsToMbps(t *testing.T) {
	if got := BpsToMbps(10000000000); got != 10000 {
		t.Errorf("BpsToMbps(10000000000) = %v, want 10000", got)
	}
}

func TestUptimeSeconds(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12:41:27", 12*3600 + 41*60 + 27},
		{"5 days, 01:22:33", 5*86400 + 1*3600 + 22*60 + 33},
		{"1 day, 2:03:04", 86400 + 2*3600 + 3*60 + 4},
		{"123456.78", 123456.78},
		{"10:05", 10*3600 + 5*60},
	}
	for _, c := range cases {
		got, err := UptimeSeconds(c.in)
		if err != nil {
			t.Fatalf("UptimeSeconds(%q) returned error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("UptimeSeconds(%q) = %v, want %v", c.in, got, c.want)
		}
	}
	if _, err := UptimeSeconds("yesterday"); err == nil {
		t.Error("UptimeSeconds should reject unparseable input")
	}
}

func TestNormalizeMAC(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"00:11:22:33:44:55", "00:11:22:33:44:55", true},
		{"00:11:22:AA:BB:CC", "00:11:22:aa:bb:cc", true},
		{"0011.2233.4455", "00:11:22:33:44:55", true},
		{"001122334455", "00:11:22:33:44:55", true},
		{"not-a-mac", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeMAC(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("NormalizeMAC(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestStripANSI(t *testing.T) {
	in := "\x1b[32m+ add line\x1b[0m"
	if got := StripANSI(in); got != "+ add line" {
		t.Errorf("StripANSI = %q", got)
	}
}

func TestSortNatural(t *testing.T) {
	names := []string{"swp10", "swp2", "eth0", "swp1", "swp1s1", "bridge"}
	SortNatural(names)
	want := []string{"bridge", "eth0", "swp1", "swp1s1", "swp2", "swp10"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("SortNatural = %v, want %v", names, want)
	}
}

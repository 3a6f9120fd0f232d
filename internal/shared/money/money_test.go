package money

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    Amount
		wantErr bool
	}{
		{in: "10.50", want: 1050},
		{in: "0.01", want: 1},
		{in: "11", want: 1100},
		{in: "50.00", want: 5000},
		{in: "10.505", wantErr: true}, // sub-cent precision
		{in: "abc", wantErr: true},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("Parse(%q): expected error, got %d", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Parse(%q) got=%d want=%d", c.in, got, c.want)
		}
	}
}

func TestString(t *testing.T) {
	if s := FromCents(1050).String(); s != "10.50" {
		t.Fatalf("String got=%q want=%q", s, "10.50")
	}
	if s := FromCents(1).String(); s != "0.01" {
		t.Fatalf("String got=%q want=%q", s, "0.01")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	out, err := json.Marshal(FromCents(1100))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != "11.00" {
		t.Fatalf("Marshal got=%s want=11.00", out)
	}

	var a Amount
	if err := json.Unmarshal([]byte(`"10.50"`), &a); err != nil {
		t.Fatalf("Unmarshal string: %v", err)
	}
	if a != 1050 {
		t.Fatalf("Unmarshal string got=%d want=1050", a)
	}
	if err := json.Unmarshal([]byte(`21.00`), &a); err != nil {
		t.Fatalf("Unmarshal number: %v", err)
	}
	if a != 2100 {
		t.Fatalf("Unmarshal number got=%d want=2100", a)
	}
	if err := json.Unmarshal([]byte(`10.005`), &a); err == nil {
		t.Fatal("Unmarshal accepted sub-cent precision")
	}
}

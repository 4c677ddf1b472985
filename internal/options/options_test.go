package options

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fp(v float64) *float64 { return &v }

func ip(v int64) *int64 { return &v }

func chain(strikes ...float64) []Contract {
	cs := make([]Contract, 0, len(strikes))
	for _, s := range strikes {
		cs = append(cs, Contract{Strike: s})
	}
	return cs
}

func TestNearest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		strikes   []float64
		want      float64
		wantPick  float64
		wantExact bool
	}{
		{
			name:      "exact match",
			strikes:   []float64{165, 170, 175},
			want:      170,
			wantPick:  170,
			wantExact: true,
		},
		{
			name:     "nearest below",
			strikes:  []float64{165, 170, 175},
			want:     171,
			wantPick: 170,
		},
		{
			name:     "nearest above",
			strikes:  []float64{165, 170, 175},
			want:     174,
			wantPick: 175,
		},
		{
			name:     "equal distance picks the lower strike",
			strikes:  []float64{165, 170, 175},
			want:     172.5,
			wantPick: 170,
		},
		{
			name:     "lower tie wins regardless of order",
			strikes:  []float64{175, 165, 170},
			want:     172.5,
			wantPick: 170,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, exact, ok := Nearest(chain(tt.strikes...), tt.want)
			if !ok {
				t.Fatal("Nearest reported no contracts")
			}
			if c.Strike != tt.wantPick {
				t.Errorf("Nearest picked strike %v, want %v", c.Strike, tt.wantPick)
			}
			if exact != tt.wantExact {
				t.Errorf("exact = %v, want %v", exact, tt.wantExact)
			}
		})
	}
}

func TestNearestEmpty(t *testing.T) {
	t.Parallel()
	if _, _, ok := Nearest(nil, 100); ok {
		t.Error("Nearest(nil) reported ok")
	}
}

func TestTopByOpenInterest(t *testing.T) {
	t.Parallel()

	cs := []Contract{
		{Strike: 165, OpenInterest: ip(50)},
		{Strike: 170, OpenInterest: ip(900)},
		{Strike: 175}, // no open interest reported
		{Strike: 180, OpenInterest: ip(300)},
	}
	got := TopByOpenInterest(cs, 2)

	want := []Contract{
		{Strike: 170, OpenInterest: ip(900)},
		{Strike: 180, OpenInterest: ip(300)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TopByOpenInterest mismatch (-want +got):\n%s", diff)
	}
	if cs[0].Strike != 165 {
		t.Error("input slice was reordered")
	}
}

func TestContractLine(t *testing.T) {
	t.Parallel()

	c := Contract{
		Strike:       170.5,
		Bid:          fp(1.2),
		Ask:          fp(1.3),
		LastPrice:    fp(1.25),
		OpenInterest: ip(1500),
	}
	got := c.Line()
	want := "Strike 170.5: Bid 1.2 Ask 1.3 Last 1.25 OI 1500 Vol -"
	if got != want {
		t.Errorf("Line() = %q, want %q", got, want)
	}
}

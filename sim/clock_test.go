package sim

import "testing"

func TestClockStartsAtSevenAM(t *testing.T) {
	c := NewClock()
	st := c.At(0)
	if st.Hour != 7 || st.Minute != 0 {
		t.Fatalf("At(0) = %02d:%02d, want 07:00", st.Hour, st.Minute)
	}
	if st.Period != PeriodMorningRush {
		t.Fatalf("Period at hour 7 = %v, want %v", st.Period, PeriodMorningRush)
	}
}

func TestClockAdvancesOneHourPerRealMinute(t *testing.T) {
	c := NewClock()
	st := c.At(3 * 60) // 3 real minutes
	if st.Hour != 10 {
		t.Fatalf("At(3 min) hour = %d, want 10", st.Hour)
	}
	if st.Period != PeriodMidday {
		t.Fatalf("Period at hour 10 = %v, want %v", st.Period, PeriodMidday)
	}
}

func TestClockReachesNightAfterThirteenMinutes(t *testing.T) {
	c := NewClock()
	st := c.At(13 * 60) // 13 real minutes -> hour 20
	if st.Hour != 20 {
		t.Fatalf("At(13 min) hour = %d, want 20", st.Hour)
	}
	if st.Period != PeriodNight {
		t.Fatalf("Period at hour 20 = %v, want %v", st.Period, PeriodNight)
	}
}

func TestClockWrap24Boundary(t *testing.T) {
	c := NewClock()
	st := c.At(17 * 60) // 7 + 17 = 24 -> wraps to 0
	if st.Hour != 0 {
		t.Fatalf("At(17 min) hour = %d, want 0 (wrapped)", st.Hour)
	}
}

func TestPeriodForBoundaries(t *testing.T) {
	cases := []struct {
		hour int
		want Period
	}{
		{7, PeriodMorningRush}, {9, PeriodMorningRush},
		{10, PeriodMidday}, {16, PeriodMidday},
		{17, PeriodEveningRush}, {19, PeriodEveningRush},
		{20, PeriodNight}, {6, PeriodNight}, {0, PeriodNight},
	}
	for _, c := range cases {
		if got := periodFor(c.hour); got != c.want {
			t.Errorf("periodFor(%d) = %v, want %v", c.hour, got, c.want)
		}
	}
}

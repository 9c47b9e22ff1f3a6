package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aureum/expense-planner-go/internal/domain"
)

func TestParseLocalDate(t *testing.T) {
	d, err := domain.ParseLocalDate("2026-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year != 2026 || d.Month != time.March || d.Day != 15 {
		t.Errorf("got %+v", d)
	}

	if _, err := domain.ParseLocalDate("15/03/2026"); err == nil {
		t.Error("expected error for non ISO input")
	}
	if _, err := domain.ParseLocalDate("2026-02-30"); err == nil {
		t.Error("expected error for impossible day")
	}
}

func TestDateOfUsesWallClockDay(t *testing.T) {
	// The calendar day must follow the wall clock, not UTC.
	plus14 := time.FixedZone("UTC+14", 14*3600)
	minus12 := time.FixedZone("UTC-12", -12*3600)

	// 00:30 on March 15 in UTC+14 is 10:30 on March 14 UTC.
	early := time.Date(2026, 3, 15, 0, 30, 0, 0, plus14)
	if got := domain.DateOf(early); got.String() != "2026-03-15" {
		t.Errorf("UTC+14 after midnight: got %s", got)
	}
	if got := domain.DateOf(early.UTC()); got.String() != "2026-03-14" {
		t.Errorf("sanity: UTC view of the same instant should be March 14, got %s", got)
	}

	// 23:30 on March 15 in UTC-12 is 11:30 on March 16 UTC.
	late := time.Date(2026, 3, 15, 23, 30, 0, 0, minus12)
	if got := domain.DateOf(late); got.String() != "2026-03-15" {
		t.Errorf("UTC-12 late evening: got %s", got)
	}
	if got := domain.DateOf(late.UTC()); got.String() != "2026-03-16" {
		t.Errorf("sanity: UTC view of the same instant should be March 16, got %s", got)
	}
}

func TestLocalDateOrdering(t *testing.T) {
	a, _ := domain.ParseLocalDate("2026-03-15")
	b, _ := domain.ParseLocalDate("2026-03-16")
	c, _ := domain.ParseLocalDate("2027-01-01")

	if !a.Before(b) || !b.Before(c) {
		t.Error("Before broken")
	}
	if !c.After(a) {
		t.Error("After broken")
	}
	if !a.Equal(a) || a.Equal(b) {
		t.Error("Equal broken")
	}
}

func TestLocalDateAddDaysNormalizes(t *testing.T) {
	d, _ := domain.ParseLocalDate("2026-12-31")
	if got := d.AddDays(1); got.String() != "2027-01-01" {
		t.Errorf("year rollover: got %s", got)
	}
	leap, _ := domain.ParseLocalDate("2028-02-28")
	if got := leap.AddDays(1); got.String() != "2028-02-29" {
		t.Errorf("leap day: got %s", got)
	}
}

func TestLocalDateJSONRoundtrip(t *testing.T) {
	d, _ := domain.ParseLocalDate("2026-03-15")
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2026-03-15"` {
		t.Errorf("got %s", b)
	}

	var back domain.LocalDate
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("roundtrip mismatch: %v != %v", back, d)
	}
}

func TestLocalDateUnmarshalAcceptsTimestamps(t *testing.T) {
	var d domain.LocalDate
	if err := json.Unmarshal([]byte(`"2026-03-15T23:45:00Z"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.String() != "2026-03-15" {
		t.Errorf("date part must be taken literally, got %s", d)
	}
}

func TestCategoryNameDecoding(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`"Transporte"`, "Transporte"},
		{`"  Salud  "`, "Salud"},
		{`{"name": "Compras"}`, "Compras"},
		{`{"nombre": "Vivienda"}`, "Vivienda"},
		{`{"id": 3}`, ""},
		{`null`, ""},
		{`42`, ""},
	}
	for _, tc := range cases {
		var c domain.CategoryName
		if err := json.Unmarshal([]byte(tc.in), &c); err != nil {
			t.Errorf("%s: unexpected error %v", tc.in, err)
			continue
		}
		if c.String() != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.in, tc.want, c)
		}
	}
}

func TestPlanStateTerminal(t *testing.T) {
	if domain.PlanPending.Terminal() {
		t.Error("pending is not terminal")
	}
	if !domain.PlanExecuted.Terminal() || !domain.PlanCancelled.Terminal() {
		t.Error("executed and cancelled are terminal")
	}
}

func TestMoneyConversion(t *testing.T) {
	if domain.ToCents(10.005) != 1001 {
		t.Errorf("half away from zero: got %d", domain.ToCents(10.005))
	}
	if domain.ToCents(0.1)+domain.ToCents(0.2) != 30 {
		t.Error("cents addition must be exact")
	}
	if domain.FromCents(30) != 0.3 {
		t.Errorf("got %v", domain.FromCents(30))
	}
}

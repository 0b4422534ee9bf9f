package config

import (
	"net/netip"
	"testing"
)

func TestParseAllowedIPsEmptyAllowsAll(t *testing.T) {
	prefixes, err := parseAllowedIPs("")
	if err != nil {
		t.Fatalf("parseAllowedIPs(\"\") error = %v", err)
	}
	if len(prefixes) != 2 {
		t.Fatalf("prefixes = %d, want 2 (v4 + v6 catch-all)", len(prefixes))
	}
	if !prefixes[0].Contains(netip.MustParseAddr("8.8.8.8")) {
		t.Error("empty list must allow any IPv4")
	}
	if !prefixes[1].Contains(netip.MustParseAddr("2001:db8::1")) {
		t.Error("empty list must allow any IPv6")
	}
}

func TestParseAllowedIPsList(t *testing.T) {
	prefixes, err := parseAllowedIPs("163.180.0.0/16, 10.0.0.0/8")
	if err != nil {
		t.Fatalf("parseAllowedIPs() error = %v", err)
	}
	if len(prefixes) != 2 {
		t.Fatalf("prefixes = %d, want 2", len(prefixes))
	}
	if !prefixes[0].Contains(netip.MustParseAddr("163.180.1.1")) {
		t.Error("campus range missing")
	}
}

func TestParseAllowedIPsInvalid(t *testing.T) {
	if _, err := parseAllowedIPs("not-a-cidr"); err == nil {
		t.Fatal("invalid CIDR must be rejected")
	}
}

func TestDefaultTeamsRoster(t *testing.T) {
	teams := DefaultTeams()
	if len(teams) != 11 {
		t.Fatalf("roster size = %d, want 11", len(teams))
	}
	for _, team := range teams {
		if team.DepartmentBudget != team.OriginalDepartmentBudget {
			t.Errorf("%s: department current %d != original %d", team.Name, team.DepartmentBudget, team.OriginalDepartmentBudget)
		}
		if team.StudentBudget != 500000 {
			t.Errorf("%s: student budget = %d, want 500000", team.Name, team.StudentBudget)
		}
		if team.DepartmentBudget != 600000 && team.DepartmentBudget != 700000 {
			t.Errorf("%s: department budget = %d", team.Name, team.DepartmentBudget)
		}
	}
}

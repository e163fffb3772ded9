package main

import (
	"testing"

	"github.com/JimmysRanch/126-sub001/internal/config"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	if err := validateSecurityConfig(config.Config{AuthSecret: "short", AllowedOrigin: "https://salon.example"}); err == nil {
		t.Fatalf("expected short secret to be rejected")
	}
	if err := validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef", AllowedOrigin: "*"}); err == nil {
		t.Fatalf("expected wildcard origin to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef", AllowedOrigin: "https://salon.example"})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestCostParamsFollowProfile(t *testing.T) {
	profile := config.DefaultProfile()
	profile.COGSRate = 0.2
	profile.CardFeeFixedCents = 25

	params := costParams(profile)
	if params.COGSRate != 0.2 || params.CardFeeFixedCents != 25 || params.StaffHoursPerDay != 8 {
		t.Fatalf("unexpected cost params %+v", params)
	}
}

package analytics

import (
	"fmt"
	"strings"
	"time"
)

const (
	ageBandUnknown = "unknown"
	genderOther    = "other"
)

var ageBands = [][2]int{{18, 24}, {25, 34}, {35, 44}, {45, 54}, {55, 64}}

// AgeOn returns completed years between dob and today
func AgeOn(dob, today time.Time) int {
	years := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		years--
	}
	return years
}

// AgeBand buckets an age; a nil age is "unknown"
func AgeBand(age *int) string {
	if age == nil {
		return ageBandUnknown
	}
	if *age < 18 {
		return "under_18"
	}
	for _, band := range ageBands {
		if *age >= band[0] && *age <= band[1] {
			return fmt.Sprintf("%d_%d", band[0], band[1])
		}
	}
	return "65_plus"
}

func genderKey(gender *string) string {
	if gender == nil {
		return genderOther
	}
	g := strings.ToLower(strings.TrimSpace(*gender))
	if g == "" {
		return genderOther
	}
	return g
}

// breakdown counts members per age band and per gender
func breakdown(profiles []MemberProfile, today time.Time) (bands, genders map[string]int64) {
	bands = map[string]int64{}
	genders = map[string]int64{}
	for _, p := range profiles {
		var age *int
		if p.DOB != nil {
			a := AgeOn(*p.DOB, today)
			age = &a
		}
		bands[AgeBand(age)]++
		genders[genderKey(p.Gender)]++
	}
	return bands, genders
}

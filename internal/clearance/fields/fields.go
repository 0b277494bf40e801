// Package fields maps a clearance submission onto the placeholder
// replacements its document template expects. One pure mapper per clearance
// type; placeholder names and casing must match the templates exactly, so
// they are never normalized here.
package fields

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"lingkod/internal/clearance/models"
	regmodels "lingkod/internal/registration/models"
	"lingkod/pkg/textutil"
)

const (
	dateLayout = "January 2, 2006"
	timeLayout = "03:04 PM"
)

// Map builds the template replacements for a submission. resident may be
// nil; name parts then come from parsing the free-form submission name.
func Map(sub *models.Submission, resident *regmodels.Resident, now time.Time) map[string]string {
	name := nameParts(sub, resident)

	switch sub.ClearanceType {
	case models.TypeBarangay:
		return barangayFields(sub, resident, name, now)
	case models.TypeBusiness:
		return businessFields(sub, resident, name, now)
	case models.TypeBlotter:
		return blotterFields(sub, resident, now)
	case models.TypeFacility:
		return facilityFields(sub, resident, now)
	case models.TypeGoodMoral:
		return goodMoralFields(sub, resident, name, now)
	case models.TypeIndigency:
		return indigencyFields(sub, resident, name, now)
	case models.TypeResidency:
		return residencyFields(sub, resident, name, now)
	case models.TypeLuntian:
		return luntianFields(sub, now)
	case models.TypeCSOAccreditation:
		return csoFields(sub)
	case models.TypeBarangayID:
		return barangayIDFields(sub, resident)
	}
	return map[string]string{}
}

func nameParts(sub *models.Submission, resident *regmodels.Resident) textutil.NameParts {
	if resident != nil {
		return textutil.NameParts{
			First:  resident.FirstName,
			Middle: resident.MiddleName,
			Last:   resident.LastName,
			Suffix: resident.Suffix,
		}
	}
	return textutil.ParseFullName(sub.Name)
}

func residentGender(r *regmodels.Resident) string {
	if r == nil {
		return ""
	}
	return r.Gender
}

func residentCivilStatus(r *regmodels.Resident) string {
	if r == nil || r.CivilStatus == "" {
		return ""
	}
	return textutil.SentenceCase(r.CivilStatus)
}

func residentRawCivilStatus(r *regmodels.Resident) string {
	if r == nil {
		return ""
	}
	return r.CivilStatus
}

func residentCitizenship(r *regmodels.Resident) string {
	if r == nil {
		return ""
	}
	return r.Citizenship
}

func residentPurok(r *regmodels.Resident) string {
	if r == nil {
		return ""
	}
	return r.Purok
}

func residentAge(r *regmodels.Resident) string {
	if r == nil || r.Age == 0 {
		return ""
	}
	return fmt.Sprintf("%d", r.Age)
}

func residentBirthdate(r *regmodels.Resident) string {
	if r == nil || r.Birthdate.IsZero() {
		return ""
	}
	return r.Birthdate.Format(dateLayout)
}

func barangayFields(sub *models.Submission, r *regmodels.Resident, name textutil.NameParts, now time.Time) map[string]string {
	return map[string]string{
		"LastName":      strings.ToUpper(name.Last),
		"FirstName":     strings.ToUpper(name.First),
		"MiddleName":    strings.ToUpper(name.Middle),
		"Suffix":        strings.ToUpper(name.Suffix),
		"Purpose":       sub.Field("purpose"),
		"DateIssued":    now.Format(dateLayout),
		"Sex":           residentGender(r),
		"MaritalStatus": residentCivilStatus(r),
		"Citizenship":   residentCitizenship(r),
		"Address":       residentPurok(r),
		"Age":           residentAge(r),
		"Birthdate":     residentBirthdate(r),
	}
}

func businessFields(sub *models.Submission, r *regmodels.Resident, name textutil.NameParts, now time.Time) map[string]string {
	return map[string]string{
		"FirstName":   strings.ToUpper(name.First),
		"MiddleName":  strings.ToUpper(name.Middle),
		"LastName":    strings.ToUpper(name.Last),
		"Suffix":      strings.ToUpper(name.Suffix),
		"Occupation":  sub.Field("occupation"),
		"Contact":     sub.Field("contact"),
		"Business":    sub.FirstField("businessName", "business"),
		"Address":     sub.FirstField("businessAddress", "address"),
		"Purok":       residentPurok(r),
		"Nationality": residentCitizenship(r),
		"Civil":       residentCivilStatus(r),
		"DateIssued":  now.Format(dateLayout),
	}
}

func blotterFields(sub *models.Submission, r *regmodels.Resident, now time.Time) map[string]string {
	civil := sub.Field("civilStatus")
	if civil != "" {
		civil = textutil.SentenceCase(civil)
	} else {
		civil = residentCivilStatus(r)
	}
	respondentCivil := sub.Field("respondentCivil")
	if respondentCivil != "" {
		respondentCivil = textutil.SentenceCase(respondentCivil)
	}

	address := sub.Field("address")
	if address == "" {
		address = residentPurok(r)
	}
	age := sub.Field("age")
	if age == "" {
		age = residentAge(r)
	}

	return map[string]string{
		"date":                 now.Format(dateLayout),
		"time":                 now.Format(timeLayout),
		"name":                 sub.Name,
		"address":              address,
		"contact_no":           sub.Field("contact"),
		"age":                  age,
		"civil_status":         civil,
		"name2":                sub.Field("respondentName"),
		"address2":             sub.Field("respondentAddress"),
		"age2":                 sub.Field("respondentAge"),
		"civil_status2":        respondentCivil,
		"incident":             sub.FirstField("incidentType", "incident"),
		"incident_description": sub.Field("incidentDescription"),
		"incident_date":        sub.Field("incidentDate"),
		"incident_place":       sub.FirstField("incidentLocation", "incidentPlace"),
		"incident_time":        sub.Field("incidentTime"),
	}
}

var facilityRatePattern = regexp.MustCompile(`\((\d+)\s*php/hour\)`)

const defaultFacilityRate = 500

// FacilityFee derives the rental amount from the booked time range and the
// facility label. Partial hours bill as full hours (1:30 is 2 hours, 2:01 is
// 3). The hourly rate is read from the label, e.g. "Basketball Court
// Nighttime (700 php/hour)", defaulting to 500 when absent. Returns "" when
// the range cannot be priced.
func FacilityFee(startTime, endTime, facility string) string {
	if startTime == "" || endTime == "" || facility == "" {
		return ""
	}
	start, okStart := parseMinutes(startTime)
	end, okEnd := parseMinutes(endTime)
	if !okStart || !okEnd || end <= start {
		return ""
	}

	hours := (end - start + 59) / 60

	rate := defaultFacilityRate
	if m := facilityRatePattern.FindStringSubmatch(facility); m != nil {
		fmt.Sscanf(m[1], "%d", &rate)
	}

	return fmt.Sprintf("₱%.2f", float64(rate*hours))
}

func parseMinutes(hhmm string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func facilityFields(sub *models.Submission, r *regmodels.Resident, now time.Time) map[string]string {
	address := residentPurok(r)
	if address == "" {
		address = sub.Field("address")
	}

	return map[string]string{
		// template carries an <or> box filled in by hand at the office
		"or":           "",
		"date":         now.Format(dateLayout),
		"time":         now.Format(timeLayout),
		"month":        now.Format("January"),
		"day":          fmt.Sprintf("%d", now.Day()),
		"year":         fmt.Sprintf("%d", now.Year()),
		"name":         strings.ToUpper(sub.Name),
		"address":      address,
		"contact_no":   sub.Field("contact"),
		"civil_status": residentCivilStatus(r),
		"age":          residentAge(r),
		"facility":     sub.Field("facility"),
		"purpose":      sub.Field("purpose"),
		"usedate":      sub.FirstField("eventDate", "date"),
		"start":        sub.Field("startTime"),
		"end":          sub.Field("endTime"),
		"number":       sub.Field("participants"),
		"equipment":    sub.Field("equipment"),
		"amount":       FacilityFee(sub.Field("startTime"), sub.Field("endTime"), sub.Field("facility")),
	}
}

func goodMoralFields(sub *models.Submission, r *regmodels.Resident, name textutil.NameParts, now time.Time) map[string]string {
	return map[string]string{
		"first":     strings.ToUpper(name.First),
		"Middle":    strings.ToUpper(name.Middle),
		"Last":      strings.ToUpper(name.Last),
		"civil":     residentRawCivilStatus(r),
		"address":   residentPurok(r),
		"day":       textutil.Ordinal(now.Day()),
		"month":     now.Format("January"),
		"year":      fmt.Sprintf("%d", now.Year()),
		"pay_month": now.Format("January"),
		"pay_day":   fmt.Sprintf("%02d", now.Day()),
		"pay_year":  fmt.Sprintf("%d", now.Year()),
	}
}

func indigencyFields(sub *models.Submission, r *regmodels.Resident, name textutil.NameParts, now time.Time) map[string]string {
	return map[string]string{
		"first":   strings.ToUpper(name.First),
		"Middle":  strings.ToUpper(name.Middle),
		"Last":    strings.ToUpper(name.Last),
		"age":     residentAge(r),
		"civil":   residentRawCivilStatus(r),
		"Purok":   residentPurok(r),
		"day":     textutil.Ordinal(now.Day()),
		"month":   now.Format("January"),
		"year":    fmt.Sprintf("%d", now.Year()),
		"purpose": sub.Field("purpose"),
	}
}

func residencyFields(sub *models.Submission, r *regmodels.Resident, name textutil.NameParts, now time.Time) map[string]string {
	return map[string]string{
		"first":        strings.ToUpper(name.First),
		"Middle":       strings.ToUpper(name.Middle),
		"Last":         strings.ToUpper(name.Last),
		"civil":        residentRawCivilStatus(r),
		"address":      residentPurok(r),
		"start":        sub.Field("yearResided"),
		"day":          textutil.Ordinal(now.Day()),
		"month":        now.Format("January"),
		"year":         fmt.Sprintf("%d", now.Year()),
		"issued_month": now.Format("January"),
		"issued_day":   fmt.Sprintf("%d", now.Day()),
		"issued_year":  fmt.Sprintf("%d", now.Year()),
	}
}

func luntianFields(sub *models.Submission, now time.Time) map[string]string {
	requestDate := now.Format(dateLayout)
	if !sub.CreatedAt.IsZero() {
		requestDate = sub.CreatedAt.Format(dateLayout)
	}

	requested := sub.Field("requestedItems")
	return map[string]string{
		"date":          requestDate,
		"dateprinted":   now.Format(dateLayout),
		"name":          sub.Name,
		"items":         ItemsList(requested, "•", sub.FormData),
		"releaseditems": ItemsList(requested, "□", sub.FormData),
		"purpose":       sub.Field("purposeOfRequest"),
	}
}

// ItemsList renders a comma-separated item selection as one bulleted line
// per item. "Others" is substituted with the free-text details, and a
// vegetable-seeds item gets its chosen seed list appended in parentheses,
// with its own "Others" substitution.
func ItemsList(requestedItems, bulletChar string, formData map[string]string) string {
	if requestedItems == "" {
		return ""
	}

	vegetableSeeds := formData["vegetableSeeds"]
	vegetableSeedsDetails := formData["vegetableSeedsDetails"]
	requestedItemsDetails := formData["requestedItemsDetails"]

	var regular, others []string
	for _, item := range strings.Split(requestedItems, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		lower := strings.ToLower(item)
		switch {
		case lower == "others":
			if requestedItemsDetails != "" {
				others = append(others, requestedItemsDetails)
			}
		case strings.Contains(lower, "vegetable") && strings.Contains(lower, "seed") && vegetableSeeds != "":
			seeds := vegetableSeeds
			if strings.Contains(seeds, "Others") && vegetableSeedsDetails != "" {
				seeds = replaceAllFold(seeds, "others", vegetableSeedsDetails)
			}
			regular = append(regular, fmt.Sprintf("%s (%s)", item, seeds))
		default:
			regular = append(regular, item)
		}
	}

	all := append(regular, others...)
	lines := make([]string, len(all))
	for i, item := range all {
		lines[i] = bulletChar + " " + item
	}
	return strings.Join(lines, "\n")
}

// replaceAllFold replaces every case-insensitive occurrence of pattern.
func replaceAllFold(s, pattern, replacement string) string {
	var b strings.Builder
	lower := strings.ToLower(s)
	pattern = strings.ToLower(pattern)
	for {
		i := strings.Index(lower, pattern)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(replacement)
		s = s[i+len(pattern):]
		lower = lower[i+len(pattern):]
	}
}

// csoSectionLines is the fixed line count sections VII and VIII share on the
// accreditation form; the remainder is padded blank.
const csoSectionLines = 16

func splitListedItems(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func bulleted(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return strings.Join(lines, "\n")
}

func csoFields(sub *models.Submission) map[string]string {
	regDate := ""
	if raw := sub.Field("registrationDate"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			regDate = t.Format(dateLayout)
		} else {
			regDate = raw
		}
	}

	advocacy := splitListedItems(sub.Field("advocacy"))
	specialBody := splitListedItems(sub.Field("specialBody"))

	blank := csoSectionLines - len(advocacy) - len(specialBody)
	if blank < 0 {
		blank = 0
	}

	return map[string]string{
		"name":      sub.Field("orgName"),
		"acronym":   sub.Field("orgAcronym"),
		"type":      sub.Field("orgType"),
		"nature":    sub.Field("orgNature"),
		"agency":    sub.Field("registeringAgency"),
		"regnumber": sub.Field("registrationNo"),
		"regdate":   regDate,
		"address":   sub.Field("officeAddress"),
		"number":    sub.Field("contact"),
		"email":     sub.Field("email"),
		"pres":      sub.Field("president"),
		"tpres":     sub.Field("presidentTenure"),
		"vice":      sub.Field("vicePresident"),
		"tvice":     sub.Field("vicePresidentTenure"),
		"sec":       sub.Field("secretary"),
		"tsec":      sub.Field("secretaryTenure"),
		"tres":      sub.Field("treasurer"),
		"ttres":     sub.Field("treasurerTenure"),
		"aud":       sub.Field("auditor"),
		"taud":      sub.Field("auditorTenure"),
		"members":   sub.Field("totalMembers"),
		"residing":  sub.Field("barangayMembers"),
		"vii":       bulleted(advocacy),
		"viii":      bulleted(specialBody) + strings.Repeat("\n", blank),
		// documentary requirements stay blank for manual completion
		"ix": "",
	}
}

func barangayIDFields(sub *models.Submission, r *regmodels.Resident) map[string]string {
	birthday := residentBirthdate(r)
	if birthday == "" {
		birthday = sub.Field("birthday")
	}
	purok := residentPurok(r)
	if purok == "" {
		purok = sub.Field("purok")
	}
	sex := residentGender(r)
	if sex == "" {
		sex = sub.Field("sex")
	}
	citizenship := residentCitizenship(r)
	if citizenship == "" {
		citizenship = sub.Field("citizenship")
	}
	age := residentAge(r)
	if age == "" {
		age = sub.Field("age")
	}

	return map[string]string{
		"name":          strings.ToUpper(sub.Name),
		"contactno":     sub.Field("contact_no"),
		"contactnumber": sub.Field("contact_no"),
		"purok":         purok,
		"birthday":      birthday,
		"sex":           sex,
		"citizenship":   citizenship,
		"blood":         sub.Field("blood_type"),
		"bloodtype":     sub.Field("blood_type"),
		"sss":           sub.Field("sss_no"),
		"tin":           sub.Field("tin_no"),
		"passport":      sub.Field("passport_no"),
		"pasport":       sub.Field("passport_no"),
		"other":         sub.Field("other_id_no"),
		"precinct":      sub.Field("precinct_no"),
		"occupation":    sub.Field("occupation"),
		"contactperson": sub.Field("contact_person"),
		"cpnumber":      sub.FirstField("cp_number", "cpnumber"),
		"validity":      sub.Field("id_validity"),
		"age":           age,
	}
}

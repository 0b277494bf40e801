package fields

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingkod/internal/clearance/models"
	regmodels "lingkod/internal/registration/models"
)

var testNow = time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)

func submission(t models.Type, name string, form map[string]string) *models.Submission {
	if form == nil {
		form = map[string]string{}
	}
	return &models.Submission{
		ClearanceType: t,
		Name:          name,
		FormData:      form,
		CreatedAt:     time.Date(2025, 5, 28, 10, 0, 0, 0, time.UTC),
	}
}

func resident() *regmodels.Resident {
	return &regmodels.Resident{
		FirstName:   "Juan",
		MiddleName:  "Peña",
		LastName:    "Dela Cruz",
		Suffix:      "Jr.",
		Birthdate:   time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC),
		Age:         35,
		Gender:      "Male",
		CivilStatus: "MARRIED",
		Citizenship: "Filipino",
		Purok:       "Purok 3",
	}
}

func TestFacilityFee(t *testing.T) {
	cases := []struct {
		name     string
		start    string
		end      string
		facility string
		want     string
	}{
		{"partial hour rounds up", "13:30", "15:01", "Basketball Court Daytime (500 php/hour)", "₱1000.00"},
		{"exact hours", "09:00", "12:00", "Basketball Court Daytime (500 php/hour)", "₱1500.00"},
		{"nighttime rate from label", "18:00", "20:00", "Basketball Court Nighttime (700 php/hour)", "₱1400.00"},
		{"default rate without label", "10:00", "11:00", "Covered Court", "₱500.00"},
		{"missing start", "", "12:00", "Covered Court", ""},
		{"missing facility", "09:00", "12:00", "", ""},
		{"end before start", "12:00", "09:00", "Covered Court", ""},
		{"unparseable time", "noonish", "12:00", "Covered Court", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FacilityFee(tc.start, tc.end, tc.facility))
		})
	}
}

func TestBarangayFields(t *testing.T) {
	sub := submission(models.TypeBarangay, "Juan Dela Cruz", map[string]string{"purpose": "Employment"})
	got := Map(sub, resident(), testNow)

	assert.Equal(t, "DELA CRUZ", got["LastName"])
	assert.Equal(t, "JUAN", got["FirstName"])
	assert.Equal(t, "PEÑA", got["MiddleName"])
	assert.Equal(t, "Employment", got["Purpose"])
	assert.Equal(t, "June 1, 2025", got["DateIssued"])
	assert.Equal(t, "Married", got["MaritalStatus"], "civil status sentence-cased")
	assert.Equal(t, "35", got["Age"])
	assert.Equal(t, "March 15, 1990", got["Birthdate"])
}

func TestBarangayFieldsWithoutResident(t *testing.T) {
	sub := submission(models.TypeBarangay, "Maria Clara Santos", nil)
	got := Map(sub, nil, testNow)

	assert.Equal(t, "MARIA", got["FirstName"])
	assert.Equal(t, "CLARA", got["MiddleName"])
	assert.Equal(t, "SANTOS", got["LastName"])
	assert.Empty(t, got["Age"])
	assert.Empty(t, got["Birthdate"])
}

func TestBusinessFieldsPrefersSpecificKeys(t *testing.T) {
	sub := submission(models.TypeBusiness, "Juan Dela Cruz", map[string]string{
		"businessName":    "JDC Sari-Sari Store",
		"businessAddress": "Purok 3",
		"contact":         "09171234567",
	})
	got := Map(sub, resident(), testNow)

	assert.Equal(t, "JDC Sari-Sari Store", got["Business"])
	assert.Equal(t, "Purok 3", got["Address"])

	sub.FormData = map[string]string{"business": "Fallback Store", "address": "Elsewhere"}
	got = Map(sub, resident(), testNow)
	assert.Equal(t, "Fallback Store", got["Business"])
	assert.Equal(t, "Elsewhere", got["Address"])
}

func TestBlotterFieldsFallBackToResident(t *testing.T) {
	sub := submission(models.TypeBlotter, "Juan Dela Cruz", map[string]string{
		"respondentName":  "Pedro Penduko",
		"respondentCivil": "SINGLE",
		"incidentType":    "Noise complaint",
	})
	got := Map(sub, resident(), testNow)

	assert.Equal(t, "Purok 3", got["address"], "address falls back to resident purok")
	assert.Equal(t, "35", got["age"])
	assert.Equal(t, "Married", got["civil_status"])
	assert.Equal(t, "Single", got["civil_status2"])
	assert.Equal(t, "Noise complaint", got["incident"])
	assert.Equal(t, "02:30 PM", got["time"])
}

func TestGoodMoralFieldsUsesOrdinalDay(t *testing.T) {
	got := Map(submission(models.TypeGoodMoral, "Juan Dela Cruz", nil), resident(), testNow)

	assert.Equal(t, "JUAN", got["first"])
	assert.Equal(t, "PEÑA", got["Middle"])
	assert.Equal(t, "DELA CRUZ", got["Last"])
	assert.Equal(t, "MARRIED", got["civil"], "raw civil status, not sentence-cased")
	assert.Equal(t, "1st", got["day"])
	assert.Equal(t, "June", got["month"])
	assert.Equal(t, "2025", got["year"])
	assert.Equal(t, "01", got["pay_day"], "pay day is zero-padded")
}

func TestIndigencyFieldsCasing(t *testing.T) {
	sub := submission(models.TypeIndigency, "Juan Dela Cruz", map[string]string{"purpose": "Medical assistance"})
	got := Map(sub, resident(), testNow)

	// placeholder names are template-exact, including mixed casing
	assert.Equal(t, "JUAN", got["first"])
	assert.Equal(t, "PEÑA", got["Middle"])
	assert.Equal(t, "Purok 3", got["Purok"])
	assert.Equal(t, "Medical assistance", got["purpose"])
	_, hasLowerPurok := got["purok"]
	assert.False(t, hasLowerPurok)
}

func TestLuntianItemsList(t *testing.T) {
	form := map[string]string{
		"requestedItems":        "Seedlings, Vegetable Seeds, Others",
		"vegetableSeeds":        "Tomato, Others",
		"vegetableSeedsDetails": "Okra",
		"requestedItemsDetails": "Garden tools",
		"purposeOfRequest":      "Community garden",
	}
	sub := submission(models.TypeLuntian, "Juan Dela Cruz", form)
	got := Map(sub, nil, testNow)

	wantItems := strings.Join([]string{
		"• Seedlings",
		"• Vegetable Seeds (Tomato, Okra)",
		"• Garden tools",
	}, "\n")
	assert.Equal(t, wantItems, got["items"])
	assert.True(t, strings.HasPrefix(got["releaseditems"], "□ Seedlings"), "released list uses checkbox bullets")
	assert.Equal(t, "May 28, 2025", got["date"], "request date from submission time")
	assert.Equal(t, "June 1, 2025", got["dateprinted"])
}

func TestItemsListEdgeCases(t *testing.T) {
	assert.Empty(t, ItemsList("", "•", map[string]string{}))

	t.Run("others without details is dropped", func(t *testing.T) {
		got := ItemsList("Seedlings, Others", "•", map[string]string{})
		assert.Equal(t, "• Seedlings", got)
	})
}

func TestCSOFieldsPadsToSixteenLines(t *testing.T) {
	form := map[string]string{
		"orgName":          "Samahan ng Kabataan",
		"orgAcronym":       "SK",
		"advocacy":         "Education, Environment, Sports",
		"specialBody":      "BDC, BPOC",
		"registrationDate": "2020-01-15",
		"totalMembers":     "120",
	}
	sub := submission(models.TypeCSOAccreditation, "Samahan ng Kabataan", form)
	got := Map(sub, nil, testNow)

	assert.Equal(t, "• Education\n• Environment\n• Sports", got["vii"])
	require.True(t, strings.HasPrefix(got["viii"], "• BDC\n• BPOC"))
	// 3 advocacy + 2 special body lines leave 11 blank lines of padding
	assert.Equal(t, 11, strings.Count(strings.TrimPrefix(got["viii"], "• BDC\n• BPOC"), "\n"))
	assert.Equal(t, "January 15, 2020", got["regdate"])
	assert.Equal(t, "", got["ix"])
}

func TestBarangayIDFieldsResidentOverridesForm(t *testing.T) {
	form := map[string]string{
		"contact_no": "09171234567",
		"blood_type": "O+",
		"purok":      "Purok 9",
		"sex":        "Female",
		"cp_number":  "09998887777",
	}
	sub := submission(models.TypeBarangayID, "Juan Dela Cruz Jr.", form)
	got := Map(sub, resident(), testNow)

	assert.Equal(t, "JUAN DELA CRUZ JR.", got["name"])
	assert.Equal(t, "Purok 3", got["purok"], "resident record wins over form data")
	assert.Equal(t, "Male", got["sex"])
	assert.Equal(t, "March 15, 1990", got["birthday"])
	assert.Equal(t, "O+", got["blood"])
	assert.Equal(t, got["blood"], got["bloodtype"])
	assert.Equal(t, got["passport"], got["pasport"], "template typo kept both spellings")
	assert.Equal(t, "09998887777", got["cpnumber"])
}

func TestBarangayIDFieldsFormFallback(t *testing.T) {
	form := map[string]string{"birthday": "April 1, 1999", "sex": "Female", "age": "26"}
	sub := submission(models.TypeBarangayID, "Ana Reyes", form)
	got := Map(sub, nil, testNow)

	assert.Equal(t, "April 1, 1999", got["birthday"])
	assert.Equal(t, "Female", got["sex"])
	assert.Equal(t, "26", got["age"])
}

func TestMapUnknownTypeIsEmpty(t *testing.T) {
	sub := submission(models.Type("unknown"), "X", nil)
	assert.Empty(t, Map(sub, nil, testNow))
}

package search

import (
	"testing"
	"time"

	"github.com/censo/censobot/internal/domain/patient"
)

var scoreNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func admission(record, bed, ward, abbrev, name string, admitted time.Time) *patient.Admission {
	return &patient.Admission{
		RecordNumber: record,
		Bed:          bed,
		Ward:         ward,
		WardAbbrev:   abbrev,
		PatientName:  name,
		AdmittedAt:   admitted,
	}
}

func TestScoreRecordNumberOrdering(t *testing.T) {
	q := Query{RecordNumber: "12345"}
	exact := scoreRecordNumber(q, admission("12345", "", "", "", "", scoreNow), scoreNow)
	partial := scoreRecordNumber(q, admission("8123456", "", "", "", "", scoreNow), scoreNow)
	miss := scoreRecordNumber(q, admission("99999", "", "", "", "", scoreNow), scoreNow)

	if !(exact > partial && partial > miss) {
		t.Fatalf("want exact > partial > miss, got %d, %d, %d", exact, partial, miss)
	}
	if miss != 0 {
		t.Fatalf("non-matching record should score 0, got %d", miss)
	}
}

func TestScoreBedOrdering(t *testing.T) {
	q := Query{Bed: "12a"}
	exact := scoreBed(q, admission("", "12A", "", "", "", scoreNow), scoreNow)
	partial := scoreBed(q, admission("", "112A", "", "", "", scoreNow), scoreNow)
	if !(exact > partial && partial > 0) {
		t.Fatalf("want exact > partial > 0, got %d, %d", exact, partial)
	}
}

func TestScoreWardMatchesNameOrAbbreviation(t *testing.T) {
	q := Query{Ward: "uti"}
	byAbbrev := scoreWard(q, admission("", "", "Unidade de Terapia Intensiva", "UTI", "", scoreNow), scoreNow)
	byName := scoreWard(q, admission("", "", "UTI", "", "", scoreNow), scoreNow)
	if byAbbrev != byName {
		t.Fatalf("exact abbreviation and exact name should score the same, got %d vs %d", byAbbrev, byName)
	}
	partial := scoreWard(q, admission("", "", "UTI Neonatal", "UTIN", "", scoreNow), scoreNow)
	if partial >= byAbbrev || partial == 0 {
		t.Fatalf("partial ward match should score between 0 and exact, got %d (exact %d)", partial, byAbbrev)
	}
}

func TestScoreNameTokensPerToken(t *testing.T) {
	a := admission("", "", "", "", "Maria da Silva Costa", scoreNow)
	one := scoreNameTokens(Query{NameTokens: []string{"silva"}}, a, scoreNow)
	two := scoreNameTokens(Query{NameTokens: []string{"silva", "costa"}}, a, scoreNow)
	none := scoreNameTokens(Query{NameTokens: []string{"pereira"}}, a, scoreNow)

	if none != 0 {
		t.Fatalf("no token match should score 0, got %d", none)
	}
	if two != 2*one {
		t.Fatalf("two matching tokens should score double one, got %d vs %d", two, one)
	}
}

func TestScoreNameTokensCaseInsensitive(t *testing.T) {
	a := admission("", "", "", "", "JOSE DOS SANTOS", scoreNow)
	if got := scoreNameTokens(Query{NameTokens: []string{"Santos"}}, a, scoreNow); got == 0 {
		t.Fatal("token matching should ignore case")
	}
}

func TestScoreRecencyFades(t *testing.T) {
	today := scoreRecency(Query{}, admission("", "", "", "", "", scoreNow), scoreNow)
	tenDays := scoreRecency(Query{}, admission("", "", "", "", "", scoreNow.AddDate(0, 0, -10)), scoreNow)
	ancient := scoreRecency(Query{}, admission("", "", "", "", "", scoreNow.AddDate(0, 0, -200)), scoreNow)

	if !(today > tenDays && tenDays > ancient) {
		t.Fatalf("recency boost should fade, got %d, %d, %d", today, tenDays, ancient)
	}
	if ancient != 0 {
		t.Fatalf("old admissions should get no boost, got %d", ancient)
	}
}

func TestExactRecordOutranksPartialWard(t *testing.T) {
	q := Query{RecordNumber: "12345", Ward: "clinica"}
	now := scoreNow

	exactRecord := admission("12345", "", "Pediatria", "PED", "", now.AddDate(0, 0, -2))
	partialWard := admission("77777", "", "Clinica Medica", "CM", "", now)

	if scoreOf(q, exactRecord, now) <= scoreOf(q, partialWard, now) {
		t.Fatal("exact record-number match must outrank a partial ward match regardless of recency")
	}
}

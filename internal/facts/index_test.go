package facts

import (
	"reflect"
	"testing"
)

func consolidatedRevenue(value float64) Fact {
	return Fact{
		Tag:   "us-gaap:Revenues",
		Value: value,
		Unit:  "USD",
		Start: "2024-01-01",
		End:   "2024-12-31",
	}
}

func segmentRevenue(value float64, member string) Fact {
	return Fact{
		Tag:   "us-gaap:Revenues",
		Value: value,
		Unit:  "USD",
		Start: "2024-01-01",
		End:   "2024-12-31",
		Dims:  map[string]string{"us-gaap:StatementBusinessSegmentsAxis": member},
	}
}

func TestFactYearAndPeriodType(t *testing.T) {
	duration := consolidatedRevenue(100)
	if duration.Year() != 2024 {
		t.Errorf("Year() = %d, want 2024", duration.Year())
	}
	if duration.PeriodType() != "duration" {
		t.Errorf("PeriodType() = %q, want duration", duration.PeriodType())
	}

	instant := Fact{Tag: "us-gaap:Assets", Value: 500, End: "2024-12-31"}
	if instant.Year() != 2024 {
		t.Errorf("Year() = %d, want 2024", instant.Year())
	}
	if instant.PeriodType() != "instant" {
		t.Errorf("PeriodType() = %q, want instant", instant.PeriodType())
	}

	if (Fact{Tag: "x"}).Year() != 0 {
		t.Error("fact without dates must report year 0")
	}
}

func TestIndexDeduplication(t *testing.T) {
	// filings repeat facts across presentation contexts; the last
	// occurrence wins
	idx := NewIndex([]Fact{
		consolidatedRevenue(100),
		consolidatedRevenue(250),
	})

	if idx.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", idx.Len())
	}
	got := idx.ByTag("us-gaap:Revenues")
	if len(got) != 1 || got[0].Value != 250 {
		t.Errorf("dedupe kept %+v, want the later value 250", got)
	}
}

func TestIndexYears(t *testing.T) {
	idx := NewIndex([]Fact{
		{Tag: "a", End: "2024-12-31"},
		{Tag: "b", End: "2022-12-31"},
		{Tag: "c", End: "2023-12-31"},
		{Tag: "d"}, // no date, no year
	})
	if want := []int{2022, 2023, 2024}; !reflect.DeepEqual(idx.Years(), want) {
		t.Errorf("Years() = %v, want %v", idx.Years(), want)
	}
}

func TestLookupSupersetMatch(t *testing.T) {
	twoAxes := segmentRevenue(30, "x:AutoMember")
	twoAxes.Dims["srt:ProductOrServiceAxis"] = "x:PolicyMember"

	idx := NewIndex([]Fact{
		consolidatedRevenue(100),
		segmentRevenue(40, "x:AutoMember"),
		twoAxes,
	})

	// a fact may carry extra axes beyond the required ones
	got := idx.Lookup("us-gaap:Revenues", map[string][]string{
		"us-gaap:StatementBusinessSegmentsAxis": {"x:AutoMember"},
	})
	if len(got) != 2 {
		t.Fatalf("Lookup matched %d facts, want 2", len(got))
	}

	// a required axis accepts any member in its list
	got = idx.Lookup("us-gaap:Revenues", map[string][]string{
		"us-gaap:StatementBusinessSegmentsAxis": {"x:LifeMember", "x:AutoMember"},
	})
	if len(got) != 2 {
		t.Errorf("member-list Lookup matched %d facts, want 2", len(got))
	}

	// missing axis never matches
	got = idx.Lookup("us-gaap:Revenues", map[string][]string{
		"us-gaap:UnknownAxis": {"x:AutoMember"},
	})
	if len(got) != 0 {
		t.Errorf("Lookup on absent axis matched %d facts, want 0", len(got))
	}
}

func TestLookupConsolidated(t *testing.T) {
	eliminations := segmentRevenue(5, "srt:ConsolidatedEntitiesMember")

	idx := NewIndex([]Fact{
		consolidatedRevenue(100),
		segmentRevenue(40, "x:AutoMember"),
		eliminations,
	})

	consolidated := []string{"srt:ConsolidatedEntitiesMember"}
	got := idx.LookupConsolidated("us-gaap:Revenues", consolidated)
	if len(got) != 2 {
		t.Fatalf("LookupConsolidated matched %d facts, want 2", len(got))
	}
	for _, f := range got {
		if len(f.Dims) > 0 && f.Dims["us-gaap:StatementBusinessSegmentsAxis"] == "x:AutoMember" {
			t.Error("segment slice leaked into consolidated lookup")
		}
	}

	// without configured consolidated members only dimensionless facts match
	got = idx.LookupConsolidated("us-gaap:Revenues", nil)
	if len(got) != 1 || len(got[0].Dims) != 0 {
		t.Errorf("LookupConsolidated(nil) = %+v, want only the dimensionless fact", got)
	}
}

func TestSignatureStable(t *testing.T) {
	f := Fact{
		Tag: "us-gaap:Revenues",
		Dims: map[string]string{
			"b:Axis": "b:Member",
			"a:Axis": "a:Member",
		},
	}
	want := "a:Axis=a:Member|b:Axis=b:Member"
	if got := f.Signature(); got != want {
		t.Errorf("Signature() = %q, want %q", got, want)
	}
	if (Fact{Tag: "x"}).Signature() != "" {
		t.Error("dimensionless fact must have empty signature")
	}
}

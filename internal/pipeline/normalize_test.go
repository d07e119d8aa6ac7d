package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgdir/internal"
)

func TestNormalizeFundingFallsBackWhenLinkUnresolved(t *testing.T) {
	rec := internal.RawRecord{ID: "recOrg", Fields: internal.Fields{
		"Funding & Financial Information": []any{"recNowhere"},
		"revenue":                         "5M",
	}}

	org := NewNormalizer(nil).Normalize(rec, internal.ReferenceTable{})

	require.NotNil(t, org.FundingFinancialInformation)
	assert.Equal(t, "5M", org.FundingFinancialInformation.Revenue)
	assert.Equal(t, []string{}, org.FundingFinancialInformation.FundingSources)
}

func TestNormalizeFundingProbesKeysInOrder(t *testing.T) {
	rec := internal.RawRecord{ID: "recOrg", Fields: internal.Fields{
		"funding_financial_information": []any{"recF1", "recF2"},
		"revenue":                       "ignored",
	}}
	table := internal.ReferenceTable{
		"financial": {"recF1": {"revenue": "late"}},
		"funding":   {"recF1": {"fundingSources": "grants; members", "Revenue": "2M"}},
	}

	org := NewNormalizer(nil).Normalize(rec, table)

	assert.Equal(t, "2M", org.FundingFinancialInformation.Revenue)
	assert.Equal(t, []string{"grants", "members"}, org.FundingFinancialInformation.FundingSources)
}

func TestNormalizeTokenUnresolvedUsesDefaults(t *testing.T) {
	rec := internal.RawRecord{ID: "recA", Fields: internal.Fields{
		"Token Information": []any{"recXYZ"},
	}}

	org := NewNormalizer(nil).Normalize(rec, internal.ReferenceTable{})

	require.NotNil(t, org.TokenInformation)
	assert.Equal(t, "Unknown Token", org.TokenInformation.TokenName)
	assert.Equal(t, "Ethereum", org.TokenInformation.BlockchainPlatform)
	assert.Equal(t, "Unknown", org.TokenInformation.GovernanceMechanism)
	assert.Equal(t, "", org.TokenInformation.TokenSymbol)
}

func TestNormalizeTokenAbsentWithoutLinkField(t *testing.T) {
	rec := internal.RawRecord{ID: "recA", Fields: internal.Fields{
		"token_name": "Orphan",
	}}

	org := NewNormalizer(nil).Normalize(rec, internal.ReferenceTable{})
	assert.Nil(t, org.TokenInformation)

	blob, err := json.Marshal(org)
	require.NoError(t, err)
	assert.Contains(t, string(blob), `"token_information":null`)
}

func TestNormalizeTokenEmptyLinkFallsBack(t *testing.T) {
	rec := internal.RawRecord{ID: "recA", Fields: internal.Fields{
		"token_information": []any{},
		"tokenSymbol":       "WRK",
		"Governance Model":  "One member one vote",
	}}

	org := NewNormalizer(nil).Normalize(rec, internal.ReferenceTable{})

	require.NotNil(t, org.TokenInformation)
	assert.Equal(t, "WRK", org.TokenInformation.TokenSymbol)
	assert.Equal(t, "One member one vote", org.TokenInformation.GovernanceMechanism)
}

func TestNormalizeTokenResolvedUsesLinkedFields(t *testing.T) {
	rec := internal.RawRecord{ID: "recA", Fields: internal.Fields{
		"Token Information": []any{"recTok"},
		"token_name":        "same-record value is ignored",
	}}
	table := internal.ReferenceTable{
		"tokeninformation": {"recTok": {"token_name": "", "tokenName": "COOP", "tokenSymbol": "CP"}},
	}

	org := NewNormalizer(nil).Normalize(rec, table)

	require.NotNil(t, org.TokenInformation)
	assert.Equal(t, internal.TokenInfo{TokenName: "COOP", TokenSymbol: "CP"}, *org.TokenInformation)
}

func TestNormalizeSubRecordsDefaultWithoutLinks(t *testing.T) {
	org := NewNormalizer(nil).Normalize(internal.RawRecord{ID: "recBare"}, internal.ReferenceTable{})

	assert.Equal(t, "recBare", org.ID)
	assert.Equal(t, "Unnamed Organization", org.Name)
	assert.Equal(t, &internal.ContactInfo{}, org.ContactInformation)
	assert.Equal(t, &internal.Links{}, org.LinksSocialMedia)
	assert.Equal(t, &internal.Location{}, org.HeadquartersLocation)
	assert.Equal(t, &internal.FundingInfo{FundingSources: []string{}, Revenue: "Unknown"}, org.FundingFinancialInformation)
	assert.Nil(t, org.TokenInformation)
	assert.Equal(t, []string{}, org.Tags)
	assert.Equal(t, []string{}, org.OwnershipStructure)
	assert.Equal(t, []string{}, org.CertificationsAffiliations)
	assert.Nil(t, org.Description)
}

func TestNormalizeLinkedLocationAndLinks(t *testing.T) {
	rec := internal.RawRecord{ID: "recA", Fields: internal.Fields{
		"Headquarters Location": []any{"recLoc", "recIgnored"},
		"Links/Social Media":    []any{"recLinks"},
		"city":                  "Fallback City",
	}}
	table := internal.ReferenceTable{
		"table2":       {"recLoc": {"City": "Bologna", "State/Region": "Emilia-Romagna", "Zip/Postal Code": "40121"}},
		"headquarters": {"recIgnored": {"City": "Wrong"}},
		"socialmedia":  {"recLinks": {"Website": "https://coop.example", "linkdeIn": "li/coop", "GitHub": "coop"}},
	}

	org := NewNormalizer(nil).Normalize(rec, table)

	assert.Equal(t, internal.Location{City: "Bologna", StateRegion: "Emilia-Romagna", ZipPostalCode: "40121"}, *org.HeadquartersLocation)
	assert.Equal(t, internal.Links{Website: "https://coop.example", LinkedIn: "li/coop", GitHub: "coop"}, *org.LinksSocialMedia)
}

func TestNormalizeContactFallbackUsesFirstPresentAlias(t *testing.T) {
	rec := internal.RawRecord{ID: "recA", Fields: internal.Fields{
		"Contact Information": []any{"recC"},
		"email":               "",
		"Email":               "ignored@example.org",
		"Phone":               float64(5551234),
		"contactPerson":       "Ada",
	}}

	org := NewNormalizer(nil).Normalize(rec, internal.ReferenceTable{})

	assert.Equal(t, internal.ContactInfo{ContactPerson: "Ada", Email: "", Phone: "5551234"}, *org.ContactInformation)
}

func TestNormalizeScalars(t *testing.T) {
	rec := internal.RawRecord{ID: "recOwn", Fields: internal.Fields{
		"ID":                            "ORG-7",
		"name":                          "Arizmendi",
		"Type of Organization":          "Worker Cooperative",
		"yearFounded":                   "1997",
		"Number of Owners/Members":      float64(24),
		"Size":                          "Small",
		"Ownership Structure":           []any{"worker-owned, democratic"},
		"Certifications & Affiliations": "B Corp",
		"Date Added to Directory":       "2024-02-01",
		"lastUpdated":                   "2024-03-01",
	}}

	org := NewNormalizer(nil).Normalize(rec, internal.ReferenceTable{})

	assert.Equal(t, "ORG-7", org.ID)
	assert.Equal(t, "Arizmendi", org.Name)
	require.NotNil(t, org.TypeOfOrganization)
	assert.Equal(t, "Worker Cooperative", *org.TypeOfOrganization)
	require.NotNil(t, org.YearFounded)
	assert.Equal(t, 1997, *org.YearFounded)
	require.NotNil(t, org.NumberOfOwnersMembers)
	assert.Equal(t, 24, *org.NumberOfOwnersMembers)
	assert.Equal(t, []string{"worker-owned", "democratic"}, org.OwnershipStructure)
	assert.Equal(t, []string{"B Corp"}, org.CertificationsAffiliations)
	assert.Equal(t, "2024-02-01", *org.DateAddedToDirectory)
	assert.Equal(t, "2024-03-01", *org.LastUpdated)
}

func TestNormalizeDropsNonNumericYear(t *testing.T) {
	rec := internal.RawRecord{ID: "recA", Fields: internal.Fields{"Year Founded": "early 90s"}}
	org := NewNormalizer(nil).Normalize(rec, internal.ReferenceTable{})
	assert.Nil(t, org.YearFounded)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	rec := internal.RawRecord{ID: "recA", Fields: internal.Fields{
		"Name":                "Cooperative A",
		"Tags":                []any{"coop;housing", "land trust"},
		"Token Information":   []any{"recTok"},
		"Contact Information": []any{"recC"},
	}}
	table := internal.ReferenceTable{"contactinformation": {"recC": {"email": "a@example.org"}}}

	n := NewNormalizer(nil)
	first := n.Normalize(rec, table)
	second := n.Normalize(rec, table)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("normalize not idempotent (-first +second):\n%s", diff)
	}
}

func TestBatchScenario(t *testing.T) {
	store := newFakeStore(
		internal.RawRecord{ID: "recA", Fields: internal.Fields{
			"Name":              "Token Co-op",
			"Token Information": []any{"recXYZ"},
		}},
		internal.RawRecord{ID: "recB", Fields: internal.Fields{
			"Name": "Bakery",
			"Tags": "coop; worker-owned",
		}},
	)

	records, err := store.ListRecords(context.Background())
	require.NoError(t, err)
	table := NewResolver(store, nil).Resolve(context.Background(), records)
	orgs := NewNormalizer(nil).NormalizeAll(records, table)

	require.Len(t, orgs, 2)
	require.NotNil(t, orgs[0].TokenInformation)
	assert.Equal(t, "Unknown Token", orgs[0].TokenInformation.TokenName)
	assert.Equal(t, "Ethereum", orgs[0].TokenInformation.BlockchainPlatform)
	assert.Equal(t, []string{"coop", "worker-owned"}, orgs[1].Tags)
	assert.Equal(t, 1, store.callCount("recXYZ"))
}

package internal

import "errors"

// ErrRecordNotFound is returned by record stores when an id does not exist
// in the collection they read from.
var ErrRecordNotFound = errors.New("record not found")

// Fields holds the untyped cell values of one record as decoded from JSON:
// string, float64, bool, []any or map[string]any.
type Fields map[string]any

type RawRecord struct {
	ID          string `json:"id"`
	CreatedTime string `json:"createdTime,omitempty"`
	Fields      Fields `json:"fields"`
}

// ReferenceTable maps a guessed collection key to the records resolved for
// it, keyed by record id. It is written once by the resolver and only read
// afterwards.
type ReferenceTable map[string]map[string]Fields

// Lookup reports whether id was resolved under key. A resolved record with
// no fields yields a non-nil empty map and ok == true.
func (t ReferenceTable) Lookup(key, id string) (Fields, bool) {
	byID, ok := t[key]
	if !ok {
		return nil, false
	}
	fields, ok := byID[id]
	return fields, ok
}

// LookupFirst probes keys in order and returns the first hit.
func (t ReferenceTable) LookupFirst(keys []string, id string) (Fields, bool) {
	for _, key := range keys {
		if fields, ok := t.Lookup(key, id); ok {
			return fields, true
		}
	}
	return nil, false
}

type Location struct {
	Address       string `json:"address"`
	City          string `json:"city"`
	StateRegion   string `json:"state_region"`
	Country       string `json:"country"`
	ZipPostalCode string `json:"zip_postal_code"`
}

type FundingInfo struct {
	FundingSources []string `json:"funding_sources"`
	Revenue        string   `json:"revenue"`
}

type TokenInfo struct {
	TokenName           string `json:"token_name"`
	TokenSymbol         string `json:"token_symbol"`
	BlockchainPlatform  string `json:"blockchain_platform"`
	GovernanceMechanism string `json:"governance_mechanism"`
	LinkToTokenContract string `json:"link_to_token_contract"`
}

type ContactInfo struct {
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
}

type Links struct {
	Website  string `json:"website"`
	Twitter  string `json:"twitter"`
	LinkedIn string `json:"linkedin"`
	Discord  string `json:"discord"`
	GitHub   string `json:"github"`
}

// Organization is the normalized shape served to the directory UI.
type Organization struct {
	ID                          string       `json:"id"`
	Name                        string       `json:"name"`
	Description                 *string      `json:"description"`
	TypeOfOrganization          *string      `json:"type_of_organization"`
	Industry                    *string      `json:"industry"`
	OwnershipStructure          []string     `json:"ownership_structure"`
	LegalStructure              *string      `json:"legal_structure"`
	YearFounded                 *int         `json:"year_founded"`
	HeadquartersLocation        *Location    `json:"headquarters_location"`
	GeographicalScope           *string      `json:"geographical_scope"`
	Size                        *string      `json:"size"`
	NumberOfOwnersMembers       *int         `json:"number_of_owners_members"`
	FundingFinancialInformation *FundingInfo `json:"funding_financial_information"`
	TokenInformation            *TokenInfo   `json:"token_information"`
	GovernanceModel             *string      `json:"governance_model"`
	LinksSocialMedia            *Links       `json:"links_social_media"`
	ContactInformation          *ContactInfo `json:"contact_information"`
	CertificationsAffiliations  []string     `json:"certifications_affiliations"`
	Tags                        []string     `json:"tags"`
	DateAddedToDirectory        *string      `json:"date_added_to_directory"`
	LastUpdated                 *string      `json:"last_updated"`
}

// ErrorResponse is the body served when a fetch cycle fails.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

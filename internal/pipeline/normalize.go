package pipeline

import (
	"go.uber.org/zap"

	"orgdir/internal"
	"orgdir/internal/util"
)

// Normalizer maps raw records onto the Organization shape. It holds no
// per-record state; Normalize is safe to call concurrently.
type Normalizer struct {
	logger *zap.Logger
}

func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

func (n *Normalizer) NormalizeAll(records []internal.RawRecord, table internal.ReferenceTable) []internal.Organization {
	out := make([]internal.Organization, 0, len(records))
	for _, rec := range records {
		out = append(out, n.Normalize(rec, table))
	}
	return out
}

func (n *Normalizer) Normalize(rec internal.RawRecord, table internal.ReferenceTable) internal.Organization {
	f := rec.Fields
	if f == nil {
		f = internal.Fields{}
	}

	id := rec.ID
	if v, ok := Lookup(f, aliasID); ok && util.Truthy(v) {
		id = util.FormatScalar(v)
	}

	return internal.Organization{
		ID:                          id,
		Name:                        fieldString(f, aliasName, defaultName),
		Description:                 optionalString(f, aliasDescription),
		TypeOfOrganization:          optionalString(f, aliasTypeOfOrganization),
		Industry:                    optionalString(f, aliasIndustry),
		OwnershipStructure:          parseListField(f, aliasOwnership),
		LegalStructure:              optionalString(f, aliasLegalStructure),
		YearFounded:                 n.optionalInt(rec.ID, f, aliasYearFounded),
		HeadquartersLocation:        resolveLocation(f, table),
		GeographicalScope:           optionalString(f, aliasGeographicalScope),
		Size:                        optionalString(f, aliasSize),
		NumberOfOwnersMembers:       n.optionalInt(rec.ID, f, aliasMemberCount),
		FundingFinancialInformation: resolveFunding(f, table),
		TokenInformation:            resolveToken(f, table),
		GovernanceModel:             optionalString(f, aliasGovernanceModel),
		LinksSocialMedia:            resolveLinks(f, table),
		ContactInformation:          resolveContact(f, table),
		CertificationsAffiliations:  parseListField(f, aliasCertifications),
		Tags:                        parseListField(f, aliasTags),
		DateAddedToDirectory:        optionalString(f, aliasDateAdded),
		LastUpdated:                 optionalString(f, aliasLastUpdated),
	}
}

// linkState describes a sub-record's link field on one organization.
type linkState struct {
	present bool
	linked  internal.Fields
}

func (s linkState) resolved() bool { return s.linked != nil }

// resolveLink reads the link field and looks its first id up under keys.
// Ids after the first are ignored.
func resolveLink(f internal.Fields, aliases aliasList, keys []string, table internal.ReferenceTable) linkState {
	v, present := Lookup(f, aliases)
	state := linkState{present: present}
	id, ok := firstLinkedID(v)
	if !ok {
		return state
	}
	if linked, found := table.LookupFirst(keys, id); found {
		if linked == nil {
			linked = internal.Fields{}
		}
		state.linked = linked
	}
	return state
}

func firstLinkedID(v any) (string, bool) {
	switch t := v.(type) {
	case []any:
		if len(t) == 0 {
			return "", false
		}
		return util.FormatScalar(t[0]), true
	case []string:
		if len(t) == 0 {
			return "", false
		}
		return t[0], true
	default:
		return "", false
	}
}

func resolveToken(f internal.Fields, table internal.ReferenceTable) *internal.TokenInfo {
	link := resolveLink(f, linkToken, TokenKeys, table)
	if !link.present {
		return nil
	}
	if link.resolved() {
		l := link.linked
		return &internal.TokenInfo{
			TokenName:           linkedString(l, aliasTokenName, ""),
			TokenSymbol:         linkedString(l, aliasTokenSymbol, ""),
			BlockchainPlatform:  linkedString(l, aliasBlockchain, ""),
			GovernanceMechanism: linkedString(l, aliasGovernanceMech, ""),
			LinkToTokenContract: linkedString(l, aliasTokenContract, ""),
		}
	}
	return &internal.TokenInfo{
		TokenName:           fieldString(f, aliasTokenName, defaultTokenName),
		TokenSymbol:         fieldString(f, aliasTokenSymbol, ""),
		BlockchainPlatform:  fieldString(f, aliasBlockchain, defaultBlockchain),
		GovernanceMechanism: fieldString(f, aliasTokenGovernance, defaultGovernance),
		LinkToTokenContract: fieldString(f, aliasTokenContract, ""),
	}
}

func resolveFunding(f internal.Fields, table internal.ReferenceTable) *internal.FundingInfo {
	link := resolveLink(f, linkFunding, FundingKeys, table)
	if link.resolved() {
		l := link.linked
		sources, _ := LookupTruthy(l, aliasFundingSources)
		return &internal.FundingInfo{
			FundingSources: ParseList(sources),
			Revenue:        linkedString(l, aliasRevenue, defaultRevenue),
		}
	}
	return &internal.FundingInfo{
		FundingSources: parseListField(f, aliasFundingSources),
		Revenue:        fieldString(f, aliasRevenue, defaultRevenue),
	}
}

func resolveContact(f internal.Fields, table internal.ReferenceTable) *internal.ContactInfo {
	link := resolveLink(f, linkContact, ContactKeys, table)
	if link.resolved() {
		l := link.linked
		return &internal.ContactInfo{
			ContactPerson: linkedString(l, aliasContactPerson, ""),
			Email:         linkedString(l, aliasEmail, ""),
			Phone:         linkedString(l, aliasPhone, ""),
		}
	}
	return &internal.ContactInfo{
		ContactPerson: fieldString(f, aliasContactPerson, ""),
		Email:         fieldString(f, aliasEmail, ""),
		Phone:         fieldString(f, aliasPhone, ""),
	}
}

func resolveLinks(f internal.Fields, table internal.ReferenceTable) *internal.Links {
	link := resolveLink(f, linkLinks, LinksKeys, table)
	if link.resolved() {
		l := link.linked
		return &internal.Links{
			Website:  linkedString(l, aliasWebsite, ""),
			Twitter:  linkedString(l, aliasTwitter, ""),
			LinkedIn: linkedString(l, aliasLinkedIn, ""),
			Discord:  linkedString(l, aliasDiscord, ""),
			GitHub:   linkedString(l, aliasGitHub, ""),
		}
	}
	return &internal.Links{
		Website:  fieldString(f, aliasWebsite, ""),
		Twitter:  fieldString(f, aliasTwitter, ""),
		LinkedIn: fieldString(f, aliasLinkedIn, ""),
		Discord:  fieldString(f, aliasDiscord, ""),
		GitHub:   fieldString(f, aliasGitHub, ""),
	}
}

func resolveLocation(f internal.Fields, table internal.ReferenceTable) *internal.Location {
	link := resolveLink(f, linkLocation, LocationKeys, table)
	if link.resolved() {
		l := link.linked
		return &internal.Location{
			Address:       linkedString(l, aliasAddress, ""),
			City:          linkedString(l, aliasCity, ""),
			StateRegion:   linkedString(l, aliasStateRegion, ""),
			Country:       linkedString(l, aliasCountry, ""),
			ZipPostalCode: linkedString(l, aliasZip, ""),
		}
	}
	return &internal.Location{
		Address:       fieldString(f, aliasAddress, ""),
		City:          fieldString(f, aliasCity, ""),
		StateRegion:   fieldString(f, aliasStateRegion, ""),
		Country:       fieldString(f, aliasCountry, ""),
		ZipPostalCode: fieldString(f, aliasZip, ""),
	}
}

// fieldString reads an organization's own field: the first present alias
// decides, and an empty value falls back to def.
func fieldString(f internal.Fields, aliases aliasList, def string) string {
	v, ok := Lookup(f, aliases)
	if !ok || !util.Truthy(v) {
		return def
	}
	return util.FormatScalar(v)
}

// linkedString reads a linked record, where the first non-empty alias wins.
func linkedString(f internal.Fields, aliases aliasList, def string) string {
	v, ok := LookupTruthy(f, aliases)
	if !ok {
		return def
	}
	return util.FormatScalar(v)
}

func optionalString(f internal.Fields, aliases aliasList) *string {
	v, ok := Lookup(f, aliases)
	if !ok || v == nil {
		return nil
	}
	return util.StringPtr(util.FormatScalar(v))
}

func (n *Normalizer) optionalInt(recordID string, f internal.Fields, aliases aliasList) *int {
	v, ok := Lookup(f, aliases)
	if !ok || v == nil {
		return nil
	}
	i, ok := util.ToInt(v)
	if !ok {
		if util.Truthy(v) {
			n.logger.Debug("non-numeric value dropped",
				zap.String("record", recordID),
				zap.String("field", aliases[0]),
				zap.Any("value", v))
		}
		return nil
	}
	return util.IntPtr(i)
}

func parseListField(f internal.Fields, aliases aliasList) []string {
	v, _ := Lookup(f, aliases)
	return ParseList(v)
}

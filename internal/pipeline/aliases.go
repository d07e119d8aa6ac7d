package pipeline

// Field names in the source base drift between the human label, snake_case
// and camelCase. Each list is tried in order; the first present name wins.

type aliasList []string

var (
	aliasID                 = aliasList{"id", "ID"}
	aliasName               = aliasList{"Name", "name"}
	aliasDescription        = aliasList{"Description", "description"}
	aliasTypeOfOrganization = aliasList{"Type of Organization", "type_of_organization", "typeOfOrganization"}
	aliasIndustry           = aliasList{"Industry", "industry"}
	aliasOwnership          = aliasList{"Ownership Structure", "ownership_structure", "ownershipStructure"}
	aliasLegalStructure     = aliasList{"Legal Structure", "legal_structure", "legalStructure"}
	aliasYearFounded        = aliasList{"Year Founded", "year_founded", "yearFounded"}
	aliasGeographicalScope  = aliasList{"Geographical Scope", "geographical_scope", "geographicalScope"}
	aliasSize               = aliasList{"Size", "size"}
	aliasMemberCount        = aliasList{"Number of Owners/Members", "number_of_owners_members", "numberOfOwnersMembers"}
	aliasGovernanceModel    = aliasList{"Governance Model", "governance_model", "governanceModel"}
	aliasCertifications     = aliasList{"Certifications & Affiliations", "certifications_affiliations", "certificationsAffiliations"}
	aliasTags               = aliasList{"Tags", "tags"}
	aliasDateAdded          = aliasList{"Date Added to Directory", "date_added", "dateAddedToDirectory"}
	aliasLastUpdated        = aliasList{"Last Updated", "last_update", "lastUpdated"}
)

// Link fields for the nested sub-records.
var (
	linkToken    = aliasList{"Token Information", "token_information", "tokenInformation"}
	linkFunding  = aliasList{"Funding & Financial Information", "funding_and_financial_information", "fundingAndFinancialInformation", "funding_financial_information"}
	linkContact  = aliasList{"Contact Information", "contact_information", "contactInformation"}
	linkLinks    = aliasList{"Links/Social Media", "Links_social_media", "links_social_media", "linksSocialMedia"}
	linkLocation = aliasList{"Headquarters Location", "headquarters", "headquartersLocation"}
)

// Reference table keys probed for each sub-record, in order. These are
// guesses: nothing guarantees the linked table is named after the field.
var (
	TokenKeys    = []string{"tokeninformation"}
	FundingKeys  = []string{"fundingandfinancialinformation", "fundingfinancialinformation", "funding", "financial"}
	ContactKeys  = []string{"contactinformation"}
	LinksKeys    = []string{"linkssocialmedia", "links", "socialmedia"}
	LocationKeys = []string{"headquarters", "headquarterslocation", "table2"}
)

// Sub-record fields, read from the linked record or from the organization
// itself when the link does not resolve.
var (
	aliasTokenName       = aliasList{"token_name", "tokenName"}
	aliasTokenSymbol     = aliasList{"token_symbol", "tokenSymbol"}
	aliasBlockchain      = aliasList{"blockchain_platform", "blockchainPlatform"}
	aliasGovernanceMech  = aliasList{"governance_mechanism", "governanceMechanism"}
	aliasTokenGovernance = aliasList{"Governance Model", "governance_model"}
	aliasTokenContract   = aliasList{"link_to_token_contract", "linkToTokenContract"}

	aliasFundingSources = aliasList{"funding_sources", "fundingSources"}
	aliasRevenue        = aliasList{"revenue", "Revenue"}

	aliasContactPerson = aliasList{"contact_person", "contactPerson"}
	aliasEmail         = aliasList{"email", "Email"}
	aliasPhone         = aliasList{"phone", "Phone"}

	aliasWebsite  = aliasList{"website", "Website"}
	aliasTwitter  = aliasList{"twitter", "Twitter"}
	aliasLinkedIn = aliasList{"linkedin", "LinkedIn", "linkdeIn"}
	aliasDiscord  = aliasList{"discord", "Discord"}
	aliasGitHub   = aliasList{"github", "Github", "GitHub"}

	aliasAddress     = aliasList{"address", "Address"}
	aliasCity        = aliasList{"city", "City"}
	aliasStateRegion = aliasList{"state_region", "stateRegion", "State/Region"}
	aliasCountry     = aliasList{"country", "Country"}
	aliasZip         = aliasList{"zip_postal_code", "zipPostalCode", "Zip/Postal Code"}
)

const (
	defaultName       = "Unnamed Organization"
	defaultRevenue    = "Unknown"
	defaultTokenName  = "Unknown Token"
	defaultBlockchain = "Ethereum"
	defaultGovernance = "Unknown"
)

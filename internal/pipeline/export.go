package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"orgdir/internal"
)

var exportHeaders = []string{
	"id", "name", "description", "type_of_organization", "industry", "ownership_structure",
	"legal_structure", "year_founded", "geographical_scope", "size", "number_of_owners_members",
	"governance_model",
	"hq_address", "hq_city", "hq_state_region", "hq_country", "hq_zip_postal_code",
	"funding_sources", "revenue",
	"token_name", "token_symbol", "blockchain_platform", "governance_mechanism", "link_to_token_contract",
	"website", "twitter", "linkedin", "discord", "github",
	"contact_person", "email", "phone",
	"certifications_affiliations", "tags", "date_added_to_directory", "last_updated",
}

func ExportOrganizationsToXLSX(orgs []internal.Organization, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, org := range orgs {
		r := i + 2
		col := 0
		set := func(value any) {
			col++
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(org.ID)
		set(org.Name)
		set(derefString(org.Description))
		set(derefString(org.TypeOfOrganization))
		set(derefString(org.Industry))
		set(joinList(org.OwnershipStructure))
		set(derefString(org.LegalStructure))
		set(derefInt(org.YearFounded))
		set(derefString(org.GeographicalScope))
		set(derefString(org.Size))
		set(derefInt(org.NumberOfOwnersMembers))
		set(derefString(org.GovernanceModel))

		loc := internal.Location{}
		if org.HeadquartersLocation != nil {
			loc = *org.HeadquartersLocation
		}
		set(loc.Address)
		set(loc.City)
		set(loc.StateRegion)
		set(loc.Country)
		set(loc.ZipPostalCode)

		funding := internal.FundingInfo{}
		if org.FundingFinancialInformation != nil {
			funding = *org.FundingFinancialInformation
		}
		set(joinList(funding.FundingSources))
		set(funding.Revenue)

		token := internal.TokenInfo{}
		if org.TokenInformation != nil {
			token = *org.TokenInformation
		}
		set(token.TokenName)
		set(token.TokenSymbol)
		set(token.BlockchainPlatform)
		set(token.GovernanceMechanism)
		set(token.LinkToTokenContract)

		links := internal.Links{}
		if org.LinksSocialMedia != nil {
			links = *org.LinksSocialMedia
		}
		set(links.Website)
		set(links.Twitter)
		set(links.LinkedIn)
		set(links.Discord)
		set(links.GitHub)

		contact := internal.ContactInfo{}
		if org.ContactInformation != nil {
			contact = *org.ContactInformation
		}
		set(contact.ContactPerson)
		set(contact.Email)
		set(contact.Phone)

		set(joinList(org.CertificationsAffiliations))
		set(joinList(org.Tags))
		set(derefString(org.DateAddedToDirectory))
		set(derefString(org.LastUpdated))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func joinList(items []string) string {
	return strings.Join(items, "; ")
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

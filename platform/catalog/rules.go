package catalog

import "fmt"

type RuleKind string

const (
	PlainText     RuleKind = "plain_text"
	DateField     RuleKind = "date_field"
	MaskedSecret  RuleKind = "masked_secret"
	BoundedSelect RuleKind = "bounded_select"
)

// Rule tells a renderer how to present one attribute. Options is populated
// only for BoundedSelect.
type Rule struct {
	Kind    RuleKind `json:"kind"`
	Options []string `json:"options,omitempty"`
}

// Mask is the fixed-width placeholder shown in place of MaskedSecret
// values. Fixed width so the rendered length leaks nothing about the
// secret.
const Mask = "••••••••"

var (
	StatusOptions   = []string{"Active", "In Stock", "Repairing", "Not Functional"}
	LocationOptions = []string{"Mumbai", "Nagpur", "Pune"}

	StorageOptions = []string{
		"500GB HDD", "1TB HDD", "120GB SSD", "240GB SSD", "256GB SSD",
		"512GB SSD", "1TB SSD",
		"500GB HDD + 256GB SSD Sata", "1TB HDD + 256GB SSD Sata",
		"500GB HDD + 512GB SSD Sata", "1TB HDD + 512GB SSD Sata",
		"500GB HDD + 256GB SSD Nvme", "1TB HDD + 256GB SSD Nvme",
		"500GB HDD + 512GB SSD Nvme", "1TB HDD + 512GB SSD Nvme",
	}
	RamOptions            = []string{"4GB", "8GB", "12GB", "16GB", "32GB"}
	OsOptions             = []string{"Windows 7", "Windows 8.1", "Windows 10", "Windows 11"}
	OsVersionOptions      = []string{"Pro", "Home", "Enterprise"}
	MsOfficeOptions       = []string{"Office 365", "Office 2019", "Office 2016", "None"}
	AntivirusOptions      = []string{"Sophos AV", "None"}
	WarrantyStatusOptions = []string{"In Warranty", "Out of Warranty"}
	LaptopBrandOptions    = []string{"Dell", "HP", "Lenovo"}
)

// selectRules applies to every category that carries the field.
var selectRules = map[string][]string{
	"Status":         StatusOptions,
	"Location":       LocationOptions,
	"WarrantyStatus": WarrantyStatusOptions,
}

// pcSelectRules is limited to Laptop and Desktop: the option sets describe
// PC hardware and software, and the same field name on another category
// (a TV's OperatingSystem, say) is free text.
var pcSelectRules = map[string][]string{
	"Storage":                StorageOptions,
	"RAM":                    RamOptions,
	"OperatingSystem":        OsOptions,
	"OperatingSystemVersion": OsVersionOptions,
	"MsOffice":               MsOfficeOptions,
	"Antivirus":              AntivirusOptions,
}

var dateFields = map[string]bool{
	"WarrantyDate":  true,
	"PurchasedDate": true,
}

var secretFields = map[string]bool{
	"LaptopPassword":            true,
	"DesktopPassword":           true,
	"CameraPassword":            true,
	"LoginPassword":             true,
	"Password":                  true,
	"OperatingSystemLicenseKey": true,
}

// RenderRuleFor resolves the edit rule for a (category, attribute) pair by
// exact name lookup. Attributes matched by no table render as plain text,
// whatever their name happens to contain.
func RenderRuleFor(category Category, field string) (Rule, error) {
	if _, ok := categoryFields[category]; !ok {
		return Rule{}, fmt.Errorf("%w: '%v'", ErrUnknownCategory, category)
	}

	if field == "Brand" && category == Laptop {
		return Rule{Kind: BoundedSelect, Options: LaptopBrandOptions}, nil
	}
	if options, ok := selectRules[field]; ok {
		return Rule{Kind: BoundedSelect, Options: options}, nil
	}
	if category == Laptop || category == Desktop {
		if options, ok := pcSelectRules[field]; ok {
			return Rule{Kind: BoundedSelect, Options: options}, nil
		}
	}
	if dateFields[field] {
		return Rule{Kind: DateField}, nil
	}
	if secretFields[field] {
		return Rule{Kind: MaskedSecret}, nil
	}
	return Rule{Kind: PlainText}, nil
}

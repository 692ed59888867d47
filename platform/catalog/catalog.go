// Package catalog defines the per-category field sets, defaults, and edit
// rules for assets. The list of categories is closed: callers must go
// through ParseCategory so that typos in route params fail loudly instead
// of silently creating a new asset class.
package catalog

import (
	"errors"
	"fmt"
)

type Category string

const (
	Laptop  Category = "Laptop"
	Desktop Category = "Desktop"
	Camera  Category = "Camera"
	DVR     Category = "DVR"
	Printer Category = "Printer"
	UCM     Category = "UCM"
	TV      Category = "TV"
	AP      Category = "AP"
	IPPhone Category = "IP_Phone"
)

var ErrUnknownCategory = errors.New("unknown asset category")

var categories = []Category{Laptop, Desktop, Camera, DVR, Printer, UCM, TV, AP, IPPhone}

func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func ParseCategory(s string) (Category, error) {
	for _, c := range categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: '%v'", ErrUnknownCategory, s)
}

// baseFields are shared by every category and always come first. Category
// itself is not listed: it identifies the field set and is immutable once
// an asset exists.
var baseFields = []string{
	"HostName", "Brand", "Model", "SerialNo", "Status", "Location",
}

// commonTail closes out most category field sets.
var commonTail = []string{
	"WarrantyStatus", "WarrantyDate", "PurchasedDate", "Vendor", "Remarks", "Comments",
}

var categoryFields = map[Category][]string{
	Laptop: {
		"RAM", "Storage", "Processor", "ProcessorDetail",
		"OperatingSystem", "OperatingSystemVersion", "OperatingSystemLicenseKey",
		"LaptopPassword", "MsOffice", "Antivirus",
	},
	Desktop: {
		"RAM", "Storage", "Processor", "ProcessorDetail",
		"OperatingSystem", "OperatingSystemVersion", "OperatingSystemLicenseKey",
		"DesktopPassword", "MsOffice", "Antivirus",
	},
	Camera: {
		"Resolution", "LensType", "IpAddress", "SensorType",
		"OpticalZoom", "DigitalZoom", "Connectivity", "StorageType",
		"VideoCapability", "PowerSource", "CameraUserName", "CameraPassword",
	},
	DVR: {
		"ChannelsSupported", "StorageCapacity", "RecordingResolution",
		"FirmwareVersion", "IpAddress", "MacAddress", "NetworkConnectivity",
		"LoginUserName", "LoginPassword",
	},
	Printer: {
		"PrinterType", "ColorPrinting", "DuplexPrinting", "MaxResolution",
		"Connectivity", "IpAddress", "MacAddress", "SupportedPaperSizes",
		"TonerOrInkModel", "TrayCapacity", "FirmwareVersion",
	},
	UCM: {
		"IpAddress", "MacAddress", "FirmwareVersion", "Username", "Password",
		"ExtensionNumber", "VoIPProvider",
	},
	TV: {
		"ScreenSize", "DisplaySize", "Resolution", "SmartTV",
		"OperatingSystem", "HdmiPorts", "UsbPorts", "WifiEnabled",
		"MacAddress", "IpAddress", "FirmwareVersion",
	},
	AP: {
		"IpAddress", "MacAddress", "SSID", "FrequencyBand",
		"SupportedStandards", "FirmwareVersion", "NumberOfAntennas",
		"EncryptionType", "LoginUserName", "LoginPassword",
	},
	IPPhone: {
		"IpAddress", "MacAddress", "FirmwareVersion", "ExtensionNumber",
		"LoginUserName", "LoginPassword",
	},
}

// Access points carry no warranty tracking in this catalog, so their tail
// drops the WarrantyStatus select.
var apTail = []string{"WarrantyDate", "PurchasedDate", "Vendor", "Remarks", "Comments"}

// FieldsFor returns the full editable field list for a category, base
// fields first, in a stable declared order.
func FieldsFor(category Category) ([]string, error) {
	extra, ok := categoryFields[category]
	if !ok {
		return nil, fmt.Errorf("%w: '%v'", ErrUnknownCategory, category)
	}

	tail := commonTail
	if category == AP {
		tail = apTail
	}

	fields := make([]string, 0, len(baseFields)+len(extra)+len(tail))
	fields = append(fields, baseFields...)
	fields = append(fields, extra...)
	fields = append(fields, tail...)
	return fields, nil
}

const (
	DefaultStatus   = "Active"
	DefaultLocation = "Mumbai"
)

// DefaultsFor returns a fresh draft record for the category: every field
// empty except Status and Location.
func DefaultsFor(category Category) (map[string]string, error) {
	fields, err := FieldsFor(category)
	if err != nil {
		return nil, err
	}

	defaults := make(map[string]string, len(fields))
	for _, field := range fields {
		defaults[field] = ""
	}
	defaults["Status"] = DefaultStatus
	defaults["Location"] = DefaultLocation
	return defaults, nil
}

// Diff returns the fields whose draft value differs from the original,
// mapped to the draft value. Keys present on only one side count as
// changed. An empty result means the edit is a no-op.
func Diff(original, draft map[string]string) map[string]string {
	changed := make(map[string]string)
	for key, value := range draft {
		if original[key] != value {
			changed[key] = value
		}
	}
	for key := range original {
		if _, ok := draft[key]; !ok {
			changed[key] = ""
		}
	}
	return changed
}

func IsChanged(original, draft map[string]string) bool {
	return len(Diff(original, draft)) > 0
}

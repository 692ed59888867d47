package catalog_test

import (
	"testing"

	"itam_platform/platform/catalog"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	for _, category := range catalog.Categories() {
		parsed, err := catalog.ParseCategory(string(category))
		assert.NoError(t, err)
		assert.Equal(t, category, parsed)
	}

	_, err := catalog.ParseCategory("Router")
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)

	// Lookup is exact, not case folded.
	_, err = catalog.ParseCategory("laptop")
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
}

func TestFieldsFor(t *testing.T) {
	fields, err := catalog.FieldsFor(catalog.Laptop)
	assert.NoError(t, err)

	// Base fields lead in declared order.
	assert.Equal(t, []string{"HostName", "Brand", "Model", "SerialNo", "Status", "Location"}, fields[:6])
	assert.Contains(t, fields, "RAM")
	assert.Contains(t, fields, "LaptopPassword")
	assert.Equal(t, "Comments", fields[len(fields)-1])
	assert.NotContains(t, fields, "Category")

	// Access points drop the warranty status field, everything else keeps it.
	apFields, err := catalog.FieldsFor(catalog.AP)
	assert.NoError(t, err)
	assert.NotContains(t, apFields, "WarrantyStatus")
	assert.Contains(t, apFields, "WarrantyDate")

	printerFields, err := catalog.FieldsFor(catalog.Printer)
	assert.NoError(t, err)
	assert.Contains(t, printerFields, "WarrantyStatus")
	assert.NotContains(t, printerFields, "RAM")

	_, err = catalog.FieldsFor(catalog.Category("Router"))
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
}

func TestDefaultsFor(t *testing.T) {
	defaults, err := catalog.DefaultsFor(catalog.Desktop)
	assert.NoError(t, err)

	assert.Equal(t, "Active", defaults["Status"])
	assert.Equal(t, "Mumbai", defaults["Location"])
	assert.Equal(t, "", defaults["HostName"])
	assert.Equal(t, "", defaults["RAM"])

	fields, err := catalog.FieldsFor(catalog.Desktop)
	assert.NoError(t, err)
	assert.Len(t, defaults, len(fields))
}

func TestDiff(t *testing.T) {
	original := map[string]string{"HostName": "LT-1", "Brand": "Dell", "Status": "Active"}

	assert.Empty(t, catalog.Diff(original, original))
	assert.False(t, catalog.IsChanged(original, original))

	draft := map[string]string{"HostName": "LT-1", "Brand": "HP", "Status": "Active"}
	assert.Equal(t, map[string]string{"Brand": "HP"}, catalog.Diff(original, draft))
	assert.True(t, catalog.IsChanged(original, draft))

	// Keys present on only one side count as changed.
	added := map[string]string{"HostName": "LT-1", "Brand": "Dell", "Status": "Active", "Remarks": "spare"}
	assert.Equal(t, map[string]string{"Remarks": "spare"}, catalog.Diff(original, added))

	dropped := map[string]string{"HostName": "LT-1", "Brand": "Dell"}
	assert.Equal(t, map[string]string{"Status": ""}, catalog.Diff(original, dropped))
}

func TestRenderRuleFor(t *testing.T) {
	// Brand is a select for laptops only.
	rule, err := catalog.RenderRuleFor(catalog.Laptop, "Brand")
	assert.NoError(t, err)
	assert.Equal(t, catalog.BoundedSelect, rule.Kind)
	assert.Equal(t, catalog.LaptopBrandOptions, rule.Options)

	rule, err = catalog.RenderRuleFor(catalog.Desktop, "Brand")
	assert.NoError(t, err)
	assert.Equal(t, catalog.PlainText, rule.Kind)

	// RAM and OperatingSystem are selects on PCs, free text elsewhere.
	rule, err = catalog.RenderRuleFor(catalog.Desktop, "RAM")
	assert.NoError(t, err)
	assert.Equal(t, catalog.BoundedSelect, rule.Kind)
	assert.Equal(t, catalog.RamOptions, rule.Options)

	rule, err = catalog.RenderRuleFor(catalog.TV, "OperatingSystem")
	assert.NoError(t, err)
	assert.Equal(t, catalog.PlainText, rule.Kind)

	// Status and Location are selects on every category.
	for _, category := range catalog.Categories() {
		rule, err = catalog.RenderRuleFor(category, "Status")
		assert.NoError(t, err)
		assert.Equal(t, catalog.BoundedSelect, rule.Kind)
		assert.Equal(t, catalog.StatusOptions, rule.Options)
	}

	rule, err = catalog.RenderRuleFor(catalog.Camera, "PurchasedDate")
	assert.NoError(t, err)
	assert.Equal(t, catalog.DateField, rule.Kind)

	rule, err = catalog.RenderRuleFor(catalog.UCM, "Password")
	assert.NoError(t, err)
	assert.Equal(t, catalog.MaskedSecret, rule.Kind)

	rule, err = catalog.RenderRuleFor(catalog.Laptop, "OperatingSystemLicenseKey")
	assert.NoError(t, err)
	assert.Equal(t, catalog.MaskedSecret, rule.Kind)

	// Unmatched names render as plain text, whatever they contain.
	rule, err = catalog.RenderRuleFor(catalog.Camera, "SensorType")
	assert.NoError(t, err)
	assert.Equal(t, catalog.PlainText, rule.Kind)

	_, err = catalog.RenderRuleFor(catalog.Category("Router"), "Status")
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
}

func TestParseAllotment(t *testing.T) {
	assert.Equal(t, catalog.Allotment{}, catalog.ParseAllotment(""))
	assert.Equal(t, catalog.Allotment{}, catalog.ParseAllotment(" / \\ "))

	single := catalog.ParseAllotment("alice")
	assert.Equal(t, "alice", single.Current)
	assert.Empty(t, single.Previous)

	// Stored oldest first, previous holders come back newest first.
	full := catalog.ParseAllotment("alice/bob/carol")
	assert.Equal(t, "carol", full.Current)
	assert.Equal(t, []string{"bob", "alice"}, full.Previous)

	// Both separators work, padding is trimmed.
	mixed := catalog.ParseAllotment(`alice \ bob / carol`)
	assert.Equal(t, "carol", mixed.Current)
	assert.Equal(t, []string{"bob", "alice"}, mixed.Previous)
}

func TestReassign(t *testing.T) {
	assert.Equal(t, "alice", catalog.Reassign("", "alice"))
	assert.Equal(t, "alice/bob", catalog.Reassign("alice", "bob"))
	assert.Equal(t, "alice/bob/carol", catalog.Reassign("alice/bob", "carol"))

	// Reassigning to the current holder is the identity.
	assert.Equal(t, "alice/bob", catalog.Reassign("alice/bob", "bob"))
	assert.Equal(t, "alice/bob", catalog.Reassign("alice/bob", ""))

	// A returning holder is not listed twice.
	assert.Equal(t, "bob/carol/alice", catalog.Reassign("alice/bob/carol", "alice"))

	assert.Equal(t, "alice/bob", catalog.Reassign("alice", "  bob  "))
}

func TestDisplaceAndRemove(t *testing.T) {
	assert.Equal(t, "alice", catalog.Displace("", "alice"))
	assert.Equal(t, "carol/bob/alice", catalog.Displace("bob/alice", "carol"))

	// A returning holder moves to the front instead of duplicating.
	assert.Equal(t, "alice/bob", catalog.Displace("bob/alice", "alice"))
	assert.Equal(t, "bob/alice", catalog.Displace("bob/alice", ""))

	assert.Equal(t, "bob", catalog.Remove("bob/alice", "alice"))
	assert.Equal(t, "carol/alice", catalog.Remove("carol/bob/alice", "bob"))
	assert.Equal(t, "bob/alice", catalog.Remove("bob/alice", "dave"))
	assert.Equal(t, "", catalog.Remove("alice", "alice"))
}

func TestHolders(t *testing.T) {
	assert.Empty(t, catalog.Holders(""))
	assert.Equal(t, []string{"alice"}, catalog.Holders("alice"))
	assert.Equal(t, []string{"alice", "bob"}, catalog.Holders(`alice\bob`))
}

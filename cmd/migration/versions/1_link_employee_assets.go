package versions

import (
	"itam_platform/platform/schema"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/*
 * The previous backend stored the assigned machine on each employee row as a
 * free-text hostname. This migration resolves those hostnames against the
 * assets table and replaces the column with a proper foreign key. Hostnames
 * that no longer match an asset are logged and cleared rather than failing
 * the migration, the old sheet had plenty of stale entries.
 */
func Migration_1_link_employee_assets(txn *gorm.DB) error {
	type Employee struct {
		Id      uuid.UUID
		AssetId *uuid.UUID
	}

	if err := txn.Migrator().AddColumn(&schema.Employee{}, "AssetId"); err != nil {
		return err
	}

	type employeeHostname struct {
		Id            uuid.UUID
		AssetHostName string
	}

	var rows []employeeHostname
	err := txn.Table("employees").
		Select("id", "asset_host_name").
		Where("asset_host_name IS NOT NULL AND asset_host_name != ''").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	for _, row := range rows {
		var asset schema.Asset
		result := txn.Where("host_name = ?", row.AssetHostName).First(&asset)
		if result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				log.Printf("no asset found for hostname '%v', leaving employee %v unlinked", row.AssetHostName, row.Id)
				continue
			}
			return result.Error
		}

		err := txn.Model(&Employee{}).Where("id = ?", row.Id).Update("asset_id", asset.Id).Error
		if err != nil {
			return err
		}
	}

	if err := txn.Migrator().DropColumn(&schema.Employee{}, "AssetHostName"); err != nil {
		return err
	}

	return txn.Migrator().CreateConstraint(&schema.Employee{}, "Asset")
}

package models

// Region, Settlement and PostOffice mirror the shipping provider's directory.
// Sub-regions are collapsed into their top-most parent during sync, so Region
// rows are always top-level. PostOffice keeps the provider's numeric id as the
// primary key; its status string is refreshed on every sync pass.

const OfficeStatusWorking = "Working"

type Region struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
}

type Settlement struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"size:100;not null;uniqueIndex:idx_settlement_region" json:"name"`
	RegionID uint   `gorm:"not null;uniqueIndex:idx_settlement_region" json:"region_id"`
	Region   Region `gorm:"foreignKey:RegionID" json:"-"`
}

type PostOffice struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Status       string     `gorm:"size:50;not null" json:"status"`
	SettlementID uint       `gorm:"not null;index" json:"settlement_id"`
	Settlement   Settlement `gorm:"foreignKey:SettlementID" json:"-"`
}

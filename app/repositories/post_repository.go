package repositories

import (
	"context"
	"errors"

	"github.com/ostapdev/go-shop/app/models"
	"gorm.io/gorm"
)

// DirectoryEntry is one flattened office row pulled from the shipping
// provider, already collapsed to its top-most parent region.
type DirectoryEntry struct {
	OfficeID       uint
	OfficeName     string
	OfficeStatus   string
	SettlementName string
	RegionName     string
}

type PostRepositoryImpl interface {
	GetRegions(ctx context.Context) ([]models.Region, error)
	GetRegionByID(ctx context.Context, id uint) (*models.Region, error)
	GetSettlementsByRegion(ctx context.Context, regionID uint) ([]models.Settlement, error)
	GetSettlementByID(ctx context.Context, id uint) (*models.Settlement, error)
	GetWorkingOffices(ctx context.Context, settlementID uint) ([]models.PostOffice, error)
	GetOfficeByID(ctx context.Context, id uint) (*models.PostOffice, error)
	ApplyDirectory(ctx context.Context, entries []DirectoryEntry) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepositoryImpl {
	return &postRepository{db: db}
}

func (r *postRepository) GetRegions(ctx context.Context) ([]models.Region, error) {
	var regions []models.Region
	err := r.db.WithContext(ctx).Order("name ASC").Find(&regions).Error
	if err != nil {
		return nil, err
	}
	return regions, nil
}

func (r *postRepository) GetRegionByID(ctx context.Context, id uint) (*models.Region, error) {
	var region models.Region
	err := r.db.WithContext(ctx).First(&region, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &region, nil
}

func (r *postRepository) GetSettlementsByRegion(ctx context.Context, regionID uint) ([]models.Settlement, error) {
	var settlements []models.Settlement
	err := r.db.WithContext(ctx).
		Where("region_id = ?", regionID).
		Order("name ASC").
		Find(&settlements).Error
	if err != nil {
		return nil, err
	}
	return settlements, nil
}

func (r *postRepository) GetSettlementByID(ctx context.Context, id uint) (*models.Settlement, error) {
	var settlement models.Settlement
	err := r.db.WithContext(ctx).First(&settlement, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settlement, nil
}

func (r *postRepository) GetWorkingOffices(ctx context.Context, settlementID uint) ([]models.PostOffice, error) {
	var offices []models.PostOffice
	err := r.db.WithContext(ctx).
		Where("settlement_id = ? AND status = ?", settlementID, models.OfficeStatusWorking).
		Order("name ASC").
		Find(&offices).Error
	if err != nil {
		return nil, err
	}
	return offices, nil
}

func (r *postRepository) GetOfficeByID(ctx context.Context, id uint) (*models.PostOffice, error) {
	var office models.PostOffice
	err := r.db.WithContext(ctx).First(&office, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &office, nil
}

// ApplyDirectory upserts the full fetched directory in one transaction.
// A failed sync run therefore leaves the previously persisted directory
// untouched instead of truncating it halfway.
func (r *postRepository) ApplyDirectory(ctx context.Context, entries []DirectoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		regionIDs := map[string]uint{}
		settlementIDs := map[string]uint{}

		for _, entry := range entries {
			regionID, ok := regionIDs[entry.RegionName]
			if !ok {
				var region models.Region
				if err := tx.Where(models.Region{Name: entry.RegionName}).
					FirstOrCreate(&region).Error; err != nil {
					return err
				}
				regionID = region.ID
				regionIDs[entry.RegionName] = regionID
			}

			settlementKey := entry.RegionName + "/" + entry.SettlementName
			settlementID, ok := settlementIDs[settlementKey]
			if !ok {
				var settlement models.Settlement
				if err := tx.Where(models.Settlement{
					Name:     entry.SettlementName,
					RegionID: regionID,
				}).FirstOrCreate(&settlement).Error; err != nil {
					return err
				}
				settlementID = settlement.ID
				settlementIDs[settlementKey] = settlementID
			}

			office := models.PostOffice{
				ID:           entry.OfficeID,
				Name:         entry.OfficeName,
				Status:       entry.OfficeStatus,
				SettlementID: settlementID,
			}
			if err := tx.Save(&office).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

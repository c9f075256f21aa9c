package service

import (
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/agroplan/internal/common"
	"github.com/FACorreiaa/agroplan/internal/domain/crop"
	"github.com/FACorreiaa/agroplan/internal/domain/parcel"
)

// squareMetersPerHectare converts declared areas to the canonical unit.
var squareMetersPerHectare = decimal.NewFromInt(10000)

// AreaToSquareMeters canonicalizes a parcel area to square meters.
func AreaToSquareMeters(area decimal.Decimal, unit parcel.AreaUnit) (decimal.Decimal, error) {
	switch unit {
	case parcel.UnitSquareMeters:
		return area, nil
	case parcel.UnitHectares:
		return area.Mul(squareMetersPerHectare), nil
	}
	return decimal.Zero, common.Invalidf("unsupported area unit %q", unit)
}

// ComputeSeedCount derives the number of planting positions a parcel can hold
// given the crop's row and plant spacing. The result is rounded half-up to an
// integer count. Both spacings must be set and strictly positive.
func ComputeSeedCount(p *parcel.Parcel, c *crop.CropType) (decimal.Decimal, error) {
	areaM2, err := AreaToSquareMeters(p.Area, p.AreaUnit)
	if err != nil {
		return decimal.Zero, err
	}

	if c.RowSpacing == nil || c.PlantSpacing == nil ||
		!c.RowSpacing.IsPositive() || !c.PlantSpacing.IsPositive() {
		return decimal.Zero, common.Invalidf(
			"row and plant spacing must be set and greater than zero for crop type %q", c.Name)
	}

	perPlantArea := c.RowSpacing.Mul(*c.PlantSpacing)
	// DivRound rounds half away from zero, which is half-up for the positive
	// values reaching this point.
	return areaM2.DivRound(perPlantArea, 0), nil
}

package implementation

import (
	"context"
	"errors"
	"time"

	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/mapper"
	"placement-engine-be/internal/model"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/repository/contract"
	"placement-engine-be/internal/repository/scope"
	"placement-engine-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bookingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BookingMapper
}

func NewBookingRepository(db *gorm.DB) contract.BookingRepository {
	return &bookingRepositoryImpl{db: db, mapper: mapper.NewBookingMapper()}
}

func (r *bookingRepositoryImpl) Create(ctx context.Context, booking *entity.Booking) error {
	if booking.Version == 0 {
		booking.Version = 1
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(r.mapper.ToModel(booking)).Error; err != nil {
		return err
	}
	return r.saveChildren(ctx, booking)
}

func (r *bookingRepositoryImpl) Update(ctx context.Context, booking *entity.Booking) error {
	row := r.mapper.ToModel(booking)

	result := r.db.WithContext(ctx).Model(&model.Booking{}).
		Where("id = ? AND version = ?", booking.Id, booking.Version).
		Updates(map[string]interface{}{
			"bed_id":               row.BedId,
			"application_id":       row.ApplicationId,
			"placement_request_id": row.PlacementRequestId,
			"arrival_date":         row.ArrivalDate,
			"departure_date":       row.DepartureDate,
			"status":               row.Status,
			"version":              booking.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.Conflict("booking", booking.Id, "booking was modified concurrently")
	}
	booking.Version++

	return r.saveChildren(ctx, booking)
}

// saveChildren inserts child records that are not yet stored. Only the arrival's expected
// departure moves after insert, when the stay is extended.
func (r *bookingRepositoryImpl) saveChildren(ctx context.Context, booking *entity.Booking) error {
	for _, child := range r.mapper.ToChildModels(booking) {
		onConflict := clause.OnConflict{DoNothing: true}
		if _, ok := child.(*model.Arrival); ok {
			onConflict = clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"expected_departure_date"}),
			}
		}
		if err := r.db.WithContext(ctx).Clauses(onConflict).Create(child).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *bookingRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Booking, error) {
	var row model.Booking
	query := r.db.WithContext(ctx).Scopes(scope.PreloadBookingRecords)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&row), nil
}

func (r *bookingRepositoryImpl) findAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Booking, error) {
	var rows []*model.Booking
	query := r.db.WithContext(ctx).Scopes(scope.PreloadBookingRecords)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(rows), nil
}

func (r *bookingRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *bookingRepositoryImpl) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, specification.ForUpdate{}, specification.ByID{ID: id})
}

func (r *bookingRepositoryImpl) FindActiveOnBedArrivingBefore(ctx context.Context, bedId uuid.UUID, before time.Time) ([]*entity.Booking, error) {
	return r.findAll(ctx,
		specification.ByBedID{BedID: bedId},
		specification.ActiveBooking{},
		specification.ArrivingBefore{Date: before},
		specification.OrderBy{Field: "arrival_date"},
	)
}

func (r *bookingRepositoryImpl) FindByApplicationId(ctx context.Context, applicationId uuid.UUID) ([]*entity.Booking, error) {
	return r.findAll(ctx, specification.ByApplicationID{ApplicationID: applicationId}, specification.OrderBy{Field: "created_at"})
}

func (r *bookingRepositoryImpl) FindByPlacementRequestId(ctx context.Context, placementRequestId uuid.UUID) ([]*entity.Booking, error) {
	return r.findAll(ctx, specification.ByPlacementRequestID{PlacementRequestID: placementRequestId}, specification.OrderBy{Field: "created_at"})
}

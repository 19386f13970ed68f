package infrastructure

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mateusmacedo/go-reservas/internal/domain"
	"github.com/mateusmacedo/go-reservas/pkg/application"
)

// PostgresOptions configura a conexão e o pool.
type PostgresOptions struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

func OpenPostgres(opts PostgresOptions, logger application.AppLogger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         NewGormLogger(logger, opts.SlowThreshold),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return db, nil
}

// Migrate cria ou ajusta as tabelas users, viagens e reservas, além das extras informadas.
func Migrate(db *gorm.DB, extra ...interface{}) error {
	models := append([]interface{}{&domain.User{}, &domain.Trip{}, &domain.Reservation{}}, extra...)
	return db.AutoMigrate(models...)
}

type GormStore struct {
	db     *gorm.DB
	logger application.AppLogger
}

func NewGormStore(db *gorm.DB, logger application.AppLogger) *GormStore {
	return &GormStore{db: db, logger: logger}
}

func (s *GormStore) Users() domain.UserRepository {
	return &gormUserRepository{db: s.db, logger: s.logger}
}

func (s *GormStore) Trips() domain.TripRepository {
	return &gormTripRepository{db: s.db, logger: s.logger}
}

func (s *GormStore) Reservations() domain.ReservationRepository {
	return &gormReservationRepository{db: s.db, logger: s.logger}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, logger: s.logger})
	})
}

// translateError converte os erros do gorm nos erros do domínio.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.ErrForeignKey
	default:
		return err
	}
}

func affected(result *gorm.DB) error {
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type gormUserRepository struct {
	db     *gorm.DB
	logger application.AppLogger
}

func (r *gormUserRepository) Create(ctx context.Context, user domain.User) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&user).Error; err != nil {
		err = translateError(err)
		if !errors.Is(err, domain.ErrDuplicate) {
			application.LogError(ctx, r.logger, "failed to save user", err, map[string]interface{}{
				"user_id": user.ID,
			})
		}
		return err
	}
	return nil
}

func (r *gormUserRepository) Update(ctx context.Context, user domain.User) error {
	result := r.db.WithContext(ctx).Model(&user).
		Select("name", "email", "password", "role", "updated_at").
		Updates(&user)
	return affected(result)
}

func (r *gormUserRepository) Delete(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id))
}

func (r *gormUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	return user, translateError(err)
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	return user, translateError(err)
}

func (r *gormUserRepository) FindWithReservations(ctx context.Context, id string) (domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Preload("Reservations", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Reservations.Trip").
		First(&user, "id = ?", id).Error
	return user, translateError(err)
}

func (r *gormUserRepository) List(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0)
	err := r.db.WithContext(ctx).Order("created_at, id").Find(&users).Error
	return users, translateError(err)
}

type gormTripRepository struct {
	db     *gorm.DB
	logger application.AppLogger
}

func (r *gormTripRepository) Create(ctx context.Context, trip domain.Trip) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&trip).Error; err != nil {
		application.LogError(ctx, r.logger, "failed to save trip", err, map[string]interface{}{
			"trip_id": trip.ID,
		})
		return translateError(err)
	}
	return nil
}

func (r *gormTripRepository) Update(ctx context.Context, trip domain.Trip) error {
	result := r.db.WithContext(ctx).Model(&trip).
		Select("destino", "data_partida", "data_regresso", "preco", "updated_at").
		Updates(&trip)
	return affected(result)
}

func (r *gormTripRepository) Delete(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.Trip{}, "id = ?", id))
}

func (r *gormTripRepository) FindByID(ctx context.Context, id string) (domain.Trip, error) {
	var trip domain.Trip
	err := r.db.WithContext(ctx).First(&trip, "id = ?", id).Error
	return trip, translateError(err)
}

func (r *gormTripRepository) FindWithReservations(ctx context.Context, id string) (domain.Trip, error) {
	var trip domain.Trip
	err := r.db.WithContext(ctx).
		Preload("Reservations", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		First(&trip, "id = ?", id).Error
	return trip, translateError(err)
}

func (r *gormTripRepository) List(ctx context.Context) ([]domain.Trip, error) {
	trips := make([]domain.Trip, 0)
	err := r.db.WithContext(ctx).Order("created_at, id").Find(&trips).Error
	return trips, translateError(err)
}

type gormReservationRepository struct {
	db     *gorm.DB
	logger application.AppLogger
}

func (r *gormReservationRepository) Create(ctx context.Context, reservation domain.Reservation) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&reservation).Error; err != nil {
		err = translateError(err)
		if !errors.Is(err, domain.ErrForeignKey) {
			application.LogError(ctx, r.logger, "failed to save reservation", err, map[string]interface{}{
				"reservation_id": reservation.ID,
			})
		}
		return err
	}
	return nil
}

func (r *gormReservationRepository) Update(ctx context.Context, reservation domain.Reservation) error {
	result := r.db.WithContext(ctx).Model(&reservation).
		Omit(clause.Associations).
		Select("user_id", "viagem_id", "lugares", "updated_at").
		Updates(&reservation)
	return affected(result)
}

func (r *gormReservationRepository) Delete(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.Reservation{}, "id = ?", id))
}

func (r *gormReservationRepository) FindByID(ctx context.Context, id string) (domain.Reservation, error) {
	var reservation domain.Reservation
	err := r.db.WithContext(ctx).Preload("User").Preload("Trip").First(&reservation, "id = ?", id).Error
	return reservation, translateError(err)
}

func (r *gormReservationRepository) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	query := r.db.WithContext(ctx).Model(&domain.Reservation{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.TripID != "" {
		query = query.Where("viagem_id = ?", filter.TripID)
	}
	if filter.WithUser {
		query = query.Preload("User")
	}
	if filter.WithTrip {
		query = query.Preload("Trip")
	}

	reservations := make([]domain.Reservation, 0)
	err := query.Order("created_at, id").Find(&reservations).Error
	return reservations, translateError(err)
}

func (r *gormReservationRepository) DeleteByTrip(ctx context.Context, tripID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("viagem_id = ?", tripID).Delete(&domain.Reservation{})
	return result.RowsAffected, translateError(result.Error)
}

func (r *gormReservationRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Reservation{})
	return result.RowsAffected, translateError(result.Error)
}

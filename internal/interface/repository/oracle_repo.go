package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormOracleRepository implements the OracleRepository interface
type GormOracleRepository struct {
	db *gorm.DB
}

// NewGormOracleRepository creates a new GORM oracle repository
func NewGormOracleRepository(db *gorm.DB) repository.OracleRepository {
	return &GormOracleRepository{
		db: db,
	}
}

// Oracles GORM model for database mapping
type Oracles struct {
	Address   string          `gorm:"column:address;primaryKey;size:64"`
	Fee       decimal.Decimal `gorm:"column:fee;type:varchar(80)"`
	CreatedAt time.Time
}

// TableName overrides the default table name
func (Oracles) TableName() string {
	return "fs_oracles"
}

// OracleRequests GORM model; ID is the request index handed to oracles
type OracleRequests struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement"`
	Airline   string     `gorm:"column:airline;size:64;index:idx_request_flight"`
	Code      string     `gorm:"column:code;size:32;index:idx_request_flight"`
	Departure int64      `gorm:"column:departure;index:idx_request_flight"`
	Requester string     `gorm:"column:requester;size:64"`
	Status    string     `gorm:"column:status"`
	Outcome   int        `gorm:"column:outcome"`
	ClosedAt  *time.Time `gorm:"column:closed_at"`
	CreatedAt time.Time
}

// TableName overrides the default table name
func (OracleRequests) TableName() string {
	return "fs_oracle_requests"
}

// OracleResponses GORM model; an oracle answers a request at most once
type OracleResponses struct {
	RequestID  uint64 `gorm:"column:request_id;primaryKey"`
	Oracle     string `gorm:"column:oracle;primaryKey;size:64"`
	StatusCode int    `gorm:"column:status_code;index"`
	CreatedAt  time.Time
}

// TableName overrides the default table name
func (OracleResponses) TableName() string {
	return "fs_oracle_responses"
}

// GetOracle finds a registered oracle
func (r *GormOracleRepository) GetOracle(ctx context.Context, address string) (*entity.Oracle, error) {
	var oracle Oracles
	result := r.db.WithContext(ctx).Where("address = ?", address).First(&oracle)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("oracle %s: %w", address, entity.ErrNotFound)
		}
		return nil, result.Error
	}
	return &entity.Oracle{
		Address:      oracle.Address,
		Fee:          oracle.Fee,
		RegisteredAt: oracle.CreatedAt,
	}, nil
}

// CreateOracle registers an oracle
func (r *GormOracleRepository) CreateOracle(ctx context.Context, oracle *entity.Oracle) error {
	model := Oracles{
		Address: oracle.Address,
		Fee:     oracle.Fee,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to create oracle: %w", err)
	}
	oracle.RegisteredAt = model.CreatedAt
	return nil
}

// CreateRequest stores an open request and assigns the generated index
func (r *GormOracleRepository) CreateRequest(ctx context.Context, request *entity.OracleRequest) error {
	model := OracleRequests{
		Airline:   request.Key.Airline,
		Code:      request.Key.Code,
		Departure: request.Key.Departure,
		Requester: request.Requester,
		Status:    string(entity.RequestOpen),
		Outcome:   int(entity.StatusUnknown),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to create oracle request: %w", err)
	}

	request.Index = model.ID
	request.Status = entity.RequestOpen
	request.OpenedAt = model.CreatedAt
	request.Reports = map[entity.StatusCode][]string{}
	return nil
}

// GetRequest loads a request together with the reports received so far
func (r *GormOracleRepository) GetRequest(ctx context.Context, index uint64) (*entity.OracleRequest, error) {
	var request OracleRequests
	result := r.db.WithContext(ctx).Where("id = ?", index).First(&request)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("oracle request %d: %w", index, entity.ErrNotFound)
		}
		return nil, result.Error
	}

	var responses []OracleResponses
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", index).
		Order("created_at, oracle").
		Find(&responses).Error; err != nil {
		return nil, fmt.Errorf("failed to load oracle responses: %w", err)
	}

	reports := make(map[entity.StatusCode][]string)
	for _, resp := range responses {
		code := entity.StatusCode(resp.StatusCode)
		reports[code] = append(reports[code], resp.Oracle)
	}

	return &entity.OracleRequest{
		Index: request.ID,
		Key: entity.FlightKey{
			Airline:   request.Airline,
			Code:      request.Code,
			Departure: request.Departure,
		},
		Requester: request.Requester,
		Status:    entity.RequestStatus(request.Status),
		Outcome:   entity.StatusCode(request.Outcome),
		Reports:   reports,
		OpenedAt:  request.CreatedAt,
		ClosedAt:  request.ClosedAt,
	}, nil
}

// CloseRequest marks an open request closed with the consensus outcome
func (r *GormOracleRepository) CloseRequest(ctx context.Context, index uint64, outcome entity.StatusCode, closedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&OracleRequests{}).
		Where("id = ? AND status = ?", index, string(entity.RequestOpen)).
		Updates(map[string]interface{}{
			"status":    string(entity.RequestClosed),
			"outcome":   int(outcome),
			"closed_at": closedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to close oracle request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("oracle request %d is not open", index)
	}
	return nil
}

// HasResponse reports whether oracle already answered the request
func (r *GormOracleRepository) HasResponse(ctx context.Context, index uint64, oracle string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&OracleResponses{}).
		Where("request_id = ? AND oracle = ?", index, oracle).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// AddResponse records an oracle's report
func (r *GormOracleRepository) AddResponse(ctx context.Context, index uint64, oracle string, code entity.StatusCode) error {
	model := OracleResponses{
		RequestID:  index,
		Oracle:     oracle,
		StatusCode: int(code),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to record oracle response: %w", err)
	}
	return nil
}

// CountResponses counts distinct oracles that reported code for the request
func (r *GormOracleRepository) CountResponses(ctx context.Context, index uint64, code entity.StatusCode) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&OracleResponses{}).
		Where("request_id = ? AND status_code = ?", index, int(code)).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(count), nil
}

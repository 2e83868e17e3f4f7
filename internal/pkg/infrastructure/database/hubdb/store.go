package hubdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/diwise/home-hub/internal/pkg/infrastructure/database"
	"github.com/diwise/home-hub/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNoRows      = fmt.Errorf("no rows in result set")
	ErrStoreFailed = fmt.Errorf("store failed")
)

type Stats struct {
	Homes    int64
	Devices  int64
	Entities int64
}

type Store interface {
	Initialize(ctx context.Context) error
	Close() error

	GetOrCreateHome(ctx context.Context, name, timezone string) (types.Home, error)
	GetHome(ctx context.Context, homeID string) (types.Home, error)

	UpsertDevice(ctx context.Context, device types.Device) (types.Device, error)
	GetDevice(ctx context.Context, deviceID string) (types.Device, error)
	GetDevices(ctx context.Context, conditions ...ConditionFunc) (types.Collection[types.Device], error)
	SetDevicePaired(ctx context.Context, deviceID string, pairedAt time.Time) error
	SetDeviceLastSeen(ctx context.Context, deviceID string, lastSeen time.Time) error

	UpsertEntity(ctx context.Context, entity types.Entity) (types.Entity, error)
	GetEntity(ctx context.Context, entityID string) (types.Entity, error)
	GetEntities(ctx context.Context, conditions ...ConditionFunc) (types.Collection[types.Entity], error)

	UpsertCredentials(ctx context.Context, deviceID, kind string, data []byte) error
	GetCredentials(ctx context.Context, deviceID, kind string) ([]byte, error)

	UpsertEntityState(ctx context.Context, state types.EntityState) error
	GetEntityState(ctx context.Context, entityID string) (types.EntityState, error)

	InsertTelemetry(ctx context.Context, points []types.TelemetryPoint) error
	GetTelemetry(ctx context.Context, conditions ...ConditionFunc) ([]types.TelemetryPoint, error)

	Stats(ctx context.Context) (Stats, error)
}

type store struct {
	db *gorm.DB
}

func New(ctx context.Context, connect database.ConnectorFunc) (Store, error) {
	db, err := connect()
	if err != nil {
		return nil, err
	}

	return &store{db: db}, nil
}

func (s *store) Initialize(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&Home{}, &Device{}, &Entity{}, &EntityState{}, &TelemetryPoint{}, &Credential{},
	)
}

func (s *store) Close() error {
	sqldb, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqldb.Close()
}

func (s *store) GetOrCreateHome(ctx context.Context, name, timezone string) (types.Home, error) {
	var home Home

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where(&Home{Name: name}).First(&home).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			home = Home{ID: uuid.NewString(), Name: name, Timezone: timezone}
			return tx.Create(&home).Error
		}
		return err
	})
	if err != nil {
		return types.Home{}, fmt.Errorf("%w: %s", ErrStoreFailed, err.Error())
	}

	return types.Home{ID: home.ID, Name: home.Name, Timezone: home.Timezone}, nil
}

func (s *store) GetHome(ctx context.Context, homeID string) (types.Home, error) {
	var home Home

	err := s.db.WithContext(ctx).First(&home, "id = ?", homeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Home{}, ErrNoRows
	}
	if err != nil {
		return types.Home{}, err
	}

	return types.Home{ID: home.ID, Name: home.Name, Timezone: home.Timezone}, nil
}

// UpsertDevice deduplicates on (homeID, fingerprint) first and on
// (homeID, address, vendor, model) second, inserting a new row only when
// neither matches. The returned device carries the row that won.
func (s *store) UpsertDevice(ctx context.Context, device types.Device) (types.Device, error) {
	var result Device

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if device.Fingerprint != "" {
			var existing Device
			err := tx.Where("home_id = ? AND fingerprint = ?", device.HomeID, device.Fingerprint).First(&existing).Error
			if err == nil {
				updates := map[string]any{
					"address":   device.Address,
					"name":      device.Name,
					"last_seen": device.LastSeen,
				}
				if err := tx.Model(&Device{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
					return err
				}
				existing.Address = device.Address
				existing.Name = device.Name
				existing.LastSeen = device.LastSeen
				result = existing
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if device.Address != "" {
			var existing Device
			err := tx.Where("home_id = ? AND address = ? AND vendor = ? AND model = ?",
				device.HomeID, device.Address, device.Vendor, device.Model).First(&existing).Error
			if err == nil {
				if err := tx.Model(&Device{}).Where("id = ?", existing.ID).Update("last_seen", device.LastSeen).Error; err != nil {
					return err
				}
				existing.LastSeen = device.LastSeen
				result = existing
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		row := deviceFrom(device)
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		result = row
		return nil
	})
	if err != nil {
		return types.Device{}, fmt.Errorf("%w: %s", ErrStoreFailed, err.Error())
	}

	return result.toType(), nil
}

func (s *store) GetDevice(ctx context.Context, deviceID string) (types.Device, error) {
	var device Device

	err := s.db.WithContext(ctx).First(&device, "id = ?", deviceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Device{}, ErrNoRows
	}
	if err != nil {
		return types.Device{}, err
	}

	return device.toType(), nil
}

func (s *store) GetDevices(ctx context.Context, conditions ...ConditionFunc) (types.Collection[types.Device], error) {
	c := newCondition(conditions...)

	apply := func(q *gorm.DB) *gorm.DB {
		if c.homeID != "" {
			q = q.Where("home_id = ?", c.homeID)
		}
		if c.protocol != "" {
			q = q.Where("protocol = ?", c.protocol)
		}
		return q
	}

	var total int64
	err := apply(s.db.WithContext(ctx).Model(&Device{})).Count(&total).Error
	if err != nil {
		return types.Collection[types.Device]{}, err
	}

	rows := []Device{}
	err = apply(s.db.WithContext(ctx)).Order("id").Limit(c.limit).Offset(c.offset).Find(&rows).Error
	if err != nil {
		return types.Collection[types.Device]{}, err
	}

	devices := make([]types.Device, len(rows))
	for i, row := range rows {
		devices[i] = row.toType()
	}

	return types.Collection[types.Device]{
		Data:       devices,
		Count:      uint64(len(devices)),
		Offset:     uint64(c.offset),
		Limit:      uint64(c.limit),
		TotalCount: uint64(total),
	}, nil
}

func (s *store) SetDevicePaired(ctx context.Context, deviceID string, pairedAt time.Time) error {
	return s.updateDevice(ctx, deviceID, map[string]any{"paired_at": pairedAt, "last_seen": pairedAt})
}

func (s *store) SetDeviceLastSeen(ctx context.Context, deviceID string, lastSeen time.Time) error {
	return s.updateDevice(ctx, deviceID, map[string]any{"last_seen": lastSeen})
}

func (s *store) updateDevice(ctx context.Context, deviceID string, updates map[string]any) error {
	result := s.db.WithContext(ctx).Model(&Device{}).Where("id = ?", deviceID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRows
	}
	return nil
}

// UpsertEntity is idempotent on (deviceID, key): a second descriptor with the
// same key updates name and capability but never creates a new row.
func (s *store) UpsertEntity(ctx context.Context, entity types.Entity) (types.Entity, error) {
	var result Entity

	capability, err := json.Marshal(entity.Capability)
	if err != nil {
		return types.Entity{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Entity
		err := tx.Where("device_id = ? AND key = ?", entity.DeviceID, entity.Key).First(&existing).Error
		if err == nil {
			updates := map[string]any{
				"name":       entity.Name,
				"kind":       entity.Kind,
				"capability": capability,
			}
			if err := tx.Model(&Entity{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
				return err
			}
			existing.Name = entity.Name
			existing.Kind = entity.Kind
			existing.Capability = capability
			result = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		row := Entity{
			ID:         entity.ID,
			DeviceID:   entity.DeviceID,
			HomeID:     entity.HomeID,
			Kind:       entity.Kind,
			Name:       entity.Name,
			Key:        entity.Key,
			Capability: capability,
		}
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		result = row
		return nil
	})
	if err != nil {
		return types.Entity{}, fmt.Errorf("%w: %s", ErrStoreFailed, err.Error())
	}

	return result.toType(), nil
}

func (s *store) GetEntity(ctx context.Context, entityID string) (types.Entity, error) {
	var entity Entity

	err := s.db.WithContext(ctx).First(&entity, "id = ?", entityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Entity{}, ErrNoRows
	}
	if err != nil {
		return types.Entity{}, err
	}

	return entity.toType(), nil
}

func (s *store) GetEntities(ctx context.Context, conditions ...ConditionFunc) (types.Collection[types.Entity], error) {
	c := newCondition(conditions...)

	apply := func(q *gorm.DB) *gorm.DB {
		if c.homeID != "" {
			q = q.Where("home_id = ?", c.homeID)
		}
		if c.deviceID != "" {
			q = q.Where("device_id = ?", c.deviceID)
		}
		if c.kind != "" {
			q = q.Where("kind = ?", c.kind)
		}
		return q
	}

	var total int64
	err := apply(s.db.WithContext(ctx).Model(&Entity{})).Count(&total).Error
	if err != nil {
		return types.Collection[types.Entity]{}, err
	}

	rows := []Entity{}
	err = apply(s.db.WithContext(ctx)).Order("id").Limit(c.limit).Offset(c.offset).Find(&rows).Error
	if err != nil {
		return types.Collection[types.Entity]{}, err
	}

	entities := make([]types.Entity, len(rows))
	for i, row := range rows {
		entities[i] = row.toType()
	}

	return types.Collection[types.Entity]{
		Data:       entities,
		Count:      uint64(len(entities)),
		Offset:     uint64(c.offset),
		Limit:      uint64(c.limit),
		TotalCount: uint64(total),
	}, nil
}

func (s *store) UpsertCredentials(ctx context.Context, deviceID, kind string, data []byte) error {
	row := Credential{
		DeviceID:  deviceID,
		Kind:      kind,
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: %s", ErrStoreFailed, err.Error())
	}

	return nil
}

func (s *store) GetCredentials(ctx context.Context, deviceID, kind string) ([]byte, error) {
	var credential Credential

	query := s.db.WithContext(ctx).Where("device_id = ?", deviceID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	} else {
		query = query.Order("updated_at DESC")
	}

	err := query.First(&credential).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, err
	}

	return credential.Data, nil
}

// UpsertEntityState keeps exactly one row per entity under last write wins.
// A sample older than the stored row is dropped by the update condition.
func (s *store) UpsertEntityState(ctx context.Context, state types.EntityState) error {
	b, err := json.Marshal(state.State)
	if err != nil {
		return err
	}

	row := EntityState{
		EntityID:  state.EntityID,
		State:     b,
		UpdatedAt: state.UpdatedAt,
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "excluded.updated_at >= entity_states.updated_at"},
		}},
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: %s", ErrStoreFailed, err.Error())
	}

	return nil
}

func (s *store) GetEntityState(ctx context.Context, entityID string) (types.EntityState, error) {
	var row EntityState

	err := s.db.WithContext(ctx).First(&row, "entity_id = ?", entityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.EntityState{}, ErrNoRows
	}
	if err != nil {
		return types.EntityState{}, err
	}

	state := map[string]any{}
	if len(row.State) > 0 {
		if err := json.Unmarshal(row.State, &state); err != nil {
			return types.EntityState{}, err
		}
	}

	return types.EntityState{
		EntityID:  row.EntityID,
		State:     state,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (s *store) InsertTelemetry(ctx context.Context, points []types.TelemetryPoint) error {
	if len(points) == 0 {
		return nil
	}

	rows := make([]TelemetryPoint, len(points))
	for i, p := range points {
		rows[i] = TelemetryPoint{
			EntityID: p.EntityID,
			HomeID:   p.HomeID,
			Field:    p.Field,
			Value:    p.Value,
			Unit:     p.Unit,
			Ts:       p.Ts,
		}
	}

	err := s.db.WithContext(ctx).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("%w: %s", ErrStoreFailed, err.Error())
	}

	return nil
}

func (s *store) GetTelemetry(ctx context.Context, conditions ...ConditionFunc) ([]types.TelemetryPoint, error) {
	c := newCondition(conditions...)

	query := s.db.WithContext(ctx)
	if c.entityID != "" {
		query = query.Where("entity_id = ?", c.entityID)
	}
	if c.homeID != "" {
		query = query.Where("home_id = ?", c.homeID)
	}
	if c.field != "" {
		query = query.Where("field = ?", c.field)
	}
	if !c.since.IsZero() {
		query = query.Where("ts >= ?", c.since)
	}

	rows := []TelemetryPoint{}
	err := query.Order("ts DESC").Limit(c.limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	points := make([]types.TelemetryPoint, len(rows))
	for i, row := range rows {
		points[i] = types.TelemetryPoint{
			EntityID: row.EntityID,
			HomeID:   row.HomeID,
			Field:    row.Field,
			Value:    row.Value,
			Unit:     row.Unit,
			Ts:       row.Ts,
		}
	}

	return points, nil
}

func (s *store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := s.db.WithContext(ctx).Model(&Home{}).Count(&stats.Homes).Error; err != nil {
		return Stats{}, err
	}
	if err := s.db.WithContext(ctx).Model(&Device{}).Count(&stats.Devices).Error; err != nil {
		return Stats{}, err
	}
	if err := s.db.WithContext(ctx).Model(&Entity{}).Count(&stats.Entities).Error; err != nil {
		return Stats{}, err
	}

	return stats, nil
}

func deviceFrom(d types.Device) Device {
	var fingerprint *string
	if d.Fingerprint != "" {
		fp := d.Fingerprint
		fingerprint = &fp
	}

	return Device{
		ID:          d.ID,
		HomeID:      d.HomeID,
		Fingerprint: fingerprint,
		Protocol:    d.Protocol,
		Vendor:      d.Vendor,
		Model:       d.Model,
		Name:        d.Name,
		Address:     d.Address,
		PairedAt:    d.PairedAt,
		LastSeen:    d.LastSeen,
	}
}

func (d Device) toType() types.Device {
	fingerprint := ""
	if d.Fingerprint != nil {
		fingerprint = *d.Fingerprint
	}

	return types.Device{
		ID:          d.ID,
		HomeID:      d.HomeID,
		Protocol:    d.Protocol,
		Vendor:      d.Vendor,
		Model:       d.Model,
		Name:        d.Name,
		Address:     d.Address,
		Fingerprint: fingerprint,
		PairedAt:    d.PairedAt,
		LastSeen:    d.LastSeen,
	}
}

func (e Entity) toType() types.Entity {
	capability := types.Capability{}
	if len(e.Capability) > 0 {
		_ = json.Unmarshal(e.Capability, &capability)
	}

	return types.Entity{
		ID:         e.ID,
		DeviceID:   e.DeviceID,
		HomeID:     e.HomeID,
		Kind:       e.Kind,
		Name:       e.Name,
		Key:        e.Key,
		Capability: capability,
	}
}

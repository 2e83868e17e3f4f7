package registry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diwise/home-hub/internal/pkg/application/drivers"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/database/hubdb"
	"github.com/diwise/home-hub/pkg/types"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("home-hub/registry")

var ErrHomeNotFound = fmt.Errorf("home not found")
var ErrDeviceNotFound = fmt.Errorf("device not found")
var ErrEntityNotFound = fmt.Errorf("entity not found")
var ErrCredentialsNotFound = fmt.Errorf("credentials not found")

//go:generate moq -rm -out registry_mock.go . DeviceRegistry
type DeviceRegistry interface {
	GetOrCreateHome(ctx context.Context, name, timezone string) (types.Home, error)
	GetHome(ctx context.Context, homeID string) (types.Home, error)

	UpsertDevice(ctx context.Context, homeID string, desc drivers.DeviceDescriptor) (types.Device, error)
	GetDevice(ctx context.Context, deviceID string) (types.Device, error)
	QueryDevices(ctx context.Context, homeID string, params map[string][]string) (types.Collection[types.Device], error)
	MarkDevicePaired(ctx context.Context, deviceID string) error
	UpdateDeviceLastSeen(ctx context.Context, deviceID string) error

	UpsertEntity(ctx context.Context, homeID, deviceID string, desc drivers.EntityDescriptor) (types.Entity, error)
	GetEntity(ctx context.Context, entityID string) (types.Entity, error)
	QueryEntities(ctx context.Context, homeID string, params map[string][]string) (types.Collection[types.Entity], error)

	StoreCredentials(ctx context.Context, deviceID, kind string, data []byte) error
	GetCredentials(ctx context.Context, deviceID, kind string) ([]byte, error)

	Stats(ctx context.Context) (hubdb.Stats, error)
}

type service struct {
	storage hubdb.Store
}

func New(storage hubdb.Store) DeviceRegistry {
	return service{storage: storage}
}

func (s service) GetOrCreateHome(ctx context.Context, name, timezone string) (types.Home, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-or-create-home")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	home, err := s.storage.GetOrCreateHome(ctx, name, timezone)
	if err != nil {
		return types.Home{}, err
	}

	return home, nil
}

func (s service) GetHome(ctx context.Context, homeID string) (types.Home, error) {
	home, err := s.storage.GetHome(ctx, homeID)
	if err != nil {
		if errors.Is(err, hubdb.ErrNoRows) {
			return types.Home{}, ErrHomeNotFound
		}
		return types.Home{}, err
	}

	return home, nil
}

// UpsertDevice registers or refreshes a device from a driver descriptor. The
// returned device is the surviving row, so callers can tell from PairedAt
// whether pairing is still pending.
func (s service) UpsertDevice(ctx context.Context, homeID string, desc drivers.DeviceDescriptor) (types.Device, error) {
	var err error
	ctx, span := tracer.Start(ctx, "upsert-device")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	device := types.Device{
		ID:          desc.ID,
		HomeID:      homeID,
		Protocol:    desc.Protocol,
		Vendor:      desc.Vendor,
		Model:       desc.Model,
		Name:        desc.Name,
		Address:     desc.Address,
		Fingerprint: desc.Fingerprint(),
		LastSeen:    time.Now().UTC(),
	}

	device, err = s.storage.UpsertDevice(ctx, device)
	if err != nil {
		return types.Device{}, err
	}

	return device, nil
}

func (s service) GetDevice(ctx context.Context, deviceID string) (types.Device, error) {
	device, err := s.storage.GetDevice(ctx, deviceID)
	if err != nil {
		if errors.Is(err, hubdb.ErrNoRows) {
			return types.Device{}, ErrDeviceNotFound
		}
		return types.Device{}, err
	}

	return device, nil
}

func (s service) QueryDevices(ctx context.Context, homeID string, params map[string][]string) (types.Collection[types.Device], error) {
	conditions := []hubdb.ConditionFunc{hubdb.WithHomeID(homeID)}

	for k, v := range params {
		switch strings.ToLower(k) {
		case "protocol":
			conditions = append(conditions, hubdb.WithProtocol(v[0]))
		case "limit":
			limit, _ := strconv.Atoi(v[0])
			conditions = append(conditions, hubdb.WithLimit(limit))
		case "offset":
			offset, _ := strconv.Atoi(v[0])
			conditions = append(conditions, hubdb.WithOffset(offset))
		}
	}

	return s.storage.GetDevices(ctx, conditions...)
}

func (s service) MarkDevicePaired(ctx context.Context, deviceID string) error {
	err := s.storage.SetDevicePaired(ctx, deviceID, time.Now().UTC())
	if errors.Is(err, hubdb.ErrNoRows) {
		return ErrDeviceNotFound
	}
	return err
}

func (s service) UpdateDeviceLastSeen(ctx context.Context, deviceID string) error {
	err := s.storage.SetDeviceLastSeen(ctx, deviceID, time.Now().UTC())
	if errors.Is(err, hubdb.ErrNoRows) {
		return ErrDeviceNotFound
	}
	return err
}

// UpsertEntity is idempotent on (deviceID, key). Attributes from the driver
// descriptor are kept on the capability so clients can render units, ranges
// and option lists without asking the driver.
func (s service) UpsertEntity(ctx context.Context, homeID, deviceID string, desc drivers.EntityDescriptor) (types.Entity, error) {
	var err error
	ctx, span := tracer.Start(ctx, "upsert-entity")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	attributes := make(map[string]any, len(desc.Metadata))
	for k, v := range desc.Metadata {
		attributes[k] = v
	}

	entity := types.Entity{
		ID:       desc.ID,
		DeviceID: deviceID,
		HomeID:   homeID,
		Kind:     desc.Kind,
		Name:     desc.Name,
		Key:      desc.Key(),
		Capability: types.Capability{
			Type:       desc.Kind,
			Attributes: attributes,
		},
	}

	entity, err = s.storage.UpsertEntity(ctx, entity)
	if err != nil {
		return types.Entity{}, err
	}

	return entity, nil
}

func (s service) GetEntity(ctx context.Context, entityID string) (types.Entity, error) {
	entity, err := s.storage.GetEntity(ctx, entityID)
	if err != nil {
		if errors.Is(err, hubdb.ErrNoRows) {
			return types.Entity{}, ErrEntityNotFound
		}
		return types.Entity{}, err
	}

	return entity, nil
}

func (s service) QueryEntities(ctx context.Context, homeID string, params map[string][]string) (types.Collection[types.Entity], error) {
	conditions := []hubdb.ConditionFunc{hubdb.WithHomeID(homeID)}

	for k, v := range params {
		switch strings.ToLower(k) {
		case "kind":
			conditions = append(conditions, hubdb.WithKind(v[0]))
		case "device_id", "deviceid":
			conditions = append(conditions, hubdb.WithDeviceID(v[0]))
		case "limit":
			limit, _ := strconv.Atoi(v[0])
			conditions = append(conditions, hubdb.WithLimit(limit))
		case "offset":
			offset, _ := strconv.Atoi(v[0])
			conditions = append(conditions, hubdb.WithOffset(offset))
		}
	}

	return s.storage.GetEntities(ctx, conditions...)
}

func (s service) StoreCredentials(ctx context.Context, deviceID, kind string, data []byte) error {
	return s.storage.UpsertCredentials(ctx, deviceID, kind, data)
}

func (s service) GetCredentials(ctx context.Context, deviceID, kind string) ([]byte, error) {
	data, err := s.storage.GetCredentials(ctx, deviceID, kind)
	if err != nil {
		if errors.Is(err, hubdb.ErrNoRows) {
			return nil, ErrCredentialsNotFound
		}
		return nil, err
	}

	return data, nil
}

func (s service) Stats(ctx context.Context) (hubdb.Stats, error) {
	return s.storage.Stats(ctx)
}

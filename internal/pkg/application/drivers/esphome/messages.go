package esphome

import (
	"fmt"
	"math"

	"github.com/diwise/home-hub/pkg/types"
	"google.golang.org/protobuf/encoding/protowire"
)

// Message type identifiers from the ESPHome native API schema. The numeric
// values are wire format and must match the device firmware exactly.
const (
	TypeHelloRequest       uint64 = 1
	TypeHelloResponse      uint64 = 2
	TypeConnectRequest     uint64 = 3
	TypeConnectResponse    uint64 = 4
	TypeDisconnectRequest  uint64 = 5
	TypeDisconnectResponse uint64 = 6
	TypePingRequest        uint64 = 7
	TypePingResponse       uint64 = 8
	TypeDeviceInfoRequest  uint64 = 9
	TypeDeviceInfoResponse uint64 = 10

	TypeListEntitiesRequest              uint64 = 11
	TypeListEntitiesBinarySensorResponse uint64 = 12
	TypeListEntitiesCoverResponse        uint64 = 13
	TypeListEntitiesFanResponse          uint64 = 14
	TypeListEntitiesLightResponse        uint64 = 15
	TypeListEntitiesSensorResponse       uint64 = 16
	TypeListEntitiesSwitchResponse       uint64 = 17
	TypeListEntitiesTextSensorResponse   uint64 = 18
	TypeListEntitiesDoneResponse         uint64 = 19

	TypeSubscribeStatesRequest      uint64 = 20
	TypeBinarySensorStateResponse   uint64 = 21
	TypeCoverStateResponse          uint64 = 22
	TypeFanStateResponse            uint64 = 23
	TypeLightStateResponse          uint64 = 24
	TypeSensorStateResponse         uint64 = 25
	TypeSwitchStateResponse         uint64 = 26
	TypeTextSensorStateResponse     uint64 = 27
	TypeSubscribeLogsRequest        uint64 = 28
	TypeSubscribeLogsResponse       uint64 = 29
	TypeCoverCommandRequest         uint64 = 30
	TypeFanCommandRequest           uint64 = 31
	TypeLightCommandRequest         uint64 = 32
	TypeSwitchCommandRequest        uint64 = 33
	TypeGetTimeRequest              uint64 = 36
	TypeGetTimeResponse             uint64 = 37
	TypeListEntitiesServicesResponse uint64 = 41
	TypeListEntitiesCameraResponse  uint64 = 43
	TypeListEntitiesClimateResponse uint64 = 46
	TypeClimateStateResponse        uint64 = 47
	TypeClimateCommandRequest       uint64 = 48
	TypeListEntitiesNumberResponse  uint64 = 49
	TypeNumberStateResponse         uint64 = 50
	TypeNumberCommandRequest        uint64 = 51
	TypeListEntitiesSelectResponse  uint64 = 52
	TypeSelectStateResponse         uint64 = 53
	TypeSelectCommandRequest        uint64 = 54
	TypeListEntitiesSirenResponse   uint64 = 55
	TypeSirenStateResponse          uint64 = 56
	TypeSirenCommandRequest         uint64 = 57
	TypeListEntitiesLockResponse    uint64 = 58
	TypeLockStateResponse           uint64 = 59
	TypeLockCommandRequest          uint64 = 60
	TypeListEntitiesButtonResponse  uint64 = 61
	TypeButtonCommandRequest        uint64 = 62

	TypeListEntitiesMediaPlayerResponse uint64 = 63
	TypeMediaPlayerStateResponse        uint64 = 64
	TypeMediaPlayerCommandRequest       uint64 = 65

	TypeListEntitiesAlarmControlPanelResponse uint64 = 94
	TypeAlarmControlPanelStateResponse        uint64 = 95
	TypeAlarmControlPanelCommandRequest       uint64 = 96

	TypeListEntitiesTextResponse uint64 = 97
	TypeTextStateResponse        uint64 = 98
	TypeTextCommandRequest       uint64 = 99

	TypeListEntitiesDateResponse uint64 = 100
	TypeDateStateResponse        uint64 = 101
	TypeDateCommandRequest       uint64 = 102

	TypeListEntitiesTimeResponse uint64 = 103
	TypeTimeStateResponse        uint64 = 104
	TypeTimeCommandRequest       uint64 = 105

	TypeListEntitiesEventResponse uint64 = 107
	TypeEventResponse             uint64 = 108

	TypeListEntitiesValveResponse uint64 = 109
	TypeValveStateResponse        uint64 = 110
	TypeValveCommandRequest       uint64 = 111

	TypeListEntitiesDateTimeResponse uint64 = 112
	TypeDateTimeStateResponse        uint64 = 113
	TypeDateTimeCommandRequest       uint64 = 114

	TypeListEntitiesUpdateResponse uint64 = 116
	TypeUpdateStateResponse        uint64 = 117
	TypeUpdateCommandRequest       uint64 = 118
)

// listEntityKinds maps every ListEntities*Response to the entity kind it
// announces.
var listEntityKinds = map[uint64]string{
	TypeListEntitiesBinarySensorResponse:      types.KindBinarySensor,
	TypeListEntitiesCoverResponse:             types.KindCover,
	TypeListEntitiesFanResponse:               types.KindFan,
	TypeListEntitiesLightResponse:             types.KindLight,
	TypeListEntitiesSensorResponse:            types.KindSensor,
	TypeListEntitiesSwitchResponse:            types.KindSwitch,
	TypeListEntitiesTextSensorResponse:        types.KindTextSensor,
	TypeListEntitiesCameraResponse:            types.KindCamera,
	TypeListEntitiesClimateResponse:           types.KindClimate,
	TypeListEntitiesNumberResponse:            types.KindNumber,
	TypeListEntitiesSelectResponse:            types.KindSelect,
	TypeListEntitiesSirenResponse:             types.KindSiren,
	TypeListEntitiesLockResponse:              types.KindLock,
	TypeListEntitiesButtonResponse:            types.KindButton,
	TypeListEntitiesMediaPlayerResponse:       types.KindMediaPlayer,
	TypeListEntitiesAlarmControlPanelResponse: types.KindAlarmControlPanel,
	TypeListEntitiesTextResponse:              types.KindText,
	TypeListEntitiesDateResponse:              types.KindDate,
	TypeListEntitiesTimeResponse:              types.KindTime,
	TypeListEntitiesEventResponse:             types.KindEvent,
	TypeListEntitiesValveResponse:             types.KindValve,
	TypeListEntitiesDateTimeResponse:          types.KindDateTime,
	TypeListEntitiesUpdateResponse:            types.KindUpdate,
}

// stateKinds maps every *StateResponse to the kind whose normalization rules
// apply to its payload.
var stateKinds = map[uint64]string{
	TypeBinarySensorStateResponse:      types.KindBinarySensor,
	TypeCoverStateResponse:             types.KindCover,
	TypeFanStateResponse:               types.KindFan,
	TypeLightStateResponse:             types.KindLight,
	TypeSensorStateResponse:            types.KindSensor,
	TypeSwitchStateResponse:            types.KindSwitch,
	TypeTextSensorStateResponse:        types.KindTextSensor,
	TypeClimateStateResponse:           types.KindClimate,
	TypeNumberStateResponse:            types.KindNumber,
	TypeSelectStateResponse:            types.KindSelect,
	TypeSirenStateResponse:             types.KindSiren,
	TypeLockStateResponse:              types.KindLock,
	TypeMediaPlayerStateResponse:       types.KindMediaPlayer,
	TypeAlarmControlPanelStateResponse: types.KindAlarmControlPanel,
	TypeTextStateResponse:              types.KindText,
	TypeDateStateResponse:              types.KindDate,
	TypeTimeStateResponse:              types.KindTime,
	TypeEventResponse:                  types.KindEvent,
	TypeValveStateResponse:             types.KindValve,
	TypeDateTimeStateResponse:          types.KindDateTime,
	TypeUpdateStateResponse:            types.KindUpdate,
}

type field struct {
	num     protowire.Number
	typ     protowire.Type
	varint  uint64
	fixed32 uint32
	fixed64 uint64
	bytes   []byte
}

func (f field) bool() bool       { return f.varint != 0 }
func (f field) float() float64   { return float64(math.Float32frombits(f.fixed32)) }
func (f field) text() string     { return string(f.bytes) }

// walkFields iterates the top level fields of an encoded protobuf message.
func walkFields(payload []byte, fn func(f field)) error {
	for len(payload) > 0 {
		num, typ, n := protowire.ConsumeTag(payload)
		if n < 0 {
			return protowire.ParseError(n)
		}
		payload = payload[n:]

		f := field{num: num, typ: typ}

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(payload)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.varint = v
			payload = payload[n:]
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(payload)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.fixed32 = v
			payload = payload[n:]
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(payload)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.fixed64 = v
			payload = payload[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(payload)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.bytes = v
			payload = payload[n:]
		default:
			return fmt.Errorf("unsupported wire type %d for field %d", typ, num)
		}

		fn(f)
	}

	return nil
}

type helloResponse struct {
	APIVersionMajor uint32
	APIVersionMinor uint32
	ServerInfo      string
	Name            string
}

func encodeHelloRequest(clientInfo string, major, minor uint32) []byte {
	buf := protowire.AppendTag(nil, 1, protowire.BytesType)
	buf = protowire.AppendString(buf, clientInfo)
	buf = protowire.AppendTag(buf, 2, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(major))
	buf = protowire.AppendTag(buf, 3, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(minor))
	return buf
}

func decodeHelloResponse(payload []byte) (helloResponse, error) {
	var hello helloResponse

	err := walkFields(payload, func(f field) {
		switch f.num {
		case 1:
			hello.APIVersionMajor = uint32(f.varint)
		case 2:
			hello.APIVersionMinor = uint32(f.varint)
		case 3:
			hello.ServerInfo = f.text()
		case 4:
			hello.Name = f.text()
		}
	})

	return hello, err
}

func encodeConnectRequest(password string) []byte {
	if password == "" {
		return nil
	}
	buf := protowire.AppendTag(nil, 1, protowire.BytesType)
	return protowire.AppendString(buf, password)
}

func decodeConnectResponse(payload []byte) (invalidPassword bool, err error) {
	err = walkFields(payload, func(f field) {
		if f.num == 1 {
			invalidPassword = f.bool()
		}
	})
	return invalidPassword, err
}

type deviceInfo struct {
	Name           string
	MacAddress     string
	ESPHomeVersion string
	Model          string
	Manufacturer   string
	FriendlyName   string
}

func decodeDeviceInfoResponse(payload []byte) (deviceInfo, error) {
	var info deviceInfo

	err := walkFields(payload, func(f field) {
		switch f.num {
		case 2:
			info.Name = f.text()
		case 3:
			info.MacAddress = f.text()
		case 4:
			info.ESPHomeVersion = f.text()
		case 6:
			info.Model = f.text()
		case 12:
			info.Manufacturer = f.text()
		case 13:
			info.FriendlyName = f.text()
		}
	})

	return info, err
}

// entityInfo is the common shape shared by every ListEntities*Response. The
// per kind extras the hub cares about land in Extras.
type entityInfo struct {
	ObjectID string
	Key      uint32
	Name     string
	UniqueID string
	Kind     string
	Extras   map[string]string
}

func decodeListEntitiesResponse(msgType uint64, payload []byte) (entityInfo, bool, error) {
	kind, ok := listEntityKinds[msgType]
	if !ok {
		return entityInfo{}, false, nil
	}

	info := entityInfo{Kind: kind, Extras: map[string]string{}}

	err := walkFields(payload, func(f field) {
		switch f.num {
		case 1:
			info.ObjectID = f.text()
		case 2:
			info.Key = f.fixed32
		case 3:
			info.Name = f.text()
		case 4:
			info.UniqueID = f.text()
		default:
			decodeEntityExtras(kind, f, info.Extras)
		}
	})

	return info, true, err
}

// decodeEntityExtras keeps the per kind attributes that matter to clients.
// Field numbers beyond the shared prefix differ per message, hence the
// switch on kind.
func decodeEntityExtras(kind string, f field, extras map[string]string) {
	switch kind {
	case types.KindSensor:
		switch f.num {
		case 6:
			extras["unit"] = f.text()
		case 9:
			extras["device_class"] = f.text()
		}
	case types.KindNumber:
		switch f.num {
		case 6:
			extras["min"] = formatFloat(f.float())
		case 7:
			extras["max"] = formatFloat(f.float())
		case 8:
			extras["step"] = formatFloat(f.float())
		}
	case types.KindBinarySensor, types.KindCover, types.KindSwitch:
		if f.num == 5 && f.typ == protowire.BytesType {
			extras["device_class"] = f.text()
		}
	}
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}

// decodeStateResponse normalizes a *StateResponse payload into the per kind
// state shape the rest of the hub speaks. The bool result tells whether the
// message type was a state response at all.
func decodeStateResponse(msgType uint64, payload []byte) (uint32, map[string]any, bool, error) {
	kind, ok := stateKinds[msgType]
	if !ok {
		return 0, nil, false, nil
	}

	var key uint32
	state := map[string]any{}
	var red, green, blue float64
	var hasColor bool

	err := walkFields(payload, func(f field) {
		if f.num == 1 && f.typ == protowire.Fixed32Type {
			key = f.fixed32
			return
		}

		switch kind {
		case types.KindBinarySensor, types.KindSwitch:
			if f.num == 2 {
				state["state"] = f.bool()
			}
		case types.KindSensor:
			if f.num == 2 {
				state["value"] = f.float()
			}
		case types.KindTextSensor, types.KindSelect, types.KindText:
			if f.num == 2 {
				state["state"] = f.text()
			}
		case types.KindNumber:
			if f.num == 2 {
				state["value"] = f.float()
			}
		case types.KindLight:
			switch f.num {
			case 2:
				state["state"] = f.bool()
			case 3:
				state["brightness"] = f.float()
			case 4:
				red = f.float()
				hasColor = true
			case 5:
				green = f.float()
				hasColor = true
			case 6:
				blue = f.float()
				hasColor = true
			case 8:
				state["color_temp"] = f.float()
			}
		case types.KindCover:
			switch f.num {
			case 3:
				position := f.float()
				state["position"] = position
				if position > 0 {
					state["state"] = "open"
				} else {
					state["state"] = "closed"
				}
			}
		case types.KindFan:
			switch f.num {
			case 2:
				state["state"] = f.bool()
			case 6:
				state["speed"] = int(int32(f.varint))
			}
		case types.KindClimate:
			switch f.num {
			case 3:
				state["current_temperature"] = f.float()
			case 4:
				state["target_temperature"] = f.float()
			}
		case types.KindLock:
			if f.num == 2 {
				state["state"] = lockStateName(f.varint)
			}
		case types.KindValve:
			if f.num == 2 && f.typ == protowire.Fixed32Type {
				state["position"] = float64(math.Float32frombits(f.fixed32))
			}
		default:
			if f.num == 2 {
				switch f.typ {
				case protowire.VarintType:
					state["state"] = f.varint
				case protowire.Fixed32Type:
					state["value"] = f.float()
				case protowire.BytesType:
					state["state"] = f.text()
				}
			}
		}
	})
	if err != nil {
		return 0, nil, false, err
	}

	if kind == types.KindLight && hasColor {
		state["color"] = map[string]any{
			"r": int(math.Round(red * 255)),
			"g": int(math.Round(green * 255)),
			"b": int(math.Round(blue * 255)),
		}
	}

	return key, state, true, nil
}

func lockStateName(v uint64) string {
	switch v {
	case 1:
		return "locked"
	case 2:
		return "unlocked"
	case 3:
		return "jammed"
	case 4:
		return "locking"
	case 5:
		return "unlocking"
	default:
		return "none"
	}
}

const (
	lockCommandUnlock uint64 = 0
	lockCommandLock   uint64 = 1
	lockCommandOpen   uint64 = 2
)

func appendKey(buf []byte, key uint32) []byte {
	buf = protowire.AppendTag(buf, 1, protowire.Fixed32Type)
	return protowire.AppendFixed32(buf, key)
}

func appendBoolField(buf []byte, num protowire.Number, v bool) []byte {
	buf = protowire.AppendTag(buf, num, protowire.VarintType)
	if v {
		return protowire.AppendVarint(buf, 1)
	}
	return protowire.AppendVarint(buf, 0)
}

func appendFloatField(buf []byte, num protowire.Number, v float64) []byte {
	buf = protowire.AppendTag(buf, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(buf, math.Float32bits(float32(v)))
}

func encodeSwitchCommand(key uint32, on bool) []byte {
	buf := appendKey(nil, key)
	return appendBoolField(buf, 2, on)
}

type lightCommand struct {
	HasState      bool
	State         bool
	HasBrightness bool
	Brightness    float64
	HasRGB        bool
	Red           float64
	Green         float64
	Blue          float64
	HasColorTemp  bool
	ColorTemp     float64
}

func encodeLightCommand(key uint32, cmd lightCommand) []byte {
	buf := appendKey(nil, key)

	if cmd.HasState {
		buf = appendBoolField(buf, 2, true)
		buf = appendBoolField(buf, 3, cmd.State)
	}
	if cmd.HasBrightness {
		buf = appendBoolField(buf, 4, true)
		buf = appendFloatField(buf, 5, cmd.Brightness)
	}
	if cmd.HasRGB {
		buf = appendBoolField(buf, 6, true)
		buf = appendFloatField(buf, 7, cmd.Red)
		buf = appendFloatField(buf, 8, cmd.Green)
		buf = appendFloatField(buf, 9, cmd.Blue)
	}
	if cmd.HasColorTemp {
		buf = appendBoolField(buf, 12, true)
		buf = appendFloatField(buf, 13, cmd.ColorTemp)
	}

	return buf
}

func encodeButtonCommand(key uint32) []byte {
	return appendKey(nil, key)
}

func encodeNumberCommand(key uint32, value float64) []byte {
	buf := appendKey(nil, key)
	return appendFloatField(buf, 2, value)
}

func encodeSelectCommand(key uint32, option string) []byte {
	buf := appendKey(nil, key)
	buf = protowire.AppendTag(buf, 2, protowire.BytesType)
	return protowire.AppendString(buf, option)
}

type fanCommand struct {
	HasState      bool
	State         bool
	HasSpeedLevel bool
	SpeedLevel    int32
}

func encodeFanCommand(key uint32, cmd fanCommand) []byte {
	buf := appendKey(nil, key)

	if cmd.HasState {
		buf = appendBoolField(buf, 2, true)
		buf = appendBoolField(buf, 3, cmd.State)
	}
	if cmd.HasSpeedLevel {
		buf = appendBoolField(buf, 10, true)
		buf = protowire.AppendTag(buf, 11, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(cmd.SpeedLevel))
	}

	return buf
}

func encodeCoverPositionCommand(key uint32, position float64) []byte {
	buf := appendKey(nil, key)
	buf = appendBoolField(buf, 4, true)
	return appendFloatField(buf, 5, position)
}

func encodeClimateTemperatureCommand(key uint32, target float64) []byte {
	buf := appendKey(nil, key)
	buf = appendBoolField(buf, 4, true)
	return appendFloatField(buf, 5, target)
}

func encodeLockCommand(key uint32, command uint64) []byte {
	buf := appendKey(nil, key)
	buf = protowire.AppendTag(buf, 2, protowire.VarintType)
	return protowire.AppendVarint(buf, command)
}

func encodeSubscribeLogsRequest(level uint64) []byte {
	buf := protowire.AppendTag(nil, 1, protowire.VarintType)
	return protowire.AppendVarint(buf, level)
}

func decodeSubscribeLogsResponse(payload []byte) (string, error) {
	var message string

	err := walkFields(payload, func(f field) {
		if f.num == 3 {
			message = f.text()
		}
	})

	return message, err
}

func encodeGetTimeResponse(epochSeconds uint32) []byte {
	buf := protowire.AppendTag(nil, 1, protowire.Fixed32Type)
	return protowire.AppendFixed32(buf, epochSeconds)
}

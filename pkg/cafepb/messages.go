package cafepb

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/billing"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
)

// TableList answers Dispatch and ListTables.
type TableList struct {
	Tables []models.TableSession `json:"tables"`
}

// RateQuery asks for the current hourly rate of a console tier.
type RateQuery struct {
	PSModel         models.PSModel         `json:"psModel"`
	ControllerCount models.ControllerCount `json:"controllerCount"`
}

// BillingFrame is one WatchBilling message.
type BillingFrame struct {
	At      int64          `json:"at"`
	Entries []BillingEntry `json:"entries"`
}

type BillingEntry struct {
	Table      models.TableSession `json:"table"`
	Projection billing.Projection  `json:"projection"`
}

func NewBillingFrame(at int64, entries []billing.Entry) BillingFrame {
	frame := BillingFrame{At: at, Entries: make([]BillingEntry, len(entries))}
	for i, e := range entries {
		frame.Entries[i] = BillingEntry{Table: e.Table, Projection: e.Projection}
	}
	return frame
}

// ToStruct converts any JSON-encodable object into a Struct message.
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cafepb: encode: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("cafepb: to struct: %w", err)
	}
	return s, nil
}

// FromStruct decodes a Struct message into dst.
func FromStruct(s *structpb.Struct, dst any) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("cafepb: from struct: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("cafepb: decode: %w", err)
	}
	return nil
}

// FromStructJSON returns the raw JSON form of s.
func FromStructJSON(s *structpb.Struct) ([]byte, error) {
	return protojson.Marshal(s)
}

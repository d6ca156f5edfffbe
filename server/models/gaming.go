package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type PSModel string

const (
	PS3 PSModel = "ps3"
	PS4 PSModel = "ps4"
	PS5 PSModel = "ps5"
)

// PSModels lists the supported consoles in display order.
var PSModels = []PSModel{PS3, PS4, PS5}

func (m PSModel) Valid() bool {
	switch m {
	case PS3, PS4, PS5:
		return true
	}
	return false
}

func (m *PSModel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !PSModel(s).Valid() {
		return fmt.Errorf("unknown console model %q", s)
	}
	*m = PSModel(s)
	return nil
}

type ControllerCount int

const (
	TwoControllers  ControllerCount = 2
	FourControllers ControllerCount = 4
)

var ControllerCounts = []ControllerCount{TwoControllers, FourControllers}

func (c ControllerCount) Valid() bool {
	return c == TwoControllers || c == FourControllers
}

func (c *ControllerCount) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if !ControllerCount(n).Valid() {
		return fmt.Errorf("unsupported controller count %d", n)
	}
	*c = ControllerCount(n)
	return nil
}

// GamingConfig is the rate snapshot taken when a session starts. Later
// pricing edits never touch it.
type GamingConfig struct {
	PSModel         PSModel         `json:"psModel"`
	ControllerCount ControllerCount `json:"controllerCount"`
	HourlyRate      decimal.Decimal `json:"hourlyRate"`
}

type PricingRule struct {
	ID              string          `json:"id"`
	PSModel         PSModel         `json:"psModel"`
	ControllerCount ControllerCount `json:"controllerCount"`
	HourlyRate      decimal.Decimal `json:"hourlyRate"`
}

// RuleID builds the conventional "<model>-<controllers>" rule identifier.
func RuleID(model PSModel, count ControllerCount) string {
	return fmt.Sprintf("%s-%d", model, count)
}

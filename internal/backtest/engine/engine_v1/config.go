package engine

import (
	"encoding/json"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-execution/internal/backtest/engine/engine_v1/slippage"
	"github.com/rxtech-lab/argo-execution/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TrailingStopConfig activates a trailing stop once the close is Trigger %
// beyond entry and then trails the best close by Trail %.
type TrailingStopConfig struct {
	Trigger float64 `yaml:"trigger" json:"trigger" validate:"gt=0" jsonschema:"title=Trigger,description=Favorable move from entry in percent that activates the trailing stop,exclusiveMinimum=0"`
	Trail   float64 `yaml:"trail" json:"trail" validate:"gt=0,lt=100" jsonschema:"title=Trail,description=Distance of the stop behind the best close in percent,exclusiveMinimum=0,exclusiveMaximum=100"`
}

// AutoStopConfig lists the exit rules evaluated on every open position each bar.
// Every rule is optional; percentages are relative to the entry price.
type AutoStopConfig struct {
	StopLoss              *float64            `yaml:"stop_loss,omitempty" json:"stop_loss,omitempty" validate:"omitempty,gt=0,lt=100" jsonschema:"title=Stop Loss,description=Stop loss for long and short positions in percent,exclusiveMinimum=0,exclusiveMaximum=100"`
	StopLossLong          *float64            `yaml:"stop_loss_long,omitempty" json:"stop_loss_long,omitempty" validate:"omitempty,gt=0,lt=100" jsonschema:"title=Stop Loss Long,description=Stop loss for long positions in percent,exclusiveMinimum=0,exclusiveMaximum=100"`
	StopLossShort         *float64            `yaml:"stop_loss_short,omitempty" json:"stop_loss_short,omitempty" validate:"omitempty,gt=0" jsonschema:"title=Stop Loss Short,description=Stop loss for short positions in percent"`
	ProfitTarget          *float64            `yaml:"profit_target,omitempty" json:"profit_target,omitempty" validate:"omitempty,gt=0,lt=100" jsonschema:"title=Profit Target,description=Profit target for long and short positions in percent,exclusiveMinimum=0,exclusiveMaximum=100"`
	ProfitTargetLong      *float64            `yaml:"profit_target_long,omitempty" json:"profit_target_long,omitempty" validate:"omitempty,gt=0" jsonschema:"title=Profit Target Long,description=Profit target for long positions in percent"`
	ProfitTargetShort     *float64            `yaml:"profit_target_short,omitempty" json:"profit_target_short,omitempty" validate:"omitempty,gt=0,lt=100" jsonschema:"title=Profit Target Short,description=Profit target for short positions in percent,exclusiveMinimum=0,exclusiveMaximum=100"`
	BreakEven             *float64            `yaml:"break_even,omitempty" json:"break_even,omitempty" validate:"omitempty,gt=0" jsonschema:"title=Break Even,description=Favorable move in percent after which the position exits at its entry price"`
	BreakEvenLong         *float64            `yaml:"break_even_long,omitempty" json:"break_even_long,omitempty" validate:"omitempty,gt=0" jsonschema:"title=Break Even Long"`
	BreakEvenShort        *float64            `yaml:"break_even_short,omitempty" json:"break_even_short,omitempty" validate:"omitempty,gt=0" jsonschema:"title=Break Even Short"`
	ReverseBreakEven      *float64            `yaml:"reverse_break_even,omitempty" json:"reverse_break_even,omitempty" validate:"omitempty,gt=0" jsonschema:"title=Reverse Break Even,description=Adverse move in percent after which the position exits at its entry price"`
	ReverseBreakEvenLong  *float64            `yaml:"reverse_break_even_long,omitempty" json:"reverse_break_even_long,omitempty" validate:"omitempty,gt=0" jsonschema:"title=Reverse Break Even Long"`
	ReverseBreakEvenShort *float64            `yaml:"reverse_break_even_short,omitempty" json:"reverse_break_even_short,omitempty" validate:"omitempty,gt=0" jsonschema:"title=Reverse Break Even Short"`
	TrailingStop          *TrailingStopConfig `yaml:"trailing_stop,omitempty" json:"trailing_stop,omitempty" jsonschema:"title=Trailing Stop"`
	TimeExitAtMarket      *int                `yaml:"time_exit_at_market,omitempty" json:"time_exit_at_market,omitempty" validate:"omitempty,gt=0" jsonschema:"title=Time Exit At Market,description=Bars after entry at which the position exits at the open"`
	TimeExitAtClose       *int                `yaml:"time_exit_at_close,omitempty" json:"time_exit_at_close,omitempty" validate:"omitempty,gt=0" jsonschema:"title=Time Exit At Close,description=Bars after entry at which the position exits at the close"`
}

type PositionManagerConfig struct {
	StartTrades      optional.Option[time.Time] `yaml:"start_trades" json:"start_trades" jsonschema:"title=Start Trades,description=Orders on bars before this time do not fill"`
	EndTrades        optional.Option[time.Time] `yaml:"end_trades" json:"end_trades" jsonschema:"title=End Trades,description=Orders on bars at or after this time do not fill"`
	AcceptVolumeZero bool                       `yaml:"accept_volume_zero" json:"accept_volume_zero" jsonschema:"title=Accept Volume Zero,description=Allow fills on bars without volume"`
	Broker           commission_fee.Broker      `yaml:"broker" json:"broker" validate:"omitempty,oneof=interactive_broker zero_commission percentage fixed" jsonschema:"title=Broker,description=The broker to use for commission calculations"`
	CommissionRate   float64                    `yaml:"commission_rate" json:"commission_rate" validate:"gte=0" jsonschema:"title=Commission Rate,description=Percent of traded value for the percentage broker or amount per order for the fixed broker,minimum=0"`
	Slippage         slippage.Model             `yaml:"slippage" json:"slippage" validate:"omitempty,oneof=none fixed percentage volume_impact" jsonschema:"title=Slippage,description=The slippage model"`
	SlippageValue    float64                    `yaml:"slippage_value" json:"slippage_value" validate:"gte=0" jsonschema:"title=Slippage Value,description=Amount per share for fixed slippage or percent of price for the other models,minimum=0"`
	AutoStops        AutoStopConfig             `yaml:"auto_stops" json:"auto_stops" jsonschema:"title=Auto Stops,description=Exit rules applied to every open position on every bar"`
	SystemID         string                     `yaml:"system_id" json:"system_id" jsonschema:"title=System ID,description=Identity stamped on emitted signals"`
}

// yamlConfig is the on-disk form of PositionManagerConfig; yaml.v3 cannot
// encode optional values directly.
type yamlConfig struct {
	StartTrades      *time.Time            `yaml:"start_trades,omitempty"`
	EndTrades        *time.Time            `yaml:"end_trades,omitempty"`
	AcceptVolumeZero bool                  `yaml:"accept_volume_zero"`
	Broker           commission_fee.Broker `yaml:"broker"`
	CommissionRate   float64               `yaml:"commission_rate"`
	Slippage         slippage.Model        `yaml:"slippage"`
	SlippageValue    float64               `yaml:"slippage_value"`
	AutoStops        AutoStopConfig        `yaml:"auto_stops"`
	SystemID         string                `yaml:"system_id,omitempty"`
}

// MarshalYAML implements custom marshaling for PositionManagerConfig
func (c PositionManagerConfig) MarshalYAML() (any, error) {
	config := yamlConfig{
		AcceptVolumeZero: c.AcceptVolumeZero,
		Broker:           c.Broker,
		CommissionRate:   c.CommissionRate,
		Slippage:         c.Slippage,
		SlippageValue:    c.SlippageValue,
		AutoStops:        c.AutoStops,
		SystemID:         c.SystemID,
	}

	if start, err := c.StartTrades.Take(); err == nil {
		config.StartTrades = &start
	}

	if end, err := c.EndTrades.Take(); err == nil {
		config.EndTrades = &end
	}

	return config, nil
}

// UnmarshalYAML implements custom unmarshaling for PositionManagerConfig
func (c *PositionManagerConfig) UnmarshalYAML(value *yaml.Node) error {
	var config yamlConfig
	if err := value.Decode(&config); err != nil {
		return err
	}

	c.StartTrades = optional.None[time.Time]()
	if config.StartTrades != nil {
		c.StartTrades = optional.Some(*config.StartTrades)
	}

	c.EndTrades = optional.None[time.Time]()
	if config.EndTrades != nil {
		c.EndTrades = optional.Some(*config.EndTrades)
	}

	c.AcceptVolumeZero = config.AcceptVolumeZero
	c.Broker = config.Broker
	c.CommissionRate = config.CommissionRate
	c.Slippage = config.Slippage
	c.SlippageValue = config.SlippageValue
	c.AutoStops = config.AutoStops
	c.SystemID = config.SystemID

	return nil
}

// Validate checks the struct tags and the trading window.
func (c PositionManagerConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid position manager config", err)
	}

	if c.StartTrades.IsSome() && c.EndTrades.IsSome() && !c.StartTrades.Unwrap().Before(c.EndTrades.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "start_trades must be before end_trades")
	}

	return nil
}

// ParseConfig decodes and validates a YAML config.
func ParseConfig(data []byte) (PositionManagerConfig, error) {
	config := EmptyConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// LoadConfig reads and validates the YAML config at path.
func LoadConfig(path string) (PositionManagerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EmptyConfig(), errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return ParseConfig(data)
}

// GenerateSchema generates a JSON schema for the PositionManagerConfig
func (c *PositionManagerConfig) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if strings.Contains(t.String(), "commission_fee.Broker") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			}

			if strings.Contains(t.String(), "slippage.Model") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: slippage.AllModels,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "position-manager-config"
	schema.Description = "Configuration schema for the position manager"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the PositionManagerConfig
func (c *PositionManagerConfig) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// TestConfig returns a config with a trading window and the given broker.
func TestConfig(startTrades time.Time, endTrades time.Time, broker commission_fee.Broker) PositionManagerConfig {
	config := EmptyConfig()
	config.StartTrades = optional.Some(startTrades)
	config.EndTrades = optional.Some(endTrades)
	config.Broker = broker

	return config
}

// EmptyConfig returns a PositionManagerConfig with default values
func EmptyConfig() PositionManagerConfig {
	return PositionManagerConfig{
		StartTrades:      optional.None[time.Time](),
		EndTrades:        optional.None[time.Time](),
		AcceptVolumeZero: false,
		Broker:           commission_fee.BrokerZero,
		CommissionRate:   0,
		Slippage:         slippage.ModelNone,
		SlippageValue:    0,
		AutoStops:        AutoStopConfig{},
		SystemID:         "",
	}
}

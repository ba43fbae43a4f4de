package config

import "encoding/json"

// LinRxConfig is supplied on the {"config","linrx"} bus topic. The bit
// rate itself is fixed at boot; the runtime overrides are all in bit
// units, so they hold at any rate.
type LinRxConfig struct {
	// DrainIntervalMS sets how often the consumer side polls the hand-off
	// slot. Default 5.
	DrainIntervalMS int `json:"drain_interval_ms,omitempty"`

	// Receive timing overrides, applied between frames; zero keeps the
	// current receiver value.
	BreakThresholdBits   uint8 `json:"break_threshold_bits,omitempty"`
	InterByteTimeoutBits uint8 `json:"inter_byte_timeout_bits,omitempty"`
}

func (c *LinRxConfig) ApplyDefaults() {
	if c.DrainIntervalMS <= 0 {
		c.DrainIntervalMS = 5
	}
}

// Decode accepts the payload shapes the bus delivers: raw JSON bytes, a
// JSON string, or an already-decoded value.
func Decode(src any) (LinRxConfig, error) {
	var cfg LinRxConfig
	var err error
	switch v := src.(type) {
	case []byte:
		err = json.Unmarshal(v, &cfg)
	case string:
		err = json.Unmarshal([]byte(v), &cfg)
	default:
		var b []byte
		if b, err = json.Marshal(v); err == nil {
			err = json.Unmarshal(b, &cfg)
		}
	}
	if err != nil {
		return LinRxConfig{}, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

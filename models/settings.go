package models

import (
	"time"

	"gorm.io/datatypes"
)

// SettingsOptionName is the option row holding the gateway settings.
const SettingsOptionName = "woocommerce_" + GatewayID + "_settings"

// Option is a named settings object persisted as JSON.
type Option struct {
	Name      string            `gorm:"primaryKey;size:191" json:"name"`
	Value     datatypes.JSONMap `gorm:"type:jsonb" json:"value"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// GatewaySettings is the decoded form of the gateway settings option. On disk
// every flag is stored as "yes" or "no".
type GatewaySettings struct {
	Enabled         bool   `json:"enabled"`
	OrderManagement bool   `json:"order_management"`
	MerchantID      string `json:"merchant_id"`
	APIKey          string `json:"-"`
	TestMode        bool   `json:"testmode"`
	ColorScheme     string `json:"color_scheme,omitempty"`
	Locale          string `json:"locale,omitempty"`
	Debug           bool   `json:"debug"`
}

// SettingsFromOption decodes an option value. Missing keys keep their zero
// value, so an absent "enabled" means the gateway is off.
func SettingsFromOption(v datatypes.JSONMap) GatewaySettings {
	return GatewaySettings{
		Enabled:         yes(v["enabled"]),
		OrderManagement: yes(v["order_management"]),
		MerchantID:      str(v["merchant_id"]),
		APIKey:          str(v["api_key"]),
		TestMode:        yes(v["testmode"]),
		ColorScheme:     str(v["color_scheme"]),
		Locale:          str(v["locale"]),
		Debug:           yes(v["debug"]),
	}
}

// Option encodes the settings the way they are persisted.
func (s GatewaySettings) Option() datatypes.JSONMap {
	return datatypes.JSONMap{
		"enabled":          yesNo(s.Enabled),
		"order_management": yesNo(s.OrderManagement),
		"merchant_id":      s.MerchantID,
		"api_key":          s.APIKey,
		"testmode":         yesNo(s.TestMode),
		"color_scheme":     s.ColorScheme,
		"locale":           s.Locale,
		"debug":            yesNo(s.Debug),
	}
}

func yes(v interface{}) bool {
	s, _ := v.(string)
	return s == "yes"
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultInterval = time.Minute

// hhmmssRegex matches the "HH:MM:SS" interval notation used by the
// vendor mobile app configuration exports.
var hhmmssRegex = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)

type AppConfig struct {
	System   SysConfig       `yaml:"system"`
	Logger   LogConfig       `yaml:"logger"`
	Accounts []AccountConfig `yaml:"accounts"`
}

type SysConfig struct {
	Workdir  string `yaml:"workdir"`
	Location string `yaml:"location"`
	Debug    bool   `yaml:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// DeviceOverride carries per-device constants that cannot be obtained
// from the vendor API, matched to a device by MAC address.
type DeviceOverride struct {
	Name             string  `yaml:"name"`
	Mac              string  `yaml:"mac"`
	EmptyWeight      float64 `yaml:"empty_weight"`
	MaxLitterSamples int     `yaml:"max_litter_samples"`
}

type AccountConfig struct {
	Phone          string           `yaml:"phone"`
	PhoneIAC       string           `yaml:"phone_iac"`
	Password       string           `yaml:"password"`
	Region         string           `yaml:"region"`
	APIBase        string           `yaml:"api_base"`
	Language       string           `yaml:"language"`
	TimezoneID     string           `yaml:"timezone_id"`
	UpdateInterval string           `yaml:"update_interval"`
	DeviceIDs      []string         `yaml:"device_ids"`
	Devices        []DeviceOverride `yaml:"devices"`
}

// UID returns the stable account identity used to key persisted state.
func (c AccountConfig) UID() string {
	return fmt.Sprintf("%s-%s", c.PhoneIAC, c.Phone)
}

// PollInterval parses the configured update interval. Accepts "HH:MM:SS",
// a Go duration string or a plain number of seconds; anything invalid or
// non-positive falls back to one minute.
func (c AccountConfig) PollInterval() time.Duration {
	s := c.UpdateInterval
	if s == "" {
		return DefaultInterval
	}
	if hhmmssRegex.MatchString(s) {
		h, _ := strconv.Atoi(s[:2])
		m, _ := strconv.Atoi(s[3:5])
		sec, _ := strconv.Atoi(s[6:8])
		d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second
		if d > 0 {
			return d
		}
		return DefaultInterval
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d > 0 {
			return d
		}
		return DefaultInterval
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if n > 0 {
			return time.Duration(n) * time.Second
		}
		return DefaultInterval
	}
	return DefaultInterval
}

// Override returns the device override matching the given MAC, or nil.
func (c AccountConfig) Override(mac string) *DeviceOverride {
	if mac == "" {
		return nil
	}
	for i := range c.Devices {
		if c.Devices[i].Mac == mac {
			return &c.Devices[i]
		}
	}
	return nil
}

func LoadConfig(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.System.Workdir == "" {
		c.System.Workdir = "/var/catbridge"
	}
	if c.System.Location == "" {
		c.System.Location = "Asia/Shanghai"
	}
	if c.Logger.Mode == "" {
		c.Logger.Mode = "development"
	}
	if c.Logger.Filename == "" {
		c.Logger.Filename = c.System.Workdir + "/catbridge.log"
	}
	for i := range c.Accounts {
		if c.Accounts[i].PhoneIAC == "" {
			c.Accounts[i].PhoneIAC = "86"
		}
		if c.Accounts[i].Language == "" {
			c.Accounts[i].Language = "en_GB"
		}
	}
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Zusi struct {
	Host string
	Port uint16
}

type Tsw6 struct {
	Url     string
	KeyFile string
}

type Serial struct {
	// Port is "auto" for USB VID/PID detection or a device name
	Port string
}

type Panel struct {
	Port int
}

type Configuration struct {
	// Source selects the active simulator: "zusi3" or "tsw6"
	Source string
	Zusi   Zusi
	Tsw6   Tsw6
	Serial Serial
	Panel  Panel

	// Profile is the ID of the rule profile activated at startup; empty
	// selects the source's default profile
	Profile string
}

func NewConfig() (*Configuration, error) {
	config := Configuration{}

	// application configuration
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName(".trainbridge")
	v.AddConfigPath("$HOME/")
	v.AddConfigPath(".")
	_ = v.SafeWriteConfig()

	v.SetDefault("source", "zusi3")
	v.SetDefault("zusi.host", "127.0.0.1")
	v.SetDefault("zusi.port", 1436)
	v.SetDefault("tsw6.url", "http://127.0.0.1:31270")
	v.SetDefault("tsw6.keyfile", "")
	v.SetDefault("serial.port", "auto")
	v.SetDefault("panel.port", 8765)
	v.SetDefault("profile", "")

	if err := v.ReadInConfig(); err != nil {
		// make the config file fully optional
		if !strings.Contains(err.Error(), "Not Found") {
			return &Configuration{}, fmt.Errorf("cannot parse config: %s", err.Error())
		}
	}
	if err := v.Unmarshal(&config); err != nil {
		return &config, fmt.Errorf("cannot parse config: %s", err.Error())
	}

	return &config, nil
}

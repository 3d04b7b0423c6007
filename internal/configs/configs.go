// Package configs contains the system configurations.
package configs

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultAvailabilityHorizonDays is how far ahead the next available date is searched.
	DefaultAvailabilityHorizonDays = 7

	// DefaultOperatingTimeZone is used when the config file omits the time zone.
	DefaultOperatingTimeZone = "UTC"
)

type configData struct {
	ServerPort              int32  `json:"port"`
	DatabaseDSN             string `json:"database_dsn"`
	DatabaseDriver          string `json:"database_driver"`
	MigrationsDir           string `json:"migrations_dir"`
	PrivateKeyFile          string `json:"private_key_file"`
	OperatingTimeZone       string `json:"operating_time_zone"`
	AvailabilityHorizonDays int    `json:"availability_horizon_days"`
}

// Config holds the system configuration.
type Config interface {
	ServerPort() int32
	DatabaseDSN() string
	DatabaseDriver() string
	MigrationsDir() string
	PrivateKeyFile() string
	PrivateKey() rsa.PrivateKey
	OperatingLocation() *time.Location
	AvailabilityHorizonDays() int
}

type defaultConfig struct {
	data       *configData
	privateKey *rsa.PrivateKey
	location   *time.Location
}

func (c *defaultConfig) ServerPort() int32 {
	return c.data.ServerPort
}

func (c *defaultConfig) DatabaseDSN() string {
	return c.data.DatabaseDSN
}

func (c *defaultConfig) DatabaseDriver() string {
	return c.data.DatabaseDriver
}

func (c *defaultConfig) MigrationsDir() string {
	return c.data.MigrationsDir
}

func (c *defaultConfig) PrivateKeyFile() string {
	return c.data.PrivateKeyFile
}

func (c *defaultConfig) PrivateKey() rsa.PrivateKey {
	return *c.privateKey
}

// OperatingLocation returns the single time zone used for all "in the past"
// and "same day" comparisons.
func (c *defaultConfig) OperatingLocation() *time.Location {
	return c.location
}

func (c *defaultConfig) AvailabilityHorizonDays() int {
	return c.data.AvailabilityHorizonDays
}

func (c *defaultConfig) loadPrivateKey(configPath string) error {
	path := c.PrivateKeyFile()
	if _, err := os.Stat(c.PrivateKeyFile()); os.IsNotExist(err) {
		path = filepath.Join(filepath.Dir(configPath), path)
	}
	pemFile, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	privatePem, _ := pem.Decode(pemFile)
	if privatePem == nil {
		return errors.New("the given private key is not valid")
	}
	var parsedKey interface{}
	parsedKey, err = x509.ParsePKCS1PrivateKey(privatePem.Bytes)
	if err != nil {
		return err
	}
	pk, isPrivateKey := parsedKey.(*rsa.PrivateKey)
	if !isPrivateKey {
		return errors.New("the given private key is not valid")
	}
	c.privateKey = pk
	return nil
}

// applyEnvOverrides overlays configuration values from environment variables,
// loading a .env file first if one is present.
func (c *configData) applyEnvOverrides() {
	if err := godotenv.Load(); err == nil {
		log.Println("configuration overlay loaded from .env file")
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		c.DatabaseDSN = dsn
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if parsed, err := strconv.ParseInt(port, 10, 32); err == nil {
			c.ServerPort = int32(parsed)
		}
	}
}

// Load loads the given configuration file.
func Load(configPath string) (Config, error) {
	data := &configData{}
	configFile, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("an occurred while loading config file: %w", err)
	}
	err = json.NewDecoder(configFile).Decode(data)
	if err != nil {
		return nil, fmt.Errorf("an occurred while parsing config file: %w", err)
	}
	data.applyEnvOverrides()
	if data.OperatingTimeZone == "" {
		data.OperatingTimeZone = DefaultOperatingTimeZone
	}
	if data.AvailabilityHorizonDays <= 0 {
		data.AvailabilityHorizonDays = DefaultAvailabilityHorizonDays
	}
	location, err := time.LoadLocation(data.OperatingTimeZone)
	if err != nil {
		return nil, fmt.Errorf("an occurred while loading the operating time zone: %w", err)
	}
	configuration := &defaultConfig{data: data, location: location}
	if configuration.PrivateKeyFile() != "" {
		if err = configuration.loadPrivateKey(configPath); err != nil {
			return nil, err
		}
	}
	return configuration, nil
}

// MustLoad loads the given configuration file and if any error occurs, will panic.
func MustLoad(configPath string) Config {
	config, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return config
}

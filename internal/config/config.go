// Package config loads the process-wide configuration from environment
// variables. It is read once at startup and passed explicitly to the setup
// functions so that tests can substitute their own values.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

// Database holds the connection parameters for the record store.
type Database struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

// DatabaseFromEnv reads the record store connection parameters from the
// DB_USER, DB_PASSWORD, DB_HOST, DB_PORT and DB_NAME environment variables.
// It returns an error if the password is missing because connecting without
// one always fails later in a less obvious way.
func DatabaseFromEnv() (Database, error) {
	d := Database{
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		Name:     os.Getenv("DB_NAME"),
	}
	if d.Password == "" {
		return Database{}, fmt.Errorf("DB_PASSWORD is not set in the environment")
	}
	if d.Host == "" {
		d.Host = "localhost"
	}
	if d.Port == "" {
		d.Port = "3306"
	}
	return d, nil
}

// DSN formats the connection parameters as a MySQL data source name. The
// driver's own formatter takes care of escaping special characters in the
// password.
func (d Database) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = d.Host + ":" + d.Port
	cfg.DBName = d.Name
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// CalCom holds the credentials and defaults for the Cal.com scheduling API.
type CalCom struct {
	BaseURL     string
	APIKey      string
	Username    string
	TimeZone    string
	EventSlug   string
	EventTypeID int
}

// CalComFromEnv reads the scheduling API settings from the environment.
// CAL_API_KEY and CAL_USERNAME are mandatory; the relay cannot reach the
// upstream without them, so startup fails early instead of every request
// failing later.
func CalComFromEnv() (CalCom, error) {
	c := CalCom{
		BaseURL:   os.Getenv("CAL_BASE_URL"),
		APIKey:    os.Getenv("CAL_API_KEY"),
		Username:  os.Getenv("CAL_USERNAME"),
		TimeZone:  os.Getenv("DEFAULT_TIMEZONE"),
		EventSlug: os.Getenv("CAL_EVENT_SLUG"),
	}
	if c.APIKey == "" {
		return CalCom{}, fmt.Errorf("CAL_API_KEY is not set in the environment")
	}
	if c.Username == "" {
		return CalCom{}, fmt.Errorf("CAL_USERNAME is not set in the environment")
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://cal.com"
	}
	if c.TimeZone == "" {
		c.TimeZone = "Asia/Kolkata"
	}
	if c.EventSlug == "" {
		c.EventSlug = "30min"
	}
	if id := os.Getenv("CAL_EVENT_TYPE_ID"); id != "" {
		parsed, err := strconv.Atoi(id)
		if err != nil {
			return CalCom{}, fmt.Errorf("CAL_EVENT_TYPE_ID is not a number: %w", err)
		}
		c.EventTypeID = parsed
	}
	return c, nil
}

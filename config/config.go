// ABOUTME: Application configuration and the display defaults passed to the engine
// ABOUTME: Values come from YAML, environment variables, then env-default tags
package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// AppName names the XDG directories and environment prefix.
const AppName = "fichas"

// Display defaults.
const (
	DefaultGroupName      = "Geral"
	DefaultUnknownUser    = "Unknown user"
	DefaultIcon           = "history"
	DefaultColor          = ""
	DefaultGroupChange    = "Group change"
	DefaultUnknownAction  = "unknown"
	DefaultYesLabel       = "Sim"
	DefaultNoLabel        = "Não"
	DefaultDateLayout     = "02/01/2006, 15:04:05"
	DefaultTextareaLength = 100
	DefaultReservedKey    = "id"
)

// Config is the root configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Display DisplayConfig `yaml:"display"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig locates the local SQLite store.
type StorageConfig struct {
	// Path defaults to $XDG_DATA_HOME/fichas/fichas.db when empty.
	Path string `yaml:"path" env:"FICHAS_DB_PATH"`
}

// MongoConfig holds the document store connection used by pull-mongo and cmd/migrate.
type MongoConfig struct {
	URI               string        `yaml:"uri"                env:"FICHAS_MONGO_URI"`
	Database          string        `yaml:"database"           env:"FICHAS_MONGO_DATABASE"           env-default:"fichas"`
	HistoryCollection string        `yaml:"history_collection" env:"FICHAS_MONGO_HISTORY_COLLECTION" env-default:"history"`
	GroupsCollection  string        `yaml:"groups_collection"  env:"FICHAS_MONGO_GROUPS_COLLECTION"  env-default:"groups"`
	Timeout           time.Duration `yaml:"timeout"            env:"FICHAS_MONGO_TIMEOUT"            env-default:"10s"`
}

// DisplayConfig holds every fallback constant the presentation and audit
// engines use. It is passed by reference so tests can override any of them.
type DisplayConfig struct {
	DefaultGroup        string   `yaml:"default_group"         env:"FICHAS_DEFAULT_GROUP"         env-default:"Geral"`
	UnknownUser         string   `yaml:"unknown_user"          env:"FICHAS_UNKNOWN_USER"          env-default:"Unknown user"`
	DefaultIcon         string   `yaml:"default_icon"          env:"FICHAS_DEFAULT_ICON"          env-default:"history"`
	DefaultColor        string   `yaml:"default_color"         env:"FICHAS_DEFAULT_COLOR"`
	GroupChangeFallback string   `yaml:"group_change_fallback" env:"FICHAS_GROUP_CHANGE_FALLBACK" env-default:"Group change"`
	UnknownAction       string   `yaml:"unknown_action"        env:"FICHAS_UNKNOWN_ACTION"        env-default:"unknown"`
	YesLabel            string   `yaml:"yes_label"             env:"FICHAS_YES_LABEL"             env-default:"Sim"`
	NoLabel             string   `yaml:"no_label"              env:"FICHAS_NO_LABEL"              env-default:"Não"`
	DateLayout          string   `yaml:"date_layout"           env:"FICHAS_DATE_LAYOUT"           env-default:"02/01/2006, 15:04:05"`
	TimeZone            string   `yaml:"time_zone"             env:"FICHAS_TIME_ZONE"`
	TextareaThreshold   int      `yaml:"textarea_threshold"    env:"FICHAS_TEXTAREA_THRESHOLD"    env-default:"100"`
	RequiredFields      []string `yaml:"required_fields"       env:"FICHAS_REQUIRED_FIELDS"       env-default:"nome,name" env-separator:","`
	ReservedKey         string   `yaml:"reserved_key"          env:"FICHAS_RESERVED_KEY"          env-default:"id"`
	LayoutPath          string   `yaml:"layout_path"           env:"FICHAS_LAYOUT_PATH"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"FICHAS_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"FICHAS_LOG_FORMAT" env-default:"console"`
}

// DefaultDisplay returns the display defaults without reading the environment.
func DefaultDisplay() *DisplayConfig {
	return &DisplayConfig{
		DefaultGroup:        DefaultGroupName,
		UnknownUser:         DefaultUnknownUser,
		DefaultIcon:         DefaultIcon,
		DefaultColor:        DefaultColor,
		GroupChangeFallback: DefaultGroupChange,
		UnknownAction:       DefaultUnknownAction,
		YesLabel:            DefaultYesLabel,
		NoLabel:             DefaultNoLabel,
		DateLayout:          DefaultDateLayout,
		TextareaThreshold:   DefaultTextareaLength,
		RequiredFields:      []string{"nome", "name"},
		ReservedKey:         DefaultReservedKey,
	}
}

// Location resolves TimeZone, falling back to the local zone.
func (d *DisplayConfig) Location() *time.Location {
	if d == nil || d.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(d.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// IsRequired reports whether a field key is one of the required name fields.
func (d *DisplayConfig) IsRequired(key string) bool {
	for _, name := range d.RequiredFields {
		if name == key {
			return true
		}
	}
	return false
}

// DatabasePath returns the configured or default SQLite path.
func (s StorageConfig) DatabasePath() string {
	if s.Path != "" {
		return s.Path
	}
	return filepath.Join(xdg.DataHome, AppName, AppName+".db")
}

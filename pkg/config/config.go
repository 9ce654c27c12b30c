package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config groups application configuration (read via Viper from env and
// optionally a file).
type Config struct {
	App      AppConfig
	DB       DBConfig
	HTTP     HTTPConfig
	Planning PlanningConfig
}

// AppConfig general application settings.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// DBConfig PostgreSQL settings. If DatabaseURL is non-empty it is used as the
// full connection string.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString returns DatabaseURL when set, otherwise the built DSN.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN builds the PostgreSQL connection string with URL encoding for special
// characters in the password.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// HTTPConfig HTTP server settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PlanningConfig tuning knobs shared by the MRP planner, the scheduler and
// the workflow engine. Rates and amounts are in PHP.
type PlanningConfig struct {
	HorizonDays         int     // stock projection window
	DefaultLeadTimeDays int     // used when a material has no lead time on record
	WorkdayHours        float64 // hours per calendar day when spreading estimated hours
	ShiftHours          map[string]float64
	BottleneckRatio     float64 // actual/planned ratio above which a step is flagged
	QueueThreshold      int     // ready-but-unstarted steps per stage before flagging
	QualityThreshold    float64 // quality score below which a QUALITY alert fires
	LaborRate           float64 // PHP per worked hour
	OverheadRate        float64 // PHP per worked hour
	BulkDiscountMin     float64 // supplier total that unlocks the bulk discount
	BulkDiscountRate    float64
	ConsolidationSaving float64 // flat saving per purchase order avoided
	AlertTTLHours       int
}

// HoursForShift returns the configured shift length, falling back to the
// workday length for unknown shifts.
func (c PlanningConfig) HoursForShift(shift string) float64 {
	if h, ok := c.ShiftHours[shift]; ok {
		return h
	}
	return c.WorkdayHours
}

// Load reads configuration from env vars (and optionally a file). Env vars
// win. Expected names: APP_ENV, DB_HOST, PLANNING_HORIZON_DAYS, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Optional config file (.env or config.env); missing files are fine.
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "garment-ops"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "garment_ops"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Planning: PlanningConfig{
			HorizonDays:         getInt(v, "PLANNING_HORIZON_DAYS", 30),
			DefaultLeadTimeDays: getInt(v, "PLANNING_DEFAULT_LEAD_TIME_DAYS", 7),
			WorkdayHours:        getFloat(v, "PLANNING_WORKDAY_HOURS", 8),
			ShiftHours: map[string]float64{
				"MORNING":   getFloat(v, "PLANNING_SHIFT_HOURS_MORNING", 8),
				"AFTERNOON": getFloat(v, "PLANNING_SHIFT_HOURS_AFTERNOON", 8),
				"NIGHT":     getFloat(v, "PLANNING_SHIFT_HOURS_NIGHT", 8),
			},
			BottleneckRatio:     getFloat(v, "PLANNING_BOTTLENECK_RATIO", 1.2),
			QueueThreshold:      getInt(v, "PLANNING_QUEUE_THRESHOLD", 3),
			QualityThreshold:    getFloat(v, "PLANNING_QUALITY_THRESHOLD", 70),
			LaborRate:           getFloat(v, "PLANNING_LABOR_RATE", 75),
			OverheadRate:        getFloat(v, "PLANNING_OVERHEAD_RATE", 25),
			BulkDiscountMin:     getFloat(v, "PLANNING_BULK_DISCOUNT_MIN", 1000),
			BulkDiscountRate:    getFloat(v, "PLANNING_BULK_DISCOUNT_RATE", 0.05),
			ConsolidationSaving: getFloat(v, "PLANNING_CONSOLIDATION_SAVING", 150),
			AlertTTLHours:       getInt(v, "PLANNING_ALERT_TTL_HOURS", 72),
		},
	}

	return cfg, nil
}

// Default returns the planning defaults without touching the environment.
// Tests use this to get a stable baseline.
func Default() PlanningConfig {
	return PlanningConfig{
		HorizonDays:         30,
		DefaultLeadTimeDays: 7,
		WorkdayHours:        8,
		ShiftHours:          map[string]float64{"MORNING": 8, "AFTERNOON": 8, "NIGHT": 8},
		BottleneckRatio:     1.2,
		QueueThreshold:      3,
		QualityThreshold:    70,
		LaborRate:           75,
		OverheadRate:        25,
		BulkDiscountMin:     1000,
		BulkDiscountRate:    0.05,
		ConsolidationSaving: 150,
		AlertTTLHours:       72,
	}
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		return v.GetFloat64(key)
	}
	return def
}

package infra

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pot-code/learning-engine/internal/infrastructure/validate"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix env prefix for viper
const EnvPrefix = "GOAPP"

// DotEnvFile optional env file loaded before flags are parsed
const DotEnvFile = ".env"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// AppConfig App option object
type AppConfig struct {
	AppID          string        `mapstructure:"app_id" json:"app_id" yaml:"app_id" validate:"required"`            // Application ID
	Host           string        `mapstructure:"host" json:"host" yaml:"host"`                                      // bind host address
	Port           int           `mapstructure:"port" json:"port" yaml:"port" validate:"min=1,max=65535"`           // bind listen port
	Env            string        `mapstructure:"env" json:"env" yaml:"env" validate:"oneof=development production"` // runtime environment
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout" yaml:"request_timeout"`     // per request deadline
	Locale         string        `mapstructure:"locale" json:"locale" yaml:"locale" validate:"oneof=en zh"`         // language of validation messages
	API            struct {
		BaseURL string        `mapstructure:"base_url" json:"base_url" yaml:"base_url" validate:"required,url"` // learning platform API root
		Token   string        `mapstructure:"token" json:"-" yaml:"token"`                                      // bearer token for the platform API
		Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
	} `mapstructure:"api" json:"api" yaml:"api"`
	Learning struct {
		PersistInterval    time.Duration `mapstructure:"persist_interval" json:"persist_interval" yaml:"persist_interval" validate:"gt=0"`
		NotificationTTL    time.Duration `mapstructure:"notification_ttl" json:"notification_ttl" yaml:"notification_ttl" validate:"gt=0"`
		ResumePromptTTL    time.Duration `mapstructure:"resume_prompt_ttl" json:"resume_prompt_ttl" yaml:"resume_prompt_ttl" validate:"gte=0"` // 0 keeps the prompt until answered
		SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout" json:"session_idle_timeout" yaml:"session_idle_timeout"`
		OutboxSize         int           `mapstructure:"outbox_size" json:"outbox_size" yaml:"outbox_size" validate:"gte=0"`
	} `mapstructure:"learning" json:"learning" yaml:"learning"`
	Progress struct {
		Sink string `mapstructure:"sink" json:"sink" yaml:"sink" validate:"oneof=api database"` // where positions are persisted
	} `mapstructure:"progress" json:"progress" yaml:"progress"`
	Cache struct {
		Driver string `mapstructure:"driver" json:"driver" yaml:"driver" validate:"oneof=memory redis"` // section lecture cache
		Prefix string `mapstructure:"prefix" json:"prefix" yaml:"prefix"`
	} `mapstructure:"cache" json:"cache" yaml:"cache"`
	Database struct {
		Driver   string `mapstructure:"driver" json:"driver" yaml:"driver" validate:"oneof=mysql postgres"`          // driver name
		Host     string `mapstructure:"host" json:"host" yaml:"host"`                                                // server host
		MaxConn  int32  `mapstructure:"maxconn" json:"maxconn" yaml:"maxconn" validate:"gte=0"`                      // maximum opening connections number
		Password string `mapstructure:"password" json:"-" yaml:"password"`                                           // db password
		Port     int    `mapstructure:"port" json:"port" yaml:"port"`                                                // server port
		Protocol string `mapstructure:"protocol" json:"protocol" yaml:"protocol" validate:"omitempty,oneof=tcp udp"` // connection protocol, eg.tcp
		Query    string `mapstructure:"query" json:"query" yaml:"query"`                                             // DSN query parameter
		Schema   string `mapstructure:"schema" json:"schema" yaml:"schema"`                                          // use schema
		User     string `mapstructure:"username" json:"username" yaml:"username"`                                    // db username
	} `mapstructure:"database" json:"database" yaml:"database"`
	Logging struct {
		FilePath string `mapstructure:"file_path" json:"file_path" yaml:"file_path"`                            // log file path
		Level    string `mapstructure:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"` // global logging level
	} `mapstructure:"logging" json:"logging" yaml:"logging"`
	Security struct {
		IDLength  int    `mapstructure:"id_length" json:"id_length" yaml:"id_length" validate:"min=8"` // length of generated session ids
		JWTMethod string `mapstructure:"jwt_method" json:"jwt_method" yaml:"jwt_method" validate:"oneof=HS256 HS512"`
		JWTSecret string `mapstructure:"jwt_secret" json:"-" yaml:"jwt_secret" validate:"required"`
		TokenName string `mapstructure:"token_name" json:"token_name" yaml:"token_name" validate:"required"` // jwt token name set in cookie
	} `mapstructure:"security" json:"security" yaml:"security"`
	KVStore struct {
		Host     string `mapstructure:"host" json:"host" yaml:"host"`         // bind host address
		Port     int    `mapstructure:"port" json:"port" yaml:"port"`         // bind listen port
		Password string `mapstructure:"password" json:"-" yaml:"password"`    // password for security reasons
		DB       int    `mapstructure:"db" json:"db" yaml:"db" validate:"gte=0"`
	} `mapstructure:"kv" json:"kv" yaml:"kv"`
	DevOP struct {
		APM bool `mapstructure:"apm" json:"apm" yaml:"apm"`
	} `mapstructure:"devop" json:"devop" yaml:"devop"`
}

// RegisterFlags declare every option on fs
func RegisterFlags(fs *pflag.FlagSet) {
	// app
	fs.String("host", "", "binding address")
	fs.String("app_id", "", "application identifier (required)")
	fs.String("env", "development", "runtime environment, can be 'development' or 'production'")
	fs.Int("port", 8081, "listening port")
	fs.Duration("request_timeout", 10*time.Second, "deadline of a single HTTP request")
	fs.String("locale", "en", "language of validation messages, 'en' or 'zh'")

	// platform API
	fs.String("api.base_url", "", "learning platform API root, eg.https://api.example.com/v1/ (required)")
	fs.String("api.token", "", "bearer token sent to the platform API")
	fs.Duration("api.timeout", 5*time.Second, "platform API call timeout")

	// learning engine
	fs.Duration("learning.persist_interval", 15*time.Second, "interval between playback position updates")
	fs.Duration("learning.notification_ttl", 7*time.Second, "auto-dismiss delay of event notifications")
	fs.Duration("learning.resume_prompt_ttl", 0, "auto-dismiss delay of the continue-watching prompt, 0 keeps it until answered")
	fs.Duration("learning.session_idle_timeout", 30*time.Minute, "close sessions without page activity after this long, 0 disables")
	fs.Int("learning.outbox_size", 64, "buffered messages per session event stream")

	// sinks
	fs.String("progress.sink", "api", "where playback positions are persisted, 'api' or 'database'")
	fs.String("cache.driver", "memory", "section lecture cache, 'memory' or 'redis'")
	fs.String("cache.prefix", "learning", "key prefix of the redis lecture cache")

	// database
	fs.String("database.driver", "mysql", "database driver to use")
	fs.String("database.host", "127.0.0.1", "database host")
	fs.Int("database.port", 3306, "database server port")
	fs.String("database.protocol", "", "connection protocol(if mysql is used, this flag must be set), eg.tcp")
	fs.String("database.username", "", "database username (required with progress.sink=database)")
	fs.String("database.password", "", "database password (required with progress.sink=database)")
	fs.String("database.schema", "", "database schema (required with progress.sink=database)")
	fs.String("database.query", "", `additional DSN query parameters('?' is auto prefixed)`)
	fs.Int32("database.maxconn", 20, `max connection count, if you encounter a "too many connections" error, please consider
increasing the max_connection value of your db server, or lower this value`)

	// logging
	fs.String("logging.level", "info", "logging level")
	fs.String("logging.file_path", "", "log to file")

	// security
	fs.Int("security.id_length", 24, "set length of generated session ids")
	fs.String("security.jwt_method", "HS256", "hash algorithm used for JWT auth")
	fs.String("security.jwt_secret", "", "JWT secret (required)")
	fs.String("security.token_name", "", "cookie name to store the token (required)")

	// kv storage
	fs.String("kv.host", "127.0.0.1", "kv host")
	fs.Int("kv.port", 6379, "kv server port")
	fs.String("kv.password", "", "kv server password")
	fs.Int("kv.db", 0, "kv database index")

	// DevOp
	fs.Bool("devop.apm", false, "enable apm metrics")
}

// InitConfig init app config from the command line, GOAPP_* env and an optional .env file
func InitConfig() (*AppConfig, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}
	RegisterFlags(pflag.CommandLine)
	pflag.Parse()
	return LoadConfig(viper.New(), pflag.CommandLine)
}

// LoadConfig bind fs and env into v and decode the result
func LoadConfig(v *viper.Viper, fs *pflag.FlagSet) (*AppConfig, error) {
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config = new(AppConfig)
	if err := v.Unmarshal(config); err != nil {
		return nil, err
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// String config as indented json, secrets are omitted
func (c *AppConfig) String() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(b)
}

func validateConfig(config *AppConfig) error {
	v := validator.New()
	v.RegisterTagNameFunc(validate.JSONTagName)
	var msg []string

	err := v.Struct(config)
	if _, ok := err.(*validator.InvalidValidationError); ok {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	if err != nil {
		for _, field := range err.(validator.ValidationErrors) {
			namespace := field.Namespace()
			fieldName := namespace[strings.IndexByte(namespace, '.')+1:] // trim top level namespace
			switch field.Tag() {
			case "required":
				msg = append(msg, fmt.Sprintf("%s is required", fieldName))
			case "oneof":
				msg = append(msg, fmt.Sprintf("%s must be one of (%s)", fieldName, field.Param()))
			default:
				msg = append(msg, fmt.Sprintf("%s failed on '%s %s'", fieldName, field.Tag(), field.Param()))
			}
		}
	}
	if config.Progress.Sink == "database" {
		db := config.Database
		for _, field := range []struct{ name, value string }{
			{"database.host", db.Host},
			{"database.username", db.User},
			{"database.password", db.Password},
			{"database.schema", db.Schema},
		} {
			if field.value == "" {
				msg = append(msg, fmt.Sprintf("%s is required when progress.sink is database", field.name))
			}
		}
	}
	if len(msg) > 0 {
		return fmt.Errorf("failed to validate config: \n%s", strings.Join(msg, "\n"))
	}
	return nil
}

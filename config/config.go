// C:\Users\wasab\OneDrive\デスクトップ\PORTION\config\config.go
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"sync"
)

type LoggerConfig struct {
	IsDevelopment     bool   `json:"isDevelopment"`
	Encoding          string `json:"encoding"`
	Level             string `json:"level"`
	DisableCaller     bool   `json:"disableCaller"`
	DisableStacktrace bool   `json:"disableStacktrace"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	// Password は環境変数 REDIS_PASSWORD からのみ読み込み、保存・出力しません。
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type KafkaConfig struct {
	Brokers []string `json:"brokers"`
	Topic   string   `json:"topic"`
}

type S3Config struct {
	Bucket string `json:"bucket"`
	Region string `json:"region"`
	Prefix string `json:"prefix"`
}

type Config struct {
	Addr               string       `json:"addr"`
	Storage            string       `json:"storage"`
	DatabasePath       string       `json:"databasePath"`
	OrdersDir          string       `json:"ordersDir"`
	UsersDir           string       `json:"usersDir"`
	CatalogFile        string       `json:"catalogFile"`
	ProductLinksFile   string       `json:"productLinksFile"`
	StoresFile         string       `json:"storesFile"`
	ImportEncoding     string       `json:"importEncoding"`
	ImagesDir          string       `json:"imagesDir"`
	Timezone           string       `json:"timezone"`
	SearchLimit        int          `json:"searchLimit"`
	LockTimeoutSeconds int          `json:"lockTimeoutSeconds"`
	Logger             LoggerConfig `json:"logger"`
	Redis              RedisConfig  `json:"redis"`
	Kafka              KafkaConfig  `json:"kafka"`
	S3                 S3Config     `json:"s3"`
}

const (
	StorageSQLite = "sqlite"
	StorageXLSX   = "xlsx"
)

var (
	cfg = Defaults()
	mu  sync.RWMutex
)

var configFilePath = "./portion_config.json"

// Defaults は設定ファイルが無い場合の既定値を返します。
func Defaults() Config {
	c := Config{}
	applyDefaults(&c)
	return c
}

func applyDefaults(c *Config) {
	if c.Addr == "" {
		c.Addr = ":8000"
	}
	if c.Storage == "" {
		c.Storage = StorageSQLite
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "./portion.db"
	}
	if c.OrdersDir == "" {
		c.OrdersDir = "data/orders"
	}
	if c.UsersDir == "" {
		c.UsersDir = "data/users"
	}
	if c.CatalogFile == "" {
		c.CatalogFile = "data/appdb2.xlsx"
	}
	if c.ProductLinksFile == "" {
		c.ProductLinksFile = "data/prodlinks.xlsx"
	}
	if c.StoresFile == "" {
		c.StoresFile = "data/stores.csv"
	}
	if c.ImportEncoding == "" {
		c.ImportEncoding = "utf-8"
	}
	if c.ImagesDir == "" {
		c.ImagesDir = "data/images"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.SearchLimit == 0 {
		c.SearchLimit = 50
	}
	if c.LockTimeoutSeconds == 0 {
		c.LockTimeoutSeconds = 10
	}
	if c.Logger.Encoding == "" {
		c.Logger.Encoding = "json"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "portion.events"
	}
}

// LoadConfig はJSONファイルを読み込み、環境変数で上書きします。
func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	var loaded Config
	file, err := os.ReadFile(configFilePath)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := json.Unmarshal(file, &loaded); err != nil {
			return cfg, err
		}
	}
	applyEnv(&loaded)
	applyDefaults(&loaded)
	cfg = loaded
	return cfg, nil
}

func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	applyDefaults(&newCfg)
	newCfg.Redis.Password = cfg.Redis.Password

	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFilePath, file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

func applyEnv(c *Config) {
	c.Addr = getEnv("PORTION_ADDR", c.Addr)
	c.Storage = getEnv("PORTION_STORAGE", c.Storage)
	c.DatabasePath = getEnv("PORTION_DB_PATH", c.DatabasePath)
	if dir := os.Getenv("PORTION_DATA_DIR"); dir != "" {
		c.OrdersDir = dir + "/orders"
		c.UsersDir = dir + "/users"
		c.CatalogFile = dir + "/appdb2.xlsx"
		c.ProductLinksFile = dir + "/prodlinks.xlsx"
		c.StoresFile = dir + "/stores.csv"
	}
	c.ImagesDir = getEnv("PORTION_IMAGES_DIR", c.ImagesDir)
	c.Timezone = getEnv("PORTION_TIMEZONE", c.Timezone)
	c.Logger.Level = getEnv("LOGGER_LEVEL", c.Logger.Level)
	c.Logger.Encoding = getEnv("LOGGER_ENCODING", c.Logger.Encoding)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	c.Kafka.Brokers = getEnvSlice("KAFKA_BROKERS", c.Kafka.Brokers)
	c.Kafka.Topic = getEnv("KAFKA_TOPIC", c.Kafka.Topic)
	c.S3.Bucket = getEnv("S3_BUCKET", c.S3.Bucket)
	c.S3.Region = getEnv("S3_REGION", c.S3.Region)
	c.S3.Prefix = getEnv("S3_PREFIX", c.S3.Prefix)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

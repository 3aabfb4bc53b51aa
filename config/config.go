package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"inspection-station/internal/domain/entity"
)

// Config — настройки из окружения: секреты, адреса и путь к файлу
// станции. Всё, что описывает саму станцию (сценарии, камера, захват),
// живёт в YAML-файле и загружается отдельно через LoadStation.
type Config struct {
	LogLevel    string
	StationFile string
	Workflow    string // имя активного сценария, например "INLINE"

	ServerAddr  string // адрес API-сервера записей
	DatabaseDSN string // пусто — хранилище в памяти

	APIBaseURL     string // внешний API записей; пусто — свой сервер
	APITimeout     time.Duration
	PrevStageTable string // таблица предыдущей стадии для проверки штрихкода

	TelegramToken  string
	TelegramChatID int64
}

// Load читает окружение. .env подхватывается, если лежит рядом.
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	chatID, err := getEnvInt64("TELEGRAM_CHAT_ID", 0)
	if err != nil {
		return nil, err
	}
	timeout, err := getEnvDuration("API_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StationFile:    getEnv("STATION_CONFIG", "station.yaml"),
		Workflow:       getEnv("WORKFLOW", "INLINE"),
		ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
		DatabaseDSN:    os.Getenv("DATABASE_DSN"),
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8080"),
		APITimeout:     timeout,
		PrevStageTable: getEnv("PREV_STAGE_TABLE", "CHIPINSPECTION"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: chatID,
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// CameraConfig — настройки источника кадров.
type CameraConfig struct {
	Device   int  `mapstructure:"device"`
	Width    int  `mapstructure:"width"`
	Height   int  `mapstructure:"height"`
	FPS      int  `mapstructure:"fps"`
	Simulate bool `mapstructure:"simulate"` // принудительно симулятор
}

// CaptureConfig — настройки накопления серии кадров.
type CaptureConfig struct {
	Frames int    `mapstructure:"frames"`
	Method string `mapstructure:"method"` // mean или median
}

// ComponentConfig — один проверяемый компонент шага.
type ComponentConfig struct {
	Name     string  `mapstructure:"name"`
	Side     string  `mapstructure:"side"`
	PassRate float64 `mapstructure:"pass_rate"`
}

// StepConfig — один шаг сценария.
type StepConfig struct {
	Name       string            `mapstructure:"name"`
	Table      string            `mapstructure:"table"`
	ProcessID  string            `mapstructure:"process_id"`
	StationID  string            `mapstructure:"station_id"`
	Components []ComponentConfig `mapstructure:"components"`
}

// WorkflowConfig — именованный сценарий.
type WorkflowConfig struct {
	Steps []StepConfig `mapstructure:"steps"`
}

// StationConfig — содержимое YAML-файла станции.
type StationConfig struct {
	Camera      CameraConfig              `mapstructure:"camera"`
	Capture     CaptureConfig             `mapstructure:"capture"`
	Workflows   map[string]WorkflowConfig `mapstructure:"workflows"`
	ExtraTables []string                  `mapstructure:"extra_tables"`
}

// LoadStation читает файл станции. Отсутствующий файл — не ошибка:
// станция стартует с определениями по умолчанию.
func LoadStation(path string) (*StationConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("camera.device", 0)
	v.SetDefault("camera.width", 640)
	v.SetDefault("camera.height", 480)
	v.SetDefault("camera.fps", 15)
	v.SetDefault("capture.frames", 5)
	v.SetDefault("capture.method", entity.AveragingMean)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read station config %s: %w", path, err)
		}
	}

	var station StationConfig
	if err := v.Unmarshal(&station); err != nil {
		return nil, fmt.Errorf("failed to parse station config: %w", err)
	}

	if len(station.Workflows) == 0 {
		station.Workflows = defaultWorkflows()
	}
	if station.Capture.Frames < 1 {
		station.Capture.Frames = 5
	}
	if station.Capture.Method != entity.AveragingMean && station.Capture.Method != entity.AveragingMedian {
		return nil, fmt.Errorf("unknown averaging method %q", station.Capture.Method)
	}
	return &station, nil
}

// WorkflowDefinition собирает определение сценария по имени.
func (s *StationConfig) WorkflowDefinition(name string) (entity.WorkflowDefinition, error) {
	wf, ok := s.Workflows[name]
	if !ok {
		return entity.WorkflowDefinition{}, fmt.Errorf("unknown workflow %q", name)
	}

	def := entity.WorkflowDefinition{Name: name}
	for _, step := range wf.Steps {
		sd := entity.StepDefinition{
			Name:      step.Name,
			Table:     step.Table,
			ProcessID: step.ProcessID,
			StationID: step.StationID,
		}
		for _, c := range step.Components {
			rate := c.PassRate
			if rate <= 0 || rate > 1 {
				rate = 0.9
			}
			sd.Specs = append(sd.Specs, entity.ComponentSpec{
				Name:     c.Name,
				Side:     c.Side,
				PassRate: rate,
			})
		}
		def.Steps = append(def.Steps, sd)
	}
	if err := def.Validate(); err != nil {
		return entity.WorkflowDefinition{}, err
	}
	return def, nil
}

// TableSchemas выводит схему колонок каждой таблицы из сценариев:
// служебные колонки плюс пара <компонент>/Manual<компонент> на каждый
// компонент. ExtraTables получают только служебные колонки.
func (s *StationConfig) TableSchemas() map[string][]string {
	tables := make(map[string][]string)
	for _, wf := range s.Workflows {
		for _, step := range wf.Steps {
			cols := []string{"Barcode", "DT", "Process_id", "Station_ID"}
			for _, c := range step.Components {
				cols = append(cols, c.Name, "Manual"+c.Name)
			}
			cols = append(cols, "Result", "ManualResult")
			tables[step.Table] = cols
		}
	}
	for _, name := range s.ExtraTables {
		if _, ok := tables[name]; !ok {
			tables[name] = []string{"Barcode", "DT", "Process_id", "Station_ID", "Result", "ManualResult"}
		}
	}
	return tables
}

// defaultWorkflows — сценарии INLINE и EOLT, зашитые на случай запуска
// без файла станции.
func defaultWorkflows() map[string]WorkflowConfig {
	return map[string]WorkflowConfig{
		"INLINE": {
			Steps: []StepConfig{
				{
					Name:      "BOTTOM",
					Table:     "INLINEINSPECTIONBOTTOM",
					ProcessID: "INLINE_BOTTOM_PROC_001",
					StationID: "INLINE_BOTTOM_STATION_01",
					Components: []ComponentConfig{
						{Name: "Antenna", Side: "bottom", PassRate: 0.92},
						{Name: "Capacitor", Side: "bottom", PassRate: 0.88},
						{Name: "Speaker", Side: "bottom", PassRate: 0.94},
					},
				},
				{
					Name:      "TOP",
					Table:     "INLINEINSPECTIONTOP",
					ProcessID: "INLINE_TOP_PROC_001",
					StationID: "INLINE_TOP_STATION_01",
					Components: []ComponentConfig{
						{Name: "Screw", Side: "top", PassRate: 0.90},
						{Name: "Plate", Side: "top", PassRate: 0.95},
					},
				},
			},
		},
		"EOLT": {
			Steps: []StepConfig{
				{
					Name:      "EOLT",
					Table:     "EOLTINSPECTION",
					ProcessID: "EOLT_PROC_001",
					StationID: "EOLT_STATION_01",
					Components: []ComponentConfig{
						{Name: "Upper", Side: "front", PassRate: 0.93},
						{Name: "Lower", Side: "front", PassRate: 0.93},
						{Name: "Left", Side: "front", PassRate: 0.93},
						{Name: "Right", Side: "front", PassRate: 0.93},
					},
				},
			},
		},
	}
}

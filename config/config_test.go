package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"inspection-station/internal/domain/entity"
)

func TestLoadStationDefaultsWithoutFile(t *testing.T) {
	station, err := LoadStation(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	require.Equal(t, 640, station.Camera.Width)
	require.Equal(t, 480, station.Camera.Height)
	require.Equal(t, 15, station.Camera.FPS)
	require.Equal(t, 5, station.Capture.Frames)
	require.Equal(t, entity.AveragingMean, station.Capture.Method)
	require.Contains(t, station.Workflows, "INLINE")
	require.Contains(t, station.Workflows, "EOLT")
}

func TestLoadStationFromFile(t *testing.T) {
	content := `
camera:
  device: 2
  width: 1280
  height: 720
  fps: 30
  simulate: true
capture:
  frames: 7
  method: median
workflows:
  CUSTOM:
    steps:
      - name: ONLY
        table: CUSTOMTABLE
        process_id: CUSTOM_PROC
        station_id: CUSTOM_STATION
        components:
          - name: Widget
            side: front
            pass_rate: 0.8
extra_tables:
  - CHIPINSPECTION
`
	path := filepath.Join(t.TempDir(), "station.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	station, err := LoadStation(path)
	require.NoError(t, err)
	require.Equal(t, 2, station.Camera.Device)
	require.True(t, station.Camera.Simulate)
	require.Equal(t, 7, station.Capture.Frames)
	require.Equal(t, entity.AveragingMedian, station.Capture.Method)

	def, err := station.WorkflowDefinition("CUSTOM")
	require.NoError(t, err)
	require.Equal(t, "CUSTOM", def.Name)
	require.Len(t, def.Steps, 1)
	require.Equal(t, "CUSTOMTABLE", def.Steps[0].Table)
	require.Equal(t, 0.8, def.Steps[0].Specs[0].PassRate)
}

func TestLoadStationRejectsUnknownMethod(t *testing.T) {
	path := filepath.Join(t.TempDir(), "station.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capture:\n  method: mode\n"), 0o644))

	_, err := LoadStation(path)
	require.Error(t, err)
}

func TestWorkflowDefinitionUnknownName(t *testing.T) {
	station, err := LoadStation(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	_, err = station.WorkflowDefinition("NOPE")
	require.Error(t, err)
}

func TestWorkflowDefinitionDefaultInline(t *testing.T) {
	station, err := LoadStation(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	def, err := station.WorkflowDefinition("INLINE")
	require.NoError(t, err)
	require.Equal(t, []string{"BOTTOM", "TOP"}, []string{def.Steps[0].Name, def.Steps[1].Name})
	require.Len(t, def.Steps[0].Specs, 3)
	require.Equal(t, "Antenna", def.Steps[0].Specs[0].Name)
}

func TestTableSchemas(t *testing.T) {
	station, err := LoadStation(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	station.ExtraTables = []string{"CHIPINSPECTION"}

	tables := station.TableSchemas()
	require.Contains(t, tables, "INLINEINSPECTIONBOTTOM")
	require.Contains(t, tables, "INLINEINSPECTIONTOP")
	require.Contains(t, tables, "EOLTINSPECTION")
	require.Contains(t, tables, "CHIPINSPECTION")

	bottom := tables["INLINEINSPECTIONBOTTOM"]
	require.Contains(t, bottom, "Antenna")
	require.Contains(t, bottom, "ManualAntenna")
	require.Contains(t, bottom, "Result")
	require.Contains(t, bottom, "ManualResult")
	require.Contains(t, bottom, "Barcode")
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("WORKFLOW", "EOLT")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("API_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "EOLT", cfg.Workflow)
	require.Equal(t, int64(-100123), cfg.TelegramChatID)
	require.Equal(t, "2s", cfg.APITimeout.String())
}

func TestLoadRejectsBadChatID(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")
	_, err := Load()
	require.Error(t, err)
}

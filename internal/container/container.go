package container

import (
	"go.uber.org/zap"

	app "inspection-station/internal/application"
	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
)

// Container собирает сервисы приложения из портов инфраструктуры.
type Container struct {
	Camera   *app.Camera
	Workflow *app.WorkflowService
}

func New(
	source port.FrameSource,
	engine port.InspectionEngine,
	display port.Display,
	submitter port.StepSubmitter,
	checker port.BarcodeChecker,
	notifier port.Notifier,
	def entity.WorkflowDefinition,
	captureFrames int,
	averagingMethod string,
	logger *zap.Logger,
) (*Container, error) {
	camera := app.NewCamera(source, display, averagingMethod, logger)
	coordinator := app.NewSubmissionCoordinator(submitter, logger)

	workflow, err := app.NewWorkflowService(
		camera, engine, coordinator, display, notifier, checker,
		def, captureFrames, logger,
	)
	if err != nil {
		return nil, err
	}

	return &Container{
		Camera:   camera,
		Workflow: workflow,
	}, nil
}

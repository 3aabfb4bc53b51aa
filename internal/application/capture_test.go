package app

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inspection-station/internal/domain/entity"
)

type captureResult struct {
	avg entity.AveragedFrame
	err error
}

// collectOne подписывается на завершение захвата и отдаёт его тесту.
func collectOne() (func(entity.AveragedFrame, error), *sync.Map) {
	results := &sync.Map{}
	return func(avg entity.AveragedFrame, err error) {
		results.Store("result", captureResult{avg: avg, err: err})
	}, results
}

func waitResult(t *testing.T, results *sync.Map) captureResult {
	t.Helper()
	var res captureResult
	require.Eventually(t, func() bool {
		v, ok := results.Load("result")
		if ok {
			res = v.(captureResult)
		}
		return ok
	}, time.Second, time.Millisecond)
	return res
}

func newTestCamera(method string) (*Camera, *fakeSource, *fakeDisplay) {
	source := &fakeSource{}
	display := &fakeDisplay{}
	cam := NewCamera(source, display, method, zap.NewNop())
	return cam, source, display
}

func TestCameraCaptureAveragesSeries(t *testing.T) {
	cam, source, display := newTestCamera(entity.AveragingMean)
	require.NoError(t, cam.Start())

	done, results := collectOne()
	require.NoError(t, cam.BeginCapture(3, done))

	for _, v := range []byte{10, 20, 30} {
		px := make([]byte, 2*2*entity.FrameChannels)
		for i := range px {
			px[i] = v
		}
		source.Push(entity.Frame{Width: 2, Height: 2, Pixels: px})
	}

	res := waitResult(t, results)
	require.NoError(t, res.err)
	require.Equal(t, 3, res.avg.FrameCount)
	require.Equal(t, byte(20), res.avg.Pixels[0])
	require.Len(t, display.progress, 3)
}

func TestCameraCaptureRequiresStreaming(t *testing.T) {
	cam, _, _ := newTestCamera(entity.AveragingMean)

	done, _ := collectOne()
	err := cam.BeginCapture(3, done)
	require.ErrorIs(t, err, entity.ErrCaptureAborted)
}

func TestCameraRejectsConcurrentCapture(t *testing.T) {
	cam, source, _ := newTestCamera(entity.AveragingMean)
	require.NoError(t, cam.Start())

	done, results := collectOne()
	require.NoError(t, cam.BeginCapture(2, done))
	source.PushFrames(1, 2, 2)

	other, _ := collectOne()
	err := cam.BeginCapture(2, other)
	require.ErrorIs(t, err, entity.ErrCaptureAlreadyInProgress)

	// Первая серия завершается как ни в чём не бывало.
	source.PushFrames(1, 2, 2)
	res := waitResult(t, results)
	require.NoError(t, res.err)
}

func TestCameraRejectsInvalidTarget(t *testing.T) {
	cam, _, _ := newTestCamera(entity.AveragingMean)
	require.NoError(t, cam.Start())

	done, _ := collectOne()
	require.ErrorIs(t, cam.BeginCapture(0, done), entity.ErrCaptureAborted)
}

func TestCameraGeometryMismatchFailsCapture(t *testing.T) {
	cam, source, _ := newTestCamera(entity.AveragingMean)
	require.NoError(t, cam.Start())

	done, results := collectOne()
	require.NoError(t, cam.BeginCapture(3, done))

	source.PushFrames(1, 2, 2)
	source.PushFrames(1, 4, 4)

	res := waitResult(t, results)
	require.ErrorIs(t, res.err, entity.ErrInconsistentFrameGeometry)

	// Новая серия начинается с нуля.
	fresh, freshResults := collectOne()
	require.NoError(t, cam.BeginCapture(2, fresh))
	source.PushFrames(2, 4, 4)
	require.NoError(t, waitResult(t, freshResults).err)
}

func TestCameraAbortDeliversSingleFailure(t *testing.T) {
	cam, source, _ := newTestCamera(entity.AveragingMean)
	require.NoError(t, cam.Start())

	done, results := collectOne()
	require.NoError(t, cam.BeginCapture(5, done))
	source.PushFrames(2, 2, 2)

	cam.AbortCapture()
	res := waitResult(t, results)
	require.ErrorIs(t, res.err, entity.ErrCaptureAborted)

	// Повторный abort без активного захвата безвреден.
	cam.AbortCapture()

	// Кадры после прерывания не копятся.
	source.PushFrames(3, 2, 2)
}

func TestCameraStopIsIdempotent(t *testing.T) {
	cam, source, _ := newTestCamera(entity.AveragingMean)
	require.NoError(t, cam.Start())
	require.True(t, cam.Streaming())

	cam.Stop()
	cam.Stop()
	require.False(t, cam.Streaming())
	require.Equal(t, 2, source.stopped)
}

func TestCameraMedianCapture(t *testing.T) {
	cam, source, _ := newTestCamera(entity.AveragingMedian)
	require.NoError(t, cam.Start())

	done, results := collectOne()
	require.NoError(t, cam.BeginCapture(3, done))

	for _, v := range []byte{0, 200, 90} {
		px := make([]byte, entity.FrameChannels)
		for i := range px {
			px[i] = v
		}
		source.Push(entity.Frame{Width: 1, Height: 1, Pixels: px})
	}

	res := waitResult(t, results)
	require.NoError(t, res.err)
	require.Equal(t, byte(90), res.avg.Pixels[0])
}

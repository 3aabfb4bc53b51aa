package entity

import (
	"fmt"
	"sort"
	"time"
)

// FrameChannels — число каналов пикселя (BGR).
const FrameChannels = 3

// Frame — один кадр с камеры. После создания не изменяется.
type Frame struct {
	Width     int
	Height    int
	Pixels    []byte // BGR, построчно
	Timestamp time.Time
}

// SameGeometry сообщает, совпадают ли размеры двух кадров.
func (f Frame) SameGeometry(other Frame) bool {
	return f.Width == other.Width && f.Height == other.Height
}

// AveragedFrame — попиксельное среднее серии кадров одинаковой геометрии.
type AveragedFrame struct {
	Width      int
	Height     int
	Pixels     []byte
	FrameCount int
	CapturedAt time.Time
}

// Способы усреднения серии кадров.
const (
	AveragingMean   = "mean"
	AveragingMedian = "median"
)

// NewAveragedFrame сводит K>=1 кадров в один. Кадры с разной геометрией —
// ошибка, а не тихий пропуск.
func NewAveragedFrame(frames []Frame, method string) (AveragedFrame, error) {
	if len(frames) == 0 {
		return AveragedFrame{}, fmt.Errorf("averaging requires at least one frame: %w", ErrCaptureAborted)
	}

	first := frames[0]
	for i, f := range frames[1:] {
		if !f.SameGeometry(first) {
			return AveragedFrame{}, fmt.Errorf("frame %d is %dx%d, expected %dx%d: %w",
				i+1, f.Width, f.Height, first.Width, first.Height, ErrInconsistentFrameGeometry)
		}
	}

	n := len(first.Pixels)
	out := make([]byte, n)

	if method == AveragingMedian {
		vals := make([]byte, len(frames))
		for i := 0; i < n; i++ {
			for j, f := range frames {
				vals[j] = f.Pixels[i]
			}
			sort.Slice(vals, func(a, b int) bool { return vals[a] < vals[b] })
			out[i] = vals[len(vals)/2]
		}
	} else {
		// Накапливаем в uint32, чтобы не переполниться, и округляем.
		sums := make([]uint32, n)
		for _, f := range frames {
			for i, p := range f.Pixels {
				sums[i] += uint32(p)
			}
		}
		k := uint32(len(frames))
		for i, s := range sums {
			out[i] = byte((s + k/2) / k)
		}
	}

	return AveragedFrame{
		Width:      first.Width,
		Height:     first.Height,
		Pixels:     out,
		FrameCount: len(frames),
		CapturedAt: time.Now(),
	}, nil
}

// Region — прямоугольная область на кадре, отмеченная алгоритмом.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Center возвращает координаты центра области.
func (r Region) Center() (x, y int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

/*
Package rknn provides a yolo2coco.Predictor running a YOLOv8 instance
segmentation Model on the Rockchip NPU.

The Model file must be compiled for the target platform with the RKNN Toolkit
and its output tensors left as int8.  Each image is letterboxed to the Model
input size, the detection boxes and segment mask are scaled back to the source
image, and the mask of each object is traced into polygons.
*/
package rknn

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/swdee/go-rknnlite"
	"github.com/swdee/go-rknnlite/postprocess"
	"github.com/swdee/go-rknnlite/preprocess"
	"gocv.io/x/gocv"

	yolo2coco "github.com/swdee/go-yolo2coco"
	"github.com/swdee/go-yolo2coco/geometry"
)

// Params are the Model and mask tracing parameters
type Params struct {
	// Platform is the Rockchip CPU model, one of
	// rk3562|rk3566|rk3568|rk3576|rk3582|rk3588
	Platform string
	// BoxThreshold is the minimum probability score for a detection
	BoxThreshold float32
	// NMSThreshold is the maximum IoU between two kept boxes
	NMSThreshold float32
	// ClassNum is the number of object classes the Model was trained with
	ClassNum int
	// MaxObjects is the maximum number of detections per image
	MaxObjects int
	// MinContourArea drops mask contours smaller than this many pixels
	MinContourArea float64
	// ApproxEpsilon is the polygon simplification distance in pixels, zero
	// keeps every contour vertex
	ApproxEpsilon float64
}

// MaxObjects is the largest number of detections per image
const MaxObjects = yolo2coco.MaxDetections

// DefaultParams returns the parameters for a COCO trained YOLOv8-seg Model
// on the rk3588
func DefaultParams() Params {
	coco := postprocess.YOLOv8SegCOCOParams()

	return Params{
		Platform:       "rk3588",
		BoxThreshold:   coco.BoxThreshold,
		NMSThreshold:   coco.NMSThreshold,
		ClassNum:       coco.ObjectClassNum,
		MaxObjects:     coco.MaxObjectNumber,
		MinContourArea: 10,
		ApproxEpsilon:  1,
	}
}

// multiCorePlatforms have more than one NPU core the runtime can schedule on
var multiCorePlatforms = map[string]bool{
	"rk3576": true,
	"rk3582": true,
	"rk3588": true,
}

// fastCoreMasks are the CPU affinity masks of the big cores on platforms with
// a big.LITTLE layout
var fastCoreMasks = map[string]uintptr{
	"rk3582": rknnlite.RK3582FastCores,
	"rk3588": rknnlite.RK3588FastCores,
}

// fastCoreMask returns the CPU affinity mask to pin inference to the fast
// cores of the platform, false if the platform has no distinct fast cores
func fastCoreMask(platform string) (uintptr, bool) {
	mask, ok := fastCoreMasks[platform]
	return mask, ok
}

// Predictor runs a YOLOv8-seg Model.  A single RKNN runtime is used so calls
// to Predict are serialized
type Predictor struct {
	params Params
	rt     *rknnlite.Runtime
	yolo   *postprocess.YOLOv8Seg
	// width and height of the Model input tensor
	width  int
	height int
	mu     sync.Mutex
}

// New loads the Model file onto the NPU
func New(modelFile string, p Params) (*Predictor, error) {

	if p.MaxObjects > MaxObjects {
		return nil, fmt.Errorf("max objects %d exceeds the %d objects a segment mask can label",
			p.MaxObjects, MaxObjects)
	}

	log := GetLogger()

	platform := strings.ToLower(strings.TrimSpace(p.Platform))

	if mask, ok := fastCoreMask(platform); ok {
		if err := rknnlite.SetCPUAffinity(mask); err != nil {
			log.Warn("failed to set CPU affinity", "platform", platform, "error", err)
		}
	}

	core := rknnlite.NPUSkipSetCore

	if multiCorePlatforms[platform] {
		core = rknnlite.NPUCoreAuto
	}

	rt, err := rknnlite.NewRuntime(modelFile, core)

	if err != nil {
		return nil, fmt.Errorf("error initializing RKNN runtime: %w", err)
	}

	// leave output tensors as int8
	rt.SetWantFloat(false)

	attrs := rt.InputAttrs()

	if len(attrs) == 0 {
		rt.Close()
		return nil, fmt.Errorf("model %s has no input tensors", modelFile)
	}

	yoloParams := postprocess.YOLOv8SegCOCOParams()

	if p.BoxThreshold > 0 {
		yoloParams.BoxThreshold = p.BoxThreshold
	}

	if p.NMSThreshold > 0 {
		yoloParams.NMSThreshold = p.NMSThreshold
	}

	if p.ClassNum > 0 {
		yoloParams.ObjectClassNum = p.ClassNum
	}

	if p.MaxObjects > 0 {
		yoloParams.MaxObjectNumber = p.MaxObjects
	}

	pr := &Predictor{
		params: p,
		rt:     rt,
		yolo:   postprocess.NewYOLOv8Seg(yoloParams),
		width:  int(attrs[0].Dims[1]),
		height: int(attrs[0].Dims[2]),
	}

	log.Info("loaded model", "file", modelFile, "platform", platform,
		"input", fmt.Sprintf("%dx%d", pr.width, pr.height),
		"classes", yoloParams.ObjectClassNum)

	return pr, nil
}

// Predict implements yolo2coco.Predictor
func (p *Predictor) Predict(ctx context.Context, imagePath string) ([]yolo2coco.Detection, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("error reading image %s", imagePath)
	}

	// convert colorspace and letterbox to the model input size
	rgbImg := gocv.NewMat()
	defer rgbImg.Close()
	gocv.CvtColor(img, &rgbImg, gocv.ColorBGRToRGB)

	resizer := preprocess.NewResizer(img.Cols(), img.Rows(), p.width, p.height)
	defer resizer.Close()

	cropImg := rgbImg.Clone()
	defer cropImg.Close()
	resizer.LetterBoxResize(rgbImg, &cropImg, color.RGBA{R: 0, G: 0, B: 0, A: 255})

	p.mu.Lock()
	defer p.mu.Unlock()

	outputs, err := p.rt.Inference([]gocv.Mat{cropImg})

	if err != nil {
		return nil, fmt.Errorf("runtime inferencing failed: %w", err)
	}

	// free outputs allocated in C memory once post processing is done
	defer func() {
		if ferr := outputs.Free(); ferr != nil {
			GetLogger().Error("error freeing outputs", "error", ferr)
		}
	}()

	detectObjs := p.yolo.DetectObjects(outputs, resizer)
	results := detectObjs.GetDetectResults()

	if len(results) == 0 {
		return nil, nil
	}

	segMask := p.yolo.SegmentMask(detectObjs, resizer)

	polys, err := MaskPolygons(segMask.Mask, img.Cols(), img.Rows(), len(results),
		p.params.MinContourArea, p.params.ApproxEpsilon)

	if err != nil {
		return nil, err
	}

	dets := make([]yolo2coco.Detection, 0, len(results))

	for i, res := range results {
		dets = append(dets, yolo2coco.Detection{
			Class: res.Class,
			Box: geometry.CenterBoxFromTlbr(float64(res.Box.Left), float64(res.Box.Top),
				float64(res.Box.Right), float64(res.Box.Bottom)),
			Polygons: polys[i],
		})
	}

	GetLogger().Debug("model prediction", "image", imagePath, "detections", len(dets))

	return dets, nil
}

// Close releases the RKNN runtime
func (p *Predictor) Close() error {
	return p.rt.Close()
}

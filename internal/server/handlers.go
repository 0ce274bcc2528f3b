package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"time"

	"github.com/ironsheep/watermark-cleaner/internal/batch"
	"github.com/ironsheep/watermark-cleaner/internal/config"
	"github.com/ironsheep/watermark-cleaner/internal/imaging"
	"github.com/ironsheep/watermark-cleaner/internal/ocr"
	"github.com/ironsheep/watermark-cleaner/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "watermark_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

var (
	removedColor  = color.NRGBA{0, 255, 0, 255}
	rejectedColor = color.NRGBA{255, 0, 0, 255}
)

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.logger.Info().Str("tool", params.Name).Dur("duration", time.Since(start)).Msg("tool executed")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Watermark Operations
	case "watermark_detect":
		return s.handleWatermarkDetect(ctx, args)
	case "watermark_remove":
		return s.handleWatermarkRemove(ctx, args)
	case "watermark_batch":
		return s.handleWatermarkBatch(ctx, args)

	// Color Operations
	case "image_dominant_colors":
		return s.handleImageDominantColors(args)

	// Cache
	case "image_cache_clear":
		n := s.cache.Len()
		s.cache.Clear()
		s.logger.Debug().Int("images", n).Msg("image cache cleared")
		return map[string]int{"cleared": n}, nil

	// OCR
	case "ocr_info":
		return ocr.NewTesseract(s.cfg.OCR.TessdataPrefix).GetInfo(), nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// configFor returns the server configuration, switched to the preset of
// strategy when one is given. OCR and batch settings are kept.
func (s *Server) configFor(strategy string) config.DetectionConfig {
	if strategy == "" || strategy == s.cfg.Strategy {
		return s.cfg
	}
	cfg := config.Preset(strategy)
	cfg.OCR = s.cfg.OCR
	cfg.Batch = s.cfg.Batch
	cfg.LogLevel = s.cfg.LogLevel
	return cfg
}

// === Watermark Handlers ===

type watermarkDetectArgs struct {
	Path     string `json:"path"`
	Strategy string `json:"strategy"`
	Preview  bool   `json:"preview"`
}

type watermarkDetectResult struct {
	*pipeline.Result
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Preview string `json:"preview,omitempty"`
}

func (s *Server) handleWatermarkDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a watermarkDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res, err := pipeline.Detect(ctx, img, s.configFor(a.Strategy), s.pipeline...)
	if err != nil {
		return nil, err
	}

	out := watermarkDetectResult{
		Result: res,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}
	if a.Preview {
		preview, err := s.preview(img, res)
		if err != nil {
			return nil, err
		}
		out.Preview = preview
	}
	return out, nil
}

// preview outlines removed regions in green and rejected ones in red.
func (s *Server) preview(img image.Image, res *pipeline.Result) (string, error) {
	src := imaging.ToNRGBA(img)

	removed := make([]imaging.AnnotationBox, len(res.Regions))
	for i, r := range res.Regions {
		removed[i] = imaging.AnnotationBox{Rect: r.Rect(), Label: fmt.Sprintf("#%d", i+1)}
	}
	rejected := make([]imaging.AnnotationBox, len(res.Rejected))
	for i, r := range res.Rejected {
		rejected[i] = imaging.AnnotationBox{Rect: r.Rect(), Label: "rejected"}
	}

	annotated := imaging.Annotate(imaging.Annotate(src, rejected, rejectedColor), removed, removedColor)
	return imaging.EncodePNGBase64(annotated)
}

type watermarkRemoveArgs struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path"`
	Strategy   string `json:"strategy"`
}

type watermarkRemoveResult struct {
	*pipeline.Result
	OutputPath    string `json:"output_path"`
	PixelsChanged int    `json:"pixels_changed"`
}

func (s *Server) handleWatermarkRemove(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a watermarkRemoveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputPath == "" {
		return nil, fmt.Errorf("output_path is required")
	}
	if filepath.Clean(a.OutputPath) == filepath.Clean(a.Path) {
		return nil, fmt.Errorf("output_path must differ from path")
	}
	outPath := imaging.OutputPath(a.OutputPath)

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := pipeline.RemoveWatermark(ctx, img, s.configFor(a.Strategy), s.pipeline...)
	if err != nil {
		return nil, err
	}

	d, err := imaging.Diff(img, res.Image)
	if err != nil {
		return nil, err
	}
	if err := imaging.Encode(outPath, res.Image); err != nil {
		return nil, fmt.Errorf("%w: %w", pipeline.ErrEncode, err)
	}
	s.cache.Evict(outPath)

	return watermarkRemoveResult{
		Result:        res,
		OutputPath:    outPath,
		PixelsChanged: d.ChangedPixels,
	}, nil
}

type watermarkBatchArgs struct {
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`
	Strategy  string `json:"strategy"`
	Workers   int    `json:"workers"`
	Prefix    string `json:"prefix"`
	DryRun    bool   `json:"dry_run"`
}

func (s *Server) handleWatermarkBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a watermarkBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.InputDir == "" || a.OutputDir == "" {
		return nil, fmt.Errorf("input_dir and output_dir are required")
	}

	return batch.Run(ctx, a.InputDir, a.OutputDir, batch.Options{
		Config:   s.configFor(a.Strategy),
		Workers:  a.Workers,
		Prefix:   a.Prefix,
		DryRun:   a.DryRun,
		Logger:   s.logger,
		Pipeline: s.pipeline,
	})
}

// === Color Operation Handlers ===

type imageDominantColorsArgs struct {
	Path   string `json:"path"`
	Count  int    `json:"count"`
	Region *struct {
		X1 int `json:"x1"`
		Y1 int `json:"y1"`
		X2 int `json:"x2"`
		Y2 int `json:"y2"`
	} `json:"region,omitempty"`
}

func (s *Server) handleImageDominantColors(args json.RawMessage) (interface{}, error) {
	var a imageDominantColorsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	area := img.Bounds()
	if a.Region != nil {
		area = image.Rect(a.Region.X1, a.Region.Y1, a.Region.X2, a.Region.Y2).Add(area.Min)
	}
	return imaging.DominantColors(img, a.Count, area, nil), nil
}

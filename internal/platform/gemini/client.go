package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yungbote/coco-backend/internal/domain"
	"github.com/yungbote/coco-backend/internal/platform/ctxutil"
	"github.com/yungbote/coco-backend/internal/platform/envutil"
	"github.com/yungbote/coco-backend/internal/platform/httpx"
	"github.com/yungbote/coco-backend/internal/platform/logger"
	"github.com/yungbote/coco-backend/internal/prompts"
)

// ErrNoImage is returned when an image request yields no inline image part.
var ErrNoImage = errors.New("gemini response carried no image")

type Image struct {
	Data     []byte
	MimeType string
}

type Response struct {
	Text   string
	Images []Image
}

// Client is the generative-AI client used by the pipeline, tutor and
// study-image services.
type Client interface {
	Generate(ctx context.Context, req prompts.Request) (*Response, error)
}

type Config struct {
	APIKey     string
	Model      string
	ImageModel string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv(log *logger.Logger) Config {
	key := envutil.String("GEMINI_API_KEY", "", log)
	if key == "" {
		key = envutil.String("API_KEY", "", log)
	}
	return Config{
		APIKey:     key,
		Model:      envutil.String("GEMINI_MODEL", "gemini-2.5-flash", log),
		ImageModel: envutil.String("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image", log),
		Timeout:    envutil.Seconds("GEMINI_TIMEOUT_SECONDS", 180*time.Second, log),
		MaxRetries: envutil.Int("GEMINI_MAX_RETRIES", 3, log),
	}
}

// generator is the slice of *genai.Models the client depends on.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type client struct {
	log        *logger.Logger
	models     generator
	model      string
	imageModel string
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
}

func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return newClient(log, gc.Models, cfg), nil
}

func newClient(log *logger.Logger, models generator, cfg Config) *client {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = cfg.Model
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log:        log.With("service", "GeminiClient"),
		models:     models,
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		baseDelay:  time.Second,
	}
}

// apiError adapts genai.APIError to httpx.HTTPStatusCoder.
type apiError struct {
	err  genai.APIError
	code int
}

func (e *apiError) Error() string       { return fmt.Sprintf("gemini http %d: %s", e.code, e.err.Message) }
func (e *apiError) HTTPStatusCode() int { return e.code }
func (e *apiError) Unwrap() error       { return e.err }

func classify(err error) error {
	var ae genai.APIError
	if errors.As(err, &ae) {
		return &apiError{err: ae, code: ae.Code}
	}
	return err
}

func (c *client) Generate(ctx context.Context, req prompts.Request) (*Response, error) {
	if len(req.Parts) == 0 {
		return nil, fmt.Errorf("gemini %s: empty request", req.Stage)
	}
	contents := buildContents(req)
	config := buildConfig(req)
	model := c.model
	if req.WantImage {
		model = c.imageModel
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := c.once(ctx, model, contents, config)
		if err == nil {
			return toResponse(resp, req.WantImage)
		}
		lastErr = err
		if !httpx.IsRetryableError(ctx, err) || attempt == c.maxRetries {
			break
		}
		sleepFor := httpx.Jitter(httpx.Backoff(attempt, c.baseDelay, 10*time.Second), 0.2)
		fields := append([]any{
			"stage", string(req.Stage),
			"model", model,
			"attempt", attempt + 1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		}, ctxutil.LogFields(ctx)...)
		c.log.Warn("Gemini request retrying", fields...)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("gemini %s: %w", req.Stage, lastErr)
}

func (c *client) once(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.models.GenerateContent(callCtx, model, contents, config)
	if err != nil {
		return nil, classify(err)
	}
	return resp, nil
}

func buildContents(req prompts.Request) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		var role genai.Role = genai.RoleUser
		if m.Role == domain.ChatRoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.IsBlob() {
			parts = append(parts, genai.NewPartFromBytes(p.Data, p.MimeType))
			continue
		}
		parts = append(parts, genai.NewPartFromText(p.Text))
	}
	return append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
}

func buildConfig(req prompts.Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.Structured() {
		config.ResponseMIMEType = req.ResponseMIMEType
		if config.ResponseMIMEType == "" {
			config.ResponseMIMEType = "application/json"
		}
		config.ResponseSchema = toSchema(req.Schema)
	}
	if req.WantImage {
		config.ResponseModalities = []string{"TEXT", "IMAGE"}
	}
	return config
}

func toResponse(resp *genai.GenerateContentResponse, wantImage bool) (*Response, error) {
	out := &Response{}
	if resp == nil {
		if wantImage {
			return nil, ErrNoImage
		}
		return out, nil
	}
	out.Text = resp.Text()
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, p := range resp.Candidates[0].Content.Parts {
			if p == nil || p.InlineData == nil || len(p.InlineData.Data) == 0 {
				continue
			}
			out.Images = append(out.Images, Image{Data: p.InlineData.Data, MimeType: p.InlineData.MIMEType})
		}
	}
	if wantImage && len(out.Images) == 0 {
		return nil, ErrNoImage
	}
	return out, nil
}

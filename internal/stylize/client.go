package stylize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.replicate.com/v1"

// modelVersion pins the hosted ComfyUI workflow runner.
const modelVersion = "10990543610c5a77a268f426adb817753842697fa0fa5819dc4a396b632a5c15"

// workflowTemplate is the anime-stylization graph submitted per image. The
// input photo URL is injected as node 12's image.
const workflowTemplate = `{"3":{"inputs":{"seed":74,"steps":25,"cfg":7,"sampler_name":"dpmpp_2m","scheduler":"karras","denoise":0.75,"model":["47",0],"positive":["55",0],"negative":["55",1],"latent_image":["14",0]},"class_type":"KSampler"},"4":{"inputs":{"ckpt_name":"animagine-xl-3.0.safetensors"},"class_type":"CheckpointLoaderSimple"},"6":{"inputs":{"text":"a person, anime style","clip":["4",1]},"class_type":"CLIPTextEncode"},"7":{"inputs":{"text":"blurry, noisy, messy, glitch, distorted, malformed","clip":["4",1]},"class_type":"CLIPTextEncode"},"8":{"inputs":{"samples":["3",0],"vae":["4",2]},"class_type":"VAEDecode"},"12":{"inputs":{"image":"%s","upload":"image"},"class_type":"LoadImage"},"14":{"inputs":{"pixels":["61",0],"vae":["4",2]},"class_type":"VAEEncode"},"15":{"inputs":{"filename_prefix":"ComfyUI","images":["8",0]},"class_type":"SaveImage"},"47":{"inputs":{"weight_style":1,"weight_composition":1,"combine_embeds":"average","start_at":0,"end_at":0.9,"embeds_scaling":"V only","model":["48",0],"ipadapter":["48",1],"image_style":["49",0],"image_composition":["12",0]},"class_type":"IPAdapterStyleComposition"},"48":{"inputs":{"preset":"PLUS (high strength)","model":["4",0]},"class_type":"IPAdapterUnifiedLoader"},"49":{"inputs":{"image":"https://pinelime-orders.s3.amazonaws.com/PetPortraitsFiles/anime_boy.jpeg","upload":"image"},"class_type":"LoadImage"},"55":{"inputs":{"strength":1,"start_percent":0,"end_percent":0.3,"positive":["6",0],"negative":["7",0],"control_net":["56",0],"image":["57",0]},"class_type":"ControlNetApplyAdvanced"},"56":{"inputs":{"control_net_name":"control-lora-depth-rank256.safetensors"},"class_type":"ControlNetLoader"},"57":{"inputs":{"ckpt_name":"depth_anything_vitl14.pth","resolution":960,"image":["61",0]},"class_type":"DepthAnythingPreprocessor"},"61":{"inputs":{"method":"keep proportion","width":1024,"height":1024,"condition":"always","interpolation":"nearest","multiple_of":0,"image":["12",0]},"class_type":"ImageResize+"}}`

// Prediction statuses reported by the generation provider.
const (
	StatusStarting   = "starting"
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
	StatusCanceled   = "canceled"
)

type Prediction struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Output []string `json:"output"`
	Error  string   `json:"error,omitempty"`
}

// Client talks to the asynchronous image-generation provider.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// NewClientWithBaseURL points the client at a different endpoint, for tests.
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// CreatePrediction submits the stylization workflow for an uploaded image and
// returns the job with its provider-assigned id.
func (c *Client) CreatePrediction(ctx context.Context, imageURL string) (*Prediction, error) {
	workflow := fmt.Sprintf(workflowTemplate, imageURL)

	payload, err := json.Marshal(map[string]interface{}{
		"version": modelVersion,
		"input": map[string]string{
			"workflow_json": workflow,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction request: %w", err)
	}

	return c.doPrediction(ctx, http.MethodPost, c.baseURL+"/predictions", bytes.NewReader(payload))
}

// GetPrediction queries job status by identifier.
func (c *Client) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	return c.doPrediction(ctx, http.MethodGet, c.baseURL+"/predictions/"+id, nil)
}

func (c *Client) doPrediction(ctx context.Context, method, endpoint string, body io.Reader) (*Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build prediction request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read prediction response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("prediction API returned %d: %s", resp.StatusCode, string(raw))
	}

	pred := &Prediction{}
	if err := json.Unmarshal(raw, pred); err != nil {
		return nil, fmt.Errorf("failed to decode prediction: %w", err)
	}
	return pred, nil
}

// FetchOutput downloads the produced asset.
func (c *Client) FetchOutput(ctx context.Context, outputURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, outputURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build output request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch output: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("output fetch returned %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

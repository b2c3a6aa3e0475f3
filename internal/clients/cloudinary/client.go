package cloudinary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"golang.org/x/time/rate"
)

const baseURL = "https://api.cloudinary.com/v1_1/"

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client uploads images with an unsigned upload preset.
type Client struct {
	httpClient   HTTPClient
	rateLimiter  *rate.Limiter
	cloudName    string
	uploadPreset string
}

func NewClient(cloudName, uploadPreset string) *Client {
	return &Client{httpClient: &http.Client{}, cloudName: cloudName, uploadPreset: uploadPreset}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

// Upload sends the file and returns its https url.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("error creating form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("error reading file: %w", err)
	}
	if err := writer.WriteField("upload_preset", c.uploadPreset); err != nil {
		return "", fmt.Errorf("error writing form field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("error closing form: %w", err)
	}

	respBody, err := c.sendRequest(ctx, baseURL+c.cloudName+"/image/upload", writer.FormDataContentType(), body)
	if err != nil {
		return "", err
	}

	var response uploadResponse
	if err := json.NewDecoder(bytes.NewReader(respBody)).Decode(&response); err != nil {
		return "", fmt.Errorf("error decoding JSON response: %w", err)
	}
	if response.SecureURL == "" {
		return "", fmt.Errorf("upload response has no secure_url, body: %v", string(respBody))
	}

	return response.SecureURL, nil
}

func (c *Client) sendRequest(ctx context.Context, url string, contentType string, body io.Reader) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %v, body: %v", resp.StatusCode, string(body))
	}

	return body, nil
}
